package irc

import (
	"bytes"
	"strings"
)

// Chunker splits streamed text into IRC-sized messages. Complete lines
// go out immediately; anything else buffers until it exceeds the limit
// or Flush is called.
type Chunker struct {
	out   chan<- string
	buf   bytes.Buffer
	limit int
}

func NewChunker(out chan<- string, limit int) *Chunker {
	return &Chunker{out: out, limit: limit}
}

// Write appends content and emits whatever is ready.
func (c *Chunker) Write(content string) {
	c.buf.WriteString(content)

	for {
		line, err := c.buf.ReadString('\n')
		if err != nil {
			// partial line, put it back and stop
			if line != "" {
				c.buf.WriteString(line)
			}
			break
		}
		if line = strings.TrimSuffix(line, "\n"); line != "" {
			c.emit(line)
		}
	}

	// An oversized partial line cannot wait for its newline.
	for c.buf.Len() >= c.limit {
		chunk := c.takeChunk()
		if chunk == "" {
			break
		}
		c.out <- chunk
	}
}

// emit sends one logical line, word-wrapping it to the limit.
func (c *Chunker) emit(line string) {
	for len(line) > c.limit {
		cut := c.limit
		if idx := strings.LastIndexByte(line[:cut], ' '); idx > 0 {
			c.out <- line[:idx]
			line = line[idx+1:]
			continue
		}
		c.out <- line[:cut]
		line = line[cut:]
	}
	if line != "" {
		c.out <- line
	}
}

// takeChunk removes up to limit bytes from the buffer, preferring to
// break at the last space.
func (c *Chunker) takeChunk() string {
	if c.buf.Len() == 0 {
		return ""
	}

	data := c.buf.Bytes()
	end := min(c.limit, len(data))

	if idx := bytes.LastIndexByte(data[:end], ' '); idx > 0 {
		chunk := string(data[:idx])
		c.buf.Next(idx + 1)
		return chunk
	}

	chunk := string(data[:end])
	c.buf.Next(end)
	return chunk
}

// Flush drains whatever remains in the buffer.
func (c *Chunker) Flush() {
	if c.buf.Len() > 0 {
		c.emit(c.buf.String())
		c.buf.Reset()
	}
}
