// Package irc holds the transport-facing pieces of the bot: message
// chunking, event parsing helpers, delivery of finished answers, and
// the native IRC tools exposed to the model.
package irc

import (
	"pkdindustries/toolshack/internal/core"
)

// DefaultChunkMax is the fallback IRC line budget when none is configured.
const DefaultChunkMax = 350

// Deliver splits answer text into IRC-sized lines and replies with each.
// Line breaks in the text are respected; overlong lines split on spaces.
func Deliver(c core.ChatContextInterface, text string) {
	if text == "" {
		return
	}

	chunkMax := DefaultChunkMax
	if cfg := c.GetConfig(); cfg.Session != nil && cfg.Session.ChunkMax > 0 {
		chunkMax = cfg.Session.ChunkMax
	}

	out := make(chan string)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for line := range out {
			c.Reply(line)
		}
	}()

	chunker := NewChunker(out, chunkMax)
	chunker.Write(text)
	chunker.Flush()
	close(out)
	<-done
}

// DeliverImages replies with one line per image URL.
func DeliverImages(c core.ChatContextInterface, urls []string) {
	for _, url := range urls {
		c.Reply(url)
	}
}
