package citation

import (
	"fmt"
	"strings"
)

// ExcerptMax caps how much of a source document a citation carries.
const ExcerptMax = 100

// Citation is one source reference mined from a tool result.
type Citation struct {
	URL     string
	Title   string
	Excerpt string
	// Source names the tool or corpus the citation came from, when known.
	Source string
}

var excerptCleaner = strings.NewReplacer(
	`"`, "",
	`'`, "",
	"#", "",
	"\n", "",
)

// CleanExcerpt strips quotes, hashes, and newlines so the excerpt sits on a
// single markdown list line.
func CleanExcerpt(s string) string {
	return excerptCleaner.Replace(s)
}

// Clip truncates s to ExcerptMax characters, marking the cut with an ellipsis.
func Clip(s string) string {
	r := []rune(s)
	if len(r) > ExcerptMax {
		return string(r[:ExcerptMax]) + "..."
	}
	return s
}

// Aggregator accumulates citations for one session. Duplicate excerpts are
// dropped: the first occurrence wins and insertion order is preserved.
type Aggregator struct {
	seen map[string]struct{}
	list []Citation
}

func NewAggregator() *Aggregator {
	return &Aggregator{seen: make(map[string]struct{})}
}

// Add records each citation whose excerpt has not been seen before.
// Deduplication is exact string equality on the excerpt.
func (a *Aggregator) Add(cites ...Citation) {
	for _, c := range cites {
		if _, dup := a.seen[c.Excerpt]; dup {
			continue
		}
		a.seen[c.Excerpt] = struct{}{}
		a.list = append(a.list, c)
	}
}

// Citations returns the accumulated citations in insertion order.
func (a *Aggregator) Citations() []Citation {
	out := make([]Citation, len(a.list))
	copy(out, a.list)
	return out
}

// Render formats the accumulated citations as a markdown reference block,
// or the empty string when nothing was collected.
func (a *Aggregator) Render() string {
	if len(a.list) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("\n\n### Reference\n")
	for i, c := range a.list {
		excerpt := CleanExcerpt(c.Excerpt)
		fmt.Fprintf(&sb, "%d. [%s](%s), %s...\n", i+1, c.Title, c.URL, excerpt)
	}
	return sb.String()
}
