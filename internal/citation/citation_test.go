package citation

import (
	"strings"
	"testing"
)

func TestCleanExcerpt(t *testing.T) {
	in := "a \"quoted\" line\nwith 'marks' and #hash"
	want := "a quoted linewith marks and hash"
	if got := CleanExcerpt(in); got != want {
		t.Errorf("CleanExcerpt = %q, want %q", got, want)
	}
}

func TestClip(t *testing.T) {
	short := "short excerpt"
	if got := Clip(short); got != short {
		t.Errorf("Clip should leave short strings alone, got %q", got)
	}
	long := strings.Repeat("x", 150)
	got := Clip(long)
	if got != strings.Repeat("x", 100)+"..." {
		t.Errorf("Clip should cap at 100 chars with ellipsis, got %d chars", len(got))
	}
}

func TestAggregatorDedup(t *testing.T) {
	agg := NewAggregator()
	agg.Add(
		Citation{URL: "http://a", Title: "first", Excerpt: "same text"},
		Citation{URL: "http://b", Title: "second", Excerpt: "same text"},
		Citation{URL: "http://c", Title: "third", Excerpt: "other text"},
	)
	got := agg.Citations()
	if len(got) != 2 {
		t.Fatalf("expected 2 citations after dedup, got %d", len(got))
	}
	// first occurrence wins
	if got[0].Title != "first" || got[1].Title != "third" {
		t.Errorf("unexpected order/content: %+v", got)
	}

	// dedup is session-scoped, so a later Add still sees the set
	agg.Add(Citation{URL: "http://d", Title: "fourth", Excerpt: "same text"})
	if len(agg.Citations()) != 2 {
		t.Errorf("duplicate excerpt added across calls")
	}
}

func TestAggregatorDedupIsExact(t *testing.T) {
	agg := NewAggregator()
	agg.Add(
		Citation{Excerpt: "Same Text"},
		Citation{Excerpt: "same text"},
	)
	if len(agg.Citations()) != 2 {
		t.Errorf("dedup should be case-sensitive exact match")
	}
}

func TestRenderEmpty(t *testing.T) {
	if got := NewAggregator().Render(); got != "" {
		t.Errorf("empty aggregator should render empty string, got %q", got)
	}
}

func TestRenderBlock(t *testing.T) {
	agg := NewAggregator()
	agg.Add(
		Citation{URL: "http://a", Title: "Doc A", Excerpt: "alpha"},
		Citation{URL: "http://b", Title: "Doc B", Excerpt: "beta\n#raw"},
	)
	got := agg.Render()
	want := "\n\n### Reference\n1. [Doc A](http://a), alpha...\n2. [Doc B](http://b), betaraw...\n"
	if got != want {
		t.Errorf("Render = %q, want %q", got, want)
	}
}
