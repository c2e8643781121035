package normalize

import (
	"strings"
	"testing"
)

func TestMarkerBlocks(t *testing.T) {
	raw := "Title: First Result\nURL: http://one.example\nContent: some content here\n\n" +
		"Title: Second Result\nURL: http://two.example\nContent: " + strings.Repeat("a", 150) + "\n\n" +
		"Title: broken block with no url or content marker"

	res := Normalize("web_search", raw)
	if len(res.Citations) != 2 {
		t.Fatalf("expected 2 citations, got %d", len(res.Citations))
	}
	first := res.Citations[0]
	if first.Title != "First Result" || first.URL != "http://one.example" || first.Excerpt != "some content here" {
		t.Errorf("unexpected first citation: %+v", first)
	}
	second := res.Citations[1]
	if second.Excerpt != strings.Repeat("a", 100)+"..." {
		t.Errorf("long excerpt should be capped with ellipsis, got %q", second.Excerpt)
	}
	if res.Display != raw {
		t.Errorf("marker format should not alter display content")
	}
	if len(res.Images) != 0 {
		t.Errorf("marker format should not produce images")
	}
}

func TestMarkerBlockMissingMarkerSkipped(t *testing.T) {
	raw := "Title: A\nURL: http://a\nContent: ok\n\nTitle: B\nURL: http://b"
	res := Normalize("web_search", raw)
	if len(res.Citations) != 1 {
		t.Fatalf("block missing Content: should be skipped, got %d citations", len(res.Citations))
	}
}

func TestImagePathString(t *testing.T) {
	res := Normalize("chart_tool", `{"path": "http://bucket/chart.png"}`)
	if len(res.Images) != 1 || res.Images[0] != "http://bucket/chart.png" {
		t.Errorf("unexpected images: %v", res.Images)
	}
	if len(res.Citations) != 0 {
		t.Errorf("path payload should not produce citations")
	}
}

func TestImagePathList(t *testing.T) {
	res := Normalize("chart_tool", `{"path": ["http://a.png", "http://b.png"]}`)
	if len(res.Images) != 2 || res.Images[0] != "http://a.png" || res.Images[1] != "http://b.png" {
		t.Errorf("unexpected images: %v", res.Images)
	}
}

func TestReferenceObject(t *testing.T) {
	raw := `{"contents": "retrieved passage text", "reference": {"url": "http://kb/doc", "title": "KB Doc", "from": "knowledge_base"}}`
	res := Normalize("retrieve", raw)
	if len(res.Citations) != 1 {
		t.Fatalf("expected 1 citation, got %d", len(res.Citations))
	}
	c := res.Citations[0]
	if c.URL != "http://kb/doc" || c.Title != "KB Doc" || c.Excerpt != "retrieved passage text" || c.Source != "knowledge_base" {
		t.Errorf("unexpected citation: %+v", c)
	}
}

func TestArrayOfReferenceObjects(t *testing.T) {
	raw := `[{"contents": "first passage", "reference": {"url": "http://1", "title": "One", "from": "kb"}},
	         {"contents": "second passage", "reference": {"url": "http://2", "title": "Two", "from": "kb"}}]`
	res := Normalize("retrieve", raw)
	if len(res.Citations) != 2 {
		t.Fatalf("expected 2 citations, got %d", len(res.Citations))
	}
	if res.Citations[0].URL != "http://1" || res.Citations[1].URL != "http://2" {
		t.Errorf("citations out of order: %+v", res.Citations)
	}
}

func TestDoubleEncodedRankOrder(t *testing.T) {
	raw := `["{\"rank_order\": 1, \"url\": \"http://docs/a\", \"title\": \"Doc A\", \"context\": \"context text\"}",
	         "not json at all",
	         "{\"rank_order\": 2, \"url\": \"http://docs/b\", \"title\": \"Doc B\", \"context\": \"more text\"}"]`
	res := Normalize("search_docs", raw)
	if len(res.Citations) != 2 {
		t.Fatalf("expected 2 citations, got %d", len(res.Citations))
	}
	if res.Citations[0].Title != "Doc A" || res.Citations[1].Title != "Doc B" {
		t.Errorf("unexpected citations: %+v", res.Citations)
	}
}

func TestPapers(t *testing.T) {
	raw := `{"papers": [{"url": "http://arxiv/1", "title": "Paper One", "abstract": "line one\nline two"}]}`
	res := Normalize("search_papers", raw)
	if len(res.Citations) != 1 {
		t.Fatalf("expected 1 citation, got %d", len(res.Citations))
	}
	if res.Citations[0].Excerpt != "line oneline two" {
		t.Errorf("abstract newlines should be stripped, got %q", res.Citations[0].Excerpt)
	}
}

func TestLabelPrefixStripped(t *testing.T) {
	raw := `search_index result: {"path": "http://img.png"}`
	res := Normalize("search_index", raw)
	if len(res.Images) != 1 {
		t.Fatalf("label-prefixed JSON should decode, got %+v", res)
	}
	if res.Display != `{"path": "http://img.png"}` {
		t.Errorf("display should drop the label envelope, got %q", res.Display)
	}
}

func TestFallbackPlainText(t *testing.T) {
	raw := "plain prose answer with no structure: nothing to see"
	res := Normalize("anytool", raw)
	if res.Display != raw {
		t.Errorf("fallback must pass raw text through unchanged")
	}
	if len(res.Citations) != 0 || len(res.Images) != 0 {
		t.Errorf("fallback must produce no citations or images")
	}
}

func TestFallbackMalformedJSON(t *testing.T) {
	raw := `{"broken": json here`
	res := Normalize("anytool", raw)
	if res.Display != raw || len(res.Citations) != 0 || len(res.Images) != 0 {
		t.Errorf("malformed JSON must degrade to opaque text, got %+v", res)
	}
}

func TestSplitConcatenatedJSON(t *testing.T) {
	s := `{"a": 1}{"b": "brace } in string", "c": "escaped \" quote"} {"d": [1,2]}`
	parts, ok := SplitConcatenatedJSON(s)
	if !ok {
		t.Fatal("expected successful split")
	}
	if len(parts) != 3 {
		t.Fatalf("expected 3 parts, got %d: %v", len(parts), parts)
	}
	if parts[0] != `{"a": 1}` {
		t.Errorf("unexpected first part: %q", parts[0])
	}
	if !strings.Contains(parts[1], "brace } in string") {
		t.Errorf("brace inside string split incorrectly: %q", parts[1])
	}
}

func TestSplitConcatenatedJSONRejectsGarbage(t *testing.T) {
	cases := []string{
		`{"a": 1} trailing garbage`,
		`{"unclosed": 1`,
		`}{`,
		``,
		`no json at all`,
	}
	for _, c := range cases {
		if _, ok := SplitConcatenatedJSON(c); ok {
			t.Errorf("SplitConcatenatedJSON(%q) should fail", c)
		}
	}
}

func TestNormalizeConcatenatedObjects(t *testing.T) {
	raw := `{"contents": "passage a", "reference": {"url": "http://1", "title": "A", "from": "kb"}}` +
		`{"contents": "passage b", "reference": {"url": "http://2", "title": "B", "from": "kb"}}`
	res := Normalize("knowledge_base", raw)
	if len(res.Citations) != 2 {
		t.Fatalf("expected 2 citations from concatenated objects, got %d", len(res.Citations))
	}
}

func TestExcerptCapIsRuneAware(t *testing.T) {
	abstract := strings.Repeat("한", 120)
	raw := `{"papers": [{"url": "u", "title": "t", "abstract": "` + abstract + `"}]}`
	res := Normalize("search_papers", raw)
	if len(res.Citations) != 1 {
		t.Fatal("expected 1 citation")
	}
	if got := []rune(res.Citations[0].Excerpt); len(got) != 100 {
		t.Errorf("expected 100-rune excerpt, got %d runes", len(got))
	}
}
