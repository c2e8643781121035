package rag

import (
	"context"
	"errors"
	"strings"
	"testing"

	mocktest "pkdindustries/toolshack/internal/testing"
)

func testDocs() []Document {
	return []Document{
		{Content: "alpha passage", Name: "Alpha", URL: "http://a"},
		{Content: "beta passage", Name: "Beta", URL: "http://b"},
		{Content: "gamma passage", Name: "Gamma", URL: "http://c"},
	}
}

func TestGradeDocumentsFilters(t *testing.T) {
	model := mocktest.NewMockModel(
		mocktest.AssistantText(`{"binary_score": "yes"}`),
		mocktest.AssistantText(`{"binary_score": "no"}`),
		mocktest.AssistantText(`{"binary_score": "yes"}`),
	)
	g := NewGrader(mocktest.DefaultTestConfig(), model)
	g.Parallel = 1

	got := g.GradeDocuments(context.Background(), "question", testDocs())
	if len(got) != 2 {
		t.Fatalf("expected 2 relevant docs, got %d", len(got))
	}
	// input order preserved
	if got[0].Name != "Alpha" || got[1].Name != "Gamma" {
		t.Errorf("unexpected order: %+v", got)
	}
}

func TestGradeDocumentsRetriesMalformedOutput(t *testing.T) {
	model := mocktest.NewMockModel(
		mocktest.AssistantText("sorry, no json today"),
		mocktest.AssistantText(`{"binary_score": "no"}`),
	)
	g := NewGrader(mocktest.DefaultTestConfig(), model)
	g.Parallel = 1

	got := g.GradeDocuments(context.Background(), "q", testDocs()[:1])
	if len(got) != 0 {
		t.Errorf("doc graded 'no' after retry should be dropped, got %+v", got)
	}
	if model.Calls() != 2 {
		t.Errorf("expected 2 model calls (one retry), got %d", model.Calls())
	}
}

func TestGradeDocumentsKeepsOnFailure(t *testing.T) {
	var steps []mocktest.ModelStep
	for i := 0; i < 5; i++ {
		steps = append(steps, mocktest.ModelError(errors.New("down")))
	}
	model := mocktest.NewMockModel(steps...)
	g := NewGrader(mocktest.DefaultTestConfig(), model)
	g.Parallel = 1

	got := g.GradeDocuments(context.Background(), "q", testDocs()[:1])
	if len(got) != 1 {
		t.Errorf("ungradeable doc should be kept, got %d docs", len(got))
	}
}

func TestRoundRobinModelNames(t *testing.T) {
	g := NewGrader(mocktest.DefaultTestConfig(), mocktest.NewMockModel())
	g.ModelNames = []string{"m1", "m2", "m3"}

	want := []string{"m1", "m2", "m3", "m1", "m2"}
	for i, w := range want {
		if got := g.nextModelName(); got != w {
			t.Errorf("call %d: got %q, want %q", i, got, w)
		}
	}
}

func TestRoundRobinDefaultsToConfiguredModel(t *testing.T) {
	g := NewGrader(mocktest.DefaultTestConfig(), mocktest.NewMockModel())
	if got := g.nextModelName(); got != "test/model" {
		t.Errorf("expected configured model, got %q", got)
	}
}

func TestDedupFilter(t *testing.T) {
	d := NewDedup()
	first := d.Filter(testDocs())
	if len(first) != 3 {
		t.Fatalf("fresh docs should all pass, got %d", len(first))
	}
	second := d.Filter([]Document{
		{Content: "alpha passage", Name: "AlphaAgain"},
		{Content: "delta passage", Name: "Delta"},
	})
	if len(second) != 1 || second[0].Name != "Delta" {
		t.Errorf("expected only the new doc, got %+v", second)
	}
}

func TestReferences(t *testing.T) {
	if got := References(nil); got != "" {
		t.Errorf("no docs should render empty, got %q", got)
	}

	docs := []Document{
		{Content: "web \"content\" here", Name: "Site", URL: "http://s"},
		{Content: strings.Repeat("z", 50), Name: "Manual", URL: "http://m", Page: "12"},
	}
	got := References(docs)
	if !strings.HasPrefix(got, "\n\n#### Related Documents\n") {
		t.Errorf("missing header: %q", got)
	}
	if !strings.Contains(got, `1. [Site](http://s), web content here...`) {
		t.Errorf("missing plain line: %q", got)
	}
	if !strings.Contains(got, "2. page 12 in [Manual](http://m), "+strings.Repeat("z", 30)+"...") {
		t.Errorf("missing page line: %q", got)
	}
}
