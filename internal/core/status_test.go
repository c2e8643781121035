package core

import (
	"sync"
	"testing"
)

func TestStatusTrailEmpty(t *testing.T) {
	trail := NewStatusTrail()
	if got := trail.Render(false); got != "" {
		t.Errorf("empty trail should render empty, got %q", got)
	}
	if got := trail.Render(true); got != "" {
		t.Errorf("empty finished trail should render empty, got %q", got)
	}
}

func TestStatusTrailRender(t *testing.T) {
	trail := NewStatusTrail()
	trail.Push("service_cost")
	trail.Push("region_cost")

	want := "[status]\nservice_cost -> region_cost..."
	if got := trail.Render(false); got != want {
		t.Errorf("Render(false) = %q, want %q", got, want)
	}

	want = "[status]\nservice_cost -> region_cost"
	if got := trail.Render(true); got != want {
		t.Errorf("Render(true) = %q, want %q", got, want)
	}
}

func TestStatusTrailAppendOnly(t *testing.T) {
	trail := NewStatusTrail()
	trail.Push("a")
	snapshot := trail.Render(true)
	trail.Push("b")
	if snapshot != "[status]\na" {
		t.Errorf("snapshot mutated after later push: %q", snapshot)
	}
	if trail.Len() != 2 {
		t.Errorf("expected 2 labels, got %d", trail.Len())
	}
}

func TestStatusTrailConcurrentPush(t *testing.T) {
	trail := NewStatusTrail()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			trail.Push("stage")
		}()
	}
	wg.Wait()
	if trail.Len() != 50 {
		t.Errorf("expected 50 labels, got %d", trail.Len())
	}
}
