package core

import (
	"strings"
	"sync"
)

// StatusTrail records the stage labels a request passes through. It is
// observational only: readers get a rendered snapshot, never the slice.
type StatusTrail struct {
	mu     sync.Mutex
	labels []string
}

func NewStatusTrail() *StatusTrail {
	return &StatusTrail{}
}

// Push appends a stage label to the trail.
func (t *StatusTrail) Push(label string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.labels = append(t.labels, label)
}

// Len reports how many labels have been pushed.
func (t *StatusTrail) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.labels)
}

// Render formats the trail for display. A trailing ellipsis marks a request
// still in flight; done renders the trail without it. An empty trail renders
// as the empty string.
func (t *StatusTrail) Render(done bool) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.labels) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("[status]\n")
	sb.WriteString(strings.Join(t.labels, " -> "))
	if !done {
		sb.WriteString("...")
	}
	return sb.String()
}
