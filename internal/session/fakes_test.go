package session

import (
	"context"
	"sync"

	"github.com/kavifawjul-creator/orchids-ai-powered-product-demos/internal/interfaces"
)

// fakeBackend returns a scripted sequence of status reports. The last
// entry repeats once the script is exhausted.
type fakeBackend struct {
	mu sync.Mutex

	createResult *interfaces.CreateDemoResult
	createErr    error
	createCalls  int

	statuses   []string
	statusErrs []error
	statusIdx  int
}

func (f *fakeBackend) CreateDemo(ctx context.Context, repoURL, prompt, title string) (*interfaces.CreateDemoResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createResult, nil
}

func (f *fakeBackend) GetDemoStatus(ctx context.Context, demoID string) (*interfaces.DemoStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	idx := f.statusIdx
	if idx >= len(f.statuses) {
		idx = len(f.statuses) - 1
	} else {
		f.statusIdx++
	}

	if idx < len(f.statusErrs) && f.statusErrs[idx] != nil {
		return nil, f.statusErrs[idx]
	}
	return &interfaces.DemoStatus{ID: demoID, Status: f.statuses[idx]}, nil
}

func (f *fakeBackend) CreateCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.createCalls
}

// fakeFeed delivers row changes from a caller-controlled channel
type fakeFeed struct {
	changes      chan interfaces.RowChange
	subscribeErr error
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{changes: make(chan interfaces.RowChange, 8)}
}

func (f *fakeFeed) Subscribe(ctx context.Context, demoID string) (<-chan interfaces.RowChange, error) {
	if f.subscribeErr != nil {
		return nil, f.subscribeErr
	}
	return f.changes, nil
}

func (f *fakeFeed) push(status string) {
	f.changes <- interfaces.RowChange{New: interfaces.DemoStatus{Status: status}}
}
