package events

import "sync"

// BatchMerged is published after a normalized batch lands in the unified
// store.
type BatchMerged struct {
	Source  string
	Added   int
	Dropped int
}

// ExtractionDegraded is published when a report yields no recoverable text
// and enters the store as an all-null record candidate.
type ExtractionDegraded struct {
	Report string
	Reason string
}

// Bus provides simple in-process pub/sub for observability.
type Bus struct {
	mu   sync.RWMutex
	subs []chan any
}

func NewBus() *Bus { return &Bus{} }

func (b *Bus) Subscribe() <-chan any {
	ch := make(chan any, 16)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, ch)
	return ch
}

// Publish delivers to every subscriber without blocking; slow subscribers
// miss events rather than stall the pipeline.
func (b *Bus) Publish(ev any) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
