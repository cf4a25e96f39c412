package engine

import (
	"slices"
	"sync"
)

// Publisher holds the latest result. Publish replaces it wholesale under an
// exclusive lock, so readers see either the old or the new pass, never a mix.
type Publisher struct {
	mu     sync.RWMutex
	result *Result
	subs   []func(*Result)
}

// Publish replaces the current result and notifies subscribers.
func (p *Publisher) Publish(r *Result) {
	p.mu.Lock()
	p.result = r
	subs := slices.Clone(p.subs)
	p.mu.Unlock()

	for _, fn := range subs {
		fn(r)
	}
}

// Current returns the latest published result.
func (p *Publisher) Current() *Result {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.result
}

// Subscribe registers fn to be called after every Publish.
func (p *Publisher) Subscribe(fn func(*Result)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subs = append(p.subs, fn)
}

// Subscribe registers fn to receive every published result.
func (e *Engine) Subscribe(fn func(*Result)) {
	e.pub.Subscribe(fn)
}
