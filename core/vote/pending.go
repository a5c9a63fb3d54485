package vote

import "sync"

// PendingSet tracks the (voter, proposal) pairs with an attempt in flight.
type PendingSet struct {
	mu      sync.Mutex
	pending map[string]struct{}
}

func NewPendingSet() *PendingSet {
	return &PendingSet{pending: make(map[string]struct{})}
}

// TryAcquire marks key pending. It returns false when key already is.
func (p *PendingSet) TryAcquire(key string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.pending[key]; ok {
		return false
	}
	p.pending[key] = struct{}{}
	return true
}

func (p *PendingSet) Release(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.pending, key)
}

func (p *PendingSet) Has(key string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.pending[key]
	return ok
}

func (p *PendingSet) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}
