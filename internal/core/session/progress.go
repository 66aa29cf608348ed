package session

import "sync"

// Progress tracks decode progress as a whole percentage. When the total is
// zero or unknown the percentage freezes at its last known value instead of
// dividing by zero or inventing precision.
type Progress struct {
	mu         sync.Mutex
	total      int
	totalKnown bool
	decoded    int
	lastPct    int
}

// SetTotal installs the declared total from the stream header.
func (p *Progress) SetTotal(total int, known bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.total = total
	p.totalKnown = known
}

// Advance records one decoded feature and returns the new decoded count.
func (p *Progress) Advance() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.decoded++
	p.updatePctLocked()
	return p.decoded
}

// Decoded returns the number of features decoded so far.
func (p *Progress) Decoded() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.decoded
}

// Total returns the declared total and whether it is known.
func (p *Progress) Total() (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.total, p.totalKnown
}

// Percent returns floor(decoded/total*100) clamped to [0,100]. Monotonically
// non-decreasing over a single load.
func (p *Progress) Percent() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastPct
}

func (p *Progress) updatePctLocked() {
	if !p.totalKnown || p.total <= 0 {
		return
	}
	pct := p.decoded * 100 / p.total
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	if pct > p.lastPct {
		p.lastPct = pct
	}
}
