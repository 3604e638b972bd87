package provider

import "sync/atomic"

// Pool is the bounded-concurrency gate in front of one role's outbound
// calls. One boardroom request alone can fan out to twelve calls; without a
// process-wide cap shared across every served HTTP request, a single heavy
// client would exhaust the rate-limited provider account for everyone else.
type Pool struct {
	role    Role
	slots   chan struct{}
	active  atomic.Int64
	waiting atomic.Int64
}

func NewPool(role Role, limit int) *Pool {
	if limit < 1 {
		limit = 1
	}
	return &Pool{role: role, slots: make(chan struct{}, limit)}
}

// Schedule blocks until a slot is free, runs fn, and releases the slot
// whether fn succeeds or fails. Waiters are not abandoned when the owning
// request's client disconnects; the call still runs and its output is
// discarded upstream.
func (p *Pool) Schedule(fn func() error) error {
	p.waiting.Add(1)
	p.slots <- struct{}{}
	p.waiting.Add(-1)
	p.active.Add(1)
	defer func() {
		p.active.Add(-1)
		<-p.slots
	}()
	return fn()
}

// Stats reports the current in-flight and queued call counts.
func (p *Pool) Stats() (active, waiting int64) {
	return p.active.Load(), p.waiting.Load()
}

func (p *Pool) Role() Role { return p.role }

func (p *Pool) Limit() int { return cap(p.slots) }

// Pools holds the one shared gate per role, constructed once at process
// start and passed by reference into request handlers.
type Pools struct {
	Fast      *Pool
	Primary   *Pool
	Precision *Pool
}

func NewPools(fast, primary, precision int) *Pools {
	return &Pools{
		Fast:      NewPool(RoleFast, fast),
		Primary:   NewPool(RolePrimary, primary),
		Precision: NewPool(RolePrecision, precision),
	}
}

func (ps *Pools) All() []*Pool {
	return []*Pool{ps.Fast, ps.Primary, ps.Precision}
}
