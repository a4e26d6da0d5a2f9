package generic

import "sync"

// Pool is a typed sync.Pool. Values are passed through reset, when set,
// before they go back into the pool.
type Pool[T any] struct {
	pool  sync.Pool
	reset func(T)
}

func NewPool[T any](generate func() T) *Pool[T] {
	return &Pool[T]{
		pool: sync.Pool{
			New: func() any {
				return generate()
			},
		},
	}
}

// WithReset sets the hook run on every Put and returns p.
func (p *Pool[T]) WithReset(reset func(T)) *Pool[T] {
	p.reset = reset
	return p
}

func (p *Pool[T]) Get() T {
	return p.pool.Get().(T)
}

func (p *Pool[T]) Put(value T) {
	if p.reset != nil {
		p.reset(value)
	}
	p.pool.Put(value)
}
