package encoder

import "context"

// Pool bounds the number of concurrently running codec subprocesses.
// Callers acquire a slot before encoding and release it when done,
// making the concurrency limit explicit in the API instead of hidden
// in package globals.
type Pool struct {
	sem chan struct{}
}

// NewPool creates a pool with the given number of slots.
func NewPool(size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{sem: make(chan struct{}, size)}
}

// Acquire blocks until a slot is free or ctx is done.
func (p *Pool) Acquire(ctx context.Context) error {
	select {
	case p.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release returns a slot to the pool.
func (p *Pool) Release() {
	<-p.sem
}

// Size returns the pool's slot count.
func (p *Pool) Size() int { return cap(p.sem) }
