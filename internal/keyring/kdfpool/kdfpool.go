// Package kdfpool runs expensive key-derivation work on a bounded pool of
// goroutines so that Argon2id hashing never blocks the caller indefinitely
// and never runs unbounded in parallel under concurrent unlock attempts.
package kdfpool

import "context"

// Pool bounds the number of key-derivation calls that may run at once.
type Pool struct {
	sem chan struct{}
}

// New creates a Pool allowing at most maxConcurrent derivations to run at
// the same time. A maxConcurrent of 0 or less is treated as 1.
func New(maxConcurrent int) *Pool {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Pool{sem: make(chan struct{}, maxConcurrent)}
}

// Derive runs fn on a pool goroutine and returns its result. If ctx is
// canceled before a slot frees up or before fn completes, Derive returns
// ctx.Err() immediately; fn keeps running to completion in the background
// so the underlying Argon2id call is never left with a half-used buffer.
func (p *Pool) Derive(ctx context.Context, fn func() ([]byte, error)) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	select {
	case p.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	type result struct {
		key []byte
		err error
	}
	done := make(chan result, 1)

	go func() {
		defer func() { <-p.sem }()
		key, err := fn()
		done <- result{key: key, err: err}
	}()

	select {
	case r := <-done:
		return r.key, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
