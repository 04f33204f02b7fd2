package worker

import (
	"context"
	"sync"
)

// Outcome pairs one input with its result or error.
type Outcome[T any, R any] struct {
	Input  T
	Result R
	Err    error
}

// Func resolves a single input.
type Func[T any, R any] func(ctx context.Context, input T) (R, error)

// Pool runs a resolve function over batches of inputs with bounded
// concurrency. Per-input failures are reported in the outcomes, never by
// aborting the batch.
type Pool[T any, R any] struct {
	workers int
	resolve Func[T, R]
}

// NewPool creates a pool with the given concurrency.
func NewPool[T any, R any](workers int, fn Func[T, R]) *Pool[T, R] {
	if workers < 1 {
		workers = 1
	}
	return &Pool[T, R]{workers: workers, resolve: fn}
}

// Run resolves all inputs and returns one outcome per input, in input
// order. Cancelling the context stops workers early; unprocessed inputs
// carry the context's error.
func (p *Pool[T, R]) Run(ctx context.Context, inputs []T) []Outcome[T, R] {
	outcomes := make([]Outcome[T, R], len(inputs))
	for i := range inputs {
		outcomes[i].Input = inputs[i]
	}

	indexes := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indexes {
				result, err := p.resolve(ctx, inputs[idx])
				outcomes[idx] = Outcome[T, R]{Input: inputs[idx], Result: result, Err: err}
			}
		}()
	}

	for i := range inputs {
		select {
		case <-ctx.Done():
			for j := i; j < len(inputs); j++ {
				outcomes[j].Err = ctx.Err()
			}
			close(indexes)
			wg.Wait()
			return outcomes
		case indexes <- i:
		}
	}
	close(indexes)
	wg.Wait()
	return outcomes
}
