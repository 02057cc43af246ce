package experiment

import (
	"context"
	"sync"

	"github.com/san-kum/flightpid/internal/replay"
)

// Batch replays independent experiments concurrently. Each experiment owns
// its runner and metrics, so nothing is shared between goroutines.
type Batch struct {
	experiments []*Experiment
}

func NewBatch(exps ...*Experiment) *Batch {
	return &Batch{experiments: exps}
}

// Run returns results in the order the experiments were given. The first
// error, in that same order, is returned alongside whatever did complete.
func (b *Batch) Run(ctx context.Context) ([]*replay.Result, error) {
	results := make([]*replay.Result, len(b.experiments))
	errs := make([]error, len(b.experiments))

	var wg sync.WaitGroup
	for i, exp := range b.experiments {
		wg.Add(1)
		go func(idx int, e *Experiment) {
			defer wg.Done()
			results[idx], errs[idx] = e.Run(ctx)
		}(i, exp)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return results, err
		}
	}
	return results, nil
}
