package optim

import (
	"context"
	"errors"
	"math"

	"github.com/san-kum/flightpid/internal/experiment"
)

var ErrNoCandidate = errors.New("flightpid: no grid point produced the metric")

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Search replays every grid point and returns the one minimising metricName.
// Points whose build or run fails, or whose metric is missing or NaN, are
// skipped. Cancellation stops the search with the context error.
func (g *GridSearch) Search(
	ctx context.Context,
	buildExperiment func(params map[string]float64) (*experiment.Experiment, error),
	metricName string,
) (map[string]float64, float64, error) {

	best := math.Inf(1)
	var bestParams map[string]float64

	if err := g.searchRecursive(ctx, 0, make(map[string]float64), buildExperiment, metricName, &best, &bestParams); err != nil {
		return nil, 0, err
	}
	if bestParams == nil {
		return nil, 0, ErrNoCandidate
	}
	return bestParams, best, nil
}

// Points is the number of grid points Search visits.
func (g *GridSearch) Points() int {
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	buildExperiment func(map[string]float64) (*experiment.Experiment, error),
	metricName string,
	best *float64,
	bestParams *map[string]float64,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		exp, err := buildExperiment(current)
		if err != nil {
			return nil
		}

		result, err := exp.Run(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return nil
		}

		val, ok := result.Metrics[metricName]
		if !ok || math.IsNaN(val) {
			return nil
		}
		if val < *best || *bestParams == nil {
			*best = val
			*bestParams = make(map[string]float64)
			for k, v := range current {
				(*bestParams)[k] = v
			}
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, buildExperiment, metricName, best, bestParams); err != nil {
			return err
		}
	}
	return nil
}
