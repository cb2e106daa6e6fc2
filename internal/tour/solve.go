package tour

import (
	"context"
	"fmt"
	"time"

	"trip-route-service/internal/domain"
)

// DefaultTimeLimit bounds a solve when the caller does not supply a budget.
// The problem is NP-hard; on expiry the best incumbent is returned instead
// of blocking indefinitely.
const DefaultTimeLimit = 30 * time.Second

// Solver runs a built model to an assignment within a time budget.
//
// Implementations must return the best incumbent (with Proven() false) when
// interrupted at the limit, ErrNoRoute only on proven infeasibility, and
// ErrNoIncumbent when the budget expires with no feasible tour found.
// Cancelling ctx must interrupt an in-flight solve.
type Solver interface {
	Solve(ctx context.Context, model *Model, limit time.Duration) (Assignment, error)
}

// Options tune a single solve. Zero values select defaults.
type Options struct {
	// Penalty overrides the gateway penalty weight; nil selects
	// DefaultPenalty for the matrix.
	Penalty *float64

	// TimeLimit bounds solver wall time; zero selects DefaultTimeLimit.
	TimeLimit time.Duration
}

// Solve validates the matrix, builds a fresh model, runs the solver, and
// decodes the result. Nothing is shared between invocations: each call owns
// its model and assignment, so concurrent solves never interact.
func Solve(ctx context.Context, m *domain.CostMatrix, opts Options, solver Solver) (*domain.RouteSolution, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	penalty := DefaultPenalty(m)
	if opts.Penalty != nil {
		penalty = *opts.Penalty
	}

	limit := opts.TimeLimit
	if limit <= 0 {
		limit = DefaultTimeLimit
	}

	model, err := BuildModel(m, penalty)
	if err != nil {
		return nil, err
	}

	asg, err := solver.Solve(ctx, model, limit)
	if err != nil {
		return nil, fmt.Errorf("solve tour: %w", err)
	}

	sol, err := ExtractRoute(asg, m)
	if err != nil {
		return nil, fmt.Errorf("solve tour: %w", err)
	}

	return sol, nil
}
