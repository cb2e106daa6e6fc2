package solve

import (
	"context"
	"fmt"
	"time"

	"github.com/nextmv-io/sdk/mip"

	"trip-route-service/internal/tour"
)

// DefaultProvider selects the HiGHS branch-and-cut backend.
const DefaultProvider = "highs"

// MIPTourSolver runs tour models through a mixed-integer solver behind the
// nextmv mip SDK. The backend may parallelize its search internally; that is
// opaque here and only affects wall time and which of several equal-cost
// optima is returned.
type MIPTourSolver struct {
	provider string
}

func NewMIPTourSolver() *MIPTourSolver {
	return &MIPTourSolver{provider: DefaultProvider}
}

type mipAssignment struct {
	model  *tour.Model
	sol    mip.Solution
	proven bool
}

func (a *mipAssignment) Edge(i, j int) float64 {
	if i == j {
		return 0
	}
	return a.sol.Value(a.model.X[i][j])
}

func (a *mipAssignment) Objective() float64 { return a.sol.ObjectiveValue() }
func (a *mipAssignment) Proven() bool       { return a.proven }

// Solve runs the model to optimality or to the time limit, returning the
// best incumbent in the latter case. The blocking solver call runs in its
// own goroutine so caller cancellation interrupts the wait; the solver
// itself still stops at its duration limit, so no state leaks into a
// subsequent request.
func (s *MIPTourSolver) Solve(ctx context.Context, model *tour.Model, limit time.Duration) (tour.Assignment, error) {
	solver, err := mip.NewSolver(mip.SolverProvider(s.provider), model.MIP)
	if err != nil {
		return nil, fmt.Errorf("mip solver: create %q solver: %w", s.provider, err)
	}

	// Gap 0 so "optimal" means proven optimal, not within a relative gap.
	opts := mip.SolveOptions{
		Duration:  limit,
		Verbosity: mip.Off,
		MIP:       mip.MIPOptions{Gap: mip.GapOptions{Relative: 0}},
	}

	type solveResult struct {
		sol mip.Solution
		err error
	}
	done := make(chan solveResult, 1)
	go func() {
		sol, err := solver.Solve(opts)
		done <- solveResult{sol: sol, err: err}
	}()

	var res solveResult
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-done:
	}
	if res.err != nil {
		return nil, fmt.Errorf("mip solver: solve: %w", res.err)
	}

	sol := res.sol
	if !sol.HasValues() {
		// The SDK reports both proven infeasibility and an empty incumbent
		// as a valueless solution; a run that consumed the whole budget is
		// an expired search, not a proof.
		if sol.RunTime() >= limit {
			return nil, tour.ErrNoIncumbent
		}
		return nil, tour.ErrNoRoute
	}

	return &mipAssignment{model: model, sol: sol, proven: sol.IsOptimal()}, nil
}
