package solve

import (
	"context"
	"fmt"
	"math"
	"time"

	"trip-route-service/internal/domain"
	"trip-route-service/internal/tour"
)

// MaxExhaustiveLocations caps enumeration at a size where (n-1)! stays
// tractable within an interactive budget.
const MaxExhaustiveLocations = 10

// ExhaustiveTourSolver proves optimality by enumerating every permutation of
// the non-root locations, honoring the same edge legality and gateway
// penalty as the MIP model. It is exact for small instances and serves as
// the ground truth the MIP formulation is checked against.
type ExhaustiveTourSolver struct{}

func NewExhaustiveTourSolver() *ExhaustiveTourSolver {
	return &ExhaustiveTourSolver{}
}

func (s *ExhaustiveTourSolver) Solve(ctx context.Context, model *tour.Model, limit time.Duration) (tour.Assignment, error) {
	n := model.Matrix.N()
	if n > MaxExhaustiveLocations {
		return nil, fmt.Errorf("exhaustive solver: %d locations exceeds enumeration limit of %d", n, MaxExhaustiveLocations)
	}

	search := &permutationSearch{
		ctx:      ctx,
		deadline: time.Now().Add(limit),
		m:        model.Matrix,
		penalty:  model.Penalty,
		n:        n,
		visited:  make([]bool, n),
		order:    make([]int, 1, n+1),
		bestObj:  math.Inf(1),
	}
	search.visited[tour.Root] = true
	search.order[0] = tour.Root
	search.walk(tour.Root, 1, 0)

	if search.bestOrder == nil {
		if search.truncated {
			return nil, tour.ErrNoIncumbent
		}
		return nil, tour.ErrNoRoute
	}

	return &exhaustiveAssignment{
		n:      n,
		order:  search.bestOrder,
		obj:    search.bestObj,
		proven: !search.truncated,
	}, nil
}

type permutationSearch struct {
	ctx      context.Context
	deadline time.Time
	m        *domain.CostMatrix
	penalty  float64

	n       int
	visited []bool
	order   []int

	bestObj   float64
	bestOrder []int

	steps     int
	truncated bool
}

// edgeCost mirrors the MIP objective: matrix cost plus the soft gateway
// surcharge. The surcharge is constant across feasible spanning tours, so it
// biases ties without distorting the optimum.
func (s *permutationSearch) edgeCost(i, j int) float64 {
	c := s.m.Cost(i, j)
	if s.m.Gateway.Matches(i, j) {
		c += s.penalty
	}
	return c
}

func (s *permutationSearch) expired() bool {
	if s.truncated {
		return true
	}
	s.steps++
	if s.steps%1024 == 0 {
		if s.ctx.Err() != nil || time.Now().After(s.deadline) {
			s.truncated = true
		}
	}
	return s.truncated
}

func (s *permutationSearch) walk(current, depth int, cost float64) {
	if s.expired() {
		return
	}

	if depth == s.n {
		if !s.m.Allowed(current, tour.Root) {
			return
		}
		total := cost + s.edgeCost(current, tour.Root)
		if total < s.bestObj {
			s.bestObj = total
			s.bestOrder = append(append([]int(nil), s.order...), tour.Root)
		}
		return
	}

	for j := 1; j < s.n; j++ {
		if s.visited[j] || !s.m.Allowed(current, j) {
			continue
		}
		step := s.edgeCost(current, j)
		// Costs are nonnegative, so a partial tour at or above the incumbent
		// cannot improve on it.
		if cost+step >= s.bestObj {
			continue
		}

		s.visited[j] = true
		s.order = append(s.order, j)
		s.walk(j, depth+1, cost+step)
		s.order = s.order[:len(s.order)-1]
		s.visited[j] = false
	}
}

type exhaustiveAssignment struct {
	n      int
	order  []int
	obj    float64
	proven bool
}

func (a *exhaustiveAssignment) Edge(i, j int) float64 {
	for k := 0; k < a.n; k++ {
		if a.order[k] == i && a.order[k+1] == j {
			return 1
		}
	}
	return 0
}

func (a *exhaustiveAssignment) Objective() float64 { return a.obj }
func (a *exhaustiveAssignment) Proven() bool       { return a.proven }
