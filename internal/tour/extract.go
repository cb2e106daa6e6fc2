package tour

import (
	"fmt"

	"trip-route-service/internal/domain"
)

// SelectThreshold decides when a binary edge variable counts as selected.
// Solvers return floating-point relaxation remnants even for provably
// integral optima, so decoding compares against 0.5 rather than 1.0.
const SelectThreshold = 0.5

// Assignment is a solved variable valuation, independent of the backing
// solver. Edge reports the value of x(i,j); Proven reports whether the
// objective was proven optimal within the time budget.
type Assignment interface {
	Edge(i, j int) float64
	Objective() float64
	Proven() bool
}

// ExtractRoute decodes an assignment into an ordered closed tour and splits
// its cost into gateway-crossing and local components using the original
// matrix (the penalized objective is never surfaced as travel time).
//
// Starting at the root it follows the unique selected outgoing edge until
// the root recurs. Any deviation from a single cycle of length n — a missing
// or duplicate outgoing edge, an early return to a visited node — reports
// ErrMalformedTour rather than truncating or padding the route.
func ExtractRoute(asg Assignment, m *domain.CostMatrix) (*domain.RouteSolution, error) {
	n := m.N()

	order := make([]int, 0, n+1)
	order = append(order, Root)
	visited := make([]bool, n)
	visited[Root] = true

	current := Root
	for step := 0; step < n; step++ {
		next, err := selectedSuccessor(asg, n, current)
		if err != nil {
			return nil, err
		}

		if next == Root {
			if step != n-1 {
				return nil, fmt.Errorf("%w: returned to root after %d of %d stops", ErrMalformedTour, step+1, n)
			}
			order = append(order, Root)
			break
		}

		if visited[next] {
			return nil, fmt.Errorf("%w: node %d visited twice", ErrMalformedTour, next)
		}
		visited[next] = true
		order = append(order, next)
		current = next
	}

	if len(order) != n+1 || order[n] != Root {
		return nil, fmt.Errorf("%w: walk covered %d of %d stops without closing", ErrMalformedTour, len(order)-1, n)
	}

	sol := &domain.RouteSolution{
		Order:   order,
		Gateway: m.Gateway,
		Optimal: asg.Proven(),
	}

	for k := 0; k < n; k++ {
		i, j := order[k], order[k+1]
		c := m.Cost(i, j)
		sol.TotalCost += c
		if m.Gateway.Matches(i, j) {
			sol.GatewayCost += c
		} else {
			sol.LocalCost += c
		}
	}

	return sol, nil
}

// selectedSuccessor finds the single j with x(current, j) above threshold.
func selectedSuccessor(asg Assignment, n, current int) (int, error) {
	next := -1
	for j := 0; j < n; j++ {
		if j == current {
			continue
		}
		if asg.Edge(current, j) > SelectThreshold {
			if next != -1 {
				return 0, fmt.Errorf("%w: node %d has multiple selected outgoing edges (%d, %d)", ErrMalformedTour, current, next, j)
			}
			next = j
		}
	}
	if next == -1 {
		return 0, fmt.Errorf("%w: node %d has no selected outgoing edge", ErrMalformedTour, current)
	}
	return next, nil
}
