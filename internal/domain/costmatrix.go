package domain

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidCostMatrix marks malformed routing input: non-square matrix,
// negative costs, or a gateway pair that does not connect the two clusters.
// It is rejected before any model is built.
var ErrInvalidCostMatrix = errors.New("invalid cost matrix")

// ForbiddenCost is the sentinel for cluster-crossing pairs that have no legal
// connection. Entries at or above this value are excluded from the model
// entirely rather than merely priced high.
const ForbiddenCost float64 = 1e6

// CostMatrix is the immutable per-request input to route optimization:
// pairwise travel costs in minutes over an ordered set of locations, split
// into two clusters joined by a single gateway crossing.
//
// The matrix need not be symmetric. The diagonal is ignored.
type CostMatrix struct {
	Locations []Location
	Costs     [][]float64
	Gateway   GatewayPair
}

// N returns the number of locations.
func (m *CostMatrix) N() int { return len(m.Locations) }

// Cost returns the travel cost for the ordered pair (i, j).
func (m *CostMatrix) Cost(i, j int) float64 { return m.Costs[i][j] }

// Allowed reports whether the ordered pair (i, j) may appear in a tour.
// Intra-cluster pairs and the gateway crossing are always legal; other
// cluster-crossing pairs are legal only when the matrix carries a real cost
// for them (the matrix builder prices those through the gateway).
func (m *CostMatrix) Allowed(i, j int) bool {
	if i == j {
		return false
	}
	if m.Locations[i].Cluster == m.Locations[j].Cluster {
		return true
	}
	if m.Gateway.Matches(i, j) {
		return true
	}
	return m.Costs[i][j] < ForbiddenCost
}

// Validate rejects malformed input before model construction.
// All failures wrap ErrInvalidCostMatrix.
func (m *CostMatrix) Validate() error {
	n := len(m.Locations)
	if n < 2 {
		return fmt.Errorf("%w: need at least 2 locations, got %d", ErrInvalidCostMatrix, n)
	}

	if len(m.Costs) != n {
		return fmt.Errorf("%w: matrix has %d rows for %d locations", ErrInvalidCostMatrix, len(m.Costs), n)
	}
	for i, row := range m.Costs {
		if len(row) != n {
			return fmt.Errorf("%w: row %d has %d entries, want %d", ErrInvalidCostMatrix, i, len(row), n)
		}
		for j, c := range row {
			if i == j {
				continue
			}
			if math.IsNaN(c) || c < 0 {
				return fmt.Errorf("%w: cost[%d][%d]=%v must be nonnegative", ErrInvalidCostMatrix, i, j, c)
			}
		}
	}

	clusters := make(map[string]int, 2)
	for i, loc := range m.Locations {
		if loc.Cluster == "" {
			return fmt.Errorf("%w: location %d (%q) has no cluster tag", ErrInvalidCostMatrix, i, loc.Name)
		}
		clusters[loc.Cluster]++
	}
	if len(clusters) != 2 {
		return fmt.Errorf("%w: expected exactly 2 clusters, got %d", ErrInvalidCostMatrix, len(clusters))
	}

	g := m.Gateway
	if g.A < 0 || g.A >= n || g.B < 0 || g.B >= n {
		return fmt.Errorf("%w: gateway indices (%d, %d) out of range [0, %d)", ErrInvalidCostMatrix, g.A, g.B, n)
	}
	if g.A == g.B {
		return fmt.Errorf("%w: gateway endpoints must be distinct, got %d twice", ErrInvalidCostMatrix, g.A)
	}
	if m.Locations[g.A].Cluster == m.Locations[g.B].Cluster {
		return fmt.Errorf(
			"%w: gateway (%d, %d) does not connect the two clusters (both in %q)",
			ErrInvalidCostMatrix, g.A, g.B, m.Locations[g.A].Cluster,
		)
	}
	if m.Costs[g.A][g.B] >= ForbiddenCost || m.Costs[g.B][g.A] >= ForbiddenCost {
		return fmt.Errorf("%w: gateway pair (%d, %d) has no usable cost entry", ErrInvalidCostMatrix, g.A, g.B)
	}

	return nil
}
