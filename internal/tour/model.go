package tour

import (
	"fmt"

	"github.com/nextmv-io/sdk/mip"

	"trip-route-service/internal/domain"
)

// Root is the fixed tour anchor. Index 0 is always the start and end of the
// route; the MTZ inequalities eliminate every cycle that avoids it.
const Root = 0

// DefaultPenaltyFraction scales the gateway penalty off the largest matrix
// entry. With the standard forbidden sentinel this reproduces a surcharge
// large enough to bias ties without ever outweighing a forbidden edge.
const DefaultPenaltyFraction = 0.01

// Model is a request-scoped MIP formulation of the two-cluster tour problem.
// It is built fresh per solve and never shared or mutated across requests.
type Model struct {
	Matrix  *domain.CostMatrix
	Penalty float64

	MIP mip.Model
	// X[i][j] selects the directed edge i->j; nil on the diagonal.
	X [][]mip.Bool
	// U[i] is the MTZ order variable for node i, bounded in [1, n-1];
	// nil for the root.
	U []mip.Float
}

// DefaultPenalty derives a gateway penalty weight from the matrix itself:
// a fraction of the largest off-diagonal entry. Callers may override it;
// the weight only discourages gratuitous gateway use and biases among
// equal-cost tours, it never affects feasibility.
func DefaultPenalty(m *domain.CostMatrix) float64 {
	maxCost := 0.0
	n := m.N()
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			if c := m.Cost(i, j); c > maxCost {
				maxCost = c
			}
		}
	}
	return DefaultPenaltyFraction * maxCost
}

// BuildModel constructs the tour MIP for a validated cost matrix:
//
//   - binary x(i,j) for every ordered pair i != j
//   - continuous u(i) in [1, n-1] for every non-root node
//   - exactly one outgoing and one incoming edge per node
//   - x(i,j) = 0 for every disallowed cluster-crossing pair
//   - MTZ subtour elimination: u(i) - u(j) + n*x(i,j) <= n-1
//
// The objective minimizes matrix cost plus penalty*x on both orientations of
// the gateway edge. The penalty stays a soft term: hard-forcing the gateway
// variables can conflict with the MTZ inequalities for some node orderings
// and produce spurious infeasibility.
//
// Pure function of its inputs; it holds no state beyond the returned Model.
func BuildModel(m *domain.CostMatrix, penalty float64) (*Model, error) {
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("build model: %w", err)
	}
	if penalty < 0 {
		return nil, fmt.Errorf("build model: %w: penalty weight %v must be nonnegative", domain.ErrInvalidCostMatrix, penalty)
	}

	n := m.N()
	model := mip.NewModel()
	model.Objective().SetMinimize()

	x := make([][]mip.Bool, n)
	for i := 0; i < n; i++ {
		x[i] = make([]mip.Bool, n)
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			x[i][j] = model.NewBool()

			if !m.Allowed(i, j) {
				// Cluster-partition constraint: only the gateway (and pairs
				// the matrix prices through it) may cross clusters.
				forbid := model.NewConstraint(mip.Equal, 0)
				forbid.NewTerm(1, x[i][j])
				continue
			}

			model.Objective().NewTerm(m.Cost(i, j), x[i][j])
			if m.Gateway.Matches(i, j) {
				model.Objective().NewTerm(penalty, x[i][j])
			}
		}
	}

	for i := 0; i < n; i++ {
		outgoing := model.NewConstraint(mip.Equal, 1)
		incoming := model.NewConstraint(mip.Equal, 1)
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			outgoing.NewTerm(1, x[i][j])
			incoming.NewTerm(1, x[j][i])
		}
	}

	u := make([]mip.Float, n)
	for i := 1; i < n; i++ {
		u[i] = model.NewFloat(1, float64(n-1))
	}

	for i := 1; i < n; i++ {
		for j := 1; j < n; j++ {
			if i == j {
				continue
			}
			mtz := model.NewConstraint(mip.LessThanOrEqual, float64(n-1))
			mtz.NewTerm(1, u[i])
			mtz.NewTerm(-1, u[j])
			mtz.NewTerm(float64(n), x[i][j])
		}
	}

	return &Model{
		Matrix:  m,
		Penalty: penalty,
		MIP:     model,
		X:       x,
		U:       u,
	}, nil
}
