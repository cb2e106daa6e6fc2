package distance

import (
	"context"
	"fmt"

	"trip-route-service/internal/domain"
)

type MockPair struct {
	From, To string
	Minutes  float64
}

// MockMatrixProvider builds cost matrices from a fixed pair table, with the
// same gateway and through-gateway pricing as the real provider. Used in
// tests and offline runs.
type MockMatrixProvider struct {
	m map[string]float64
}

func NewMockMatrixProvider(pairs []MockPair) *MockMatrixProvider {
	m := make(map[string]float64, len(pairs))
	for _, p := range pairs {
		m[p.From+"|"+p.To] = p.Minutes
	}
	return &MockMatrixProvider{m: m}
}

func (p *MockMatrixProvider) BuildMatrix(
	ctx context.Context,
	locations []domain.Location,
	flightMinutes float64,
) (*domain.CostMatrix, error) {
	n := len(locations)
	locs := make([]domain.Location, n)
	copy(locs, locations)
	for i := range locs {
		locs[i].ID = i
	}

	gateway, err := findGateway(locs)
	if err != nil {
		return nil, err
	}

	costs := make([][]float64, n)
	for i := range costs {
		costs[i] = make([]float64, n)
		for j := range costs[i] {
			if i == j {
				continue
			}
			if locs[i].Cluster != locs[j].Cluster {
				costs[i][j] = domain.ForbiddenCost
				continue
			}
			minutes, ok := p.m[locs[i].Name+"|"+locs[j].Name]
			if !ok {
				return nil, fmt.Errorf("missing pair %q -> %q", locs[i].Name, locs[j].Name)
			}
			costs[i][j] = minutes
		}
	}

	costs[gateway.A][gateway.B] = flightMinutes
	costs[gateway.B][gateway.A] = flightMinutes

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j || locs[i].Cluster == locs[j].Cluster || gateway.Matches(i, j) {
				continue
			}
			near, far := gateway.A, gateway.B
			if locs[i].Cluster != locs[near].Cluster {
				near, far = far, near
			}
			costs[i][j] = costs[i][near] + flightMinutes + costs[far][j]
		}
	}

	matrix := &domain.CostMatrix{Locations: locs, Costs: costs, Gateway: gateway}
	if err := matrix.Validate(); err != nil {
		return nil, err
	}

	return matrix, nil
}
