package domain

import (
	"errors"
	"testing"
)

// twoClusterMatrix builds a small valid matrix: cluster "a" holds 0 and 1,
// cluster "b" holds 2 and 3, gateway (1, 2). Cross pairs other than the
// gateway are forbidden unless the test overrides them.
func twoClusterMatrix() *CostMatrix {
	locs := []Location{
		{ID: 0, Name: "a0", Cluster: "a"},
		{ID: 1, Name: "a1", Cluster: "a", Gateway: true},
		{ID: 2, Name: "b0", Cluster: "b", Gateway: true},
		{ID: 3, Name: "b1", Cluster: "b"},
	}

	costs := [][]float64{
		{0, 10, ForbiddenCost, ForbiddenCost},
		{10, 0, 110, ForbiddenCost},
		{ForbiddenCost, 110, 0, 10},
		{ForbiddenCost, ForbiddenCost, 10, 0},
	}

	return &CostMatrix{
		Locations: locs,
		Costs:     costs,
		Gateway:   GatewayPair{A: 1, B: 2},
	}
}

func TestCostMatrixValidateAccepts(t *testing.T) {
	m := twoClusterMatrix()
	if err := m.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCostMatrixValidateRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(m *CostMatrix)
	}{
		{
			name:   "too few locations",
			mutate: func(m *CostMatrix) { m.Locations = m.Locations[:1]; m.Costs = m.Costs[:1] },
		},
		{
			name:   "row count mismatch",
			mutate: func(m *CostMatrix) { m.Costs = m.Costs[:3] },
		},
		{
			name:   "ragged row",
			mutate: func(m *CostMatrix) { m.Costs[2] = m.Costs[2][:2] },
		},
		{
			name:   "negative cost",
			mutate: func(m *CostMatrix) { m.Costs[0][1] = -1 },
		},
		{
			name:   "missing cluster tag",
			mutate: func(m *CostMatrix) { m.Locations[3].Cluster = "" },
		},
		{
			name: "three clusters",
			mutate: func(m *CostMatrix) {
				m.Locations[3].Cluster = "c"
			},
		},
		{
			name:   "gateway index out of range",
			mutate: func(m *CostMatrix) { m.Gateway = GatewayPair{A: 1, B: 9} },
		},
		{
			name:   "gateway endpoints identical",
			mutate: func(m *CostMatrix) { m.Gateway = GatewayPair{A: 2, B: 2} },
		},
		{
			name:   "gateway inside one cluster",
			mutate: func(m *CostMatrix) { m.Gateway = GatewayPair{A: 0, B: 1} },
		},
		{
			name:   "gateway entry forbidden",
			mutate: func(m *CostMatrix) { m.Costs[1][2] = ForbiddenCost },
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := twoClusterMatrix()
			tc.mutate(m)

			err := m.Validate()
			if err == nil {
				t.Fatal("expected an error")
			}
			if !errors.Is(err, ErrInvalidCostMatrix) {
				t.Fatalf("error %v does not wrap ErrInvalidCostMatrix", err)
			}
		})
	}
}

func TestCostMatrixAllowed(t *testing.T) {
	m := twoClusterMatrix()

	if m.Allowed(0, 0) {
		t.Fatal("diagonal must never be allowed")
	}
	if !m.Allowed(0, 1) || !m.Allowed(2, 3) {
		t.Fatal("intra-cluster pairs must be allowed")
	}
	if !m.Allowed(1, 2) || !m.Allowed(2, 1) {
		t.Fatal("the gateway must be allowed in both orientations")
	}
	if m.Allowed(0, 3) || m.Allowed(3, 0) {
		t.Fatal("forbidden cross pairs must not be allowed")
	}

	// A cross pair with a real cost entry (priced through the gateway by
	// the matrix builder) is legal.
	m.Costs[0][3] = 130
	if !m.Allowed(0, 3) {
		t.Fatal("priced cross pair must be allowed")
	}
	if m.Allowed(3, 0) {
		t.Fatal("pricing one orientation must not legalize the other")
	}
}

func TestGatewayPairMatches(t *testing.T) {
	g := GatewayPair{A: 1, B: 2}

	if !g.Matches(1, 2) || !g.Matches(2, 1) {
		t.Fatal("gateway must match both orientations")
	}
	if g.Matches(1, 1) || g.Matches(0, 2) || g.Matches(1, 3) {
		t.Fatal("non-gateway pairs must not match")
	}
}
