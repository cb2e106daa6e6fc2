package tour

import (
	"errors"
	"reflect"
	"testing"

	"trip-route-service/internal/domain"
)

// stubAssignment exposes a fixed set of selected edges, mimicking the noisy
// near-integral values real solvers return.
type stubAssignment struct {
	edges  map[[2]int]float64
	proven bool
}

func (a *stubAssignment) Edge(i, j int) float64 { return a.edges[[2]int{i, j}] }
func (a *stubAssignment) Objective() float64    { return 0 }
func (a *stubAssignment) Proven() bool          { return a.proven }

func fourStopMatrix() *domain.CostMatrix {
	locs := []domain.Location{
		{ID: 0, Name: "home", Cluster: "a"},
		{ID: 1, Name: "airport-a", Cluster: "a", Gateway: true},
		{ID: 2, Name: "airport-b", Cluster: "b", Gateway: true},
		{ID: 3, Name: "stop-b", Cluster: "b"},
	}
	costs := [][]float64{
		{0, 10, 120, 130},
		{10, 0, 110, 120},
		{120, 110, 0, 10},
		{130, 120, 10, 0},
	}
	return &domain.CostMatrix{Locations: locs, Costs: costs, Gateway: domain.GatewayPair{A: 1, B: 2}}
}

func TestExtractRouteDecodesCycle(t *testing.T) {
	m := fourStopMatrix()

	// 0 -> 1 -> 2 -> 3 -> 0 with solver noise on the selected variables.
	asg := &stubAssignment{
		proven: true,
		edges: map[[2]int]float64{
			{0, 1}: 0.999,
			{1, 2}: 1.0,
			{2, 3}: 0.987,
			{3, 0}: 1.013,
		},
	}

	sol, err := ExtractRoute(asg, m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantOrder := []int{0, 1, 2, 3, 0}
	if !reflect.DeepEqual(sol.Order, wantOrder) {
		t.Fatalf("order = %v, want %v", sol.Order, wantOrder)
	}

	if sol.TotalCost != 260 {
		t.Fatalf("total = %v, want 260", sol.TotalCost)
	}
	if sol.GatewayCost != 110 {
		t.Fatalf("gateway cost = %v, want 110", sol.GatewayCost)
	}
	if sol.LocalCost != 150 {
		t.Fatalf("local cost = %v, want 150", sol.LocalCost)
	}
	if sol.GatewayCost+sol.LocalCost != sol.TotalCost {
		t.Fatal("cost decomposition must sum to the total")
	}
	if !sol.Optimal {
		t.Fatal("proven assignment must yield an optimal solution")
	}
	if !sol.CrossesGateway() {
		t.Fatal("tour uses the gateway edge")
	}
}

func TestExtractRouteIsDeterministic(t *testing.T) {
	m := fourStopMatrix()
	asg := &stubAssignment{
		proven: true,
		edges: map[[2]int]float64{
			{0, 1}: 1, {1, 2}: 1, {2, 3}: 1, {3, 0}: 1,
		},
	}

	first, err := ExtractRoute(asg, m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := ExtractRoute(asg, m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("repeated extraction differs: %+v vs %+v", first, second)
	}
}

func TestExtractRouteRejectsMalformedAssignments(t *testing.T) {
	cases := []struct {
		name  string
		edges map[[2]int]float64
	}{
		{
			name: "early return to root",
			// 0 -> 1 -> 0 plus a disconnected 2 <-> 3 subtour.
			edges: map[[2]int]float64{
				{0, 1}: 1, {1, 0}: 1,
				{2, 3}: 1, {3, 2}: 1,
			},
		},
		{
			name: "no outgoing edge",
			edges: map[[2]int]float64{
				{0, 1}: 1, {1, 2}: 1, {3, 0}: 1,
			},
		},
		{
			name: "two outgoing edges",
			edges: map[[2]int]float64{
				{0, 1}: 1, {1, 2}: 1, {1, 3}: 1, {2, 3}: 1, {3, 0}: 1,
			},
		},
		{
			name: "revisits a node",
			edges: map[[2]int]float64{
				{0, 1}: 1, {1, 3}: 1, {3, 1}: 1,
			},
		},
		{
			name:  "nothing selected",
			edges: map[[2]int]float64{},
		},
	}

	m := fourStopMatrix()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			asg := &stubAssignment{edges: tc.edges, proven: true}

			_, err := ExtractRoute(asg, m)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !errors.Is(err, ErrMalformedTour) {
				t.Fatalf("error %v does not wrap ErrMalformedTour", err)
			}
		})
	}
}

func TestSelectThresholdSplitsNoise(t *testing.T) {
	m := fourStopMatrix()

	// Values below the threshold are relaxation remnants, not selections.
	asg := &stubAssignment{
		proven: true,
		edges: map[[2]int]float64{
			{0, 1}: 0.51,
			{0, 2}: 0.49,
			{1, 2}: 1,
			{2, 3}: 1,
			{3, 0}: 1,
		},
	}

	sol, err := ExtractRoute(asg, m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(sol.Order, []int{0, 1, 2, 3, 0}) {
		t.Fatalf("order = %v, want [0 1 2 3 0]", sol.Order)
	}
}
