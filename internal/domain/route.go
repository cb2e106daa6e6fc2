package domain

// RouteSolution is the decoded output of a solve: a closed tour over all
// locations with its cost split into gateway-crossing and local components.
// It is derived once per solve and handed off immutably to rendering.
type RouteSolution struct {
	// Order holds n+1 location indices; the first and last entries are the
	// root and every interior index appears exactly once.
	Order []int

	// Costs in the matrix's native unit (minutes), taken from the original
	// matrix, never from the penalized objective.
	TotalCost   float64
	GatewayCost float64
	LocalCost   float64

	Gateway GatewayPair

	// Optimal is false when the solver returned its best incumbent at the
	// time budget without proving optimality.
	Optimal bool
}

// CrossesGateway reports whether the tour uses the gateway edge itself
// (rather than staying inside one cluster or crossing via a priced
// through-gateway pair).
func (r *RouteSolution) CrossesGateway() bool {
	return r.GatewayCost > 0
}
