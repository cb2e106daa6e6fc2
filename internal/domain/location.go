package domain

// A visitable stop in one of the trip's two geographic clusters.
// Index positions in a CostMatrix refer to the order of its Locations slice.
type Location struct {
	ID      int
	Name    string
	Coords  Coordinates
	Cluster string
	Gateway bool
}

// GatewayPair is the single pair of location indices allowed to form a direct
// edge between the two clusters (e.g. the two airports of a flight leg).
type GatewayPair struct {
	A int
	B int
}

// Matches reports whether (i, j) is the gateway crossing in either orientation.
func (g GatewayPair) Matches(i, j int) bool {
	return (i == g.A && j == g.B) || (i == g.B && j == g.A)
}
