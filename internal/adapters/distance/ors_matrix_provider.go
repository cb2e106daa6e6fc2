package distance

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"trip-route-service/internal/domain"
	"trip-route-service/internal/platform/obs"
)

// DurationCache persists pairwise driving durations (minutes) keyed by
// normalized location name. Implementations must tolerate concurrent use.
type DurationCache interface {
	GetMany(ctx context.Context, origin string, destinations []string) (map[string]float64, error)
	PutMany(ctx context.Context, origin string, results map[string]float64) error
}

// GeocodeCache persists resolved coordinates keyed by normalized name.
type GeocodeCache interface {
	GetMany(ctx context.Context, addresses []string) (map[string]domain.Coordinates, error)
	PutMany(ctx context.Context, coords map[string]domain.Coordinates) error
}

// ORSMatrixProvider implements CostMatrixProvider using OpenRouteService.
//
// It coordinates:
//   - Name normalization
//   - Persistent geocode caching
//   - Persistent per-cluster duration caching
//   - External API calls with retry/backoff
//
// Driving durations are fetched per cluster (the clusters are not mutually
// drivable); the gateway pair is priced at the configured flight time and
// the remaining cluster-crossing pairs are priced through the gateway.
// The provider is safe for concurrent use.
type ORSMatrixProvider struct {
	session       *http.Client
	apiKey        string
	baseURL       string
	profile       string
	durationCache DurationCache
	geocodeCache  GeocodeCache
}

func NewORSMatrixProvider(apiKey string, durationCache DurationCache, geocodeCache GeocodeCache) (*ORSMatrixProvider, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}

	provider := &ORSMatrixProvider{
		session:       &http.Client{Timeout: 10 * time.Second},
		apiKey:        apiKey,
		baseURL:       "https://api.openrouteservice.org",
		profile:       "driving-car",
		durationCache: durationCache,
		geocodeCache:  geocodeCache,
	}

	return provider, nil
}

// normalize ensures consistent cache keys by collapsing whitespace.
func (o *ORSMatrixProvider) normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// BuildMatrix assembles the full n×n cost matrix for one trip request.
func (o *ORSMatrixProvider) BuildMatrix(
	ctx context.Context,
	locations []domain.Location,
	flightMinutes float64,
) (_ *domain.CostMatrix, err error) {
	defer obs.Time(ctx, "ors.BuildMatrix")(&err)

	n := len(locations)
	if n < 2 {
		return nil, fmt.Errorf("%w: need at least 2 locations, got %d", domain.ErrInvalidCostMatrix, n)
	}
	if flightMinutes < 0 || flightMinutes >= domain.ForbiddenCost {
		return nil, fmt.Errorf("%w: flight time %v minutes out of range", domain.ErrInvalidCostMatrix, flightMinutes)
	}

	locs := make([]domain.Location, n)
	copy(locs, locations)
	for i := range locs {
		locs[i].ID = i
		locs[i].Name = o.normalize(locs[i].Name)
		if locs[i].Name == "" {
			return nil, fmt.Errorf("%w: location %d has an empty name", domain.ErrInvalidCostMatrix, i)
		}
	}

	gateway, err := findGateway(locs)
	if err != nil {
		return nil, err
	}

	if err := o.resolveCoordinates(ctx, locs); err != nil {
		return nil, fmt.Errorf("build matrix: %w", err)
	}

	costs := make([][]float64, n)
	for i := range costs {
		costs[i] = make([]float64, n)
		for j := range costs[i] {
			if i != j {
				costs[i][j] = domain.ForbiddenCost
			}
		}
	}

	// Driving durations only exist within a cluster.
	for _, cluster := range clusterIndices(locs) {
		if err := o.fillClusterDurations(ctx, locs, cluster, costs); err != nil {
			return nil, fmt.Errorf("build matrix: %w", err)
		}
	}

	costs[gateway.A][gateway.B] = flightMinutes
	costs[gateway.B][gateway.A] = flightMinutes

	// Any other crossing physically rides the gateway: drive to the near
	// endpoint, fly, drive from the far endpoint.
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

	matrix := &domain.CostMatrix{
		Locations: locs,
		Costs:     costs,
		Gateway:   gateway,
	}
	if err := matrix.Validate(); err != nil {
		return nil, err
	}

	return matrix, nil
}

// findGateway locates the two gateway-flagged locations and checks that they
// sit in different clusters.
func findGateway(locs []domain.Location) (domain.GatewayPair, error) {
	var gw []int
	for i, loc := range locs {
		if loc.Gateway {
			gw = append(gw, i)
		}
	}
	if len(gw) != 2 {
		return domain.GatewayPair{}, fmt.Errorf("%w: expected exactly 2 gateway locations, got %d", domain.ErrInvalidCostMatrix, len(gw))
	}
	if locs[gw[0]].Cluster == locs[gw[1]].Cluster {
		return domain.GatewayPair{}, fmt.Errorf(
			"%w: gateway locations %q and %q are both in cluster %q",
			domain.ErrInvalidCostMatrix, locs[gw[0]].Name, locs[gw[1]].Name, locs[gw[0]].Cluster,
		)
	}
	return domain.GatewayPair{A: gw[0], B: gw[1]}, nil
}

func clusterIndices(locs []domain.Location) map[string][]int {
	out := make(map[string][]int, 2)
	for i, loc := range locs {
		out[loc.Cluster] = append(out[loc.Cluster], i)
	}
	return out
}

// resolveCoordinates fills missing coordinates from the geocode cache,
// falling back to the ORS geocoder for misses.
func (o *ORSMatrixProvider) resolveCoordinates(ctx context.Context, locs []domain.Location) error {
	missing := make([]string, 0, len(locs))
	for _, loc := range locs {
		if loc.Coords == (domain.Coordinates{}) {
			missing = append(missing, loc.Name)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	hits := make(map[string]domain.Coordinates)
	if o.geocodeCache != nil {
		var err error
		hits, err = o.geocodeCache.GetMany(ctx, missing)
		if err != nil {
			return fmt.Errorf("geocode cache: %w", err)
		}
	}

	misses := make([]string, 0, len(missing))
	for _, name := range missing {
		if _, ok := hits[name]; !ok {
			misses = append(misses, name)
		}
	}

	if len(misses) > 0 {
		fresh, err := o.geocodeMany(ctx, misses)
		if err != nil {
			return fmt.Errorf("geocoding: %w", err)
		}
		if o.geocodeCache != nil {
			if err := o.geocodeCache.PutMany(ctx, fresh); err != nil {
				log.Printf("geocode cache write failed: %v", err)
			}
		}
		for k, v := range fresh {
			hits[k] = v
		}
	}

	for i := range locs {
		if locs[i].Coords != (domain.Coordinates{}) {
			continue
		}
		c, ok := hits[locs[i].Name]
		if !ok {
			return fmt.Errorf("missing coordinate for %q", locs[i].Name)
		}
		locs[i].Coords = c
	}

	return nil
}

// fillClusterDurations writes pairwise driving minutes for one cluster into
// costs, preferring the duration cache and fetching a single cluster matrix
// from ORS when any pair is missing.
func (o *ORSMatrixProvider) fillClusterDurations(
	ctx context.Context,
	locs []domain.Location,
	cluster []int,
	costs [][]float64,
) error {
	if len(cluster) < 2 {
		return nil
	}

	names := make([]string, len(cluster))
	for k, idx := range cluster {
		names[k] = locs[idx].Name
	}

	complete := true
	if o.durationCache != nil {
		for k, idx := range cluster {
			targets := make([]string, 0, len(cluster)-1)
			for t, other := range names {
				if t != k {
					targets = append(targets, other)
				}
			}

			cached, err := o.durationCache.GetMany(ctx, names[k], targets)
			if err != nil {
				return fmt.Errorf("duration cache: %w", err)
			}
			for t, tidx := range cluster {
				if t == k {
					continue
				}
				minutes, ok := cached[names[t]]
				if !ok {
					complete = false
					continue
				}
				costs[idx][tidx] = minutes
			}
		}
		if complete {
			return nil
		}
	}

	coords := make([]domain.Coordinates, len(cluster))
	for k, idx := range cluster {
		coords[k] = locs[idx].Coords
	}

	minutes, err := o.fetchDurationMatrix(ctx, coords)
	if err != nil {
		return fmt.Errorf("fetching cluster matrix: %w", err)
	}

	for k, idx := range cluster {
		row := make(map[string]float64, len(cluster)-1)
		for t, tidx := range cluster {
			if t == k {
				continue
			}
			costs[idx][tidx] = minutes[k][t]
			row[names[t]] = minutes[k][t]
		}
		if o.durationCache != nil {
			if err := o.durationCache.PutMany(ctx, names[k], row); err != nil {
				log.Printf("duration cache write failed: %v", err)
			}
		}
	}

	return nil
}
