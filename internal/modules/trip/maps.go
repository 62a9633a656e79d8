// README: Optional road-distance refinement via the Google Distance Matrix API.
package trip

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"

	"ridepool/internal/types"
)

// DistanceEstimator refines the straight-line distance between two points
// into a road distance. The service falls back to haversine when the
// estimator is nil or errors.
type DistanceEstimator interface {
	RoadDistanceKm(ctx context.Context, origin, destination types.Point) (float64, error)
}

type googleEstimator struct {
	client *maps.Client
}

// NewGoogleEstimator creates a Distance Matrix backed estimator.
func NewGoogleEstimator(apiKey string) (DistanceEstimator, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &googleEstimator{client: client}, nil
}

func (g *googleEstimator) RoadDistanceKm(ctx context.Context, origin, destination types.Point) (float64, error) {
	r := &maps.DistanceMatrixRequest{
		Origins:      []string{fmt.Sprintf("%f,%f", origin.Lat, origin.Lng)},
		Destinations: []string{fmt.Sprintf("%f,%f", destination.Lat, destination.Lng)},
		Mode:         maps.TravelModeDriving,
	}
	resp, err := g.client.DistanceMatrix(ctx, r)
	if err != nil {
		return 0, fmt.Errorf("maps api error: %w", err)
	}
	if len(resp.Rows) == 0 || len(resp.Rows[0].Elements) == 0 {
		return 0, fmt.Errorf("no route found")
	}
	elem := resp.Rows[0].Elements[0]
	if elem.Status != "OK" {
		return 0, fmt.Errorf("no route found: %s", elem.Status)
	}
	return float64(elem.Distance.Meters) / 1000.0, nil
}
