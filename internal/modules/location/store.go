// README: Driver presence store backed by Redis GEO and per-driver TTL keys.
package location

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"ridepool/internal/types"
)

const (
	driverGeoKey      = "presence:drivers"
	lastSeenKeyPrefix = "presence:driver:%s:last_seen"
	// Drivers that stop reporting go stale after this window.
	lastSeenTTL = 10 * time.Minute
)

type Store struct {
	redis *redis.Client
}

func NewStore(redis *redis.Client) *Store {
	return &Store{redis: redis}
}

func (s *Store) Update(ctx context.Context, driverID types.ID, p types.Point) error {
	pipe := s.redis.Pipeline()
	pipe.GeoAdd(ctx, driverGeoKey, &redis.GeoLocation{
		Name:      string(driverID),
		Longitude: p.Lng,
		Latitude:  p.Lat,
	})
	pipe.Set(ctx, lastSeenKey(driverID), time.Now().UTC().Format(time.RFC3339), lastSeenTTL)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Store) Remove(ctx context.Context, driverID types.ID) error {
	pipe := s.redis.Pipeline()
	pipe.ZRem(ctx, driverGeoKey, string(driverID))
	pipe.Del(ctx, lastSeenKey(driverID))
	_, err := pipe.Exec(ctx)
	return err
}

// Nearby returns driver IDs within radiusKm of p, closest first, at most
// limit of them.
func (s *Store) Nearby(ctx context.Context, p types.Point, radiusKm float64, limit int) ([]types.ID, error) {
	results, err := s.redis.GeoSearch(ctx, driverGeoKey, &redis.GeoSearchQuery{
		Longitude:  p.Lng,
		Latitude:   p.Lat,
		Radius:     radiusKm,
		RadiusUnit: "km",
		Sort:       "ASC",
		Count:      limit,
	}).Result()
	if err != nil {
		return nil, err
	}
	ids := make([]types.ID, len(results))
	for i, r := range results {
		ids[i] = types.ID(r)
	}
	return ids, nil
}

// LastSeen returns when the driver last reported a position, and whether
// the presence is still fresh.
func (s *Store) LastSeen(ctx context.Context, driverID types.ID) (time.Time, bool, error) {
	val, err := s.redis.Get(ctx, lastSeenKey(driverID)).Result()
	if err == redis.Nil {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}

func lastSeenKey(driverID types.ID) string {
	return fmt.Sprintf(lastSeenKeyPrefix, string(driverID))
}
