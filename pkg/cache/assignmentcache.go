package cache

import (
	"context"
	"encoding/json"
	"time"
)

// AssignmentCache holds the score breakdown of committed assignments, keyed
// by order ID. Entries are written with Set when an assignment commits; Get
// does not fall back to any other store on a miss.
type AssignmentCache struct {
	cache      Cache
	defaultTTL time.Duration
}

// CachedAssignment is the cached shape of a single order-to-courier match.
type CachedAssignment struct {
	OrderID        string    `json:"order_id"`
	CourierID      string    `json:"courier_id"`
	Score          float64   `json:"score"`
	DistanceScore  float64   `json:"distance_score"`
	LoadScore      float64   `json:"load_score"`
	RatingScore    float64   `json:"rating_score"`
	PriorityScore  float64   `json:"priority_score"`
	AssignedAt     time.Time `json:"assigned_at"`
}

// NewAssignmentCache creates a cache for assignment results.
func NewAssignmentCache(cache Cache, defaultTTL time.Duration) *AssignmentCache {
	if defaultTTL <= 0 {
		defaultTTL = 10 * time.Minute
	}
	return &AssignmentCache{
		cache:      cache,
		defaultTTL: defaultTTL,
	}
}

// Get returns the cached assignment for an order, if present.
func (ac *AssignmentCache) Get(ctx context.Context, orderID string) (*CachedAssignment, bool, error) {
	key := BuildAssignmentKey(orderID)

	data, err := ac.cache.Get(ctx, key)
	if err != nil {
		if err == ErrKeyNotFound {
			return nil, false, nil
		}
		return nil, false, err
	}

	var result CachedAssignment
	if err := json.Unmarshal(data, &result); err != nil {
		_ = ac.cache.Delete(ctx, key) //nolint:errcheck // best effort cleanup
		return nil, false, nil
	}

	return &result, true, nil
}

// Set stores an assignment result, using the cache's default TTL if ttl <= 0.
func (ac *AssignmentCache) Set(ctx context.Context, result *CachedAssignment, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = ac.defaultTTL
	}

	data, err := json.Marshal(result)
	if err != nil {
		return err
	}

	return ac.cache.Set(ctx, BuildAssignmentKey(result.OrderID), data, ttl)
}

// Invalidate removes the cached assignment for an order, e.g. once its
// status moves past Assigned.
func (ac *AssignmentCache) Invalidate(ctx context.Context, orderID string) error {
	return ac.cache.Delete(ctx, BuildAssignmentKey(orderID))
}

// InvalidateAll clears every cached assignment.
func (ac *AssignmentCache) InvalidateAll(ctx context.Context) (int64, error) {
	return ac.cache.DeleteByPattern(ctx, "assignment:*")
}
