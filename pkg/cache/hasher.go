package cache

import "fmt"

// BuildAssignmentKey builds the cache key for a single order's assignment
// result.
func BuildAssignmentKey(orderID string) string {
	return fmt.Sprintf("assignment:%s", orderID)
}
