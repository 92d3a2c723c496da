// Package domain holds the entity types shared across the registry, the
// assignment engine, and every transport (REST, gRPC, WebSocket).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// GeoPoint is a WGS84 latitude/longitude pair.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// CourierStatus is the availability state of a courier.
type CourierStatus string

const (
	CourierAvailable CourierStatus = "Available"
	CourierBusy      CourierStatus = "Busy"
	CourierOffline   CourierStatus = "Offline"
)

// MaxCapacity bounds how large a courier's capacity/load can be; incoming
// values are clamped to it to mirror the saturating uint8 the domain was
// originally modeled with.
const MaxCapacity = 255

// Courier is a delivery agent available to take orders.
type Courier struct {
	ID          uuid.UUID     `json:"id"`
	Name        string        `json:"name"`
	Location    GeoPoint      `json:"location"`
	Capacity    int           `json:"capacity"`
	CurrentLoad int           `json:"current_load"`
	Status      CourierStatus `json:"status"`
	Rating      float64       `json:"rating"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// CanTakeOrder reports whether the courier is eligible for a new order.
func (c Courier) CanTakeOrder() bool {
	return c.Status == CourierAvailable && c.CurrentLoad < c.Capacity
}

// Priority is the urgency tier of a delivery order.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityNormal Priority = "Normal"
	PriorityHigh   Priority = "High"
	PriorityUrgent Priority = "Urgent"
)

// OrderStatus is the lifecycle state of a delivery order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "Pending"
	OrderAssigned  OrderStatus = "Assigned"
	OrderInTransit OrderStatus = "InTransit"
	OrderDelivered OrderStatus = "Delivered"
)

// DeliveryOrder is a request to move goods from pickup to dropoff.
type DeliveryOrder struct {
	ID              uuid.UUID   `json:"id"`
	Pickup          GeoPoint    `json:"pickup"`
	Dropoff         GeoPoint    `json:"dropoff"`
	Priority        Priority    `json:"priority"`
	Status          OrderStatus `json:"status"`
	AssignedCourier *uuid.UUID  `json:"assigned_courier"`
	CreatedAt       time.Time   `json:"created_at"`
}

// ScoreBreakdown is the per-factor contribution behind a total score.
type ScoreBreakdown struct {
	DistanceScore float64 `json:"distance_score"`
	LoadScore     float64 `json:"load_score"`
	RatingScore   float64 `json:"rating_score"`
	PriorityScore float64 `json:"priority_score"`
}

// Assignment records that an order was matched to a courier.
type Assignment struct {
	ID             uuid.UUID      `json:"id"`
	OrderID        uuid.UUID      `json:"order_id"`
	CourierID      uuid.UUID      `json:"courier_id"`
	Score          float64        `json:"score"`
	ScoreBreakdown ScoreBreakdown `json:"score_breakdown"`
	AssignedAt     time.Time      `json:"assigned_at"`
}

// ClampCapacity bounds a requested capacity/load value to [0, MaxCapacity].
func ClampCapacity(v int) int {
	if v < 0 {
		return 0
	}
	if v > MaxCapacity {
		return MaxCapacity
	}
	return v
}

// ClampRating bounds a requested rating to [0, 5].
func ClampRating(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 5 {
		return 5
	}
	return v
}

// ParsePriority validates a raw priority string against the known set.
func ParsePriority(s string) (Priority, bool) {
	switch Priority(s) {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return Priority(s), true
	default:
		return "", false
	}
}

// ParseCourierStatus validates a raw status string against the known set.
func ParseCourierStatus(s string) (CourierStatus, bool) {
	switch CourierStatus(s) {
	case CourierAvailable, CourierBusy, CourierOffline:
		return CourierStatus(s), true
	default:
		return "", false
	}
}
