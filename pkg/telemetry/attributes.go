package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Attribute keys attached to assignment-engine spans.
const (
	AttrOrderID       = "dispatch.order_id"
	AttrOrderPriority = "dispatch.order_priority"
	AttrCandidates    = "dispatch.candidate_count"
	AttrRequeued      = "dispatch.requeued"
	AttrCourierID     = "dispatch.courier_id"
	AttrScore         = "dispatch.score"
)

// OrderAttributes identifies the order a processOrder span is working on.
func OrderAttributes(orderID, priority string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrOrderID, orderID),
		attribute.String(AttrOrderPriority, priority),
	}
}

// CandidateAttributes records how many couriers were eligible when the
// engine scored an order.
func CandidateAttributes(count int) attribute.KeyValue {
	return attribute.Int(AttrCandidates, count)
}

// RequeuedAttribute marks a span whose order was deferred for lack of an
// eligible courier.
func RequeuedAttribute(requeued bool) attribute.KeyValue {
	return attribute.Bool(AttrRequeued, requeued)
}

// AssignmentAttributes records the winning courier and its score once an
// order commits.
func AssignmentAttributes(courierID string, score float64) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrCourierID, courierID),
		attribute.Float64(AttrScore, score),
	}
}
