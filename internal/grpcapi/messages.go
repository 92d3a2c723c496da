package grpcapi

import (
	"dispatch-router/internal/domain"
	"dispatch-router/internal/validate"
)

// Empty is the request message for RPCs that take no arguments.
type Empty struct{}

// CreateCourierRequest is the request message for DispatchService.CreateCourier.
type CreateCourierRequest struct {
	Name     string          `json:"name"`
	Location domain.GeoPoint `json:"location"`
	Capacity int             `json:"capacity"`
	Rating   float64         `json:"rating"`
}

// Validate satisfies pkg/interceptors.Validator, letting the gRPC
// validation interceptor reject a malformed courier before it ever reaches
// DispatchService.CreateCourier.
func (r *CreateCourierRequest) Validate() error {
	if _, err := validate.Name(r.Name); err != nil {
		return err
	}
	if _, err := validate.Capacity(r.Capacity); err != nil {
		return err
	}
	return nil
}

// CourierResponse wraps a single courier.
type CourierResponse struct {
	Courier domain.Courier `json:"courier"`
}

// ListCouriersResponse is the response message for DispatchService.GetCouriers.
type ListCouriersResponse struct {
	Couriers []domain.Courier `json:"couriers"`
}

// CreateOrderRequest is the request message for DispatchService.CreateOrder.
type CreateOrderRequest struct {
	Pickup   domain.GeoPoint `json:"pickup"`
	Dropoff  domain.GeoPoint `json:"dropoff"`
	Priority string          `json:"priority"`
}

// Validate satisfies pkg/interceptors.Validator, letting the gRPC
// validation interceptor reject an unknown priority literal before it
// ever reaches DispatchService.CreateOrder.
func (r *CreateOrderRequest) Validate() error {
	_, err := validate.Priority(r.Priority)
	return err
}

// OrderResponse wraps a single delivery order.
type OrderResponse struct {
	Order domain.DeliveryOrder `json:"order"`
}

// ListAssignmentsResponse is the response message for DispatchService.GetAssignments.
type ListAssignmentsResponse struct {
	Assignments []domain.Assignment `json:"assignments"`
}
