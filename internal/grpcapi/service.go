// Package grpcapi is the gRPC transport: it mirrors internal/httpapi's
// operations over a hand-registered grpc.Server (see codec.go for why there
// is no .proto here) and adds WatchAssignments, the server-streaming feed
// REST has no equivalent for.
package grpcapi

import (
	"context"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"dispatch-router/internal/domain"
	"dispatch-router/internal/registry"
	"dispatch-router/internal/validate"
	"dispatch-router/pkg/apperror"
	"dispatch-router/pkg/logger"
)

var toGRPCStatus = apperror.ToGRPC

// DispatchService implements the dispatch-router gRPC surface.
type DispatchService struct {
	reg *registry.Registry
}

// NewDispatchService constructs a DispatchService.
func NewDispatchService(reg *registry.Registry) *DispatchService {
	return &DispatchService{reg: reg}
}

func (s *DispatchService) CreateCourier(ctx context.Context, req *CreateCourierRequest) (*CourierResponse, error) {
	name, err := validate.Name(req.Name)
	if err != nil {
		return nil, toGRPCStatus(err)
	}
	capacity, err := validate.Capacity(req.Capacity)
	if err != nil {
		return nil, toGRPCStatus(err)
	}

	courier := domain.Courier{
		ID:          uuid.New(),
		Name:        name,
		Location:    req.Location,
		Capacity:    capacity,
		CurrentLoad: 0,
		Status:      domain.CourierAvailable,
		Rating:      validate.Rating(req.Rating),
		UpdatedAt:   time.Now(),
	}
	s.reg.Couriers.Upsert(courier)

	return &CourierResponse{Courier: courier}, nil
}

func (s *DispatchService) GetCouriers(ctx context.Context, _ *Empty) (*ListCouriersResponse, error) {
	return &ListCouriersResponse{Couriers: s.reg.Couriers.Snapshot()}, nil
}

func (s *DispatchService) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*OrderResponse, error) {
	priority, err := validate.Priority(req.Priority)
	if err != nil {
		return nil, toGRPCStatus(err)
	}

	order := domain.DeliveryOrder{
		ID:        uuid.New(),
		Pickup:    req.Pickup,
		Dropoff:   req.Dropoff,
		Priority:  priority,
		Status:    domain.OrderPending,
		CreatedAt: time.Now(),
	}
	s.reg.Orders.Upsert(order)

	if err := s.reg.Queue.Push(ctx, order); err != nil {
		logger.Error("failed to enqueue order", "order_id", order.ID, "error", err)
		return nil, status.Error(codes.Internal, "failed to enqueue order")
	}
	s.reg.Metrics.SetOrdersInQueue(s.reg.Queue.Len())

	return &OrderResponse{Order: order}, nil
}

func (s *DispatchService) GetAssignments(ctx context.Context, _ *Empty) (*ListAssignmentsResponse, error) {
	return &ListAssignmentsResponse{Assignments: s.reg.Assignments.Snapshot()}, nil
}

// assignmentStream is the subset of grpc.ServerStream WatchAssignments needs;
// it is satisfied by the *grpc.serverStream the runtime hands handlers, and
// by a fake in tests.
type assignmentStream interface {
	Context() context.Context
	SendMsg(m any) error
}

// WatchAssignments streams every assignment produced from the moment the
// call is accepted onward. A slow client is subject to the same drop-on-full
// policy as any other broadcast subscriber (see internal/broadcast); it
// never slows the assignment engine.
func (s *DispatchService) WatchAssignments(_ *Empty, stream assignmentStream) error {
	sub := s.reg.Subscribe()
	defer sub.Close()

	ctx := stream.Context()
	for {
		select {
		case event, ok := <-sub.Events():
			if !ok {
				return nil
			}
			if err := stream.SendMsg(&event); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
