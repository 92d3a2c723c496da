package grpcapi

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"dispatch-router/internal/domain"
	"dispatch-router/internal/registry"
	"dispatch-router/pkg/metrics"
)

const bufSize = 1024 * 1024

var testMetrics = sync.OnceValue(func() *metrics.Metrics {
	reg := prometheus.NewRegistry()
	prometheus.DefaultRegisterer = reg
	prometheus.DefaultGatherer = reg
	return metrics.InitMetrics("dispatch_router_test", "grpcapi")
})

// dialServer starts DispatchService on an in-memory bufconn listener and
// returns a client connection using the json content-subtype codec.
func dialServer(t *testing.T) (*grpc.ClientConn, *registry.Registry) {
	t.Helper()

	reg := registry.New(16, 16, testMetrics())
	lis := bufconn.Listen(bufSize)
	server := grpc.NewServer()
	server.RegisterService(&ServiceDesc, NewDispatchService(reg))

	go func() { _ = server.Serve(lis) }()
	t.Cleanup(server.Stop)

	conn, err := grpc.NewClient(
		"passthrough://bufnet",
		grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) {
			return lis.Dial()
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn, reg
}

func invoke(ctx context.Context, conn *grpc.ClientConn, method string, req, resp any) error {
	return conn.Invoke(ctx, ServiceName+"/"+method, req, resp, grpc.CallContentSubtype(codecName))
}

func TestCreateCourierOverGRPC(t *testing.T) {
	conn, _ := dialServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var resp CourierResponse
	err := invoke(ctx, conn, "CreateCourier", &CreateCourierRequest{
		Name:     "Max",
		Location: domain.GeoPoint{Lat: 52.52, Lng: 13.405},
		Capacity: 3,
		Rating:   4.9,
	}, &resp)
	require.NoError(t, err)
	assert.Equal(t, "Max", resp.Courier.Name)
	assert.Equal(t, domain.CourierAvailable, resp.Courier.Status)
}

func TestCreateCourierValidationOverGRPC(t *testing.T) {
	conn, _ := dialServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var resp CourierResponse
	err := invoke(ctx, conn, "CreateCourier", &CreateCourierRequest{
		Name:     " ",
		Capacity: 3,
	}, &resp)
	require.Error(t, err)
}

func TestCreateOrderEnqueuesAndGetCouriersRoundTrips(t *testing.T) {
	conn, reg := dialServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var courierResp CourierResponse
	require.NoError(t, invoke(ctx, conn, "CreateCourier", &CreateCourierRequest{
		Name:     "Anja",
		Location: domain.GeoPoint{Lat: 52.5, Lng: 13.4},
		Capacity: 2,
	}, &courierResp))

	var listResp ListCouriersResponse
	require.NoError(t, invoke(ctx, conn, "GetCouriers", &Empty{}, &listResp))
	assert.Len(t, listResp.Couriers, 1)

	var orderResp OrderResponse
	require.NoError(t, invoke(ctx, conn, "CreateOrder", &CreateOrderRequest{
		Pickup:   domain.GeoPoint{Lat: 52.51, Lng: 13.39},
		Dropoff:  domain.GeoPoint{Lat: 52.54, Lng: 13.42},
		Priority: "Normal",
	}, &orderResp))
	assert.Equal(t, domain.OrderPending, orderResp.Order.Status)
	assert.Equal(t, 1, reg.Queue.Len())
}

func TestGetAssignmentsReflectsRegistryState(t *testing.T) {
	conn, reg := dialServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	want := domain.Assignment{Score: 0.8}
	reg.Assignments.Insert(want)

	var resp ListAssignmentsResponse
	require.NoError(t, invoke(ctx, conn, "GetAssignments", &Empty{}, &resp))
	require.Len(t, resp.Assignments, 1)
	assert.Equal(t, want.Score, resp.Assignments[0].Score)
}

func TestWatchAssignmentsStreamsPublishedEvents(t *testing.T) {
	conn, reg := dialServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stream, err := conn.NewStream(ctx, &ServiceDesc.Streams[0], ServiceName+"/WatchAssignments",
		grpc.CallContentSubtype(codecName))
	require.NoError(t, err)
	require.NoError(t, stream.SendMsg(&Empty{}))
	require.NoError(t, stream.CloseSend())

	require.Eventually(t, func() bool {
		return reg.Events.SubscriberCount() == 1
	}, 2*time.Second, 5*time.Millisecond)

	want := domain.Assignment{Score: 0.42}
	reg.Events.Publish(want)

	var got domain.Assignment
	require.NoError(t, stream.RecvMsg(&got))
	assert.Equal(t, want.Score, got.Score)
}
