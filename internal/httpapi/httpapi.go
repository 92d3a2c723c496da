// Package httpapi is the REST transport: request/response DTOs, route
// wiring, and the JSON error envelope. It is thin transport over the
// registry and queue — every invariant lives in internal/engine and
// internal/registry, not here.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"dispatch-router/internal/domain"
	"dispatch-router/internal/registry"
	"dispatch-router/internal/validate"
	"dispatch-router/pkg/apperror"
	"dispatch-router/pkg/audit"
	"dispatch-router/pkg/cache"
	"dispatch-router/pkg/logger"
)

const auditService = "dispatch-router"

// logAudit records a state-changing REST call through the global audit
// logger (see pkg/server, which sets it once per process); a Noop logger is
// installed by default, so this is always safe to call.
func logAudit(ctx context.Context, method, resource string, action audit.Action, resourceID string) {
	entry := audit.NewEntry().
		Service(auditService).
		Method(method).
		Action(action).
		Outcome(audit.OutcomeSuccess).
		Resource(resource, resourceID).
		Build()
	if err := audit.Log(ctx, entry); err != nil {
		logger.Warn("failed to write audit entry", "method", method, "error", err)
	}
}

// Handler bundles the registry dependencies every REST endpoint needs.
type Handler struct {
	reg *registry.Registry
}

// New constructs a Handler.
func New(reg *registry.Registry) *Handler {
	return &Handler{reg: reg}
}

// Mount registers every REST route on mux. Callers are expected to also
// mount /metrics and /ws themselves (pkg/metrics and internal/wsapi own
// those handlers).
func (h *Handler) Mount(mux *http.ServeMux) {
	mux.HandleFunc("POST /couriers", h.createCourier)
	mux.HandleFunc("GET /couriers", h.listCouriers)
	mux.HandleFunc("PATCH /couriers/{id}/status", h.patchCourierStatus)
	mux.HandleFunc("PATCH /couriers/{id}/location", h.patchCourierLocation)
	mux.HandleFunc("POST /orders", h.createOrder)
	mux.HandleFunc("GET /orders/{id}", h.getOrder)
	mux.HandleFunc("GET /assignments", h.listAssignments)
	mux.HandleFunc("GET /health", h.health)
}

// --- couriers ---

type createCourierRequest struct {
	Name     string           `json:"name"`
	Location *domain.GeoPoint `json:"location"`
	Capacity int              `json:"capacity"`
	Rating   float64          `json:"rating"`
}

func (h *Handler) createCourier(w http.ResponseWriter, r *http.Request) {
	var req createCourierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.New(apperror.CodeBadRequest, "invalid request body"))
		return
	}

	name, err := validate.Name(req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	capacity, err := validate.Capacity(req.Capacity)
	if err != nil {
		writeError(w, err)
		return
	}
	location, err := validate.GeoPointPresent(req.Location, "location")
	if err != nil {
		writeError(w, err)
		return
	}

	courier := domain.Courier{
		ID:          uuid.New(),
		Name:        name,
		Location:    location,
		Capacity:    capacity,
		CurrentLoad: 0,
		Status:      domain.CourierAvailable,
		Rating:      validate.Rating(req.Rating),
		UpdatedAt:   time.Now(),
	}
	h.reg.Couriers.Upsert(courier)
	logAudit(r.Context(), "POST /couriers", "courier", audit.ActionCreate, courier.ID.String())

	writeJSON(w, http.StatusOK, courier)
}

func (h *Handler) listCouriers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.reg.Couriers.Snapshot())
}

type patchStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) patchCourierStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, apperror.New(apperror.CodeBadRequest, "invalid courier id"))
		return
	}

	var req patchStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.New(apperror.CodeBadRequest, "invalid request body"))
		return
	}
	status, err := validate.CourierStatus(req.Status)
	if err != nil {
		writeError(w, err)
		return
	}

	err = h.reg.Couriers.WithLock(id, func(c domain.Courier) domain.Courier {
		c.Status = status
		c.UpdatedAt = time.Now()
		return c
	})
	if err != nil {
		writeError(w, apperror.New(apperror.CodeNotFound, "courier not found"))
		return
	}

	courier, _ := h.reg.Couriers.Get(id)
	logAudit(r.Context(), "PATCH /couriers/{id}/status", "courier", audit.ActionUpdate, id.String())
	writeJSON(w, http.StatusOK, courier)
}

type patchLocationRequest struct {
	Location *domain.GeoPoint `json:"location"`
}

func (h *Handler) patchCourierLocation(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, apperror.New(apperror.CodeBadRequest, "invalid courier id"))
		return
	}

	var req patchLocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.New(apperror.CodeBadRequest, "invalid request body"))
		return
	}
	location, err := validate.GeoPointPresent(req.Location, "location")
	if err != nil {
		writeError(w, err)
		return
	}

	err = h.reg.Couriers.WithLock(id, func(c domain.Courier) domain.Courier {
		c.Location = location
		c.UpdatedAt = time.Now()
		return c
	})
	if err != nil {
		writeError(w, apperror.New(apperror.CodeNotFound, "courier not found"))
		return
	}

	courier, _ := h.reg.Couriers.Get(id)
	logAudit(r.Context(), "PATCH /couriers/{id}/location", "courier", audit.ActionUpdate, id.String())
	writeJSON(w, http.StatusOK, courier)
}

// --- orders ---

type createOrderRequest struct {
	Pickup   *domain.GeoPoint `json:"pickup"`
	Dropoff  *domain.GeoPoint `json:"dropoff"`
	Priority string           `json:"priority"`
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.New(apperror.CodeBadRequest, "invalid request body"))
		return
	}

	pickup, err := validate.GeoPointPresent(req.Pickup, "pickup")
	if err != nil {
		writeError(w, err)
		return
	}
	dropoff, err := validate.GeoPointPresent(req.Dropoff, "dropoff")
	if err != nil {
		writeError(w, err)
		return
	}
	priority, err := validate.Priority(req.Priority)
	if err != nil {
		writeError(w, err)
		return
	}

	order := domain.DeliveryOrder{
		ID:        uuid.New(),
		Pickup:    pickup,
		Dropoff:   dropoff,
		Priority:  priority,
		Status:    domain.OrderPending,
		CreatedAt: time.Now(),
	}
	h.reg.Orders.Upsert(order)

	// Push blocks (propagating back-pressure to this handler) while the
	// queue is full; it fails only if the engine has stopped.
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()
	if err := h.reg.Queue.Push(ctx, order); err != nil {
		logger.Error("failed to enqueue order", "order_id", order.ID, "error", err)
		writeError(w, apperror.Wrap(err, apperror.CodeInternal, "failed to enqueue order"))
		return
	}
	h.reg.Metrics.SetOrdersInQueue(h.reg.Queue.Len())
	logAudit(r.Context(), "POST /orders", "order", audit.ActionCreate, order.ID.String())

	writeJSON(w, http.StatusOK, order)
}

type orderResponse struct {
	domain.DeliveryOrder
	Assignment *cache.CachedAssignment `json:"assignment,omitempty"`
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, apperror.New(apperror.CodeBadRequest, "invalid order id"))
		return
	}

	order, err := h.reg.Orders.Get(id)
	if err != nil {
		writeError(w, apperror.New(apperror.CodeNotFound, "order not found"))
		return
	}

	resp := orderResponse{DeliveryOrder: order}
	if order.AssignedCourier != nil && h.reg.AssignmentCache != nil {
		if cached, ok, err := h.reg.AssignmentCache.Get(r.Context(), order.ID.String()); err == nil && ok {
			resp.Assignment = cached
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- assignments & health ---

func (h *Handler) listAssignments(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.reg.Assignments.Snapshot())
}

type healthResponse struct {
	Status      string `json:"status"`
	Couriers    int    `json:"couriers"`
	Orders      int    `json:"orders"`
	Assignments int    `json:"assignments"`
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:      "ok",
		Couriers:    h.reg.Couriers.Len(),
		Orders:      h.reg.Orders.Len(),
		Assignments: h.reg.Assignments.Len(),
	})
}

// --- response helpers ---

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

type errorEnvelope struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, err error) {
	code := apperror.Code(err)
	status := http.StatusInternalServerError
	switch code {
	case apperror.CodeBadRequest:
		status = http.StatusBadRequest
	case apperror.CodeNotFound:
		status = http.StatusNotFound
	case apperror.CodeConflict:
		status = http.StatusConflict
	case apperror.CodeNoAvailableCouriers:
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, errorEnvelope{Error: err.Error()})
}
