// Package engine implements the assignment engine: the single serialized
// consumer of the order queue. It drains orders one at a time, scores every
// eligible courier, commits the winning (order, courier) pair under the
// registry's per-entity locking, publishes the resulting assignment, and
// re-queues orders for which no courier is currently eligible.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"dispatch-router/internal/domain"
	"dispatch-router/internal/queue"
	"dispatch-router/internal/registry"
	"dispatch-router/internal/scoring"
	"dispatch-router/pkg/audit"
	"dispatch-router/pkg/cache"
	"dispatch-router/pkg/telemetry"
)

// DefaultRequeueDelay is how long the engine sleeps before re-pushing an
// order for which no courier was eligible at the time of the last attempt.
const DefaultRequeueDelay = 250 * time.Millisecond

const (
	outcomeSuccess = "success"
	outcomeError   = "error"
)

var tracer = otel.Tracer("dispatch-router/engine")

// Engine is the assignment loop. The zero value is not usable; construct
// with New.
type Engine struct {
	reg          *registry.Registry
	requeueDelay time.Duration
	log          *slog.Logger
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithRequeueDelay overrides DefaultRequeueDelay.
func WithRequeueDelay(d time.Duration) Option {
	return func(e *Engine) { e.requeueDelay = d }
}

// WithLogger overrides the default slog.Default() logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// New constructs an Engine bound to reg.
func New(reg *registry.Registry, opts ...Option) *Engine {
	e := &Engine{
		reg:          reg,
		requeueDelay: DefaultRequeueDelay,
		log:          slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run drains the order queue until ctx is cancelled or the queue is closed.
// Exactly one goroutine should call Run for a given Registry — this is what
// serializes every commit and makes the engine the sole writer of
// courier.CurrentLoad. Run always returns a non-nil error: ctx.Err() when ctx
// is cancelled, or an error reporting that the queue was permanently closed,
// which is a fatal condition for the process.
func (e *Engine) Run(ctx context.Context) error {
	for {
		order, ok := e.reg.Queue.Pop(ctx)
		if !ok {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return errors.New("engine: order queue closed, no producers remain")
		}

		e.reg.Metrics.SetOrdersInQueue(e.reg.Queue.Len())

		start := time.Now()
		outcome, err := e.processOrder(ctx, order)
		duration := time.Since(start)

		e.reg.Metrics.RecordAssignment(outcome, duration)
		if err != nil {
			e.log.Error("order processing failed", "order_id", order.ID, "error", err)
		}
	}
}

// processOrder runs the candidate-filter / score / commit pipeline for a
// single order. A "no eligible courier" result is not an error: the order
// is deferred and re-queued, and processOrder reports success.
func (e *Engine) processOrder(ctx context.Context, order domain.DeliveryOrder) (outcome string, err error) {
	ctx, span := tracer.Start(ctx, "engine.processOrder", trace.WithAttributes(
		telemetry.OrderAttributes(order.ID.String(), string(order.Priority))...,
	))
	defer span.End()

	candidates := e.eligibleCouriers()
	span.SetAttributes(telemetry.CandidateAttributes(len(candidates)))
	if len(candidates) == 0 {
		span.SetAttributes(telemetry.RequeuedAttribute(true))
		return e.deferOrder(ctx, order)
	}

	winner, score, breakdown, ok := selectWinner(candidates, order)
	if !ok {
		// Every candidate produced a NaN score (malformed input); treat the
		// same as "no eligible courier" rather than commit a meaningless pair.
		span.SetAttributes(telemetry.RequeuedAttribute(true))
		return e.deferOrder(ctx, order)
	}

	if err := e.commit(ctx, order, winner, score, breakdown); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return outcomeError, err
	}

	span.SetAttributes(telemetry.AssignmentAttributes(winner.ID.String(), score)...)
	return outcomeSuccess, nil
}

// eligibleCouriers snapshot-iterates the couriers registry and returns
// clones of every courier that is Available and under capacity. Staleness
// between this snapshot and the eventual commit is accepted (see the
// package doc and spec's eligibility-race note).
func (e *Engine) eligibleCouriers() []domain.Courier {
	snapshot := e.reg.Couriers.Snapshot()
	candidates := make([]domain.Courier, 0, len(snapshot))
	for _, c := range snapshot {
		if c.CanTakeOrder() {
			candidates = append(candidates, c)
		}
	}
	return candidates
}

// deferOrder handles the "no eligible courier" case: log, sleep, re-push.
// The order stays Pending and is returned to the tail of the queue, which
// itself applies back-pressure if it is full.
func (e *Engine) deferOrder(ctx context.Context, order domain.DeliveryOrder) (string, error) {
	e.log.Warn("no eligible courier, deferring order", "order_id", order.ID)

	select {
	case <-time.After(e.requeueDelay):
	case <-ctx.Done():
		return outcomeError, ctx.Err()
	}

	if err := e.reg.Queue.Push(ctx, order); err != nil {
		if errors.Is(err, queue.ErrClosed) {
			return outcomeError, err
		}
		return outcomeError, err
	}
	e.reg.Metrics.SetOrdersInQueue(e.reg.Queue.Len())
	return outcomeSuccess, nil
}

// selectWinner scores every candidate and returns the one with the maximum
// total score. Ties are broken by iteration order over candidates, which is
// inherited from the registry's unspecified map iteration order. NaN scores
// (which well-formed inputs never produce) never win.
func selectWinner(candidates []domain.Courier, order domain.DeliveryOrder) (domain.Courier, float64, domain.ScoreBreakdown, bool) {
	var (
		best        domain.Courier
		bestScore   = math.Inf(-1)
		bestBreak   domain.ScoreBreakdown
		foundWinner bool
	)

	for _, c := range candidates {
		score, breakdown := scoring.Compute(c, order)
		if math.IsNaN(score) {
			continue
		}
		if score > bestScore {
			best, bestScore, bestBreak = c, score, breakdown
			foundWinner = true
		}
	}

	return best, bestScore, bestBreak, foundWinner
}

// commit applies the order transition, courier mutation, assignment
// insertion, and event publish for a single winning (order, courier) pair.
// No global lock is held across these steps; see the package doc for the
// accepted eligibility race.
func (e *Engine) commit(ctx context.Context, order domain.DeliveryOrder, winner domain.Courier, score float64, breakdown domain.ScoreBreakdown) error {
	winnerID := winner.ID

	order.Status = domain.OrderAssigned
	order.AssignedCourier = &winnerID
	e.reg.Orders.Upsert(order)

	var updatedLoad, capacity int
	err := e.reg.Couriers.WithLock(winnerID, func(c domain.Courier) domain.Courier {
		if c.CurrentLoad < domain.MaxCapacity {
			c.CurrentLoad++
		}
		if c.CurrentLoad >= c.Capacity {
			c.Status = domain.CourierBusy
		}
		c.UpdatedAt = time.Now()
		updatedLoad, capacity = c.CurrentLoad, c.Capacity
		return c
	})
	if err != nil {
		return err
	}
	e.reg.Metrics.SetCourierUtilization(winnerID.String(), updatedLoad, capacity)

	assignment := domain.Assignment{
		ID:             uuid.New(),
		OrderID:        order.ID,
		CourierID:      winnerID,
		Score:          score,
		ScoreBreakdown: breakdown,
		AssignedAt:     time.Now(),
	}
	e.reg.Assignments.Insert(assignment)

	// Publish never blocks and a failure (no subscribers) is not possible
	// with this broadcaster's semantics, so there is nothing to handle here.
	e.reg.Events.Publish(assignment)

	if e.reg.AssignmentCache != nil {
		cached := &cache.CachedAssignment{
			OrderID:       assignment.OrderID.String(),
			CourierID:     assignment.CourierID.String(),
			Score:         assignment.Score,
			DistanceScore: assignment.ScoreBreakdown.DistanceScore,
			LoadScore:     assignment.ScoreBreakdown.LoadScore,
			RatingScore:   assignment.ScoreBreakdown.RatingScore,
			PriorityScore: assignment.ScoreBreakdown.PriorityScore,
			AssignedAt:    assignment.AssignedAt,
		}
		if err := e.reg.AssignmentCache.Set(ctx, cached, 0); err != nil {
			e.log.Warn("failed to cache assignment", "assignment_id", assignment.ID, "error", err)
		}
	}

	entry := audit.NewEntry().
		Service("dispatch-router").
		Method("engine.commit").
		Action(audit.ActionAssign).
		Outcome(audit.OutcomeSuccess).
		Resource("assignment", assignment.ID.String()).
		Meta("order_id", order.ID.String()).
		Meta("courier_id", winnerID.String()).
		Build()
	if err := audit.Log(ctx, entry); err != nil {
		e.log.Warn("failed to write audit entry", "assignment_id", assignment.ID, "error", err)
	}

	return nil
}
