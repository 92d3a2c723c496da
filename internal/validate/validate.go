// Package validate holds the ingress-boundary checks shared by the REST and
// gRPC transports. Nothing here touches the registry or the queue — it only
// decides whether a request is well-formed enough to reach them.
package validate

import (
	"strings"

	"dispatch-router/internal/domain"
	"dispatch-router/pkg/apperror"
)

// Name trims surrounding whitespace and rejects an empty result.
func Name(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", apperror.NewWithField(apperror.CodeBadRequest, "name must not be empty", "name")
	}
	return trimmed, nil
}

// Capacity rejects non-positive values and caps anything above
// domain.MaxCapacity, mirroring the original's saturating uint8.
func Capacity(raw int) (int, error) {
	if raw <= 0 {
		return 0, apperror.NewWithField(apperror.CodeBadRequest, "capacity must be greater than zero", "capacity")
	}
	return domain.ClampCapacity(raw), nil
}

// Rating clamps into [0, 5]; out-of-range input is not an error, it is
// silently corrected per spec.
func Rating(raw float64) float64 {
	return domain.ClampRating(raw)
}

// Priority validates a raw priority string against the known enum.
func Priority(raw string) (domain.Priority, error) {
	p, ok := domain.ParsePriority(raw)
	if !ok {
		return "", apperror.NewWithField(apperror.CodeBadRequest,
			"priority must be one of Low, Normal, High, Urgent", "priority")
	}
	return p, nil
}

// CourierStatus validates a raw status string against the known enum.
func CourierStatus(raw string) (domain.CourierStatus, error) {
	s, ok := domain.ParseCourierStatus(raw)
	if !ok {
		return "", apperror.NewWithField(apperror.CodeBadRequest,
			"status must be one of Available, Busy, Offline", "status")
	}
	return s, nil
}

// GeoPointPresent reports whether a pointer-typed optional geo point was
// actually supplied on the wire; pickup and dropoff are both required.
func GeoPointPresent(p *domain.GeoPoint, field string) (domain.GeoPoint, error) {
	if p == nil {
		return domain.GeoPoint{}, apperror.NewWithField(apperror.CodeBadRequest, field+" is required", field)
	}
	return *p, nil
}
