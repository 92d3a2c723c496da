package scoring

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"dispatch-router/internal/domain"
)

func courier(lat, lng float64, load, capacity int, rating float64) domain.Courier {
	return domain.Courier{
		ID:          uuid.New(),
		Name:        "test-courier",
		Location:    domain.GeoPoint{Lat: lat, Lng: lng},
		Capacity:    capacity,
		CurrentLoad: load,
		Status:      domain.CourierAvailable,
		Rating:      rating,
		UpdatedAt:   time.Now(),
	}
}

func order(priority domain.Priority, lat, lng float64) domain.DeliveryOrder {
	return domain.DeliveryOrder{
		ID:        uuid.New(),
		Pickup:    domain.GeoPoint{Lat: lat, Lng: lng},
		Dropoff:   domain.GeoPoint{Lat: lat + 0.01, Lng: lng + 0.01},
		Priority:  priority,
		Status:    domain.OrderPending,
		CreatedAt: time.Now(),
	}
}

func TestCompute_CloserCourierScoresHigher(t *testing.T) {
	o := order(domain.PriorityNormal, 53.5511, 9.9937)

	near := courier(53.5512, 9.9938, 0, 3, 4.5)
	far := courier(53.7, 10.2, 0, 3, 4.5)

	nearScore, _ := Compute(near, o)
	farScore, _ := Compute(far, o)

	assert.Greater(t, nearScore, farScore)
}

func TestCompute_HeavilyLoadedCourierIsPenalized(t *testing.T) {
	o := order(domain.PriorityNormal, 53.5511, 9.9937)

	light := courier(53.5512, 9.9938, 0, 3, 4.5)
	heavy := courier(53.5512, 9.9938, 2, 3, 4.5)

	lightScore, _ := Compute(light, o)
	heavyScore, _ := Compute(heavy, o)

	assert.Greater(t, lightScore, heavyScore)
}

func TestCompute_UrgentPriorityIncreasesPriorityComponent(t *testing.T) {
	c := courier(53.5512, 9.9938, 0, 3, 4.5)

	_, normalBreakdown := Compute(c, order(domain.PriorityNormal, 53.5511, 9.9937))
	_, urgentBreakdown := Compute(c, order(domain.PriorityUrgent, 53.5511, 9.9937))

	assert.Greater(t, urgentBreakdown.PriorityScore, normalBreakdown.PriorityScore)
}

func TestLoadScore_ZeroCapacityIsZero(t *testing.T) {
	assert.Equal(t, 0.0, loadScore(0, 0))
}

func TestRatingScore_ClampedAboveFive(t *testing.T) {
	assert.Equal(t, 1.0, ratingScore(9.9))
}
