package ports

import (
	"context"

	"github.com/islandhop/tripinit/internal/core/domain"
)

// TripPlanRepository reads stored itineraries. Plans are owned and mutated
// by the trip-planning service; this engine only reads them.
type TripPlanRepository interface {
	// GetByIDAndUser returns the plan scoped to its owner, or a
	// domain.ErrTripNotFound-wrapped error when absent.
	GetByIDAndUser(ctx context.Context, tripID, userID string) (*domain.TripPlan, error)
}

// VehicleTariffRepository persists per-kilometre vehicle rates.
type VehicleTariffRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.VehicleTariff, error)
	List(ctx context.Context) ([]domain.VehicleTariff, error)
	Upsert(ctx context.Context, tariff *domain.VehicleTariff) error
}

// GuideTariffRepository persists per-day guide rates keyed by city.
type GuideTariffRepository interface {
	GetByCity(ctx context.Context, city string) (*domain.GuideTariff, error)
	List(ctx context.Context) ([]domain.GuideTariff, error)
	Upsert(ctx context.Context, tariff *domain.GuideTariff) error
}

// InitiatedTripRepository persists computed results, keyed by trip id.
type InitiatedTripRepository interface {
	// Upsert replaces any prior result for the same trip id (no history).
	Upsert(ctx context.Context, trip *domain.InitiatedTrip) error
	GetByTripID(ctx context.Context, tripID, userID string) (*domain.InitiatedTrip, error)
	// ListByVehicleType and ListByCity back the repricing worker.
	ListByVehicleType(ctx context.Context, vehicleTypeID int64) ([]domain.InitiatedTrip, error)
	ListByCity(ctx context.Context, city string) ([]domain.InitiatedTrip, error)
}
