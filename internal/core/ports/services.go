package ports

import (
	"context"

	"github.com/islandhop/tripinit/internal/core/domain"
)

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishTripInitiated(ctx context.Context, trip *domain.InitiatedTrip) error
	PublishVehicleTariffChanged(ctx context.Context, tariff *domain.VehicleTariff) error
	PublishGuideTariffChanged(ctx context.Context, tariff *domain.GuideTariff) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
