package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/islandhop/tripinit/internal/core/domain"
	"github.com/islandhop/tripinit/internal/core/ports"
)

// TariffService resolves vehicle and guide rates from the tariff stores,
// with read-through caching of the (rarely changing) reference data.
type TariffService struct {
	vehicles ports.VehicleTariffRepository
	guides   ports.GuideTariffRepository
	cache    ports.CacheService
	events   ports.EventPublisher
}

// NewTariffService creates a new TariffService. cache and events may be nil.
func NewTariffService(
	vehicles ports.VehicleTariffRepository,
	guides ports.GuideTariffRepository,
	cache ports.CacheService,
	events ports.EventPublisher,
) *TariffService {
	return &TariffService{vehicles: vehicles, guides: guides, cache: cache, events: events}
}

// ResolveVehicle returns the tariff for a vehicle type id.
func (s *TariffService) ResolveVehicle(ctx context.Context, id int64) (*domain.VehicleTariff, error) {
	cacheKey := "tariffs:vehicle:" + strconv.FormatInt(id, 10)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var tariff domain.VehicleTariff
			if err := json.Unmarshal(data, &tariff); err == nil {
				return &tariff, nil
			}
		}
	}

	tariff, err := s.vehicles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Tariffs change rarely; 10 minutes is plenty
	if s.cache != nil {
		if data, err := json.Marshal(tariff); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 600)
		}
	}

	return tariff, nil
}

// ResolveGuide returns the per-day guide tariff for a city. Missing cities
// fail with domain.ErrGuideTariffNotFound naming the city; there is no
// silent zero-rate fallback.
func (s *TariffService) ResolveGuide(ctx context.Context, city string) (*domain.GuideTariff, error) {
	if city == "" {
		return nil, fmt.Errorf("%w: city is empty", domain.ErrGuideTariffNotFound)
	}

	cacheKey := "tariffs:guide:" + city
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var tariff domain.GuideTariff
			if err := json.Unmarshal(data, &tariff); err == nil {
				return &tariff, nil
			}
		}
	}

	tariff, err := s.guides.GetByCity(ctx, city)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(tariff); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 600)
		}
	}

	return tariff, nil
}

// ListVehicles returns all vehicle tariffs.
func (s *TariffService) ListVehicles(ctx context.Context) ([]domain.VehicleTariff, error) {
	return s.vehicles.List(ctx)
}

// ListGuides returns all guide tariffs.
func (s *TariffService) ListGuides(ctx context.Context) ([]domain.GuideTariff, error) {
	return s.guides.List(ctx)
}

// UpsertVehicle updates a vehicle tariff, drops the cached entry, and
// publishes a tariff-changed event so initiated trips can be repriced.
func (s *TariffService) UpsertVehicle(ctx context.Context, tariff *domain.VehicleTariff) error {
	if tariff.TypeName == "" {
		return &domain.ValidationError{Msg: "vehicle type name is required"}
	}
	if tariff.PricePerKm < 0 {
		return &domain.ValidationError{Msg: "price per km must be non-negative"}
	}
	if tariff.FlatPerDayFee != nil && *tariff.FlatPerDayFee < 0 {
		return &domain.ValidationError{Msg: "flat per-day fee must be non-negative"}
	}

	if err := s.vehicles.Upsert(ctx, tariff); err != nil {
		return &domain.PersistenceError{Op: "vehicle tariff upsert", Err: err}
	}

	if s.cache != nil {
		_ = s.cache.Delete(ctx, "tariffs:vehicle:"+strconv.FormatInt(tariff.ID, 10))
	}
	if s.events != nil {
		_ = s.events.PublishVehicleTariffChanged(ctx, tariff)
	}
	return nil
}

// UpsertGuide updates a city's guide tariff, drops the cached entry, and
// publishes a tariff-changed event.
func (s *TariffService) UpsertGuide(ctx context.Context, tariff *domain.GuideTariff) error {
	if tariff.City == "" {
		return &domain.ValidationError{Msg: "city is required"}
	}
	if tariff.PricePerDay < 0 {
		return &domain.ValidationError{Msg: "price per day must be non-negative"}
	}

	if err := s.guides.Upsert(ctx, tariff); err != nil {
		return &domain.PersistenceError{Op: "guide tariff upsert", Err: err}
	}

	if s.cache != nil {
		_ = s.cache.Delete(ctx, "tariffs:guide:"+tariff.City)
	}
	if s.events != nil {
		_ = s.events.PublishGuideTariffChanged(ctx, tariff)
	}
	return nil
}
