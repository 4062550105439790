package usecases_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/islandhop/tripinit/internal/core/domain"
	"github.com/islandhop/tripinit/internal/core/usecases"
)

type mockCache struct {
	mu    sync.Mutex
	store map[string][]byte
	dels  []string
}

func newMockCache() *mockCache {
	return &mockCache{store: make(map[string][]byte)}
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.store[key]; ok {
		return v, nil
	}
	return nil, errors.New("valkey nil message")
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store[key] = value
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.store, key)
	m.dels = append(m.dels, key)
	return nil
}

type recordingPublisher struct {
	mu       sync.Mutex
	vehicles []int64
	guides   []string
}

func (p *recordingPublisher) PublishTripInitiated(ctx context.Context, trip *domain.InitiatedTrip) error {
	return nil
}
func (p *recordingPublisher) PublishVehicleTariffChanged(ctx context.Context, tariff *domain.VehicleTariff) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.vehicles = append(p.vehicles, tariff.ID)
	return nil
}
func (p *recordingPublisher) PublishGuideTariffChanged(ctx context.Context, tariff *domain.GuideTariff) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.guides = append(p.guides, tariff.City)
	return nil
}

func TestResolveVehicle_CachesAfterFirstRead(t *testing.T) {
	reads := 0
	vehicles := &mockVehicleRepo{
		getByIDFn: func(ctx context.Context, id int64) (*domain.VehicleTariff, error) {
			reads++
			return &domain.VehicleTariff{ID: id, TypeName: "Sedan", PricePerKm: 100}, nil
		},
	}
	svc := usecases.NewTariffService(vehicles, &mockGuideRepo{}, newMockCache(), nil)

	for i := 0; i < 3; i++ {
		tariff, err := svc.ResolveVehicle(context.Background(), 7)
		if err != nil {
			t.Fatal(err)
		}
		if tariff.PricePerKm != 100 {
			t.Errorf("price = %v, want 100", tariff.PricePerKm)
		}
	}
	if reads != 1 {
		t.Errorf("store read %d times, want 1 (cached after first)", reads)
	}
}

func TestResolveGuide_EmptyCityIsNotFound(t *testing.T) {
	svc := usecases.NewTariffService(&mockVehicleRepo{}, &mockGuideRepo{}, nil, nil)

	_, err := svc.ResolveGuide(context.Background(), "")
	if !errors.Is(err, domain.ErrGuideTariffNotFound) {
		t.Fatalf("expected ErrGuideTariffNotFound for empty city, got %v", err)
	}
}

func TestResolveGuide_MissingCityNamesCity(t *testing.T) {
	svc := usecases.NewTariffService(&mockVehicleRepo{}, guideRates(nil), nil, nil)

	_, err := svc.ResolveGuide(context.Background(), "Atlantis")
	if !errors.Is(err, domain.ErrGuideTariffNotFound) {
		t.Fatalf("expected ErrGuideTariffNotFound, got %v", err)
	}
	if got := err.Error(); !strings.Contains(got, "Atlantis") {
		t.Errorf("error %q does not name the missing city", got)
	}
}

func TestUpsertVehicle_ValidatesInput(t *testing.T) {
	svc := usecases.NewTariffService(&mockVehicleRepo{}, &mockGuideRepo{}, nil, nil)

	tests := []struct {
		name   string
		tariff domain.VehicleTariff
	}{
		{"empty type name", domain.VehicleTariff{PricePerKm: 10}},
		{"negative rate", domain.VehicleTariff{TypeName: "Sedan", PricePerKm: -1}},
		{"negative flat fee", domain.VehicleTariff{TypeName: "Sedan", PricePerKm: 10, FlatPerDayFee: ptr(-5.0)}},
	}
	for _, tt := range tests {
		err := svc.UpsertVehicle(context.Background(), &tt.tariff)
		var ve *domain.ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("%s: expected ValidationError, got %v", tt.name, err)
		}
	}
}

func TestUpsertVehicle_InvalidatesCacheAndPublishes(t *testing.T) {
	cache := newMockCache()
	events := &recordingPublisher{}
	svc := usecases.NewTariffService(&mockVehicleRepo{}, &mockGuideRepo{}, cache, events)

	tariff := &domain.VehicleTariff{ID: 7, TypeName: "Sedan", PricePerKm: 120}
	if err := svc.UpsertVehicle(context.Background(), tariff); err != nil {
		t.Fatal(err)
	}

	if len(cache.dels) != 1 || cache.dels[0] != "tariffs:vehicle:7" {
		t.Errorf("cache invalidation wrong: %v", cache.dels)
	}
	if len(events.vehicles) != 1 || events.vehicles[0] != 7 {
		t.Errorf("tariff change not published: %v", events.vehicles)
	}
}

func TestUpsertGuide_InvalidatesCacheAndPublishes(t *testing.T) {
	cache := newMockCache()
	events := &recordingPublisher{}
	svc := usecases.NewTariffService(&mockVehicleRepo{}, &mockGuideRepo{}, cache, events)

	tariff := &domain.GuideTariff{ID: 1, City: "Kandy", PricePerDay: 60}
	if err := svc.UpsertGuide(context.Background(), tariff); err != nil {
		t.Fatal(err)
	}

	if len(cache.dels) != 1 || cache.dels[0] != "tariffs:guide:Kandy" {
		t.Errorf("cache invalidation wrong: %v", cache.dels)
	}
	if len(events.guides) != 1 || events.guides[0] != "Kandy" {
		t.Errorf("tariff change not published: %v", events.guides)
	}
}

func TestUpsertGuide_ValidatesInput(t *testing.T) {
	svc := usecases.NewTariffService(&mockVehicleRepo{}, &mockGuideRepo{}, nil, nil)

	err := svc.UpsertGuide(context.Background(), &domain.GuideTariff{PricePerDay: 50})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("empty city: expected ValidationError, got %v", err)
	}

	err = svc.UpsertGuide(context.Background(), &domain.GuideTariff{City: "Galle", PricePerDay: -2})
	if !errors.As(err, &ve) {
		t.Errorf("negative rate: expected ValidationError, got %v", err)
	}
}

func ptr(f float64) *float64 { return &f }
