package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/islandhop/tripinit/internal/core/domain"
	"github.com/islandhop/tripinit/internal/core/ports"
	"github.com/islandhop/tripinit/internal/pkg/geospatial"
	"github.com/islandhop/tripinit/internal/pkg/metrics"
)

// InitiationService computes the total distance, optional driver/guide
// costs, and route summary for a stored itinerary, and persists the result.
type InitiationService struct {
	plans     ports.TripPlanRepository
	initiated ports.InitiatedTripRepository
	tariffs   *TariffService
	events    ports.EventPublisher
	cache     ports.CacheService
}

// NewInitiationService creates a new InitiationService. events and cache may
// be nil.
func NewInitiationService(
	plans ports.TripPlanRepository,
	initiated ports.InitiatedTripRepository,
	tariffs *TariffService,
	events ports.EventPublisher,
	cache ports.CacheService,
) *InitiationService {
	return &InitiationService{
		plans:     plans,
		initiated: initiated,
		tariffs:   tariffs,
		events:    events,
		cache:     cache,
	}
}

// Initiate runs the whole pipeline for one request. Every failure aborts the
// computation; nothing partial is ever persisted. The computation itself is
// side-effect-free, so callers may retry a persistence failure verbatim.
func (s *InitiationService) Initiate(ctx context.Context, req domain.InitiationRequest) (*domain.InitiatedTrip, error) {
	start := time.Now()

	plan, err := s.plans.GetByIDAndUser(ctx, req.TripID, req.UserID)
	if err != nil {
		return nil, err
	}

	durationDays, err := plan.DurationDays()
	if err != nil {
		return nil, err
	}
	if err := validateDayNumbers(plan, durationDays); err != nil {
		return nil, err
	}

	// The vehicle type name is part of every result, so the tariff is
	// resolved even when no driver was requested.
	vehicle, err := s.tariffs.ResolveVehicle(ctx, req.VehicleTypeID)
	if err != nil {
		return nil, err
	}

	legs, summary, err := ExtractLegs(plan)
	if err != nil {
		return nil, err
	}

	totalKm, err := s.totalDistanceKm(ctx, legs, durationDays)
	if err != nil {
		return nil, err
	}

	var driverCost, guideCost *float64
	if req.IncludeDriver {
		cost := driverCostFor(totalKm, vehicle, durationDays)
		driverCost = &cost
	}
	if req.IncludeGuide {
		cost, err := s.guideCost(ctx, plan.DailyPlans)
		if err != nil {
			return nil, err
		}
		guideCost = &cost
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := buildResult(plan, req, totalKm, driverCost, guideCost, vehicle, summary)
	if err := s.initiated.Upsert(ctx, result); err != nil {
		return nil, &domain.PersistenceError{Op: "initiated trip upsert", Err: err}
	}

	if s.cache != nil {
		if data, err := json.Marshal(result); err == nil {
			_ = s.cache.Set(ctx, initiationCacheKey(result.TripID, result.UserID), data, 600)
		}
	}
	if s.events != nil {
		// Best-effort; the record is already durable
		_ = s.events.PublishTripInitiated(ctx, result)
	}

	metrics.TripsInitiated.Inc()
	metrics.TripDistanceKm.Observe(totalKm)
	metrics.InitiationDuration.Observe(time.Since(start).Seconds())

	return result, nil
}

// GetResult returns the stored computation for a trip.
func (s *InitiationService) GetResult(ctx context.Context, tripID, userID string) (*domain.InitiatedTrip, error) {
	cacheKey := initiationCacheKey(tripID, userID)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var trip domain.InitiatedTrip
			if err := json.Unmarshal(data, &trip); err == nil {
				return &trip, nil
			}
		}
	}

	trip, err := s.initiated.GetByTripID(ctx, tripID, userID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(trip); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 600)
		}
	}
	return trip, nil
}

// totalDistanceKm sums the great-circle distance over all legs. Days are
// independent, so per-day sums run in parallel; the final combination walks
// days in order to keep floating-point summation reproducible.
func (s *InitiationService) totalDistanceKm(ctx context.Context, legs []domain.Leg, durationDays int) (float64, error) {
	if len(legs) == 0 {
		return 0, nil
	}

	byDay := make(map[int][]domain.Leg)
	for _, leg := range legs {
		byDay[leg.Day] = append(byDay[leg.Day], leg)
	}

	daySums := make([]float64, durationDays+1)
	var wg sync.WaitGroup
	for day, dayLegs := range byDay {
		wg.Add(1)
		go func(day int, dayLegs []domain.Leg) {
			defer wg.Done()
			var sum float64
			for _, leg := range dayLegs {
				sum += geospatial.HaversineKm(leg.From.Lat, leg.From.Lng, leg.To.Lat, leg.To.Lng)
			}
			daySums[day] = sum
		}(day, dayLegs)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var total float64
	for day := 1; day <= durationDays; day++ {
		total += daySums[day]
	}
	return total, nil
}

// guideCost sums each day's city rate across the itinerary. A three-day trip
// through two cities pays three day-rates, not two. Distinct cities are
// resolved concurrently; any missing city fails the whole computation.
func (s *InitiationService) guideCost(ctx context.Context, days []domain.DayPlan) (float64, error) {
	for _, day := range days {
		if day.City == "" {
			return 0, &domain.CalculationError{
				Detail: fmt.Sprintf("day %d has no city", day.Day),
			}
		}
	}

	distinct := make(map[string]bool, len(days))
	for _, day := range days {
		distinct[day.City] = true
	}

	var (
		mu    sync.Mutex
		wg    sync.WaitGroup
		rates = make(map[string]float64, len(distinct))
		errs  []error
	)
	for city := range distinct {
		wg.Add(1)
		go func(city string) {
			defer wg.Done()
			tariff, err := s.tariffs.ResolveGuide(ctx, city)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			rates[city] = tariff.PricePerDay
		}(city)
	}
	wg.Wait()

	if len(errs) > 0 {
		return 0, errs[0]
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var total float64
	for _, day := range days {
		total += rates[day.City]
	}
	return total, nil
}

// driverCostFor prices the driven distance plus the vehicle's flat per-day
// fee (zero when the tariff carries none).
func driverCostFor(totalKm float64, vehicle *domain.VehicleTariff, durationDays int) float64 {
	flat := 0.0
	if vehicle.FlatPerDayFee != nil {
		flat = *vehicle.FlatPerDayFee
	}
	return totalKm*vehicle.PricePerKm + flat*float64(durationDays)
}

func buildResult(
	plan *domain.TripPlan,
	req domain.InitiationRequest,
	totalKm float64,
	driverCost, guideCost *float64,
	vehicle *domain.VehicleTariff,
	summary []domain.RouteDay,
) *domain.InitiatedTrip {
	driverNeeded, guideNeeded := 0, 0
	if req.IncludeDriver {
		driverNeeded = 1
	}
	if req.IncludeGuide {
		guideNeeded = 1
	}

	return &domain.InitiatedTrip{
		TripID:              plan.ID,
		UserID:              plan.UserID,
		TripName:            plan.TripName,
		StartDate:           plan.StartDate,
		EndDate:             plan.EndDate,
		ArrivalTime:         plan.ArrivalTime,
		BaseCity:            plan.BaseCity,
		MultiCityAllowed:    plan.MultiCityAllowed,
		ActivityPacing:      plan.ActivityPacing,
		BudgetLevel:         plan.BudgetLevel,
		PreferredTerrains:   plan.PreferredTerrains,
		PreferredActivities: plan.PreferredActivities,
		DailyPlans:          plan.DailyPlans,
		DriverNeeded:        driverNeeded,
		GuideNeeded:         guideNeeded,
		AverageTripDistance: totalKm,
		AverageDriverCost:   driverCost,
		AverageGuideCost:    guideCost,
		VehicleTypeID:       vehicle.ID,
		VehicleType:         vehicle.TypeName,
		RouteSummary:        summary,
		CreatedAt:           plan.CreatedAt,
		LastUpdated:         time.Now().UTC(),
	}
}

func initiationCacheKey(tripID, userID string) string {
	return "initiations:" + userID + ":" + tripID
}
