package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/islandhop/tripinit/internal/core/domain"
)

// InitiatedTripRepo implements ports.InitiatedTripRepository with pgx.
type InitiatedTripRepo struct {
	db *DB
}

// NewInitiatedTripRepo creates a new InitiatedTripRepo.
func NewInitiatedTripRepo(db *DB) *InitiatedTripRepo {
	return &InitiatedTripRepo{db: db}
}

// Upsert writes a computed result, replacing any prior record for the same
// trip id. created_at is preserved across replacements.
func (r *InitiatedTripRepo) Upsert(ctx context.Context, t *domain.InitiatedTrip) error {
	dailyPlans, err := json.Marshal(t.DailyPlans)
	if err != nil {
		return fmt.Errorf("encode daily plans: %w", err)
	}
	routeSummary, err := json.Marshal(t.RouteSummary)
	if err != nil {
		return fmt.Errorf("encode route summary: %w", err)
	}

	_, err = r.db.Pool.Exec(ctx, `
		INSERT INTO initiated_trips (
			trip_id, user_id, trip_name, start_date, end_date, arrival_time,
			base_city, multi_city_allowed, activity_pacing, budget_level,
			preferred_terrains, preferred_activities, daily_plans,
			driver_needed, guide_needed,
			average_trip_distance, average_driver_cost, average_guide_cost,
			vehicle_type_id, vehicle_type, route_summary, last_updated
		)
		VALUES ($1, $2, $3, $4::date, $5::date, $6, $7, $8, $9, $10,
		        $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, now())
		ON CONFLICT (trip_id) DO UPDATE
		SET user_id = EXCLUDED.user_id, trip_name = EXCLUDED.trip_name,
		    start_date = EXCLUDED.start_date, end_date = EXCLUDED.end_date,
		    arrival_time = EXCLUDED.arrival_time, base_city = EXCLUDED.base_city,
		    multi_city_allowed = EXCLUDED.multi_city_allowed,
		    activity_pacing = EXCLUDED.activity_pacing, budget_level = EXCLUDED.budget_level,
		    preferred_terrains = EXCLUDED.preferred_terrains,
		    preferred_activities = EXCLUDED.preferred_activities,
		    daily_plans = EXCLUDED.daily_plans,
		    driver_needed = EXCLUDED.driver_needed, guide_needed = EXCLUDED.guide_needed,
		    average_trip_distance = EXCLUDED.average_trip_distance,
		    average_driver_cost = EXCLUDED.average_driver_cost,
		    average_guide_cost = EXCLUDED.average_guide_cost,
		    vehicle_type_id = EXCLUDED.vehicle_type_id,
		    vehicle_type = EXCLUDED.vehicle_type,
		    route_summary = EXCLUDED.route_summary,
		    last_updated = now()
	`, t.TripID, t.UserID, t.TripName, t.StartDate, t.EndDate, t.ArrivalTime,
		t.BaseCity, t.MultiCityAllowed, t.ActivityPacing, t.BudgetLevel,
		t.PreferredTerrains, t.PreferredActivities, dailyPlans,
		t.DriverNeeded, t.GuideNeeded,
		t.AverageTripDistance, t.AverageDriverCost, t.AverageGuideCost,
		t.VehicleTypeID, t.VehicleType, routeSummary)
	return err
}

const initiatedTripColumns = `
	trip_id, user_id, COALESCE(trip_name, ''),
	to_char(start_date, 'YYYY-MM-DD'), to_char(end_date, 'YYYY-MM-DD'),
	COALESCE(arrival_time, ''), COALESCE(base_city, ''),
	multi_city_allowed, COALESCE(activity_pacing, ''), COALESCE(budget_level, ''),
	preferred_terrains, preferred_activities, daily_plans,
	driver_needed, guide_needed,
	average_trip_distance, average_driver_cost, average_guide_cost,
	vehicle_type_id, vehicle_type, route_summary, created_at, last_updated`

func scanInitiatedTrip(row pgx.Row) (*domain.InitiatedTrip, error) {
	var t domain.InitiatedTrip
	var dailyPlans, routeSummary []byte

	if err := row.Scan(
		&t.TripID, &t.UserID, &t.TripName,
		&t.StartDate, &t.EndDate,
		&t.ArrivalTime, &t.BaseCity,
		&t.MultiCityAllowed, &t.ActivityPacing, &t.BudgetLevel,
		&t.PreferredTerrains, &t.PreferredActivities, &dailyPlans,
		&t.DriverNeeded, &t.GuideNeeded,
		&t.AverageTripDistance, &t.AverageDriverCost, &t.AverageGuideCost,
		&t.VehicleTypeID, &t.VehicleType, &routeSummary, &t.CreatedAt, &t.LastUpdated,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(dailyPlans, &t.DailyPlans); err != nil {
		return nil, fmt.Errorf("decode daily plans for trip %s: %w", t.TripID, err)
	}
	if err := json.Unmarshal(routeSummary, &t.RouteSummary); err != nil {
		return nil, fmt.Errorf("decode route summary for trip %s: %w", t.TripID, err)
	}
	return &t, nil
}

// GetByTripID returns the stored result scoped to its owner.
func (r *InitiatedTripRepo) GetByTripID(ctx context.Context, tripID, userID string) (*domain.InitiatedTrip, error) {
	row := r.db.Pool.QueryRow(ctx,
		`SELECT `+initiatedTripColumns+` FROM initiated_trips WHERE trip_id = $1 AND user_id = $2`,
		tripID, userID)
	t, err := scanInitiatedTrip(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: initiated trip %s for user %s", domain.ErrTripNotFound, tripID, userID)
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ListByVehicleType returns all results priced with the given vehicle type.
func (r *InitiatedTripRepo) ListByVehicleType(ctx context.Context, vehicleTypeID int64) ([]domain.InitiatedTrip, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+initiatedTripColumns+` FROM initiated_trips WHERE vehicle_type_id = $1 ORDER BY last_updated`,
		vehicleTypeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectInitiatedTrips(rows)
}

// ListByCity returns all guide-priced results whose itinerary visits the city.
func (r *InitiatedTripRepo) ListByCity(ctx context.Context, city string) ([]domain.InitiatedTrip, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+initiatedTripColumns+`
		FROM initiated_trips
		WHERE guide_needed = 1
		  AND EXISTS (
			SELECT 1 FROM jsonb_array_elements(daily_plans) AS d
			WHERE d->>'city' = $1
		  )
		ORDER BY last_updated
	`, city)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectInitiatedTrips(rows)
}

func collectInitiatedTrips(rows pgx.Rows) ([]domain.InitiatedTrip, error) {
	var trips []domain.InitiatedTrip
	for rows.Next() {
		t, err := scanInitiatedTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, *t)
	}
	return trips, rows.Err()
}
