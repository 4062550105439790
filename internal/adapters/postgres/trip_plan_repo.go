package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/islandhop/tripinit/internal/core/domain"
)

// TripPlanRepo implements ports.TripPlanRepository with pgx.
type TripPlanRepo struct {
	db *DB
}

// NewTripPlanRepo creates a new TripPlanRepo.
func NewTripPlanRepo(db *DB) *TripPlanRepo {
	return &TripPlanRepo{db: db}
}

// GetByIDAndUser returns the plan only when it belongs to the given user.
// A plan that exists under another user is reported as not found, the same
// as one that does not exist at all.
func (r *TripPlanRepo) GetByIDAndUser(ctx context.Context, tripID, userID string) (*domain.TripPlan, error) {
	var p domain.TripPlan
	var dailyPlans []byte

	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, user_id, COALESCE(trip_name, ''),
		       to_char(start_date, 'YYYY-MM-DD'), to_char(end_date, 'YYYY-MM-DD'),
		       COALESCE(arrival_time, ''), COALESCE(base_city, ''),
		       multi_city_allowed, COALESCE(activity_pacing, ''), COALESCE(budget_level, ''),
		       preferred_terrains, preferred_activities,
		       daily_plans, created_at, last_updated
		FROM trip_plans
		WHERE id = $1 AND user_id = $2
	`, tripID, userID).Scan(
		&p.ID, &p.UserID, &p.TripName,
		&p.StartDate, &p.EndDate,
		&p.ArrivalTime, &p.BaseCity,
		&p.MultiCityAllowed, &p.ActivityPacing, &p.BudgetLevel,
		&p.PreferredTerrains, &p.PreferredActivities,
		&dailyPlans, &p.CreatedAt, &p.LastUpdated,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: trip %s for user %s", domain.ErrTripNotFound, tripID, userID)
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(dailyPlans, &p.DailyPlans); err != nil {
		return nil, fmt.Errorf("decode daily plans for trip %s: %w", tripID, err)
	}
	return &p, nil
}

// Upsert stores a trip plan. Only the seed tool writes plans; the service
// itself treats them as read-only.
func (r *TripPlanRepo) Upsert(ctx context.Context, p *domain.TripPlan) error {
	dailyPlans, err := json.Marshal(p.DailyPlans)
	if err != nil {
		return fmt.Errorf("encode daily plans: %w", err)
	}

	_, err = r.db.Pool.Exec(ctx, `
		INSERT INTO trip_plans (id, user_id, trip_name, start_date, end_date, arrival_time,
		                        base_city, multi_city_allowed, activity_pacing, budget_level,
		                        preferred_terrains, preferred_activities, daily_plans, last_updated)
		VALUES ($1, $2, $3, $4::date, $5::date, $6, $7, $8, $9, $10, $11, $12, $13, now())
		ON CONFLICT (id) DO UPDATE
		SET user_id = EXCLUDED.user_id, trip_name = EXCLUDED.trip_name,
		    start_date = EXCLUDED.start_date, end_date = EXCLUDED.end_date,
		    arrival_time = EXCLUDED.arrival_time, base_city = EXCLUDED.base_city,
		    multi_city_allowed = EXCLUDED.multi_city_allowed,
		    activity_pacing = EXCLUDED.activity_pacing, budget_level = EXCLUDED.budget_level,
		    preferred_terrains = EXCLUDED.preferred_terrains,
		    preferred_activities = EXCLUDED.preferred_activities,
		    daily_plans = EXCLUDED.daily_plans, last_updated = now()
	`, p.ID, p.UserID, p.TripName, p.StartDate, p.EndDate, p.ArrivalTime,
		p.BaseCity, p.MultiCityAllowed, p.ActivityPacing, p.BudgetLevel,
		p.PreferredTerrains, p.PreferredActivities, dailyPlans)
	return err
}
