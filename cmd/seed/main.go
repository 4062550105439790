package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/islandhop/tripinit/internal/core/domain"
	"github.com/islandhop/tripinit/internal/pkg/config"
)

// Manifest is the reference-data file loaded into the tariff tables, plus
// optional sample trip plans for local development.
type Manifest struct {
	Source       string             `json:"source"`
	VehicleTypes []VehicleEntry     `json:"vehicle_types"`
	GuideFees    []GuideEntry       `json:"guide_fees"`
	TripPlans    []domain.TripPlan  `json:"trip_plans,omitempty"`
}

type VehicleEntry struct {
	TypeName      string   `json:"type_name"`
	PricePerKm    float64  `json:"price_per_km"`
	FlatPerDayFee *float64 `json:"flat_per_day_fee,omitempty"`
}

type GuideEntry struct {
	City        string  `json:"city"`
	PricePerDay float64 `json:"price_per_day"`
}

func main() {
	cfg, err := config.Load("tripinit-seed")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	manifestPath := "seed.json"
	if len(os.Args) > 1 {
		manifestPath = os.Args[1]
	}

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		log.Fatalf("read manifest: %v", err)
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		log.Fatalf("parse manifest: %v", err)
	}

	log.Printf("TripInit seed — %d vehicle types, %d guide cities from %s",
		len(manifest.VehicleTypes), len(manifest.GuideFees), manifest.Source)

	if err := seedVehicleTypes(ctx, pool, manifest.VehicleTypes); err != nil {
		log.Fatalf("vehicle types: %v", err)
	}
	if err := seedGuideFees(ctx, pool, manifest.GuideFees); err != nil {
		log.Fatalf("guide fees: %v", err)
	}
	if err := seedTripPlans(ctx, pool, manifest.TripPlans); err != nil {
		log.Fatalf("trip plans: %v", err)
	}

	log.Println("seeding complete")
}

func seedVehicleTypes(ctx context.Context, pool *pgxpool.Pool, entries []VehicleEntry) error {
	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(`
			INSERT INTO vehicle_types (type_name, price_per_km, flat_per_day_fee)
			VALUES ($1, $2, $3)
			ON CONFLICT (type_name) DO UPDATE
			SET price_per_km = EXCLUDED.price_per_km,
			    flat_per_day_fee = EXCLUDED.flat_per_day_fee
		`, e.TypeName, e.PricePerKm, e.FlatPerDayFee)
	}
	if err := flushBatch(ctx, pool, batch, len(entries)); err != nil {
		return err
	}
	log.Printf("  vehicle_types: %d", len(entries))
	return nil
}

func seedGuideFees(ctx context.Context, pool *pgxpool.Pool, entries []GuideEntry) error {
	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(`
			INSERT INTO guide_fees (city, price_per_day)
			VALUES ($1, $2)
			ON CONFLICT (city) DO UPDATE
			SET price_per_day = EXCLUDED.price_per_day
		`, e.City, e.PricePerDay)
	}
	if err := flushBatch(ctx, pool, batch, len(entries)); err != nil {
		return err
	}
	log.Printf("  guide_fees: %d", len(entries))
	return nil
}

func seedTripPlans(ctx context.Context, pool *pgxpool.Pool, plans []domain.TripPlan) error {
	if len(plans) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, p := range plans {
		dailyPlans, err := json.Marshal(p.DailyPlans)
		if err != nil {
			return fmt.Errorf("encode daily plans for %s: %w", p.ID, err)
		}
		batch.Queue(`
			INSERT INTO trip_plans (id, user_id, trip_name, start_date, end_date, arrival_time,
			                        base_city, multi_city_allowed, activity_pacing, budget_level,
			                        preferred_terrains, preferred_activities, daily_plans)
			VALUES ($1, $2, $3, $4::date, $5::date, $6, $7, $8, $9, $10, $11, $12, $13)
			ON CONFLICT (id) DO UPDATE
			SET daily_plans = EXCLUDED.daily_plans, last_updated = now()
		`, p.ID, p.UserID, p.TripName, p.StartDate, p.EndDate, p.ArrivalTime,
			p.BaseCity, p.MultiCityAllowed, p.ActivityPacing, p.BudgetLevel,
			p.PreferredTerrains, p.PreferredActivities, dailyPlans)
	}
	if err := flushBatch(ctx, pool, batch, len(plans)); err != nil {
		return err
	}
	log.Printf("  trip_plans: %d", len(plans))
	return nil
}

func flushBatch(ctx context.Context, pool *pgxpool.Pool, batch *pgx.Batch, count int) error {
	br := pool.SendBatch(ctx, batch)
	defer br.Close()
	for i := 0; i < count; i++ {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch item %d: %w", i, err)
		}
	}
	return nil
}
