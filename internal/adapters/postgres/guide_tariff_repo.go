package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/islandhop/tripinit/internal/core/domain"
)

// GuideTariffRepo implements ports.GuideTariffRepository with pgx.
type GuideTariffRepo struct {
	db *DB
}

// NewGuideTariffRepo creates a new GuideTariffRepo.
func NewGuideTariffRepo(db *DB) *GuideTariffRepo {
	return &GuideTariffRepo{db: db}
}

// GetByCity returns the per-day guide rate for a city (exact match).
func (r *GuideTariffRepo) GetByCity(ctx context.Context, city string) (*domain.GuideTariff, error) {
	var t domain.GuideTariff
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, city, price_per_day, created_at
		FROM guide_fees WHERE city = $1
	`, city).Scan(&t.ID, &t.City, &t.PricePerDay, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: city %s", domain.ErrGuideTariffNotFound, city)
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// List returns all guide tariffs ordered by city.
func (r *GuideTariffRepo) List(ctx context.Context) ([]domain.GuideTariff, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, city, price_per_day, created_at
		FROM guide_fees ORDER BY city
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tariffs []domain.GuideTariff
	for rows.Next() {
		var t domain.GuideTariff
		if err := rows.Scan(&t.ID, &t.City, &t.PricePerDay, &t.CreatedAt); err != nil {
			return nil, err
		}
		tariffs = append(tariffs, t)
	}
	return tariffs, rows.Err()
}

// Upsert inserts or updates a city's rate, writing the generated id back.
func (r *GuideTariffRepo) Upsert(ctx context.Context, t *domain.GuideTariff) error {
	return r.db.Pool.QueryRow(ctx, `
		INSERT INTO guide_fees (city, price_per_day)
		VALUES ($1, $2)
		ON CONFLICT (city) DO UPDATE
		SET price_per_day = EXCLUDED.price_per_day
		RETURNING id
	`, t.City, t.PricePerDay).Scan(&t.ID)
}
