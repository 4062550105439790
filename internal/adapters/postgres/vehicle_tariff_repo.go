package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/islandhop/tripinit/internal/core/domain"
)

// VehicleTariffRepo implements ports.VehicleTariffRepository with pgx.
type VehicleTariffRepo struct {
	db *DB
}

// NewVehicleTariffRepo creates a new VehicleTariffRepo.
func NewVehicleTariffRepo(db *DB) *VehicleTariffRepo {
	return &VehicleTariffRepo{db: db}
}

// GetByID returns the tariff for a vehicle type id.
func (r *VehicleTariffRepo) GetByID(ctx context.Context, id int64) (*domain.VehicleTariff, error) {
	var t domain.VehicleTariff
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, type_name, price_per_km, flat_per_day_fee, created_at
		FROM vehicle_types WHERE id = $1
	`, id).Scan(&t.ID, &t.TypeName, &t.PricePerKm, &t.FlatPerDayFee, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: vehicle type %d", domain.ErrVehicleTariffNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// List returns all vehicle tariffs ordered by type name.
func (r *VehicleTariffRepo) List(ctx context.Context) ([]domain.VehicleTariff, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, type_name, price_per_km, flat_per_day_fee, created_at
		FROM vehicle_types ORDER BY type_name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tariffs []domain.VehicleTariff
	for rows.Next() {
		var t domain.VehicleTariff
		if err := rows.Scan(&t.ID, &t.TypeName, &t.PricePerKm, &t.FlatPerDayFee, &t.CreatedAt); err != nil {
			return nil, err
		}
		tariffs = append(tariffs, t)
	}
	return tariffs, rows.Err()
}

// Upsert inserts or updates a tariff keyed by type name, writing the
// generated id back into the tariff.
func (r *VehicleTariffRepo) Upsert(ctx context.Context, t *domain.VehicleTariff) error {
	return r.db.Pool.QueryRow(ctx, `
		INSERT INTO vehicle_types (type_name, price_per_km, flat_per_day_fee)
		VALUES ($1, $2, $3)
		ON CONFLICT (type_name) DO UPDATE
		SET price_per_km = EXCLUDED.price_per_km,
		    flat_per_day_fee = EXCLUDED.flat_per_day_fee
		RETURNING id
	`, t.TypeName, t.PricePerKm, t.FlatPerDayFee).Scan(&t.ID)
}
