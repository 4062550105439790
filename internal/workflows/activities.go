package workflows

import (
	"context"
	"fmt"

	"github.com/islandhop/tripinit/internal/core/domain"
	"github.com/islandhop/tripinit/internal/core/ports"
	"github.com/islandhop/tripinit/internal/core/usecases"
	"github.com/islandhop/tripinit/internal/pkg/metrics"
)

// AffectedTrip identifies one stored result to recompute, with the options
// the original request carried.
type AffectedTrip struct {
	TripID        string
	UserID        string
	IncludeDriver bool
	IncludeGuide  bool
	VehicleTypeID int64
}

// RepriceActivities holds the activity implementations for the repricing workflow.
type RepriceActivities struct {
	Initiations *usecases.InitiationService
	Initiated   ports.InitiatedTripRepository
}

// ListAffectedTrips returns the stored results priced against the changed
// tariff: by vehicle type for a vehicle change, by visited city for a guide
// change.
func (a *RepriceActivities) ListAffectedTrips(ctx context.Context, input RepriceInput) ([]AffectedTrip, error) {
	var trips []domain.InitiatedTrip
	var err error

	switch input.Trigger {
	case "vehicle":
		trips, err = a.Initiated.ListByVehicleType(ctx, input.VehicleTypeID)
	case "guide":
		trips, err = a.Initiated.ListByCity(ctx, input.City)
	default:
		return nil, fmt.Errorf("unknown repricing trigger %q", input.Trigger)
	}
	if err != nil {
		return nil, fmt.Errorf("list affected trips: %w", err)
	}

	affected := make([]AffectedTrip, 0, len(trips))
	for _, t := range trips {
		affected = append(affected, AffectedTrip{
			TripID:        t.TripID,
			UserID:        t.UserID,
			IncludeDriver: t.DriverNeeded == 1,
			IncludeGuide:  t.GuideNeeded == 1,
			VehicleTypeID: t.VehicleTypeID,
		})
	}
	return affected, nil
}

// RecomputeTrip reruns the full cost computation for one trip. The pipeline
// upserts by trip id, so the fresh result replaces the stale one.
func (a *RepriceActivities) RecomputeTrip(ctx context.Context, trip AffectedTrip) error {
	_, err := a.Initiations.Initiate(ctx, domain.InitiationRequest{
		TripID:        trip.TripID,
		UserID:        trip.UserID,
		IncludeDriver: trip.IncludeDriver,
		IncludeGuide:  trip.IncludeGuide,
		VehicleTypeID: trip.VehicleTypeID,
	})
	if err != nil {
		return fmt.Errorf("recompute trip %s: %w", trip.TripID, err)
	}
	metrics.RepricingRuns.WithLabelValues("tariff-change").Inc()
	return nil
}
