package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// RepriceInput is the input for the repricing workflow. Exactly one of
// VehicleTypeID or City is set, depending on which tariff changed.
type RepriceInput struct {
	Trigger       string // "vehicle" | "guide"
	VehicleTypeID int64
	City          string
}

// RepriceWorkflow recomputes stored results affected by a tariff change.
// Each trip is repriced by its own activity invocation so a single bad plan
// does not block the rest of the batch.
func RepriceWorkflow(ctx workflow.Context, input RepriceInput) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting repricing workflow", "trigger", input.Trigger)

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	// Step 1: Collect the affected trip ids
	var affected []AffectedTrip
	err := workflow.ExecuteActivity(ctx, "ListAffectedTrips", input).Get(ctx, &affected)
	if err != nil {
		return err
	}
	if len(affected) == 0 {
		logger.Info("No trips affected by tariff change", "trigger", input.Trigger)
		return nil
	}

	// Step 2: Recompute each result with the new tariff
	var failed int
	for _, trip := range affected {
		if err := workflow.ExecuteActivity(ctx, "RecomputeTrip", trip).Get(ctx, nil); err != nil {
			logger.Warn("repricing failed for trip", "tripID", trip.TripID, "error", err)
			failed++
		}
	}

	logger.Info("Repricing complete", "total", len(affected), "failed", failed)
	return nil
}
