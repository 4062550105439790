package main

import (
	"context"
	"fmt"
	"log"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/islandhop/tripinit/internal/adapters/nats"
	"github.com/islandhop/tripinit/internal/adapters/postgres"
	"github.com/islandhop/tripinit/internal/core/domain"
	"github.com/islandhop/tripinit/internal/core/usecases"
	"github.com/islandhop/tripinit/internal/pkg/config"
	"github.com/islandhop/tripinit/internal/pkg/logging"
	"github.com/islandhop/tripinit/internal/workflows"
)

// The repricer keeps stored cost results consistent with the tariff tables:
// every tariff change event starts a workflow that recomputes the affected
// trips with the new rates.
func main() {
	cfg, err := config.Load("tripinit-repricer")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx := context.Background()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	planRepo := postgres.NewTripPlanRepo(db)
	vehicleRepo := postgres.NewVehicleTariffRepo(db)
	guideRepo := postgres.NewGuideTariffRepo(db)
	initiatedRepo := postgres.NewInitiatedTripRepo(db)

	// Repricing reads tariffs straight from the store; no cache, so a
	// recomputation never prices against a stale entry.
	tariffSvc := usecases.NewTariffService(vehicleRepo, guideRepo, nil, nil)
	initiationSvc := usecases.NewInitiationService(planRepo, initiatedRepo, tariffSvc, nil, nil)

	// Connect to Temporal
	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})
	w.RegisterWorkflow(workflows.RepriceWorkflow)
	w.RegisterActivity(&workflows.RepriceActivities{
		Initiations: initiationSvc,
		Initiated:   initiatedRepo,
	})

	// Tariff change events start repricing workflows
	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer sub.Close()

	startWorkflow := func(ctx context.Context, id string, input workflows.RepriceInput) error {
		_, err := c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
			ID:        id,
			TaskQueue: cfg.Temporal.TaskQueue,
		}, workflows.RepriceWorkflow, input)
		return err
	}

	err = sub.SubscribeVehicleTariffChanges(ctx, func(ctx context.Context, tariff *domain.VehicleTariff) error {
		return startWorkflow(ctx, fmt.Sprintf("reprice-vehicle-%d", tariff.ID), workflows.RepriceInput{
			Trigger:       "vehicle",
			VehicleTypeID: tariff.ID,
		})
	})
	if err != nil {
		log.Fatalf("subscribe vehicle changes: %v", err)
	}

	err = sub.SubscribeGuideTariffChanges(ctx, func(ctx context.Context, tariff *domain.GuideTariff) error {
		return startWorkflow(ctx, "reprice-guide-"+tariff.City, workflows.RepriceInput{
			Trigger: "guide",
			City:    tariff.City,
		})
	})
	if err != nil {
		log.Fatalf("subscribe guide changes: %v", err)
	}

	log.Println("repricer worker started")
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
