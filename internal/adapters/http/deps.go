package http

import (
	"github.com/nats-io/nats.go"

	"github.com/islandhop/tripinit/internal/adapters/postgres"
	"github.com/islandhop/tripinit/internal/adapters/valkey"
	"github.com/islandhop/tripinit/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Initiations *usecases.InitiationService
	Tariffs     *usecases.TariffService
	NATS        *nats.Conn
	DB          *postgres.DB
	Cache       *valkey.Cache
}
