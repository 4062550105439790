package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/islandhop/tripinit/internal/core/domain"
)

// Subscriber consumes tariff-change events from NATS JetStream.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber creates a subscriber sharing a NATS connection.
func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	return &Subscriber{conn: conn, js: js}, nil
}

func (s *Subscriber) SubscribeVehicleTariffChanges(ctx context.Context, handler func(ctx context.Context, tariff *domain.VehicleTariff) error) error {
	sub, err := s.js.Subscribe("tariffs.changed.vehicle.>", func(msg *nats.Msg) {
		var tariff domain.VehicleTariff
		if err := json.Unmarshal(msg.Data, &tariff); err != nil {
			_ = msg.Nak()
			return
		}
		if err := handler(ctx, &tariff); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable("vehicle-tariff-repricer"),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

func (s *Subscriber) SubscribeGuideTariffChanges(ctx context.Context, handler func(ctx context.Context, tariff *domain.GuideTariff) error) error {
	sub, err := s.js.Subscribe("tariffs.changed.guide.>", func(msg *nats.Msg) {
		var tariff domain.GuideTariff
		if err := json.Unmarshal(msg.Data, &tariff); err != nil {
			_ = msg.Nak()
			return
		}
		if err := handler(ctx, &tariff); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable("guide-tariff-repricer"),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
