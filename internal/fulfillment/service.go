// Package fulfillment consumes order lifecycle events and maintains the
// per-seller pending work counters behind the seller dashboard.
package fulfillment

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/soukly/marketplace/internal/kafka"
	"github.com/soukly/marketplace/internal/orders"
	"github.com/soukly/marketplace/internal/redisx"
)

type Service struct {
	Redis       *redis.Client
	ServiceName string
}

// HandleOrderEvent is wired as the consumer handler for both the placed and
// canceled topics. Events are deduplicated by event id so redelivery after
// a crashed commit cannot double-count.
func (s *Service) HandleOrderEvent(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}

	dkey := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, env.EventID)
	if seen, _ := redisx.Exists(ctx, s.Redis, dkey); seen {
		return nil
	}

	switch env.EventType {
	case orders.EventOrderPlaced:
		p, err := kafkax.UnwrapPayload[orders.OrderPlacedPayload](env.Payload)
		if err != nil {
			return err
		}
		for _, sub := range p.SubOrders {
			if err := s.Redis.Incr(ctx, fmt.Sprintf(redisx.KeySellerPending, sub.SellerID)).Err(); err != nil {
				return err
			}
		}
	case orders.EventOrderCanceled:
		p, err := kafkax.UnwrapPayload[orders.OrderCanceledPayload](env.Payload)
		if err != nil {
			return err
		}
		for _, sub := range p.SubOrders {
			if err := s.decr(ctx, sub.SellerID); err != nil {
				return err
			}
		}
	case orders.EventSubOrderCanceled:
		p, err := kafkax.UnwrapPayload[orders.SubOrderCanceledPayload](env.Payload)
		if err != nil {
			return err
		}
		if err := s.decr(ctx, p.SellerID); err != nil {
			return err
		}
	default:
		return nil // foreign event type, commit and move on
	}

	return s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()
}

// decr never lets a counter go negative (cancellation events can outnumber
// placements when counters were reset).
func (s *Service) decr(ctx context.Context, sellerID string) error {
	key := fmt.Sprintf(redisx.KeySellerPending, sellerID)
	n, err := s.Redis.Decr(ctx, key).Result()
	if err != nil {
		return err
	}
	if n < 0 {
		return s.Redis.Set(ctx, key, 0, 0).Err()
	}
	return nil
}
