// Package fulfillment menerjemahkan event status dari collaborator
// fulfillment menjadi transisi status order di DB. Placement sendiri
// hanya pernah menghasilkan PENDING; semua transisi lanjutan lewat sini.
package fulfillment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	kafkax "github.com/ariefcatur/go-storefront.git/internal/kafka"
	"github.com/ariefcatur/go-storefront.git/internal/orders"
	"github.com/ariefcatur/go-storefront.git/internal/redisx"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
)

type StatusStore interface {
	UpdateStatus(ctx context.Context, orderID string, to orders.Status) (orders.Status, error)
}

type Worker struct {
	Store       StatusStore
	Redis       *redis.Client
	ServiceName string
}

// HandleStatusEvent: dipasang sebagai handler consumer.
func (w *Worker) HandleStatusEvent(ctx context.Context, m kafkago.Message) error {
	// 1) decode envelope
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != orders.EventOrderStatusChanged {
		return nil
	} // ignore

	// 2) dedup via Redis (pakai event_id)
	dkey := fmt.Sprintf(redisx.KeyDedup, w.ServiceName, env.EventID)
	exists, _ := redisx.Exists(ctx, w.Redis, dkey)
	if exists {
		return nil
	}
	_ = w.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	// 3) decode payload
	p, err := kafkax.UnwrapPayload[orders.OrderStatusChangedPayload](env.Payload)
	if err != nil {
		return err
	}

	// 4) transisi dijaga tabel; event out-of-order / duplikat tidak fatal
	_, err = w.Store.UpdateStatus(ctx, p.OrderID, p.Status)
	switch {
	case err == nil:
	case errors.Is(err, orders.ErrInvalidTransition):
		log.Printf("skip transition order=%s -> %s: %v", p.OrderID, p.Status, err)
		return nil
	case errors.Is(err, orders.ErrOrderNotFound):
		log.Printf("skip unknown order=%s", p.OrderID)
		return nil
	default:
		return err
	}

	// 5) refresh cache status
	skey := fmt.Sprintf(redisx.KeyOrderStatus, p.OrderID)
	b, _ := json.Marshal(map[string]any{"status": p.Status})
	_ = w.Redis.Set(ctx, skey, b, redisx.TTLStatusCache).Err()
	return nil
}
