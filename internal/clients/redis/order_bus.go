package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	domainagg "github.com/yungbote/lms-backend/internal/domain/aggregates"
	"github.com/yungbote/lms-backend/internal/pkg/logger"
)

const DefaultChannel = "lms.order-changes"

// OrderEvent is the wire form of a committed ordering change.
type OrderEvent struct {
	domainagg.OrderChange
	At time.Time `json:"at"`
}

type OrderBus interface {
	Publish(ctx context.Context, change domainagg.OrderChange) error
	StartForwarder(ctx context.Context, onEvent func(e OrderEvent)) error
	Close() error
}

type Config struct {
	Addr    string
	Channel string
}

type orderBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

// NewOrderBus connects to redis and fails when the server does not answer
// a ping.
func NewOrderBus(log *logger.Logger, cfg Config) (OrderBus, *goredis.Client, error) {
	if log == nil {
		return nil, nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, nil, fmt.Errorf("missing redis addr")
	}
	ch := strings.TrimSpace(cfg.Channel)
	if ch == "" {
		ch = DefaultChannel
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("redis ping: %w", err)
	}

	return &orderBus{
		log:     log.With("service", "RedisOrderBus"),
		rdb:     rdb,
		channel: ch,
	}, rdb, nil
}

func (b *orderBus) Publish(ctx context.Context, change domainagg.OrderChange) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis order bus not initialized")
	}
	raw, err := json.Marshal(OrderEvent{OrderChange: change, At: time.Now().UTC()})
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

func (b *orderBus) StartForwarder(ctx context.Context, onEvent func(e OrderEvent)) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis order bus not initialized")
	}
	if onEvent == nil {
		return fmt.Errorf("onEvent callback required")
	}

	sub := b.rdb.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					_ = sub.Close()
					return
				}
				var e OrderEvent
				if err := json.Unmarshal([]byte(m.Payload), &e); err != nil {
					b.log.Warn("bad order event payload", "error", err)
					continue
				}
				onEvent(e)
			}
		}
	}()
	return nil
}

func (b *orderBus) Close() error {
	if b == nil || b.rdb == nil {
		return nil
	}
	return b.rdb.Close()
}

// NewLogOrderBus is used when redis is not configured. Publish only logs at
// debug level and StartForwarder never delivers.
func NewLogOrderBus(log *logger.Logger) OrderBus {
	if log == nil {
		log = logger.Nop()
	}
	return &logOrderBus{log: log.With("service", "LogOrderBus")}
}

type logOrderBus struct {
	log *logger.Logger
}

func (b *logOrderBus) Publish(_ context.Context, change domainagg.OrderChange) error {
	b.log.Debug("order change", "resource", change.Resource, "op", change.Op, "record_id", change.RecordID, "group_id", change.GroupID, "order", change.Order)
	return nil
}

func (b *logOrderBus) StartForwarder(context.Context, func(OrderEvent)) error { return nil }
func (b *logOrderBus) Close() error                                           { return nil }
