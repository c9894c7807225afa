package cmd

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"pos-backend/internal/config"
	"pos-backend/internal/database"
	"pos-backend/internal/database/memdb"
	"pos-backend/internal/handlers"
	"pos-backend/internal/logger"
	"pos-backend/internal/sequence"
	"pos-backend/internal/service"
)

// backend is the persistence side of the service graph. deps has every
// field filled in except Notifier.
type backend struct {
	kind    string
	deps    service.Deps
	ping    handlers.Pinger
	closers []func(context.Context) error
}

func (b *backend) close() {
	log := logger.WithComponent("serve")
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](context.Background()); err != nil {
			log.Warn().Err(err).Msg("close error")
		}
	}
}

func openBackend(ctx context.Context, cfg *config.Config, memory bool) (*backend, error) {
	log := logger.WithComponent("serve")
	b := &backend{}

	var counters database.CounterStore
	if memory {
		store := memdb.New()
		b.kind = "memory"
		b.deps = service.Deps{Estimates: store.Estimates(), Orders: store.Orders(), Tx: store}
		counters = store.Counters()
	} else {
		client, err := database.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, client.Disconnect)

		db := client.Database(cfg.DBName)
		if err := database.EnsureIndexes(db); err != nil {
			log.Warn().Err(err).Msg("index warning")
		}
		log.Info().Str("db", db.Name()).Msg("MongoDB connected")

		b.kind = "mongo"
		b.deps = service.Deps{
			Estimates: database.NewEstimateStore(db),
			Orders:    database.NewOrderStore(db),
			Tx:        database.NewTransactor(client, cfg.Transactions),
		}
		b.ping = func(ctx context.Context) error { return database.Ping(ctx, client) }
		counters = database.NewCounters(db)
	}

	if err := b.openAllocators(ctx, cfg, counters); err != nil {
		b.close()
		return nil, err
	}
	return b, nil
}

// openAllocators picks the numbering strategy named by SEQUENCE_BACKEND.
func (b *backend) openAllocators(ctx context.Context, cfg *config.Config, counters database.CounterStore) error {
	estimates, orders := b.deps.Estimates, b.deps.Orders

	switch cfg.SequenceBackend {
	case sequence.BackendScan:
		b.deps.EstimateNumbers = sequence.NewScanAllocator(sequence.Estimates, estimates)
		b.deps.SaleNumbers = sequence.NewScanAllocator(sequence.Orders, orders)
	case sequence.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return fmt.Errorf("redis ping: %w", err)
		}
		b.closers = append(b.closers, func(context.Context) error { return client.Close() })
		b.deps.EstimateNumbers = sequence.NewRedisAllocator(sequence.Estimates, estimates, client)
		b.deps.SaleNumbers = sequence.NewRedisAllocator(sequence.Orders, orders, client)
	default:
		b.deps.EstimateNumbers = sequence.NewCounterAllocator(sequence.Estimates, estimates, counters)
		b.deps.SaleNumbers = sequence.NewCounterAllocator(sequence.Orders, orders, counters)
	}
	return nil
}
