package app

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/udla/user-directory/internal/core/ports"
	"github.com/udla/user-directory/internal/infrastructure/db/redis"
	"github.com/udla/user-directory/internal/infrastructure/featureflags"
	"github.com/udla/user-directory/internal/infrastructure/queue"
	"github.com/udla/user-directory/internal/pkg/config"
)

// Flags is the feature-flag client plus the dispatcher delivering its events.
type Flags struct {
	Client     *featureflags.Client
	Dispatcher *queue.Dispatcher
	// Ping is nil when no remote backend is configured.
	Ping  func(ctx context.Context) error
	Close func() error
}

// NewFlags picks the Redis backend when REDIS_ADDR is set and the static map
// otherwise. With neither, the client reports itself uninitialized.
func NewFlags(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Flags, error) {
	log = log.With().Str("component", "featureflags").Logger()

	if cfg.Redis.Addr != "" {
		client, err := redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		store := redis.NewFlagStore(client)
		d := queue.NewDispatcher(cfg.Flags.Workers, store, log)
		return &Flags{
			Client:     featureflags.New(store, d, log),
			Dispatcher: d,
			Ping:       store.Ping,
			Close:      client.Close,
		}, nil
	}

	var eval featureflags.Evaluator
	if len(cfg.Flags.Static) > 0 {
		eval = featureflags.Static(cfg.Flags.Static)
	}
	var sink ports.FlagEventSink = featureflags.LogSink{Log: log}
	d := queue.NewDispatcher(cfg.Flags.Workers, sink, log)
	return &Flags{
		Client:     featureflags.New(eval, d, log),
		Dispatcher: d,
		Close:      func() error { return nil },
	}, nil
}
