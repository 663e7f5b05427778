// Package db opens the credential store selected by configuration.
package db

import (
	"context"
	"fmt"

	"github.com/udla/user-directory/internal/core/ports"
	mongostore "github.com/udla/user-directory/internal/infrastructure/db/mongo"
	pgstore "github.com/udla/user-directory/internal/infrastructure/db/postgres"
	sqlitestore "github.com/udla/user-directory/internal/infrastructure/db/sqlite"
	"github.com/udla/user-directory/internal/pkg/config"
)

// Store bundles the repositories of one backend with its lifecycle hooks.
type Store struct {
	Driver  string
	Users   ports.UserRepository
	Tokens  ports.TokenRepository
	Ping    func(ctx context.Context) error
	Migrate func(ctx context.Context) error
	Close   func(ctx context.Context) error
}

// Open connects to the backend named by cfg.StoreDriver. The schema is not
// applied; call Store.Migrate.
func Open(ctx context.Context, cfg *config.Config) (*Store, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pool, err := pgstore.Connect(ctx, pgstore.Config{
			DSN:      cfg.Postgres.DSN,
			MaxConns: cfg.Postgres.MaxConns,
			MinConns: cfg.Postgres.MinConns,
		})
		if err != nil {
			return nil, err
		}
		return &Store{
			Driver:  config.DriverPostgres,
			Users:   pgstore.NewUserRepository(pool),
			Tokens:  pgstore.NewTokenRepository(pool),
			Ping:    pool.Ping,
			Migrate: func(ctx context.Context) error { return pgstore.Migrate(ctx, pool) },
			Close:   func(context.Context) error { pool.Close(); return nil },
		}, nil

	case config.DriverSQLite:
		sqldb, err := sqlitestore.Open(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		return &Store{
			Driver: config.DriverSQLite,
			Users:  sqlitestore.NewUserRepository(sqldb),
			Tokens: sqlitestore.NewTokenRepository(sqldb),
			Ping:   sqldb.PingContext,
			// Open already applied the schema.
			Migrate: func(context.Context) error { return nil },
			Close:   func(context.Context) error { return sqldb.Close() },
		}, nil

	case config.DriverMongo:
		client, database, err := mongostore.Connect(ctx, mongostore.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
			AppName:  "user-directory",
		})
		if err != nil {
			return nil, err
		}
		return &Store{
			Driver:  config.DriverMongo,
			Users:   mongostore.NewUserRepository(database),
			Tokens:  mongostore.NewTokenRepository(database),
			Ping:    func(ctx context.Context) error { return client.Ping(ctx, nil) },
			Migrate: func(ctx context.Context) error { return mongostore.Migrate(ctx, database) },
			Close:   client.Disconnect,
		}, nil
	}

	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
