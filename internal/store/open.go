package store

import (
	"context"
	"fmt"

	"github.com/fjod/go_cart/cartsync/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Backend is a KeyValueStore that owns a connection
type Backend interface {
	KeyValueStore
	Closer
}

// Open connects the backend selected by cfg.StoreDriver
func Open(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (Backend, error) {
	switch cfg.StoreDriver {
	case "memory":
		log.Warn("using in-memory cart store, cart will not survive restarts")
		return NewMemoryStore(), nil

	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("redis connection failed: %w", err)
		}
		log.WithField("addr", cfg.RedisAddr).Info("redis ping succeeded")
		return NewRedisStore(client, cfg.CartTTL), nil

	case "mongo":
		db, err := ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			return nil, err
		}
		s := NewMongoStore(db)
		if err := s.CreateIndexes(ctx); err != nil {
			s.Close()
			return nil, err
		}
		log.WithField("db", cfg.MongoDBName).Info("connected to MongoDB")
		return s, nil

	case "sqlite", "postgres":
		var (
			s   *SQLStore
			err error
		)
		if cfg.StoreDriver == "sqlite" {
			s, err = NewSQLiteStore(cfg.SQLitePath)
		} else {
			s, err = NewPostgresStore(cfg.PostgresDSN)
		}
		if err != nil {
			return nil, err
		}
		if err := s.RunMigrations(cfg.MigrationsPath); err != nil {
			s.Close()
			return nil, err
		}
		log.WithField("driver", cfg.StoreDriver).Info("migrations completed successfully")
		return s, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
