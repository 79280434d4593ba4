package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestPostgres(t *testing.T) *SQLStore {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("cart"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	s, err := NewPostgresStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	require.NoError(t, s.RunMigrations("./migrations"))
	return s
}

func TestPostgresStore_SetAndGet(t *testing.T) {
	s := setupTestPostgres(t)
	ctx := context.Background()

	_, err := s.Get(ctx, "cart")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, "cart", `[{"id":1,"amount":1}]`))
	require.NoError(t, s.Set(ctx, "cart", `[{"id":1,"amount":5}]`))

	v, err := s.Get(ctx, "cart")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":1,"amount":5}]`, v)
}
