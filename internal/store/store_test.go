package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/marcelsud/book-catalog/book"
	"github.com/marcelsud/book-catalog/book/memory"
	"github.com/marcelsud/book-catalog/book/sqlite"
	"github.com/marcelsud/book-catalog/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		repo, err := Open(ctx, &config.Config{Port: "8080", StoreDriver: config.StoreMemory})
		require.NoError(t, err)
		defer repo.Close(ctx)
		assert.IsType(t, &memory.Repository{}, repo)
	})

	t.Run("sqlite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "books.db")
		repo, err := Open(ctx, &config.Config{Port: "8080", StoreDriver: config.StoreSQLite, SQLitePath: path})
		require.NoError(t, err)
		defer repo.Close(ctx)
		assert.IsType(t, &sqlite.Repository{}, repo)

		_, err = book.NewService(repo).Create(ctx, book.Book{Title: "Dune", Author: "Frank Herbert"})
		assert.NoError(t, err)
	})

	t.Run("invalid config", func(t *testing.T) {
		_, err := Open(ctx, &config.Config{Port: "8080", StoreDriver: "cassandra"})
		assert.ErrorContains(t, err, "validating config")
	})

	t.Run("unreachable cache", func(t *testing.T) {
		_, err := Open(ctx, &config.Config{
			Port:            "8080",
			StoreDriver:     config.StoreMemory,
			RedisAddr:       "127.0.0.1:1",
			CacheTTLSeconds: 60,
		})
		assert.ErrorContains(t, err, "opening cache")
	})
}
