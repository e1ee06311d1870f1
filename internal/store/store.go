package store

import (
	"context"
	"fmt"
	"time"

	"github.com/marcelsud/book-catalog/book"
	"github.com/marcelsud/book-catalog/book/memory"
	"github.com/marcelsud/book-catalog/book/postgres"
	"github.com/marcelsud/book-catalog/book/redis"
	"github.com/marcelsud/book-catalog/book/sqlite"
	"github.com/marcelsud/book-catalog/config"
)

/*
* Pacote dentro de internal: só os comandos deste módulo montam o repositório.
* O dono do repositório é o processo (main), que o fecha no final.
 */

// Open builds the repository selected by cfg.StoreDriver, behind the Redis cache when REDIS_ADDR is set.
func Open(ctx context.Context, cfg *config.Config) (book.Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	repo, err := openBase(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.RedisAddr == "" {
		return repo, nil
	}
	cached, err := redis.NewRepository(repo, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, time.Duration(cfg.CacheTTLSeconds)*time.Second)
	if err != nil {
		_ = repo.Close(ctx)
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	return cached, nil
}

func openBase(ctx context.Context, cfg *config.Config) (book.Repository, error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		repo, err := postgres.NewRepositoryWithPoolConfig(
			cfg.PostgresDriver,
			cfg.PostgresConnectionString(),
			cfg.GetPostgresMaxOpenConns(),
			cfg.GetPostgresMaxIdleConns(),
			cfg.GetPostgresConnMaxLifeMinutes(),
		)
		if err != nil {
			return nil, fmt.Errorf("opening postgres store: %w", err)
		}
		if err := repo.CreateTable(ctx); err != nil {
			_ = repo.Close(ctx)
			return nil, fmt.Errorf("preparing postgres store: %w", err)
		}
		return repo, nil
	case config.StoreSQLite:
		repo, err := sqlite.NewRepository(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		return repo, nil
	default:
		return memory.NewRepository(), nil
	}
}
