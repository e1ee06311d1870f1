package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/httplog"
	"github.com/marcelsud/book-catalog/book"
	"github.com/marcelsud/book-catalog/config"
	"github.com/marcelsud/book-catalog/internal/http/chi"
	"github.com/marcelsud/book-catalog/internal/store"
	"github.com/marcelsud/book-catalog/metrics"
	"github.com/marcelsud/book-catalog/seed"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const TIMEOUT = 30 * time.Second

/* “a porta de entrada e saída da minha aplicação”
* É no main.go que é feita toda a “amarração” dos demais pacotes: configuração, repositório,
* serviço, métricas e o servidor HTTP. É também o único lugar que decide encerrar o processo.
 */

/*
 * As importações devem ser feitas apenas em uma direção: para baixo. O aplicativo (api, cli) importa camadas de negócios,
 * que importam a camada de armazenamento
 */

func main() {
	logger := httplog.NewLogger("book-catalog", httplog.Options{
		JSON: true,
	})
	if err := run(logger); err != nil {
		logger.Error().Err(err).Msg("api stopped")
		os.Exit(1)
	}
}

func run(logger zerolog.Logger) error {
	cfg, err := config.GetConfig()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT,
	)
	defer stop()

	repo, err := store.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer repo.Close(context.Background())
	s := book.NewService(repo)

	if cfg.SeedFile != "" {
		if err := seedCatalog(ctx, logger, s, cfg.SeedFile); err != nil {
			return err
		}
	}

	var recorder metrics.Recorder = metrics.NopRecorder{}
	var metricsHandler http.Handler
	if cfg.MetricsEnabled {
		exporter, err := metrics.NewOTelExporter(metrics.NewCatalogCollector(repo))
		if err != nil {
			return fmt.Errorf("starting metrics: %w", err)
		}
		defer exporter.Shutdown(context.Background())
		recorder = exporter
		metricsHandler = exporter.ServeHTTP()
	}

	srv := &http.Server{
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		Addr:         ":" + cfg.Port,
		Handler:      chi.Handlers(ctx, s, recorder, metricsHandler),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("port", cfg.Port).Str("store", cfg.StoreDriver).Bool("cache", cfg.RedisAddr != "").Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		ctxTimeout, cancel := context.WithTimeout(context.Background(), TIMEOUT)
		defer cancel()
		logger.Info().Msg("shutting down server")
		if err := srv.Shutdown(ctxTimeout); err != nil {
			return fmt.Errorf("forcing closing the server: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func seedCatalog(ctx context.Context, logger zerolog.Logger, s book.UseCase, path string) error {
	loader := seed.NewLoader()
	if err := loader.Load(path); err != nil {
		return err
	}
	result, err := loader.Apply(ctx, s)
	if err != nil {
		return err
	}
	logger.Info().
		Str("file", path).
		Int("created", len(result.Created)).
		Strs("skipped", result.Skipped).
		Msg("catalog seeded")
	return nil
}
