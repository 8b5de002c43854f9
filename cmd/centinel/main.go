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

	"golang.org/x/sync/errgroup"

	"github.com/raiyan37/Centinel/internal/amqp"
	"github.com/raiyan37/Centinel/internal/auth"
	"github.com/raiyan37/Centinel/internal/cli"
	"github.com/raiyan37/Centinel/internal/core"
	apphttp "github.com/raiyan37/Centinel/internal/http"
	"github.com/raiyan37/Centinel/internal/middleware/ratelimit"
	"github.com/raiyan37/Centinel/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger("centinel")
	cfg := cli.LoadAndValidateConfig(logger, true)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := cli.InitSQLite(logger, cfg)
	defer store.Close()

	overviews, err := cli.NewOverviewCache(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize overview cache", "error", err)
		os.Exit(1)
	}
	defer overviews.Close()

	checks := map[string]apphttp.Pinger{"database": store, "cache": overviews}

	// Publishing is optional; without a broker other instances only see
	// changes once their cached overviews expire.
	var (
		publisher services.Publisher
		events    *amqp.Client
	)
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		publisher = amqpClient
		checks["broker"] = amqpClient

		// Each instance also listens on a queue of its own so that its
		// overview cache drops entries changed through any other instance.
		events, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, amqp.Broadcast())
		if err != nil {
			logger.Error("Failed to initialize AMQP event subscription", "error", err)
			os.Exit(1)
		}
		defer events.Close()
		logger.Info("Publishing ledger events", "exchange", cfg.AMQPExchange)
	} else {
		logger.Info("Ledger events disabled - no AMQP_URL provided")
	}

	authenticator, err := auth.NewAuthenticator(cfg.JWTSecret)
	if err != nil {
		logger.Error("Failed to initialize authenticator", "error", err)
		os.Exit(1)
	}

	clock := core.SystemClock(cfg.Location())
	notifier := services.NewChangeNotifier(overviews, publisher)
	ledger := services.NewLedger(store, clock, notifier)

	srv := apphttp.NewServer(apphttp.Options{
		Addr:          ":" + cfg.Port,
		Logger:        logger,
		Authenticator: authenticator,
		ReadyChecks:   checks,
		RateLimit:     ratelimit.DefaultConfig(),
		Services: apphttp.Services{
			Accounts:     services.NewAccountService(ledger),
			Transactions: services.NewTransactionService(ledger),
			Budgets:      services.NewBudgetService(ledger),
			Pots:         services.NewPotService(ledger),
			Overview:     services.NewOverviewService(ledger, overviews),
			Bills:        services.NewRecurringBillService(ledger),
		},
	})

	g, gctx := errgroup.WithContext(ctx)
	if events != nil {
		processor := services.NewEventProcessor(events, notifier)
		if err := processor.Start(gctx); err != nil {
			logger.Error("Failed to start event processor", "error", err)
			os.Exit(1)
		}
		g.Go(func() error {
			select {
			case <-gctx.Done():
				stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return processor.Stop(stopCtx)
			case <-processor.Done():
				// Keep serving; cached overviews still expire on their own.
				if err := processor.Err(); err != nil {
					logger.Warn("Ledger event subscription stopped", "error", err, "processed", processor.Processed())
				}
				return nil
			}
		})
	}
	g.Go(func() error {
		logger.Info("Starting centinel server",
			"port", cfg.Port, "timezone", cfg.Timezone, "shared_cache", overviews.Shared())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen on :%s: %w", cfg.Port, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
