package main

import (
	"context"
	"os"
	"time"

	"github.com/raiyan37/Centinel/internal/amqp"
	"github.com/raiyan37/Centinel/internal/cli"
	"github.com/raiyan37/Centinel/internal/services"
)

// ledger-worker drains the durable ledger event queue. Each event is logged
// and, when REDIS_URL is set, the shared overview entry of its account is
// dropped. API instances invalidate their own caches from a private queue,
// so this worker is only needed to keep the durable queue from growing and
// to cover writers that share Redis without subscribing.
func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger("ledger-worker")
	cfg := cli.LoadAndValidateConfig(logger, false)

	logger.Info("Starting ledger-worker")

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required to consume ledger events")
		os.Exit(1)
	}

	// An in-process cache here would serve nobody.
	var notifier *services.ChangeNotifier
	if cfg.RedisURL != "" {
		overviews, err := cli.NewOverviewCache(context.Background(), cfg)
		if err != nil {
			logger.Error("Failed to initialize overview cache", "error", err)
			os.Exit(1)
		}
		defer overviews.Close()
		notifier = services.NewChangeNotifier(overviews, nil)
	} else {
		logger.Info("No REDIS_URL provided - draining and logging ledger events only")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	processor := services.NewEventProcessor(amqpClient, notifier)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := processor.Stop(ctx); err != nil {
			logger.Error("Event processor shutdown error", "error", err)
		}
	})

	if err := processor.Start(ctx); err != nil {
		logger.Error("Failed to start event processor", "error", err)
		os.Exit(1)
	}

	select {
	case <-done:
	case <-processor.Done():
		if err := processor.Err(); err != nil {
			logger.Error("Event consumption failed", "error", err, "processed", processor.Processed())
			os.Exit(1)
		}
	}
	logger.Info("Worker shutdown complete", "processed", processor.Processed())
}
