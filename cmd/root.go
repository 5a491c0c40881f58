package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"rentaflow/internal/catalog"
	"rentaflow/internal/events"
	"rentaflow/internal/models"
	"rentaflow/internal/notify"
	"rentaflow/internal/orders"
	"rentaflow/internal/session"
	"rentaflow/internal/telemetry"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "rentaflow",
	Short: "Runs the tool-rental order lifecycle engine",
	Long: `rentaflow drives rental orders through their full lifecycle: checkout
validation, payment verification, dispatch, driver proximity alerts and
delivery, publishing lifecycle events to console, JSON files or Kafka and
firing the configured automation webhooks along the way.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := models.LoadConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}
		return run(cfg)
	},
}

func init() {
	cobra.OnInitialize(initLogger)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is examples/config.json)")

	rootCmd.Flags().Int("seed", 42, "Random seed for the storefront session")
	rootCmd.Flags().Int("session-orders", 50, "Number of orders to run in batch mode")
	rootCmd.Flags().Float64("invalid-order-ratio", 0.1, "Fraction of orders created with a broken total")
	rootCmd.Flags().Bool("continuous", false, "Keep placing orders until interrupted")
	rootCmd.Flags().Duration("tick-interval", time.Second, "Order placement interval in continuous mode")
	rootCmd.Flags().Float64("business-latitude", models.DefaultBusinessLat, "Depot latitude")
	rootCmd.Flags().Float64("business-longitude", models.DefaultBusinessLon, "Depot longitude")
	rootCmd.Flags().Float64("urban-radius", 12, "Drop-off sampling radius in km")
	rootCmd.Flags().Float64("near-location-threshold", 1.0, "Driver proximity alert threshold in km")
	rootCmd.Flags().Bool("webhooks-enabled", false, "Enable outbound automation webhooks")
	rootCmd.Flags().String("order-webhook-url", "", "Endpoint for order created/updated events")
	rootCmd.Flags().String("on-our-way-webhook-url", "", "Endpoint for departure and arrival events")
	rootCmd.Flags().String("delivery-webhook-url", "", "Endpoint for delivery events")
	rootCmd.Flags().Bool("kafka-enabled", false, "Publish lifecycle events to Kafka")
	rootCmd.Flags().String("kafka-broker-list", "localhost:9092", "Kafka broker list")
	rootCmd.Flags().String("output-file-path", "", "Directory for per-topic JSON event files (console when empty)")
	rootCmd.Flags().String("catalog-file", "", "Path to the catalog JSON file")
	rootCmd.Flags().String("postgres-dsn", "", "Load the catalog from Postgres instead of a file")
	rootCmd.Flags().String("metrics-addr", "", "Listen address for the Prometheus /metrics endpoint")

	viper.BindPFlags(rootCmd.Flags())
}

func initLogger() {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	slog.SetDefault(slog.New(handler))
}

func run(cfg *models.Config) error {
	tel := telemetry.New(cfg.LogCapacity)

	// lifecycle event sink: kafka > json files > console
	var dest events.OutputDestination
	switch {
	case cfg.KafkaEnabled:
		kafka, err := events.NewKafkaOutput(cfg.KafkaBrokerList)
		if err != nil {
			return err
		}
		dest = kafka
	case cfg.OutputFile != "":
		dest = events.NewJSONOutput(cfg.OutputFile)
	default:
		dest = &events.ConsoleOutput{}
	}
	publisher := events.NewPublisher(dest)
	defer func() {
		if err := publisher.Close(); err != nil {
			slog.Error("Failed to close event sink", "error", err)
		}
	}()

	var notifier orders.Notifier = notify.Noop{}
	if cfg.WebhooksEnabled {
		notifier = notify.NewWebhookSender(cfg, nil)
	}

	store, err := catalog.NewStore(cfg.CatalogFile)
	if err != nil {
		return err
	}
	if cfg.PostgresDSN != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		pool, err := catalog.Connect(ctx, cfg.PostgresDSN)
		cancel()
		if err != nil {
			return err
		}
		defer pool.Close()
		repo := catalog.NewPostgresRepository(pool)
		if err := repo.LoadInto(context.Background(), store); err != nil {
			slog.Error("Failed to load catalog from Postgres, continuing with local data", "error", err)
		}
	}
	slog.Info("Catalog ready", "products", store.Len())

	svc := orders.NewService(cfg, tel, notifier, publisher)

	var metricsSrv *http.Server
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", tel.Metrics.Handler())
		metricsSrv = &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
		go func() {
			slog.Info("Starting metrics server", "address", cfg.MetricsAddr)
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("Metrics server failed", "error", err)
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("Session starting",
		"continuous", cfg.Continuous,
		"orders", cfg.SessionOrders,
		"webhooks", cfg.WebhooksEnabled,
	)
	runErr := session.New(cfg, svc, store).Run(ctx)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}

	svc.Wait()
	printSummary(tel)

	if metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Metrics server shutdown error", "error", err)
		}
	}
	return nil
}

func printSummary(tel *telemetry.Telemetry) {
	snap := tel.Metrics.Snapshot()
	slog.Info("Session finished",
		"total_orders", snap.TotalOrders,
		"successful", snap.SuccessfulOrders,
		"failed_validation", snap.FailedOrders,
		"avg_processing", snap.AvgProcessingTime.String(),
		"webhook_failures", snap.WebhookFailures,
	)
	for status, count := range snap.StatusCounts {
		slog.Info("Status count", "status", string(status), "count", count)
	}
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
