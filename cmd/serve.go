package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	httpadapter "ad-campaigns/internal/adapter/http"
	"ad-campaigns/internal/adapter/payment"
	"ad-campaigns/internal/adapter/usecase"
	"ad-campaigns/internal/config"
	"ad-campaigns/internal/logging"
	"ad-campaigns/internal/telemetry"
)

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

// serve wires the store, use cases and HTTP handler, then runs the server
// until SIGINT or SIGTERM. Shutdown waits for in-flight requests up to
// cfg.HTTP.ShutdownTimeout.
func serve(parent context.Context, cfg config.Config) error {
	logger, closer := logging.New(cfg.Log)
	defer closer.Close()
	logger = logger.With(slog.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.SetupTracing(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Error("tracing shutdown error", slog.Any("error", err))
		}
	}()

	var (
		metrics  *telemetry.Metrics
		gatherer prometheus.Gatherer
	)
	if cfg.Telemetry.MetricsEnabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics = telemetry.NewMetrics(reg)
		gatherer = reg
	}

	repo, closeStore, err := openStore(ctx, cfg, logger, cfg.Psql.RunMigrations)
	if err != nil {
		logger.Error("store initialisation error", slog.Any("error", err))
		return err
	}
	defer closeStore()

	paynow, err := payment.NewPaynow(cfg.Payment.PaynowBaseURL)
	if err != nil {
		return fmt.Errorf("paynow gateway: %w", err)
	}

	handler := httpadapter.NewHandler(httpadapter.Services{
		Campaigns: usecase.NewCampaignService(repo),
		Recorder:  usecase.NewMetricsRecorder(repo, metrics),
		Analytics: usecase.NewAnalyticsService(repo),
		Payments:  usecase.NewPaymentService(repo, metrics, payment.NewStripe(), paynow),
	}, logger, httpadapter.Options{
		CORSOrigins: cfg.HTTP.CORSOrigins,
		Metrics:     metrics,
		Gatherer:    gatherer,
	})

	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:     handler.Router(),
		ReadTimeout: cfg.HTTP.ReadTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", slog.Int("port", int(cfg.HTTP.Port)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", slog.Any("error", err))
			return err
		}
		logger.Info("server gracefully stopped")
		return nil
	})
	return g.Wait()
}
