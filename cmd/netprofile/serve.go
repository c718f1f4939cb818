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

	"netprofile/internal/app/service"
	"netprofile/internal/client"
	clientprovider "netprofile/internal/infrastructure/network/client"
	networkdefinition "netprofile/internal/infrastructure/network/definition"
	"netprofile/internal/infrastructure/restapi"
	"netprofile/internal/pkg/logger"
	"netprofile/internal/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func serveAction(cliCtx *cli.Context) error {
	env, err := bootstrap(cliCtx)
	if err != nil {
		return err
	}
	defer logger.Sync()

	cfg := env.cfg
	logger.Info("netprofile API starting", "version", Version, "log_level", cfg.Logging.Level)
	logger.Info("Probe concurrency configured",
		"max_concurrent_routines", cfg.Performance.MaxConcurrentRoutines,
		"rate_limit", cfg.Performance.RateLimit,
		"burst_limit", cfg.Performance.BurstLimit)

	if err := env.profiles.Validate(); err != nil {
		// Invalid profiles are still served and reported per profile.
		logger.Warn("Profile document contains invalid profiles", "error", err)
	}

	registry := networkdefinition.NewProfileRegistry(env.profiles, env.log)

	clientProvider := clientprovider.NewEVMClientProvider(cfg, env.log.Info, env.log.Error)
	defer clientProvider.CloseAll()

	probeMetrics := metrics.MustRegisterMetrics()
	statusSvc := service.NewStatusService(
		registry,
		clientProvider,
		logger.NewZapAdapter(env.zap.Named("StatusService")),
		cfg,
		probeMetrics,
	)

	var oracle client.GasOracleClient
	if cfg.GasOracle.Enabled() {
		oracle = client.NewGasOracleClient(
			cfg.GasOracle.BaseURL,
			cfg.GasOracle.APIKey,
			cfg.GasOracle.RequestTimeout(),
			env.zap.Named("GasOracleClient"),
		)
	}
	gasSvc := service.NewGasReferenceService(oracle, logger.NewZapAdapter(env.zap.Named("GasReferenceService")), cfg)

	networkHandler := restapi.NewNetworkHandler(registry, statusSvc, gasSvc, env.log)
	router := restapi.SetupRouter(networkHandler, cfg, env.zap.Named("HTTP"), promhttp.Handler())

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signalChan)

	select {
	case sig := <-signalChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case err, ok := <-serveErr:
		if ok {
			env.zap.Error("HTTP server failed", zap.Error(err))
			return fmt.Errorf("http server: %w", err)
		}
	case <-cliCtx.Context.Done():
		logger.Info("Context cancelled, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeoutSeconds)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
		return err
	}
	logger.Info("netprofile API stopped")
	return nil
}
