package main

import (
	"fmt"

	"netprofile/internal/app/port"
	"netprofile/internal/app/provider"
	"netprofile/internal/domain/entity"
	"netprofile/internal/infrastructure/configloader"
	"netprofile/internal/infrastructure/profileloader"
	"netprofile/internal/pkg/logger"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

// appEnv is what every command needs: config, loggers and the loaded profile document.
type appEnv struct {
	cfg      *configloader.Config
	zap      *zap.Logger
	log      port.Logger
	profiles entity.ProfileSet
}

func bootstrap(cliCtx *cli.Context) (*appEnv, error) {
	cfg, err := configloader.Load(cliCtx.String(flagConfig))
	if err != nil {
		return nil, err
	}

	level := cfg.Logging.Level
	if cliCtx.IsSet(flagLogLevel) {
		level = cliCtx.String(flagLogLevel)
	}
	zapLogger, err := logger.Init(level)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	appLogger := logger.NewSlogAdapter()

	networksFile := cfg.Networks.File
	if cliCtx.IsSet(flagNetworksFile) {
		networksFile = cliCtx.String(flagNetworksFile)
	}
	loader := profileloader.NewProfileFileLoader(networksFile, appLogger.Info, appLogger.Warn)
	set, err := provider.NewProfileProvider(loader, appLogger).GetProfiles()
	if err != nil {
		return nil, err
	}

	return &appEnv{cfg: cfg, zap: zapLogger, log: appLogger, profiles: set}, nil
}

// defaultProfile returns the --network flag value or networks.default from the config.
func (e *appEnv) defaultProfile(cliCtx *cli.Context) string {
	if name := cliCtx.String(flagNetwork); name != "" {
		return name
	}
	return e.cfg.Networks.Default
}
