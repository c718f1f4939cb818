package main

import (
	"io"
	"os"

	"netprofile/internal/infrastructure/configloader"
	"netprofile/internal/pkg/logger"

	"github.com/urfave/cli/v2"
)

const (
	appName = "netprofile"

	// flagConfig is the flag for the application config file.
	flagConfig = "config"
	// flagNetworksFile is the flag for the profile document.
	flagNetworksFile = "networks-file"
	// flagLogLevel overrides logging.level from the config.
	flagLogLevel = "log-level"
	// flagNetwork selects profiles by name.
	flagNetwork = "network"
	// flagFormat selects the output encoding.
	flagFormat = "format"

	envConfig       = "NETPROFILE_CONFIG"
	envNetworksFile = "NETPROFILE_NETWORKS_FILE"
)

func newApp(stdout, stderr io.Writer) *cli.App {
	app := cli.NewApp()
	app.Name = appName
	app.Usage = "Inspect, validate and probe EVM network profiles"
	app.Version = Version
	app.Writer = stdout
	app.ErrWriter = stderr
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    flagConfig,
			Aliases: []string{"c"},
			Usage:   "application config `FILE`",
			Value:   configloader.DefaultConfigPath,
			EnvVars: []string{envConfig},
		},
		&cli.StringFlag{
			Name:    flagNetworksFile,
			Aliases: []string{"n"},
			Usage:   "profile document `FILE` (yaml or json), the built-in document when empty",
			EnvVars: []string{envNetworksFile},
		},
		&cli.StringFlag{
			Name:  flagLogLevel,
			Usage: "log level: debug, info, warn, error",
		},
	}

	formatFlag := &cli.StringFlag{
		Name:  flagFormat,
		Usage: "output format: yaml or json",
		Value: "yaml",
	}

	app.Commands = []*cli.Command{
		{
			Name:   "show",
			Usage:  "Print the loaded profile document",
			Action: showAction,
			Flags: []cli.Flag{
				&cli.StringFlag{Name: flagNetwork, Usage: "print only this profile"},
				formatFlag,
			},
		},
		{
			Name:   "validate",
			Usage:  "Validate every profile and report checksum warnings",
			Action: validateAction,
		},
		{
			Name:   "check",
			Usage:  "Probe the nodes the profiles point to",
			Action: checkAction,
			Flags: []cli.Flag{
				&cli.StringSliceFlag{Name: flagNetwork, Usage: "profile to check, repeatable; every profile when omitted"},
				&cli.StringFlag{Name: flagFormat, Usage: "output format: text or json", Value: "text"},
			},
		},
		{
			Name:   "gas",
			Usage:  "Compare a profile gas price with the reference gas oracle",
			Action: gasAction,
			Flags: []cli.Flag{
				&cli.StringFlag{Name: flagNetwork, Usage: "profile to compare, networks.default from the config when omitted"},
			},
		},
		{
			Name:   "serve",
			Usage:  "Run the HTTP API",
			Action: serveAction,
		},
		{
			Name:   "version",
			Usage:  "Print version information",
			Action: versionAction,
		},
	}
	return app
}

func main() {
	app := newApp(os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		logger.Fatal("netprofile failed", "error", err)
	}
}

