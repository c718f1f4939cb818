package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"netprofile/internal/app/service"
	"netprofile/internal/client"
	"netprofile/internal/domain/entity"
	clientprovider "netprofile/internal/infrastructure/network/client"
	networkdefinition "netprofile/internal/infrastructure/network/definition"
	"netprofile/internal/infrastructure/profileloader"
	"netprofile/internal/pkg/logger"

	jsoniter "github.com/json-iterator/go"
	"github.com/urfave/cli/v2"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func showAction(cliCtx *cli.Context) error {
	env, err := bootstrap(cliCtx)
	if err != nil {
		return err
	}
	defer logger.Sync()

	format, err := profileloader.ParseFormat(cliCtx.String(flagFormat))
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	set := env.profiles
	if name := cliCtx.String(flagNetwork); name != "" {
		p, ok := set.Get(name)
		if !ok {
			return cli.Exit(fmt.Sprintf("%v: %s", entity.ErrProfileNotFound, name), 1)
		}
		set = entity.ProfileSet{Networks: map[string]entity.NetworkProfile{name: p}}
	}

	out, err := profileloader.Encode(set, format)
	if err != nil {
		return err
	}
	_, err = cliCtx.App.Writer.Write(out)
	return err
}

func validateAction(cliCtx *cli.Context) error {
	env, err := bootstrap(cliCtx)
	if err != nil {
		return err
	}
	defer logger.Sync()

	w := cliCtx.App.Writer
	invalid := 0
	for _, name := range env.profiles.Names() {
		p, _ := env.profiles.Get(name)
		if err := p.Validate(); err != nil {
			invalid++
			fmt.Fprintf(w, "invalid  %s\n", name)
			var verr *entity.ValidationError
			if errors.As(err, &verr) {
				for _, f := range verr.Fields {
					fmt.Fprintf(w, "         %s: %s\n", f.Field, f.Reason)
				}
			}
		} else {
			fmt.Fprintf(w, "ok       %s\n", name)
		}
		for _, warning := range p.Warnings() {
			fmt.Fprintf(w, "warning  %s: %s\n", name, warning)
		}
	}

	if invalid > 0 {
		return cli.Exit(fmt.Sprintf("%d of %d profiles are invalid", invalid, len(env.profiles.Networks)), 1)
	}
	return nil
}

func checkAction(cliCtx *cli.Context) error {
	env, err := bootstrap(cliCtx)
	if err != nil {
		return err
	}
	defer logger.Sync()

	registry := networkdefinition.NewProfileRegistry(env.profiles, env.log)
	clients := clientprovider.NewEVMClientProvider(env.cfg, env.log.Debug, env.log.Error)
	defer clients.CloseAll()

	statusSvc := service.NewStatusService(registry, clients, logger.NewZapAdapter(env.zap.Named("StatusService")), env.cfg, nil)
	statuses, err := statusSvc.CheckAll(cliCtx.Context, cliCtx.StringSlice(flagNetwork))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	w := cliCtx.App.Writer
	switch strings.ToLower(cliCtx.String(flagFormat)) {
	case "json":
		out, err := json.MarshalIndent(statuses, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(out))
	case "", "text":
		for _, st := range statuses {
			writeStatus(w, st)
		}
	default:
		return cli.Exit(fmt.Sprintf("unsupported format %q, expected text or json", cliCtx.String(flagFormat)), 2)
	}

	unhealthy := 0
	for _, st := range statuses {
		if !st.Healthy {
			unhealthy++
		}
	}
	if unhealthy > 0 {
		return cli.Exit(fmt.Sprintf("%d of %d profiles are unhealthy", unhealthy, len(statuses)), 1)
	}
	return nil
}

func writeStatus(w io.Writer, st entity.ProfileStatus) {
	state := "healthy"
	switch {
	case !st.Valid:
		state = "invalid"
	case !st.Reachable:
		state = "unreachable"
	case !st.Healthy:
		state = "unhealthy"
	}
	fmt.Fprintf(w, "%-9s %s  %s\n", state, st.ProfileName, st.Endpoint)
	if st.Reachable {
		fmt.Fprintf(w, "          network_id: expected %s, node %s\n", st.ExpectedNetworkID, st.ReportedNetworkID)
		fmt.Fprintf(w, "          chain_id: %s  client: %s\n", st.ChainID, st.ClientVersion)
		fmt.Fprintf(w, "          gas: %d, block gas limit %d\n", st.ProfileGas, st.BlockGasLimit)
		fmt.Fprintf(w, "          gasPrice: %s gwei, node %s gwei\n", st.ProfileGasPriceGwei, st.NodeGasPriceGwei)
		if st.Sender != nil {
			fmt.Fprintf(w, "          from: %s balance %s\n", st.Sender.Address, st.Sender.FormattedBalance)
		}
	}
	for _, f := range st.ValidationErrors {
		fmt.Fprintf(w, "          invalid %s: %s\n", f.Field, f.Reason)
	}
	for _, warning := range st.Warnings {
		fmt.Fprintf(w, "          warning: %s\n", warning)
	}
	for _, e := range st.Errors {
		if e.Method != "" {
			fmt.Fprintf(w, "          error %s: %s\n", e.Method, e.Message)
		} else {
			fmt.Fprintf(w, "          error: %s\n", e.Message)
		}
	}
}

func gasAction(cliCtx *cli.Context) error {
	env, err := bootstrap(cliCtx)
	if err != nil {
		return err
	}
	defer logger.Sync()

	name := env.defaultProfile(cliCtx)
	profile, ok := env.profiles.Get(name)
	if !ok {
		return cli.Exit(fmt.Sprintf("%v: %s", entity.ErrProfileNotFound, name), 1)
	}

	oracle := client.NewGasOracleClient(env.cfg.GasOracle.BaseURL, env.cfg.GasOracle.APIKey, env.cfg.GasOracle.RequestTimeout(), env.zap)
	gasSvc := service.NewGasReferenceService(oracle, env.log, env.cfg)

	cmp, err := gasSvc.Compare(cliCtx.Context, profile)
	if err != nil {
		if errors.Is(err, entity.ErrGasOracleDisabled) {
			return cli.Exit("gas oracle is not configured, set gasOracle.baseURL in the config", 1)
		}
		return err
	}

	w := cliCtx.App.Writer
	fmt.Fprintf(w, "profile:     %s\n", cmp.ProfileName)
	fmt.Fprintf(w, "gasPrice:    %g gwei\n", cmp.ProfileGwei)
	fmt.Fprintf(w, "reference:   safe %g / propose %g / fast %g gwei (block %d)\n",
		cmp.Reference.SafeGwei, cmp.Reference.ProposeGwei, cmp.Reference.FastGwei, cmp.Reference.LastBlock)
	fmt.Fprintf(w, "ratio:       %.2f (tolerance %.2f)\n", cmp.Ratio, cmp.Tolerance)
	if cmp.Drifted {
		fmt.Fprintf(w, "drifted:     yes, suggested gasPrice %d\n", cmp.RecommendedWei)
	} else {
		fmt.Fprintln(w, "drifted:     no")
	}
	return nil
}
