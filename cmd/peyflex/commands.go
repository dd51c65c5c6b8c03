package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/spf13/cobra"

	peyflex "github.com/peyflex/client-go"
)

// app carries state shared by every subcommand.
type app struct {
	configFiles []string
	logLevel    string
	client      *peyflex.Client
}

func newRootCommand(version string) *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "peyflex",
		Short: "Pay bills through the Peyflex API",
		Long: `Command-line access to the Peyflex bills-payment API.

Configuration is read from the files given with --config (YAML or dotenv)
and from PEYFLEX_* environment variables, which take precedence.`,
		Example: `  # Show the wallet balance
  PEYFLEX_API_TOKEN=... peyflex balance

  # Buy airtime using a config file
  peyflex --config peyflex.yaml airtime buy mtn 08012345678 100`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringArrayVarP(&a.configFiles, "config", "c", nil, "Config file (YAML or .env); repeatable")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level override (debug, info, warn, error, disabled)")

	root.AddCommand(
		a.simple("profile", "Show the account profile", (*peyflex.Client).GetProfile),
		a.simple("balance", "Show the wallet balance", (*peyflex.Client).GetBalance),
		a.airtimeCommand(),
		a.dataCommand(),
		a.cableCommand(),
		a.electricityCommand(),
	)
	return root
}

func (a *app) connect() error {
	if a.client != nil {
		return nil
	}
	cfg, err := peyflex.LoadConfig(a.configFiles...)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}

	client, err := peyflex.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}
	a.client = client
	return nil
}

// call is the body of a leaf command. The client is created on first use so
// help and usage output work without a token.
type call func(ctx context.Context, client *peyflex.Client, args []string) (peyflex.Response, error)

func (a *app) runE(fn call) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := a.connect(); err != nil {
			return err
		}
		resp, err := fn(cmd.Context(), a.client, args)
		if err != nil {
			return err
		}
		return printResponse(cmd, resp)
	}
}

// simple builds a command without arguments around a listing call.
func (a *app) simple(use, short string, list func(*peyflex.Client, context.Context) (peyflex.Response, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: a.runE(func(ctx context.Context, client *peyflex.Client, _ []string) (peyflex.Response, error) {
			return list(client, ctx)
		}),
	}
}

func (a *app) airtimeCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "airtime", Short: "Airtime top-ups"}
	cmd.AddCommand(
		a.simple("networks", "List airtime networks", (*peyflex.Client).GetAirtimeNetworks),
		&cobra.Command{
			Use:   "buy <network> <phone> <amount>",
			Short: "Top up a phone number",
			Args:  cobra.ExactArgs(3),
			RunE: a.runE(func(ctx context.Context, client *peyflex.Client, args []string) (peyflex.Response, error) {
				amount, err := parseAmount(args[2])
				if err != nil {
					return nil, err
				}
				return client.PurchaseAirtime(ctx, args[0], args[1], amount)
			}),
		},
	)
	return cmd
}

func (a *app) dataCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "data", Short: "Data bundles"}
	cmd.AddCommand(
		a.simple("networks", "List data networks", (*peyflex.Client).GetDataNetworks),
		&cobra.Command{
			Use:   "plans <network>",
			Short: "List the data plans of a network",
			Args:  cobra.ExactArgs(1),
			RunE: a.runE(func(ctx context.Context, client *peyflex.Client, args []string) (peyflex.Response, error) {
				return client.GetDataPlans(ctx, args[0])
			}),
		},
		&cobra.Command{
			Use:   "buy <network> <phone> <plan>",
			Short: "Buy a data plan for a phone number",
			Args:  cobra.ExactArgs(3),
			RunE: a.runE(func(ctx context.Context, client *peyflex.Client, args []string) (peyflex.Response, error) {
				return client.PurchaseData(ctx, args[0], args[1], args[2])
			}),
		},
	)
	return cmd
}

func (a *app) cableCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "cable", Short: "Cable TV subscriptions"}
	cmd.AddCommand(
		a.simple("providers", "List cable providers", (*peyflex.Client).GetCableProviders),
		&cobra.Command{
			Use:   "verify <provider> <iuc>",
			Short: "Look up the customer behind an IUC number",
			Args:  cobra.ExactArgs(2),
			RunE: a.runE(func(ctx context.Context, client *peyflex.Client, args []string) (peyflex.Response, error) {
				return client.VerifyCable(ctx, args[0], args[1])
			}),
		},
		&cobra.Command{
			Use:   "buy <provider> <iuc> <plan>",
			Short: "Subscribe an IUC number to a plan",
			Args:  cobra.ExactArgs(3),
			RunE: a.runE(func(ctx context.Context, client *peyflex.Client, args []string) (peyflex.Response, error) {
				return client.PurchaseCable(ctx, args[0], args[1], args[2])
			}),
		},
	)
	return cmd
}

func (a *app) electricityCommand() *cobra.Command {
	var meterType string

	cmd := &cobra.Command{Use: "electricity", Short: "Electricity tokens"}
	cmd.PersistentFlags().StringVarP(&meterType, "type", "t", string(peyflex.MeterPrepaid), "Meter type (prepaid or postpaid)")

	cmd.AddCommand(
		a.simple("plans", "List electricity distribution companies", (*peyflex.Client).GetElectricityPlans),
		&cobra.Command{
			Use:   "verify <provider> <meter>",
			Short: "Look up the customer behind a meter number",
			Args:  cobra.ExactArgs(2),
			RunE: a.runE(func(ctx context.Context, client *peyflex.Client, args []string) (peyflex.Response, error) {
				return client.VerifyMeter(ctx, args[0], args[1], peyflex.MeterType(meterType))
			}),
		},
		&cobra.Command{
			Use:   "buy <provider> <meter> <amount>",
			Short: "Buy an electricity token",
			Args:  cobra.ExactArgs(3),
			RunE: a.runE(func(ctx context.Context, client *peyflex.Client, args []string) (peyflex.Response, error) {
				amount, err := parseAmount(args[2])
				if err != nil {
					return nil, err
				}
				return client.PurchaseElectricity(ctx, args[0], args[1], amount, peyflex.MeterType(meterType))
			}),
		},
	)
	return cmd
}

func parseAmount(s string) (float64, error) {
	amount, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	return amount, nil
}

func printResponse(cmd *cobra.Command, resp peyflex.Response) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}
