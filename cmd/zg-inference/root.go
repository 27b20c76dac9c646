package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shamank/zg-compute-go/internal/demo"
	"github.com/shamank/zg-compute-go/pkg/config"
	"github.com/shamank/zg-compute-go/pkg/inference"
	"github.com/shamank/zg-compute-go/pkg/logger"
	"github.com/shamank/zg-compute-go/pkg/sdk"
)

const rootLongDesc string = `Run the 0G compute inference demo.

Makes sure the wallet has a ledger (creating one funded with the initial
balance), lists registered services, resolves the chosen provider and sends
it one chat completion. Fees the provider reports as owed are settled and
the request retried.

Settings come from flags, then environment variables (a .env file is
loaded first), then the --config file, then built-in defaults.

Examples:
  zg-inference
  zg-inference --provider 0xf07240Efa67755B5311bc75784a061eDB47165Dd --message "Hi"
  zg-inference --config zg.yaml --max-retries 5 --retry-delay 500ms`

const rootShortDesc string = "Run a paid chat completion against a 0G compute provider"

// deps are the constructors the commands use; tests replace them.
type deps struct {
	openBroker   func(cfg *config.Config) (sdk.Broker, error)
	newCompleter func(cfg *config.Config) inference.Completer
}

func defaultDeps() deps {
	return deps{
		openBroker: func(cfg *config.Config) (sdk.Broker, error) {
			return sdk.NewBroker(cfg)
		},
		newCompleter: func(cfg *config.Config) inference.Completer {
			return inference.NewClient(cfg.Timeouts.HTTPRequest)
		},
	}
}

type rootCommander struct {
	deps deps

	configPath string
	envFile    string

	rpcURL         string
	provider       string
	message        string
	initialBalance string
	feePattern     string
	maxRetries     int
	retryDelay     time.Duration
	debug          bool

	cfg     config.Config
	restore func()
}

func newRootCmd(d deps) *cobra.Command {
	cmder := &rootCommander{deps: d}

	cmd := &cobra.Command{
		Use:               "zg-inference",
		Short:             rootShortDesc,
		Long:              rootLongDesc,
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: cmder.setup,
		PersistentPostRun: func(*cobra.Command, []string) { cmder.teardown() },
		RunE:              cmder.run,
	}

	defaults := config.Default()
	f := cmd.PersistentFlags()
	f.StringVarP(&cmder.configPath, "config", "c", "", "Path to a YAML or JSON config file")
	f.StringVar(&cmder.envFile, "env-file", ".env", "Path to a .env file (ignored when missing)")
	f.StringVar(&cmder.rpcURL, "rpc", defaults.RPCAddr, "Blockchain RPC endpoint")
	f.StringVarP(&cmder.provider, "provider", "p", defaults.ProviderAddress, "Provider address")
	f.BoolVarP(&cmder.debug, "debug", "d", false, "Enable debug logging")

	cmd.Flags().StringVarP(&cmder.message, "message", "m", defaults.Message, "Message content to send")
	cmd.Flags().StringVar(&cmder.initialBalance, "initial-balance", defaults.InitialBalance, "A0GI funding a newly created ledger")
	cmd.Flags().IntVar(&cmder.maxRetries, "max-retries", defaults.MaxRetries, "Inference attempts (0 disables inference)")
	cmd.Flags().DurationVar(&cmder.retryDelay, "retry-delay", defaults.RetryDelay, "Pause between attempts")
	cmd.Flags().StringVar(&cmder.feePattern, "fee-pattern", defaults.FeePattern, "Regexp recognizing an owed-fee error; group 1 is the amount")

	cmd.AddCommand(newServicesCmd(cmder))
	cmd.AddCommand(newLedgerCmd(cmder))

	return cmd
}

// setup resolves the configuration and installs the logger.
func (c *rootCommander) setup(cmd *cobra.Command, _ []string) error {
	cfg := config.Default()
	if c.configPath != "" {
		loaded, err := config.Load(c.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	if err := config.LoadDotEnv(c.envFile); err != nil {
		return err
	}
	if err := config.FromEnv(&cfg); err != nil {
		return err
	}
	c.applyFlags(cmd, &cfg)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	c.cfg = cfg
	c.restore = logger.Install(cfg.Debug)

	zap.L().Debug("configuration resolved",
		zap.String("rpc", cfg.RPCAddr),
		zap.String("provider", cfg.ProviderAddress),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("retry_delay", cfg.RetryDelay))
	return nil
}

// applyFlags copies explicitly set flags onto cfg. Flags local to the root
// command are never "changed" when a subcommand runs.
func (c *rootCommander) applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("rpc") {
		cfg.RPCAddr = c.rpcURL
	}
	if flags.Changed("provider") {
		cfg.ProviderAddress = c.provider
	}
	if flags.Changed("debug") {
		cfg.Debug = c.debug
	}
	if flags.Changed("message") {
		cfg.Message = c.message
	}
	if flags.Changed("initial-balance") {
		cfg.InitialBalance = c.initialBalance
	}
	if flags.Changed("max-retries") {
		cfg.MaxRetries = c.maxRetries
	}
	if flags.Changed("retry-delay") {
		cfg.RetryDelay = c.retryDelay
	}
	if flags.Changed("fee-pattern") {
		cfg.FeePattern = c.feePattern
	}
}

func (c *rootCommander) teardown() {
	if c.restore != nil {
		c.restore()
		c.restore = nil
	}
}

// open returns a broker for the resolved configuration.
func (c *rootCommander) open() (sdk.Broker, error) {
	b, err := c.deps.openBroker(&c.cfg)
	if err != nil {
		return nil, fmt.Errorf("could not create broker: %w", err)
	}
	return b, nil
}

func (c *rootCommander) run(cmd *cobra.Command, _ []string) error {
	initial, err := c.cfg.InitialBalanceA0GI()
	if err != nil {
		return err
	}

	broker, err := c.open()
	if err != nil {
		return err
	}
	defer broker.Close()

	return demo.Run(cmd.Context(), cmd.OutOrStdout(), broker, c.deps.newCompleter(&c.cfg), demo.Options{
		Provider:       c.cfg.ProviderAddress,
		InitialBalance: initial,
		Message:        c.cfg.Message,
		Retry:          inference.OptionsFromConfig(&c.cfg),
	})
}
