package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vsinha/stocklink/pkg/infrastructure/config"
	"github.com/vsinha/stocklink/pkg/infrastructure/logging"
)

// globalOptions are the persistent flags shared by every subcommand
type globalOptions struct {
	configPath string
	logLevel   string
	logFormat  string
	verbose    bool

	config *config.Config
	logger *zap.Logger
}

// NewRootCommand builds the stocklink command tree. Reports are written to out.
func NewRootCommand(out io.Writer) *cobra.Command {
	opts := &globalOptions{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "stocklink",
		Short: "Reconcile stock issues against receipts, first in first out",
		Long: `stocklink links every stock issue to the receipts it consumed.

Receipts are consumed in date order per product. Issues that cannot be
covered by the remaining receipt balance are reported as warnings.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				cfg.Logging.Level = opts.logLevel
			}
			if cmd.Flags().Changed("log-format") {
				cfg.Logging.Format = opts.logFormat
			}
			if opts.verbose {
				cfg.Logging.Level = "debug"
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config %s: %w", opts.configPath, err)
			}

			logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			opts.config = cfg
			opts.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = opts.logger.Sync()
		},
	}
	root.SetOut(out)

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", config.DefaultPath, "Path to YAML config file")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	flags.StringVar(&opts.logFormat, "log-format", "console", "Log format: console, json")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output and debug logging")

	root.AddCommand(
		newReconcileCmd(opts),
		newGenerateCmd(opts),
		newServeCmd(opts),
		newConfigCmd(opts),
	)
	return root
}
