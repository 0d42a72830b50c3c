package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vsinha/stocklink/pkg/infrastructure/config"
	"github.com/vsinha/stocklink/pkg/infrastructure/logging"
)

// ConfigInitConfig holds configuration for writing a starter config file
type ConfigInitConfig struct {
	Path  string
	Force bool // Overwrite an existing file
}

// ConfigInitCommand writes the default configuration as YAML
type ConfigInitCommand struct {
	config ConfigInitConfig
	logger *zap.Logger
	out    io.Writer
}

// NewConfigInitCommand creates a new config init command
func NewConfigInitCommand(config ConfigInitConfig, logger *zap.Logger, out io.Writer) *ConfigInitCommand {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConfigInitCommand{config: config, logger: logger, out: out}
}

// Execute runs the config init command
func (c *ConfigInitCommand) Execute() error {
	if c.config.Path == "" {
		return fmt.Errorf("config path is required")
	}
	if !c.config.Force {
		if _, err := os.Stat(c.config.Path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", c.config.Path)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to check config file: %w", err)
		}
	}

	if err := config.DefaultConfig().Save(c.config.Path); err != nil {
		return err
	}
	c.logger.Info("config written", zap.String("path", c.config.Path))
	fmt.Fprintf(c.out, "Wrote %s\n", c.config.Path)
	return nil
}

func newConfigCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the stocklink config file",
		// The file being managed may not load yet, so only the logger is set up.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := opts.logLevel
			if opts.verbose {
				level = "debug"
			}
			logger, err := logging.New(level, opts.logFormat)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			opts.logger = logger
			return nil
		},
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration to the --config path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config := ConfigInitConfig{Path: opts.configPath, Force: force}
			return NewConfigInitCommand(config, opts.logger, cmd.OutOrStdout()).Execute()
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	cmd.AddCommand(initCmd)
	return cmd
}
