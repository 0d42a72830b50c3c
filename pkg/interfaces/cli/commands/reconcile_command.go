package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vsinha/stocklink/pkg/application/services"
	"github.com/vsinha/stocklink/pkg/domain/repositories"
	"github.com/vsinha/stocklink/pkg/infrastructure/events"
	"github.com/vsinha/stocklink/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/stocklink/pkg/infrastructure/repositories/sqlite"
	"github.com/vsinha/stocklink/pkg/interfaces/cli/output"
)

// ReconcileConfig holds configuration for the reconcile command
type ReconcileConfig struct {
	IssuesFile    string
	ReceiptsFile  string
	OutputFile    string
	RemainingFile string // optional per-receipt balance report
	DBPath        string // optional SQLite run store
	Format        string
	Preview       int
	DayFirst      bool
	Workers       int
	Verbose       bool
}

// ReconcileCommand loads both CSV sources, allocates and writes the link table
type ReconcileCommand struct {
	config ReconcileConfig
	logger *zap.Logger
	out    io.Writer
}

// NewReconcileCommand creates a reconcile command writing its report to out
func NewReconcileCommand(config ReconcileConfig, logger *zap.Logger, out io.Writer) *ReconcileCommand {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReconcileCommand{config: config, logger: logger, out: out}
}

// Execute runs the reconcile command
func (c *ReconcileCommand) Execute(ctx context.Context) error {
	if err := c.validateInputs(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	sinks := []repositories.LinkRepository{csv.NewLinkWriter(c.config.OutputFile)}
	if c.config.DBPath != "" {
		store, err := sqlite.New(c.config.DBPath)
		if err != nil {
			return fmt.Errorf("failed to open run store: %w", err)
		}
		defer store.Close()
		sinks = append(sinks, store)
	}

	journal := events.NewJournal()
	if c.config.Verbose {
		if err := c.traceEvents(journal); err != nil {
			return fmt.Errorf("failed to subscribe to run events: %w", err)
		}
	}

	service := services.NewReconcileService(
		services.Config{DayFirst: c.config.DayFirst, Workers: c.config.Workers},
		services.WithSinks(sinks...),
		services.WithJournal(journal),
		services.WithLogger(c.logger),
	)

	source := csv.NewSource(c.config.IssuesFile, c.config.ReceiptsFile)
	result, err := service.Reconcile(ctx, source)
	if err != nil {
		return err
	}

	if c.config.RemainingFile != "" {
		if err := csv.WriteBalances(c.config.RemainingFile, result.Balances); err != nil {
			return fmt.Errorf("failed to write remaining balances: %w", err)
		}
	}

	return output.Generate(c.out, result, output.Config{
		Format:    c.config.Format,
		Preview:   c.config.Preview,
		LinksPath: c.config.OutputFile,
		Verbose:   c.config.Verbose,
	})
}

func (c *ReconcileCommand) validateInputs() error {
	if c.config.IssuesFile == "" || c.config.ReceiptsFile == "" {
		return fmt.Errorf("both --issues and --receipts are required")
	}
	if c.config.OutputFile == "" {
		return fmt.Errorf("--output is required")
	}
	if c.config.Workers < 1 {
		return fmt.Errorf("--workers must be at least 1")
	}
	if c.config.Preview < 0 {
		return fmt.Errorf("--preview must not be negative")
	}
	return nil
}

// traceEvents logs every journal event at debug level as it is recorded
func (c *ReconcileCommand) traceEvents(journal *events.Journal) error {
	types := []string{events.AllocationRecordedEvent, events.IssueUnderfulfilledEvent, events.RunCompletedEvent}
	return journal.Subscribe(types, events.HandlerFunc{
		Types: types,
		Fn: func(e events.Event) error {
			c.logger.Debug("event",
				zap.String("type", e.Type()),
				zap.String("stream", e.StreamID()),
				zap.Int("version", e.Version()),
				zap.Any("data", e.Data()))
			return nil
		},
	})
}

func newReconcileCmd(opts *globalOptions) *cobra.Command {
	var config ReconcileConfig

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Link issues to receipts and report unmatched demand",
		Long: `Reads the issue and receipt CSV files, allocates every issue to the
earliest receipts of the same product and writes the link table.

Both files need the columns Document Code, Product, Date and Quantity.
Issues with a zero, negative or unreadable quantity are skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.config
			flags := cmd.Flags()
			if !flags.Changed("issues") {
				config.IssuesFile = cfg.Sources.Issues
			}
			if !flags.Changed("receipts") {
				config.ReceiptsFile = cfg.Sources.Receipts
			}
			if !flags.Changed("output") {
				config.OutputFile = cfg.Output.Links
			}
			if !flags.Changed("remaining") {
				config.RemainingFile = cfg.Output.Remaining
			}
			if !flags.Changed("db") {
				config.DBPath = cfg.Output.Database
			}
			if !flags.Changed("format") {
				config.Format = cfg.Output.Format
			}
			if !flags.Changed("preview") {
				config.Preview = cfg.Output.Preview
			}
			if !flags.Changed("day-first") {
				config.DayFirst = cfg.Sources.DayFirst
			}
			if !flags.Changed("workers") {
				config.Workers = cfg.Allocate.Workers
			}
			config.Verbose = opts.verbose

			return NewReconcileCommand(config, opts.logger, cmd.OutOrStdout()).Execute(cmd.Context())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&config.IssuesFile, "issues", "", "Path to issues CSV file")
	flags.StringVar(&config.ReceiptsFile, "receipts", "", "Path to receipts CSV file")
	flags.StringVarP(&config.OutputFile, "output", "o", "", "Path of the link table CSV to write")
	flags.StringVar(&config.RemainingFile, "remaining", "", "Also write per-receipt remaining balances to this CSV")
	flags.StringVar(&config.DBPath, "db", "", "Also store the run in this SQLite database")
	flags.StringVar(&config.Format, "format", "text", "Report format: text, json, csv")
	flags.IntVar(&config.Preview, "preview", 5, "Number of link rows shown in the text report")
	flags.BoolVar(&config.DayFirst, "day-first", false, "Read ambiguous dates such as 03/04/2024 as day first")
	flags.IntVar(&config.Workers, "workers", 1, "Products allocated concurrently")

	return cmd
}
