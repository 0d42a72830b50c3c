package commands

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Generated file names, matching the reconcile defaults
const (
	issuesFileName   = "stock_issues.csv"
	receiptsFileName = "stock_receipts.csv"
)

var movementHeader = []string{"Document Code", "Product", "Date", "Quantity"}

// GenerateConfig holds configuration for scenario generation
type GenerateConfig struct {
	Products  int     // Number of distinct products
	Receipts  int     // Receipts per product
	Issues    int     // Issues per product
	Coverage  float64 // Receipt supply relative to issue demand (0.5 = half covered)
	Noise     float64 // Fraction of rows carrying a correction or a defect
	OutputDir string  // Output directory for generated files
	Seed      int64   // Random seed for reproducible generation
	Verbose   bool
}

// GenerateCommand writes a synthetic pair of issue and receipt files
type GenerateCommand struct {
	config GenerateConfig
	rand   *rand.Rand
	logger *zap.Logger
	out    io.Writer
}

// NewGenerateCommand creates a new generate command
func NewGenerateCommand(config GenerateConfig, logger *zap.Logger, out io.Writer) *GenerateCommand {
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &GenerateCommand{
		config: config,
		rand:   rand.New(rand.NewSource(seed)),
		logger: logger,
		out:    out,
	}
}

type movementRow struct {
	code, product string
	date          time.Time
	quantity      int
}

// Execute runs the generate command
func (cmd *GenerateCommand) Execute(ctx context.Context) error {
	if err := cmd.validate(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if err := os.MkdirAll(cmd.config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	issues, receipts := cmd.generateMovements()

	issuesPath := filepath.Join(cmd.config.OutputDir, issuesFileName)
	if err := cmd.writeMovements(issuesPath, issues); err != nil {
		return fmt.Errorf("failed to write issues: %w", err)
	}
	receiptsPath := filepath.Join(cmd.config.OutputDir, receiptsFileName)
	if err := cmd.writeMovements(receiptsPath, receipts); err != nil {
		return fmt.Errorf("failed to write receipts: %w", err)
	}

	cmd.logger.Info("scenario generated",
		zap.String("dir", cmd.config.OutputDir),
		zap.Int("issues", len(issues)),
		zap.Int("receipts", len(receipts)),
		zap.Int64("seed", cmd.config.Seed))

	if cmd.config.Verbose {
		fmt.Fprintf(cmd.out, "Wrote %d issues to %s\n", len(issues), issuesPath)
		fmt.Fprintf(cmd.out, "Wrote %d receipts to %s\n", len(receipts), receiptsPath)
	}
	return nil
}

func (cmd *GenerateCommand) validate() error {
	switch {
	case cmd.config.Products < 1:
		return fmt.Errorf("--products must be at least 1")
	case cmd.config.Receipts < 0 || cmd.config.Issues < 0:
		return fmt.Errorf("--receipts and --issues must not be negative")
	case cmd.config.Coverage < 0:
		return fmt.Errorf("--coverage must not be negative")
	case cmd.config.Noise < 0 || cmd.config.Noise > 1:
		return fmt.Errorf("--noise must be between 0 and 1")
	case cmd.config.OutputDir == "":
		return fmt.Errorf("--out is required")
	}
	return nil
}

// generateMovements draws issue demand first, then spreads Coverage times
// that demand over the product's receipts.
func (cmd *GenerateCommand) generateMovements() (issues, receipts []movementRow) {
	baseDate := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for p := 0; p < cmd.config.Products; p++ {
		product := fmt.Sprintf("SKU-%05d", p+1)

		demand := 0
		for i := 0; i < cmd.config.Issues; i++ {
			qty := 1 + cmd.rand.Intn(20)
			demand += qty
			issues = append(issues, movementRow{
				code:     fmt.Sprintf("GI-%05d-%03d", p+1, i+1),
				product:  product,
				date:     baseDate.AddDate(0, 0, cmd.rand.Intn(365)),
				quantity: qty,
			})
		}

		if cmd.config.Receipts == 0 {
			continue
		}
		supply := int(float64(demand) * cmd.config.Coverage)
		for r := 0; r < cmd.config.Receipts; r++ {
			qty := supply / cmd.config.Receipts
			if r < supply%cmd.config.Receipts {
				qty++
			}
			receipts = append(receipts, movementRow{
				code:     fmt.Sprintf("GR-%05d-%03d", p+1, r+1),
				product:  product,
				date:     baseDate.AddDate(0, 0, cmd.rand.Intn(365)),
				quantity: qty,
			})
		}
	}

	cmd.rand.Shuffle(len(issues), func(i, j int) { issues[i], issues[j] = issues[j], issues[i] })
	cmd.rand.Shuffle(len(receipts), func(i, j int) { receipts[i], receipts[j] = receipts[j], receipts[i] })
	return issues, receipts
}

// writeMovements writes rows with a mix of date spellings. With Noise set,
// some rows become corrections (negative quantity) or carry an unreadable
// field, the way real exports do.
func (cmd *GenerateCommand) writeMovements(path string, rows []movementRow) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(movementHeader); err != nil {
		return err
	}

	for _, row := range rows {
		date := cmd.formatDate(row.date)
		quantity := fmt.Sprintf("%d", row.quantity)

		if cmd.rand.Float64() < cmd.config.Noise {
			switch cmd.rand.Intn(3) {
			case 0:
				quantity = fmt.Sprintf("-%d", row.quantity)
			case 1:
				quantity = "n/a"
			default:
				date = "unknown"
			}
		}

		if err := w.Write([]string{row.code, row.product, date, quantity}); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func (cmd *GenerateCommand) formatDate(t time.Time) string {
	switch cmd.rand.Intn(4) {
	case 0:
		return t.Format("1/2/2006")
	case 1:
		return t.Format("2006-01-02 15:04:05")
	default:
		return t.Format("2006-01-02")
	}
}

func newGenerateCmd(opts *globalOptions) *cobra.Command {
	var config GenerateConfig

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a synthetic issue and receipt scenario",
		Long: `Generates stock_issues.csv and stock_receipts.csv for testing.

Examples:
  # Small scenario with a third of demand unmet
  stocklink generate --products 10 --receipts 3 --issues 5 --coverage 0.66 --out ./scenario

  # Large reproducible scenario with defective rows
  stocklink generate --products 5000 --receipts 20 --issues 40 --noise 0.02 --seed 12345 --out ./large`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config.Verbose = opts.verbose
			return NewGenerateCommand(config, opts.logger, cmd.OutOrStdout()).Execute(cmd.Context())
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&config.Products, "products", 10, "Number of products")
	flags.IntVar(&config.Receipts, "receipts", 3, "Receipts per product")
	flags.IntVar(&config.Issues, "issues", 5, "Issues per product")
	flags.Float64Var(&config.Coverage, "coverage", 1.0, "Receipt supply relative to issue demand")
	flags.Float64Var(&config.Noise, "noise", 0, "Fraction of rows that are corrections or defective")
	flags.StringVar(&config.OutputDir, "out", ".", "Output directory")
	flags.Int64Var(&config.Seed, "seed", 0, "Random seed (0 = time based)")

	return cmd
}
