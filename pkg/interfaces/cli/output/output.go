package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/vsinha/stocklink/pkg/application/dto"
	"github.com/vsinha/stocklink/pkg/domain/entities"
	csvrepo "github.com/vsinha/stocklink/pkg/infrastructure/repositories/csv"
)

// Config holds configuration for report generation
type Config struct {
	Format string
	// Preview is how many link rows the text report shows
	Preview int
	// LinksPath is reported in the text summary when links were written to a file
	LinksPath string
	Verbose   bool
}

// Generate writes the report for result in the configured format
func Generate(out io.Writer, result *dto.ReconcileResult, config Config) error {
	switch config.Format {
	case "", "text":
		return generateTextOutput(out, result, config)
	case "json":
		return generateJSONOutput(out, result)
	case "csv":
		return csvrepo.WriteLinks(out, result.Allocations)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

// WriteWarnings prints one warning line per under-fulfilled issue
func WriteWarnings(out io.Writer, result *dto.ReconcileResult) error {
	for _, w := range result.Warnings() {
		if _, err := fmt.Fprintln(out, w); err != nil {
			return err
		}
	}
	return nil
}

// generateTextOutput prints the warnings, a preview of the link table and
// the number of links.
func generateTextOutput(out io.Writer, result *dto.ReconcileResult, config Config) error {
	if err := WriteWarnings(out, result); err != nil {
		return err
	}

	if err := writePreview(out, result.Allocations, config.Preview); err != nil {
		return err
	}
	fmt.Fprintln(out, len(result.Allocations))

	if config.Verbose {
		stats := result.Stats
		fmt.Fprintf(out, "\nRun %s\n", result.RunID)
		if config.LinksPath != "" {
			fmt.Fprintf(out, "Links written to: %s\n", config.LinksPath)
		}
		fmt.Fprintf(out, "Issues: %d (%d skipped, %d bad quantity, %d bad date)\n",
			stats.Issues.Rows, stats.SkippedIssues, stats.Issues.InvalidQuantity, stats.Issues.InvalidDate)
		fmt.Fprintf(out, "Receipts: %d (%d bad quantity, %d bad date)\n",
			stats.Receipts.Rows, stats.Receipts.InvalidQuantity, stats.Receipts.InvalidDate)
		fmt.Fprintf(out, "Allocations: %d\n", stats.Allocations)
		fmt.Fprintf(out, "Shortages: %d\n", stats.Shortages)
		fmt.Fprintf(out, "Duration: %v\n", stats.Duration)
	}
	return nil
}

// writePreview renders the first n links as an aligned, index-numbered table
func writePreview(out io.Writer, allocations []entities.Allocation, n int) error {
	if n <= 0 {
		return nil
	}
	if len(allocations) == 0 {
		_, err := fmt.Fprintln(out, "No allocations")
		return err
	}
	if n > len(allocations) {
		n = len(allocations)
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "\t%s\t\n", strings.Join(entities.LinkHeader, "\t"))
	for i, a := range allocations[:n] {
		fmt.Fprintf(tw, "%d\t%s\t\n", i, strings.Join(a.Record(), "\t"))
	}
	return tw.Flush()
}

// generateJSONOutput prints the whole result as indented JSON
func generateJSONOutput(out io.Writer, result *dto.ReconcileResult) error {
	jsonData, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(out, string(jsonData))
	return err
}
