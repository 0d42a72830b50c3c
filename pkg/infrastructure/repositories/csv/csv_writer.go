package csv

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/vsinha/stocklink/pkg/domain/entities"
	"github.com/vsinha/stocklink/pkg/domain/repositories"
)

// LinkWriter writes the issue/receipt link table of a run to a CSV file
type LinkWriter struct {
	path string
}

// NewLinkWriter creates a link table sink at path
func NewLinkWriter(path string) *LinkWriter {
	return &LinkWriter{path: path}
}

var _ repositories.LinkRepository = (*LinkWriter)(nil)

// Path returns the output file path
func (w *LinkWriter) Path() string {
	return w.path
}

// SaveRun writes one row per allocation. A run without allocations still
// produces a file holding only the header.
func (w *LinkWriter) SaveRun(ctx context.Context, run *entities.Run) error {
	return writeFile(w.path, func(out io.Writer) error {
		return WriteLinks(out, run.Allocations)
	})
}

// WriteLinks writes the link table with its header to out
func WriteLinks(out io.Writer, allocations []entities.Allocation) error {
	writer := csv.NewWriter(out)
	if err := writer.Write(entities.LinkHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, alloc := range allocations {
		if err := writer.Write(alloc.Record()); err != nil {
			return fmt.Errorf("failed to write link %d: %w", i+1, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// BalanceHeader is the column order of the remaining balance report
var BalanceHeader = []string{"Receipt Document Code", "Product", "Received Date", "Quantity", "Consumed", "Remaining"}

// WriteBalances writes the per-receipt remaining balance report to path
func WriteBalances(path string, balances []entities.ReceiptBalance) error {
	return writeFile(path, func(out io.Writer) error {
		writer := csv.NewWriter(out)
		if err := writer.Write(BalanceHeader); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		for _, b := range balances {
			record := []string{
				b.Receipt.DocumentCode,
				string(b.Receipt.Product),
				b.Receipt.Date.String(),
				b.Receipt.Quantity.String(),
				b.Consumed().String(),
				b.Remaining.String(),
			}
			if err := writer.Write(record); err != nil {
				return fmt.Errorf("failed to write balance for %s: %w", b.Receipt.DocumentCode, err)
			}
		}
		writer.Flush()
		return writer.Error()
	})
}

func writeFile(path string, write func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := write(file); err != nil {
		file.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return file.Close()
}
