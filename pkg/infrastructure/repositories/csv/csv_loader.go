package csv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/vsinha/stocklink/pkg/domain/entities"
	"github.com/vsinha/stocklink/pkg/domain/repositories"
)

// Required movement columns, matched case-insensitively. Any other columns are ignored.
const (
	columnDocumentCode = "document code"
	columnProduct      = "product"
	columnDate         = "date"
	columnQuantity     = "quantity"
)

var requiredColumns = []string{columnDocumentCode, columnProduct, columnDate, columnQuantity}

// Loader handles loading stock movements from CSV files
type Loader struct{}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadMovements loads raw movement rows from a CSV file. Field values are
// kept as text; malformed quantities or dates are left for the normalizer.
func (l *Loader) LoadMovements(filename string) ([]entities.RawMovement, error) {
	file, err := os.Open(filename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", repositories.ErrSourceNotFound, filename)
		}
		return nil, fmt.Errorf("%w: failed to open %s: %v", repositories.ErrSourceUnreadable, filename, err)
	}
	defer file.Close()

	rows, err := l.ReadMovements(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return rows, nil
}

// ReadMovements parses movement rows from any CSV stream
func (l *Loader) ReadMovements(r io.Reader) ([]entities.RawMovement, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: no header row", repositories.ErrSourceUnreadable)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read header: %v", repositories.ErrSourceUnreadable, err)
	}

	index, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var movements []entities.RawMovement
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", repositories.ErrSourceUnreadable, err)
		}
		if isBlank(record) {
			continue
		}
		line, _ := reader.FieldPos(0)

		movements = append(movements, entities.RawMovement{
			DocumentCode: field(record, index[columnDocumentCode]),
			Product:      field(record, index[columnProduct]),
			Date:         field(record, index[columnDate]),
			Quantity:     field(record, index[columnQuantity]),
			Line:         line,
		})
	}

	return movements, nil
}

// Source reads issues and receipts from two CSV files
type Source struct {
	loader       *Loader
	IssuesPath   string
	ReceiptsPath string
}

// NewSource creates a movement source backed by two CSV files
func NewSource(issuesPath, receiptsPath string) *Source {
	return &Source{loader: NewLoader(), IssuesPath: issuesPath, ReceiptsPath: receiptsPath}
}

// Verify interface compliance
var _ repositories.MovementRepository = (*Source)(nil)

// LoadIssues loads the issues file
func (s *Source) LoadIssues(ctx context.Context) ([]entities.RawMovement, error) {
	rows, err := s.loader.LoadMovements(s.IssuesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load issues: %w", err)
	}
	return rows, nil
}

// LoadReceipts loads the receipts file
func (s *Source) LoadReceipts(ctx context.Context) ([]entities.RawMovement, error) {
	rows, err := s.loader.LoadMovements(s.ReceiptsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load receipts: %w", err)
	}
	return rows, nil
}

// Helper functions for parsing CSV records

func columnIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(requiredColumns))
	for i, col := range header {
		name := normalizeColumn(col)
		if _, seen := index[name]; !seen {
			index[name] = i
		}
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s (got %v)", repositories.ErrMissingColumn, strings.Join(missing, ", "), header)
	}
	return index, nil
}

func normalizeColumn(col string) string {
	col = strings.TrimPrefix(col, "\ufeff")
	return strings.ToLower(strings.TrimSpace(col))
}

func field(record []string, i int) string {
	if i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
