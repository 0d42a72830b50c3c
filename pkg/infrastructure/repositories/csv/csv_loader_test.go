package csv

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/stocklink/pkg/domain/entities"
	"github.com/vsinha/stocklink/pkg/domain/repositories"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoader_LoadMovements(t *testing.T) {
	path := writeTemp(t, "stock_issues.csv",
		"Document Code,Product,Date,Quantity,Warehouse\n"+
			"ISS-1,WIDGET,01/05/2024,3,MAIN\n"+
			"ISS-2, BOLT ,2024-01-06,abc,MAIN\n"+
			",,,,\n"+
			"ISS-3,WIDGET,,-2\n")

	rows, err := NewLoader().LoadMovements(path)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, entities.RawMovement{DocumentCode: "ISS-1", Product: "WIDGET", Date: "01/05/2024", Quantity: "3", Line: 2}, rows[0])
	assert.Equal(t, "BOLT", rows[1].Product)
	assert.Equal(t, "abc", rows[1].Quantity)
	assert.Equal(t, "", rows[2].Date)
	assert.Equal(t, "-2", rows[2].Quantity)
	assert.Equal(t, 5, rows[2].Line)
}

func TestLoader_ColumnOrderAndCase(t *testing.T) {
	rows, err := NewLoader().ReadMovements(strings.NewReader(
		"\ufeffquantity,DATE,product,document code\n" +
			"4,2024-02-01,A,REC-1\n"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "REC-1", rows[0].DocumentCode)
	assert.Equal(t, "A", rows[0].Product)
	assert.Equal(t, "2024-02-01", rows[0].Date)
	assert.Equal(t, "4", rows[0].Quantity)
}

func TestLoader_HeaderOnlyIsEmpty(t *testing.T) {
	rows, err := NewLoader().ReadMovements(strings.NewReader("Document Code,Product,Date,Quantity\n"))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestLoader_Failures(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T) string
		wantErr error
	}{
		{
			name:    "missing file",
			setup:   func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.csv") },
			wantErr: repositories.ErrSourceNotFound,
		},
		{
			name:    "empty file",
			setup:   func(t *testing.T) string { return writeTemp(t, "empty.csv", "") },
			wantErr: repositories.ErrSourceUnreadable,
		},
		{
			name:    "missing column",
			setup:   func(t *testing.T) string { return writeTemp(t, "bad.csv", "Document Code,Product,Quantity\nA,B,1\n") },
			wantErr: repositories.ErrMissingColumn,
		},
		{
			name:    "malformed quoting",
			setup:   func(t *testing.T) string { return writeTemp(t, "quote.csv", "Document Code,Product,Date,Quantity\n\"A,B,2024-01-01,1\n") },
			wantErr: repositories.ErrSourceUnreadable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLoader().LoadMovements(tt.setup(t))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSource_WrapsWhichFileFailed(t *testing.T) {
	issues := writeTemp(t, "stock_issues.csv", "Document Code,Product,Date,Quantity\nISS-1,A,2024-01-01,1\n")
	source := NewSource(issues, filepath.Join(t.TempDir(), "stock_receipts.csv"))

	rows, err := source.LoadIssues(context.Background())
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	_, err = source.LoadReceipts(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, repositories.ErrSourceNotFound)
	assert.Contains(t, err.Error(), "failed to load receipts")
}
