package csv

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/stocklink/pkg/domain/entities"
)

func TestWriteLinks(t *testing.T) {
	var buf bytes.Buffer
	err := WriteLinks(&buf, []entities.Allocation{
		{
			IssueDocumentCode:   "ISS-1",
			Product:             "WIDGET",
			ReceivedDate:        entities.D(2024, time.January, 1),
			IssuedDate:          entities.D(2024, time.January, 5),
			QuantityIssued:      entities.Q(5),
			ReceiptDocumentCode: "REC-1",
		},
		{
			IssueDocumentCode:   "ISS-1",
			Product:             "WIDGET",
			ReceivedDate:        entities.NoDate,
			IssuedDate:          entities.D(2024, time.January, 5),
			QuantityIssued:      entities.MustQuantity("1.5"),
			ReceiptDocumentCode: "REC-2",
		},
	})
	require.NoError(t, err)

	expected := "Issue Document Code,Product,Received Date,Issued Date,Quantity Issued,Receipt Document Code\n" +
		"ISS-1,WIDGET,2024-01-01,2024-01-05,5,REC-1\n" +
		"ISS-1,WIDGET,,2024-01-05,1.5,REC-2\n"
	assert.Equal(t, expected, buf.String())
}

func TestLinkWriter_EmptyRunWritesHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "issue_receipt_links.csv")
	writer := NewLinkWriter(path)

	require.NoError(t, writer.SaveRun(context.Background(), &entities.Run{ID: "run-1"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Issue Document Code,Product,Received Date,Issued Date,Quantity Issued,Receipt Document Code\n", string(data))
}

func TestWriteBalances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "remaining.csv")
	err := WriteBalances(path, []entities.ReceiptBalance{
		{
			Receipt:   entities.Receipt{DocumentCode: "REC-1", Product: "A", Date: entities.D(2024, time.March, 2), Quantity: entities.Q(10)},
			Remaining: entities.Q(4),
		},
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"Receipt Document Code,Product,Received Date,Quantity,Consumed,Remaining\n"+
			"REC-1,A,2024-03-02,10,6,4\n",
		string(data))
}
