package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/stocklink/pkg/application/dto"
	"github.com/vsinha/stocklink/pkg/domain/entities"
)

func sampleResult(links int) *dto.ReconcileResult {
	result := &dto.ReconcileResult{RunID: "run-1"}
	for i := 0; i < links; i++ {
		result.Allocations = append(result.Allocations, entities.Allocation{
			IssueDocumentCode:   "I1",
			Product:             "P",
			ReceivedDate:        entities.D(2024, 1, 1),
			IssuedDate:          entities.D(2024, 1, 2),
			QuantityIssued:      entities.Q(int64(i + 1)),
			ReceiptDocumentCode: "R1",
		})
	}
	result.Shortages = []entities.Shortage{{
		IssueDocumentCode: "I9",
		Product:           "P",
		Requested:         entities.Q(10),
		Unmatched:         entities.MustQuantity("6.5"),
	}}
	result.Stats.Allocations = links
	result.Stats.Shortages = 1
	return result
}

func TestGenerate_TextPreviewAndCount(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Generate(&buf, sampleResult(8), Config{Format: "text", Preview: 5}))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 1+1+5+1, "warning, header, five rows, count")
	assert.Equal(t, "Warning: Issue I9, P was not fully fulfilled. 6.5 units remain unmatched.", lines[0])
	assert.Contains(t, lines[1], "Issue Document Code")
	assert.Contains(t, lines[1], "Receipt Document Code")
	assert.Contains(t, lines[2], "2024-01-01")
	assert.Equal(t, "8", lines[len(lines)-1])
}

func TestGenerate_TextEmpty(t *testing.T) {
	result := &dto.ReconcileResult{}
	var buf bytes.Buffer
	require.NoError(t, Generate(&buf, result, Config{Preview: 5}))
	assert.Equal(t, "No allocations\n0\n", buf.String())
}

func TestGenerate_TextVerbose(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Generate(&buf, sampleResult(1), Config{Preview: 0, Verbose: true, LinksPath: "links.csv"}))
	assert.Contains(t, buf.String(), "Run run-1")
	assert.Contains(t, buf.String(), "Links written to: links.csv")
	assert.Contains(t, buf.String(), "Shortages: 1")
}

func TestGenerate_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Generate(&buf, sampleResult(2), Config{Format: "json"}))

	var decoded dto.ReconcileResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "run-1", decoded.RunID)
	require.Len(t, decoded.Allocations, 2)
	assert.True(t, decoded.Allocations[1].QuantityIssued.Equal(entities.Q(2)))
	assert.True(t, decoded.Shortages[0].Unmatched.Equal(entities.MustQuantity("6.5")))
}

func TestGenerate_CSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Generate(&buf, sampleResult(1), Config{Format: "csv"}))
	assert.Equal(t,
		"Issue Document Code,Product,Received Date,Issued Date,Quantity Issued,Receipt Document Code\n"+
			"I1,P,2024-01-01,2024-01-02,1,R1\n",
		buf.String())
}

func TestGenerate_UnknownFormat(t *testing.T) {
	assert.Error(t, Generate(&bytes.Buffer{}, sampleResult(0), Config{Format: "xml"}))
}
