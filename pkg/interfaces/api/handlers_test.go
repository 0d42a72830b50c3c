package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/stocklink/pkg/application/services"
	"github.com/vsinha/stocklink/pkg/domain/entities"
	"github.com/vsinha/stocklink/pkg/infrastructure/repositories/sqlite"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	srv := httptest.NewServer(NewRouter(NewHandler(services.DefaultConfig(), store, nil)))
	t.Cleanup(srv.Close)
	return srv
}

const reconcileBody = `{
	"issues": [
		{"document_code": "GI-1", "product": "P", "date": "2024-01-05", "quantity": 7},
		{"document_code": "GI-2", "product": "P", "date": "2024-01-06", "quantity": "4"},
		{"document_code": "GI-3", "product": "P", "date": "2024-01-07", "quantity": -2}
	],
	"receipts": [
		{"document_code": "GR-2", "product": "P", "date": "01/03/2024", "quantity": "5"},
		{"document_code": "GR-1", "product": "P", "date": "2024-01-01", "quantity": 5.0}
	]
}`

func postReconcile(t *testing.T, srv *httptest.Server, body string) (*http.Response, ReconcileResponse) {
	t.Helper()
	resp, err := http.Post(srv.URL+"/api/reconcile", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded ReconcileResponse
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	}
	return resp, decoded
}

func TestReconcile_AllocatesPostedRows(t *testing.T) {
	srv := newTestServer(t)

	resp, body := postReconcile(t, srv, reconcileBody)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, body.ReconcileResult)

	var records [][]string
	for _, a := range body.Allocations {
		records = append(records, a.Record())
	}
	assert.Equal(t, [][]string{
		{"GI-1", "P", "2024-01-01", "2024-01-05", "5", "GR-1"},
		{"GI-1", "P", "2024-01-03", "2024-01-05", "2", "GR-2"},
		{"GI-2", "P", "2024-01-03", "2024-01-06", "3", "GR-2"},
	}, records)
	assert.Equal(t, []string{
		"Warning: Issue GI-2, P was not fully fulfilled. 1 units remain unmatched.",
	}, body.Warnings)
	assert.Equal(t, 1, body.Stats.SkippedIssues)
}

func TestReconcile_RunIsStored(t *testing.T) {
	srv := newTestServer(t)

	_, body := postReconcile(t, srv, reconcileBody)
	require.NotEmpty(t, body.RunID)

	resp, err := http.Get(srv.URL + "/api/runs/" + body.RunID)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var run entities.Run
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&run))
	assert.Equal(t, body.RunID, run.ID)
	assert.Len(t, run.Allocations, 3)
	assert.Len(t, run.Shortages, 1)
	assert.Equal(t, 3, run.IssueCount)
}

func TestListRuns_NewestFirst(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/runs")
	require.NoError(t, err)
	var empty []RunSummary
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&empty))
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	_, first := postReconcile(t, srv, reconcileBody)
	_, second := postReconcile(t, srv, reconcileBody)

	resp, err = http.Get(srv.URL + "/api/runs")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var runs []RunSummary
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&runs))
	require.Len(t, runs, 2)
	assert.Equal(t, second.RunID, runs[0].ID)
	assert.Equal(t, first.RunID, runs[1].ID)
	assert.Equal(t, 3, runs[0].IssueCount)
}

func TestGetRun_NotFound(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/runs/nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var errResp ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
	assert.Equal(t, "run not found", errResp.Error)
}

func TestReconcile_BadBody(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"not json", "issues=1"},
		{"object quantity", `{"issues": [{"quantity": {"n": 1}}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := postReconcile(t, srv, tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestReconcile_DayFirstOverride(t *testing.T) {
	srv := newTestServer(t)

	resp, body := postReconcile(t, srv, `{
		"issues": [{"document_code": "I", "product": "P", "date": "05/04/2024", "quantity": 1}],
		"receipts": [{"document_code": "R", "product": "P", "date": "03/04/2024", "quantity": 1}],
		"day_first": true
	}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, body.Allocations, 1)
	assert.Equal(t, "2024-04-03", body.Allocations[0].ReceivedDate.String())
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestFlexibleValue(t *testing.T) {
	tests := []struct {
		in   string
		want FlexibleValue
	}{
		{`7`, "7"},
		{`2.50`, "2.50"},
		{`"12"`, "12"},
		{`null`, ""},
		{`true`, "true"},
	}
	for _, tt := range tests {
		var v FlexibleValue
		require.NoError(t, json.Unmarshal([]byte(tt.in), &v), tt.in)
		assert.Equal(t, tt.want, v, tt.in)
	}
}
