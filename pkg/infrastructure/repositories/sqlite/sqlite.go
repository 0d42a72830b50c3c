/*
Package sqlite provides a SQLite-backed run repository.

PURPOSE:
  Persists each reconciliation run (its link table and its shortages) so
  results can be queried after the CLI exits or served over HTTP.

KEY TABLES:
  runs:      One row per reconciliation run
  links:     Issue/receipt allocations, ordered by seq within a run
  shortages: Under-fulfilled issues, ordered by seq within a run

APPEND-ONLY:
  A run is written once inside a single transaction. Saving a run ID that
  already exists fails; runs are never updated.

VALUES:
  Quantities are stored as decimal text so no precision is lost. Dates are
  stored as RFC3339 text, NULL when the source date was unparseable. Run
  start times use a fixed-width UTC layout so they sort as text.

USAGE:
  store, err := sqlite.New("./data/stocklink.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/vsinha/stocklink/pkg/domain/entities"
	"github.com/vsinha/stocklink/pkg/domain/repositories"
)

// startedAtLayout keeps every fraction digit so started_at orders correctly
const startedAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrDuplicateRun is returned when a run ID has already been stored.
var ErrDuplicateRun = errors.New("run already stored")

// Store implements repositories.RunRepository using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ repositories.RunRepository = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Every connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at TEXT NOT NULL,
		issue_count INTEGER NOT NULL,
		receipt_count INTEGER NOT NULL,
		allocation_count INTEGER NOT NULL,
		shortage_count INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS links (
		run_id TEXT NOT NULL REFERENCES runs(id),
		seq INTEGER NOT NULL,
		issue_document_code TEXT NOT NULL,
		product TEXT NOT NULL,
		received_date TEXT,
		issued_date TEXT,
		quantity_issued TEXT NOT NULL,
		receipt_document_code TEXT NOT NULL,
		PRIMARY KEY (run_id, seq)
	);

	CREATE INDEX IF NOT EXISTS idx_links_issue
		ON links(run_id, issue_document_code);
	CREATE INDEX IF NOT EXISTS idx_links_receipt
		ON links(run_id, receipt_document_code);

	CREATE TABLE IF NOT EXISTS shortages (
		run_id TEXT NOT NULL REFERENCES runs(id),
		seq INTEGER NOT NULL,
		issue_document_code TEXT NOT NULL,
		product TEXT NOT NULL,
		issued_date TEXT,
		requested TEXT NOT NULL,
		unmatched TEXT NOT NULL,
		PRIMARY KEY (run_id, seq)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveRun writes the run, its links and its shortages atomically.
func (s *Store) SaveRun(ctx context.Context, run *entities.Run) error {
	if run.ID == "" {
		return fmt.Errorf("run ID cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, issue_count, receipt_count, allocation_count, shortage_count)
		VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.StartedAt.UTC().Format(startedAtLayout),
		run.IssueCount,
		run.ReceiptCount,
		len(run.Allocations),
		len(run.Shortages),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: %s", ErrDuplicateRun, run.ID)
		}
		return fmt.Errorf("failed to insert run: %w", err)
	}

	linkStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO links (run_id, seq, issue_document_code, product, received_date, issued_date,
		                   quantity_issued, receipt_document_code)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare link insert: %w", err)
	}
	defer linkStmt.Close()

	for i, a := range run.Allocations {
		_, err := linkStmt.ExecContext(ctx,
			run.ID, i,
			a.IssueDocumentCode,
			string(a.Product),
			nullDate(a.ReceivedDate),
			nullDate(a.IssuedDate),
			a.QuantityIssued.String(),
			a.ReceiptDocumentCode,
		)
		if err != nil {
			return fmt.Errorf("failed to insert link %d: %w", i, err)
		}
	}

	shortageStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO shortages (run_id, seq, issue_document_code, product, issued_date, requested, unmatched)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare shortage insert: %w", err)
	}
	defer shortageStmt.Close()

	for i, sh := range run.Shortages {
		_, err := shortageStmt.ExecContext(ctx,
			run.ID, i,
			sh.IssueDocumentCode,
			string(sh.Product),
			nullDate(sh.IssuedDate),
			sh.Requested.String(),
			sh.Unmatched.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert shortage %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// GetRun loads a stored run with its links and shortages in original order.
func (s *Store) GetRun(ctx context.Context, id string) (*entities.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		run       entities.Run
		startedAt string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, started_at, issue_count, receipt_count
		FROM runs WHERE id = ?`, id,
	).Scan(&run.ID, &startedAt, &run.IssueCount, &run.ReceiptCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", repositories.ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run: %w", err)
	}
	if run.StartedAt, err = time.Parse(startedAtLayout, startedAt); err != nil {
		return nil, fmt.Errorf("invalid started_at %q: %w", startedAt, err)
	}

	if run.Allocations, err = s.loadLinks(ctx, id); err != nil {
		return nil, err
	}
	if run.Shortages, err = s.loadShortages(ctx, id); err != nil {
		return nil, err
	}
	return &run, nil
}

// ListRuns returns stored runs without their links, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]entities.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, issue_count, receipt_count
		FROM runs ORDER BY started_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := []entities.Run{}
	for rows.Next() {
		var (
			run       entities.Run
			startedAt string
		)
		if err := rows.Scan(&run.ID, &startedAt, &run.IssueCount, &run.ReceiptCount); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if run.StartedAt, err = time.Parse(startedAtLayout, startedAt); err != nil {
			return nil, fmt.Errorf("invalid started_at %q: %w", startedAt, err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *Store) loadLinks(ctx context.Context, runID string) ([]entities.Allocation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT issue_document_code, product, received_date, issued_date, quantity_issued, receipt_document_code
		FROM links WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load links: %w", err)
	}
	defer rows.Close()

	links := []entities.Allocation{}
	for rows.Next() {
		var (
			a                    entities.Allocation
			product, quantity    string
			receivedAt, issuedAt sql.NullString
		)
		if err := rows.Scan(&a.IssueDocumentCode, &product, &receivedAt, &issuedAt, &quantity, &a.ReceiptDocumentCode); err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		a.Product = entities.ProductID(product)
		a.ReceivedDate = parseDate(receivedAt)
		a.IssuedDate = parseDate(issuedAt)
		if a.QuantityIssued, err = parseQuantity(quantity); err != nil {
			return nil, err
		}
		links = append(links, a)
	}
	return links, rows.Err()
}

func (s *Store) loadShortages(ctx context.Context, runID string) ([]entities.Shortage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT issue_document_code, product, issued_date, requested, unmatched
		FROM shortages WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load shortages: %w", err)
	}
	defer rows.Close()

	shortages := []entities.Shortage{}
	for rows.Next() {
		var (
			sh                            entities.Shortage
			product, requested, unmatched string
			issuedAt                      sql.NullString
		)
		if err := rows.Scan(&sh.IssueDocumentCode, &product, &issuedAt, &requested, &unmatched); err != nil {
			return nil, fmt.Errorf("failed to scan shortage: %w", err)
		}
		sh.Product = entities.ProductID(product)
		sh.IssuedDate = parseDate(issuedAt)
		if sh.Requested, err = parseQuantity(requested); err != nil {
			return nil, err
		}
		if sh.Unmatched, err = parseQuantity(unmatched); err != nil {
			return nil, err
		}
		shortages = append(shortages, sh)
	}
	return shortages, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

func nullDate(d entities.Date) sql.NullString {
	if !d.Valid() {
		return sql.NullString{}
	}
	return sql.NullString{String: d.Time().Format(time.RFC3339Nano), Valid: true}
}

func parseDate(s sql.NullString) entities.Date {
	if !s.Valid {
		return entities.NoDate
	}
	t, err := time.Parse(time.RFC3339Nano, s.String)
	if err != nil {
		return entities.NoDate
	}
	return entities.NewDate(t)
}

func parseQuantity(s string) (entities.Quantity, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return entities.NoQuantity, fmt.Errorf("invalid stored quantity %q: %w", s, err)
	}
	return entities.NewQuantity(d), nil
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
