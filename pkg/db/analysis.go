package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/yumyai/otuview/pkg/model"

	_ "modernc.org/sqlite"
)

// Defining possible error
var (
	ErrAnalysisNotFound = errors.New("analysis does not exist")
	ErrAnalysisExists   = errors.New("analysis already exists")
)

const schema = `
	CREATE TABLE IF NOT EXISTS analyses (
		id          TEXT PRIMARY KEY,
		sample_name TEXT NOT NULL,
		workflow    TEXT NOT NULL,
		read_count  INTEGER NOT NULL,
		document    TEXT NOT NULL,
		created_at  TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS analyses_created_at ON analyses (created_at);
`

// Fixed width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// AnalysisDB keeps raw analysis documents. Aggregation happens on read.
type AnalysisDB struct {
	sqlDB *sql.DB
}

func NewAnalysisDB(db *sql.DB) (*AnalysisDB, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("create analyses schema: %w", err)
	}
	return &AnalysisDB{sqlDB: db}, nil
}

// Open connects to a SQLite file and prepares the schema.
func Open(path string) (*AnalysisDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// Single writer, sqlite does not like concurrent writes.
	db.SetMaxOpenConns(1)

	adb, err := NewAnalysisDB(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return adb, nil
}

func (adb *AnalysisDB) Close() error {
	return adb.sqlDB.Close()
}

// Insert stores the document, assigning an id and creation time when unset.
func (adb *AnalysisDB) Insert(ctx context.Context, doc *model.AnalysisDocument) (string, error) {
	stored := *doc
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}
	if stored.Workflow == "" {
		stored.Workflow = model.DefaultWorkflow
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}

	payload, err := json.Marshal(stored)
	if err != nil {
		return "", fmt.Errorf("encode analysis %s: %w", stored.ID, err)
	}

	res, err := adb.sqlDB.ExecContext(ctx,
		`INSERT INTO analyses (id, sample_name, workflow, read_count, document, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO NOTHING`,
		stored.ID, stored.SampleName, stored.Workflow, stored.ReadCount,
		string(payload), stored.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return "", fmt.Errorf("insert analysis %s: %w", stored.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("insert analysis %s: %w", stored.ID, err)
	}
	if n == 0 {
		return "", fmt.Errorf("%w: %s", ErrAnalysisExists, stored.ID)
	}

	return stored.ID, nil
}

func (adb *AnalysisDB) Get(ctx context.Context, id string) (*model.AnalysisDocument, error) {
	var payload string
	err := adb.sqlDB.QueryRowContext(ctx, `SELECT document FROM analyses WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrAnalysisNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("query analysis %s: %w", id, err)
	}

	var doc model.AnalysisDocument
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		return nil, fmt.Errorf("decode analysis %s: %w", id, err)
	}
	return &doc, nil
}

// List returns summaries, newest first.
func (adb *AnalysisDB) List(ctx context.Context, limit, offset int) ([]model.AnalysisSummary, error) {
	rows, err := adb.sqlDB.QueryContext(ctx,
		`SELECT id, sample_name, workflow, read_count, created_at
		 FROM analyses
		 ORDER BY created_at DESC, id
		 LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	defer rows.Close()

	summaries := make([]model.AnalysisSummary, 0)
	for rows.Next() {
		var (
			s       model.AnalysisSummary
			created string
		)
		if err := rows.Scan(&s.ID, &s.SampleName, &s.Workflow, &s.ReadCount, &created); err != nil {
			return nil, fmt.Errorf("scan analysis row: %w", err)
		}
		s.CreatedAt, err = time.Parse(timeLayout, created)
		if err != nil {
			return nil, fmt.Errorf("parse created_at of %s: %w", s.ID, err)
		}
		summaries = append(summaries, s)
	}

	return summaries, rows.Err()
}

func (adb *AnalysisDB) Delete(ctx context.Context, id string) error {
	res, err := adb.sqlDB.ExecContext(ctx, `DELETE FROM analyses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete analysis %s: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete analysis %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrAnalysisNotFound, id)
	}
	return nil
}
