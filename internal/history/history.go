// Package history persists completed trip assessments to SQLite so past
// results can be listed and re-rendered without re-running the pipeline.
package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Record is one stored assessment envelope. Payload holds the full JSON
// response body exactly as it was returned to the caller.
type Record struct {
	ID        string          `json:"assessment_id"`
	CreatedAt time.Time       `json:"created_at"`
	InputText string          `json:"input_text"`
	RiskScore int             `json:"risk_score"`
	RiskLevel string          `json:"risk_level"`
	Locations []string        `json:"locations"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// Store is a write-through SQLite store of assessment records.
type Store struct {
	db      *sqlx.DB
	mu      sync.Mutex
	nextSeq int64
}

const schema = `
CREATE TABLE IF NOT EXISTS assessments (
	assessment_id TEXT PRIMARY KEY,
	seq           INTEGER NOT NULL,
	created_at    TEXT NOT NULL,
	input_text    TEXT NOT NULL DEFAULT '',
	risk_score    INTEGER NOT NULL DEFAULT 0,
	risk_level    TEXT NOT NULL DEFAULT '',
	locations     TEXT NOT NULL DEFAULT '[]',
	payload       TEXT NOT NULL DEFAULT '{}'
);
`

func NewStore(dbPath string) (*Store, error) {
	db, err := sqlx.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	s := &Store{db: db}
	if err := db.Get(&s.nextSeq, "SELECT COALESCE(MAX(seq), 0) FROM assessments"); err != nil {
		db.Close()
		return nil, fmt.Errorf("load seq: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save assigns the record an ID and timestamp and persists it.
func (s *Store) Save(rec Record) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextSeq++
	rec.ID = fmt.Sprintf("a-%06d", s.nextSeq)
	rec.CreatedAt = time.Now().UTC()

	locations, err := json.Marshal(rec.Locations)
	if err != nil {
		locations = []byte("[]")
	}
	payload := rec.Payload
	if len(payload) == 0 {
		payload = json.RawMessage("{}")
	}

	_, err = s.db.Exec(`INSERT INTO assessments
		(assessment_id, seq, created_at, input_text, risk_score, risk_level, locations, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, s.nextSeq, rec.CreatedAt.Format(time.RFC3339Nano),
		rec.InputText, rec.RiskScore, rec.RiskLevel, string(locations), string(payload))
	if err != nil {
		s.nextSeq--
		return Record{}, fmt.Errorf("insert assessment: %w", err)
	}
	return rec, nil
}

// Get returns the record for id, reporting whether it exists.
func (s *Store) Get(id string) (Record, bool, error) {
	row := s.db.QueryRow(`SELECT assessment_id, created_at, input_text, risk_score, risk_level, locations, payload
		FROM assessments WHERE assessment_id = ?`, id)
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, err
	}
	return rec, true, nil
}

// List returns up to limit records, most recent first. A limit of 0 or
// less means no limit.
func (s *Store) List(limit int) ([]Record, error) {
	q := "SELECT assessment_id, created_at, input_text, risk_score, risk_level, locations, payload FROM assessments ORDER BY seq DESC"
	args := []any{}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var rec Record
	var createdAt, locations, payload string
	if err := row.Scan(&rec.ID, &createdAt, &rec.InputText, &rec.RiskScore, &rec.RiskLevel, &locations, &payload); err != nil {
		return Record{}, err
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	_ = json.Unmarshal([]byte(locations), &rec.Locations)
	if payload != "" && payload != "{}" {
		rec.Payload = json.RawMessage(payload)
	}
	return rec, nil
}
