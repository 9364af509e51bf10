// Package store manages all DuckDB persistence operations.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"callsearch/internal/artifact"
	"callsearch/internal/model"

	_ "github.com/duckdb/duckdb-go/v2"
)

// Store wraps a DuckDB connection and exposes domain-specific persistence.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open creates a new Store connected to the given DuckDB file.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("duckdb", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open duckdb %s: %w", dbPath, err)
	}
	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// InitSchema creates the tables and indexes if they don't exist.
func (s *Store) InitSchema() error {
	_, err := s.db.Exec(coreSchema)
	if err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// --- Call operations ---

// SaveBundle upserts the call row and replaces its artifacts atomically.
func (s *Store) SaveBundle(b *artifact.Bundle) error {
	date, err := time.Parse(model.CallDateLayout, b.Ref.Date)
	if err != nil {
		return fmt.Errorf("call %s: %w", b.Ref.Key(), err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	key := b.Ref.Key()
	if _, err := tx.Exec(`
		INSERT INTO calls (call_key, call_type, call_date, call_number, has_config, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (call_key) DO UPDATE
		SET has_config = excluded.has_config, fetched_at = excluded.fetched_at
	`, key, b.Ref.Type, date, b.Ref.Number, b.HasConfig, s.now()); err != nil {
		return fmt.Errorf("upsert call %s: %w", key, err)
	}

	if _, err := tx.Exec(`DELETE FROM artifacts WHERE call_key = ?`, key); err != nil {
		return fmt.Errorf("clear artifacts %s: %w", key, err)
	}

	stmt, err := tx.Prepare(`INSERT INTO artifacts (call_key, name, content) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, name := range artifact.Files {
		data, ok := b.Raw[name]
		if !ok {
			continue
		}
		if _, err := stmt.Exec(key, name, string(data)); err != nil {
			return fmt.Errorf("insert artifact %s/%s: %w", key, name, err)
		}
	}

	return tx.Commit()
}

// LoadBundle rebuilds a cached call. It returns artifact.ErrNotFound if the
// call was never saved.
func (s *Store) LoadBundle(ref artifact.CallRef, log *zap.Logger) (*artifact.Bundle, error) {
	var exists bool
	err := s.db.QueryRow(`SELECT true FROM calls WHERE call_key = ?`, ref.Key()).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("call %s: %w", ref.Key(), artifact.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`SELECT name, content FROM artifacts WHERE call_key = ?`, ref.Key())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	raw := make(map[string][]byte)
	for rows.Next() {
		var name, content string
		if err := rows.Scan(&name, &content); err != nil {
			return nil, err
		}
		raw[name] = []byte(content)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return artifact.Decode(ref, raw, log), nil
}

// Artifact returns one cached artifact.
func (s *Store) Artifact(ref artifact.CallRef, name string) ([]byte, error) {
	var content string
	err := s.db.QueryRow(
		`SELECT content FROM artifacts WHERE call_key = ? AND name = ?`, ref.Key(), name,
	).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s/%s: %w", ref.Key(), name, artifact.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return []byte(content), nil
}

// ListCalls returns cached calls, newest call date first.
func (s *Store) ListCalls(limit int, tf *model.TimeFilter) ([]model.CallSummary, error) {
	params := []interface{}{}
	timeClause, params := appendTimeClauses(tf, "c.call_date", false, params)

	query := fmt.Sprintf(`
		SELECT c.call_key, c.call_type, c.call_date, c.call_number, count(a.name)
		FROM calls c
		LEFT JOIN artifacts a ON a.call_key = c.call_key
		%s
		GROUP BY c.call_key, c.call_type, c.call_date, c.call_number
		ORDER BY c.call_date DESC, c.call_key
		LIMIT ?
	`, timeClause)

	params = append(params, limit)
	rows, err := s.db.Query(query, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.CallSummary
	for rows.Next() {
		var (
			c    model.CallSummary
			date time.Time
		)
		if err := rows.Scan(&c.Key, &c.Type, &date, &c.Number, &c.Artifacts); err != nil {
			return nil, err
		}
		c.Date = date.Format(model.CallDateLayout)
		out = append(out, c)
	}
	return out, rows.Err()
}

// --- EIP operations ---

// SaveEIPs replaces the cached EIP catalogue.
func (s *Store) SaveEIPs(eips []model.EIP) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM eips`); err != nil {
		return fmt.Errorf("clear eips: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO eips (id, doc) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, e := range eips {
		doc, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("encode eip %d: %w", e.ID, err)
		}
		if _, err := stmt.Exec(e.ID, string(doc)); err != nil {
			return fmt.Errorf("insert eip %d: %w", e.ID, err)
		}
	}

	return tx.Commit()
}

// LoadEIPs returns the cached EIP catalogue ordered by number.
func (s *Store) LoadEIPs() ([]model.EIP, error) {
	rows, err := s.db.Query(`SELECT CAST(doc AS VARCHAR) FROM eips ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.EIP
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		e, _, err := model.DecodeEIP([]byte(doc))
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// --- Query history ---

// LogQuery records a search in the history.
func (s *Store) LogQuery(e model.QueryLogEntry) error {
	if e.LoggedAt.IsZero() {
		e.LoggedAt = s.now()
	}
	_, err := s.db.Exec(`
		INSERT INTO query_log (id, session_id, call_key, query, filter, result_count, logged_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, uuid.NewString(), e.SessionID, nullStr(e.CallKey), e.Query, nullStr(e.Filter), e.ResultCount, e.LoggedAt)
	return err
}

// RecentQueries returns the latest logged searches, newest first.
func (s *Store) RecentQueries(limit int) ([]model.QueryLogEntry, error) {
	rows, err := s.db.Query(`
		SELECT session_id, call_key, query, filter, result_count, logged_at
		FROM query_log
		ORDER BY logged_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.QueryLogEntry
	for rows.Next() {
		var (
			e           model.QueryLogEntry
			key, filter sql.NullString
		)
		if err := rows.Scan(&e.SessionID, &key, &e.Query, &filter, &e.ResultCount, &e.LoggedAt); err != nil {
			return nil, err
		}
		e.CallKey = key.String
		e.Filter = filter.String
		out = append(out, e)
	}
	return out, rows.Err()
}

// --- artifact.Source ---

// Source serves cached artifacts to the artifact loader.
type Source struct {
	Store *Store
}

// Get implements artifact.Source.
func (src Source) Get(ctx context.Context, ref artifact.CallRef, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return src.Store.Artifact(ref, name)
}

// Refs lists every cached call in key order.
func (src Source) Refs() ([]artifact.CallRef, error) {
	calls, err := src.Store.ListCalls(1<<31-1, nil)
	if err != nil {
		return nil, err
	}
	refs := make([]artifact.CallRef, 0, len(calls))
	for _, c := range calls {
		refs = append(refs, artifact.CallRef{Type: c.Type, Date: c.Date, Number: c.Number})
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Key() < refs[j].Key() })
	return refs, nil
}

// --- helpers ---

// appendTimeClauses builds SQL fragments for time filtering.
// If hasWhere is true, clauses use "AND"; otherwise the first clause uses "WHERE".
func appendTimeClauses(tf *model.TimeFilter, tsCol string, hasWhere bool, params []interface{}) (string, []interface{}) {
	if tf == nil {
		return "", params
	}

	var clauses []string
	if tf.Since != nil {
		clauses = append(clauses, fmt.Sprintf("%s >= ?", tsCol))
		params = append(params, *tf.Since)
	}
	if tf.Until != nil {
		clauses = append(clauses, fmt.Sprintf("%s <= ?", tsCol))
		params = append(params, *tf.Until)
	}

	if len(clauses) == 0 {
		return "", params
	}

	var sb strings.Builder
	for i, c := range clauses {
		if i == 0 && !hasWhere {
			sb.WriteString(" WHERE ")
		} else {
			sb.WriteString(" AND ")
		}
		sb.WriteString(c)
	}
	return sb.String(), params
}

func nullStr(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
