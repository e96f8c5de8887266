package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/Veraticus/sift/internal/common"
	"github.com/Veraticus/sift/internal/model"
	"github.com/Veraticus/sift/internal/table"
)

// Session is an uploaded table with its classification and, once chosen,
// the columns to keep.
type Session struct {
	CreatedAt   time.Time                    `json:"created_at"`
	UpdatedAt   time.Time                    `json:"updated_at"`
	ID          string                       `json:"id"`
	Name        string                       `json:"name"`
	SourcePath  string                       `json:"source_path,omitempty"`
	Format      table.Format                 `json:"format,omitempty"`
	Headers     []string                     `json:"headers"`
	Results     []model.ClassificationResult `json:"results,omitempty"`
	Selected    []int                        `json:"selected,omitempty"`
	RowCount    int                          `json:"row_count"`
	ColumnCount int                          `json:"column_count"`
	Normalize   bool                         `json:"normalize"`
}

// NewSession describes a session to create.
type NewSession struct {
	Table      *table.Table
	SourcePath string
	Format     table.Format
	Results    []model.ClassificationResult
}

var sessionColumns = []string{
	"id", "name", "source_path", "format", "headers", "row_count",
	"column_count", "selected", "normalize", "created_at", "updated_at",
}

// CreateSession stores a table and its classification under a new id.
func (s *SQLiteStorage) CreateSession(ctx context.Context, in NewSession) (*Session, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if in.Table == nil {
		return nil, fmt.Errorf("%w: table", ErrNilParameter)
	}
	if len(in.Results) != in.Table.NumColumns() {
		return nil, fmt.Errorf("%w: %d results for %d columns", common.ErrInvalidInput, len(in.Results), in.Table.NumColumns())
	}

	headers, err := json.Marshal(in.Table.Headers)
	if err != nil {
		return nil, fmt.Errorf("failed to encode headers: %w", err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	session := &Session{
		ID:          uuid.NewString(),
		Name:        in.Table.Name,
		SourcePath:  in.SourcePath,
		Format:      in.Format,
		Headers:     append([]string(nil), in.Table.Headers...),
		Results:     append([]model.ClassificationResult(nil), in.Results...),
		RowCount:    in.Table.NumRows(),
		ColumnCount: in.Table.NumColumns(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = exec(ctx, tx, builder.Insert("sessions").
		Columns(sessionColumns...).
		Values(session.ID, session.Name, session.SourcePath, string(session.Format), string(headers),
			session.RowCount, session.ColumnCount, nil, false, now, now))
	if err != nil {
		return nil, fmt.Errorf("failed to insert session: %w", err)
	}

	if err := insertRows(ctx, tx, session.ID, in.Table.Rows); err != nil {
		return nil, err
	}
	if err := insertResults(ctx, tx, session.ID, in.Results); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit session: %w", err)
	}
	return session, nil
}

func insertRows(ctx context.Context, tx *sql.Tx, sessionID string, rows [][]string) error {
	query, _, err := builder.Insert("session_rows").
		Columns("session_id", "row_index", "cells").
		Values(nil, nil, nil).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare row insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, row := range rows {
		cells, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("failed to encode row %d: %w", i, err)
		}
		if _, err := stmt.ExecContext(ctx, sessionID, i, string(cells)); err != nil {
			return fmt.Errorf("failed to insert row %d: %w", i, err)
		}
	}
	return nil
}

func insertResults(ctx context.Context, tx *sql.Tx, sessionID string, results []model.ClassificationResult) error {
	insert := builder.Insert("session_results").
		Columns("session_id", "column_index", "column_name", "category", "confidence", "source", "result")

	for i, r := range results {
		encoded, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("failed to encode result %d: %w", i, err)
		}
		insert = insert.Values(sessionID, i, r.Column, string(r.Category), r.Confidence, r.Source.String(), string(encoded))
	}
	if len(results) == 0 {
		return nil
	}

	if _, err := exec(ctx, tx, insert); err != nil {
		return fmt.Errorf("failed to insert results: %w", err)
	}
	return nil
}

// GetSession returns a session with its classification results.
func (s *SQLiteStorage) GetSession(ctx context.Context, id string) (*Session, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	query, args, err := builder.Select(sessionColumns...).
		From("sessions").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	session, err := scanSession(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	results, err := s.getResults(ctx, id)
	if err != nil {
		return nil, err
	}
	session.Results = results
	return session, nil
}

func (s *SQLiteStorage) getResults(ctx context.Context, id string) ([]model.ClassificationResult, error) {
	query, args, err := builder.Select("result").
		From("session_results").
		Where(sq.Eq{"session_id": id}).
		OrderBy("column_index").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []model.ClassificationResult
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		var r model.ClassificationResult
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			return nil, fmt.Errorf("failed to decode result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// ListSessions returns the most recent sessions first, without results. A
// limit of zero or less returns every session.
func (s *SQLiteStorage) ListSessions(ctx context.Context, limit int) ([]Session, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	q := builder.Select(sessionColumns...).
		From("sessions").
		OrderBy("created_at DESC", "id")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sessions []Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, *session)
	}
	return sessions, rows.Err()
}

// LoadTable returns the stored table of a session.
func (s *SQLiteStorage) LoadTable(ctx context.Context, id string) (*table.Table, error) {
	session, err := s.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}

	query, args, err := builder.Select("cells").
		From("session_rows").
		Where(sq.Eq{"session_id": id}).
		OrderBy("row_index").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rows: %w", err)
	}
	defer func() { _ = rows.Close() }()

	data := make([][]string, 0, session.RowCount)
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		var cells []string
		if err := json.Unmarshal([]byte(raw), &cells); err != nil {
			return nil, fmt.Errorf("failed to decode row: %w", err)
		}
		data = append(data, cells)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	return table.New(session.Name, session.Headers, data)
}

// SaveSelection records which columns to keep and whether to normalize them.
func (s *SQLiteStorage) SaveSelection(ctx context.Context, id string, selected []int, normalize bool) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(selected) == 0 {
		return common.ErrNoColumnsSelected
	}

	session, err := s.GetSession(ctx, id)
	if err != nil {
		return err
	}
	for _, idx := range selected {
		if idx < 0 || idx >= session.ColumnCount {
			return fmt.Errorf("%w: column index %d out of range", common.ErrInvalidInput, idx)
		}
	}

	encoded, err := json.Marshal(selected)
	if err != nil {
		return fmt.Errorf("failed to encode selection: %w", err)
	}

	_, err = exec(ctx, s.db, builder.Update("sessions").
		Set("selected", string(encoded)).
		Set("normalize", normalize).
		Set("updated_at", time.Now().UTC().Truncate(time.Second)).
		Where(sq.Eq{"id": id}))
	if err != nil {
		return fmt.Errorf("failed to save selection: %w", err)
	}
	return nil
}

// DeleteSession removes a session and everything stored with it.
func (s *SQLiteStorage) DeleteSession(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	n, err := s.deleteWhere(ctx, sq.Eq{"id": id})
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("session %s: %w", id, common.ErrNotFound)
	}
	return nil
}

// PurgeSessionsOlderThan deletes sessions created before cutoff and returns
// how many were removed.
func (s *SQLiteStorage) PurgeSessionsOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	return s.deleteWhere(ctx, sq.Lt{"created_at": cutoff.UTC()})
}

func (s *SQLiteStorage) deleteWhere(ctx context.Context, pred sq.Sqlizer) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	ids := builder.Select("id").From("sessions").Where(pred)
	for _, child := range []string{"session_rows", "session_results"} {
		if _, err := exec(ctx, tx, builder.Delete(child).Where(sq.Expr("session_id IN (?)", ids))); err != nil {
			return 0, fmt.Errorf("failed to delete from %s: %w", child, err)
		}
	}

	res, err := exec(ctx, tx, builder.Delete("sessions").Where(pred))
	if err != nil {
		return 0, fmt.Errorf("failed to delete sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted sessions: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit delete: %w", err)
	}
	return int(n), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*Session, error) {
	var (
		session    Session
		sourcePath sql.NullString
		format     sql.NullString
		headers    string
		selected   sql.NullString
	)
	err := row.Scan(&session.ID, &session.Name, &sourcePath, &format, &headers, &session.RowCount,
		&session.ColumnCount, &selected, &session.Normalize, &session.CreatedAt, &session.UpdatedAt)
	if err != nil {
		return nil, err
	}

	session.SourcePath = sourcePath.String
	session.Format = table.Format(format.String)
	if err := json.Unmarshal([]byte(headers), &session.Headers); err != nil {
		return nil, fmt.Errorf("failed to decode headers: %w", err)
	}
	if selected.Valid && selected.String != "" {
		if err := json.Unmarshal([]byte(selected.String), &session.Selected); err != nil {
			return nil, fmt.Errorf("failed to decode selection: %w", err)
		}
	}
	return &session, nil
}
