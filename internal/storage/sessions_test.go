package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/sift/internal/common"
	"github.com/Veraticus/sift/internal/model"
	"github.com/Veraticus/sift/internal/table"
)

func sampleSession(t *testing.T) NewSession {
	t.Helper()
	tbl, err := table.New("leads", []string{"Company", "Email", "Notes"}, [][]string{
		{"Acme Corp", "sales@acme.com", "call back"},
		{"Globex LLC", "info@globex.io", ""},
	})
	require.NoError(t, err)

	return NewSession{
		Table:      tbl,
		SourcePath: "/data/leads.csv",
		Format:     table.FormatCSV,
		Results: []model.ClassificationResult{
			{
				Column:       "Company",
				Category:     model.CategoryBusinessName,
				Confidence:   0.82,
				Source:       model.LocalHeuristic(),
				SampleValues: []string{"Acme Corp", "Globex LLC"},
				Scores:       map[model.Category]float64{model.CategoryBusinessName: 0.82},
			},
			{
				Column:     "Email",
				Category:   model.CategoryEmail,
				Confidence: 0.95,
				Source:     model.AIProvider("groq"),
				Reasoning:  "addresses",
			},
			{
				Column:     "Notes",
				Category:   model.CategoryUnknown,
				Confidence: 0.2,
				Source:     model.LocalHeuristic(),
			},
		},
	}
}

func TestCreateAndGetSession(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	in := sampleSession(t)
	created, err := store.CreateSession(ctx, in)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "leads", created.Name)
	assert.Equal(t, 2, created.RowCount)
	assert.Equal(t, 3, created.ColumnCount)

	got, err := store.GetSession(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "/data/leads.csv", got.SourcePath)
	assert.Equal(t, table.FormatCSV, got.Format)
	assert.Equal(t, []string{"Company", "Email", "Notes"}, got.Headers)
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))
	assert.Empty(t, got.Selected)
	assert.False(t, got.Normalize)

	require.Len(t, got.Results, 3)
	assert.Equal(t, in.Results[0].Category, got.Results[0].Category)
	assert.Equal(t, in.Results[0].Scores, got.Results[0].Scores)
	assert.Equal(t, model.AIProvider("groq"), got.Results[1].Source)
	assert.Equal(t, "addresses", got.Results[1].Reasoning)
	assert.InDelta(t, 0.2, got.Results[2].Confidence, 1e-9)
}

func TestCreateSessionValidation(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	_, err := store.CreateSession(ctx, NewSession{})
	assert.ErrorIs(t, err, ErrNilParameter)

	in := sampleSession(t)
	in.Results = in.Results[:1]
	_, err = store.CreateSession(ctx, in)
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	sessions, err := store.ListSessions(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestGetSessionNotFound(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	_, err := store.GetSession(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = store.LoadTable(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestLoadTable(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	in := sampleSession(t)
	created, err := store.CreateSession(ctx, in)
	require.NoError(t, err)

	tbl, err := store.LoadTable(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, in.Table.Name, tbl.Name)
	assert.Equal(t, in.Table.Headers, tbl.Headers)
	assert.Equal(t, in.Table.Rows, tbl.Rows)
}

func TestListSessions(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	var ids []string
	for range 3 {
		s, err := store.CreateSession(ctx, sampleSession(t))
		require.NoError(t, err)
		ids = append(ids, s.ID)
	}

	all, err := store.ListSessions(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	for _, s := range all {
		assert.Contains(t, ids, s.ID)
		assert.Nil(t, s.Results)
	}

	limited, err := store.ListSessions(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestSaveSelection(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	created, err := store.CreateSession(ctx, sampleSession(t))
	require.NoError(t, err)

	tests := []struct {
		wantErr  error
		name     string
		id       string
		selected []int
	}{
		{name: "empty selection", id: created.ID, wantErr: common.ErrNoColumnsSelected},
		{name: "out of range", id: created.ID, selected: []int{0, 3}, wantErr: common.ErrInvalidInput},
		{name: "negative", id: created.ID, selected: []int{-1}, wantErr: common.ErrInvalidInput},
		{name: "unknown session", id: "missing", selected: []int{0}, wantErr: common.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.SaveSelection(ctx, tt.id, tt.selected, false)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	require.NoError(t, store.SaveSelection(ctx, created.ID, []int{0, 1}, true))

	got, err := store.GetSession(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, got.Selected)
	assert.True(t, got.Normalize)
}

func TestDeleteSession(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	keep, err := store.CreateSession(ctx, sampleSession(t))
	require.NoError(t, err)
	drop, err := store.CreateSession(ctx, sampleSession(t))
	require.NoError(t, err)

	require.NoError(t, store.DeleteSession(ctx, drop.ID))
	assert.ErrorIs(t, store.DeleteSession(ctx, drop.ID), common.ErrNotFound)

	_, err = store.GetSession(ctx, drop.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)

	var orphans int
	require.NoError(t, store.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM session_rows WHERE session_id = ?`, drop.ID).Scan(&orphans))
	assert.Zero(t, orphans)

	_, err = store.LoadTable(ctx, keep.ID)
	assert.NoError(t, err)
}

func TestPurgeSessionsOlderThan(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	for range 2 {
		_, err := store.CreateSession(ctx, sampleSession(t))
		require.NoError(t, err)
	}

	n, err := store.PurgeSessionsOlderThan(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = store.PurgeSessionsOlderThan(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var rows int
	require.NoError(t, store.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM session_results`).Scan(&rows))
	assert.Zero(t, rows)
}
