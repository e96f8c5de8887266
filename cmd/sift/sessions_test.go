package main

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/sift/internal/common"
	"github.com/Veraticus/sift/internal/storage"
)

func TestSessionsCommand_ListAndShow(t *testing.T) {
	dbPath := setupCLI(t)
	id := seedLeadsSession(t, dbPath)

	out, err := execute(t, sessionsCmd(), "", "list")
	require.NoError(t, err)
	assert.Contains(t, out.stdout, id)
	assert.Contains(t, out.stdout, "leads")

	out, err = execute(t, sessionsCmd(), "", "show", id, "--json")
	require.NoError(t, err)
	var session storage.Session
	require.NoError(t, json.Unmarshal([]byte(out.stdout), &session))
	assert.Equal(t, id, session.ID)
	assert.Len(t, session.Results, 4)

	out, err = execute(t, sessionsCmd(), "", "show", id)
	require.NoError(t, err)
	assert.Contains(t, out.stdout, "Session "+id)
	assert.Contains(t, out.stdout, "Phone Number")
}

func TestSessionsCommand_ListEmpty(t *testing.T) {
	setupCLI(t)

	out, err := execute(t, sessionsCmd(), "", "list")
	require.NoError(t, err)
	assert.Contains(t, out.stdout, "No sessions stored")
}

func TestSessionsCommand_Delete(t *testing.T) {
	tests := []struct {
		name        string
		stdin       string
		args        []string
		wantDeleted bool
	}{
		{name: "declined", stdin: "n\n", wantDeleted: false},
		{name: "default answer", stdin: "\n", wantDeleted: false},
		{name: "confirmed", stdin: "y\n", wantDeleted: true},
		{name: "yes flag", args: []string{"--yes"}, wantDeleted: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dbPath := setupCLI(t)
			id := seedLeadsSession(t, dbPath)

			out, err := execute(t, sessionsCmd(), tt.stdin, append([]string{"delete", id}, tt.args...)...)
			require.NoError(t, err)

			_, getErr := openTestStore(t, dbPath).GetSession(context.Background(), id)
			if tt.wantDeleted {
				assert.ErrorIs(t, getErr, common.ErrNotFound)
				assert.Contains(t, out.stdout, "Deleted session")
			} else {
				assert.NoError(t, getErr)
				assert.Contains(t, out.stdout, "Canceled")
			}
		})
	}
}

func TestSessionsCommand_DeleteMissing(t *testing.T) {
	setupCLI(t)

	_, err := execute(t, sessionsCmd(), "", "delete", "nope", "--yes")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSessionsCommand_Purge(t *testing.T) {
	dbPath := setupCLI(t)
	id := seedLeadsSession(t, dbPath)

	out, err := execute(t, sessionsCmd(), "", "purge", "--older-than", "1h", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out.stdout, "Deleted 0 session(s)")

	_, err = openTestStore(t, dbPath).GetSession(context.Background(), id)
	assert.NoError(t, err)

	_, err = execute(t, sessionsCmd(), "", "purge", "--older-than", "0s", "--yes")
	assert.Error(t, err)
}
