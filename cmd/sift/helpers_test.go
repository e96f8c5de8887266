package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/sift/internal/llm"
	"github.com/Veraticus/sift/internal/storage"
	"github.com/Veraticus/sift/internal/testutil"
)

// setupCLI points the global config at a fresh database and hides any
// provider keys from the environment. It returns the database path.
func setupCLI(t *testing.T) string {
	t.Helper()

	viper.Reset()
	t.Cleanup(viper.Reset)

	for _, info := range llm.KnownProviders() {
		t.Setenv(info.EnvVar, "")
	}
	for _, env := range []string{
		"GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH",
		"GOOGLE_SHEETS_CLIENT_ID",
		"GOOGLE_SHEETS_CLIENT_SECRET",
		"GOOGLE_SHEETS_REFRESH_TOKEN",
		"GOOGLE_SHEETS_SPREADSHEET_ID",
	} {
		t.Setenv(env, "")
	}

	dbPath := filepath.Join(t.TempDir(), "sift.db")
	viper.Set("database.path", dbPath)
	viper.Set("engine.disable_cache", true)
	return dbPath
}

type cmdOutput struct {
	stdout string
	stderr string
}

func execute(t *testing.T, cmd *cobra.Command, stdin string, args ...string) (cmdOutput, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	err := cmd.ExecuteContext(context.Background())
	return cmdOutput{stdout: stdout.String(), stderr: stderr.String()}, err
}

// seedLeadsSession stores the leads fixture in the database at dbPath.
func seedLeadsSession(t *testing.T, dbPath string) string {
	t.Helper()
	store := openTestStore(t, dbPath)
	session, err := store.CreateSession(context.Background(), testutil.LeadsSession(t))
	require.NoError(t, err)
	return session.ID
}

func openTestStore(t *testing.T, dbPath string) *storage.SQLiteStorage {
	t.Helper()
	store, err := storage.NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func writeLeadsCSV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "leads.csv")
	data := "Company,Phone,Email\n" +
		"Acme Corp,(555) 123-4567,Sales@Acme.com\n" +
		"Globex LLC,555.987.6543,info@globex.io\n" +
		"Initech Inc,+1 555 222 3333,hello@initech.com\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path) // #nosec G304
	require.NoError(t, err)
	return string(data)
}
