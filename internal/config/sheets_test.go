package config

import (
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/sift/internal/common"
)

func clearSheetsEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH",
		"GOOGLE_SHEETS_CLIENT_ID",
		"GOOGLE_SHEETS_CLIENT_SECRET",
		"GOOGLE_SHEETS_REFRESH_TOKEN",
		"GOOGLE_SHEETS_SPREADSHEET_ID",
	} {
		t.Setenv(name, "")
	}
}

func TestLoadSheetsConfig(t *testing.T) {
	t.Run("from viper", func(t *testing.T) {
		clearSheetsEnv(t)
		t.Setenv("HOME", "/home/tester")

		v := viper.New()
		v.SetConfigType("yaml")
		require.NoError(t, v.ReadConfig(strings.NewReader(`
sheets:
  service_account_path: ~/keys/sa.json
  spreadsheet_id: abc123
  sheet_title: Leads
  batch_size: 250
  enable_formatting: false
`)))

		cfg, err := LoadSheetsConfig(v)
		require.NoError(t, err)
		assert.Equal(t, "/home/tester/keys/sa.json", cfg.ServiceAccountPath)
		assert.Equal(t, "abc123", cfg.SpreadsheetID)
		assert.Equal(t, "Leads", cfg.SheetTitle)
		assert.Equal(t, 250, cfg.BatchSize)
		assert.False(t, cfg.EnableFormatting)
		assert.Equal(t, "sift export", cfg.SpreadsheetName)
	})

	t.Run("environment fallback", func(t *testing.T) {
		clearSheetsEnv(t)
		t.Setenv("GOOGLE_SHEETS_CLIENT_ID", "id")
		t.Setenv("GOOGLE_SHEETS_CLIENT_SECRET", "secret")
		t.Setenv("GOOGLE_SHEETS_REFRESH_TOKEN", "refresh")

		cfg, err := LoadSheetsConfig(viper.New())
		require.NoError(t, err)
		assert.Equal(t, "id", cfg.ClientID)
		assert.Equal(t, "refresh", cfg.RefreshToken)
		assert.True(t, cfg.EnableFormatting)
	})

	t.Run("no credentials", func(t *testing.T) {
		clearSheetsEnv(t)

		_, err := LoadSheetsConfig(viper.New())
		assert.ErrorIs(t, err, common.ErrMissingConfig)
	})
}
