package main

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/spacedrep/internal/testutil"
)

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		name      string
		debugMode bool
		wantLevel slog.Level
	}{
		{
			name:      "debug mode enabled",
			debugMode: true,
			wantLevel: slog.LevelDebug,
		},
		{
			name:      "debug mode disabled",
			debugMode: false,
			wantLevel: slog.LevelInfo,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupLogger(tt.debugMode)
			logger := slog.Default()
			assert.NotNil(t, logger)
			assert.Equal(t, tt.wantLevel <= slog.LevelDebug, logger.Enabled(context.Background(), slog.LevelDebug))
		})
	}
}

func TestNewRootCommand(t *testing.T) {
	cmd := newRootCommand()

	assert.Equal(t, "spacedrep", cmd.Use)
	assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("debug"))

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"card", "review", "due", "simulate", "stats", "migrate"}, names)
}

func TestNewMigrateCommand(t *testing.T) {
	cmd := newMigrateCommand()

	assert.Equal(t, "migrate", cmd.Use)
	assert.Equal(t, "Migration commands", cmd.Short)
	assert.True(t, cmd.HasSubCommands())
}

func TestNewMigrateImportDBCommand(t *testing.T) {
	cmd := newMigrateImportDBCommand()

	assert.Equal(t, "import-db", cmd.Use)
	assert.NotNil(t, cmd.RunE)

	dryRunFlag := cmd.Flags().Lookup("dry-run")
	assert.NotNil(t, dryRunFlag)
	assert.Equal(t, "false", dryRunFlag.DefValue)

	updateFlag := cmd.Flags().Lookup("update-existing")
	assert.NotNil(t, updateFlag)
	assert.Equal(t, "false", updateFlag.DefValue)
}

func TestCommands_configError(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "card add", args: []string{"card", "add", "--front", "hola"}},
		{name: "card list", args: []string{"card", "list"}},
		{name: "due", args: []string{"due"}},
		{name: "stats", args: []string{"stats"}},
		{name: "simulate", args: []string{"simulate", "good"}},
		{name: "migrate schema", args: []string{"migrate", "schema"}},
		{name: "migrate import-db", args: []string{"migrate", "import-db"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setConfigFile(t, setupBrokenConfigFile(t))

			_, err := executeCommand(t, "", tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "load config")
		})
	}
}

func TestRootCommand_configFile(t *testing.T) {
	t.Run("keeps the configured file when --config is not passed", func(t *testing.T) {
		dir := setupConfigFile(t, "yaml")
		want := configFile

		out, err := executeCommand(t, "", "card", "add", "--front", "hola", "--back", "hello")
		require.NoError(t, err)
		assert.Contains(t, out, "Added card 1: hola")
		assert.Equal(t, want, configFile)
		assert.FileExists(t, filepath.Join(dir, "cards", "cards.yml"))
		assert.NoDirExists(t, "cards")
	})

	t.Run("--config overrides the configured file", func(t *testing.T) {
		setConfigFile(t, setupBrokenConfigFile(t))
		dir := t.TempDir()
		cfgPath := testutil.SetupTestConfig(t, dir, "yaml")

		out, err := executeCommand(t, "", "--config", cfgPath, "card", "add", "--front", "hola", "--back", "hello")
		require.NoError(t, err)
		assert.Contains(t, out, "Added card 1: hola")
		assert.Equal(t, cfgPath, configFile)
		assert.FileExists(t, filepath.Join(dir, "cards", "cards.yml"))
	})
}
