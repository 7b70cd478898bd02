// Package testutil provides shared test helpers for creating config files and card fixtures.
package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/spacedrep/internal/learning"
)

// ConfigOption adds settings to a generated config file.
type ConfigOption func(*testConfig)

type testConfig struct {
	strategy           string
	statisticsTemplate string
}

// WithStrategy selects the scheduling strategy.
func WithStrategy(strategy string) ConfigOption {
	return func(cfg *testConfig) {
		cfg.strategy = strategy
	}
}

// WithStatisticsTemplate points the stats report at a custom template.
func WithStatisticsTemplate(path string) ConfigOption {
	return func(cfg *testConfig) {
		cfg.statisticsTemplate = path
	}
}

// SetupTestConfig creates a config file for driver and the directories it
// refers to. Returns the path to the generated config file.
func SetupTestConfig(t *testing.T, tmpDir, driver string, opts ...ConfigOption) string {
	t.Helper()

	cfg := testConfig{strategy: "fsrs"}
	for _, opt := range opts {
		opt(&cfg)
	}

	for _, d := range []string{"cards", "reports"} {
		require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, d), 0755))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `scheduler:
  strategy: %s
storage:
  driver: %s
  cards_directory: %s
  sqlite_path: %s
outputs:
  report_directory: %s
`,
		cfg.strategy,
		driver,
		filepath.Join(tmpDir, "cards"),
		filepath.Join(tmpDir, "spacedrep.db"),
		filepath.Join(tmpDir, "reports"),
	)
	if cfg.statisticsTemplate != "" {
		fmt.Fprintf(&sb, "  statistics_template: %s\n", cfg.statisticsTemplate)
	}

	cfgPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(sb.String()), 0644))
	return cfgPath
}

// CreateCards stores one New card per front in the YAML files of cardsDir.
// The back of each card is its front with a "-back" suffix.
func CreateCards(t *testing.T, cardsDir string, now time.Time, fronts ...string) []learning.Card {
	t.Helper()

	repo := learning.NewYAMLRepository(cardsDir)
	cards := make([]learning.Card, 0, len(fronts))
	for _, front := range fronts {
		card := learning.NewCard(front, front+"-back", now)
		require.NoError(t, repo.Create(context.Background(), &card))
		cards = append(cards, card)
	}
	return cards
}
