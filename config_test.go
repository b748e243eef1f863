package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileGivesDefaults(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	require.Equal(t, "ADJUDICATARIO", cfg.NameColumn)
	require.Equal(t, "CIF", cfg.IDColumn)
	require.Equal(t, 80, cfg.Correction.MatchThreshold)
	require.Equal(t, 2, cfg.Correction.MinFrequency)
	require.Equal(t, 500, cfg.Scrape.MinTextLength)
	require.Equal(t, "sitio oficial España", cfg.Scrape.QuerySuffix)
	require.Equal(t, []string{"/contacto", "/contact", "/about-us", "/sobre-nosotros"}, cfg.Scrape.ContactPaths)
	require.GreaterOrEqual(t, cfg.Scrape.MaxDelay, cfg.Scrape.MinDelay)
}

func TestLoadConfigYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "companyfix.yaml")
	yaml := `
name_column: EMPRESA
output_dir: out
correction:
  match_threshold: 90
  extra_variants: [Iberdrola, Repsol]
  review_band: {low: 50, high: 80}
scrape:
  task_timeout: 15s
  blocked_hosts: [example.org]
  strict: true
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "EMPRESA", cfg.NameColumn)
	require.Equal(t, "CIF", cfg.IDColumn)
	require.Equal(t, 90, cfg.Correction.MatchThreshold)
	require.Equal(t, 70, cfg.Correction.FallbackTrigger)
	require.Equal(t, []string{"Iberdrola", "Repsol"}, cfg.Correction.ExtraVariants)
	require.Equal(t, 50, cfg.Correction.ReviewBand.Low)
	require.Equal(t, 15*time.Second, cfg.Scrape.TaskTimeout)
	require.Equal(t, []string{"example.org"}, cfg.Scrape.BlockedHosts)
	require.True(t, cfg.Scrape.Strict)
	require.Equal(t, filepath.Join("out", "revision_manual.csv"), cfg.outputPath(cfg.Outputs.Review))
}

func TestLoadConfigBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("correction: [1, 2"), 0o644))

	_, err := loadConfig(path)
	require.Error(t, err)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SCRAPE_CONCURRENCY", "7")
	t.Setenv("SCRAPE_TIMEOUT_MS", "2500")
	t.Setenv("SCRAPE_HEADLESS", "false")
	t.Setenv("SCRAPE_USER_AGENT", "companyfix-test")

	cfg, err := loadConfig("")
	require.NoError(t, err)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, 7, cfg.Scrape.Concurrency)
	require.Equal(t, 2500*time.Millisecond, cfg.Scrape.TaskTimeout)
	require.True(t, cfg.Scrape.ShowBrowser)
	require.Equal(t, "companyfix-test", cfg.Scrape.UserAgent)
}

func TestLoadConfigIgnoresInvalidEnv(t *testing.T) {
	t.Setenv("SCRAPE_CONCURRENCY", "-3")
	t.Setenv("SCRAPE_HEADLESS", "maybe")

	cfg, err := loadConfig("")
	require.NoError(t, err)
	require.Equal(t, 4, cfg.Scrape.Concurrency)
	require.False(t, cfg.Scrape.ShowBrowser)
}

func TestJoinOutput(t *testing.T) {
	t.Parallel()

	require.Equal(t, filepath.Join("out", "a.csv"), joinOutput("out", "a.csv"))
	require.Equal(t, "a.csv", joinOutput("", "a.csv"))
	abs := filepath.Join(string(filepath.Separator), "tmp", "a.csv")
	require.Equal(t, abs, joinOutput("out", abs))
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	log, err := newLogger("warn", "json")
	require.NoError(t, err)
	require.False(t, log.Core().Enabled(-1))

	log, err = newLogger("bogus", "")
	require.NoError(t, err)
	require.NotNil(t, log)
}
