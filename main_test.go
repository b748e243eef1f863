package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"companyfix/correction"
	"companyfix/tabular"
)

const adjudicatarios = `ADJUDICATARIO,CIF,IMPORTE
Banco Santander S.A.,A1,100
"BANCO SANTANDER, S.A.",A2,200
Banc0 Santander,A3,300
Zzyx Holdings,A4,400
Telefonica de España,A5,500
`

func testAppConfig(t *testing.T) appConfig {
	t.Helper()

	dir := t.TempDir()
	input := filepath.Join(dir, "adjudicaciones.csv")
	require.NoError(t, os.WriteFile(input, []byte(adjudicatarios), 0o644))

	cfg := defaultAppConfig()
	cfg.Input = input
	cfg.OutputDir = filepath.Join(dir, "output")
	cfg.Overrides = filepath.Join(dir, "correcciones_manuales.csv")
	return cfg
}

func TestCorrectFile(t *testing.T) {
	t.Parallel()

	cfg := testAppConfig(t)
	now := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

	sum, err := correctFile(cfg, zap.NewNop(), now)
	require.NoError(t, err)
	require.Equal(t, 5, sum.Rows)
	require.Equal(t, 1, sum.Dictionary)
	require.Equal(t, 1, sum.AutoCorrected)
	require.Zero(t, sum.ManualApplied)
	require.Equal(t, cfg.outputPath(cfg.Outputs.Review), sum.ReviewPath)

	out, err := tabular.Read(cfg.outputPath(cfg.Outputs.Corrected))
	require.NoError(t, err)
	require.Len(t, out.Rows, 5)
	require.Equal(t, "BANCO SANTANDER SA", out.Rows[2][correction.ColFinal])
	require.Equal(t, "300", out.Rows[2]["IMPORTE"])
	require.FileExists(t, cfg.outputPath(cfg.Outputs.Suspicious))
	require.FileExists(t, cfg.outputPath(cfg.Outputs.CorrectionLog))

	again, err := correctFile(cfg, zap.NewNop(), now)
	require.NoError(t, err)
	require.NotEqual(t, sum.ReviewPath, again.ReviewPath, "existing review export is kept")
	require.Contains(t, again.ReviewPath, "20250314_093000")
	require.FileExists(t, again.ReviewPath)
}

func TestCorrectFileAppliesOverrides(t *testing.T) {
	t.Parallel()

	cfg := testAppConfig(t)
	require.NoError(t, os.WriteFile(cfg.Overrides, []byte("original,corrected\nTelefonica de España,TELEFONICA SA\n"), 0o644))

	sum, err := correctFile(cfg, zap.NewNop(), time.Now())
	require.NoError(t, err)
	require.Equal(t, 1, sum.AutoCorrected)
	require.Equal(t, 1, sum.ManualApplied)

	out, err := tabular.Read(cfg.outputPath(cfg.Outputs.Corrected))
	require.NoError(t, err)
	require.Equal(t, "TELEFONICA SA", out.Rows[4][correction.ColFinal])
	require.Equal(t, string(correction.StatusManuallyCorrected), out.Rows[4][correction.ColStatus])
}

func TestCorrectFileSkipsBrokenOverrides(t *testing.T) {
	t.Parallel()

	cfg := testAppConfig(t)
	require.NoError(t, os.WriteFile(cfg.Overrides, []byte("foo,bar\nx,y\n"), 0o644))

	sum, err := correctFile(cfg, zap.NewNop(), time.Now())
	require.NoError(t, err)
	require.Zero(t, sum.ManualApplied)
	require.Equal(t, 1, sum.AutoCorrected)
}

func TestCorrectFileMissingColumn(t *testing.T) {
	t.Parallel()

	cfg := testAppConfig(t)
	cfg.NameColumn = "EMPRESA"
	_, err := correctFile(cfg, zap.NewNop(), time.Now())
	require.Error(t, err)
}

func TestApplyFile(t *testing.T) {
	t.Parallel()

	cfg := testAppConfig(t)
	_, err := correctFile(cfg, zap.NewNop(), time.Now())
	require.NoError(t, err)

	cfg.Input = cfg.outputPath(cfg.Outputs.Corrected)
	output := filepath.Join(t.TempDir(), "aplicado.csv")

	_, err = applyFile(cfg, zap.NewNop(), output)
	require.ErrorContains(t, err, "not found")

	require.NoError(t, os.WriteFile(cfg.Overrides, []byte("original,corrected\nTelefonica de España,TELEFONICA SA\n"), 0o644))
	applied, err := applyFile(cfg, zap.NewNop(), output)
	require.NoError(t, err)
	require.Equal(t, 1, applied)

	out, err := tabular.Read(output)
	require.NoError(t, err)
	require.Equal(t, "TELEFONICA SA", out.Rows[4][correction.ColFinal])
	require.Equal(t, "BANCO SANTANDER SA", out.Rows[2][correction.ColFinal])

	cfg.Input = output
	applied, err = applyFile(cfg, zap.NewNop(), output)
	require.NoError(t, err)
	require.Zero(t, applied, "applying twice changes nothing")
}

func TestApplyFileNeedsCorrectedTable(t *testing.T) {
	t.Parallel()

	cfg := testAppConfig(t)
	_, err := applyFile(cfg, zap.NewNop(), filepath.Join(t.TempDir(), "x.csv"))
	require.ErrorContains(t, err, "not a corrected table")
}

func TestAddOverride(t *testing.T) {
	t.Parallel()

	cfg := testAppConfig(t)
	now := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

	require.NoError(t, addOverride(cfg, zap.NewNop(), "Telefonica de España", "TELEFONICA SA", "", now))
	require.NoError(t, addOverride(cfg, zap.NewNop(), "TELEFONICA DE ESPAÑA", "TELEFONICA DE ESPANA SAU", "", now))
	require.Error(t, addOverride(cfg, zap.NewNop(), "  ", "X", "", now))

	o, ok, err := correction.LoadOverrides(cfg.Overrides)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, correction.Overrides{"TELEFONICA DE ESPANA": "TELEFONICA DE ESPANA SAU"}, o)

	audit, err := tabular.Read(cfg.outputPath(cfg.Outputs.AuditLog))
	require.NoError(t, err)
	require.Len(t, audit.Rows, 2)
	require.Equal(t, "TELEFONICA SA", audit.Rows[0][correction.ColCorrected])
	require.Equal(t, "replaces TELEFONICA SA", audit.Rows[1]["reason"])
	require.Equal(t, "2025-03-14T09:30:00Z", audit.Rows[1]["timestamp"])
}

func TestFindURLs(t *testing.T) {
	t.Parallel()

	var firstPages atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("s") == "" {
			firstPages.Add(1)
		}
		fmt.Fprint(w, ddgPage("https://www.ferrovial.com/es-es/"))
	}))
	defer srv.Close()

	s := newSearcher(testScrapeConfig(srv.URL), srv.Client(), zap.NewNop())
	rows := []companyRow{
		{Identifier: "A1", Company: "REPSOL SA", URL: "https://www.repsol.com"},
		{Identifier: "A2"},
		{Identifier: "A3", Company: "FERROVIAL SA"},
		{Identifier: "A4", Company: "FERROVIAL SA"},
	}
	urls, errs := findURLs(context.Background(), s, rows, zap.NewNop())

	require.Equal(t, []string{"https://www.repsol.com", "", "https://www.ferrovial.com/es-es/", "https://www.ferrovial.com/es-es/"}, urls)
	require.Equal(t, []string{"", "no company name", "", ""}, errs)
	require.Equal(t, int32(1), firstPages.Load(), "same company is searched once")
}

func TestCompaniesFromTable(t *testing.T) {
	t.Parallel()

	tbl := tabular.New("ADJUDICATARIO", "CIF", correction.ColFinal, colURL)
	tbl.Append(map[string]string{"ADJUDICATARIO": "Banc0 Santander", "CIF": "A3", correction.ColFinal: "BANCO SANTANDER SA", colURL: " https://www.santander.com "})
	tbl.Append(map[string]string{"ADJUDICATARIO": "Zzyx", "CIF": "A4"})

	rows, err := companiesFromTable(tbl, "ADJUDICATARIO", "CIF")
	require.NoError(t, err)
	require.Equal(t, []companyRow{
		{Identifier: "A3", Company: "BANCO SANTANDER SA", URL: "https://www.santander.com"},
		{Identifier: "A4", Company: "Zzyx"},
	}, rows)

	_, err = companiesFromTable(tbl, "ADJUDICATARIO", "NIF")
	require.Error(t, err)

	annotateURLs(tbl, []string{"https://www.santander.com", ""}, []string{"", "no search results"})
	require.Equal(t, "no search results", tbl.Rows[1][colURLError])
}

func TestRunCommandErrors(t *testing.T) {
	t.Parallel()

	config := filepath.Join(t.TempDir(), "missing.yaml")
	ctx := context.Background()

	require.ErrorContains(t, run(ctx, []string{"-config", config}), "missing command")
	require.ErrorContains(t, run(ctx, []string{"-config", config, "bogus"}), "unknown command")
	require.ErrorContains(t, run(ctx, []string{"-config", config, "correct"}), "missing -input")
	require.ErrorContains(t, run(ctx, []string{"-config", config, "override", "-from", "X"}), "needs -from and -to")
}
