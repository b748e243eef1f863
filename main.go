package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"companyfix/correction"
	"companyfix/tabular"
)

const usageText = `Usage: companyfix [-config FILE] <command> [options]

Commands:
  correct   Namen normalisieren und korrigieren, Exporte schreiben
  apply     manuelle Korrekturen auf eine korrigierte Tabelle anwenden
  override  eine Korrektur ins kuratierte Wörterbuch aufnehmen
  urls      offizielle Website je Firma suchen
  contacts  Adresse, Telefon und E-Mail je Firma sammeln
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "companyfix: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	global := flag.NewFlagSet("companyfix", flag.ContinueOnError)
	configPath := global.String("config", "companyfix.yaml", "YAML-Konfiguration (fehlt sie, gelten Defaults)")
	global.Usage = func() {
		fmt.Fprint(global.Output(), usageText)
		global.PrintDefaults()
	}
	if err := global.Parse(args); err != nil {
		return err
	}
	rest := global.Args()
	if len(rest) == 0 {
		global.Usage()
		return errors.New("missing command")
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	cmd, cmdArgs := rest[0], rest[1:]
	switch cmd {
	case "correct":
		return cmdCorrect(cfg, log, cmdArgs)
	case "apply":
		return cmdApply(cfg, log, cmdArgs)
	case "override":
		return cmdOverride(cfg, log, cmdArgs)
	case "urls":
		return cmdURLs(ctx, cfg, log, cmdArgs)
	case "contacts":
		return cmdContacts(ctx, cfg, log, cmdArgs)
	}
	global.Usage()
	return fmt.Errorf("unknown command %q", cmd)
}

// tableFlags registriert die gemeinsamen Tabellen-Optionen.
func tableFlags(fs *flag.FlagSet, cfg *appConfig) {
	fs.StringVar(&cfg.Input, "input", cfg.Input, "Eingabetabelle (.csv, .tsv, .xlsx)")
	fs.StringVar(&cfg.NameColumn, "name-col", cfg.NameColumn, "Spalte mit dem Firmennamen")
	fs.StringVar(&cfg.IDColumn, "id-col", cfg.IDColumn, "Spalte mit der Kennung")
	fs.StringVar(&cfg.OutputDir, "output-dir", cfg.OutputDir, "Ausgabeverzeichnis")
}

func requireInput(cfg appConfig) error {
	if strings.TrimSpace(cfg.Input) == "" {
		return errors.New("missing -input file")
	}
	return nil
}

// ---------- correct ----------

func cmdCorrect(cfg appConfig, log *zap.Logger, args []string) error {
	fs := flag.NewFlagSet("correct", flag.ContinueOnError)
	tableFlags(fs, &cfg)
	fs.StringVar(&cfg.Overrides, "overrides", cfg.Overrides, "manuelle Korrekturen (Review-Export oder Wörterbuch)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireInput(cfg); err != nil {
		return err
	}
	_, err := correctFile(cfg, log, time.Now())
	return err
}

type correctSummary struct {
	Rows           int
	Dictionary     int
	AutoCorrected  int
	ManualApplied  int
	ReviewPath     string
	SuspiciousRows int
}

// correctFile führt den gesamten Korrekturlauf für cfg.Input aus.
// Ein vorhandener Review-Export wird nie überschrieben.
func correctFile(cfg appConfig, log *zap.Logger, now time.Time) (correctSummary, error) {
	var sum correctSummary

	t, err := tabular.Read(cfg.Input)
	if err != nil {
		return sum, err
	}
	records, err := correction.RecordsFromTable(t, cfg.NameColumn, cfg.IDColumn)
	if err != nil {
		return sum, fmt.Errorf("%s: %w", cfg.Input, err)
	}

	res := correction.NewPipeline(cfg.Correction).Run(records)
	final := res.Records
	sum.Rows = len(final)
	sum.Dictionary = res.Dictionary.Len()

	// kaputte Korrekturdatei: Schritt überspringen, Lauf geht weiter
	overrides, ok, err := correction.LoadOverrides(cfg.Overrides)
	switch {
	case err != nil:
		log.Warn("overrides skipped", zap.String("path", cfg.Overrides), zap.Error(err))
	case ok:
		final = correction.ApplyOverrides(final, overrides)
		log.Info("overrides loaded", zap.String("path", cfg.Overrides), zap.Int("entries", len(overrides)))
	}
	for _, r := range final {
		switch r.Status {
		case correction.StatusAutoCorrected:
			sum.AutoCorrected++
		case correction.StatusManuallyCorrected:
			sum.ManualApplied++
		}
	}

	if err := correction.AnnotateTable(t, final); err != nil {
		return sum, err
	}
	if err := tabular.Write(cfg.outputPath(cfg.Outputs.Corrected), t); err != nil {
		return sum, err
	}

	sum.ReviewPath = freshPath(cfg.outputPath(cfg.Outputs.Review), now)
	review := correction.ReviewCandidates(final, cfg.Correction.ReviewBand)
	if err := tabular.Write(sum.ReviewPath, correction.ReviewTable(review, cfg.NameColumn, cfg.IDColumn)); err != nil {
		return sum, err
	}

	suspicious := correction.SuspiciousCorrections(final, cfg.Correction.SuspiciousMinScore, cfg.Correction.SuspiciousLengthDelta)
	sum.SuspiciousRows = len(suspicious)
	if err := tabular.Write(cfg.outputPath(cfg.Outputs.Suspicious), correction.SuspiciousTable(suspicious, cfg.NameColumn, cfg.IDColumn)); err != nil {
		return sum, err
	}
	if err := tabular.Write(cfg.outputPath(cfg.Outputs.CorrectionLog), correction.LogTable(final)); err != nil {
		return sum, err
	}

	log.Info("correction done",
		zap.Int("rows", sum.Rows),
		zap.Int("dictionary", sum.Dictionary),
		zap.Int("auto_corrected", sum.AutoCorrected),
		zap.Int("manual", sum.ManualApplied),
		zap.Int("review", len(review)),
		zap.Int("suspicious", sum.SuspiciousRows),
		zap.String("review_path", sum.ReviewPath))
	return sum, nil
}

// freshPath hängt einen Zeitstempel an, wenn path schon existiert.
func freshPath(path string, now time.Time) string {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return path
	}
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_" + now.Format("20060102_150405") + ext
}

// ---------- apply ----------

func cmdApply(cfg appConfig, log *zap.Logger, args []string) error {
	fs := flag.NewFlagSet("apply", flag.ContinueOnError)
	tableFlags(fs, &cfg)
	fs.StringVar(&cfg.Overrides, "overrides", cfg.Overrides, "manuelle Korrekturen (Review-Export oder Wörterbuch)")
	output := fs.String("output", "", "Ausgabetabelle (Default: korrigierte Tabelle im Ausgabeverzeichnis)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireInput(cfg); err != nil {
		return err
	}
	if *output == "" {
		*output = cfg.outputPath(cfg.Outputs.Corrected)
	}
	_, err := applyFile(cfg, log, *output)
	return err
}

// applyFile übernimmt manuelle Korrekturen in eine bereits korrigierte
// Tabelle und schreibt Tabelle und Korrekturlog neu.
func applyFile(cfg appConfig, log *zap.Logger, output string) (int, error) {
	t, err := tabular.Read(cfg.Input)
	if err != nil {
		return 0, err
	}
	if err := t.RequireColumns(correction.ColNormalized, correction.ColFinal); err != nil {
		return 0, fmt.Errorf("%s is not a corrected table: %w", cfg.Input, err)
	}
	records, err := correction.RecordsFromTable(t, cfg.NameColumn, cfg.IDColumn)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", cfg.Input, err)
	}

	overrides, ok, err := correction.LoadOverrides(cfg.Overrides)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("override file %s not found", cfg.Overrides)
	}

	final := correction.ApplyOverrides(records, overrides)
	applied := 0
	for i := range final {
		if final[i].Status == correction.StatusManuallyCorrected && records[i].FinalName != final[i].FinalName {
			applied++
		}
	}
	if err := correction.AnnotateTable(t, final); err != nil {
		return 0, err
	}
	if err := tabular.Write(output, t); err != nil {
		return 0, err
	}
	if err := tabular.Write(cfg.outputPath(cfg.Outputs.CorrectionLog), correction.LogTable(final)); err != nil {
		return 0, err
	}
	log.Info("overrides applied", zap.Int("rows", len(final)), zap.Int("changed", applied), zap.String("output", output))
	return applied, nil
}

// ---------- override ----------

func cmdOverride(cfg appConfig, log *zap.Logger, args []string) error {
	fs := flag.NewFlagSet("override", flag.ContinueOnError)
	fs.StringVar(&cfg.Overrides, "dictionary", cfg.Overrides, "kuratiertes Wörterbuch")
	fs.StringVar(&cfg.OutputDir, "output-dir", cfg.OutputDir, "Verzeichnis des Änderungslogs")
	from := fs.String("from", "", "Originalname")
	to := fs.String("to", "", "korrigierter Name")
	reason := fs.String("reason", "", "Begründung fürs Änderungslog")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return addOverride(cfg, log, *from, *to, *reason, time.Now())
}

func addOverride(cfg appConfig, log *zap.Logger, from, to, reason string, now time.Time) error {
	if correction.Normalize(from) == "" || strings.TrimSpace(to) == "" {
		return errors.New("override needs -from and -to")
	}

	o, _, err := correction.LoadOverrides(cfg.Overrides)
	if err != nil {
		return err
	}
	if o == nil {
		o = make(correction.Overrides)
	}
	previous, replaced := o.Add(from, to)
	if err := correction.SaveOverrides(cfg.Overrides, o); err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if reason == "" && replaced {
		reason = "replaces " + previous
	}
	entry := correction.AuditEntry{Time: now, Original: correction.Normalize(from), Corrected: strings.TrimSpace(to), Reason: reason}
	if err := correction.AppendAuditLog(cfg.outputPath(cfg.Outputs.AuditLog), entry); err != nil {
		return err
	}
	log.Info("override saved",
		zap.String("original", entry.Original),
		zap.String("corrected", entry.Corrected),
		zap.Bool("replaced", replaced))
	return nil
}

// ---------- urls ----------

func cmdURLs(ctx context.Context, cfg appConfig, log *zap.Logger, args []string) error {
	fs := flag.NewFlagSet("urls", flag.ContinueOnError)
	tableFlags(fs, &cfg)
	fs.BoolVar(&cfg.Scrape.Strict, "strict", cfg.Scrape.Strict, "nur Seiten, die den Firmennamen enthalten")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireInput(cfg); err != nil {
		return err
	}

	t, err := tabular.Read(cfg.Input)
	if err != nil {
		return err
	}
	rows, err := companiesFromTable(t, cfg.NameColumn, cfg.IDColumn)
	if err != nil {
		return fmt.Errorf("%s: %w", cfg.Input, err)
	}

	s := newSearcher(cfg.Scrape, nil, log)
	urls, errs := findURLs(ctx, s, rows, log)
	annotateURLs(t, urls, errs)
	return tabular.Write(cfg.outputPath(cfg.Outputs.URLs), t)
}

// findURLs sucht nacheinander, um die Suchmaschine nicht zu überlasten.
// Gleiche Firmennamen werden nur einmal gesucht.
func findURLs(ctx context.Context, s *searcher, rows []companyRow, log *zap.Logger) (urls, errs []string) {
	urls = make([]string, len(rows))
	errs = make([]string, len(rows))
	type found struct{ url, err string }
	cache := make(map[string]found)

	for i, row := range rows {
		if row.URL != "" {
			urls[i] = row.URL
			continue
		}
		if row.Company == "" {
			errs[i] = "no company name"
			continue
		}
		if ctx.Err() != nil {
			errs[i] = ctx.Err().Error()
			continue
		}
		f, ok := cache[row.Company]
		if !ok {
			u, err := s.findOfficialURL(ctx, row.Company)
			f = found{url: u}
			if err != nil {
				f.err = err.Error()
				log.Warn("url not found", zap.String("company", row.Company), zap.Error(err))
			} else {
				log.Info("url found", zap.String("company", row.Company), zap.String("url", u))
			}
			cache[row.Company] = f
		}
		urls[i], errs[i] = f.url, f.err
	}
	return urls, errs
}

// ---------- contacts ----------

func cmdContacts(ctx context.Context, cfg appConfig, log *zap.Logger, args []string) error {
	fs := flag.NewFlagSet("contacts", flag.ContinueOnError)
	tableFlags(fs, &cfg)
	fs.IntVar(&cfg.Scrape.Concurrency, "concurrency", cfg.Scrape.Concurrency, "parallele Firmen")
	fs.BoolVar(&cfg.Scrape.PDFFallback, "pdf", cfg.Scrape.PDFFallback, "PDF-Suche, wenn keine E-Mail gefunden wurde")
	fs.BoolVar(&cfg.Scrape.VerifyMX, "verify-mx", cfg.Scrape.VerifyMX, "E-Mail-Domains per MX prüfen")
	noBrowser := fs.Bool("no-browser", false, "nie rendern, nur statisch laden")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireInput(cfg); err != nil {
		return err
	}

	t, err := tabular.Read(cfg.Input)
	if err != nil {
		return err
	}
	rows, err := companiesFromTable(t, cfg.NameColumn, cfg.IDColumn)
	if err != nil {
		return fmt.Errorf("%s: %w", cfg.Input, err)
	}

	scraper := &contactScraper{
		search: newSearcher(cfg.Scrape, &http.Client{Timeout: 30 * time.Second}, log),
		cfg:    cfg.Scrape,
		log:    log,
	}
	hybrid := &hybridFetcher{static: newCollyFetcher(cfg.Scrape), minText: cfg.Scrape.MinTextLength}
	if !*noBrowser {
		browser := newBrowserFetcher(ctx, cfg.Scrape)
		defer browser.Close()
		hybrid.rendered = browser
	}
	scraper.fetch = hybrid
	if cfg.Scrape.VerifyMX {
		scraper.mx = newMXChecker(cfg.Scrape.DNSServers, 2*time.Second)
	}

	results := scraper.scrapeAll(ctx, rows)
	failed := 0
	for _, r := range results {
		if r.Err != "" {
			failed++
		}
	}
	out := cfg.outputPath(cfg.Outputs.Contacts)
	if err := tabular.Write(out, contactsTable(results)); err != nil {
		return err
	}
	log.Info("contacts written", zap.String("path", out), zap.Int("rows", len(results)), zap.Int("failed", failed))
	return nil
}
