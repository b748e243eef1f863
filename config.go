package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"companyfix/correction"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Gesamte Laufzeitkonfiguration, aus YAML geladen und per Umgebung überschreibbar.
type appConfig struct {
	Input      string `yaml:"input"`
	NameColumn string `yaml:"name_column"`
	IDColumn   string `yaml:"id_column"`
	OutputDir  string `yaml:"output_dir"`
	Overrides  string `yaml:"overrides"`
	LogLevel   string `yaml:"log_level"`
	LogFormat  string `yaml:"log_format"`

	Outputs    outputFiles       `yaml:"outputs"`
	Correction correction.Config `yaml:"correction"`
	Scrape     scrapeConfig      `yaml:"scrape"`
}

// Dateinamen relativ zu OutputDir
type outputFiles struct {
	Corrected     string `yaml:"corrected"`
	Review        string `yaml:"review"`
	Suspicious    string `yaml:"suspicious"`
	CorrectionLog string `yaml:"correction_log"`
	AuditLog      string `yaml:"audit_log"`
	URLs          string `yaml:"urls"`
	Contacts      string `yaml:"contacts"`
}

type scrapeConfig struct {
	SearchURL     string        `yaml:"search_url"`
	QuerySuffix   string        `yaml:"query_suffix"`
	BlockedHosts  []string      `yaml:"blocked_hosts"`
	ContactPaths  []string      `yaml:"contact_paths"`
	Strict        bool          `yaml:"strict"`
	Concurrency   int           `yaml:"concurrency"`
	BrowserTabs   int           `yaml:"browser_tabs"`
	TaskTimeout   time.Duration `yaml:"task_timeout"`
	MinTextLength int           `yaml:"min_text_length"`
	UserAgent     string        `yaml:"user_agent"`
	ShowBrowser   bool          `yaml:"show_browser"`
	RenderWait    time.Duration `yaml:"render_wait"`
	VerifyMX      bool          `yaml:"verify_mx"`
	DNSServers    []string      `yaml:"dns_servers"`
	PDFFallback   bool          `yaml:"pdf_fallback"`
	MaxResults    int           `yaml:"max_results"`
	MaxPages      int           `yaml:"max_pages"`
	MinDelay      time.Duration `yaml:"min_delay"`
	MaxDelay      time.Duration `yaml:"max_delay"`
}

func defaultAppConfig() appConfig {
	cfg := appConfig{}
	cfg.applyDefaults()
	return cfg
}

// loadConfig liest die YAML-Datei. Fehlt sie, gelten die Defaults.
// Danach werden .env und Umgebungsvariablen berücksichtigt.
func loadConfig(path string) (appConfig, error) {
	var cfg appConfig
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	// .env ist optional
	_ = godotenv.Load()
	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *appConfig) applyEnv() {
	c.LogLevel = valueOrDefault(os.Getenv("LOG_LEVEL"), c.LogLevel)
	c.Scrape.UserAgent = valueOrDefault(os.Getenv("SCRAPE_USER_AGENT"), c.Scrape.UserAgent)
	c.Scrape.Concurrency = parseIntEnv("SCRAPE_CONCURRENCY", c.Scrape.Concurrency)
	if v := strings.TrimSpace(os.Getenv("SCRAPE_TIMEOUT_MS")); v != "" {
		c.Scrape.TaskTimeout = parseDurationEnv("SCRAPE_TIMEOUT_MS", int(c.Scrape.TaskTimeout/time.Millisecond))
	}
	if v := os.Getenv("SCRAPE_HEADLESS"); strings.TrimSpace(v) != "" {
		if headless, err := parseHeadless(v); err == nil {
			c.Scrape.ShowBrowser = !headless
		}
	}
}

func (c *appConfig) applyDefaults() {
	c.NameColumn = valueOrDefault(c.NameColumn, "ADJUDICATARIO")
	c.IDColumn = valueOrDefault(c.IDColumn, "CIF")
	c.OutputDir = valueOrDefault(c.OutputDir, "output")
	c.Overrides = valueOrDefault(c.Overrides, "correcciones_manuales.csv")
	c.LogLevel = valueOrDefault(c.LogLevel, "info")
	c.LogFormat = valueOrDefault(c.LogFormat, "console")

	o := &c.Outputs
	o.Corrected = valueOrDefault(o.Corrected, "empresas_corregidas.csv")
	o.Review = valueOrDefault(o.Review, "revision_manual.csv")
	o.Suspicious = valueOrDefault(o.Suspicious, "correcciones_sospechosas.csv")
	o.CorrectionLog = valueOrDefault(o.CorrectionLog, "log_correcciones.csv")
	o.AuditLog = valueOrDefault(o.AuditLog, "log_cambios_diccionario.csv")
	o.URLs = valueOrDefault(o.URLs, "empresas_con_url.csv")
	o.Contacts = valueOrDefault(o.Contacts, "empresas_contacto.csv")

	c.Correction.ApplyDefaults()

	s := &c.Scrape
	s.SearchURL = valueOrDefault(s.SearchURL, "https://html.duckduckgo.com/html/")
	s.QuerySuffix = valueOrDefault(s.QuerySuffix, "sitio oficial España")
	if len(s.BlockedHosts) == 0 {
		s.BlockedHosts = []string{
			"google.", "youtube.com", "facebook.com", "linkedin.com", "twitter.com",
			"x.com", "instagram.com", "wikipedia.org", "einforma.com", "infoempresa.com",
		}
	}
	if len(s.ContactPaths) == 0 {
		s.ContactPaths = []string{"/contacto", "/contact", "/about-us", "/sobre-nosotros"}
	}
	if s.Concurrency <= 0 {
		s.Concurrency = 4
	}
	if s.BrowserTabs <= 0 {
		s.BrowserTabs = 2
	}
	if s.TaskTimeout <= 0 {
		s.TaskTimeout = 60 * time.Second
	}
	if s.MinTextLength <= 0 {
		s.MinTextLength = 500
	}
	s.UserAgent = valueOrDefault(s.UserAgent, defaultUserAgent)
	if s.RenderWait <= 0 {
		s.RenderWait = 2 * time.Second
	}
	if len(s.DNSServers) == 0 {
		s.DNSServers = []string{"8.8.8.8:53", "1.1.1.1:53"}
	}
	if s.MaxResults <= 0 {
		s.MaxResults = 10
	}
	if s.MaxPages <= 0 {
		s.MaxPages = 2
	}
	if s.MinDelay <= 0 {
		s.MinDelay = 300 * time.Millisecond
	}
	if s.MaxDelay < s.MinDelay {
		s.MaxDelay = s.MinDelay + 900*time.Millisecond
	}
}

func (c appConfig) outputPath(name string) string {
	return joinOutput(c.OutputDir, name)
}

// ---------- Umgebungs-Helfer ----------

func parseHeadless(value string) (bool, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return true, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid SCRAPE_HEADLESS value: %w", err)
	}
	return b, nil
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return strings.TrimSpace(value)
}

func parseDurationEnv(key string, defaultMs int) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return time.Duration(defaultMs) * time.Millisecond
	}
	ms, err := strconv.Atoi(value)
	if err != nil || ms < 0 {
		return time.Duration(defaultMs) * time.Millisecond
	}
	return time.Duration(ms) * time.Millisecond
}

func parseIntEnv(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
