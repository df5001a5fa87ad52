package main

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/fr4nk3nst1ner/salarystats/internal/config"
	"github.com/fr4nk3nst1ner/salarystats/internal/models"
	"github.com/fr4nk3nst1ner/salarystats/internal/scraper"
)

func parseFlags(t *testing.T, args ...string) (*options, error) {
	t.Helper()
	return parseFlagsWithToken(t, "sj-token", args...)
}

func parseFlagsWithToken(t *testing.T, sjToken string, args ...string) (*options, error) {
	t.Helper()
	t.Setenv(config.EnvSuperJobToken, sjToken)
	t.Setenv(config.EnvHeadHunterToken, "")
	t.Setenv(config.EnvLanguages, "")
	t.Setenv(config.EnvLogLevel, "")

	cmd := newRootCmd()
	args = append(args, "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}

	opts := &options{}
	opts.configPath, _ = cmd.Flags().GetString("config")
	opts.languages, _ = cmd.Flags().GetString("languages")
	opts.source, _ = cmd.Flags().GetString("source")
	opts.maxListings, _ = cmd.Flags().GetInt("max-listings")
	opts.debug, _ = cmd.Flags().GetBool("debug")

	_, _, err := loadConfig(cmd, opts)
	return opts, err
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Run("flags override config", func(t *testing.T) {
		t.Setenv(config.EnvSuperJobToken, "sj-token")
		cmd := newRootCmd()
		dir := t.TempDir()
		if err := cmd.ParseFlags([]string{
			"--config", filepath.Join(dir, "missing.yaml"),
			"--languages", "Go, Rust",
			"--source", "sj",
			"--max-listings", "200",
			"--debug",
		}); err != nil {
			t.Fatalf("ParseFlags() error = %v", err)
		}

		opts := &options{
			configPath:  filepath.Join(dir, "missing.yaml"),
			languages:   "Go, Rust",
			source:      "sj",
			maxListings: 200,
			debug:       true,
		}
		cfg, disabled, err := loadConfig(cmd, opts)
		if err != nil {
			t.Fatalf("loadConfig() error = %v", err)
		}

		if len(cfg.Languages) != 2 || cfg.Languages[0] != "Go" || cfg.Languages[1] != "Rust" {
			t.Errorf("Languages = %v", cfg.Languages)
		}
		if cfg.HeadHunter.Enabled || !cfg.SuperJob.Enabled {
			t.Errorf("enabled = hh %v sj %v, want sj only", cfg.HeadHunter.Enabled, cfg.SuperJob.Enabled)
		}
		if cfg.MaxListings != 200 {
			t.Errorf("MaxListings = %d, want 200", cfg.MaxListings)
		}
		if cfg.Log.Level != "debug" {
			t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
		}
		if len(disabled) != 0 {
			t.Errorf("disabled = %v, want none", disabled)
		}
	})

	t.Run("missing superjob token disables it", func(t *testing.T) {
		t.Setenv(config.EnvSuperJobToken, "")
		t.Setenv(config.EnvHeadHunterToken, "")
		cmd := newRootCmd()
		opts := &options{
			configPath: filepath.Join(t.TempDir(), "missing.yaml"),
			source:     "all",
		}

		cfg, disabled, err := loadConfig(cmd, opts)
		if err != nil {
			t.Fatalf("loadConfig() error = %v", err)
		}
		if !cfg.HeadHunter.Enabled || cfg.SuperJob.Enabled {
			t.Errorf("enabled = hh %v sj %v, want hh only", cfg.HeadHunter.Enabled, cfg.SuperJob.Enabled)
		}
		if len(disabled) != 1 || disabled[0] != "superjob" {
			t.Errorf("disabled = %v, want [superjob]", disabled)
		}
	})

	t.Run("superjob only still needs a token", func(t *testing.T) {
		if _, err := parseFlagsWithToken(t, "", "--source", "sj"); err == nil {
			t.Fatal("expected validation error for missing superjob token")
		}
	})

	t.Run("invalid source", func(t *testing.T) {
		if _, err := parseFlags(t, "--source", "linkedin"); err == nil {
			t.Fatal("expected error for invalid source")
		}
	})

	t.Run("zero listing cap is rejected", func(t *testing.T) {
		if _, err := parseFlags(t, "--max-listings", "0"); err == nil {
			t.Fatal("expected validation error")
		}
	})

	t.Run("defaults", func(t *testing.T) {
		opts, err := parseFlags(t)
		if err != nil {
			t.Fatalf("loadConfig() error = %v", err)
		}
		if opts.source != "all" {
			t.Errorf("source = %q, want all", opts.source)
		}
	})
}

func TestSummarize(t *testing.T) {
	t.Run("auth failure is an error", func(t *testing.T) {
		hh := &models.StatisticsReport{Service: "headhunter"}
		hh.Add("Go", models.LanguageStats{}, &scraper.FetchError{Kind: scraper.ErrAuth, Source: "headhunter", StatusCode: 403})
		hh.Add("Python", models.LanguageStats{VacanciesFound: 1}, nil)

		err := summarize([]*models.StatisticsReport{hh}, zerolog.Nop())
		if !errors.Is(err, scraper.ErrAuth) {
			t.Fatalf("error = %v, want ErrAuth", err)
		}
		if !strings.Contains(err.Error(), "headhunter/Go") {
			t.Errorf("error = %q, want it to name headhunter/Go", err)
		}
	})

	t.Run("other failures only warn", func(t *testing.T) {
		var buf bytes.Buffer
		log := zerolog.New(&buf)

		sj := &models.StatisticsReport{Service: "superjob"}
		sj.Add("C", models.LanguageStats{}, &scraper.FetchError{Kind: scraper.ErrTransport, Source: "superjob"})
		sj.Add("Java", models.LanguageStats{}, context.Canceled)

		if err := summarize([]*models.StatisticsReport{sj}, log); err != nil {
			t.Fatalf("summarize() error = %v", err)
		}
		if got := strings.Count(buf.String(), "language incomplete"); got != 2 {
			t.Errorf("warnings = %d, want 2:\n%s", got, buf.String())
		}
	})
}

func TestPrintExamples(t *testing.T) {
	var buf bytes.Buffer
	printExamples(&buf)
	if !strings.Contains(buf.String(), "salarystats --source hh") {
		t.Errorf("examples output = %q", buf.String())
	}
}
