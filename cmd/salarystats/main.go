package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/fr4nk3nst1ner/salarystats/internal/client"
	"github.com/fr4nk3nst1ner/salarystats/internal/config"
	"github.com/fr4nk3nst1ner/salarystats/internal/logger"
	"github.com/fr4nk3nst1ner/salarystats/internal/models"
	"github.com/fr4nk3nst1ner/salarystats/internal/scraper"
	"github.com/fr4nk3nst1ner/salarystats/internal/stats"
	"github.com/fr4nk3nst1ner/salarystats/internal/ui"
	"github.com/fr4nk3nst1ner/salarystats/internal/utils"
)

type options struct {
	configPath  string
	languages   string
	source      string
	maxListings int
	debug       bool
	silence     bool
	noBanner    bool
	noProgress  bool
	examples    bool
}

// job is one service to collect, in table order
type job struct {
	source scraper.Source
	title  string
	delay  time.Duration
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "salarystats",
		Short:         "Vacancy counts and average salaries per programming language from hh.ru and superjob.ru",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts)
		},
	}

	flags := rootCmd.Flags()
	flags.StringVar(&opts.configPath, "config", config.DefaultConfigPath, "path to the YAML config file")
	flags.StringVar(&opts.languages, "languages", "", "comma separated languages to query (overrides config)")
	flags.StringVar(&opts.source, "source", utils.SourceAll, "source to query (all, hh, sj)")
	flags.IntVar(&opts.maxListings, "max-listings", 0, "maximum listings requested per language (overrides config)")
	flags.BoolVar(&opts.debug, "debug", false, "enable debug logging")
	flags.BoolVar(&opts.silence, "silence", false, "silence the banner")
	flags.BoolVar(&opts.noBanner, "nobanner", false, "silence the banner (alias for --silence)")
	flags.BoolVar(&opts.noProgress, "no-progress", false, "disable progress bars")
	flags.BoolVar(&opts.examples, "examples", false, "show usage examples")

	return rootCmd
}

func run(cmd *cobra.Command, opts *options) error {
	ui.PrintBanner(opts.silence || opts.noBanner)

	if opts.examples {
		printExamples(cmd.OutOrStdout())
		return nil
	}

	cfg, disabled, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	log, closer, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return err
	}
	defer closer.Close()
	log = log.With().Str("run_id", uuid.NewString()).Logger()

	for _, name := range disabled {
		log.Warn().Str("source", name).Msg("no token configured, source disabled")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpClient := client.CreateProxyHTTPClient(cfg.Proxy, cfg.Timeout)
	jobs := buildJobs(cfg, httpClient, log)
	aggregator := stats.NewAggregator(
		stats.WithCurrency(cfg.ReferenceCurrency),
		stats.WithMaxListings(cfg.MaxListings),
		stats.WithAggregatorLogger(log),
	)

	log.Info().
		Strs("languages", cfg.Languages).
		Int("sources", len(jobs)).
		Int("max_listings", cfg.MaxListings).
		Msg("collecting vacancy statistics")

	var reports []*models.StatisticsReport
	for _, j := range jobs {
		report := collect(ctx, j, aggregator, cfg.Languages, log, !opts.noProgress)
		reports = append(reports, report)

		if err := ui.RenderReport(cmd.OutOrStdout(), report); err != nil {
			return err
		}
	}

	return summarize(reports, log)
}

// loadConfig reads .env, the config file and the environment, then applies
// command line overrides before validating. With --source all, sources that
// need a missing token are disabled and returned instead of failing the run.
func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, []string, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, nil, err
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, nil, err
	}

	if !utils.IsValidSource(opts.source) {
		return nil, nil, fmt.Errorf("invalid source %q: must be one of all, hh, sj", opts.source)
	}
	var disabled []string
	switch strings.ToLower(opts.source) {
	case utils.SourceHeadHunter:
		cfg.SuperJob.Enabled = false
	case utils.SourceSuperJob:
		cfg.HeadHunter.Enabled = false
	default:
		disabled = cfg.DisableSourcesWithoutToken()
	}

	if cmd.Flags().Changed("languages") {
		cfg.Languages = utils.SplitList(opts.languages)
	}
	if cmd.Flags().Changed("max-listings") {
		cfg.MaxListings = opts.maxListings
	}
	if opts.debug {
		cfg.Log.Level = zerolog.DebugLevel.String()
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, disabled, nil
}

func buildJobs(cfg *config.Config, httpClient *http.Client, log zerolog.Logger) []job {
	fetchOpts := []scraper.Option{
		scraper.WithHTTPClient(httpClient),
		scraper.WithLogger(log),
		scraper.WithRetries(cfg.MaxRetries, cfg.RetryBackoff),
	}

	var jobs []job
	if cfg.HeadHunter.Enabled {
		jobs = append(jobs, job{
			source: scraper.NewHeadHunter(cfg.HeadHunter, fetchOpts...),
			title:  cfg.HeadHunter.Title,
			delay:  cfg.HeadHunter.RequestDelay,
		})
	}
	if cfg.SuperJob.Enabled {
		jobs = append(jobs, job{
			source: scraper.NewSuperJob(cfg.SuperJob, fetchOpts...),
			title:  cfg.SuperJob.Title,
			delay:  cfg.SuperJob.RequestDelay,
		})
	}
	return jobs
}

func collect(ctx context.Context, j job, aggregator *stats.Aggregator, languages []string, log zerolog.Logger, progress bool) *models.StatisticsReport {
	collectorOpts := []stats.CollectorOption{
		stats.WithDelay(j.delay),
		stats.WithCollectorLogger(log),
	}

	if progress {
		bar := pb.New(len(languages)).SetWriter(os.Stderr)
		bar.Set("prefix", j.title+" ")
		bar.Start()
		defer bar.Finish()

		collectorOpts = append(collectorOpts, stats.WithLanguageDone(func(models.ReportEntry) {
			bar.Increment()
		}))
	}

	return stats.NewCollector(j.source, aggregator, collectorOpts...).Collect(ctx, j.title, languages)
}

// summarize logs failed languages and turns rejected credentials into an error
func summarize(reports []*models.StatisticsReport, log zerolog.Logger) error {
	var authFailed []string
	for _, report := range reports {
		for _, entry := range report.Failed() {
			log.Warn().
				Err(entry.Err).
				Str("source", report.Service).
				Str("language", entry.Language).
				Msg("language incomplete")
			if errors.Is(entry.Err, scraper.ErrAuth) {
				authFailed = append(authFailed, report.Service+"/"+entry.Language)
			}
		}
	}

	if len(authFailed) > 0 {
		return fmt.Errorf("credentials rejected for %s: %w", strings.Join(authFailed, ", "), scraper.ErrAuth)
	}
	return nil
}

// printExamples displays usage examples for the program
func printExamples(w io.Writer) {
	fmt.Fprintln(w, "\n📋 SalaryStats Usage Examples 📋")
	fmt.Fprintln(w, "\n1. Collect statistics for the default languages from both services:")
	fmt.Fprintln(w, "   salarystats")

	fmt.Fprintln(w, "\n2. Query only HeadHunter for Go and Python, silencing the banner:")
	fmt.Fprintln(w, "   salarystats --source hh --languages \"Go,Python\" --silence")

	fmt.Fprintln(w, "\n3. Query SuperJob with a token from the environment and a smaller listing cap:")
	fmt.Fprintln(w, "   SUPER_JOB_SECRET_KEY=v3.r.xxx salarystats --source sj --max-listings 200")

	fmt.Fprintln(w, "\n4. Use a custom config file and debug logging without progress bars:")
	fmt.Fprintln(w, "   salarystats --config ./moscow.yaml --debug --no-progress")

	fmt.Fprintln(w, "\n5. Route requests through a local proxy (set in config):")
	fmt.Fprintln(w, "   proxy: http://localhost:8080")
}
