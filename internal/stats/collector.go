package stats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/fr4nk3nst1ner/salarystats/internal/models"
	"github.com/fr4nk3nst1ner/salarystats/internal/scraper"
)

// Collector runs the Aggregator for every language against one source
type Collector struct {
	source     scraper.Source
	aggregator *Aggregator
	delay      time.Duration
	logger     zerolog.Logger
	onDone     func(models.ReportEntry)
}

// CollectorOption configures a Collector
type CollectorOption func(*Collector)

// WithDelay sets the pause between two languages, for services that rate-limit.
func WithDelay(d time.Duration) CollectorOption {
	return func(c *Collector) {
		c.delay = d
	}
}

// WithCollectorLogger sets the logger.
func WithCollectorLogger(logger zerolog.Logger) CollectorOption {
	return func(c *Collector) {
		c.logger = logger
	}
}

// WithLanguageDone registers a callback invoked after each language
func WithLanguageDone(fn func(models.ReportEntry)) CollectorOption {
	return func(c *Collector) {
		c.onDone = fn
	}
}

// NewCollector creates a Collector for src
func NewCollector(src scraper.Source, aggregator *Aggregator, opts ...CollectorOption) *Collector {
	if aggregator == nil {
		aggregator = NewAggregator()
	}
	c := &Collector{
		source:     src,
		aggregator: aggregator,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Collect aggregates every language in order. A failing language is recorded
// with its error and the run moves on to the next one, except for rejected
// credentials: the remaining languages are then recorded as skipped, wrapping
// that error, without querying the service. Once ctx is done the remaining languages are
// recorded with the context error.
func (c *Collector) Collect(ctx context.Context, title string, languages []string) *models.StatisticsReport {
	report := &models.StatisticsReport{
		Service: c.source.Name(),
		Title:   title,
		Entries: make([]models.ReportEntry, 0, len(languages)),
	}

	var authErr error
	for i, language := range languages {
		if authErr != nil {
			c.record(report, language, models.LanguageStats{}, fmt.Errorf("%s skipped: %w", language, authErr))
			continue
		}
		if i > 0 && c.delay > 0 {
			if err := sleep(ctx, c.delay); err != nil {
				c.record(report, language, models.LanguageStats{}, err)
				continue
			}
		}
		if err := ctx.Err(); err != nil {
			c.record(report, language, models.LanguageStats{}, err)
			continue
		}

		stats, err := c.aggregator.Aggregate(ctx, c.source, language)
		if err != nil {
			c.logger.Error().
				Err(err).
				Str("source", c.source.Name()).
				Str("kind", scraper.ErrorKind(err)).
				Str("language", language).
				Msg("language failed")
			if errors.Is(err, scraper.ErrAuth) {
				authErr = err
			}
		}
		c.record(report, language, stats, err)
	}

	return report
}

func (c *Collector) record(report *models.StatisticsReport, language string, stats models.LanguageStats, err error) {
	report.Add(language, stats, err)
	if c.onDone != nil {
		c.onDone(report.Entries[len(report.Entries)-1])
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
