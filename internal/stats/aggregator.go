// Package stats walks job services page by page and folds the listings into
// per-language salary statistics.
package stats

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/fr4nk3nst1ner/salarystats/internal/models"
	"github.com/fr4nk3nst1ner/salarystats/internal/scraper"
	"github.com/fr4nk3nst1ner/salarystats/internal/utils"
)

// Defaults used by NewAggregator when no option overrides them
const (
	// DefaultCurrency is the reference currency salaries are averaged in
	DefaultCurrency = "RUR"
	// DefaultMaxListings caps the listings requested per language
	DefaultMaxListings = 500
)

// Aggregator computes LanguageStats for one language of one source
type Aggregator struct {
	currency    string
	maxListings int
	logger      zerolog.Logger
}

// AggregatorOption configures an Aggregator
type AggregatorOption func(*Aggregator)

// WithCurrency sets the reference currency; listings in other currencies are skipped.
func WithCurrency(currency string) AggregatorOption {
	return func(a *Aggregator) {
		a.currency = currency
	}
}

// WithMaxListings caps how many listings are requested per language.
func WithMaxListings(n int) AggregatorOption {
	return func(a *Aggregator) {
		a.maxListings = n
	}
}

// WithAggregatorLogger sets the logger.
func WithAggregatorLogger(logger zerolog.Logger) AggregatorOption {
	return func(a *Aggregator) {
		a.logger = logger
	}
}

// NewAggregator creates an Aggregator
func NewAggregator(opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		currency:    DefaultCurrency,
		maxListings: DefaultMaxListings,
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Aggregate walks every page src reports for language, up to the listing cap,
// and returns the finalized statistics. On a transport or auth failure the
// statistics gathered so far are returned together with the error.
func (a *Aggregator) Aggregate(ctx context.Context, src scraper.Source, language string) (models.LanguageStats, error) {
	log := a.logger.With().Str("source", src.Name()).Str("language", language).Logger()
	acc := &accumulator{currency: a.currency}

	first, err := src.FetchPage(ctx, language, 0)
	if err != nil {
		return acc.finalize(0), fmt.Errorf("aggregate %s: %w", language, err)
	}

	found := first.Found
	acc.consume(first.Listings)
	more := first.More

	pageLimit := a.pageLimit(src.PageSize())
	for page := 1; more && page < pageLimit; page++ {
		p, err := src.FetchPage(ctx, language, page)
		if err != nil {
			if errors.Is(err, scraper.ErrSchema) && ctx.Err() == nil {
				log.Warn().Err(err).Int("page", page).Msg("skipping malformed page")
				continue
			}
			return a.finish(log, acc, found), fmt.Errorf("aggregate %s page %d: %w", language, page, err)
		}
		acc.consume(p.Listings)
		more = p.More
	}

	if more {
		log.Debug().Int("pages", pageLimit).Int("max_listings", a.maxListings).Msg("listing cap reached")
	}

	return a.finish(log, acc, found), nil
}

func (a *Aggregator) finish(log zerolog.Logger, acc *accumulator, found int) models.LanguageStats {
	stats := acc.finalize(found)
	if stats.VacanciesFound != found {
		log.Warn().
			Int("found", found).
			Int("processed", stats.VacanciesProcessed).
			Msg("service reported fewer vacancies than were processed")
	}
	log.Debug().
		Int("found", stats.VacanciesFound).
		Int("processed", stats.VacanciesProcessed).
		Int("skipped", acc.skipped).
		Msg("language aggregated")
	return stats
}

// pageLimit is the number of pages that stay within maxListings
func (a *Aggregator) pageLimit(pageSize int) int {
	if pageSize <= 0 {
		pageSize = 1
	}
	limit := (a.maxListings + pageSize - 1) / pageSize
	if limit < 1 {
		return 1
	}
	return limit
}

// accumulator holds the running estimates of a single Aggregate call
type accumulator struct {
	currency string
	salaries []int
	skipped  int
}

func (acc *accumulator) consume(listings []models.Listing) {
	for _, listing := range listings {
		salary := listing.Salary
		if salary == nil || !strings.EqualFold(salary.Currency, acc.currency) {
			acc.skipped++
			continue
		}
		estimate, ok := utils.PredictSalary(salary.Min, salary.Max)
		if !ok {
			acc.skipped++
			continue
		}
		acc.salaries = append(acc.salaries, estimate)
	}
}

// finalize builds the statistics. found is raised to the processed count when
// the service under-reports, so processed never exceeds found.
func (acc *accumulator) finalize(found int) models.LanguageStats {
	processed := len(acc.salaries)
	if found < processed {
		found = processed
	}
	return models.LanguageStats{
		VacanciesFound:     found,
		VacanciesProcessed: processed,
		AverageSalary:      utils.AverageSalary(acc.salaries),
	}
}
