package scraper

import (
	"context"
	"fmt"
	"math"

	"github.com/fr4nk3nst1ner/salarystats/internal/models"
	"github.com/fr4nk3nst1ner/salarystats/internal/utils"
)

// Source is a job service that can be searched page by page
type Source interface {
	// Name returns the short source identifier used in logs and errors
	Name() string
	// PageSize returns the number of listings requested per page
	PageSize() int
	// FetchPage returns one page of listings for language; pages are 0-based
	FetchPage(ctx context.Context, language string, page int) (*models.Page, error)
}

// salaryBound converts a decoded JSON number into a bound, dropping absent,
// zero and negative values
func salaryBound(v *float64) *int {
	if v == nil {
		return nil
	}
	bound := int(math.Trunc(*v))
	return utils.PositiveOrNil(&bound)
}

func schemaError(source string, page int, field string) error {
	return &FetchError{Kind: ErrSchema, Source: source, Page: page, Err: fmt.Errorf("missing field %q", field)}
}
