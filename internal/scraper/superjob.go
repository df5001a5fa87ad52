package scraper

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/fr4nk3nst1ner/salarystats/internal/config"
	"github.com/fr4nk3nst1ner/salarystats/internal/models"
)

const (
	// SuperJobName identifies the SuperJob source
	SuperJobName = "superjob"

	// SuperJob reports rubles as "rub"; HeadHunter's code is used as the common one
	superJobRuble = "rub"
	rubleCode     = "RUR"
)

// SuperJob searches vacancies through the api.superjob.ru catalogue API
type SuperJob struct {
	cfg config.SuperJobConfig
	req *requester
}

type sjResponse struct {
	Objects *[]sjVacancy `json:"objects"`
	Total   *int         `json:"total"`
	More    *bool        `json:"more"`
}

type sjVacancy struct {
	ID          int64    `json:"id"`
	Profession  string   `json:"profession"`
	PaymentFrom *float64 `json:"payment_from"`
	PaymentTo   *float64 `json:"payment_to"`
	Currency    string   `json:"currency"`
}

// NewSuperJob creates a SuperJob source
func NewSuperJob(cfg config.SuperJobConfig, opts ...Option) *SuperJob {
	return &SuperJob{
		cfg: cfg,
		req: newRequester(SuperJobName, opts...),
	}
}

// Name returns the source identifier
func (s *SuperJob) Name() string { return SuperJobName }

// PageSize returns the count value sent with every request
func (s *SuperJob) PageSize() int { return s.cfg.PerPage }

// FetchPage fetches one page of vacancies matching language
func (s *SuperJob) FetchPage(ctx context.Context, language string, page int) (*models.Page, error) {
	query := url.Values{}
	query.Set("town", s.cfg.Town)
	query.Set("keyword", language)
	if s.cfg.Catalogue != "" {
		query.Set("catalogues", s.cfg.Catalogue)
	}
	query.Set("page", strconv.Itoa(page))
	query.Set("count", strconv.Itoa(s.cfg.PerPage))

	headers := http.Header{}
	headers.Set("X-Api-App-Id", s.cfg.Token)

	endpoint := strings.TrimRight(s.cfg.BaseURL, "/") + "/vacancies/"

	var resp sjResponse
	if err := s.req.getJSON(ctx, page, endpoint, query, headers, &resp); err != nil {
		return nil, err
	}

	switch {
	case resp.Objects == nil:
		return nil, schemaError(SuperJobName, page, "objects")
	case resp.Total == nil:
		return nil, schemaError(SuperJobName, page, "total")
	case resp.More == nil:
		return nil, schemaError(SuperJobName, page, "more")
	}

	result := &models.Page{
		Listings: make([]models.Listing, 0, len(*resp.Objects)),
		Found:    *resp.Total,
		More:     *resp.More,
	}

	for _, obj := range *resp.Objects {
		result.Listings = append(result.Listings, models.Listing{
			ID:   strconv.FormatInt(obj.ID, 10),
			Name: obj.Profession,
			Salary: &models.SalaryRange{
				Min:      salaryBound(obj.PaymentFrom),
				Max:      salaryBound(obj.PaymentTo),
				Currency: normalizeCurrency(obj.Currency),
			},
		})
	}

	return result, nil
}

// normalizeCurrency maps SuperJob currency codes onto the codes used in config.
// Listings without a currency are rubles.
func normalizeCurrency(currency string) string {
	if currency == "" || strings.EqualFold(currency, superJobRuble) {
		return rubleCode
	}
	return strings.ToUpper(currency)
}
