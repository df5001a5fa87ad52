package scraper

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/fr4nk3nst1ner/salarystats/internal/config"
	"github.com/fr4nk3nst1ner/salarystats/internal/models"
)

// HeadHunterName identifies the HeadHunter source
const HeadHunterName = "headhunter"

// HeadHunter searches vacancies through the api.hh.ru REST API
type HeadHunter struct {
	cfg config.HeadHunterConfig
	req *requester
}

// hhResponse is the vacancies search response. Pointer fields distinguish a
// missing field from a zero value.
type hhResponse struct {
	Items   *[]hhVacancy `json:"items"`
	Found   *int         `json:"found"`
	Pages   *int         `json:"pages"`
	Page    int          `json:"page"`
	PerPage int          `json:"per_page"`
}

type hhVacancy struct {
	ID     string    `json:"id"`
	Name   string    `json:"name"`
	Salary *hhSalary `json:"salary"`
}

type hhSalary struct {
	From     *float64 `json:"from"`
	To       *float64 `json:"to"`
	Currency string   `json:"currency"`
}

// NewHeadHunter creates a HeadHunter source
func NewHeadHunter(cfg config.HeadHunterConfig, opts ...Option) *HeadHunter {
	return &HeadHunter{
		cfg: cfg,
		req: newRequester(HeadHunterName, opts...),
	}
}

// Name returns the source identifier
func (h *HeadHunter) Name() string { return HeadHunterName }

// PageSize returns the per_page value sent with every request
func (h *HeadHunter) PageSize() int { return h.cfg.PerPage }

// FetchPage fetches one page of vacancies matching language
func (h *HeadHunter) FetchPage(ctx context.Context, language string, page int) (*models.Page, error) {
	query := url.Values{}
	query.Set("text", language)
	query.Set("area", h.cfg.Area)
	query.Set("period", strconv.Itoa(h.cfg.PeriodDays))
	query.Set("page", strconv.Itoa(page))
	query.Set("per_page", strconv.Itoa(h.cfg.PerPage))
	if h.cfg.Token != "" {
		query.Set("api_key", h.cfg.Token)
	}

	endpoint := strings.TrimRight(h.cfg.BaseURL, "/") + "/vacancies"

	var resp hhResponse
	if err := h.req.getJSON(ctx, page, endpoint, query, nil, &resp); err != nil {
		return nil, err
	}

	switch {
	case resp.Items == nil:
		return nil, schemaError(HeadHunterName, page, "items")
	case resp.Found == nil:
		return nil, schemaError(HeadHunterName, page, "found")
	case resp.Pages == nil:
		return nil, schemaError(HeadHunterName, page, "pages")
	}

	result := &models.Page{
		Listings: make([]models.Listing, 0, len(*resp.Items)),
		Found:    *resp.Found,
		Pages:    *resp.Pages,
		More:     page+1 < *resp.Pages,
	}

	for _, item := range *resp.Items {
		listing := models.Listing{ID: item.ID, Name: item.Name}
		if item.Salary != nil {
			listing.Salary = &models.SalaryRange{
				Min:      salaryBound(item.Salary.From),
				Max:      salaryBound(item.Salary.To),
				Currency: item.Salary.Currency,
			}
		}
		result.Listings = append(result.Listings, listing)
	}

	return result, nil
}
