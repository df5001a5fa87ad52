package stats

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fr4nk3nst1ner/salarystats/internal/models"
	"github.com/fr4nk3nst1ner/salarystats/internal/scraper"
)

func TestCollect(t *testing.T) {
	t.Run("languages are isolated", func(t *testing.T) {
		src := &fakeSource{name: "headhunter", pageSize: 100, pages: map[string][]pageResult{
			"Python": {{page: &models.Page{Found: 10, Listings: []models.Listing{{ID: "1", Salary: rub(intPtr(100000), intPtr(200000))}}}}},
			"Go":     {{page: &models.Page{Found: 4, Listings: []models.Listing{{ID: "2"}}}}},
		}}

		report := NewCollector(src, nil).Collect(context.Background(), "HeadHunter (Moscow)", []string{"Python", "Go"})

		if report.Service != "headhunter" || report.Title != "HeadHunter (Moscow)" {
			t.Errorf("report header = %q / %q", report.Service, report.Title)
		}
		if got := report.Languages(); len(got) != 2 || got[0] != "Python" || got[1] != "Go" {
			t.Fatalf("Languages() = %v", got)
		}

		goEntry, _ := report.Get("Go")
		if goEntry.Stats.AverageSalary != nil || goEntry.Stats.VacanciesProcessed != 0 {
			t.Errorf("Go stats = %+v, want no salaries", goEntry.Stats)
		}
		pyEntry, _ := report.Get("Python")
		if pyEntry.Stats.AverageSalary == nil || *pyEntry.Stats.AverageSalary != 150000 {
			t.Errorf("Python avg = %v, want 150000", pyEntry.Stats.AverageSalary)
		}
	})

	t.Run("failed language does not stop the run", func(t *testing.T) {
		src := &fakeSource{name: "superjob", pageSize: 100, pages: map[string][]pageResult{
			"Python": {{err: &scraper.FetchError{Kind: scraper.ErrTransport, Source: "superjob", StatusCode: 503, Err: errors.New("unavailable")}}},
			"Go":     {{page: &models.Page{Found: 1, Listings: []models.Listing{{ID: "1", Salary: rub(intPtr(1000), nil)}}}}},
		}}

		var done []string
		report := NewCollector(src, nil, WithLanguageDone(func(e models.ReportEntry) {
			done = append(done, e.Language)
		})).Collect(context.Background(), "SuperJob (Moscow)", []string{"Python", "Go"})

		py, _ := report.Get("Python")
		if !py.Failed() || !errors.Is(py.Err, scraper.ErrTransport) {
			t.Errorf("Python entry = %+v, want transport failure", py)
		}
		goEntry, _ := report.Get("Go")
		if goEntry.Failed() || goEntry.Stats.VacanciesProcessed != 1 {
			t.Errorf("Go entry = %+v", goEntry)
		}
		if got := len(report.Failed()); got != 1 {
			t.Errorf("len(report.Failed()) = %d, want 1", got)
		}
		if len(done) != 2 {
			t.Errorf("callback languages = %v, want 2 entries", done)
		}
	})

	t.Run("rejected credentials stop the service", func(t *testing.T) {
		authErr := &scraper.FetchError{Kind: scraper.ErrAuth, Source: "superjob", StatusCode: 403, Err: errors.New("invalid app id")}
		src := &fakeSource{name: "superjob", pageSize: 100, pages: map[string][]pageResult{
			"Python": {{err: authErr}},
			"Go":     {{page: &models.Page{Found: 1}}},
		}}

		report := NewCollector(src, nil).Collect(context.Background(), "SuperJob", []string{"Python", "Go"})

		goEntry, _ := report.Get("Go")
		if !errors.Is(goEntry.Err, scraper.ErrAuth) {
			t.Fatalf("Go err = %v, want ErrAuth", goEntry.Err)
		}
		if !strings.HasPrefix(goEntry.Err.Error(), "Go skipped: ") {
			t.Errorf("Go err = %q, want it to name the skipped language", goEntry.Err)
		}
		if calls := src.callsFor("Go"); len(calls) != 0 {
			t.Errorf("Go fetched %v after auth failure", calls)
		}
	})

	t.Run("cancellation marks remaining languages", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		src := &fakeSource{name: "headhunter", pageSize: 100, pages: map[string][]pageResult{
			"Python": {{page: &models.Page{Found: 0}}},
		}}

		collector := NewCollector(src, nil, WithLanguageDone(func(e models.ReportEntry) {
			if e.Language == "Python" {
				cancel()
			}
		}))
		report := collector.Collect(ctx, "HeadHunter", []string{"Python", "Go", "Java"})

		if len(report.Entries) != 3 {
			t.Fatalf("len(Entries) = %d, want 3", len(report.Entries))
		}
		for _, lang := range []string{"Go", "Java"} {
			entry, _ := report.Get(lang)
			if !errors.Is(entry.Err, context.Canceled) {
				t.Errorf("%s err = %v, want context.Canceled", lang, entry.Err)
			}
			if calls := src.callsFor(lang); len(calls) != 0 {
				t.Errorf("%s fetched %v after cancel", lang, calls)
			}
		}
	})

	t.Run("delay between languages", func(t *testing.T) {
		src := &fakeSource{name: "headhunter", pageSize: 100, fallback: func(string, int) (*models.Page, error) {
			return &models.Page{}, nil
		}}

		start := time.Now()
		NewCollector(src, nil, WithDelay(30*time.Millisecond)).
			Collect(context.Background(), "HeadHunter", []string{"a", "b", "c"})

		if elapsed := time.Since(start); elapsed < 60*time.Millisecond {
			t.Errorf("elapsed = %v, want at least 60ms", elapsed)
		}
	})

	t.Run("delay honours cancellation", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		src := &fakeSource{name: "headhunter", pageSize: 100, fallback: func(string, int) (*models.Page, error) {
			return &models.Page{}, nil
		}}

		start := time.Now()
		report := NewCollector(src, nil, WithDelay(time.Hour)).Collect(ctx, "HeadHunter", []string{"a", "b"})

		if time.Since(start) > 5*time.Second {
			t.Fatal("delay ignored cancellation")
		}
		entry, _ := report.Get("b")
		if !errors.Is(entry.Err, context.DeadlineExceeded) {
			t.Errorf("b err = %v, want context.DeadlineExceeded", entry.Err)
		}
	})
}
