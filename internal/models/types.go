package models

// SalaryRange represents the salary block of a single listing.
// Either bound may be nil; a range is usable when at least one bound is set.
type SalaryRange struct {
	Min      *int   `json:"min,omitempty"`
	Max      *int   `json:"max,omitempty"`
	Currency string `json:"currency"`
}

// HasBounds reports whether at least one salary bound is present
func (r *SalaryRange) HasBounds() bool {
	return r != nil && (r.Min != nil || r.Max != nil)
}

// Listing represents one vacancy returned by a job service
type Listing struct {
	ID     string       `json:"id"`
	Name   string       `json:"name"`
	Salary *SalaryRange `json:"salary,omitempty"`
}

// Page is one decoded page of search results.
// Pages is zero for services that only report a continuation flag.
type Page struct {
	Listings []Listing `json:"listings"`
	Found    int       `json:"found"`
	Pages    int       `json:"pages"`
	More     bool      `json:"more"`
}

// LanguageStats holds the aggregated salary statistics for one language.
// AverageSalary is nil when no listing was eligible.
type LanguageStats struct {
	VacanciesFound     int  `json:"vacancies_found"`
	VacanciesProcessed int  `json:"vacancies_processed"`
	AverageSalary      *int `json:"average_salary"`
}

// ReportEntry is a single language row of a StatisticsReport
type ReportEntry struct {
	Language string        `json:"language"`
	Stats    LanguageStats `json:"stats"`
	Err      error         `json:"-"`
}

// Failed reports whether the aggregation for this language ended with an error
func (e ReportEntry) Failed() bool {
	return e.Err != nil
}

// StatisticsReport maps languages to their statistics for one service,
// preserving the order in which languages were queried.
type StatisticsReport struct {
	Service string        `json:"service"`
	Title   string        `json:"title"`
	Entries []ReportEntry `json:"entries"`
}

// Add appends an entry for a language
func (r *StatisticsReport) Add(language string, stats LanguageStats, err error) {
	r.Entries = append(r.Entries, ReportEntry{Language: language, Stats: stats, Err: err})
}

// Get returns the entry for a language
func (r *StatisticsReport) Get(language string) (ReportEntry, bool) {
	for _, entry := range r.Entries {
		if entry.Language == language {
			return entry, true
		}
	}
	return ReportEntry{}, false
}

// Languages returns the languages in report order
func (r *StatisticsReport) Languages() []string {
	languages := make([]string, 0, len(r.Entries))
	for _, entry := range r.Entries {
		languages = append(languages, entry.Language)
	}
	return languages
}

// Failed returns the entries that carry an error
func (r *StatisticsReport) Failed() []ReportEntry {
	var failed []ReportEntry
	for _, entry := range r.Entries {
		if entry.Failed() {
			failed = append(failed, entry)
		}
	}
	return failed
}
