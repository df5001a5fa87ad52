package ui

import (
	"fmt"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"

	"github.com/fr4nk3nst1ner/salarystats/internal/models"
	"github.com/fr4nk3nst1ner/salarystats/internal/scraper"
)

// Markers shown in the average salary column
const (
	// NoData is shown when no listing had a usable salary
	NoData = "n/a"
	// FailedMarker is shown when the language ended with an error,
	// followed by the error kind when one is known
	FailedMarker = "failed"
)

// TableHeader is the first row of every report table
var TableHeader = []string{"Language", "Vacancies found", "Vacancies processed", "Average salary"}

// BuildRows projects a report into table rows, header first, languages in report order.
func BuildRows(report *models.StatisticsReport) [][]string {
	rows := make([][]string, 0, len(report.Entries)+1)
	rows = append(rows, TableHeader)

	for _, entry := range report.Entries {
		rows = append(rows, []string{
			entry.Language,
			strconv.Itoa(entry.Stats.VacanciesFound),
			strconv.Itoa(entry.Stats.VacanciesProcessed),
			averageCell(entry, func(v int) string { return humanize.Comma(int64(v)) }),
		})
	}
	return rows
}

// RenderReport writes the report title and a boxed table with colored salaries.
func RenderReport(w io.Writer, report *models.StatisticsReport) error {
	rows := BuildRows(report)
	for i, entry := range report.Entries {
		rows[i+1][3] = averageCell(entry, ColorizeSalary)
	}

	title := report.Title
	if title == "" {
		title = report.Service
	}

	table, err := pterm.DefaultTable.
		WithHasHeader().
		WithBoxed().
		WithData(pterm.TableData(rows)).
		Srender()
	if err != nil {
		return fmt.Errorf("render %s table: %w", report.Service, err)
	}

	if _, err := fmt.Fprint(w, pterm.DefaultSection.Sprint(title)); err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, table)
	return err
}

func averageCell(entry models.ReportEntry, format func(int) string) string {
	if entry.Failed() {
		if kind := scraper.ErrorKind(entry.Err); kind != "" {
			return FailedMarker + ": " + kind
		}
		return FailedMarker
	}
	if entry.Stats.AverageSalary == nil {
		return NoData
	}
	return format(*entry.Stats.AverageSalary)
}
