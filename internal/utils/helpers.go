package utils

import (
	"strings"

	"github.com/dustin/go-humanize"
)

const (
	// Multipliers used when only one salary bound is published
	maxOnlyFactor = 0.8
	minOnlyFactor = 1.2
)

// Source identifiers accepted on the command line
const (
	SourceAll        = "all"
	SourceHeadHunter = "hh"
	SourceSuperJob   = "sj"
)

// PredictSalary converts a salary range into a single representative value.
// ok is false when neither bound is present and the listing must be skipped.
func PredictSalary(minSalary, maxSalary *int) (int, bool) {
	switch {
	case minSalary != nil && maxSalary != nil:
		return int(float64(*minSalary+*maxSalary) / 2), true
	case maxSalary != nil:
		return int(float64(*maxSalary) * maxOnlyFactor), true
	case minSalary != nil:
		return int(float64(*minSalary) * minOnlyFactor), true
	default:
		return 0, false
	}
}

// AverageSalary returns the integer mean of the estimates, or nil when there are none
func AverageSalary(salaries []int) *int {
	if len(salaries) == 0 {
		return nil
	}

	var sum int64
	for _, s := range salaries {
		sum += int64(s)
	}
	avg := int(sum / int64(len(salaries)))
	return &avg
}

// PositiveOrNil drops zero and negative bounds, which services use for "not specified"
func PositiveOrNil(v *int) *int {
	if v == nil || *v <= 0 {
		return nil
	}
	value := *v
	return &value
}

// FormatSalary formats a salary with thousands separators
func FormatSalary(salary int) string {
	return humanize.Comma(int64(salary))
}

// IsValidSource checks if the source is supported
func IsValidSource(source string) bool {
	validSources := map[string]bool{
		SourceAll:        true,
		SourceHeadHunter: true,
		SourceSuperJob:   true,
	}
	return validSources[strings.ToLower(source)]
}

// SplitList splits a comma separated list and drops empty items
func SplitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
