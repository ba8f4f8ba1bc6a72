// Package extract provides the field extractors of the pipeline. Each
// extractor operates on a parsed HTML scope (a full document or a single
// card element) and resolves missing or malformed markup to an absent or
// empty value instead of failing, so one bad field never discards an
// otherwise-good record.
package extract

import (
	"regexp"
	"strconv"
	"strings"
)

var digitRun = regexp.MustCompile(`\d+`)

// CleanText collapses runs of whitespace into single spaces and trims.
func CleanText(s string) string {
	return strings.TrimSpace(strings.Join(strings.Fields(s), " "))
}

// FirstInt parses the first run of digits in s after stripping thousands
// separators. Returns nil when no digits are present.
func FirstInt(s string) *int {
	if s == "" {
		return nil
	}
	m := digitRun.FindString(strings.ReplaceAll(s, ",", ""))
	if m == "" {
		return nil
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return nil
	}
	return &n
}

// ParseFloat parses s as a float. Returns nil on failure rather than erroring.
func ParseFloat(s string) *float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	return &f
}
