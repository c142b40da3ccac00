package importer

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// excelEpochOffsetDays is the number of days between the spreadsheet serial
// epoch (1899-12-30) and the Unix epoch.
const excelEpochOffsetDays = 25569

const canonicalDateLayout = "2006-01-02"

// dayFirstPattern matches DD-MM-YYYY and DD/MM/YYYY. Two-digit groups are
// always read day-first; MM-DD input is not auto-detected. That is shop
// policy (the workbooks are Indonesian), not an oversight.
var dayFirstPattern = regexp.MustCompile(`^(\d{1,2})[-/](\d{1,2})[-/](\d{4})$`)

var genericDateLayouts = []string{
	canonicalDateLayout,
	"2006/01/02",
	"2 January 2006",
	"January 2, 2006",
	time.RFC3339,
}

// NormalizeDate converts one spreadsheet cell into a canonical YYYY-MM-DD
// string. Native date values keep their local calendar day, numbers are
// treated as spreadsheet serial dates, and strings are tried day-first
// before generic layouts. Anything unparseable falls back to today rather
// than failing the row.
func NormalizeDate(cell any) string {
	return normalizeDate(cell, time.Now())
}

func normalizeDate(cell any, now time.Time) string {
	switch v := cell.(type) {
	case time.Time:
		return formatYMD(v.Year(), int(v.Month()), v.Day())
	case float64:
		return serialToDate(v)
	case int:
		return serialToDate(float64(v))
	case string:
		return normalizeDateString(v, now)
	default:
		return now.Format(canonicalDateLayout)
	}
}

func normalizeDateString(raw string, now time.Time) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return now.Format(canonicalDateLayout)
	}

	if groups := dayFirstPattern.FindStringSubmatch(trimmed); groups != nil {
		day, _ := strconv.Atoi(groups[1])
		month, _ := strconv.Atoi(groups[2])
		year, _ := strconv.Atoi(groups[3])
		if validDate(year, month, day) {
			return formatYMD(year, month, day)
		}
		return now.Format(canonicalDateLayout)
	}

	// Serial dates survive some exports as plain digit strings.
	if serial, err := strconv.ParseFloat(trimmed, 64); err == nil && serial > 0 {
		return serialToDate(serial)
	}

	for _, layout := range genericDateLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return formatYMD(parsed.Year(), int(parsed.Month()), parsed.Day())
		}
	}

	return now.Format(canonicalDateLayout)
}

func serialToDate(serial float64) string {
	seconds := int64((serial - excelEpochOffsetDays) * 86400)
	return time.Unix(seconds, 0).UTC().Format(canonicalDateLayout)
}

func validDate(year, month, day int) bool {
	if year < 1000 || month < 1 || month > 12 || day < 1 {
		return false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return t.Year() == year && int(t.Month()) == month && t.Day() == day
}

func formatYMD(year, month, day int) string {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC).Format(canonicalDateLayout)
}
