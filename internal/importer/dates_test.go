package importer

import (
	"testing"
	"time"
)

var fixedNow = time.Date(2026, time.August, 31, 10, 0, 0, 0, time.UTC)

func TestNormalizeDateStrings(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{name: "canonical passes through", in: "2023-03-15", want: "2023-03-15"},
		{name: "day first with dashes", in: "08-01-2026", want: "2026-01-08"},
		{name: "day first with slashes", in: "8/1/2026", want: "2026-01-08"},
		{name: "slash separated ymd", in: "2024/02/29", want: "2024-02-29"},
		{name: "long form", in: "15 January 2025", want: "2025-01-15"},
		{name: "serial as digit string", in: "45000", want: "2023-03-15"},
		{name: "surrounding whitespace", in: "  2023-03-15  ", want: "2023-03-15"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := normalizeDate(tc.in, fixedNow)
			if got != tc.want {
				t.Fatalf("normalizeDate(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalizeDateIsIdempotent(t *testing.T) {
	inputs := []string{"08-01-2026", "45000", "15 January 2025", "2023-03-15"}
	for _, in := range inputs {
		once := normalizeDate(in, fixedNow)
		twice := normalizeDate(once, fixedNow)
		if once != twice {
			t.Fatalf("normalizing %q twice changed the value: %q then %q", in, once, twice)
		}
	}
}

func TestNormalizeDateSerialNumbers(t *testing.T) {
	t.Run("float serial", func(t *testing.T) {
		if got := normalizeDate(45000.0, fixedNow); got != "2023-03-15" {
			t.Fatalf("serial 45000 = %q, want 2023-03-15", got)
		}
	})
	t.Run("int serial", func(t *testing.T) {
		if got := normalizeDate(45001, fixedNow); got != "2023-03-16" {
			t.Fatalf("serial 45001 = %q, want 2023-03-16", got)
		}
	})
}

func TestNormalizeDateNativeTime(t *testing.T) {
	// The calendar day must survive regardless of the value's zone.
	jakarta := time.FixedZone("WIB", 7*3600)
	in := time.Date(2025, time.December, 31, 23, 30, 0, 0, jakarta)
	if got := normalizeDate(in, fixedNow); got != "2025-12-31" {
		t.Fatalf("native time = %q, want 2025-12-31", got)
	}
}

func TestNormalizeDateFallsBackToToday(t *testing.T) {
	today := fixedNow.Format("2006-01-02")
	cases := []any{"", "not a date", "99-99-2026", nil, struct{}{}}
	for _, in := range cases {
		if got := normalizeDate(in, fixedNow); got != today {
			t.Fatalf("normalizeDate(%v) = %q, want fallback %q", in, got, today)
		}
	}
}
