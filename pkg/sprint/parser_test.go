package sprint

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParse_MonthNames(t *testing.T) {
	tests := []struct {
		name      string
		label     string
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "three letter months with sprint prefix",
			label:     "Sprint 68 oct 13 - oct 26",
			wantStart: date(2024, time.October, 13),
			wantEnd:   date(2024, time.October, 26),
		},
		{
			name:      "full month names",
			label:     "October 1 - November 15",
			wantStart: date(2024, time.October, 1),
			wantEnd:   date(2024, time.November, 15),
		},
		{
			name:      "mixed case",
			label:     "DEC 30 - Jan 12",
			wantStart: date(2024, time.December, 30),
			wantEnd:   date(2024, time.January, 12),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.label, 2024)
			if got == nil {
				t.Fatalf("Parse(%q) = nil, want range", tt.label)
			}
			if !got.Start.Equal(tt.wantStart) || !got.End.Equal(tt.wantEnd) {
				t.Errorf("Parse(%q) = %v - %v, want %v - %v",
					tt.label, got.Start, got.End, tt.wantStart, tt.wantEnd)
			}
			if got.Approximate {
				t.Errorf("Parse(%q) marked approximate for known month names", tt.label)
			}
		})
	}
}

func TestParse_Numeric(t *testing.T) {
	got := Parse("10/13 - 10/26", 2024)
	if got == nil {
		t.Fatal("Parse() = nil, want range")
	}
	if !got.Start.Equal(date(2024, time.October, 13)) {
		t.Errorf("start = %v, want 2024-10-13", got.Start)
	}
	if !got.End.Equal(date(2024, time.October, 26)) {
		t.Errorf("end = %v, want 2024-10-26", got.End)
	}
}

func TestParse_NumericMonthOutOfRange(t *testing.T) {
	if got := Parse("13/1 - 14/2", 2024); got != nil {
		t.Errorf("Parse() = %v, want nil for month > 12", got)
	}
}

func TestParse_ISOPair(t *testing.T) {
	got := Parse("2024-10-13 to 2024-10-26", 2025)
	if got == nil {
		t.Fatal("Parse() = nil, want range")
	}
	// The ISO grammar carries its own year; the argument is ignored.
	if !got.Start.Equal(date(2024, time.October, 13)) || !got.End.Equal(date(2024, time.October, 26)) {
		t.Errorf("Parse() = %v - %v, want 2024-10-13 - 2024-10-26", got.Start, got.End)
	}
}

func TestParse_UnknownMonthDefaultsToJanuary(t *testing.T) {
	// Unrecognized month names fall back to January with the range
	// flagged approximate. This mirrors how boards tolerate typos in
	// sprint labels; it is deliberate, observable behavior.
	got := Parse("Sprint 3 octubre 1 - octubre 14", 2024)
	if got == nil {
		t.Fatal("Parse() = nil, want approximate range")
	}
	if got.Start.Month() != time.January || got.End.Month() != time.January {
		t.Errorf("months = %v/%v, want January fallback", got.Start.Month(), got.End.Month())
	}
	if !got.Approximate {
		t.Error("Approximate = false, want true for unknown month name")
	}
}

func TestParse_Malformed(t *testing.T) {
	tests := []string{
		"",
		"Sprint 68",
		"next sprint",
		"2024-10-13 until 2024-10-26",
	}
	for _, label := range tests {
		if got := Parse(label, 2024); got != nil {
			t.Errorf("Parse(%q) = %v, want nil", label, got)
		}
	}
}

func TestParse_GrammarOrder(t *testing.T) {
	// A label matching both the month-name and numeric grammars picks
	// the month-name result because that grammar is tried first.
	got := Parse("oct 1 - oct 5 (10/6 - 10/10)", 2024)
	if got == nil {
		t.Fatal("Parse() = nil, want range")
	}
	if got.Start.Day() != 1 || got.End.Day() != 5 {
		t.Errorf("range = %v - %v, want month-name grammar to win", got.Start, got.End)
	}
}
