package extract

import (
	"testing"
	"time"
)

var testNow = time.Date(2026, time.October, 18, 9, 0, 0, 0, time.UTC)

func TestExtractDateOfBirth(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		in      string
		pending int
		want    string
		year    int
		ok      bool
	}{
		{name: "spoken day month year", in: "twenty one ten two thousand five", want: "2005-10-21", ok: true},
		{name: "numeric spaced", in: "21 10 2005", want: "2005-10-21", ok: true},
		{name: "slashes", in: "21/10/2005", want: "2005-10-21", ok: true},
		{name: "month first swapped", in: "12/25/1990", want: "1990-12-25", ok: true},
		{name: "iso", in: "1990-06-15", want: "1990-06-15", ok: true},
		{name: "month name first", in: "January 15, 1990", want: "1990-01-15", ok: true},
		{name: "day of month", in: "the 15th of June 1990", want: "1990-06-15", ok: true},
		{name: "two digit year", in: "5 3 85", want: "1985-03-05", ok: true},
		{name: "year only", in: "I was born in 1990", year: 1990, ok: true},
		{name: "completes pending year", in: "June twenty eighth", pending: 1990, want: "1990-06-28", ok: true},
		{name: "future date", in: "21 10 2030", ok: false},
		{name: "no date", in: "I don't remember", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ExtractDateOfBirth(tt.in, tt.pending, testNow)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if tt.year != 0 {
				if got.YearOnly != tt.year {
					t.Errorf("YearOnly = %d, want %d", got.YearOnly, tt.year)
				}
				return
			}
			if d := got.Date.Format(DateLayout); d != tt.want {
				t.Errorf("date = %s, want %s", d, tt.want)
			}
		})
	}
}

func TestAgeOn(t *testing.T) {
	t.Parallel()
	dob := time.Date(2005, time.October, 21, 0, 0, 0, 0, time.UTC)
	if got := AgeOn(dob, testNow); got != 20 {
		t.Errorf("AgeOn = %d, want 20", got)
	}
	dob = time.Date(1990, time.June, 15, 0, 0, 0, 0, time.UTC)
	if got := AgeOn(dob, testNow); got != 36 {
		t.Errorf("AgeOn = %d, want 36", got)
	}
}

func TestExtractAge(t *testing.T) {
	t.Parallel()
	for in, want := range map[string]int{
		"I am thirty five years old": 35,
		"age 42":                     42,
		"I'm 19":                     19,
	} {
		got, ok := ExtractAge(in)
		if !ok || got != want {
			t.Errorf("ExtractAge(%q) = %d, %v; want %d", in, got, ok, want)
		}
	}
	if _, ok := ExtractAge("no idea"); ok {
		t.Error("expected no age")
	}
}
