package player

import "testing"

func TestParseAge(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
		ok    bool
	}{
		{"standard", "Jun 24, 1987 (37)", 37, true},
		{"teenager", "Feb 2, 2006 (18)", 18, true},
		{"age only", "(29)", 29, true},
		{"multiple parens takes last", "Lionel (junior) Jun 24, 1987 (37)", 37, true},
		{"no parens", "Jun 24, 1987", 0, false},
		{"bare number is not an age", "29", 0, false},
		{"empty", "", 0, false},
		{"whitespace", "   ", 0, false},
		{"non-numeric parens", "(unknown)", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseAge(tt.input)
			if ok != tt.ok || got != tt.want {
				t.Fatalf("ParseAge(%q) = (%d, %v), want (%d, %v)", tt.input, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestAgeBucketOf(t *testing.T) {
	tests := []struct {
		age  int
		want AgeBucket
	}{
		{17, AgeU21},
		{20, AgeU21},
		{21, Age21to25},
		{25, Age21to25},
		{26, Age26to29},
		{29, Age26to29},
		{30, Age30Plus},
		{41, Age30Plus},
	}
	for _, tt := range tests {
		if got := AgeBucketOf(tt.age); got != tt.want {
			t.Errorf("AgeBucketOf(%d) = %s, want %s", tt.age, got, tt.want)
		}
	}
}

func TestDefaultPhaseMapper(t *testing.T) {
	tests := []struct {
		age  int
		want Phase
	}{
		{18, PhaseBreakthrough},
		{20, PhaseBreakthrough},
		{21, PhaseDevelopment},
		{24, PhaseDevelopment},
		{25, PhasePeak},
		{29, PhasePeak},
		{30, PhaseTwilight},
		{38, PhaseTwilight},
	}
	for _, tt := range tests {
		if got := DefaultPhaseMapper(tt.age); got != tt.want {
			t.Errorf("DefaultPhaseMapper(%d) = %s, want %s", tt.age, got, tt.want)
		}
	}
}

func TestParseMarketValue(t *testing.T) {
	tests := []struct {
		input string
		want  float64
		ok    bool
	}{
		{"€25.00m", 25_000_000, true},
		{"€800k", 800_000, true},
		{"€1.5m", 1_500_000, true},
		{"25m", 25_000_000, true},
		{"120", 120, true},
		{"-", 0, false},
		{"", 0, false},
		{"Unknown", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseMarketValue(tt.input)
		if ok != tt.ok {
			t.Errorf("ParseMarketValue(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("ParseMarketValue(%q) = %f, want %f", tt.input, got, tt.want)
		}
	}
}

func TestDedupe(t *testing.T) {
	in := []Record{{ID: "1", FullName: "first"}, {ID: "2"}, {ID: "1", FullName: "dup"}}
	out := Dedupe(in)
	if len(out) != 2 {
		t.Fatalf("expected 2 records, got %d", len(out))
	}
	if out[0].FullName != "first" {
		t.Fatalf("expected first occurrence to win, got %q", out[0].FullName)
	}
	if out[1].ID != "2" {
		t.Fatalf("expected input order preserved")
	}
}

func TestDedupeKeepsRecordsWithoutID(t *testing.T) {
	in := []Record{{FullName: "a"}, {FullName: "b"}, {ID: "1"}, {FullName: "c"}}
	out := Dedupe(in)
	if len(out) != 4 {
		t.Fatalf("expected id-less records kept distinct, got %d of 4", len(out))
	}
}
