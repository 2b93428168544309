// Package player defines the canonical player data model shared by the
// store, fetch orchestrator, analytics engine, and API layer. Upstream
// key naming is inconsistent across scraper versions; everything behind
// the provider adapter speaks only these types.
package player

import (
	"regexp"
	"strconv"
	"strings"
)

// Record is the canonical, normalized form of a scraped player profile.
// ID is immutable once assigned; every other field is overwritten on
// re-fetch.
type Record struct {
	ID             string       `json:"id"`
	FullName       string       `json:"full_name"`
	ImageURL       string       `json:"image_url,omitempty"`
	CurrentClub    string       `json:"current_club,omitempty"`
	Position       string       `json:"position,omitempty"`
	MarketValue    string       `json:"market_value,omitempty"`
	MarketValueEUR float64      `json:"market_value_eur,omitempty"`
	DateOfBirthAge string       `json:"date_of_birth_age,omitempty"`
	CareerStats    []SeasonStat `json:"career_stats,omitempty"`
	Transfers      []Transfer   `json:"transfers,omitempty"`
}

// SeasonStat is one row of a player's per-season performance data,
// most-recent-first. Values stay as the display strings the source
// publishes ("-", "1.344'", etc.).
type SeasonStat struct {
	Season      string `json:"season"`
	Club        string `json:"club"`
	Competition string `json:"competition"`
	Appearances string `json:"appearances"`
	Goals       string `json:"goals"`
	Assists     string `json:"assists"`
	Minutes     string `json:"minutes"`
}

// Transfer is one transfer event in a player's history.
type Transfer struct {
	Season      string `json:"season"`
	Date        string `json:"date"`
	From        string `json:"from"`
	To          string `json:"to"`
	MarketValue string `json:"market_value"`
	Fee         string `json:"fee"`
}

// Candidate is the lightweight search projection. It is insufficient
// for analytics; callers upgrade it to a Record via the orchestrator.
type Candidate struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ImageURL    string `json:"image_url,omitempty"`
	Position    string `json:"position,omitempty"`
	Age         string `json:"age,omitempty"`
	Nationality string `json:"nationality,omitempty"`
	CurrentTeam string `json:"current_team,omitempty"`
	MarketValue string `json:"market_value,omitempty"`
}

var parenAge = regexp.MustCompile(`\((\d+)\)`)

// ParseAge extracts an age from a combined date-of-birth/age string
// such as "Jun 24, 1987 (37)". The rule is: take the last parenthesized
// integer in the string. ok is false when no such integer exists; an
// unknown age is unknown, never zero.
func ParseAge(s string) (age int, ok bool) {
	matches := parenAge.FindAllStringSubmatch(s, -1)
	if len(matches) == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(matches[len(matches)-1][1])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// Age extracts the player's age from the DateOfBirthAge field.
func (r Record) Age() (int, bool) {
	return ParseAge(r.DateOfBirthAge)
}

// AgeBucket partitions known ages into four squad-composition groups.
type AgeBucket string

const (
	AgeU21    AgeBucket = "u21"
	Age21to25 AgeBucket = "21_25"
	Age26to29 AgeBucket = "26_29"
	Age30Plus AgeBucket = "30_plus"
)

// AgeBucketOrder is the canonical iteration order for deterministic
// output (maps do not iterate deterministically).
var AgeBucketOrder = []AgeBucket{AgeU21, Age21to25, Age26to29, Age30Plus}

// AgeBucketOf maps a known age to its bucket.
func AgeBucketOf(age int) AgeBucket {
	switch {
	case age < 21:
		return AgeU21
	case age <= 25:
		return Age21to25
	case age <= 29:
		return Age26to29
	default:
		return Age30Plus
	}
}

// Phase is a career phase derived from age.
type Phase string

const (
	PhaseBreakthrough Phase = "breakthrough"
	PhaseDevelopment  Phase = "development"
	PhasePeak         Phase = "peak"
	PhaseTwilight     Phase = "twilight"
)

// PhaseOrder is the canonical iteration order for phases.
var PhaseOrder = []Phase{PhaseBreakthrough, PhaseDevelopment, PhasePeak, PhaseTwilight}

// PhaseMapper maps a known age to a career phase. The mapping is a
// policy input, injected so callers and tests can pin the thresholds.
type PhaseMapper func(age int) Phase

// DefaultPhaseMapper uses the thresholds the scouting side has always
// worked with: breakthrough below 21, development 21-24, peak 25-29,
// twilight from 30.
func DefaultPhaseMapper(age int) Phase {
	switch {
	case age < 21:
		return PhaseBreakthrough
	case age <= 24:
		return PhaseDevelopment
	case age <= 29:
		return PhasePeak
	default:
		return PhaseTwilight
	}
}

// ParseMarketValue converts a display market value such as "€25.00m"
// or "€800k" into euros. ok is false for unparseable or empty input
// ("-", "Unknown").
func ParseMarketValue(s string) (eur float64, ok bool) {
	v := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "€")))
	if v == "" || v == "-" {
		return 0, false
	}
	mult := 1.0
	switch {
	case strings.HasSuffix(v, "m"):
		mult, v = 1e6, strings.TrimSuffix(v, "m")
	case strings.HasSuffix(v, "k"):
		mult, v = 1e3, strings.TrimSuffix(v, "k")
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || f < 0 {
		return 0, false
	}
	return f * mult, true
}

// Dedupe returns records unique by ID, keeping the first occurrence and
// preserving input order. Records without an id are never collapsed
// against each other; there is no basis for treating them as the same
// player.
func Dedupe(records []Record) []Record {
	seen := make(map[string]struct{}, len(records))
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if r.ID != "" {
			if _, dup := seen[r.ID]; dup {
				continue
			}
			seen[r.ID] = struct{}{}
		}
		out = append(out, r)
	}
	return out
}
