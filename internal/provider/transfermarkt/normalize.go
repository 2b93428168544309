package transfermarkt

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ferranmarti/scoutdesk/internal/player"
)

// Raw profile keys drift between scraper versions: "Full name",
// "Date of birth/Age", "date_of_birth/age:", and so on. This adapter is
// the only code allowed to read raw keys; everything downstream sees
// the canonical player.Record.

// Synonym key preference per canonical field, most authoritative first.
// Resolution always walks these lists in order, so which field wins
// never depends on map iteration order.
var (
	fullNameKeys       = []string{"full name", "name", "name in home country"}
	dateOfBirthAgeKeys = []string{"date of birth/age", "date_of_birth/age", "date of birth"}
	positionKeys       = []string{"position", "main position"}
	marketValueKeys    = []string{"market value", "market_value"}
	currentClubKeys    = []string{"current club", "current_club"}
	imageURLKeys       = []string{"image_url", "imageurl"}
)

func lookupKey(raw string) string {
	return strings.TrimSuffix(strings.TrimSpace(strings.ToLower(raw)), ":")
}

// normalizeKeys flattens a raw profile into lookup-normalized keys with
// string values. Raw keys are visited in sorted order so collisions
// (e.g. "Position" next to "position:") resolve deterministically.
func normalizeKeys(raw map[string]any) map[string]string {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	norm := make(map[string]string, len(raw))
	for _, k := range keys {
		lk := lookupKey(k)
		if _, exists := norm[lk]; exists {
			continue
		}
		if s := asString(raw[k]); s != "" {
			norm[lk] = s
		}
	}
	return norm
}

// firstOf returns the first non-empty value among the given normalized
// keys, in preference order.
func firstOf(norm map[string]string, keys []string) string {
	for _, k := range keys {
		if v := norm[k]; v != "" {
			return v
		}
	}
	return ""
}

// pickDateOfBirthAge prefers a value carrying a parenthesized age over
// a bare birth date, then falls back to key preference order.
func pickDateOfBirthAge(norm map[string]string) string {
	var fallback string
	for _, k := range dateOfBirthAgeKeys {
		v := norm[k]
		if v == "" {
			continue
		}
		if strings.Contains(v, "(") {
			return v
		}
		if fallback == "" {
			fallback = v
		}
	}
	return fallback
}

// NormalizeProfile validates a raw gateway profile and maps it onto the
// canonical record. A profile without a usable name is malformed.
func NormalizeProfile(id string, raw map[string]any) (player.Record, error) {
	if len(raw) == 0 {
		return player.Record{}, errors.New("empty profile")
	}

	norm := normalizeKeys(raw)
	rec := player.Record{
		ID:             id,
		FullName:       firstOf(norm, fullNameKeys),
		DateOfBirthAge: pickDateOfBirthAge(norm),
		Position:       firstOf(norm, positionKeys),
		MarketValue:    firstOf(norm, marketValueKeys),
		CurrentClub:    firstOf(norm, currentClubKeys),
		ImageURL:       firstOf(norm, imageURLKeys),
	}

	if rec.FullName == "" || strings.EqualFold(rec.FullName, "unknown") {
		return player.Record{}, fmt.Errorf("profile for %s has no player name", id)
	}

	if eur, ok := player.ParseMarketValue(rec.MarketValue); ok {
		rec.MarketValueEUR = eur
	}
	rec.CareerStats = normalizeCareerStats(raw["careerStats"])
	rec.Transfers = normalizeTransfers(raw["transfers"])
	return rec, nil
}

// NormalizePlayer normalizes a loose player object posted by legacy
// analysis callers. The id is optional: the frontend's squad cards post
// only a name and a date-of-birth/age string, so a missing id yields a
// record with an empty ID for the caller to assign.
func NormalizePlayer(raw map[string]any) (player.Record, error) {
	return NormalizeProfile(asString(raw["id"]), raw)
}

func normalizeCareerStats(v any) []player.SeasonStat {
	rows, ok := v.([]any)
	if !ok {
		return nil
	}
	stats := make([]player.SeasonStat, 0, len(rows))
	for _, r := range rows {
		row, ok := r.(map[string]any)
		if !ok {
			continue
		}
		stats = append(stats, player.SeasonStat{
			Season:      pick(row, "Season", "season"),
			Club:        pick(row, "Club", "club"),
			Competition: pick(row, "Competition", "competition"),
			Appearances: pick(row, "Appearances", "appearances"),
			Goals:       pick(row, "Goals", "goals"),
			Assists:     pick(row, "Assists", "assists"),
			Minutes:     pick(row, "Minutes", "minutes"),
		})
	}
	if len(stats) == 0 {
		return nil
	}
	return stats
}

func normalizeTransfers(v any) []player.Transfer {
	rows, ok := v.([]any)
	if !ok {
		return nil
	}
	transfers := make([]player.Transfer, 0, len(rows))
	for _, r := range rows {
		row, ok := r.(map[string]any)
		if !ok {
			continue
		}
		transfers = append(transfers, player.Transfer{
			Season:      pick(row, "Season", "season"),
			Date:        pick(row, "Date", "date"),
			From:        pick(row, "Left", "from", "left"),
			To:          pick(row, "Joined", "to", "joined"),
			MarketValue: pick(row, "Market_Value", "Market value", "market_value"),
			Fee:         pick(row, "Fee", "fee"),
		})
	}
	if len(transfers) == 0 {
		return nil
	}
	return transfers
}

// pick returns the first non-empty value among the given raw keys.
func pick(row map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := asString(row[k]); s != "" {
			return s
		}
	}
	return ""
}

// asString coerces loosely-typed upstream values to a trimmed string.
// Scraper versions disagree on whether numerics arrive as strings.
func asString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}
