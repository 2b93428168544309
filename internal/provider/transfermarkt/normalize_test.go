package transfermarkt

import (
	"encoding/json"
	"testing"
)

func TestNormalizeProfileLegacyKeys(t *testing.T) {
	raw := map[string]any{
		"id":                "28003",
		"Full name":         "Lionel Messi",
		"name":              "L. Messi",
		"Date of birth/Age": "Jun 24, 1987 (37)",
		"Position":          "Right Winger",
		"Market value":      "€25.00m",
		"Current club:":     "Inter Miami CF",
		"image_url":         "https://img.example/28003.jpg",
		"careerStats": []any{
			map[string]any{
				"Season": "23/24", "Club": "Inter Miami", "Competition": "MLS",
				"Appearances": "19", "Goals": "20", "Assists": "11", "Minutes": "1.592'",
			},
		},
		"transfers": []any{
			map[string]any{
				"Season": "23/24", "Date": "Jul 15, 2023", "Left": "PSG",
				"Joined": "Inter Miami", "Market_Value": "€35.00m", "Fee": "free transfer",
			},
		},
	}

	rec, err := NormalizeProfile("28003", raw)
	if err != nil {
		t.Fatalf("NormalizeProfile: %v", err)
	}
	if rec.ID != "28003" {
		t.Errorf("id = %q", rec.ID)
	}
	if rec.FullName != "Lionel Messi" {
		t.Errorf("full name = %q, want full-name key to beat header name", rec.FullName)
	}
	if rec.DateOfBirthAge != "Jun 24, 1987 (37)" {
		t.Errorf("dob/age = %q", rec.DateOfBirthAge)
	}
	if age, ok := rec.Age(); !ok || age != 37 {
		t.Errorf("age = (%d, %v), want (37, true)", age, ok)
	}
	if rec.CurrentClub != "Inter Miami CF" {
		t.Errorf("current club = %q", rec.CurrentClub)
	}
	if rec.MarketValueEUR != 25_000_000 {
		t.Errorf("market value eur = %f", rec.MarketValueEUR)
	}
	if len(rec.CareerStats) != 1 || rec.CareerStats[0].Goals != "20" {
		t.Errorf("career stats = %+v", rec.CareerStats)
	}
	if len(rec.Transfers) != 1 || rec.Transfers[0].From != "PSG" || rec.Transfers[0].Fee != "free transfer" {
		t.Errorf("transfers = %+v", rec.Transfers)
	}
}

func TestNormalizeProfileSnakeKeys(t *testing.T) {
	raw := map[string]any{
		"name":                "Jude Bellingham",
		"date_of_birth/age:":  "Jun 29, 2003 (21)",
		"position":            "Central Midfield",
		"market_value":        "€180.00m",
		"current_club":        "Real Madrid",
	}
	rec, err := NormalizeProfile("581678", raw)
	if err != nil {
		t.Fatalf("NormalizeProfile: %v", err)
	}
	if rec.FullName != "Jude Bellingham" {
		t.Errorf("full name = %q", rec.FullName)
	}
	if age, ok := rec.Age(); !ok || age != 21 {
		t.Errorf("age = (%d, %v)", age, ok)
	}
	if rec.MarketValueEUR != 180_000_000 {
		t.Errorf("market value eur = %f", rec.MarketValueEUR)
	}
}

func TestNormalizeProfileSynonymPreference(t *testing.T) {
	raw := map[string]any{
		"name":          "Erling Haaland",
		"Main position": "Centre-Forward",
		"Position":      "Attack",
		"market_value":  "€150.00m",
		"Market value":  "€180.00m",
		"current_club":  "Man City (old)",
		"Current club:": "Manchester City",
		"Date of birth": "Jul 21, 2000",
		"date of birth/age": "Jul 21, 2000 (26)",
	}
	rec, err := NormalizeProfile("418560", raw)
	if err != nil {
		t.Fatalf("NormalizeProfile: %v", err)
	}
	if rec.Position != "Attack" {
		t.Errorf("position = %q, want the position key to beat main position", rec.Position)
	}
	if rec.MarketValue != "€180.00m" {
		t.Errorf("market value = %q, want the spaced key to win", rec.MarketValue)
	}
	if rec.CurrentClub != "Manchester City" {
		t.Errorf("current club = %q, want the spaced key to win", rec.CurrentClub)
	}
	if rec.DateOfBirthAge != "Jul 21, 2000 (26)" {
		t.Errorf("dob/age = %q, want the value carrying an age", rec.DateOfBirthAge)
	}
}

func TestNormalizeProfileMalformed(t *testing.T) {
	cases := map[string]map[string]any{
		"empty":        {},
		"no name":      {"Position": "Goalkeeper"},
		"unknown name": {"name": "Unknown"},
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := NormalizeProfile("1", raw); err == nil {
				t.Fatal("expected error for malformed profile")
			}
		})
	}
}

func TestNormalizePlayerOptionalID(t *testing.T) {
	// Squad cards post only a name and dob/age string, no id.
	rec, err := NormalizePlayer(map[string]any{
		"Full name":         "Someone",
		"Date of birth/Age": "Jan 1, 2000 (26)",
	})
	if err != nil {
		t.Fatalf("NormalizePlayer: %v", err)
	}
	if rec.ID != "" {
		t.Errorf("id = %q, want empty for caller to assign", rec.ID)
	}
	if rec.FullName != "Someone" {
		t.Errorf("full name = %q", rec.FullName)
	}

	// Numeric ids appear in older client payloads.
	var raw map[string]any
	if err := json.Unmarshal([]byte(`{"id": 12345, "name": "Someone"}`), &raw); err != nil {
		t.Fatal(err)
	}
	rec, err = NormalizePlayer(raw)
	if err != nil {
		t.Fatalf("NormalizePlayer: %v", err)
	}
	if rec.ID != "12345" {
		t.Errorf("id = %q, want numeric id coerced to string", rec.ID)
	}
}
