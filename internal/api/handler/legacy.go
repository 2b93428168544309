package handler

import (
	"encoding/json"
	"fmt"

	"github.com/ferranmarti/scoutdesk/internal/player"
	"github.com/ferranmarti/scoutdesk/internal/provider/transfermarkt"
)

// The scouting frontend predates the canonical schema and expects the raw
// scraper key names ("Full name", "Date of birth/Age", ...). Encoding and
// decoding of that shape is confined to this file.

func legacyRecord(rec *player.Record) map[string]interface{} {
	out := map[string]interface{}{
		"id":          rec.ID,
		"Full name":   rec.FullName,
		"image_url":   rec.ImageURL,
		"careerStats": legacyCareerStats(rec.CareerStats),
		"transfers":   legacyTransfers(rec.Transfers),
	}
	if rec.DateOfBirthAge != "" {
		out["Date of birth/Age"] = rec.DateOfBirthAge
	}
	if rec.Position != "" {
		out["Position"] = rec.Position
	}
	if rec.MarketValue != "" {
		out["Market value"] = rec.MarketValue
	}
	if rec.CurrentClub != "" {
		out["Current club"] = rec.CurrentClub
	}
	return out
}

func legacyCareerStats(stats []player.SeasonStat) []map[string]interface{} {
	rows := make([]map[string]interface{}, 0, len(stats))
	for _, s := range stats {
		rows = append(rows, map[string]interface{}{
			"Season":      s.Season,
			"Club":        s.Club,
			"Competition": s.Competition,
			"Appearances": s.Appearances,
			"Goals":       s.Goals,
			"Assists":     s.Assists,
			"Minutes":     s.Minutes,
		})
	}
	return rows
}

func legacyTransfers(transfers []player.Transfer) []map[string]interface{} {
	rows := make([]map[string]interface{}, 0, len(transfers))
	for _, t := range transfers {
		rows = append(rows, map[string]interface{}{
			"Season":       t.Season,
			"Date":         t.Date,
			"Left":         t.From,
			"Joined":       t.To,
			"Market_Value": t.MarketValue,
			"Fee":          t.Fee,
		})
	}
	return rows
}

// squadBody is the accepted request shape for the analysis endpoints:
// either a bare JSON array of player objects, or an object carrying
// inline players and/or identifiers to fetch.
type squadBody struct {
	Players   []player.Record
	PlayerIDs []string
}

func decodeSquadBody(data []byte) (*squadBody, error) {
	data = trimLeadingSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("empty request body")
	}

	if data[0] == '[' {
		var raw []map[string]interface{}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decode player array: %w", err)
		}
		return &squadBody{Players: normalizeInline(raw)}, nil
	}

	var envelope struct {
		Players   []map[string]interface{} `json:"players"`
		PlayerIDs []string                 `json:"player_ids"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("decode squad body: %w", err)
	}
	return &squadBody{
		Players:   normalizeInline(envelope.Players),
		PlayerIDs: envelope.PlayerIDs,
	}, nil
}

// normalizeInline converts loosely-keyed player objects into canonical
// records. Entries that cannot be normalized are skipped; the legacy
// frontend sends whatever it last scraped and a single bad row must not
// fail the whole analysis. Squad cards arrive without ids, so id-less
// entries get a per-request positional id to keep them distinct through
// the engine's dedupe.
func normalizeInline(raw []map[string]interface{}) []player.Record {
	records := make([]player.Record, 0, len(raw))
	for i, row := range raw {
		rec, err := transfermarkt.NormalizePlayer(row)
		if err != nil {
			continue
		}
		if rec.ID == "" {
			rec.ID = fmt.Sprintf("inline-%d", i)
		}
		records = append(records, rec)
	}
	return records
}

func trimLeadingSpace(data []byte) []byte {
	for len(data) > 0 {
		switch data[0] {
		case ' ', '\t', '\n', '\r':
			data = data[1:]
		default:
			return data
		}
	}
	return data
}
