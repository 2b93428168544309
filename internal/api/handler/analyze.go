package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/ferranmarti/scoutdesk/internal/analysis"
	"github.com/ferranmarti/scoutdesk/internal/api/respond"
	"github.com/ferranmarti/scoutdesk/internal/player"
)

// AnalyzeTeamBalance computes a squad balance analysis.
// @Summary Analyze squad balance
// @Description Accepts a JSON array of player objects or {players, player_ids}; identifiers are fetched before analysis. Returns age and phase distributions, balance scores, and recommendations.
// @Tags analysis
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorBody
// @Router /api/analyze-team-balance [post]
func (h *Handler) AnalyzeTeamBalance(w http.ResponseWriter, r *http.Request) {
	squad, fetchErrors, ok := h.assembleSquad(w, r)
	if !ok {
		return
	}

	result, err := analysis.Analyze(squad, h.cfg.Analysis)
	if err != nil {
		writeAnalysisError(w, err)
		return
	}

	out := map[string]interface{}{
		"analysis": result,
		"status":   "success",
	}
	if len(fetchErrors) > 0 {
		out["fetch_errors"] = fetchErrors
	}
	respond.JSON(w, http.StatusOK, out)
}

// CombinedAnalysis computes squad balance plus recruiting needs.
// @Summary Combined squad analysis
// @Description Runs the balance analysis and identifies career phases the squad is materially short of.
// @Tags analysis
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorBody
// @Router /api/combined-analysis [post]
func (h *Handler) CombinedAnalysis(w http.ResponseWriter, r *http.Request) {
	squad, fetchErrors, ok := h.assembleSquad(w, r)
	if !ok {
		return
	}

	result, err := analysis.Analyze(squad, h.cfg.Analysis)
	if err != nil {
		writeAnalysisError(w, err)
		return
	}

	needs := analysis.IdentifyNeeds(result, h.cfg.Analysis)
	if needs == nil {
		needs = []player.Phase{}
	}

	out := map[string]interface{}{
		"squad_analysis":   result,
		"identified_needs": needs,
	}
	if len(fetchErrors) > 0 {
		out["fetch_errors"] = fetchErrors
	}
	respond.JSON(w, http.StatusOK, out)
}

// assembleSquad decodes the request body and resolves any player_ids via
// the orchestrator. Fetch failures degrade to per-identifier entries in
// the returned error map, never a whole-request failure. When ok is
// false an error response has already been written.
func (h *Handler) assembleSquad(w http.ResponseWriter, r *http.Request) ([]player.Record, map[string]string, bool) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "INVALID_BODY", "Failed to read request body")
		return nil, nil, false
	}

	squad, err := decodeSquadBody(body)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "INVALID_BODY", "Expected a JSON array of players or {players, player_ids}")
		return nil, nil, false
	}

	players := squad.Players
	var fetchErrors map[string]string
	if len(squad.PlayerIDs) > 0 {
		results := h.orch.FetchMany(r.Context(), squad.PlayerIDs)
		for id, res := range results {
			if res.Err != nil {
				if fetchErrors == nil {
					fetchErrors = make(map[string]string)
				}
				fetchErrors[id] = res.Err.Error()
				continue
			}
			players = append(players, res.Record)
		}
	}
	return players, fetchErrors, true
}

func writeAnalysisError(w http.ResponseWriter, err error) {
	if errors.Is(err, analysis.ErrEmptySquad) {
		respond.Error(w, http.StatusBadRequest, "EMPTY_SQUAD", "No players to analyze")
		return
	}
	var cfgErr *analysis.ConfigError
	if errors.As(err, &cfgErr) {
		respond.Error(w, http.StatusInternalServerError, "BAD_CONFIG", "Analysis configuration invalid")
		return
	}
	respond.Error(w, http.StatusInternalServerError, "INTERNAL", "Analysis failed")
}
