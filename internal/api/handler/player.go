package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ferranmarti/scoutdesk/internal/api/respond"
	"github.com/ferranmarti/scoutdesk/internal/player"
	"github.com/ferranmarti/scoutdesk/internal/provider"
)

// GetPlayer returns a full player record, fetching from upstream on a miss.
// @Summary Get player by ID
// @Description Returns the full player record in the legacy scraped-key shape. Pass refresh=1 to bypass the store.
// @Tags players
// @Produce json
// @Param playerID path string true "Player identifier"
// @Param refresh query string false "Set to 1 to force a fresh upstream fetch"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} respond.ErrorBody
// @Failure 502 {object} respond.ErrorBody
// @Failure 504 {object} respond.ErrorBody
// @Router /api/player/{playerID} [get]
func (h *Handler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "playerID")

	record, err := h.lookupPlayer(r, id)
	if err != nil {
		h.logger.Warn("player fetch failed", "id", id, "error", err)
		writeFetchError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, legacyRecord(&record))
}

func (h *Handler) lookupPlayer(r *http.Request, id string) (player.Record, error) {
	if r.URL.Query().Get("refresh") == "1" {
		return h.store.Refresh(r.Context(), id)
	}
	return h.store.GetOrFetch(r.Context(), id)
}

// ParallelPlayers fetches a batch of players concurrently.
// @Summary Fetch multiple players in parallel
// @Description Accepts a JSON array of player identifiers and returns a per-identifier result map. Individual failures are reported per entry, never as a whole-request error.
// @Tags players
// @Accept json
// @Produce json
// @Param ids body []string true "Player identifiers"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorBody
// @Router /api/parallel/players [post]
func (h *Handler) ParallelPlayers(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "INVALID_BODY", "Failed to read request body")
		return
	}

	var ids []string
	if err := json.Unmarshal(body, &ids); err != nil {
		// Tolerate the envelope form the frontend sometimes sends.
		var envelope struct {
			PlayerIDs []string `json:"player_ids"`
		}
		if err2 := json.Unmarshal(body, &envelope); err2 != nil || envelope.PlayerIDs == nil {
			respond.Error(w, http.StatusBadRequest, "INVALID_BODY", "Expected a JSON array of player identifiers")
			return
		}
		ids = envelope.PlayerIDs
	}

	results := h.orch.FetchMany(r.Context(), ids)

	out := make(map[string]interface{}, len(results))
	for id, res := range results {
		if res.Err != nil {
			out[id] = map[string]interface{}{
				"status": "error",
				"error":  res.Err.Error(),
			}
			continue
		}
		entry := legacyRecord(&res.Record)
		entry["status"] = "success"
		out[id] = entry
	}
	respond.JSON(w, http.StatusOK, out)
}

// writeFetchError maps provider errors onto HTTP statuses.
func writeFetchError(w http.ResponseWriter, err error) {
	if fe, ok := provider.AsFetchError(err); ok {
		switch fe.Cause {
		case provider.CauseNotFound:
			respond.Error(w, http.StatusNotFound, "NOT_FOUND", "Player not found")
		case provider.CauseTimeout:
			respond.Error(w, http.StatusGatewayTimeout, "UPSTREAM_TIMEOUT", "Upstream data source timed out")
		case provider.CauseMalformed:
			respond.Error(w, http.StatusBadGateway, "UPSTREAM_MALFORMED", "Upstream returned malformed data")
		default:
			respond.Error(w, http.StatusBadGateway, "UPSTREAM_ERROR", "Upstream data source unavailable")
		}
		return
	}
	respond.Error(w, http.StatusInternalServerError, "INTERNAL", "Internal server error")
}
