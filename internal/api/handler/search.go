package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/ferranmarti/scoutdesk/internal/api/respond"
	"github.com/ferranmarti/scoutdesk/internal/player"
	"github.com/ferranmarti/scoutdesk/internal/provider"
)

// SearchPlayer proxies a name search to the upstream gateway.
// @Summary Search players by name
// @Description Searches the upstream data source and returns lightweight candidates.
// @Tags players
// @Produce json
// @Param name query string true "Player name (minimum length enforced)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorBody
// @Failure 502 {object} respond.ErrorBody
// @Failure 504 {object} respond.ErrorBody
// @Router /api/search-player [get]
func (h *Handler) SearchPlayer(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if utf8.RuneCountInString(name) < h.cfg.MinQueryLen {
		respond.Error(w, http.StatusBadRequest, "INVALID_QUERY",
			fmt.Sprintf("Query must be at least %d characters", h.cfg.MinQueryLen))
		return
	}

	candidates, err := h.searcher.Search(r.Context(), name)
	if err != nil {
		if errors.Is(err, provider.ErrInvalidQuery) {
			respond.Error(w, http.StatusBadRequest, "INVALID_QUERY", "Invalid search query")
			return
		}
		h.logger.Error("search failed", "query", name, "error", err)
		writeFetchError(w, err)
		return
	}

	if candidates == nil {
		candidates = []player.Candidate{}
	}
	respond.JSON(w, http.StatusOK, map[string]interface{}{
		"search_results": candidates,
	})
}
