package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/storyforge/core/logger"
)

func (h *handlers) listCommands(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.dispatcher.GetActiveCommands())
}

func (h *handlers) getCommand(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.dispatcher.Get(chi.URLParam(r, "runID"))
	if !ok {
		writeError(w, http.StatusNotFound, "command not found")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *handlers) cancelCommand(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")
	cancelled := h.dispatcher.Cancel(runID)

	h.logger.InfoContext(r.Context(), "cancel requested",
		logger.Component("api"),
		logger.RunID(runID),
		logger.Key("cancelled", cancelled))

	writeJSON(w, http.StatusOK, map[string]bool{"cancelled": cancelled})
}

func (h *handlers) getProgress(w http.ResponseWriter, r *http.Request) {
	log, err := h.tracker.Log(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to read progress",
			logger.Component("api"),
			logger.Error(err))
		writeError(w, http.StatusServiceUnavailable, "progress unavailable")
		return
	}
	writeJSON(w, http.StatusOK, log)
}
