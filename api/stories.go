package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmitrymomot/storyforge/core/command"
	"github.com/dmitrymomot/storyforge/core/logger"
	"github.com/dmitrymomot/storyforge/pipeline"
)

type createStoryRequest struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Premise      string `json:"premise"`
	ChapterCount int    `json:"chapter_count"`
	Voice        string `json:"voice"`
}

// enqueueRequest carries the optional per-run overrides.
type enqueueRequest struct {
	RunID    string `json:"run_id"`
	Priority *int   `json:"priority"`
	Retries  *int   `json:"retries"`
	Voice    string `json:"voice"`
}

type enqueueResponse struct {
	RunID string `json:"run_id"`
}

func (h *handlers) listStories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.stories.List(r.Context()))
}

func (h *handlers) getStory(w http.ResponseWriter, r *http.Request) {
	story, err := h.stories.Story(r.Context(), chi.URLParam(r, "storyID"))
	if err != nil {
		h.storyError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, story)
}

func (h *handlers) createStory(w http.ResponseWriter, r *http.Request) {
	var req createStoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	story := pipeline.Story{
		ID:           strings.TrimSpace(req.ID),
		Title:        req.Title,
		Premise:      req.Premise,
		ChapterCount: req.ChapterCount,
		Voice:        req.Voice,
	}
	if story.ID == "" {
		story.ID = uuid.NewString()
	}

	if err := h.stories.Put(r.Context(), story); err != nil {
		h.storyError(w, r, err)
		return
	}

	created, err := h.stories.Story(r.Context(), story.ID)
	if err != nil {
		h.storyError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *handlers) generateChapters(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, func(storyID string, _ enqueueRequest) command.Command {
		return h.pipeline.GenerateChapters(storyID)
	})
}

func (h *handlers) generateSpeech(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, func(storyID string, req enqueueRequest) command.Command {
		return h.pipeline.GenerateSpeech(storyID, req.Voice)
	})
}

func (h *handlers) regenerateTags(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, func(storyID string, _ enqueueRequest) command.Command {
		return h.pipeline.RegenerateTags(storyID)
	})
}

func (h *handlers) submit(w http.ResponseWriter, r *http.Request, build func(string, enqueueRequest) command.Command) {
	storyID := chi.URLParam(r, "storyID")
	if _, err := h.stories.Story(r.Context(), storyID); err != nil {
		h.storyError(w, r, err)
		return
	}

	var req enqueueRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var opts []command.EnqueueOption
	if req.RunID != "" {
		opts = append(opts, command.WithRunID(req.RunID))
	}
	if req.Priority != nil {
		if *req.Priority < int(command.PriorityMin) || *req.Priority > int(command.PriorityMax) {
			writeError(w, http.StatusBadRequest, command.ErrInvalidPriority.Error())
			return
		}
		opts = append(opts, command.WithPriority(command.Priority(*req.Priority)))
	}
	if req.Retries != nil {
		opts = append(opts, command.WithRetries(*req.Retries))
	}

	cmd := build(storyID, req)
	runID, err := h.dispatcher.Submit(r.Context(), cmd, opts...)
	switch {
	case err == nil:
		h.logger.InfoContext(r.Context(), "command submitted",
			logger.Component("api"),
			logger.CommandName(cmd.Name()),
			logger.RunID(runID))
		writeJSON(w, http.StatusAccepted, enqueueResponse{RunID: runID})
	case errors.Is(err, command.ErrAlreadyQueued):
		writeJSON(w, http.StatusConflict, errorBody{Error: err.Error(), RunID: runID})
	case errors.Is(err, command.ErrDuplicateRunID):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, command.ErrInvalidPriority):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, command.ErrDispatcherStopped):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "failed to submit command",
			logger.Component("api"),
			logger.CommandName(cmd.Name()),
			logger.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to submit command")
	}
}

func (h *handlers) storyError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, pipeline.ErrStoryNotFound):
		writeError(w, http.StatusNotFound, "story not found")
	case errors.Is(err, pipeline.ErrInvalidStory):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "story store error",
			logger.Component("api"),
			logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
