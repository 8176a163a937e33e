package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/safar/safar-go/internal/middleware"
	"github.com/safar/safar-go/internal/model"
	"github.com/safar/safar-go/internal/service"
)

// StoryHandler handles HTTP requests for travel stories.
type StoryHandler struct {
	service *service.StoryService
	logger  *slog.Logger
}

// NewStoryHandler creates a new StoryHandler.
func NewStoryHandler(svc *service.StoryService, logger *slog.Logger) *StoryHandler {
	return &StoryHandler{service: svc, logger: logger}
}

// HandleAddStory handles POST /add-travel-story requests.
func (h *StoryHandler) HandleAddStory(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	var req model.StoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	story, err := h.service.AddStory(r.Context(), userID, req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, envelope{"error": false, "story": story, "message": "Added Successfully"})
}

// HandleListStories handles GET /get-all-stories requests.
func (h *StoryHandler) HandleListStories(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	stories, err := h.service.ListStories(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{"error": false, "stories": stories})
}

// HandleEditStory handles PUT /edit-story/{id} requests.
func (h *StoryHandler) HandleEditStory(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	var req model.StoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	story, err := h.service.EditStory(r.Context(), userID, chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{"error": false, "story": story, "message": "Updated Successfully"})
}

// HandleDeleteStory handles DELETE /delete-story/{id} requests.
func (h *StoryHandler) HandleDeleteStory(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	if err := h.service.DeleteStory(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{"error": false, "message": "Story Deleted Successfully"})
}

// HandleSetFavorite handles PUT /update-is-favorite/{id} requests.
func (h *StoryHandler) HandleSetFavorite(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	var req model.FavoriteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	story, err := h.service.SetFavorite(r.Context(), userID, chi.URLParam(r, "id"), req.IsFavorite)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{"error": false, "story": story, "message": "Updated Successfully"})
}

// HandleSearch handles GET /search?query= requests.
func (h *StoryHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	stories, err := h.service.Search(r.Context(), userID, r.URL.Query().Get("query"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{"error": false, "stories": stories})
}

// HandleFilterByDate handles GET /travel-stories/filter?startDate=&endDate= requests.
// Both bounds are epoch milliseconds.
func (h *StoryHandler) HandleFilterByDate(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	start, errStart := parseMillis(r.URL.Query().Get("startDate"))
	end, errEnd := parseMillis(r.URL.Query().Get("endDate"))
	if errStart != nil || errEnd != nil {
		writeError(w, r, h.logger, service.ErrDateRangeRequired)
		return
	}

	stories, err := h.service.FilterByDate(r.Context(), userID, start, end)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{"error": false, "stories": stories})
}

func parseMillis(s string) (time.Time, error) {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(ms).UTC(), nil
}
