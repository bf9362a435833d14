package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-progress/internal/activity"
	"github.com/mind-engage/mindengage-progress/internal/logger"
	"github.com/mind-engage/mindengage-progress/internal/progress"
)

type createActivityRequest struct {
	ID    string `json:"id" validate:"omitempty,max=128"`
	Title string `json:"title" validate:"required,max=200"`
	Type  string `json:"type" validate:"required"`
}

// POST /activities
func CreateActivityHandler(store activity.Store, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createActivityRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		t, ok := progress.ParseActivityType(req.Type)
		if !ok {
			writeError(w, log, fmt.Errorf("%w: %q", activity.ErrUnknownActivityType, req.Type))
			return
		}
		a, err := store.PutActivity(r.Context(), activity.Activity{
			ID:    strings.TrimSpace(req.ID),
			Title: strings.TrimSpace(req.Title),
			Type:  t,
		})
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusCreated, a)
	}
}

// GET /activities/{activityID}/progress/all  (progress:view-all)
// Every student's restored progress for the activity, most recently saved first.
func ListProgressHandler(store activity.Store, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recs, err := store.ListProgress(r.Context(), chi.URLParam(r, "activityID"))
		if err != nil {
			writeError(w, log, err)
			return
		}
		out := make([]ProgressView, 0, len(recs))
		for _, rec := range recs {
			p := progress.Restore(rec.Data, string(rec.ActivityType))
			if progress.IsNone(p) {
				p = progress.Empty(rec.ActivityType)
			}
			v, err := viewOf(rec.ActivityID, rec.UserID, rec.ActivityType, p, rec.UpdatedAt)
			if err != nil {
				writeError(w, log, err)
				return
			}
			out = append(out, v)
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// DELETE /activities/{activityID}/progress/{userID}  (progress:reset-any)
func ResetUserProgressHandler(store activity.Store, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resetProgress(w, r, store, log, chi.URLParam(r, "userID"))
	}
}
