package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-progress/internal/activity"
	"github.com/mind-engage/mindengage-progress/internal/logger"
)

// GET /activities?type=circle&limit=50&offset=0
func ListActivitiesHandler(store activity.Store, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.ListActivities(r.Context(), activity.ListOpts{
			Type:   strings.TrimSpace(r.URL.Query().Get("type")),
			Limit:  parseIntDefault(r.URL.Query().Get("limit"), 50),
			Offset: parseIntDefault(r.URL.Query().Get("offset"), 0),
		})
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func GetActivityHandler(store activity.Store, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := store.GetActivity(r.Context(), chi.URLParam(r, "activityID"))
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}
