package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-progress/internal/activity"
	auth "github.com/mind-engage/mindengage-progress/internal/auth/middleware"
	"github.com/mind-engage/mindengage-progress/internal/logger"
	"github.com/mind-engage/mindengage-progress/internal/observability"
	"github.com/mind-engage/mindengage-progress/internal/player"
	"github.com/mind-engage/mindengage-progress/internal/progress"
)

// GET /activities/{activityID}/progress
// Progress for the calling student. Saved progress that cannot be restored reads as empty.
func GetProgressHandler(store activity.Store, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		serveProgress(w, r, store, log, auth.SubjectFromContext(r.Context()))
	}
}

// GET /activities/{activityID}/progress/{userID}  (owner or progress:view-all)
func GetUserProgressHandler(store activity.Store, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		serveProgress(w, r, store, log, chi.URLParam(r, "userID"))
	}
}

func serveProgress(w http.ResponseWriter, r *http.Request, store activity.Store, log *logger.Logger, userID string) {
	sess, err := player.Mount(r.Context(), store, log, chi.URLParam(r, "activityID"), userID)
	if err != nil {
		writeError(w, log, err)
		return
	}
	view, err := sessionView(sess, 0)
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// PUT /activities/{activityID}/progress
// The body is the player's whole wire-form progress. It must restore cleanly for the
// activity's type; it is stored re-encoded so the table only holds well-shaped documents.
// A null body clears the saved progress.
func PutProgressHandler(store activity.Store, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := auth.SubjectFromContext(ctx)
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxProgressBytes))
		if err != nil {
			http.Error(w, "body too large or unreadable", http.StatusRequestEntityTooLarge)
			return
		}
		a, err := store.GetActivity(ctx, chi.URLParam(r, "activityID"))
		if err != nil {
			writeError(w, log, err)
			return
		}
		p, err := progress.TryRestore(body, string(a.Type))
		if err != nil {
			writeError(w, log, err)
			return
		}
		if progress.IsNone(p) {
			if err := store.DeleteProgress(ctx, a.ID, userID); err != nil && !errors.Is(err, activity.ErrProgressNotFound) {
				writeError(w, log, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}
		data, err := progress.Encode(p)
		if err != nil {
			writeError(w, log, fmt.Errorf("encode progress: %w", err))
			return
		}
		rec, err := store.SaveProgress(ctx, a.ID, userID, data)
		if err != nil {
			writeError(w, log, err)
			return
		}
		observability.RecordSave(string(a.Type), time.Unix(rec.UpdatedAt, 0))
		view, err := viewOf(a.ID, userID, a.Type, p, rec.UpdatedAt)
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

// POST /activities/{activityID}/answers  {"key": "...", "value": ..., "clear": false}
func PostAnswerHandler(store activity.Store, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var edit player.Edit
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxProgressBytes)).Decode(&edit); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(edit); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		ctx := r.Context()
		sess, err := player.Mount(ctx, store, log, chi.URLParam(r, "activityID"), auth.SubjectFromContext(ctx))
		if err != nil {
			writeError(w, log, err)
			return
		}
		if err := sess.Apply(edit); err != nil {
			writeError(w, log, err)
			return
		}
		rec, err := sess.Save(ctx)
		if err != nil {
			writeError(w, log, err)
			return
		}
		view, err := sessionView(sess, rec.UpdatedAt)
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

// DELETE /activities/{activityID}/progress
func DeleteProgressHandler(store activity.Store, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resetProgress(w, r, store, log, auth.SubjectFromContext(r.Context()))
	}
}

func resetProgress(w http.ResponseWriter, r *http.Request, store activity.Store, log *logger.Logger, userID string) {
	sess, err := player.Mount(r.Context(), store, log, chi.URLParam(r, "activityID"), userID)
	if err != nil {
		writeError(w, log, err)
		return
	}
	if err := sess.Reset(r.Context()); err != nil {
		writeError(w, log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
