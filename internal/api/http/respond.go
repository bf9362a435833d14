package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/mind-engage/mindengage-progress/internal/activity"
	"github.com/mind-engage/mindengage-progress/internal/logger"
	"github.com/mind-engage/mindengage-progress/internal/player"
	"github.com/mind-engage/mindengage-progress/internal/progress"
)

const maxProgressBytes = 1 << 20

var validate = validator.New()

// ProgressView is what the API returns for one student's progress on one activity.
type ProgressView struct {
	ActivityID   string                `json:"activity_id"`
	UserID       string                `json:"user_id"`
	ActivityType progress.ActivityType `json:"activity_type"`
	Shape        string                `json:"shape"`
	Answered     int                   `json:"answered"`
	Progress     json.RawMessage       `json:"progress"`
	UpdatedAt    int64                 `json:"updated_at,omitempty"`
}

func viewOf(activityID, userID string, t progress.ActivityType, p progress.Progress, updatedAt int64) (ProgressView, error) {
	data, err := progress.Encode(p)
	if err != nil {
		return ProgressView{}, err
	}
	return ProgressView{
		ActivityID:   activityID,
		UserID:       userID,
		ActivityType: t,
		Shape:        p.Shape().String(),
		Answered:     p.Len(),
		Progress:     data,
		UpdatedAt:    updatedAt,
	}, nil
}

func sessionView(s *player.Session, updatedAt int64) (ProgressView, error) {
	a := s.Activity()
	return viewOf(a.ID, s.UserID(), a.Type, s.Progress(), updatedAt)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto status codes; anything unexpected is logged as a 500.
func writeError(w http.ResponseWriter, log *logger.Logger, err error) {
	switch {
	case errors.Is(err, activity.ErrActivityNotFound), errors.Is(err, activity.ErrProgressNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, activity.ErrUnknownActivityType),
		errors.Is(err, activity.ErrInvalidProgress),
		errors.Is(err, progress.ErrMalformedProgress),
		errors.Is(err, player.ErrInvalidEdit),
		errors.Is(err, player.ErrShapeMismatch):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		log.Error("request failed", "error", err.Error())
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil && v >= 0 {
		return v
	}
	return def
}
