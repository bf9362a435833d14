// Package player tracks a student's answers for one activity between mount and save.
//
// A Session owns the in-memory progress for the length of a visit: it is restored once
// from the saved wire form on Mount, edited in place, and re-encoded in full on every Save.
// Sessions are not safe for concurrent use; each request mounts its own.
package player

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/mind-engage/mindengage-progress/internal/activity"
	"github.com/mind-engage/mindengage-progress/internal/logger"
	"github.com/mind-engage/mindengage-progress/internal/observability"
	"github.com/mind-engage/mindengage-progress/internal/progress"
)

var (
	ErrShapeMismatch = errors.New("edit does not match the activity's answer shape")
	ErrInvalidEdit   = errors.New("invalid edit")
)

// Edit is a single answer change as sent by a player.
//
//	string-map activities: Key is the slot, Value a JSON string
//	int-map activities:    Key is the item index, Value a JSON integer
//	word puzzles:          Key is the word, Value is ignored
//
// Clear removes the answer (or the found word) instead of setting it.
type Edit struct {
	Key   string          `json:"key" validate:"required,max=256"`
	Value json.RawMessage `json:"value,omitempty"`
	Clear bool            `json:"clear,omitempty"`
}

type Session struct {
	store    activity.Store
	log      *logger.Logger
	activity activity.Activity
	userID   string
	progress progress.Progress
}

// Mount loads the activity and the student's saved progress. Saved progress that cannot
// be restored is logged and dropped; the session then starts from an empty answer set.
func Mount(ctx context.Context, store activity.Store, log *logger.Logger, activityID, userID string) (*Session, error) {
	a, err := store.GetActivity(ctx, activityID)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}
	s := &Session{
		store:    store,
		log:      log.With("activity_id", a.ID, "activity_type", string(a.Type)),
		activity: a,
		userID:   userID,
	}

	rec, err := store.LoadProgress(ctx, activityID, userID)
	switch {
	case errors.Is(err, activity.ErrProgressNotFound):
		s.progress = progress.Empty(a.Type)
		observability.RecordRestore(typeLabel(a.Type), observability.OutcomeEmpty)
		return s, nil
	case err != nil:
		return nil, err
	}

	p, rerr := progress.TryRestore(rec.Data, string(a.Type))
	outcome := observability.OutcomeRestored
	switch {
	case errors.Is(rerr, progress.ErrUnknownActivityType):
		outcome = observability.OutcomeUnknownType
	case rerr != nil:
		outcome = observability.OutcomeMalformed
	case progress.IsNone(p):
		outcome = observability.OutcomeEmpty
	}
	observability.RecordRestore(typeLabel(a.Type), outcome)
	if rerr != nil {
		s.log.Warn("saved progress could not be restored; starting fresh", "error", rerr.Error())
	}
	if progress.IsNone(p) {
		p = progress.Empty(a.Type)
	}
	s.progress = p
	return s, nil
}

func (s *Session) Activity() activity.Activity { return s.activity }
func (s *Session) UserID() string              { return s.userID }
func (s *Session) Progress() progress.Progress { return s.progress }

// Answered is the number of answers (or found words) currently held.
func (s *Session) Answered() int { return s.progress.Len() }

func (s *Session) SetAnswer(key, value string) error {
	m, ok := s.progress.(*progress.StringMap)
	if !ok {
		return s.mismatch()
	}
	m.Set(key, value)
	return nil
}

func (s *Session) ClearAnswer(key string) error {
	m, ok := s.progress.(*progress.StringMap)
	if !ok {
		return s.mismatch()
	}
	m.Delete(key)
	return nil
}

func (s *Session) SetMark(index, value int) error {
	m, ok := s.progress.(*progress.IntMap)
	if !ok {
		return s.mismatch()
	}
	m.Set(index, value)
	return nil
}

func (s *Session) ClearMark(index int) error {
	m, ok := s.progress.(*progress.IntMap)
	if !ok {
		return s.mismatch()
	}
	m.Delete(index)
	return nil
}

// FindWord reports whether the word was newly found.
func (s *Session) FindWord(word string) (bool, error) {
	set, ok := s.progress.(*progress.StringSet)
	if !ok {
		return false, s.mismatch()
	}
	return set.Add(word), nil
}

func (s *Session) LoseWord(word string) error {
	set, ok := s.progress.(*progress.StringSet)
	if !ok {
		return s.mismatch()
	}
	set.Remove(word)
	return nil
}

// Apply routes a generic edit to the setter matching the activity's shape.
func (s *Session) Apply(e Edit) error {
	if e.Key == "" {
		return fmt.Errorf("%w: key required", ErrInvalidEdit)
	}
	switch s.progress.Shape() {
	case progress.ShapeStringMap:
		if e.Clear {
			return s.ClearAnswer(e.Key)
		}
		var v string
		if err := json.Unmarshal(e.Value, &v); err != nil {
			return fmt.Errorf("%w: value must be a string", ErrInvalidEdit)
		}
		return s.SetAnswer(e.Key, v)
	case progress.ShapeIntMap:
		idx, err := strconv.Atoi(e.Key)
		if err != nil {
			return fmt.Errorf("%w: key %q is not an item index", ErrInvalidEdit, e.Key)
		}
		if e.Clear {
			return s.ClearMark(idx)
		}
		var v int
		if err := json.Unmarshal(e.Value, &v); err != nil {
			return fmt.Errorf("%w: value must be an integer", ErrInvalidEdit)
		}
		return s.SetMark(idx, v)
	case progress.ShapeStringSet:
		if e.Clear {
			return s.LoseWord(e.Key)
		}
		_, err := s.FindWord(e.Key)
		return err
	default:
		return s.mismatch()
	}
}

// Save encodes the whole in-memory progress and replaces the stored copy.
func (s *Session) Save(ctx context.Context) (activity.Record, error) {
	data, err := progress.Encode(s.progress)
	if err != nil {
		return activity.Record{}, fmt.Errorf("encode progress: %w", err)
	}
	rec, err := s.store.SaveProgress(ctx, s.activity.ID, s.userID, data)
	if err != nil {
		return activity.Record{}, err
	}
	observability.RecordSave(typeLabel(s.activity.Type), time.Unix(rec.UpdatedAt, 0))
	s.log.Debug("progress saved", "answered", s.progress.Len())
	return rec, nil
}

// Reset discards stored progress and empties the session.
func (s *Session) Reset(ctx context.Context) error {
	err := s.store.DeleteProgress(ctx, s.activity.ID, s.userID)
	if err != nil && !errors.Is(err, activity.ErrProgressNotFound) {
		return err
	}
	s.progress = progress.Empty(s.activity.Type)
	return nil
}

func (s *Session) mismatch() error {
	return fmt.Errorf("%w: %s holds %s", ErrShapeMismatch, s.activity.Type, s.progress.Shape())
}

func typeLabel(t progress.ActivityType) string {
	if t.Known() {
		return string(t)
	}
	return "unknown"
}
