package activity

import (
	"context"
	"encoding/json"
	"errors"
)

var (
	ErrActivityNotFound    = errors.New("activity not found")
	ErrProgressNotFound    = errors.New("progress not found")
	ErrUnknownActivityType = errors.New("unknown activity type")
	ErrInvalidProgress     = errors.New("progress is not valid JSON")
)

type ListOpts struct {
	Type   string // optional: only activities of this tag
	Limit  int
	Offset int
}

type Store interface {
	// PutActivity creates or renames an activity; a missing ID is generated.
	PutActivity(ctx context.Context, a Activity) (Activity, error)
	GetActivity(ctx context.Context, id string) (Activity, error)
	ListActivities(ctx context.Context, opts ListOpts) ([]Activity, error)

	// SaveProgress replaces the stored wire form for (activityID, userID) wholesale.
	SaveProgress(ctx context.Context, activityID, userID string, data json.RawMessage) (Record, error)
	LoadProgress(ctx context.Context, activityID, userID string) (Record, error)
	DeleteProgress(ctx context.Context, activityID, userID string) error
	// ListProgress returns every student's record for an activity, most recent first.
	ListProgress(ctx context.Context, activityID string) ([]Record, error)
}

func normalizeLimit(n int) int {
	if n <= 0 || n > 200 {
		return 50
	}
	return n
}
