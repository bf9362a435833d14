package activity

import (
	"encoding/json"

	"github.com/mind-engage/mindengage-progress/internal/progress"
)

type Activity struct {
	ID        string                `json:"id"`
	Title     string                `json:"title"`
	Type      progress.ActivityType `json:"type"` // dragdroppicture, circle, puzzleFindWords, ...
	CreatedAt int64                 `json:"created_at,omitempty"`
}

// Record is one student's saved progress for one activity, in wire form.
type Record struct {
	ActivityID   string                `json:"activity_id"`
	UserID       string                `json:"user_id"`
	ActivityType progress.ActivityType `json:"activity_type"`
	Data         json.RawMessage       `json:"data"`
	UpdatedAt    int64                 `json:"updated_at"`
}

func progressType(s string) progress.ActivityType { return progress.ActivityType(s) }
