package syncx

import (
	"context"
	"database/sql"
	"time"
)

// Event types written by the progress store.
const (
	TypeProgressSaved   = "ProgressSaved"
	TypeProgressCleared = "ProgressCleared"
)

type Event struct {
	Seq       int64  `json:"seq"`
	SiteID    string `json:"site_id"`
	Type      string `json:"type"`
	Key       string `json:"key"`  // natural key: activityID/userID
	DataJSON  string `json:"data"` // JSON payload
	CreatedAt int64  `json:"created_at"`
}

// Execer is satisfied by *sql.DB and *sql.Tx, so events can share the writer's transaction.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type EventRepo struct {
	db     *sql.DB
	siteID string
}

func NewEventRepo(db *sql.DB, siteID string) *EventRepo {
	if siteID == "" {
		siteID = "local"
	}
	return &EventRepo{db: db, siteID: siteID}
}

// Append writes e through ex, or through the repo's own handle when ex is nil.
func (r *EventRepo) Append(ctx context.Context, ex Execer, e Event) error {
	if ex == nil {
		ex = r.db
	}
	site := e.SiteID
	if site == "" {
		site = r.siteID
	}
	data := e.DataJSON
	if data == "" {
		data = "{}"
	}
	_, err := ex.ExecContext(ctx,
		`INSERT INTO event_log (site_id, typ, key, data, created_at)
		 VALUES ($1,$2,$3,$4,$5)`,
		site, e.Type, e.Key, data, time.Now().Unix())
	return err
}

// ListSince returns up to limit events with a sequence number greater than after.
func (r *EventRepo) ListSince(ctx context.Context, after int64, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT seq, site_id, typ, key, data, created_at FROM event_log
		 WHERE seq > $1 ORDER BY seq LIMIT $2`, after, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Event{}
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.Seq, &e.SiteID, &e.Type, &e.Key, &e.DataJSON, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
