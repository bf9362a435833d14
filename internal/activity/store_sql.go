package activity

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	syncx "github.com/mind-engage/mindengage-progress/internal/sync"
)

type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
	events *syncx.EventRepo
	now    func() time.Time
}

// NewSQLStore returns a store over db. events may be nil to skip the event log.
func NewSQLStore(db *sql.DB, driver string, events *syncx.EventRepo) *SQLStore {
	return &SQLStore{db: db, driver: driver, events: events, now: time.Now}
}

func (s *SQLStore) PutActivity(ctx context.Context, a Activity) (Activity, error) {
	if err := prepareActivity(&a, s.now()); err != nil {
		return Activity{}, err
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO activities (id,title,type,created_at)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, type=EXCLUDED.type`,
		a.ID, a.Title, string(a.Type), a.CreatedAt)
	if err != nil {
		return Activity{}, err
	}
	return s.GetActivity(ctx, a.ID)
}

func (s *SQLStore) GetActivity(ctx context.Context, id string) (Activity, error) {
	return getActivity(ctx, s.db, id)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getActivity(ctx context.Context, q queryRower, id string) (Activity, error) {
	var a Activity
	var typ string
	err := q.QueryRowContext(ctx, `SELECT id,title,type,created_at FROM activities WHERE id=$1`, id).
		Scan(&a.ID, &a.Title, &typ, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Activity{}, ErrActivityNotFound
		}
		return Activity{}, err
	}
	a.Type = progressType(typ)
	return a, nil
}

func (s *SQLStore) ListActivities(ctx context.Context, opts ListOpts) ([]Activity, error) {
	limit := normalizeLimit(opts.Limit)
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id,title,type,created_at FROM activities
		WHERE ($1 = '' OR type = $1)
		ORDER BY created_at DESC, id ASC
		LIMIT $2 OFFSET $3`, opts.Type, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Activity{}
	for rows.Next() {
		var a Activity
		var typ string
		if err := rows.Scan(&a.ID, &a.Title, &typ, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.Type = progressType(typ)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLStore) SaveProgress(ctx context.Context, activityID, userID string, data json.RawMessage) (Record, error) {
	if !json.Valid(data) {
		return Record{}, ErrInvalidProgress
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Record{}, err
	}
	defer tx.Rollback()

	a, err := getActivity(ctx, tx, activityID)
	if err != nil {
		return Record{}, err
	}
	rec := Record{
		ActivityID:   activityID,
		UserID:       userID,
		ActivityType: a.Type,
		Data:         append(json.RawMessage(nil), data...),
		UpdatedAt:    s.now().Unix(),
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO activity_progress (activity_id,user_id,progress_json,updated_at)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (activity_id,user_id) DO UPDATE SET progress_json=EXCLUDED.progress_json, updated_at=EXCLUDED.updated_at`,
		activityID, userID, string(rec.Data), rec.UpdatedAt)
	if err != nil {
		return Record{}, err
	}
	if err := s.appendEvent(ctx, tx, syncx.TypeProgressSaved, rec); err != nil {
		return Record{}, fmt.Errorf("append event: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (s *SQLStore) LoadProgress(ctx context.Context, activityID, userID string) (Record, error) {
	var rec Record
	var typ, data string
	err := s.db.QueryRowContext(ctx, `SELECT p.activity_id, p.user_id, a.type, p.progress_json, p.updated_at
		FROM activity_progress p JOIN activities a ON a.id = p.activity_id
		WHERE p.activity_id=$1 AND p.user_id=$2`, activityID, userID).
		Scan(&rec.ActivityID, &rec.UserID, &typ, &data, &rec.UpdatedAt)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return Record{}, err
		}
		if _, err := s.GetActivity(ctx, activityID); err != nil {
			return Record{}, err
		}
		return Record{}, ErrProgressNotFound
	}
	rec.ActivityType = progressType(typ)
	rec.Data = json.RawMessage(data)
	return rec, nil
}

func (s *SQLStore) DeleteProgress(ctx context.Context, activityID, userID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM activity_progress WHERE activity_id=$1 AND user_id=$2`, activityID, userID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrProgressNotFound
	}
	rec := Record{ActivityID: activityID, UserID: userID}
	if err := s.appendEvent(ctx, tx, syncx.TypeProgressCleared, rec); err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return tx.Commit()
}

func (s *SQLStore) ListProgress(ctx context.Context, activityID string) ([]Record, error) {
	a, err := s.GetActivity(ctx, activityID)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT user_id, progress_json, updated_at FROM activity_progress
		WHERE activity_id=$1 ORDER BY updated_at DESC, user_id ASC`, activityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Record{}
	for rows.Next() {
		rec := Record{ActivityID: activityID, ActivityType: a.Type}
		var data string
		if err := rows.Scan(&rec.UserID, &data, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		rec.Data = json.RawMessage(data)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLStore) appendEvent(ctx context.Context, tx *sql.Tx, typ string, rec Record) error {
	if s.events == nil {
		return nil
	}
	payload := map[string]any{
		"activity_id": rec.ActivityID,
		"user_id":     rec.UserID,
	}
	if rec.Data != nil {
		payload["activity_type"] = rec.ActivityType
		payload["progress"] = rec.Data
		payload["updated_at"] = rec.UpdatedAt
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return s.events.Append(ctx, tx, syncx.Event{
		Type:     typ,
		Key:      rec.ActivityID + "/" + rec.UserID,
		DataJSON: string(buf),
	})
}
