package activity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryStore struct {
	mu         sync.RWMutex
	activities map[string]Activity
	records    map[recordKey]Record
	now        func() time.Time
}

type recordKey struct{ activityID, userID string }

func NewInMemoryStore() Store {
	return &memoryStore{
		activities: map[string]Activity{},
		records:    map[recordKey]Record{},
		now:        time.Now,
	}
}

func (m *memoryStore) PutActivity(_ context.Context, a Activity) (Activity, error) {
	if err := prepareActivity(&a, m.now()); err != nil {
		return Activity{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if prev, ok := m.activities[a.ID]; ok {
		a.CreatedAt = prev.CreatedAt
	}
	m.activities[a.ID] = a
	return a, nil
}

func (m *memoryStore) GetActivity(_ context.Context, id string) (Activity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.activities[id]
	if !ok {
		return Activity{}, ErrActivityNotFound
	}
	return a, nil
}

func (m *memoryStore) ListActivities(_ context.Context, opts ListOpts) ([]Activity, error) {
	m.mu.RLock()
	out := make([]Activity, 0, len(m.activities))
	for _, a := range m.activities {
		if opts.Type != "" && string(a.Type) != opts.Type {
			continue
		}
		out = append(out, a)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt > out[j].CreatedAt
		}
		return out[i].ID < out[j].ID
	})
	offset := max(opts.Offset, 0)
	if offset >= len(out) {
		return []Activity{}, nil
	}
	out = out[offset:]
	if limit := normalizeLimit(opts.Limit); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memoryStore) SaveProgress(_ context.Context, activityID, userID string, data json.RawMessage) (Record, error) {
	if !json.Valid(data) {
		return Record{}, ErrInvalidProgress
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.activities[activityID]
	if !ok {
		return Record{}, ErrActivityNotFound
	}
	rec := Record{
		ActivityID:   activityID,
		UserID:       userID,
		ActivityType: a.Type,
		Data:         bytes.Clone(data),
		UpdatedAt:    m.now().Unix(),
	}
	m.records[recordKey{activityID, userID}] = rec
	return rec, nil
}

func (m *memoryStore) LoadProgress(_ context.Context, activityID, userID string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.activities[activityID]; !ok {
		return Record{}, ErrActivityNotFound
	}
	rec, ok := m.records[recordKey{activityID, userID}]
	if !ok {
		return Record{}, ErrProgressNotFound
	}
	rec.Data = bytes.Clone(rec.Data)
	return rec, nil
}

func (m *memoryStore) DeleteProgress(_ context.Context, activityID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := recordKey{activityID, userID}
	if _, ok := m.records[k]; !ok {
		return ErrProgressNotFound
	}
	delete(m.records, k)
	return nil
}

func (m *memoryStore) ListProgress(_ context.Context, activityID string) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.activities[activityID]; !ok {
		return nil, ErrActivityNotFound
	}
	out := []Record{}
	for k, rec := range m.records {
		if k.activityID == activityID {
			rec.Data = bytes.Clone(rec.Data)
			out = append(out, rec)
		}
	}
	sortRecords(out)
	return out, nil
}

func sortRecords(out []Record) {
	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt != out[j].UpdatedAt {
			return out[i].UpdatedAt > out[j].UpdatedAt
		}
		return out[i].UserID < out[j].UserID
	})
}

// prepareActivity fills the id and creation time and rejects unknown activity types.
func prepareActivity(a *Activity, now time.Time) error {
	if !a.Type.Known() {
		return fmt.Errorf("%w: %q", ErrUnknownActivityType, a.Type)
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt == 0 {
		a.CreatedAt = now.Unix()
	}
	return nil
}
