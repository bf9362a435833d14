package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-progress/internal/db"
	"github.com/mind-engage/mindengage-progress/internal/progress"
	syncx "github.com/mind-engage/mindengage-progress/internal/sync"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func (c *clock) tick() { c.t = c.t.Add(time.Minute) }

func openTestDB(t *testing.T) (*SQLStore, *syncx.EventRepo) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	dbh, err := db.Open(context.Background(), db.DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { dbh.Close() })
	events := syncx.NewEventRepo(dbh, "test-site")
	return NewSQLStore(dbh, string(db.DriverSQLite), events), events
}

// storeContract runs the same behaviour checks against every Store implementation.
func storeContract(t *testing.T, s Store, c *clock) {
	ctx := context.Background()

	_, err := s.PutActivity(ctx, Activity{ID: "bad", Title: "Bad", Type: "crossword"})
	require.ErrorIs(t, err, ErrUnknownActivityType)

	_, err = s.PutActivity(ctx, Activity{ID: "act-1", Title: "Animals", Type: progress.TypeDragDropPicture})
	require.NoError(t, err)
	c.tick()
	_, err = s.PutActivity(ctx, Activity{ID: "act-2", Title: "Circle", Type: progress.TypeCircle})
	require.NoError(t, err)

	a, err := s.GetActivity(ctx, "act-1")
	require.NoError(t, err)
	assert.Equal(t, progress.TypeDragDropPicture, a.Type)
	assert.Equal(t, "Animals", a.Title)
	assert.NotZero(t, a.CreatedAt)

	_, err = s.GetActivity(ctx, "missing")
	require.ErrorIs(t, err, ErrActivityNotFound)

	list, err := s.ListActivities(ctx, ListOpts{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "act-2", list[0].ID, "newest first")

	list, err = s.ListActivities(ctx, ListOpts{Type: "circle"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "act-2", list[0].ID)

	_, err = s.LoadProgress(ctx, "act-1", "u1")
	require.ErrorIs(t, err, ErrProgressNotFound)
	_, err = s.LoadProgress(ctx, "missing", "u1")
	require.ErrorIs(t, err, ErrActivityNotFound)

	_, err = s.SaveProgress(ctx, "missing", "u1", json.RawMessage(`{}`))
	require.ErrorIs(t, err, ErrActivityNotFound)
	_, err = s.SaveProgress(ctx, "act-1", "u1", json.RawMessage(`{"a":`))
	require.ErrorIs(t, err, ErrInvalidProgress)

	rec, err := s.SaveProgress(ctx, "act-1", "u1", json.RawMessage(`{"zone-1":"cat"}`))
	require.NoError(t, err)
	assert.Equal(t, progress.TypeDragDropPicture, rec.ActivityType)

	c.tick()
	_, err = s.SaveProgress(ctx, "act-1", "u1", json.RawMessage(`{"zone-1":"dog","zone-2":"cat"}`))
	require.NoError(t, err)
	c.tick()
	_, err = s.SaveProgress(ctx, "act-1", "u2", json.RawMessage(`{"zone-2":"cow"}`))
	require.NoError(t, err)

	got, err := s.LoadProgress(ctx, "act-1", "u1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"zone-1":"dog","zone-2":"cat"}`, string(got.Data), "saves replace, not merge")
	assert.Equal(t, progress.TypeDragDropPicture, got.ActivityType)

	all, err := s.ListProgress(ctx, "act-1")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "u2", all[0].UserID)
	assert.Equal(t, "u1", all[1].UserID)

	require.NoError(t, s.DeleteProgress(ctx, "act-1", "u1"))
	require.ErrorIs(t, s.DeleteProgress(ctx, "act-1", "u1"), ErrProgressNotFound)
	_, err = s.LoadProgress(ctx, "act-1", "u1")
	require.ErrorIs(t, err, ErrProgressNotFound)

	_, err = s.ListProgress(ctx, "missing")
	require.ErrorIs(t, err, ErrActivityNotFound)
}

func TestMemoryStore(t *testing.T) {
	c := &clock{t: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
	s := NewInMemoryStore().(*memoryStore)
	s.now = c.now
	storeContract(t, s, c)
}

func TestSQLStore(t *testing.T) {
	c := &clock{t: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
	s, events := openTestDB(t)
	s.now = c.now
	storeContract(t, s, c)

	evs, err := events.ListSince(context.Background(), 0, 50)
	require.NoError(t, err)
	var types []string
	for _, e := range evs {
		types = append(types, e.Type)
		assert.Equal(t, "test-site", e.SiteID)
	}
	assert.Equal(t, []string{
		syncx.TypeProgressSaved, syncx.TypeProgressSaved, syncx.TypeProgressSaved, syncx.TypeProgressCleared,
	}, types)
	assert.Equal(t, "act-1/u1", evs[0].Key)
	assert.Contains(t, evs[0].DataJSON, `"zone-1":"cat"`)
}

func TestAutoID(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()
	a, err := s.PutActivity(ctx, Activity{Title: "Find", Type: progress.TypePuzzleFindWords})
	require.NoError(t, err)
	assert.Len(t, a.ID, 36)
	list, err := s.ListActivities(ctx, ListOpts{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, a.ID, list[0].ID)
}
