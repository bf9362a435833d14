package syncx_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-progress/internal/db"
	syncx "github.com/mind-engage/mindengage-progress/internal/sync"
)

func TestAppendAndListSince(t *testing.T) {
	ctx := context.Background()
	dbh, err := db.Open(ctx, db.DriverSQLite, "file:eventlog?mode=memory&cache=shared")
	require.NoError(t, err)
	defer dbh.Close()

	repo := syncx.NewEventRepo(dbh, "")
	require.NoError(t, repo.Append(ctx, nil, syncx.Event{Type: syncx.TypeProgressSaved, Key: "a1/u1", DataJSON: `{"words":["cat"]}`}))
	require.NoError(t, repo.Append(ctx, nil, syncx.Event{Type: syncx.TypeProgressCleared, Key: "a1/u1", SiteID: "school-7"}))

	tx, err := dbh.BeginTx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, repo.Append(ctx, tx, syncx.Event{Type: syncx.TypeProgressSaved, Key: "a2/u1"}))
	require.NoError(t, tx.Rollback())

	all, err := repo.ListSince(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "local", all[0].SiteID)
	assert.Equal(t, `{"words":["cat"]}`, all[0].DataJSON)
	assert.Equal(t, "school-7", all[1].SiteID)
	assert.Equal(t, "{}", all[1].DataJSON)
	assert.Less(t, all[0].Seq, all[1].Seq)

	rest, err := repo.ListSince(ctx, all[0].Seq, 10)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, syncx.TypeProgressCleared, rest[0].Type)
}
