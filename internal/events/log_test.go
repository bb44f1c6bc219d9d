package events

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			type TEXT NOT NULL,
			entity_type TEXT NOT NULL,
			entity_id INTEGER NOT NULL,
			payload TEXT NOT NULL DEFAULT '{}',
			occurred_at TIMESTAMP NOT NULL
		);
		CREATE INDEX idx_events_type_time ON events(type, occurred_at);
	`)
	require.NoError(t, err)
	return db
}

func TestEventLog_Append(t *testing.T) {
	db := setupTestDB(t)
	log := NewEventLog(db)

	e := &TitleAdded{
		BaseEvent: NewBaseEvent(EventTitleAdded, EntityTitle, 42),
		TitleID:   42,
		Kind:      "series",
		Title:     "Fargo",
		Year:      2014,
	}
	id, err := log.Append(e)
	require.NoError(t, err)
	assert.Positive(t, id)

	raws, err := log.ForEntity(EntityTitle, 42)
	require.NoError(t, err)
	require.Len(t, raws, 1)
	assert.Equal(t, EventTitleAdded, raws[0].EventType)
	assert.Contains(t, raws[0].Payload, `"title":"Fargo"`)
}

func TestEventLog_Since(t *testing.T) {
	db := setupTestDB(t)
	log := NewEventLog(db)

	old := &ProgressUpdated{BaseEvent: BaseEvent{
		Type: EventProgressUpdated, Entity: EntityProgress, ID: 1,
		Timestamp: time.Now().Add(-2 * time.Hour),
	}}
	recent := &ProgressUpdated{BaseEvent: NewBaseEvent(EventProgressUpdated, EntityProgress, 2)}

	_, err := log.Append(old)
	require.NoError(t, err)
	_, err = log.Append(recent)
	require.NoError(t, err)

	raws, err := log.Since(time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, raws, 1)
	assert.Equal(t, int64(2), raws[0].EntityID)
}

func TestEventLog_Recent(t *testing.T) {
	db := setupTestDB(t)
	log := NewEventLog(db)

	for i := int64(1); i <= 5; i++ {
		_, err := log.Append(&TitleAdded{BaseEvent: NewBaseEvent(EventTitleAdded, EntityTitle, i)})
		require.NoError(t, err)
	}

	raws, total, err := log.Recent(2, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, raws, 2)
	// Newest first.
	assert.Equal(t, int64(5), raws[0].EntityID)
	assert.Equal(t, int64(4), raws[1].EntityID)

	raws, total, err = log.Recent(2, 4)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, raws, 1)
	assert.Equal(t, int64(1), raws[0].EntityID)
}

func TestEventLog_Prune(t *testing.T) {
	db := setupTestDB(t)
	log := NewEventLog(db)

	old := &TitleAdded{BaseEvent: BaseEvent{
		Type: EventTitleAdded, Entity: EntityTitle, ID: 1,
		Timestamp: time.Now().Add(-48 * time.Hour),
	}}
	recent := &TitleAdded{BaseEvent: NewBaseEvent(EventTitleAdded, EntityTitle, 2)}

	_, err := log.Append(old)
	require.NoError(t, err)
	_, err = log.Append(recent)
	require.NoError(t, err)

	removed, err := log.Prune(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	remaining, err := log.Since(time.Time{})
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}
