package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSnapshot(id uint64, kind RequestKind) *SessionSnapshot {
	return &SessionSnapshot{
		ChannelHandle: ChannelHandle{ID: id, Origin: testPublicOrigin, Source: SourcePopup},
		Request:       &RequestWire{AppName: "Shop"},
		Kind:          kind,
	}
}

func TestHistoryStoreSetGetClear(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	store := NewHistoryStore(db)

	require.NoError(t, store.SetSnapshot("entry-1", testSnapshot(1, KindLogin)))

	snapshot, err := store.GetSnapshot("entry-1")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), snapshot.ChannelHandle.ID)
	assert.Equal(t, KindLogin, snapshot.Kind)
	require.NotNil(t, snapshot.Request)
	assert.Equal(t, "Shop", snapshot.Request.AppName)

	require.NoError(t, store.ClearSnapshot("entry-1"))
	_, err = store.GetSnapshot("entry-1")
	var nfe *NotFoundError
	require.ErrorAs(t, err, &nfe)
}

func TestHistoryStoreLastWriterWins(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	store := NewHistoryStore(db)

	require.NoError(t, store.SetSnapshot("entry-1", testSnapshot(1, KindLogin)))
	require.NoError(t, store.SetSnapshot("entry-1", testSnapshot(2, KindOnboard)))

	snapshot, err := store.GetSnapshot("entry-1")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), snapshot.ChannelHandle.ID)
	assert.Equal(t, KindOnboard, snapshot.Kind)
}

func TestHistoryStoreEntriesAreIsolated(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	store := NewHistoryStore(db)

	require.NoError(t, store.SetSnapshot("entry-1", testSnapshot(1, KindLogin)))
	require.NoError(t, store.SetSnapshot("entry-2", testSnapshot(2, KindOnboard)))
	require.NoError(t, store.ClearSnapshot("entry-1"))

	snapshot, err := store.GetSnapshot("entry-2")
	require.NoError(t, err)
	assert.Equal(t, KindOnboard, snapshot.Kind)
}

func TestHistoryStoreClearMissingIsNoError(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	store := NewHistoryStore(db)

	assert.NoError(t, store.ClearSnapshot("never-existed"))
}
