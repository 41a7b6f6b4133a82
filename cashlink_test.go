package main

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCashlinkShareURL(t *testing.T) {
	addr := testNativeAddress(5)
	cashlink := NewCashlink(addr, 5000, "happy birthday", ThemeBirthday)

	link := cashlink.ShareURL("https://hub.example")
	require.True(t, strings.HasPrefix(link, "https://hub.example/cashlink/#"+addr.UserFriendly()+"&"))

	query, err := url.ParseQuery(strings.SplitN(link, "&", 2)[1])
	require.NoError(t, err)
	assert.Equal(t, "5000", query.Get("value"))
	assert.Equal(t, "happy birthday", query.Get("message"))
	assert.Equal(t, "6", query.Get("theme"))
}

func TestCashlinkShareURLOmitsEmptyParts(t *testing.T) {
	cashlink := NewCashlink(testNativeAddress(5), 5000, "", ThemeUnspecified)
	link := cashlink.ShareURL("https://hub.example")
	assert.NotContains(t, link, "message=")
	assert.NotContains(t, link, "theme=")
}

func TestCashlinkObjectRoundTrip(t *testing.T) {
	cashlink := NewCashlink(testNativeAddress(5), 5000, "hi", ThemeStandard)
	cashlink.State = CashlinkUnclaimed
	cashlink.ContactName = "Alice"

	restored, err := CashlinkFromObject(cashlink.ToObject())
	require.NoError(t, err)
	assert.Equal(t, cashlink, restored)
}

func TestCashlinkFromObjectRejections(t *testing.T) {
	_, err := CashlinkFromObject(nil)
	require.Error(t, err)

	_, err = CashlinkFromObject(&CashlinkObject{Address: "bogus"})
	require.Error(t, err)

	_, err = CashlinkFromObject(&CashlinkObject{
		Address: testNativeAddress(1).UserFriendly(),
		Theme:   200,
	})
	require.Error(t, err)
}

func TestCashlinkStoreCRUD(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	store := NewCashlinkStore(db)

	addr := testNativeAddress(5)
	cashlink := NewCashlink(addr, 5000, "hi", ThemeStandard)
	require.NoError(t, store.Put(cashlink))

	loaded, err := store.Get(addr)
	require.NoError(t, err)
	assert.Equal(t, cashlink, loaded)

	// State transitions are persisted through Put
	cashlink.State = CashlinkClaimed
	require.NoError(t, store.Put(cashlink))
	loaded, err = store.Get(addr)
	require.NoError(t, err)
	assert.Equal(t, CashlinkClaimed, loaded.State)

	require.NoError(t, store.Remove(addr))
	_, err = store.Get(addr)
	var nfe *NotFoundError
	require.ErrorAs(t, err, &nfe)
}

func TestCashlinkStoreListNewestFirst(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	store := NewCashlinkStore(db)

	older := NewCashlink(testNativeAddress(1), 1000, "", ThemeUnspecified)
	older.Timestamp = 100
	newer := NewCashlink(testNativeAddress(2), 2000, "", ThemeUnspecified)
	newer.Timestamp = 200
	require.NoError(t, store.Put(older))
	require.NoError(t, store.Put(newer))

	links, err := store.List()
	require.NoError(t, err)
	require.Len(t, links, 2)
	assert.Equal(t, uint64(2000), links[0].Value)
	assert.Equal(t, uint64(1000), links[1].Value)
}

func TestCashlinkStateString(t *testing.T) {
	assert.Equal(t, "uncharged", CashlinkUncharged.String())
	assert.Equal(t, "claimed", CashlinkClaimed.String())
	assert.Equal(t, "unknown", CashlinkState(99).String())
}
