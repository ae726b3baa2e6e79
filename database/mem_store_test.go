package database

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemStoreUsers(t *testing.T) {
	store := NewMemStore()

	err := store.UpdateOnline("alice", true)
	assert.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, store.SaveUser(&User{ID: "u1", Username: "alice", Online: true}))
	require.NoError(t, store.UpdateOnline("alice", false))

	user, err := store.FindUser("alice")
	require.NoError(t, err)
	assert.False(t, user.Online)

	users, err := store.ListUsers()
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestMemStoreGroups(t *testing.T) {
	store := NewMemStore()
	require.NoError(t, store.SaveGroup(&Group{ID: "g1", Name: "team", Members: []string{"alice", "bob"}}))
	require.NoError(t, store.SaveGroup(&Group{ID: "g2", Name: "other", Members: []string{"carol"}}))

	group, err := store.FindGroup("g1")
	require.NoError(t, err)
	assert.Equal(t, "team", group.Name)

	_, err = store.FindGroup("nope")
	assert.True(t, errors.Is(err, ErrNotFound))

	groups, err := store.FindGroupsByMember("alice")
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "g1", groups[0].ID)
}

func seedMessages(t *testing.T, store *MemStore) {
	t.Helper()
	now := time.Now()
	msgs := []*Message{
		{ID: "m1", Sender: "alice", Content: "to everyone", CreateAt: now},
		{ID: "m2", Sender: "alice", Receiver: "bob", Content: "to bob", CreateAt: now},
		{ID: "m3", Sender: "bob", Receiver: "alice", Content: "to alice", CreateAt: now},
		{ID: "m4", Sender: "carol", GroupID: "g1", Content: "to group", CreateAt: now},
		{ID: "m5", Sender: "alice", Receiver: "carol", Content: "to carol", CreateAt: now},
	}
	for _, msg := range msgs {
		require.NoError(t, store.SaveMessage(msg))
	}
}

func TestMemStoreQueryMessages(t *testing.T) {
	store := NewMemStore()
	seedMessages(t, store)

	tests := []struct {
		name    string
		filter  MessageFilter
		wantIDs []string
	}{
		{"public", MessageFilter{Public: true}, []string{"m1"}},
		{"group", MessageFilter{GroupID: "g1"}, []string{"m4"}},
		{"direct both directions", MessageFilter{PeerA: "alice", PeerB: "bob"}, []string{"m2", "m3"}},
		{"direct excludes third party", MessageFilter{PeerA: "bob", PeerB: "carol"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msgs, err := store.QueryMessages(tt.filter)
			require.NoError(t, err)
			ids := make([]string, 0, len(msgs))
			for _, msg := range msgs {
				ids = append(ids, msg.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestMemStoreMarkRead(t *testing.T) {
	store := NewMemStore()
	seedMessages(t, store)

	require.NoError(t, store.MarkRead("m2"))
	msgs, err := store.QueryMessages(MessageFilter{PeerA: "alice", PeerB: "bob"})
	require.NoError(t, err)
	assert.True(t, msgs[0].Read)
	assert.False(t, msgs[1].Read)

	err = store.MarkRead("nope")
	assert.True(t, errors.Is(err, ErrNotFound))
}
