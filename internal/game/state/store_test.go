package state

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestNewStore_InitialValues(t *testing.T) {
	s := NewStore()
	assert.Empty(t, s.SelfID())
	assert.Equal(t, StatusWaiting, s.Session().Status)
	assert.Equal(t, HolderNone, s.Session().Turn)
	assert.Empty(t, s.Room().ID)
	assert.Equal(t, RoomCapacity, s.Room().Capacity)
	assert.Empty(t, s.Conversation())
	assert.False(t, s.Connection().Connected)
	assert.Empty(t, s.Connection().Err)
}

func TestStore_SetRoom_ReturnsCopies(t *testing.T) {
	s := NewStore()
	s.SetRoom(Room{ID: "r1", Players: []Player{{ID: "p1", Name: "Alice"}}})

	got := s.Room()
	got.Players[0].Name = "Mallory"

	assert.Equal(t, "Alice", s.Room().Players[0].Name,
		"mutating a returned copy must not affect the store")
}

func TestStore_SelfRole(t *testing.T) {
	s := NewStore()
	s.SetSelfID("p2")
	s.SetRoom(Room{ID: "r1", Players: []Player{
		{ID: "p1", Role: RoleEncryptor},
		{ID: "p2", Role: RoleDecryptor},
	}})
	assert.Equal(t, RoleDecryptor, s.SelfRole())
}

func TestStore_SelfRole_NotInRoster(t *testing.T) {
	s := NewStore()
	s.SetSelfID("ghost")
	assert.Equal(t, RoleNone, s.SelfRole())
}

func TestStore_SetSession_ForwardTransitions(t *testing.T) {
	s := NewStore()

	sess := s.Session()
	sess.Status = StatusActive
	sess.SecretWord = "apple"
	require.NoError(t, s.SetSession(sess))

	sess = s.Session()
	sess.Status = StatusEnded
	require.NoError(t, s.SetSession(sess))
	assert.Equal(t, StatusEnded, s.Session().Status)
}

func TestStore_SetSession_RejectsBackwardTransition(t *testing.T) {
	s := NewStore()
	sess := s.Session()
	sess.Status = StatusEnded
	require.NoError(t, s.SetSession(sess))

	sess.Status = StatusActive
	err := s.SetSession(sess)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "illegal game status transition")
	assert.Equal(t, StatusEnded, s.Session().Status, "store must be unchanged after refusal")
}

func TestStore_AppendTurn_PreservesArrivalOrder(t *testing.T) {
	s := NewStore()
	for i := 0; i < 5; i++ {
		s.AppendTurn(ConversationTurn{ID: fmt.Sprintf("t%d", i), Type: TurnEncryptor})
	}
	conv := s.Conversation()
	require.Len(t, conv, 5)
	for i, turn := range conv {
		assert.Equal(t, fmt.Sprintf("t%d", i), turn.ID)
	}
}

func TestStore_ReplaceConversation_Idempotent(t *testing.T) {
	s := NewStore()
	s.AppendTurn(ConversationTurn{ID: "stale"})

	history := []ConversationTurn{{ID: "h1"}, {ID: "h2"}}
	s.ReplaceConversation(history)
	s.ReplaceConversation(history)

	conv := s.Conversation()
	require.Len(t, conv, 2, "replaying the same history must not duplicate turns")
	assert.Equal(t, "h1", conv[0].ID)
	assert.Equal(t, "h2", conv[1].ID)
}

// TestStore_ReplaceConversation_Idempotent_Property verifies the idempotent
// replace for arbitrary histories.
func TestStore_ReplaceConversation_Idempotent_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 20).Draw(rt, "n")
		history := make([]ConversationTurn, n)
		for i := range history {
			history[i] = ConversationTurn{ID: fmt.Sprintf("h%d", i)}
		}

		s := NewStore()
		s.ReplaceConversation(history)
		once := len(s.Conversation())
		s.ReplaceConversation(history)
		assert.Equal(rt, once, len(s.Conversation()))
		assert.Equal(rt, n, once)
	})
}

func TestStore_SetLastError_KeepsConnectivity(t *testing.T) {
	s := NewStore()
	s.SetConnection(ConnectionState{Connected: true, TransportID: "sock-1"})
	s.SetLastError("room is full")

	conn := s.Connection()
	assert.True(t, conn.Connected, "application errors must not alter connectivity")
	assert.Equal(t, "sock-1", conn.TransportID)
	assert.Equal(t, "room is full", conn.Err)
}

func TestStore_Reset(t *testing.T) {
	s := NewStore()
	s.SetSelfID("p1")
	s.SetRoom(Room{ID: "r1", Players: []Player{{ID: "p1"}}})
	s.SetRoomList([]RoomInfo{{ID: "r1", Occupancy: 1, Capacity: 2}})
	sess := s.Session()
	sess.Status = StatusActive
	sess.SecretWord = "apple"
	sess.Score = 3
	require.NoError(t, s.SetSession(sess))
	s.AppendTurn(ConversationTurn{ID: "t1", CreatedAt: time.Now()})
	s.SetConnection(ConnectionState{Connected: true, Attempts: 2})

	s.Reset()

	assert.Empty(t, s.SelfID())
	assert.Empty(t, s.Room().ID)
	assert.Empty(t, s.Room().Players)
	assert.Empty(t, s.RoomList())
	assert.Equal(t, StatusWaiting, s.Session().Status)
	assert.Empty(t, s.Session().SecretWord)
	assert.Zero(t, s.Session().Score)
	assert.Empty(t, s.Conversation())
	assert.Equal(t, ConnectionState{}, s.Connection())
}

func TestWatcher_ReceivesChanges(t *testing.T) {
	s := NewStore()
	w := s.Watch(4)
	defer w.Close()

	s.SetSelfID("p1")

	select {
	case c := <-w.Changes():
		assert.Equal(t, FieldSelf, c.Field)
	case <-time.After(time.Second):
		t.Fatal("expected a change notification")
	}
}

func TestWatcher_DropsWhenFull(t *testing.T) {
	s := NewStore()
	w := s.Watch(1)
	defer w.Close()

	s.SetSelfID("p1")
	s.SetSelfID("p2")
	s.SetSelfID("p3")

	// Only the first notification fits; the store itself holds the latest value.
	assert.Equal(t, "p3", s.SelfID())
	assert.Len(t, w.Changes(), 1)
}

func TestWatcher_CloseIdempotent(t *testing.T) {
	s := NewStore()
	w := s.Watch(4)
	w.Close()
	w.Close()
	assert.True(t, w.IsClosed())

	// Mutations after close must not panic.
	s.SetSelfID("p1")
}

func TestWatcher_SurvivesReset(t *testing.T) {
	s := NewStore()
	w := s.Watch(4)
	defer w.Close()

	s.Reset()

	select {
	case c := <-w.Changes():
		assert.Equal(t, FieldReset, c.Field)
	case <-time.After(time.Second):
		t.Fatal("expected a reset notification")
	}
}
