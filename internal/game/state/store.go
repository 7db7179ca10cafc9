package state

import (
	"fmt"
	"sync"
)

// Field names a region of the store for change notifications.
type Field string

const (
	FieldSelf         Field = "self"
	FieldRoom         Field = "room"
	FieldRoomList     Field = "room_list"
	FieldSession      Field = "session"
	FieldConversation Field = "conversation"
	FieldConnection   Field = "connection"
	FieldReset        Field = "reset"
)

// Change is one store mutation notification delivered to watchers.
type Change struct {
	Field Field
}

// Store is the session state container. All methods are safe for concurrent
// use; every getter returns a copy and every setter replaces the whole field
// value, so consumers never observe a torn intermediate state.
type Store struct {
	mu sync.RWMutex

	selfID       string
	room         Room
	roomList     []RoomInfo
	session      GameSession
	conversation []ConversationTurn
	connection   ConnectionState

	watchMu  sync.Mutex
	watchers map[*Watcher]struct{}
}

// NewStore creates a Store holding the documented initial values: no room,
// no self, status waiting, disconnected with no error.
func NewStore() *Store {
	s := &Store{
		watchers: make(map[*Watcher]struct{}),
	}
	s.room = initialRoom()
	s.session = initialSession()
	return s
}

func initialRoom() Room {
	return Room{Capacity: RoomCapacity}
}

func initialSession() GameSession {
	return GameSession{Status: StatusWaiting}
}

// SelfID returns this client's player identifier, empty before a join.
func (s *Store) SelfID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selfID
}

// SetSelfID records this client's player identifier.
func (s *Store) SetSelfID(id string) {
	s.mu.Lock()
	s.selfID = id
	s.mu.Unlock()
	s.notify(FieldSelf)
}

// SelfRole returns the caller's current role, derived from the roster.
//
// Postcondition: Returns RoleNone when the self player is not in the roster.
func (s *Store) SelfRole() Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.room.Players {
		if p.ID == s.selfID {
			return p.Role
		}
	}
	return RoleNone
}

// Room returns a copy of the current room projection.
func (s *Store) Room() Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyRoom(s.room)
}

// SetRoom replaces the whole room projection.
func (s *Store) SetRoom(r Room) {
	s.mu.Lock()
	s.room = copyRoom(r)
	s.mu.Unlock()
	s.notify(FieldRoom)
}

// RoomList returns a copy of the lobby room listing.
func (s *Store) RoomList() []RoomInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]RoomInfo, len(s.roomList))
	copy(out, s.roomList)
	return out
}

// SetRoomList replaces the lobby room listing.
func (s *Store) SetRoomList(rooms []RoomInfo) {
	list := make([]RoomInfo, len(rooms))
	copy(list, rooms)
	s.mu.Lock()
	s.roomList = list
	s.mu.Unlock()
	s.notify(FieldRoomList)
}

// Session returns a copy of the game session aggregate.
func (s *Store) Session() GameSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

// SetSession replaces the whole game session aggregate.
//
// Precondition: sess.Status must not move backwards relative to the current
// status (waiting → active → ended is one-directional).
// Postcondition: Returns an error and leaves the store unchanged on an
// illegal status transition.
func (s *Store) SetSession(sess GameSession) error {
	s.mu.Lock()
	if !statusReachable(s.session.Status, sess.Status) {
		cur := s.session.Status
		s.mu.Unlock()
		return fmt.Errorf("illegal game status transition %q → %q", cur, sess.Status)
	}
	s.session = sess
	s.mu.Unlock()
	s.notify(FieldSession)
	return nil
}

// statusReachable reports whether the one-directional status order permits
// moving from cur to next. Staying in place is always permitted.
func statusReachable(cur, next GameStatus) bool {
	rank := map[GameStatus]int{StatusWaiting: 0, StatusActive: 1, StatusEnded: 2}
	rc, ok1 := rank[cur]
	rn, ok2 := rank[next]
	return ok1 && ok2 && rn >= rc
}

// Conversation returns a copy of the ordered transcript.
func (s *Store) Conversation() []ConversationTurn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ConversationTurn, len(s.conversation))
	copy(out, s.conversation)
	return out
}

// AppendTurn appends one turn to the transcript. Turns are append-only:
// existing entries are never reordered or mutated.
func (s *Store) AppendTurn(t ConversationTurn) {
	s.mu.Lock()
	s.conversation = append(s.conversation, t)
	s.mu.Unlock()
	s.notify(FieldConversation)
}

// ReplaceConversation replaces the transcript wholesale. Used after a
// reconnect or late join; replaying the same history twice yields the same
// transcript, not a doubled one.
func (s *Store) ReplaceConversation(turns []ConversationTurn) {
	replacement := make([]ConversationTurn, len(turns))
	copy(replacement, turns)
	s.mu.Lock()
	s.conversation = replacement
	s.mu.Unlock()
	s.notify(FieldConversation)
}

// Connection returns a copy of the connectivity state.
func (s *Store) Connection() ConnectionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connection
}

// SetConnection replaces the whole connectivity state. Only the connection
// manager writes through this setter.
func (s *Store) SetConnection(c ConnectionState) {
	s.mu.Lock()
	s.connection = c
	s.mu.Unlock()
	s.notify(FieldConnection)
}

// SetLastError records an application-level error descriptor without
// altering connectivity.
func (s *Store) SetLastError(msg string) {
	s.mu.Lock()
	s.connection.Err = msg
	s.mu.Unlock()
	s.notify(FieldConnection)
}

// ResetGame restores the room, session, conversation, and self identity to
// their initial values in one atomic operation, preserving connectivity.
// Used when the client leaves its room.
func (s *Store) ResetGame() {
	s.mu.Lock()
	s.selfID = ""
	s.room = initialRoom()
	s.session = initialSession()
	s.conversation = nil
	s.mu.Unlock()
	s.notify(FieldReset)
}

// Reset restores every field to its initial value in one atomic operation.
// Watchers survive a reset and observe a single FieldReset change.
func (s *Store) Reset() {
	s.mu.Lock()
	s.selfID = ""
	s.room = initialRoom()
	s.roomList = nil
	s.session = initialSession()
	s.conversation = nil
	s.connection = ConnectionState{}
	s.mu.Unlock()
	s.notify(FieldReset)
}

func copyRoom(r Room) Room {
	out := r
	out.Players = make([]Player, len(r.Players))
	copy(out.Players, r.Players)
	if out.Capacity == 0 {
		out.Capacity = RoomCapacity
	}
	return out
}
