package multiplayer

import (
	"sync"
	"time"
)

// member is one connection's presence record plus its last-seen time for
// the heartbeat eviction sweep.
type member struct {
	conn       *connection
	user       RoomUser
	lastSeenAt time.Time
}

// Room serializes every mutation to one file's multiplayer state behind a
// single mutex (spec §5: "all mutations to a Room go through the Room's
// serialized mutation path; broadcasts happen after the sequence number is
// assigned"). sequenceNum is strictly increasing and never reused.
type Room struct {
	FileId string

	mu          sync.Mutex
	sequenceNum uint64
	members     map[string]*member // keyed by session id

	store Store
	fanout ClusterFanout
}

// NewRoom returns an empty room for fileId, resuming sequenceNum from the
// persisted log (0 if none exists yet).
func NewRoom(fileId string, store Store, fanout ClusterFanout) *Room {
	r := &Room{
		FileId:  fileId,
		members: make(map[string]*member),
		store:   store,
		fanout:  fanout,
	}
	if store != nil {
		r.sequenceNum = store.LastSequenceNum(fileId)
	}
	return r
}

// Enter admits a connection, recording its presence and returning the
// room's current sequence number plus a snapshot of every other member's
// presence for UsersInRoom (spec §4.9: "server responds with the current
// sequence_num, broadcasts an updated UsersInRoom to the room's other
// members").
func (r *Room) Enter(conn *connection, req EnterRoomRequest) (sequenceNum uint64, others []RoomUser) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.members[req.SessionId] = &member{
		conn: conn,
		user: RoomUser{
			SessionId: req.SessionId,
			UserId:    req.UserId,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Email:     req.Email,
			Image:     req.Image,
			SheetId:   req.SheetId,
			Selection: req.Selection,
			CellEdit:  req.CellEdit,
			Viewport:  req.Viewport,
		},
		lastSeenAt: time.Now(),
	}
	for id, m := range r.members {
		if id != req.SessionId {
			others = append(others, m.user)
		}
	}
	return r.sequenceNum, others
}

// Leave removes a session and reports whether the room is now empty (spec
// §4.9: "when the last user leaves a room, the room is released").
func (r *Room) Leave(sessionId string) (empty bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.members, sessionId)
	return len(r.members) == 0
}

// Touch refreshes a session's last-seen time. The server calls it for every
// Transaction and UserUpdate message, so either kind of traffic counts as a
// heartbeat.
func (r *Room) Touch(sessionId string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.members[sessionId]; ok {
		m.lastSeenAt = time.Now()
	}
}

// ApplyTransaction assigns the next sequence number, persists the
// operations, and returns the fan-out message for every member except the
// sender (spec §4.9: "assign the next sequence_num, persist the
// operations, and broadcast ... to all room members except the sender").
func (r *Room) ApplyTransaction(req TransactionRequest) TransactionMessage {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sequenceNum++
	msg := TransactionMessage{
		Type:        TypeTransaction,
		Id:          req.Id,
		FileId:      req.FileId,
		Operations:  req.Operations,
		SequenceNum: r.sequenceNum,
	}
	if r.store != nil {
		r.store.Append(req.FileId, msg.SequenceNum, msg.Operations)
	}
	r.broadcastExceptLocked(req.SessionId, msg)
	if r.fanout != nil {
		r.fanout.Publish(req.FileId, msg)
	}
	return msg
}

// BroadcastUserUpdate fans out a presence update without a sequence number
// and without persistence (spec §4.9).
func (r *Room) BroadcastUserUpdate(req UserUpdateRequest) {
	r.mu.Lock()
	defer r.mu.Unlock()
	msg := UserUpdateMessage{Type: TypeUserUpdate, SessionId: req.SessionId, FileId: req.FileId, Update: req.Update}
	r.broadcastExceptLocked(req.SessionId, msg)
}

// ReplaySince returns every persisted transaction after lastSeen, in order,
// for a reconnecting client (spec §4.9: "a client may request transactions
// after its last-seen sequence number; server replays in order").
func (r *Room) ReplaySince(lastSeen uint64) []TransactionMessage {
	if r.store == nil {
		return nil
	}
	return r.store.Since(r.FileId, lastSeen)
}

// EvictIdle removes members whose last-seen time is older than timeout,
// broadcasting the updated membership if any were removed, and reports
// whether the room is now empty (spec §4.9 heartbeat eviction).
func (r *Room) EvictIdle(timeout time.Duration) (evicted []string, empty bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := time.Now().Add(-timeout)
	for id, m := range r.members {
		if m.lastSeenAt.Before(cutoff) {
			evicted = append(evicted, id)
			delete(r.members, id)
		}
	}
	if len(evicted) > 0 {
		r.broadcastAllLocked(UsersInRoomMessage{Type: TypeUsersInRoom, Users: r.snapshotLocked()})
	}
	return evicted, len(r.members) == 0
}

// IsEmpty reports whether the room currently has no members.
func (r *Room) IsEmpty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members) == 0
}

// Snapshot returns every current member's presence record.
func (r *Room) Snapshot() []RoomUser {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// BroadcastAll sends msg to every current member, taking the room's lock.
func (r *Room) BroadcastAll(msg any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.broadcastAllLocked(msg)
}

func (r *Room) snapshotLocked() []RoomUser {
	out := make([]RoomUser, 0, len(r.members))
	for _, m := range r.members {
		out = append(out, m.user)
	}
	return out
}

func (r *Room) broadcastExceptLocked(exceptSessionId string, msg any) {
	for id, m := range r.members {
		if id == exceptSessionId {
			continue
		}
		m.conn.send(msg)
	}
}

func (r *Room) broadcastAllLocked(msg any) {
	for _, m := range r.members {
		m.conn.send(msg)
	}
}
