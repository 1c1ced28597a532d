package multiplayer

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Server is the multiplayer hub: one per process, owning every open Room
// and dispatching inbound wire messages to the right one. Grounded in the
// teacher's spreadsheet.Server (a single global sheet with one upgrader and
// a client set); generalized here to many file-scoped rooms, each
// serializing its own mutations independently.
type Server struct {
	cfg  Config
	jwks *JWKSet

	store  Store
	fanout ClusterFanout

	mu    sync.Mutex
	rooms map[string]*Room

	upgrader websocket.Upgrader
}

// NewServer constructs a hub. jwks may be nil if cfg.AuthenticateJWT is
// false. store may be nil to fall back to an in-memory log per room.
func NewServer(cfg Config, jwks *JWKSet, store Store, fanout ClusterFanout) *Server {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Server{
		cfg:    cfg,
		jwks:   jwks,
		store:  store,
		fanout: fanout,
		rooms:  make(map[string]*Room),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// roomFor returns the room for fileId, creating it if this is the first
// connection.
func (s *Server) roomFor(fileId string) *Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.rooms[fileId]; ok {
		return r
	}
	r := NewRoom(fileId, s.store, s.fanout)
	s.rooms[fileId] = r
	return r
}

func (s *Server) releaseRoomIfEmpty(fileId string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.rooms[fileId]; ok && r.IsEmpty() {
		delete(s.rooms, fileId)
	}
}

// HandleWebSocket upgrades the connection (validating the JWT cookie first,
// when configured) and runs its read loop until disconnect (spec §4.9,
// §6.4).
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.cfg.AuthenticateJWT {
		cookie, err := r.Cookie("jwt")
		if err != nil {
			http.Error(w, "missing jwt cookie", http.StatusUnauthorized)
			return
		}
		if _, err := ValidateToken(cookie.Value, s.jwks); err != nil {
			http.Error(w, "invalid jwt", http.StatusUnauthorized)
			return
		}
	}

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("multiplayer: upgrade error: %v", err)
		return
	}
	conn := newConnection(ws)
	defer ws.Close()

	var joinedRoom *Room
	var sessionId, fileId string
	defer func() {
		if joinedRoom != nil {
			empty := joinedRoom.Leave(sessionId)
			joinedRoom.BroadcastAll(UsersInRoomMessage{Type: TypeUsersInRoom, Users: joinedRoom.Snapshot()})
			if empty {
				s.releaseRoomIfEmpty(fileId)
			}
		}
	}()

	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			break
		}
		msgType, err := sniffType(raw)
		if err != nil {
			conn.sendError("malformed message", false)
			continue
		}
		switch msgType {
		case TypeEnterRoom:
			var req EnterRoomRequest
			if err := json.Unmarshal(raw, &req); err != nil {
				conn.sendError("malformed EnterRoom", false)
				continue
			}
			room := s.roomFor(req.FileId)
			seq, _ := room.Enter(conn, req)
			joinedRoom, sessionId, fileId = room, req.SessionId, req.FileId
			conn.send(EnterRoomResponse{Type: TypeEnterRoom, FileId: req.FileId, SequenceNum: seq})
			room.BroadcastAll(UsersInRoomMessage{Type: TypeUsersInRoom, Users: room.Snapshot()})

		case TypeLeaveRoom:
			var req LeaveRoomRequest
			if err := json.Unmarshal(raw, &req); err == nil && joinedRoom != nil {
				empty := joinedRoom.Leave(req.SessionId)
				joinedRoom.BroadcastAll(UsersInRoomMessage{Type: TypeUsersInRoom, Users: joinedRoom.Snapshot()})
				if empty {
					s.releaseRoomIfEmpty(req.FileId)
				}
				joinedRoom = nil
			}

		case TypeTransaction:
			var req TransactionRequest
			if err := json.Unmarshal(raw, &req); err != nil {
				conn.sendError("malformed Transaction", false)
				continue
			}
			if joinedRoom == nil {
				conn.sendError("not in a room", true)
				return
			}
			joinedRoom.Touch(req.SessionId)
			joinedRoom.ApplyTransaction(req)

		case TypeUserUpdate:
			var req UserUpdateRequest
			if err := json.Unmarshal(raw, &req); err != nil {
				continue
			}
			if joinedRoom == nil {
				continue
			}
			joinedRoom.Touch(req.SessionId)
			joinedRoom.BroadcastUserUpdate(req)

		default:
			conn.sendError("unknown message type", false)
		}
	}
}

// SweepIdle runs forever (intended as a goroutine), evicting idle
// connections from every room on cfg.HeartbeatCheckInterval and releasing
// rooms that become empty (spec §4.9: "a background task evicts idle
// connections after a configurable heartbeat timeout").
func (s *Server) SweepIdle(stop <-chan struct{}) {
	ticker := time.NewTicker(s.cfg.HeartbeatCheckInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.sweepOnce()
		}
	}
}

func (s *Server) sweepOnce() {
	s.mu.Lock()
	rooms := make([]*Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		rooms = append(rooms, r)
	}
	s.mu.Unlock()

	for _, r := range rooms {
		evicted, empty := r.EvictIdle(s.cfg.HeartbeatTimeout)
		if len(evicted) > 0 {
			log.Printf("multiplayer: evicted %d idle session(s) from room %s", len(evicted), r.FileId)
		}
		if empty {
			s.releaseRoomIfEmpty(r.FileId)
		}
	}
}
