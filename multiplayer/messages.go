// Package multiplayer implements the per-file authoritative ordering and
// room membership server described in spec §4.9: clients enter a room keyed
// by file id, submit Transaction requests that are assigned a monotonic
// sequence number and persisted, and receive UserUpdate/UsersInRoom
// broadcasts for presence. Grounded in the teacher's own
// spreadsheet.Server websocket hub, generalized from a single global sheet
// to many file-scoped rooms with authenticated upgrades.
package multiplayer

import "encoding/json"

// MessageType discriminates every wire message by its "type" field (spec
// §6.4).
type MessageType string

const (
	TypeEnterRoom    MessageType = "EnterRoom"
	TypeUsersInRoom  MessageType = "UsersInRoom"
	TypeLeaveRoom    MessageType = "LeaveRoom"
	TypeTransaction  MessageType = "Transaction"
	TypeUserUpdate   MessageType = "UserUpdate"
	TypeError        MessageType = "Error"
)

// rawEnvelope is used only to sniff a message's "type" field before
// unmarshaling the concrete struct; every wire message keeps its
// type-specific fields at the top level rather than nested under "data".
type rawEnvelope struct {
	Type MessageType `json:"type"`
}

// EnterRoomRequest is the C→S EnterRoom payload.
type EnterRoomRequest struct {
	Type      MessageType `json:"type"`
	SessionId string      `json:"session_id"`
	UserId    string      `json:"user_id"`
	FileId    string      `json:"file_id"`
	SheetId   string      `json:"sheet_id"`
	Selection string      `json:"selection"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Email     string      `json:"email"`
	Image     string      `json:"image"`
	CellEdit  *CellEdit   `json:"cell_edit,omitempty"`
	Viewport  string      `json:"viewport"`
}

// CellEdit mirrors the cell a user is actively editing, part of presence.
type CellEdit struct {
	Active    bool   `json:"active"`
	Text      string `json:"text"`
	CursorPos int    `json:"cursor_pos"`
}

// EnterRoomResponse is the S→C EnterRoom acknowledgment.
type EnterRoomResponse struct {
	Type        MessageType `json:"type"`
	FileId      string      `json:"file_id"`
	SequenceNum uint64      `json:"sequence_num"`
}

// RoomUser is one member's presence record as broadcast in UsersInRoom.
type RoomUser struct {
	SessionId string    `json:"session_id"`
	UserId    string    `json:"user_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Image     string    `json:"image"`
	SheetId   string    `json:"sheet_id"`
	Selection string    `json:"selection"`
	CellEdit  *CellEdit `json:"cell_edit,omitempty"`
	Viewport  string    `json:"viewport"`
}

// UsersInRoomMessage is the S→C membership broadcast.
type UsersInRoomMessage struct {
	Type  MessageType `json:"type"`
	Users []RoomUser  `json:"users"`
}

// LeaveRoomRequest is the C→S LeaveRoom payload.
type LeaveRoomRequest struct {
	Type      MessageType `json:"type"`
	SessionId string      `json:"session_id"`
	FileId    string      `json:"file_id"`
}

// TransactionRequest is the C→S Transaction payload: a batch of serialized
// operations to apply atomically. Operations are carried opaquely as
// json.RawMessage — the room assigns a sequence number and persists/
// broadcasts them without interpreting their contents; interpretation is
// the controller's job once the host hands them off (spec's stated
// boundary: "the embedding host that calls operation entry points" is out
// of the core's scope).
type TransactionRequest struct {
	Type       MessageType       `json:"type"`
	Id         string            `json:"id"`
	SessionId  string            `json:"session_id"`
	FileId     string            `json:"file_id"`
	Operations []json.RawMessage `json:"operations"`
}

// TransactionMessage is the S→C fan-out of an accepted transaction.
type TransactionMessage struct {
	Type        MessageType       `json:"type"`
	Id          string            `json:"id"`
	FileId      string            `json:"file_id"`
	Operations  []json.RawMessage `json:"operations"`
	SequenceNum uint64            `json:"sequence_num"`
}

// UserUpdateRequest is the C→S UserUpdate payload (cursor/selection/
// viewport/running-status presence, never persisted or sequenced).
type UserUpdateRequest struct {
	Type      MessageType     `json:"type"`
	SessionId string          `json:"session_id"`
	FileId    string          `json:"file_id"`
	Update    json.RawMessage `json:"update"`
}

// UserUpdateMessage is the S→C fan-out of a UserUpdate.
type UserUpdateMessage struct {
	Type      MessageType     `json:"type"`
	SessionId string          `json:"session_id"`
	FileId    string          `json:"file_id"`
	Update    json.RawMessage `json:"update"`
}

// ErrorMessage is the S→C error payload. Fatal classes (authentication,
// room-not-found, file-permissions) are followed by a close frame.
type ErrorMessage struct {
	Type  MessageType `json:"type"`
	Error string      `json:"error"`
	Fatal bool        `json:"-"`
}

func sniffType(raw []byte) (MessageType, error) {
	var env rawEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", err
	}
	return env.Type, nil
}
