// Package controller implements the single entry point for grid mutation:
// operation execution, the forward/reverse transaction log, undo/redo,
// dependency-driven recomputation, clipboard, and the rendering snapshot.
package controller

import "github.com/google/uuid"

// TransactionSource classifies why a transaction is being executed, which
// determines how it interacts with the undo/redo stacks and peer broadcast.
type TransactionSource int

const (
	// SourceUser is an ordinary local edit: pushed to the undo stack,
	// forward-logged for broadcast, its reverse log retained.
	SourceUser TransactionSource = iota
	// SourceUndo executes a transaction's reverse operations, popped off
	// the undo stack, pushing the new inverse onto the redo stack.
	SourceUndo
	// SourceRedo is the mirror of SourceUndo.
	SourceRedo
	// SourceServerReplayed applies operations received from peers; it
	// must not touch the local undo/redo stacks.
	SourceServerReplayed
	// SourceTransientInternal carries recomputation side effects
	// (dependent cell re-evaluation) scheduled on the same transaction
	// as the edit that triggered them.
	SourceTransientInternal
)

func (s TransactionSource) String() string {
	switch s {
	case SourceUser:
		return "user"
	case SourceUndo:
		return "undo"
	case SourceRedo:
		return "redo"
	case SourceServerReplayed:
		return "server-replayed"
	case SourceTransientInternal:
		return "transient-internal"
	default:
		return "unknown"
	}
}

// Transaction is a sequence number, a correlation id, a source
// classification, the ordered operations applied, the ordered reverse
// operations (for undo), and a cursor snapshot taken before execution.
type Transaction struct {
	SequenceNum     uint64
	CorrelationId   uuid.UUID
	Source          TransactionSource
	Operations      []Operation
	ReverseOps      []Operation
	CursorSnapshot  CursorSnapshot
}

// CursorSnapshot records enough of the UI cursor state to restore it on
// undo/redo; the core treats it as opaque data round-tripped by the host.
type CursorSnapshot struct {
	SheetId string
	X, Y    int64
}

// NewTransaction returns an empty transaction with a fresh correlation id.
func NewTransaction(source TransactionSource, cursor CursorSnapshot) *Transaction {
	return &Transaction{
		CorrelationId:  uuid.New(),
		Source:         source,
		CursorSnapshot: cursor,
	}
}

// record appends op to the forward log and rev to the reverse log, in
// lock-step (reverse operations undo in the opposite order they were
// recorded, i.e. the caller must reverse ReverseOps before replaying them).
func (t *Transaction) record(op, rev Operation) {
	if rev == nil {
		return
	}
	t.Operations = append(t.Operations, op)
	t.ReverseOps = append(t.ReverseOps, rev)
}

// Reversed returns the reverse operations in the order they must be
// executed to undo the transaction (last operation's reverse first).
func (t *Transaction) Reversed() []Operation {
	out := make([]Operation, len(t.ReverseOps))
	for i, op := range t.ReverseOps {
		out[len(out)-1-i] = op
	}
	return out
}
