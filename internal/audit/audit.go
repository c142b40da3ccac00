package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Logger struct {
	pool *pgxpool.Pool
}

func NewLogger(pool *pgxpool.Pool) *Logger {
	return &Logger{pool: pool}
}

type Entry struct {
	Action     string
	EntityType string
	EntityID   string
	Actor      string
	RequestID  string
	Metadata   map[string]any
}

func (l *Logger) Log(ctx context.Context, entry Entry) error {
	metadata := []byte("{}")
	if len(entry.Metadata) > 0 {
		encoded, err := json.Marshal(entry.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata: %w", err)
		}
		metadata = encoded
	}

	var entityID *string
	if entry.EntityID != "" {
		entityID = &entry.EntityID
	}
	var requestID *string
	if entry.RequestID != "" {
		requestID = &entry.RequestID
	}

	_, err := l.pool.Exec(ctx, `
		INSERT INTO audit_log (action, entity_type, entity_id, actor, request_id, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, entry.Action, entry.EntityType, entityID, entry.Actor, requestID, metadata)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}
