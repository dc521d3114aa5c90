package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// Service is the activity recorder. Writes are append-only and
// best-effort: a failed audit write must never undo the action it
// describes, so callers log the returned error instead of propagating.
type Service interface {
	AuditLog(ctx context.Context, ispID *snowflake.ID, actorType ActorType, actorID *string, action, targetType string, targetID *string, metadata map[string]any) error
	List(ctx context.Context, filter ListFilter) ([]*AuditLog, error)
}
