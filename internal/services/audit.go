package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	ActionFlag           = "flag"
	ActionUnflag         = "unflag"
	ActionApproveComment = "approve_comment"
	ActionRejectComment  = "reject_comment"
	ActionWarnUser       = "warn_user"
	ActionSuspendUser    = "suspend_user"
)

// AuditAction is one row of the moderation trail.
type AuditAction struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"createdAt"`
	ActorID     string    `json:"actorId"`
	Action      string    `json:"action"`
	ContentType string    `json:"contentType,omitempty"`
	ContentID   string    `json:"contentId,omitempty"`
	TargetID    string    `json:"targetId,omitempty"`
	Reason      string    `json:"reason,omitempty"`
}

type AuditLog interface {
	Record(ctx context.Context, a AuditAction) error
	Recent(ctx context.Context, limit int) ([]AuditAction, error)
}

// SQLAuditLog keeps the trail in the moderation_actions table.
type SQLAuditLog struct {
	db *sql.DB
}

func NewSQLAuditLog(db *sql.DB) *SQLAuditLog {
	return &SQLAuditLog{db: db}
}

func (l *SQLAuditLog) Record(ctx context.Context, a AuditAction) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now()
	}
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO moderation_actions (id, created_at, actor_id, action, content_type, content_id, target_id, reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, a.CreatedAt, a.ActorID, a.Action,
		nullString(a.ContentType), nullString(a.ContentID), nullString(a.TargetID), nullString(a.Reason))
	if err != nil {
		return fmt.Errorf("audit insert: %w", err)
	}
	return nil
}

func (l *SQLAuditLog) Recent(ctx context.Context, limit int) ([]AuditAction, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, created_at, actor_id, action,
			COALESCE(content_type, ''), COALESCE(content_id, ''), COALESCE(target_id, ''), COALESCE(reason, '')
		FROM moderation_actions
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("audit query: %w", err)
	}
	defer rows.Close()

	actions := []AuditAction{}
	for rows.Next() {
		var a AuditAction
		if err := rows.Scan(&a.ID, &a.CreatedAt, &a.ActorID, &a.Action,
			&a.ContentType, &a.ContentID, &a.TargetID, &a.Reason); err != nil {
			return nil, fmt.Errorf("audit scan: %w", err)
		}
		actions = append(actions, a)
	}
	return actions, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// NopAuditLog is used when no Postgres URI is configured.
type NopAuditLog struct{}

func (NopAuditLog) Record(context.Context, AuditAction) error { return nil }

func (NopAuditLog) Recent(context.Context, int) ([]AuditAction, error) {
	return []AuditAction{}, nil
}
