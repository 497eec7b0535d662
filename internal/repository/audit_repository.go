package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/netip"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditEvent represents an account audit event
type AuditEvent struct {
	EventType     string                 // account_created, account_deleted, account_imported, code_verify_failed, etc.
	ActorID       string                 // User ID (token subject)
	ClientIP      string                 // Client IP address
	UserAgent     string                 // Browser/client UA
	Success       bool                   // Event succeeded?
	FailureReason string                 // Reason for failure (if any)
	Metadata      map[string]interface{} // Additional data (account_id, issuer, count, etc.)
}

// AuditLog is a stored audit row
type AuditLog struct {
	ID        int64                  `json:"id"`
	Action    string                 `json:"action"`
	ActorID   string                 `json:"actor_id"`
	Details   map[string]interface{} `json:"details"`
	CreatedAt time.Time              `json:"created_at"`
}

// AuditRepository defines audit logging operations
type AuditRepository interface {
	LogEvent(ctx context.Context, event AuditEvent) error
	ListByActor(ctx context.Context, actorID string, limit int32) ([]AuditLog, error)
}

type auditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(pool *pgxpool.Pool) AuditRepository {
	return &auditRepository{pool: pool}
}

// LogEvent logs a generic audit event
func (r *auditRepository) LogEvent(ctx context.Context, event AuditEvent) error {
	details := map[string]interface{}{
		"success":        event.Success,
		"failure_reason": event.FailureReason,
	}
	// Merge metadata
	for k, v := range event.Metadata {
		details[k] = v
	}
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("failed to encode audit details: %w", err)
	}

	// Parse client IP
	var clientIPAddr *netip.Addr
	if ip, err := netip.ParseAddr(event.ClientIP); err == nil {
		clientIPAddr = &ip
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO audit_logs (action, actor_id, details, ip_address, user_agent) VALUES ($1, $2, $3, $4, $5)`,
		event.EventType,
		pgtype.Text{String: event.ActorID, Valid: event.ActorID != ""},
		detailsJSON,
		clientIPAddr,
		pgtype.Text{String: event.UserAgent, Valid: event.UserAgent != ""},
	)
	if err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

func (r *auditRepository) ListByActor(ctx context.Context, actorID string, limit int32) ([]AuditLog, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, action, actor_id, details, created_at FROM audit_logs
		 WHERE actor_id = $1 ORDER BY created_at DESC LIMIT $2`, actorID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (AuditLog, error) {
		var (
			l       AuditLog
			actor   pgtype.Text
			details []byte
		)
		if err := row.Scan(&l.ID, &l.Action, &actor, &details, &l.CreatedAt); err != nil {
			return l, err
		}
		l.ActorID = actor.String
		if err := json.Unmarshal(details, &l.Details); err != nil {
			return l, err
		}
		return l, nil
	})
}
