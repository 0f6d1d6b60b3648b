// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// audit.go records admin mutations in the database so directory changes
// can be traced back to who made them and when.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// AuditLogStore handles admin audit trail operations.
type AuditLogStore struct {
	db *sql.DB
}

// NewAuditLogStore creates a new AuditLogStore.
func NewAuditLogStore(db *sql.DB) *AuditLogStore {
	return &AuditLogStore{db: db}
}

// Log records an admin action against an entity.
func (s *AuditLogStore) Log(entityType string, entityID uuid.UUID, action, actor string) {
	_, err := s.db.Exec(`
		INSERT INTO audit_log (entity_type, entity_id, action, actor)
		VALUES ($1, $2, $3, $4)
	`, entityType, entityID, action, actor)
	if err != nil {
		// Log but don't fail — auditing is best-effort.
		slog.Warn("failed to record audit entry",
			"entity_type", entityType,
			"entity_id", entityID,
			"action", action,
			"actor", actor,
			"error", err,
		)
		return
	}
	slog.Debug("audit entry recorded",
		"entity_type", entityType,
		"entity_id", entityID,
		"action", action,
		"actor", actor,
	)
}

// RecentEntries returns the most recent audit events, newest first.
// Limited to the specified count.
func (s *AuditLogStore) RecentEntries(limit int) ([]AuditEntry, error) {
	rows, err := s.db.Query(`
		SELECT id, entity_type, entity_id, action, actor, recorded_at
		FROM audit_log
		ORDER BY recorded_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}
	defer rows.Close()

	var entries []AuditEntry
	for rows.Next() {
		var e AuditEntry
		if err := rows.Scan(&e.ID, &e.EntityType, &e.EntityID, &e.Action, &e.Actor, &e.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// AuditEntry represents a single recorded admin action.
type AuditEntry struct {
	ID         int64
	EntityType string
	EntityID   uuid.UUID
	Action     string
	Actor      string
	RecordedAt time.Time
}
