package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// AuditAction represents the type of action being audited.
type AuditAction string

const (
	ActionExportParts      AuditAction = "export_parts"
	ActionExportPartDetail AuditAction = "export_part_detail"
	ActionRefresh          AuditAction = "refresh"
)

// AuditEntry represents a single audit log entry.
type AuditEntry struct {
	ID          string      `json:"id"`
	Action      AuditAction `json:"action"`
	SnapshotID  string      `json:"snapshotId,omitempty"`
	ProductCode string      `json:"productCode,omitempty"`
	PartCode    string      `json:"partCode,omitempty"`
	FileName    string      `json:"fileName,omitempty"`
	Bytes       int         `json:"bytes,omitempty"`
	IPAddress   string      `json:"ipAddress,omitempty"`
	UserAgent   string      `json:"userAgent,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// AuditLogParams contains parameters for creating an audit log entry.
type AuditLogParams struct {
	Action      AuditAction
	SnapshotID  string
	ProductCode string
	PartCode    string
	FileName    string
	Bytes       int
	IPAddress   string
	UserAgent   string
}

// AuditLog stores and lists audit entries.
type AuditLog interface {
	Record(ctx context.Context, params AuditLogParams) (*AuditEntry, error)
	Recent(ctx context.Context, limit int) ([]AuditEntry, error)
	// Purge deletes entries created before cutoff and returns how many went.
	Purge(ctx context.Context, cutoff time.Time) (int64, error)
}

// auditSchema creates the audit table on first use.
const auditSchema = `
CREATE TABLE IF NOT EXISTS catalog_audit_log (
	id           UUID PRIMARY KEY,
	action       TEXT NOT NULL,
	snapshot_id  TEXT,
	product_code TEXT,
	part_code    TEXT,
	file_name    TEXT,
	bytes        INTEGER,
	ip_address   TEXT,
	user_agent   TEXT,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS catalog_audit_log_created_at_idx ON catalog_audit_log (created_at DESC);
`

// PgAuditLog persists audit entries in PostgreSQL.
type PgAuditLog struct {
	db DBTX
}

// NewPgAuditLog creates an audit log backed by db.
func NewPgAuditLog(db DBTX) *PgAuditLog {
	return &PgAuditLog{db: db}
}

// EnsureSchema creates the audit table if it does not exist.
func (a *PgAuditLog) EnsureSchema(ctx context.Context) error {
	if _, err := a.db.Exec(ctx, auditSchema); err != nil {
		return fmt.Errorf("audit schema: %w", err)
	}
	return nil
}

// Record inserts a new audit entry.
func (a *PgAuditLog) Record(ctx context.Context, params AuditLogParams) (*AuditEntry, error) {
	entry := newAuditEntry(params)

	err := a.db.QueryRow(ctx, `
		INSERT INTO catalog_audit_log
			(id, action, snapshot_id, product_code, part_code, file_name, bytes, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at`,
		uuid.MustParse(entry.ID),
		string(entry.Action),
		toPgText(entry.SnapshotID),
		toPgText(entry.ProductCode),
		toPgText(entry.PartCode),
		toPgText(entry.FileName),
		toPgInt4(entry.Bytes),
		toPgText(entry.IPAddress),
		toPgText(entry.UserAgent),
	).Scan(&entry.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert audit entry: %w", err)
	}

	return entry, nil
}

// Recent returns the newest entries first.
func (a *PgAuditLog) Recent(ctx context.Context, limit int) ([]AuditEntry, error) {
	rows, err := a.db.Query(ctx, `
		SELECT id::text, action, snapshot_id, product_code, part_code, file_name, bytes,
		       ip_address, user_agent, created_at
		FROM catalog_audit_log
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}

	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (AuditEntry, error) {
		var (
			e                                     AuditEntry
			action                                string
			snapshot, product, part, file, ip, ua pgtype.Text
			size                                  pgtype.Int4
		)
		if err := row.Scan(&e.ID, &action, &snapshot, &product, &part, &file, &size, &ip, &ua, &e.CreatedAt); err != nil {
			return e, err
		}
		e.Action = AuditAction(action)
		e.SnapshotID = snapshot.String
		e.ProductCode = product.String
		e.PartCode = part.String
		e.FileName = file.String
		e.Bytes = int(size.Int32)
		e.IPAddress = ip.String
		e.UserAgent = ua.String
		return e, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan audit log: %w", err)
	}
	return entries, nil
}

// Purge deletes entries older than cutoff.
func (a *PgAuditLog) Purge(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := a.db.Exec(ctx, `DELETE FROM catalog_audit_log WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge audit log: %w", err)
	}
	return tag.RowsAffected(), nil
}

// MemoryAuditLog keeps the most recent entries in memory.
// Used when no database is configured.
type MemoryAuditLog struct {
	mu      sync.Mutex
	entries []AuditEntry
	max     int
}

// NewMemoryAuditLog creates an in-memory log holding at most capacity entries.
func NewMemoryAuditLog(capacity int) *MemoryAuditLog {
	if capacity <= 0 {
		capacity = 100
	}
	return &MemoryAuditLog{max: capacity}
}

// Record appends an entry, evicting the oldest beyond capacity.
func (m *MemoryAuditLog) Record(_ context.Context, params AuditLogParams) (*AuditEntry, error) {
	entry := newAuditEntry(params)
	entry.CreatedAt = time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, *entry)
	if len(m.entries) > m.max {
		m.entries = m.entries[len(m.entries)-m.max:]
	}
	return entry, nil
}

// Recent returns up to limit entries, newest first.
func (m *MemoryAuditLog) Recent(_ context.Context, limit int) ([]AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.entries)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]AuditEntry, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, m.entries[i])
	}
	return out, nil
}

// Purge drops entries older than cutoff.
func (m *MemoryAuditLog) Purge(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Entries are appended in time order.
	i := 0
	for i < len(m.entries) && m.entries[i].CreatedAt.Before(cutoff) {
		i++
	}
	m.entries = m.entries[i:]
	return int64(i), nil
}

func newAuditEntry(params AuditLogParams) *AuditEntry {
	return &AuditEntry{
		ID:          uuid.NewString(),
		Action:      params.Action,
		SnapshotID:  params.SnapshotID,
		ProductCode: params.ProductCode,
		PartCode:    params.PartCode,
		FileName:    params.FileName,
		Bytes:       params.Bytes,
		IPAddress:   params.IPAddress,
		UserAgent:   params.UserAgent,
	}
}

func toPgText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

func toPgInt4(n int) pgtype.Int4 {
	return pgtype.Int4{Int32: int32(n), Valid: n != 0}
}
