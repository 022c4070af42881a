package postgres

import (
	"context"

	auditDatamodel "github.com/frahmantamala/salesdesk/internal/core/datamodel/audit"
	"github.com/frahmantamala/salesdesk/internal/orgchart"
	"github.com/jmoiron/sqlx"
)

// AuditRepository stores the append-only audit log with plain SQL. Seq is
// assigned per tenant on append and orders the log newest first.
type AuditRepository struct {
	db       sqlx.ExtContext
	bindType int
}

// NewAuditRepository accepts a *sqlx.DB or a *sqlx.Tx. driverName selects
// the placeholder style, since a Tx built around a foreign *sql.Tx does not
// carry one.
func NewAuditRepository(db sqlx.ExtContext, driverName string) orgchart.AuditRepository {
	return &AuditRepository{db: db, bindType: sqlx.BindType(driverName)}
}

func (r *AuditRepository) rebind(query string) string {
	return sqlx.Rebind(r.bindType, query)
}

func (r *AuditRepository) Append(ctx context.Context, entry *auditDatamodel.Entry) error {
	var next int64
	if err := sqlx.GetContext(ctx, r.db, &next, r.rebind(
		`SELECT COALESCE(MAX(seq), 0) + 1 FROM audit_logs WHERE tenant_id = ?`), entry.TenantID); err != nil {
		return err
	}
	entry.Seq = next

	_, err := r.db.ExecContext(ctx, r.rebind(
		`INSERT INTO audit_logs (id, tenant_id, timestamp, action, details, seq, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`),
		entry.ID, entry.TenantID, entry.Timestamp, entry.Action, entry.Details, entry.Seq, entry.CreatedAt)
	return err
}

func (r *AuditRepository) ListByTenant(ctx context.Context, tenantID string, limit int) ([]*auditDatamodel.Entry, error) {
	entries := []*auditDatamodel.Entry{}
	err := sqlx.SelectContext(ctx, r.db, &entries, r.rebind(
		`SELECT id, tenant_id, timestamp, action, details, seq, created_at
		 FROM audit_logs
		 WHERE tenant_id = ?
		 ORDER BY seq DESC
		 LIMIT ?`), tenantID, limit)
	return entries, err
}

func (r *AuditRepository) DeleteAll(ctx context.Context, tenantID string) error {
	_, err := r.db.ExecContext(ctx, r.rebind(`DELETE FROM audit_logs WHERE tenant_id = ?`), tenantID)
	return err
}
