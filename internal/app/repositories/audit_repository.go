package repositories

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emre/campuserp/internal/app/models"
)

// AuditRepository persists and queries audit log entries
type AuditRepository struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Record implements audit.Recorder
func (r *AuditRepository) Record(ctx context.Context, entry *models.AuditLog) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO audit_logs (actor_id, actor_role, action, resource_type, resource_id, description, ip_address, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, entry.ActorID, entry.ActorRole, entry.Action, entry.ResourceType,
		entry.ResourceID, entry.Description, entry.IPAddress, entry.UserAgent, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("error recording audit entry: %w", err)
	}
	return nil
}

// AuditFilter narrows audit log queries
type AuditFilter struct {
	ActorID      int64
	Action       string
	ResourceType string
	From         time.Time
	To           time.Time
	Page         int
	Size         int
}

// List retrieves audit entries newest first
func (r *AuditRepository) List(ctx context.Context, filter AuditFilter) ([]*models.AuditLog, int64, error) {
	base := r.sb.Select(
		"id", "actor_id", "actor_role", "action", "resource_type",
		"resource_id", "description", "ip_address", "user_agent", "created_at",
	).From("audit_logs")
	count := r.sb.Select("COUNT(*)").From("audit_logs")

	where := sq.And{}
	if filter.ActorID > 0 {
		where = append(where, sq.Eq{"actor_id": filter.ActorID})
	}
	if filter.Action != "" {
		where = append(where, sq.Eq{"action": filter.Action})
	}
	if filter.ResourceType != "" {
		where = append(where, sq.Eq{"resource_type": filter.ResourceType})
	}
	if !filter.From.IsZero() {
		where = append(where, sq.GtOrEq{"created_at": filter.From})
	}
	if !filter.To.IsZero() {
		where = append(where, sq.LtOrEq{"created_at": filter.To})
	}
	if len(where) > 0 {
		base = base.Where(where)
		count = count.Where(where)
	}

	countSQL, countArgs, err := count.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count audit query: %w", err)
	}

	var totalItems int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&totalItems); err != nil {
		return nil, 0, fmt.Errorf("failed to count audit entries: %w", err)
	}

	base = base.OrderBy("created_at DESC").
		Limit(uint64(filter.Size)).
		Offset(uint64((filter.Page - 1) * filter.Size))

	querySQL, queryArgs, err := base.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list audit query: %w", err)
	}

	rows, err := r.db.Query(ctx, querySQL, queryArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query audit entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.AuditLog
	for rows.Next() {
		var entry models.AuditLog
		err := rows.Scan(
			&entry.ID, &entry.ActorID, &entry.ActorRole, &entry.Action,
			&entry.ResourceType, &entry.ResourceID, &entry.Description,
			&entry.IPAddress, &entry.UserAgent, &entry.CreatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning audit entry: %w", err)
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return entries, totalItems, nil
}

// DeleteOlderThan prunes entries past the retention window
func (r *AuditRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM audit_logs WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("error pruning audit entries: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}
