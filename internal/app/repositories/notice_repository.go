package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emre/campuserp/internal/app/models"
	"github.com/emre/campuserp/internal/pkg/apperrors"
)

// NoticeRepository handles database operations for notices and their view
// logs. Target role and department sets are stored as Postgres arrays.
type NoticeRepository struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

// NewNoticeRepository creates a new notice repository
func NewNoticeRepository(pool *pgxpool.Pool) *NoticeRepository {
	return &NoticeRepository{
		db: pool,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func rolesToStrings(roles []models.Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}

func stringsToRoles(values []string) []models.Role {
	out := make([]models.Role, len(values))
	for i, v := range values {
		out[i] = models.Role(v)
	}
	return out
}

func scanNotice(row pgx.Row) (*models.Notice, error) {
	var n models.Notice
	var roles []string
	var depts []int64
	err := row.Scan(&n.ID, &n.Title, &n.Body, &n.AuthorID, &n.Priority,
		&n.Status, &roles, &depts, &n.AttachmentURL, &n.ExpiresAt,
		&n.CreatedAt, &n.UpdatedAt, &n.ViewCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNoticeNotFound
		}
		return nil, fmt.Errorf("error scanning notice: %w", err)
	}
	n.TargetRoles = stringsToRoles(roles)
	n.TargetDepts = depts
	return &n, nil
}

const noticeSelect = `
	SELECT n.id, n.title, n.body, n.author_id, n.priority, n.status,
	       n.target_roles, n.target_depts, n.attachment_url, n.expires_at,
	       n.created_at, n.updated_at,
	       (SELECT COUNT(*) FROM notice_views v WHERE v.notice_id = n.id)
	FROM notices n
`

// Create inserts a notice
func (r *NoticeRepository) Create(ctx context.Context, notice *models.Notice) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO notices (title, body, author_id, priority, status, target_roles, target_depts, attachment_url, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`, notice.Title, notice.Body, notice.AuthorID, notice.Priority,
		notice.Status, rolesToStrings(notice.TargetRoles), notice.TargetDepts,
		notice.AttachmentURL, notice.ExpiresAt).Scan(&notice.ID, &notice.CreatedAt, &notice.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error creating notice: %w", err)
	}
	return nil
}

// GetByID retrieves a notice by id
func (r *NoticeRepository) GetByID(ctx context.Context, id int64) (*models.Notice, error) {
	return scanNotice(r.db.QueryRow(ctx, noticeSelect+` WHERE n.id = $1`, id))
}

// NoticeFilter narrows notice list queries
type NoticeFilter struct {
	Priority string
	Status   string
	Search   string
	Page     int
	Size     int
}

// ListForReader retrieves published, unexpired notices addressed to the
// given role and department. Empty target arrays match everyone; the
// narrowing runs server-side so untargeted notices never leave the
// database.
func (r *NoticeRepository) ListForReader(ctx context.Context, role models.Role, departmentID int64, filter NoticeFilter) ([]*models.Notice, int64, error) {
	targeting := sq.And{
		sq.Eq{"n.status": models.NoticePublished},
		sq.Expr("(n.expires_at IS NULL OR n.expires_at > NOW())"),
		sq.Expr("(cardinality(n.target_roles) = 0 OR ? = ANY(n.target_roles))", string(role)),
		sq.Expr("(cardinality(n.target_depts) = 0 OR ? = ANY(n.target_depts))", departmentID),
	}
	return r.list(ctx, targeting, filter)
}

// ListAll retrieves every notice regardless of targeting or status.
// Admin-only.
func (r *NoticeRepository) ListAll(ctx context.Context, filter NoticeFilter) ([]*models.Notice, int64, error) {
	return r.list(ctx, sq.And{}, filter)
}

func (r *NoticeRepository) list(ctx context.Context, where sq.And, filter NoticeFilter) ([]*models.Notice, int64, error) {
	base := r.sb.Select(
		"n.id", "n.title", "n.body", "n.author_id", "n.priority", "n.status",
		"n.target_roles", "n.target_depts", "n.attachment_url", "n.expires_at",
		"n.created_at", "n.updated_at",
		"(SELECT COUNT(*) FROM notice_views v WHERE v.notice_id = n.id)",
	).From("notices n")
	count := r.sb.Select("COUNT(*)").From("notices n")

	if filter.Priority != "" {
		where = append(where, sq.Eq{"n.priority": filter.Priority})
	}
	if filter.Status != "" {
		where = append(where, sq.Eq{"n.status": filter.Status})
	}
	if filter.Search != "" {
		pattern := "%" + strings.TrimSpace(filter.Search) + "%"
		where = append(where, sq.Or{
			sq.ILike{"n.title": pattern},
			sq.ILike{"n.body": pattern},
		})
	}
	if len(where) > 0 {
		base = base.Where(where)
		count = count.Where(where)
	}

	countSQL, countArgs, err := count.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count notices query: %w", err)
	}

	var totalItems int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&totalItems); err != nil {
		return nil, 0, fmt.Errorf("failed to count notices: %w", err)
	}

	// Urgent first, then newest
	base = base.OrderBy(`
		CASE n.priority
			WHEN 'URGENT' THEN 0
			WHEN 'HIGH' THEN 1
			WHEN 'NORMAL' THEN 2
			ELSE 3
		END ASC, n.created_at DESC`).
		Limit(uint64(filter.Size)).
		Offset(uint64((filter.Page - 1) * filter.Size))

	querySQL, queryArgs, err := base.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list notices query: %w", err)
	}

	rows, err := r.db.Query(ctx, querySQL, queryArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query notices: %w", err)
	}
	defer rows.Close()

	var notices []*models.Notice
	for rows.Next() {
		notice, err := scanNotice(rows)
		if err != nil {
			return nil, 0, err
		}
		notices = append(notices, notice)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return notices, totalItems, nil
}

// Update updates a notice
func (r *NoticeRepository) Update(ctx context.Context, notice *models.Notice) error {
	cmdTag, err := r.db.Exec(ctx, `
		UPDATE notices
		SET title = $1, body = $2, priority = $3, status = $4,
		    target_roles = $5, target_depts = $6, attachment_url = $7,
		    expires_at = $8, updated_at = NOW()
		WHERE id = $9
	`, notice.Title, notice.Body, notice.Priority, notice.Status,
		rolesToStrings(notice.TargetRoles), notice.TargetDepts,
		notice.AttachmentURL, notice.ExpiresAt, notice.ID)
	if err != nil {
		return fmt.Errorf("error updating notice: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNoticeNotFound
	}
	return nil
}

// UpdateStatus archives or republishes a notice
func (r *NoticeRepository) UpdateStatus(ctx context.Context, id int64, status models.NoticeStatus) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE notices SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("error updating notice status: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNoticeNotFound
	}
	return nil
}

// Delete removes a notice and its view log
func (r *NoticeRepository) Delete(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM notices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting notice: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNoticeNotFound
	}
	return nil
}

// MarkViewed records that a user read a notice. Idempotent.
func (r *NoticeRepository) MarkViewed(ctx context.Context, noticeID, userID int64) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO notice_views (notice_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (notice_id, user_id) DO NOTHING
	`, noticeID, userID)
	if err != nil {
		return fmt.Errorf("error marking notice viewed: %w", err)
	}
	return nil
}

// Views retrieves a notice's view log newest first
func (r *NoticeRepository) Views(ctx context.Context, noticeID int64) ([]models.NoticeView, error) {
	rows, err := r.db.Query(ctx, `
		SELECT notice_id, user_id, viewed_at
		FROM notice_views
		WHERE notice_id = $1
		ORDER BY viewed_at DESC
	`, noticeID)
	if err != nil {
		return nil, fmt.Errorf("error querying notice views: %w", err)
	}
	defer rows.Close()

	views := []models.NoticeView{}
	for rows.Next() {
		var v models.NoticeView
		if err := rows.Scan(&v.NoticeID, &v.UserID, &v.ViewedAt); err != nil {
			return nil, fmt.Errorf("error scanning notice view: %w", err)
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

// ArchiveExpired flips published notices past their expiry to ARCHIVED,
// returning the count
func (r *NoticeRepository) ArchiveExpired(ctx context.Context) (int64, error) {
	cmdTag, err := r.db.Exec(ctx, `
		UPDATE notices SET status = $1, updated_at = NOW()
		WHERE status = $2 AND expires_at IS NOT NULL AND expires_at < NOW()
	`, models.NoticeArchived, models.NoticePublished)
	if err != nil {
		return 0, fmt.Errorf("error archiving expired notices: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}
