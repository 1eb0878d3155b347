package sqlite

import (
	"context"
	"database/sql"

	"github.com/stagedoorhq/stagedoor/internal/review/domain"
)

type feedbackRepo struct {
	db dbtx
}

const feedbackColumns = `f.id, f.project_id, f.type, f.priority, f.text, f.status,
	f.author_id, f.author_name, f.author_role, f.created_at, f.updated_at,
	f.resolved_at, f.resolved_by`

func (r *feedbackRepo) scanFeedback(row interface{ Scan(...any) error }) (domain.Feedback, error) {
	var (
		f          domain.Feedback
		ftype      string
		priority   string
		status     string
		authorRole string
		resolvedAt sql.NullTime
	)
	err := row.Scan(
		&f.ID, &f.ProjectID, &ftype, &priority, &f.Text, &status,
		&f.AuthorID, &f.AuthorName, &authorRole, &f.CreatedAt, &f.UpdatedAt,
		&resolvedAt, &f.ResolvedBy,
	)
	if err != nil {
		return domain.Feedback{}, err
	}

	f.Type = domain.FeedbackType(ftype)
	f.Priority = domain.FeedbackPriority(priority)
	f.Status = domain.FeedbackStatus(status)
	f.AuthorRole = domain.Role(authorRole)
	f.ResolvedAt = mapNullTimePtr(resolvedAt)
	return f, nil
}

func (r *feedbackRepo) GetFeedbackByID(ctx context.Context, id string) (domain.Feedback, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+feedbackColumns+` FROM feedback f WHERE f.id = ?`, id)

	f, err := r.scanFeedback(row)
	if err != nil {
		return domain.Feedback{}, mapNotFound(err)
	}
	return f, nil
}

func (r *feedbackRepo) ListFeedbackByProject(
	ctx context.Context,
	projectID string,
) ([]domain.Feedback, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+feedbackColumns+` FROM feedback f
		 WHERE f.project_id = ? ORDER BY f.id DESC`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.collect(rows)
}

func (r *feedbackRepo) ListFeedbackByOrganization(
	ctx context.Context,
	orgID string,
) ([]domain.Feedback, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+feedbackColumns+` FROM feedback f
		 JOIN projects p ON p.id = f.project_id
		 WHERE p.organization_id = ? ORDER BY f.id DESC`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.collect(rows)
}

func (r *feedbackRepo) collect(rows *sql.Rows) ([]domain.Feedback, error) {
	var items []domain.Feedback
	for rows.Next() {
		f, err := r.scanFeedback(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, f)
	}
	return items, rows.Err()
}

func (r *feedbackRepo) CreateFeedback(ctx context.Context, f domain.Feedback) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO feedback (id, project_id, type, priority, text, status,
			author_id, author_name, author_role, created_at, updated_at,
			resolved_at, resolved_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.ProjectID, string(f.Type), string(f.Priority), f.Text, string(f.Status),
		f.AuthorID, f.AuthorName, string(f.AuthorRole), f.CreatedAt, f.UpdatedAt,
		mapOptionalTime(f.ResolvedAt), f.ResolvedBy,
	)
	return mapConflict(err)
}

func (r *feedbackRepo) UpdateFeedback(ctx context.Context, f domain.Feedback) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE feedback SET type = ?, priority = ?, text = ?, status = ?,
			updated_at = ?, resolved_at = ?, resolved_by = ?
		 WHERE id = ?`,
		string(f.Type), string(f.Priority), f.Text, string(f.Status),
		f.UpdatedAt, mapOptionalTime(f.ResolvedAt), f.ResolvedBy,
		f.ID,
	)
	if err != nil {
		return err
	}
	return requireRowChanged(res)
}
