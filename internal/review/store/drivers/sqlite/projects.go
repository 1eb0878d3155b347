package sqlite

import (
	"context"

	"github.com/stagedoorhq/stagedoor/internal/review/domain"
)

type projectsRepo struct {
	db dbtx
}

const projectColumns = `id, name, client, url, description, thumbnail, status,
	organization_id, created_by, assigned_clients, assigned_developers,
	created_at, updated_at`

func (r *projectsRepo) scanProject(row interface{ Scan(...any) error }) (domain.Project, error) {
	var (
		p       domain.Project
		status  string
		clients string
		devs    string
	)
	err := row.Scan(
		&p.ID, &p.Name, &p.Client, &p.URL, &p.Description, &p.Thumbnail, &status,
		&p.OrganizationID, &p.CreatedBy, &clients, &devs,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return domain.Project{}, err
	}

	p.Status = domain.ProjectStatus(status)
	p.AssignedClients = splitSet(clients)
	p.AssignedDevelopers = splitSet(devs)
	return p, nil
}

func (r *projectsRepo) GetProjectByID(ctx context.Context, id string) (domain.Project, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)

	p, err := r.scanProject(row)
	if err != nil {
		return domain.Project{}, mapNotFound(err)
	}
	return p, nil
}

func (r *projectsRepo) ListProjectsByOrganization(
	ctx context.Context,
	orgID string,
) ([]domain.Project, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+projectColumns+` FROM projects
		 WHERE organization_id = ? ORDER BY id DESC`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []domain.Project
	for rows.Next() {
		p, err := r.scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (r *projectsRepo) CreateProject(ctx context.Context, p domain.Project) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO projects (id, name, client, url, description, thumbnail, status,
			organization_id, created_by, assigned_clients, assigned_developers,
			created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Client, p.URL, p.Description, p.Thumbnail, string(p.Status),
		p.OrganizationID, p.CreatedBy, joinSet(p.AssignedClients), joinSet(p.AssignedDevelopers),
		p.CreatedAt, p.UpdatedAt,
	)
	return mapConflict(err)
}

func (r *projectsRepo) UpdateProject(ctx context.Context, p domain.Project) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE projects SET name = ?, client = ?, url = ?, description = ?,
			thumbnail = ?, status = ?, assigned_clients = ?, assigned_developers = ?,
			updated_at = ?
		 WHERE id = ?`,
		p.Name, p.Client, p.URL, p.Description,
		p.Thumbnail, string(p.Status), joinSet(p.AssignedClients), joinSet(p.AssignedDevelopers),
		p.UpdatedAt, p.ID,
	)
	if err != nil {
		return err
	}
	return requireRowChanged(res)
}

func (r *projectsRepo) DeleteProject(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRowChanged(res)
}
