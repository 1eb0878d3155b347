package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/stagedoorhq/stagedoor/internal/review/domain"
)

type invitationsRepo struct {
	db dbtx
}

const invitationColumns = `id, email, token_hash, role, project_ids,
	invited_by, invited_by_name, organization_id,
	expires_at, created_at, accepted_at, is_used`

func (r *invitationsRepo) scanInvitation(row interface{ Scan(...any) error }) (domain.Invitation, error) {
	var (
		inv        domain.Invitation
		role       string
		projectIDs string
		acceptedAt sql.NullTime
	)
	err := row.Scan(
		&inv.ID, &inv.Email, &inv.TokenHash, &role, &projectIDs,
		&inv.InvitedBy, &inv.InvitedByName, &inv.OrganizationID,
		&inv.ExpiresAt, &inv.CreatedAt, &acceptedAt, &inv.IsUsed,
	)
	if err != nil {
		return domain.Invitation{}, err
	}

	inv.Role = domain.Role(role)
	inv.ProjectIDs = splitSet(projectIDs)
	inv.AcceptedAt = mapNullTimePtr(acceptedAt)
	return inv, nil
}

func (r *invitationsRepo) CreateInvitation(ctx context.Context, inv domain.Invitation) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO invitations (id, email, token_hash, role, project_ids,
			invited_by, invited_by_name, organization_id,
			expires_at, created_at, accepted_at, is_used)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.Email, inv.TokenHash, string(inv.Role), joinSet(inv.ProjectIDs),
		inv.InvitedBy, inv.InvitedByName, inv.OrganizationID,
		inv.ExpiresAt, inv.CreatedAt, mapOptionalTime(inv.AcceptedAt), inv.IsUsed,
	)
	return mapConflict(err)
}

func (r *invitationsRepo) GetInvitationByTokenHash(
	ctx context.Context,
	hash string,
) (domain.Invitation, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+invitationColumns+` FROM invitations WHERE token_hash = ?`, hash)

	inv, err := r.scanInvitation(row)
	if err != nil {
		return domain.Invitation{}, mapNotFound(err)
	}
	return inv, nil
}

func (r *invitationsRepo) GetActiveInvitationByEmail(
	ctx context.Context,
	email string,
) (domain.Invitation, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+invitationColumns+` FROM invitations
		 WHERE email = ? AND is_used = 0 AND expires_at > ?
		 ORDER BY id DESC LIMIT 1`,
		email, time.Now().UTC())

	inv, err := r.scanInvitation(row)
	if err != nil {
		return domain.Invitation{}, mapNotFound(err)
	}
	return inv, nil
}

func (r *invitationsRepo) MarkInvitationUsed(
	ctx context.Context,
	id string,
	acceptedAt time.Time,
) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE invitations SET is_used = 1, accepted_at = ?
		 WHERE id = ? AND is_used = 0`,
		acceptedAt, id)
	if err != nil {
		return err
	}
	return requireRowChanged(res)
}

func (r *invitationsRepo) ListInvitationsByOrganization(
	ctx context.Context,
	orgID string,
) ([]domain.Invitation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+invitationColumns+` FROM invitations
		 WHERE organization_id = ? ORDER BY id DESC`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invitations []domain.Invitation
	for rows.Next() {
		inv, err := r.scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		invitations = append(invitations, inv)
	}
	return invitations, rows.Err()
}

func (r *invitationsRepo) CountActiveByOrganization(
	ctx context.Context,
	orgID string,
) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM invitations
		 WHERE organization_id = ? AND is_used = 0 AND expires_at > ?`,
		orgID, time.Now().UTC(),
	).Scan(&n)
	return n, err
}

func (r *invitationsRepo) DeleteExpiredInvitations(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM invitations WHERE is_used = 0 AND expires_at <= ?`,
		time.Now().UTC())
	return err
}
