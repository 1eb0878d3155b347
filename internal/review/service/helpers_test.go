package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stagedoorhq/stagedoor/internal/review/domain"
	"github.com/stagedoorhq/stagedoor/internal/review/mail"
	"github.com/stagedoorhq/stagedoor/internal/review/store"
	"github.com/stagedoorhq/stagedoor/internal/review/store/drivers/sqlite"
	"github.com/stagedoorhq/stagedoor/pkg/cryptox"
	"github.com/stagedoorhq/stagedoor/pkg/idx"
)

const testOrg = "org-acme"

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())

	t.Cleanup(func() { _ = st.Close() })
	return st
}

func seedUser(t *testing.T, st store.Store, role domain.Role, email string) domain.User {
	t.Helper()

	hash, err := cryptox.HashPassword("correct horse battery")
	require.NoError(t, err)

	u := domain.User{
		ID:             idx.New().String(),
		Email:          email,
		Name:           "Test " + string(role),
		PasswordHash:   hash,
		Role:           role,
		OrganizationID: testOrg,
		IsActive:       true,
		CreatedAt:      time.Now().UTC(),
	}
	require.NoError(t, st.Users().CreateUser(context.Background(), u))
	return u
}

func seedProject(t *testing.T, st store.Store, name string, clients ...string) domain.Project {
	t.Helper()

	now := time.Now().UTC()
	p := domain.Project{
		ID:              idx.New().String(),
		Name:            name,
		Client:          "Acme Corp",
		URL:             "https://preview.example.com/" + name,
		Status:          domain.StatusPending,
		OrganizationID:  testOrg,
		CreatedBy:       "seed",
		AssignedClients: clients,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	require.NoError(t, st.Projects().CreateProject(context.Background(), p))
	return p
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func newInviteService(st store.Store) *InviteService {
	return &InviteService{
		Store:      st,
		Mailer:     &mail.LogMailer{Logger: discardLogger()},
		AppBaseURL: "https://app.example.com",
	}
}
