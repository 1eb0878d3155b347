package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/stagedoorhq/stagedoor/internal/review/domain"
	"github.com/stagedoorhq/stagedoor/internal/review/store"
	"github.com/stagedoorhq/stagedoor/pkg/cryptox"
	"github.com/stagedoorhq/stagedoor/pkg/jwtx"
	"github.com/stagedoorhq/stagedoor/pkg/slogx"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountInactive    = errors.New("account is deactivated")
	ErrUserNotFound       = errors.New("user not found")
)

// dummyHash is a well-formed argon2id hash that matches no password. Used to
// equalize login timing for unknown emails.
const dummyHash = "$argon2id$v=19$m=19456,t=2,p=1$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// AuthService handles login and session issuance.
type AuthService struct {
	Store    store.Store
	Signer   jwtx.Signer
	Issuer   string
	TokenTTL time.Duration
}

// Login authenticates by email and password, stamps last_login, and issues
// a session token. Unknown emails and wrong passwords are indistinguishable
// to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (domain.User, string, error) {
	log := slogx.FromContext(ctx)
	email = NormalizeEmail(email)

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Burn a real verification so response timing doesn't reveal
			// whether the account exists.
			cryptox.CheckPassword(password, dummyHash)
			return domain.User{}, "", ErrInvalidCredentials
		}
		log.Error("failed to fetch user for login", "err", err)
		return domain.User{}, "", err
	}

	if !cryptox.CheckPassword(password, user.PasswordHash) {
		log.Warn("login failed: bad password", "user_id", user.ID)
		return domain.User{}, "", ErrInvalidCredentials
	}

	if !user.IsActive {
		log.Warn("login rejected: inactive account", "user_id", user.ID)
		return domain.User{}, "", ErrAccountInactive
	}

	now := time.Now().UTC()
	if err := s.Store.Users().SetLastLogin(ctx, user.ID, now); err != nil {
		log.Error("failed to stamp last_login", "user_id", user.ID, "err", err)
		return domain.User{}, "", err
	}
	user.LastLogin = &now

	token, err := s.IssueToken(user)
	if err != nil {
		log.Error("failed to issue session token", "user_id", user.ID, "err", err)
		return domain.User{}, "", err
	}

	log.Info("user logged in", "user_id", user.ID, "role", string(user.Role))
	return user, token, nil
}

// Me returns the current account for a verified token subject.
func (s *AuthService) Me(ctx context.Context, userID string) (domain.User, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

// Refresh re-reads the account and issues a fresh token. Deactivating an
// account cuts off refresh even while the old token is still unexpired.
func (s *AuthService) Refresh(ctx context.Context, userID string) (domain.User, string, error) {
	user, err := s.Me(ctx, userID)
	if err != nil {
		return domain.User{}, "", err
	}
	if !user.IsActive {
		return domain.User{}, "", ErrAccountInactive
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return domain.User{}, "", err
	}
	return user, token, nil
}

// IssueToken signs session claims for the user.
func (s *AuthService) IssueToken(user domain.User) (string, error) {
	ttl := s.TokenTTL
	if ttl <= 0 {
		ttl = jwtx.DefaultSessionTTL
	}

	claims := jwtx.NewSessionClaims(
		user.ID, user.Email, user.Name, string(user.Role), user.OrganizationID,
		ttl, s.Issuer, time.Now().UTC(),
	)
	return s.Signer.Sign(claims)
}

// NormalizeEmail lowercases and trims an email for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
