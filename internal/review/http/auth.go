package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/stagedoorhq/stagedoor/internal/review/service"
	"github.com/stagedoorhq/stagedoor/pkg/httpx"
	"github.com/stagedoorhq/stagedoor/pkg/slogx"
)

type AuthHandler struct {
	AuthService   *service.AuthService
	InviteService *service.InviteService
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin authenticates by email and password and returns a session
// token. Bad email and bad password are the same 401 on purpose.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, token, err := h.AuthService.Login(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			httpx.WriteError(w, http.StatusUnauthorized, "invalid email or password")
		case errors.Is(err, service.ErrAccountInactive):
			httpx.WriteError(w, http.StatusForbidden, "account is deactivated")
		default:
			log.Error("login failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, SessionResponse{
		Token: token,
		User:  toUserResponse(user),
	})
}

type registerRequest struct {
	Token    string `json:"token"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// HandleRegister redeems an invitation token and creates the account.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.InviteService.RedeemInvitation(ctx, req.Token, req.Name, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInviteRequest):
			httpx.WriteError(w, http.StatusBadRequest, "token, name, and password are required")
		case errors.Is(err, service.ErrWeakPassword):
			httpx.WriteError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrInvitationNotFound):
			httpx.WriteError(w, http.StatusBadRequest, "invitation is invalid or expired")
		case errors.Is(err, service.ErrInvitationUsed):
			httpx.WriteError(w, http.StatusBadRequest, "invitation has already been used")
		case errors.Is(err, service.ErrEmailTaken):
			httpx.WriteError(w, http.StatusBadRequest, "an account with this email already exists")
		default:
			log.Error("registration failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	// Registration doubles as the first login.
	token, err := h.AuthService.IssueToken(user)
	if err != nil {
		log.Error("failed to issue session token after registration", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, SessionResponse{
		Token: token,
		User:  toUserResponse(user),
	})
}

type validateInviteRequest struct {
	Token string `json:"token"`
}

type validateInviteResponse struct {
	Valid      bool      `json:"valid"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	ProjectIDs []string  `json:"projectIds,omitempty"`
	InvitedBy  string    `json:"invitedBy"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

// HandleValidateInvite is the read-only preflight for the registration
// form. It reveals only what the form needs and never consumes the token.
func (h *AuthHandler) HandleValidateInvite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req validateInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	inv, err := h.InviteService.ValidateInvitation(ctx, req.Token)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvitationNotFound):
			httpx.WriteError(w, http.StatusBadRequest, "invitation is invalid or expired")
		case errors.Is(err, service.ErrInvitationUsed):
			httpx.WriteError(w, http.StatusBadRequest, "invitation has already been used")
		default:
			slogx.FromContext(ctx).Error("invitation validation failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, validateInviteResponse{
		Valid:      true,
		Email:      inv.Email,
		Role:       string(inv.Role),
		ProjectIDs: inv.ProjectIDs,
		InvitedBy:  inv.InvitedByName,
		ExpiresAt:  inv.ExpiresAt,
	})
}

// HandleMe returns the account behind the presented token.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := h.AuthService.Me(ctx, httpx.UserIDFromContext(ctx))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			httpx.WriteError(w, http.StatusUnauthorized, "account no longer exists")
			return
		}
		slogx.FromContext(ctx).Error("failed to load current account", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, userEnvelope{User: toUserResponse(user)})
}

// HandleRefresh issues a fresh token for a still-active account.
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, token, err := h.AuthService.Refresh(ctx, httpx.UserIDFromContext(ctx))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			httpx.WriteError(w, http.StatusUnauthorized, "account no longer exists")
		case errors.Is(err, service.ErrAccountInactive):
			httpx.WriteError(w, http.StatusForbidden, "account is deactivated")
		default:
			slogx.FromContext(ctx).Error("token refresh failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, SessionResponse{
		Token: token,
		User:  toUserResponse(user),
	})
}
