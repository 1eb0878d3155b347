package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/stagedoorhq/stagedoor/internal/review/domain"
	"github.com/stagedoorhq/stagedoor/internal/review/service"
	"github.com/stagedoorhq/stagedoor/internal/review/store"
	"github.com/stagedoorhq/stagedoor/pkg/httpx"
	"github.com/stagedoorhq/stagedoor/pkg/jwtx"
	"github.com/stagedoorhq/stagedoor/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store           store.Store
	AuthService     *service.AuthService
	InviteService   *service.InviteService
	ProjectService  *service.ProjectService
	FeedbackService *service.FeedbackService
	UserService     *service.UserService
	StatsService    *service.StatsService
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerProjects()
	r.registerFeedback()
	r.registerUsers()
	r.registerStats()
	r.registerSystem()
}

// ServeHTTP implements http.Handler and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{AuthService: r.AuthService, InviteService: r.InviteService}

	// Credential endpoints are unauthenticated and brute-forceable, so they
	// all sit behind the strict per-IP limit.
	r.Mux.Handle("POST /auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /auth/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /auth/validate-invite",
		httpx.Chain(http.HandlerFunc(h.HandleValidateInvite),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("GET /auth/me",
		httpx.Chain(http.HandlerFunc(h.HandleMe),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("POST /auth/refresh",
		httpx.Chain(http.HandlerFunc(h.HandleRefresh),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerProjects() {
	h := &ProjectsHandler{ProjectService: r.ProjectService, Router: r}

	r.Mux.Handle("GET /projects", r.authenticated(h.HandleList, httpx.LenientLimit))
	r.Mux.Handle("GET /projects/{id}", r.authenticated(h.HandleGet, httpx.LenientLimit))
	r.Mux.Handle("PATCH /projects/{id}", r.authenticated(h.HandleUpdate, httpx.ModerateLimit))

	r.Mux.Handle("POST /projects",
		r.staff(h.HandleCreate, httpx.ModerateLimit))
	r.Mux.Handle("DELETE /projects/{id}",
		r.staff(h.HandleDelete, httpx.ModerateLimit))
	r.Mux.Handle("POST /projects/{id}/assign",
		r.staff(h.HandleAssign, httpx.ModerateLimit))
}

func (r *Router) registerFeedback() {
	h := &FeedbackHandler{FeedbackService: r.FeedbackService, Router: r}

	r.Mux.Handle("GET /projects/{id}/feedback", r.authenticated(h.HandleListForProject, httpx.LenientLimit))
	r.Mux.Handle("POST /projects/{id}/feedback", r.authenticated(h.HandleCreate, httpx.ModerateLimit))
	r.Mux.Handle("GET /feedback", r.authenticated(h.HandleListForOrganization, httpx.LenientLimit))

	r.Mux.Handle("PATCH /feedback/{id}",
		r.staff(h.HandleUpdateStatus, httpx.ModerateLimit))
}

func (r *Router) registerUsers() {
	h := &UsersHandler{
		UserService:   r.UserService,
		InviteService: r.InviteService,
		Router:        r,
	}

	r.Mux.Handle("POST /users/invite", r.staff(h.HandleInvite, httpx.ModerateLimit))
	r.Mux.Handle("GET /users", r.staff(h.HandleList, httpx.LenientLimit))
	r.Mux.Handle("GET /users/clients", r.staff(h.HandleListClients, httpx.LenientLimit))
	r.Mux.Handle("GET /users/invitations", r.staff(h.HandleListInvitations, httpx.LenientLimit))

	// Not staff-only: users may rename themselves.
	r.Mux.Handle("PATCH /users/{id}", r.authenticated(h.HandleUpdate, httpx.ModerateLimit))
}

func (r *Router) registerStats() {
	h := &StatsHandler{StatsService: r.StatsService, Router: r}
	r.Mux.Handle("GET /stats", r.authenticated(h.HandleGet, httpx.LenientLimit))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

// authenticated wraps a handler in authn plus a per-user rate limit.
func (r *Router) authenticated(h http.HandlerFunc, limit httpx.RateLimitConfig) http.Handler {
	return httpx.Chain(h,
		httpx.AuthnMiddleware(r.verifier),
		httpx.RateLimitByUser(limit),
	)
}

// staff additionally requires the developer role (admins always pass).
func (r *Router) staff(h http.HandlerFunc, limit httpx.RateLimitConfig) http.Handler {
	return httpx.Chain(h,
		httpx.AuthnMiddleware(r.verifier),
		httpx.RequireRole(string(domain.RoleDeveloper)),
		httpx.RateLimitByUser(limit),
	)
}

// actor loads the full account for the authenticated subject. Every handler
// route decision runs against the stored record, not the token claims, so a
// role change or deactivation takes effect before the token expires.
func (r *Router) actor(ctx context.Context, w http.ResponseWriter) (domain.User, bool) {
	userID := httpx.UserIDFromContext(ctx)
	if userID == "" {
		httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
		return domain.User{}, false
	}

	user, err := r.store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteError(w, http.StatusUnauthorized, "account no longer exists")
			return domain.User{}, false
		}
		slogx.FromContext(ctx).Error("failed to load authenticated account", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return domain.User{}, false
	}

	if !user.IsActive {
		httpx.WriteError(w, http.StatusForbidden, "account is deactivated")
		return domain.User{}, false
	}

	return user, true
}
