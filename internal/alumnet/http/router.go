package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/alumnet/internal/alumnet/domain"
	"github.com/aussiebroadwan/alumnet/internal/alumnet/service"
	"github.com/aussiebroadwan/alumnet/internal/alumnet/store"
	"github.com/aussiebroadwan/alumnet/internal/alumnet/telemetry"
	"github.com/aussiebroadwan/alumnet/pkg/httpx"
	"github.com/aussiebroadwan/alumnet/pkg/jwtx"
	"github.com/aussiebroadwan/alumnet/pkg/slogx"

	_ "github.com/aussiebroadwan/alumnet/api/alumnet" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys         *jwtx.KeySet
	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store              store.Store
	AccountService     *service.AccountService
	InviteService      *service.InviteService
	ImportService      *service.ImportService
	InstitutionService *service.InstitutionService
	AuthService        *service.AuthService
	MFAService         *service.MFAService
	BootstrapService   *service.BootstrapService
	ProfileService     *service.ProfileService

	// Workers are reported by /livez, keyed by name.
	Workers map[string]Worker

	MaxUploadBytes int64
}

func NewRouter(
	keys *jwtx.KeySet,
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Metrics wrap the mux directly so the matched pattern is set when they record.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		telemetry.HTTPMiddleware,
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAccount()
	r.registerImport()
	r.registerInvites()
	r.registerInstitutions()
	r.registerAuth()
	r.registerProfile()
	r.registerMFA()
	r.registerBootstrap()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			AlumNet Onboarding API
//	@version		0.1.0
//	@description	Institution onboarding for the AlumNet platform: roster imports, single-use invitations and invitation-gated account creation.
//	@description
//	@description				Access tokens are EdDSA (Ed25519) JWTs and can be verified using the JWKS endpoint.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/alumnet
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// admin gates a handler to super and institution admins, rate limited per user.
func (r *Router) admin(h http.Handler, limit httpx.RateLimitConfig) http.Handler {
	return httpx.Chain(h,
		httpx.AuthnMiddleware(r.verifier),
		httpx.RequireRole(string(domain.RoleSuperAdmin), string(domain.RoleInstitutionAdmin)),
		httpx.RateLimitByUser(limit),
	)
}

func (r *Router) superAdmin(h http.Handler, limit httpx.RateLimitConfig) http.Handler {
	return httpx.Chain(h,
		httpx.AuthnMiddleware(r.verifier),
		httpx.RequireRole(string(domain.RoleSuperAdmin)),
		httpx.RateLimitByUser(limit),
	)
}

func (r *Router) authenticated(h http.Handler, limit httpx.RateLimitConfig) http.Handler {
	return httpx.Chain(h,
		httpx.AuthnMiddleware(r.verifier),
		httpx.RateLimitByUser(limit),
	)
}

func (r *Router) registerAccount() {
	h := &AccountHandler{
		InviteService:  r.InviteService,
		AccountService: r.AccountService,
	}

	// Token holders are anonymous, so the redemption flow is limited by IP.
	r.Mux.Handle("POST /invite/validate",
		httpx.Chain(http.HandlerFunc(h.HandleValidate), httpx.RateLimitByIP(httpx.StrictLimit)))
	r.Mux.Handle("POST /account/verify-graduation",
		httpx.Chain(http.HandlerFunc(h.HandleVerifyGraduation), httpx.RateLimitByIP(httpx.StrictLimit)))
	r.Mux.Handle("POST /account/create",
		httpx.Chain(http.HandlerFunc(h.HandleCreate), httpx.RateLimitByIP(httpx.StrictLimit)))
}

func (r *Router) registerImport() {
	h := &ImportHandler{
		ImportService:  r.ImportService,
		MaxUploadBytes: r.MaxUploadBytes,
	}

	r.Mux.Handle("POST /data-import/upload", r.admin(http.HandlerFunc(h.HandleUpload), httpx.ModerateLimit))
	r.Mux.Handle("POST /data-import/batch/{id}/retry", r.admin(http.HandlerFunc(h.HandleRetry), httpx.ModerateLimit))
	r.Mux.Handle("GET /data-import/template/{user_type}", r.admin(http.HandlerFunc(h.HandleTemplate), httpx.LenientLimit))
	r.Mux.Handle("GET /data-import/batch/{id}", r.admin(http.HandlerFunc(h.HandleStatus), httpx.LenientLimit))
	r.Mux.Handle("GET /data-import/batches", r.admin(http.HandlerFunc(h.HandleList), httpx.LenientLimit))
}

func (r *Router) registerInvites() {
	h := &InvitesHandler{InviteService: r.InviteService}

	r.Mux.Handle("POST /invites", r.admin(http.HandlerFunc(h.HandleCreate), httpx.ModerateLimit))
	r.Mux.Handle("GET /invites", r.admin(http.HandlerFunc(h.HandleList), httpx.LenientLimit))
	r.Mux.Handle("POST /invites/{id}/expire", r.admin(http.HandlerFunc(h.HandleExpire), httpx.ModerateLimit))
}

func (r *Router) registerInstitutions() {
	h := &InstitutionsHandler{InstitutionService: r.InstitutionService}

	r.Mux.Handle("POST /institutions", r.superAdmin(http.HandlerFunc(h.HandleCreate), httpx.ModerateLimit))
	r.Mux.Handle("POST /institutions/{id}/activate", r.superAdmin(http.HandlerFunc(h.HandleActivate), httpx.ModerateLimit))
	r.Mux.Handle("POST /institutions/{id}/deactivate", r.superAdmin(http.HandlerFunc(h.HandleDeactivate), httpx.ModerateLimit))
	r.Mux.Handle("POST /institutions/{id}/reset-admin-password",
		r.superAdmin(http.HandlerFunc(h.HandleResetAdminPassword), httpx.StrictLimit))

	// Institution admins reach their own record; the service enforces the tenant.
	r.Mux.Handle("GET /institutions", r.admin(http.HandlerFunc(h.HandleList), httpx.LenientLimit))
	r.Mux.Handle("GET /institutions/{id}", r.admin(http.HandlerFunc(h.HandleGet), httpx.LenientLimit))
	r.Mux.Handle("PATCH /institutions/{id}", r.admin(http.HandlerFunc(h.HandleUpdate), httpx.ModerateLimit))
	r.Mux.Handle("GET /institutions/{id}/users", r.admin(http.HandlerFunc(h.HandleListUsers), httpx.LenientLimit))
}

func (r *Router) registerAuth() {
	h := &AuthHandler{AuthService: r.AuthService}

	r.Mux.Handle("POST /auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin), httpx.RateLimitByIP(httpx.StrictLimit)))
	r.Mux.Handle("POST /auth/change-password",
		httpx.Chain(http.HandlerFunc(h.HandleChangePassword), httpx.RateLimitByIP(httpx.StrictLimit)))
	r.Mux.Handle("GET /auth/me", r.authenticated(http.HandlerFunc(h.HandleMe), httpx.LenientLimit))
}

func (r *Router) registerProfile() {
	h := &ProfileHandler{ProfileService: r.ProfileService}

	r.Mux.Handle("GET /profile", r.authenticated(http.HandlerFunc(h.HandleGet), httpx.LenientLimit))
	r.Mux.Handle("PATCH /profile", r.authenticated(http.HandlerFunc(h.HandleUpdate), httpx.ModerateLimit))
}

func (r *Router) registerMFA() {
	h := &MFAHandler{MFAService: r.MFAService}

	r.Mux.Handle("POST /auth/mfa/enroll", r.authenticated(http.HandlerFunc(h.HandleEnroll), httpx.ModerateLimit))
	// strict: TOTP codes are short
	r.Mux.Handle("POST /auth/mfa/verify", r.authenticated(http.HandlerFunc(h.HandleVerify), httpx.StrictLimit))
	r.Mux.Handle("DELETE /auth/mfa", r.authenticated(http.HandlerFunc(h.HandleDisable), httpx.StrictLimit))
}

func (r *Router) registerBootstrap() {
	// POST /bootstrap - very strict rate limit by IP (one-time setup endpoint)
	bootstrapHandler := &BootstrapHandler{BootstrapService: r.BootstrapService}
	r.Mux.Handle("POST /bootstrap",
		httpx.Chain(bootstrapHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion, r.Workers),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keys),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /.well-known/jwks.json",
		httpx.Chain(JWKSHandler(r.keys),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /metrics", telemetry.Handler())
}
