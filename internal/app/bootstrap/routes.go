// internal/app/bootstrap/routes.go
package bootstrap

import (
	"errors"
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	activityfeature "github.com/metacode22/study-somoim/internal/app/features/activitylog"
	adminfeature "github.com/metacode22/study-somoim/internal/app/features/admin"
	apifeature "github.com/metacode22/study-somoim/internal/app/features/api"
	applicationsfeature "github.com/metacode22/study-somoim/internal/app/features/applications"
	auditlogfeature "github.com/metacode22/study-somoim/internal/app/features/auditlog"
	authgooglefeature "github.com/metacode22/study-somoim/internal/app/features/authgoogle"
	createfeature "github.com/metacode22/study-somoim/internal/app/features/create"
	errorsfeature "github.com/metacode22/study-somoim/internal/app/features/errors"
	groupsfeature "github.com/metacode22/study-somoim/internal/app/features/groups"
	healthfeature "github.com/metacode22/study-somoim/internal/app/features/health"
	homefeature "github.com/metacode22/study-somoim/internal/app/features/home"
	loginfeature "github.com/metacode22/study-somoim/internal/app/features/login"
	logoutfeature "github.com/metacode22/study-somoim/internal/app/features/logout"
	overviewfeature "github.com/metacode22/study-somoim/internal/app/features/overview"
	_ "github.com/metacode22/study-somoim/internal/app/features/shared/views"
	userinfofeature "github.com/metacode22/study-somoim/internal/app/features/userinfo"
	"github.com/metacode22/study-somoim/internal/app/store/activity"
	"github.com/metacode22/study-somoim/internal/app/store/audit"
	chaptergroupstore "github.com/metacode22/study-somoim/internal/app/store/chaptergroups"
	chapterstore "github.com/metacode22/study-somoim/internal/app/store/chapters"
	membershipstore "github.com/metacode22/study-somoim/internal/app/store/memberships"
	"github.com/metacode22/study-somoim/internal/app/store/oauthstate"
	teamstore "github.com/metacode22/study-somoim/internal/app/store/teams"
	"github.com/metacode22/study-somoim/internal/app/system/auditlog"
	"github.com/metacode22/study-somoim/internal/app/system/auth"
	"github.com/metacode22/study-somoim/internal/app/system/jsonresp"
	"github.com/metacode22/study-somoim/internal/app/system/phase"
	"github.com/metacode22/study-somoim/internal/app/system/ratelimit"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup and
// Startup have completed. It builds the session manager, boots the template
// engine, wires the cached stores over the backend client and mounts every
// feature router.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	s := currentServices()
	if s == nil {
		return nil, errors.New("bootstrap: Startup has not run")
	}

	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	errLog := errorsfeature.NewErrorLogger(logger)
	clock := phase.SystemClock{}
	loc := s.Loc

	// Local records
	db := deps.MongoDatabase
	auditStore := audit.New(db)
	activityStore := activity.New(db)
	stateStore := oauthstate.New(db)
	auditLogger := auditlog.New(auditStore, logger.Named("audit"), auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	})

	// Backend-backed stores share one cache so mutations invalidate reads.
	validator := newEligibility(s, logger)
	chapters := chapterstore.New(s.API, s.Cache)
	groups := chaptergroupstore.New(s.API, s.Cache)
	memberships := membershipstore.New(s.API, validator, s.Cache)
	teams := teamstore.New(s.API, s.Cache)

	r := chi.NewRouter()

	// Loads SessionUser into context if logged in, then the pending flash.
	r.Use(sessionMgr.LoadSessionUser)
	r.Use(sessionMgr.LoadFlash)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		errorsfeature.RenderNotFound(w, r, "요청하신 페이지를 찾을 수 없습니다.", "/")
	})

	// Unauthenticated infrastructure endpoints
	healthHandler := healthfeature.NewHandler(deps.MongoClient, s.API, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	r.Handle("/metrics", promhttp.HandlerFor(s.Registry, promhttp.HandlerOpts{}))
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	// JSON API; session-guarded, outside CSRF because it only reads.
	apiHandler := apifeature.NewHandler(chapters, groups, validator, clock, loc, logger.Named("api"))
	apiRouter := apifeature.Routes(apiHandler)
	userinfofeature.MountRoutes(apiRouter, userinfofeature.NewHandler())
	r.With(limit(s.APILimit, ratelimit.ByUser, func(w http.ResponseWriter, r *http.Request) {
		jsonresp.Fail(w, http.StatusTooManyRequests, jsonresp.CodeRateLimited, "요청이 너무 많습니다. 잠시 후 다시 시도해 주세요.")
	})).Mount("/api", apiRouter)

	// Every HTML route below is CSRF protected.
	r.Group(func(pr chi.Router) {
		pr.Use(csrfProtect(appCfg.CSRFKey, secure))

		loginHandler := loginfeature.NewHandler(appCfg.AllowedEmailDomain, appCfg.GoogleClientID != "", logger)
		pr.Mount("/login", loginfeature.Routes(loginHandler))

		googleHandler := authgooglefeature.NewHandler(
			sessionMgr, auditLogger, stateStore,
			appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.BaseURL,
			appCfg.AllowedEmailDomain, appCfg.AdminEmails, logger,
		)
		pr.With(limit(s.LoginLimit, ratelimit.ByIP, func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/login?error="+loginfeature.ErrRateLimited, http.StatusSeeOther)
		})).Mount("/auth/google", authgooglefeature.Routes(googleHandler))

		logoutHandler := logoutfeature.NewHandler(sessionMgr, auditLogger, logger)
		pr.Mount("/logout", logoutfeature.Routes(logoutHandler, sessionMgr))

		errorsHandler := errorsfeature.NewHandler()
		pr.Get("/forbidden", errorsHandler.Forbidden)
		pr.Get("/unauthorized", errorsHandler.Unauthorized)

		// Signed-in area
		pr.Group(func(sr chi.Router) {
			sr.Use(sessionMgr.RequireSignedIn)

			homeHandler := homefeature.NewHandler(chapters, groups, clock, loc, errLog, logger)
			sr.Mount("/", homefeature.Routes(homeHandler))

			overviewHandler := overviewfeature.NewHandler(chapters, groups, clock, loc, errLog, logger)
			sr.Mount("/overview", overviewfeature.Routes(overviewHandler))

			groupsHandler := groupsfeature.NewHandler(chapters, groups, memberships, sessionMgr, auditLogger, activityStore, clock, loc, errLog, logger)
			sr.Mount("/groups", groupsfeature.Routes(groupsHandler, sessionMgr))

			createHandler := createfeature.NewHandler(chapters, groups, teams, sessionMgr, auditLogger, activityStore, clock, loc, errLog, logger)
			sr.Mount("/create", createfeature.Routes(createHandler, sessionMgr))

			appsHandler := applicationsfeature.NewHandler(chapters, memberships, sessionMgr, activityStore, loc, errLog, logger)
			sr.Mount("/my-applications", applicationsfeature.Routes(appsHandler, sessionMgr))

			activityHandler := activityfeature.NewHandler(activityStore, loc, errLog, logger)
			sr.Mount("/activity-log", activityfeature.Routes(activityHandler, sessionMgr))

			// Admin console; each router applies RequireRole(admin).
			auditHandler := auditlogfeature.NewHandler(auditStore, loc, errLog, logger)
			sr.Mount("/admin/audit", auditlogfeature.Routes(auditHandler, sessionMgr))

			adminHandler := adminfeature.NewHandler(chapters, groups, sessionMgr, auditLogger, clock, loc, errLog, logger)
			sr.Mount("/admin", adminfeature.Routes(adminHandler, sessionMgr))
		})
	})

	return r, nil
}

// csrfProtect wraps gorilla/csrf. Over plain HTTP (dev) requests are marked
// plaintext so the Referer check for TLS does not reject them.
func csrfProtect(key string, secure bool) func(http.Handler) http.Handler {
	protect := csrf.Protect([]byte(key),
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			errorsfeature.RenderForbidden(w, r, "요청이 만료되었습니다. 페이지를 새로고침한 뒤 다시 시도해 주세요.", "/")
		})),
	)
	return func(next http.Handler) http.Handler {
		h := protect(next)
		if secure {
			return h
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
		})
	}
}
