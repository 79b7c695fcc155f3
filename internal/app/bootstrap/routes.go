// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	errorsfeature "github.com/dalemusser/twfhub/internal/app/features/errors"
	forumviewfeature "github.com/dalemusser/twfhub/internal/app/features/forumview"
	healthfeature "github.com/dalemusser/twfhub/internal/app/features/health"
	homefeature "github.com/dalemusser/twfhub/internal/app/features/home"
	loginfeature "github.com/dalemusser/twfhub/internal/app/features/login"
	logoutfeature "github.com/dalemusser/twfhub/internal/app/features/logout"
	markpostsfeature "github.com/dalemusser/twfhub/internal/app/features/markposts"
	settrackingfeature "github.com/dalemusser/twfhub/internal/app/features/settracking"
	subscribersfeature "github.com/dalemusser/twfhub/internal/app/features/subscribers"
	unsubscribeallfeature "github.com/dalemusser/twfhub/internal/app/features/unsubscribeall"
	"github.com/dalemusser/twfhub/internal/app/resources"
	userstore "github.com/dalemusser/twfhub/internal/app/store/users"
	"github.com/dalemusser/twfhub/internal/app/system/auth"
	"github.com/dalemusser/twfhub/internal/app/system/groupscope"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// csrfFieldName is the hidden form field every mutating form carries.
const csrfFieldName = "csrf_token"

// BuildHandler constructs the root HTTP handler (router) for twfhub.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed. It boots the template engine, applies
// session and anti-forgery middleware, and mounts the forum feature routers.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// LoadSessionUser fetches fresh user data on each request so disabled
	// accounts and role changes apply immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(deps.MongoDatabase))

	// Shared partials must be registered before the engine boots.
	resources.LoadSharedTemplates()
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	s := currentServices(appCfg, deps, logger)
	st := s.stack
	groups := groupscope.NewResolver(sessionMgr, st.Groups, st.Memberships, st.Caps, logger)
	errLog := errorsfeature.NewErrorLogger(logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// Health check and static assets sit outside session and CSRF handling.
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	r.Group(func(app chi.Router) {
		app.Use(plaintextUnlessSecure(secure))
		app.Use(csrf.Protect(appCfg.csrfKey(),
			csrf.Secure(secure),
			csrf.Path("/"),
			csrf.FieldName(csrfFieldName),
			csrf.ErrorHandler(http.HandlerFunc(csrfFailure(logger))),
		))

		// Global auth middleware: loads SessionUser into context if logged in.
		app.Use(sessionMgr.LoadSessionUser)

		homeHandler := homefeature.NewHandler(st, sessionMgr, errLog, logger)
		app.Mount("/", homefeature.Routes(homeHandler))

		// Authentication
		loginHandler := loginfeature.NewHandler(deps.MongoDatabase, sessionMgr, s.events, errLog, logger)
		app.Mount("/login", loginfeature.Routes(loginHandler))

		logoutHandler := logoutfeature.NewHandler(sessionMgr, s.events, logger)
		app.Mount("/logout", logoutfeature.Routes(logoutHandler, sessionMgr))

		// Error pages
		errorsHandler := errorsfeature.NewHandler()
		app.Get("/forbidden", errorsHandler.Forbidden)
		app.Get("/unauthorized", errorsHandler.Unauthorized)

		// Forum pages and actions
		viewHandler := forumviewfeature.NewHandler(st, groups, sessionMgr, errLog, logger)
		app.Mount("/twf/forum", forumviewfeature.ForumRoutes(viewHandler, sessionMgr))
		app.Mount("/twf/course", forumviewfeature.CourseRoutes(viewHandler, sessionMgr))

		markHandler := markpostsfeature.NewHandler(st, groups, sessionMgr, errLog, logger)
		app.Mount("/twf/markposts", markpostsfeature.Routes(markHandler, sessionMgr))

		trackHandler := settrackingfeature.NewHandler(st, sessionMgr, errLog, logger)
		app.Mount("/twf/settracking", settrackingfeature.Routes(trackHandler, sessionMgr))

		subsHandler := subscribersfeature.NewHandler(st, groups, sessionMgr, s.events, errLog, logger)
		app.Mount("/twf/subscribers", subscribersfeature.Routes(subsHandler, sessionMgr))

		unsubHandler := unsubscribeallfeature.NewHandler(st, sessionMgr, errLog, logger)
		app.Mount("/twf/unsubscribeall", unsubscribeallfeature.Routes(unsubHandler, sessionMgr))

		app.NotFound(errorsHandler.NotFound)
	})

	return r, nil
}

// plaintextUnlessSecure tells csrf that requests arrive over plain HTTP in
// dev, so its Referer check does not demand https.
func plaintextUnlessSecure(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if secure {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
		})
	}
}

func csrfFailure(logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger.Warn("csrf check failed",
			zap.String("path", r.URL.Path),
			zap.String("method", r.Method),
			zap.Error(csrf.FailureReason(r)))
		errorsfeature.RenderForbidden(w, r, "Your session form expired. Go back, reload the page and try again.", "/")
	}
}
