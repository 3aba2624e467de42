// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	adminfeature "github.com/dalemusser/communityhub/internal/app/features/admin"
	authgooglefeature "github.com/dalemusser/communityhub/internal/app/features/authgoogle"
	errorsfeature "github.com/dalemusser/communityhub/internal/app/features/errors"
	eventsfeature "github.com/dalemusser/communityhub/internal/app/features/events"
	galleryfeature "github.com/dalemusser/communityhub/internal/app/features/gallery"
	healthfeature "github.com/dalemusser/communityhub/internal/app/features/health"
	homefeature "github.com/dalemusser/communityhub/internal/app/features/home"
	loginfeature "github.com/dalemusser/communityhub/internal/app/features/login"
	logoutfeature "github.com/dalemusser/communityhub/internal/app/features/logout"
	profilefeature "github.com/dalemusser/communityhub/internal/app/features/profile"
	registerfeature "github.com/dalemusser/communityhub/internal/app/features/register"
	signupfeature "github.com/dalemusser/communityhub/internal/app/features/signup"
	attemptstore "github.com/dalemusser/communityhub/internal/app/store/attempts"
	"github.com/dalemusser/communityhub/internal/app/store/oauthstate"
	"github.com/dalemusser/communityhub/internal/app/store/resolve"
	userstore "github.com/dalemusser/communityhub/internal/app/store/users"
	"github.com/dalemusser/communityhub/internal/app/system/auth"
	"github.com/dalemusser/communityhub/internal/app/system/guard"
	"github.com/dalemusser/communityhub/internal/app/system/profilesync"
	"github.com/dalemusser/communityhub/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. CommunityHub initializes the session
// store and template engine, applies the session and request-guard
// middleware, and mounts feature routers for all application areas.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	if err := auth.InitSessionStore(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger); err != nil {
		logger.Error("session store init failed", zap.Error(err))
		return nil, err
	}

	// Initialize and boot the template engine once at startup.
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	db := deps.MongoDatabase

	// Shared infrastructure handed to the features.
	errLog := errorsfeature.NewErrorLogger(logger)
	resolver := resolve.New(resolve.NewMongoQuerier(db), logger)
	limiter := ratelimit.New(attemptstore.New(db), ratelimit.Config{
		MaxAttempts: appCfg.LoginMaxAttempts,
		Window:      appCfg.LoginWindow,
		FailClosed:  appCfg.LoginFailClosed,
	}, logger)
	syncer := profilesync.New(userstore.New(db), logger)
	requestGuard := guard.New(secure, logger)
	googleEnabled := appCfg.GoogleClientID != "" && appCfg.GoogleClientSecret != ""

	r := chi.NewRouter()

	// Session loading must run before the guard so prefix authorization
	// sees the signed-in user.
	r.Use(auth.LoadSessionUser)
	r.Use(requestGuard.Middleware)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Static assets and uploaded gallery files
	r.Handle("/static/*", fileserver.Handler("/static", "public"))
	r.Handle("/files/gallery/*", fileserver.Handler("/files/gallery", appCfg.UploadsDir))

	// Public pages
	homeHandler := homefeature.NewHandler(db, logger)
	r.Mount("/", homefeature.Routes(homeHandler))

	eventsHandler := eventsfeature.NewHandler(db, errLog, logger)
	r.Mount("/events", eventsfeature.Routes(eventsHandler))

	galleryHandler := galleryfeature.NewHandler(db, appCfg.UploadsDir, errLog, logger)
	r.Mount("/gallery", galleryfeature.Routes(galleryHandler))

	// Authentication
	loginHandler := loginfeature.NewHandler(db, limiter, errLog, googleEnabled, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	signupHandler := signupfeature.NewHandler(db, limiter, errLog, logger)
	r.Mount("/signup", signupfeature.Routes(signupHandler))

	logoutHandler := logoutfeature.NewHandler(logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler))

	googleHandler := authgooglefeature.NewHandler(syncer, oauthstate.New(db),
		appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.BaseURL, logger)
	r.Mount("/auth/google", authgooglefeature.Routes(googleHandler))

	// Error pages
	errorsHandler := errorsfeature.NewHandler()
	r.Get("/forbidden", errorsHandler.Forbidden)
	r.Get("/unauthorized", errorsHandler.Unauthorized)

	// Signed-in areas
	registerHandler := registerfeature.NewHandler(db, resolver, errLog, logger)
	r.Mount("/registrations", registerfeature.Routes(registerHandler))

	profileHandler := profilefeature.NewHandler(db, syncer, errLog, logger)
	r.Mount("/profile", profilefeature.Routes(profileHandler))

	// Admin area; the guard enforces the admin role for this prefix.
	adminHandler := adminfeature.NewHandler(db, resolver, errLog, logger)
	r.Mount("/admin", adminfeature.Routes(adminHandler))

	return r, nil
}
