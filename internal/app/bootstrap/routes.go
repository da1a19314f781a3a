// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"strings"
	"time"

	auditlogfeature "github.com/dalemusser/venuehub/internal/app/features/auditlog"
	authgooglefeature "github.com/dalemusser/venuehub/internal/app/features/authgoogle"
	errorsfeature "github.com/dalemusser/venuehub/internal/app/features/errors"
	feedbackfeature "github.com/dalemusser/venuehub/internal/app/features/feedback"
	healthfeature "github.com/dalemusser/venuehub/internal/app/features/health"
	hotelsfeature "github.com/dalemusser/venuehub/internal/app/features/hotels"
	itemsfeature "github.com/dalemusser/venuehub/internal/app/features/items"
	loginfeature "github.com/dalemusser/venuehub/internal/app/features/login"
	logoutfeature "github.com/dalemusser/venuehub/internal/app/features/logout"
	passwordfeature "github.com/dalemusser/venuehub/internal/app/features/password"
	profilefeature "github.com/dalemusser/venuehub/internal/app/features/profile"
	reservationsfeature "github.com/dalemusser/venuehub/internal/app/features/reservations"
	signupfeature "github.com/dalemusser/venuehub/internal/app/features/signup"
	auditstore "github.com/dalemusser/venuehub/internal/app/store/audit"
	feedbackstore "github.com/dalemusser/venuehub/internal/app/store/feedback"
	hotelstore "github.com/dalemusser/venuehub/internal/app/store/hotels"
	itemstore "github.com/dalemusser/venuehub/internal/app/store/items"
	"github.com/dalemusser/venuehub/internal/app/store/oauthstate"
	reservationstore "github.com/dalemusser/venuehub/internal/app/store/reservations"
	"github.com/dalemusser/venuehub/internal/app/store/sessions"
	userstore "github.com/dalemusser/venuehub/internal/app/store/users"
	"github.com/dalemusser/venuehub/internal/app/system/auditlog"
	"github.com/dalemusser/venuehub/internal/app/system/auth"
	"github.com/dalemusser/venuehub/internal/app/system/booking"
	"github.com/dalemusser/venuehub/internal/app/system/cache"
	"github.com/dalemusser/venuehub/internal/app/system/mailer"
	"github.com/dalemusser/venuehub/internal/app/system/metrics"
	"github.com/dalemusser/venuehub/internal/app/system/ratelimit"
	"github.com/dalemusser/venuehub/internal/app/system/tokens"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Feedback submissions allowed per client IP per minute.
const feedbackPerMinute = 5

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed. Stores and system services are built once
// here and injected into each feature handler; the features then mount their
// own routers.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	mail := mailer.New(mailer.Config{
		Host:     appCfg.MailSMTPHost,
		Port:     appCfg.MailSMTPPort,
		User:     appCfg.MailSMTPUser,
		Pass:     appCfg.MailSMTPPass,
		From:     appCfg.MailFrom,
		FromName: appCfg.MailFromName,
		Timeout:  appCfg.TimeoutLong,
	}, logger)

	// Google sign-in is off unless a client id is configured.
	var google authgooglefeature.Provider
	if appCfg.GoogleClientID != "" {
		google = authgooglefeature.NewGoogleProvider(
			appCfg.GoogleClientID,
			appCfg.GoogleClientSecret,
			strings.TrimRight(appCfg.BaseURL, "/")+"/auth/google/secrets",
		)
	}

	return buildRouter(coreCfg, appCfg, deps, mail, google, logger)
}

// buildRouter wires stores, services and features around the given mail
// transport and OAuth provider. A nil provider disables Google sign-in.
func buildRouter(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, mail mailer.Notifier, google authgooglefeature.Provider, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	// Stores
	users := userstore.New(db)
	sessStore := sessions.New(db)
	stateStore := oauthstate.New(db)
	items := itemstore.New(db)
	hotels := hotelstore.New(db)
	reservations := reservationstore.New(db)
	feedback := feedbackstore.New(db)
	auditEvents := auditstore.New(db)

	// Session manager: signed cookie carrying a session id, record in Mongo,
	// fresh user load on every request. Secure cookies in production.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}
	sessionMgr.SetSessionRecords(sessStore)
	sessionMgr.SetUserFetcher(userstore.NewFetcher(db))

	issuer, err := tokens.NewIssuer(users, tokens.Config{
		Secret:    []byte(appCfg.JWTSecret),
		VerifyTTL: appCfg.VerifyTokenExpiry,
		ResetTTL:  appCfg.ResetTokenExpiry,
	})
	if err != nil {
		logger.Error("token issuer init failed", zap.Error(err))
		return nil, err
	}

	audit := auditlog.New(auditEvents, logger, auditlog.Config{
		Auth:    appCfg.AuditLogAuth,
		Booking: appCfg.AuditLogBooking,
	})

	loginLimiter := ratelimit.NewLoginLimiter(ratelimit.LoginConfig{
		IPLimit:   appCfg.LoginRateIP,
		UserLimit: appCfg.LoginRateUser,
	}, deps.Redis, logger)

	var feedbackLimiter ratelimit.Store
	var itemCache *cache.Cache
	if deps.Redis != nil {
		feedbackLimiter = ratelimit.NewRedis(deps.Redis, "venuehub:rl:feedback:", feedbackPerMinute, time.Minute, logger)
		itemCache = cache.New(deps.Redis, "venuehub:")
	} else {
		feedbackLimiter = ratelimit.New(feedbackPerMinute, time.Minute)
	}

	workflow := booking.New(items, reservations, mail, appCfg.SiteName, logger)

	errLog := errorsfeature.NewErrorLogger(logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(metrics.HTTPMetricsMiddleware)

	// Global auth middleware: loads the SessionUser principal into context if
	// signed in. Gated routes check it via authz.
	r.Use(sessionMgr.LoadSessionUser)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		errorsfeature.RenderNotFound(w, "not found")
	})

	// Operations
	healthHandler := healthfeature.NewHandler(deps.MongoClient, deps.Redis, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	r.Handle("/metrics", metrics.Handler())

	// Accounts
	signupHandler := signupfeature.NewHandler(users, issuer, mail, audit, errLog,
		appCfg.BaseURL, appCfg.SiteName, appCfg.VerifyTokenExpiry, logger)
	r.Mount("/signup", signupfeature.Routes(signupHandler))
	signupfeature.Register(r, signupHandler)

	loginHandler := loginfeature.NewHandler(users, sessionMgr, loginLimiter, audit, errLog, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, audit, appCfg.FrontendURL, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler))

	profileHandler := profilefeature.NewHandler(users, errLog, logger)
	r.Mount("/profile", profilefeature.Routes(profileHandler))

	googleHandler := authgooglefeature.NewHandler(sessionMgr, audit, stateStore, users, google, appCfg.FrontendURL, logger)
	r.Mount("/auth/google", authgooglefeature.Routes(googleHandler))

	passwordHandler := passwordfeature.NewHandler(users, sessStore, issuer, mail, audit, errLog,
		passwordfeature.Options{
			FrontendURL:        appCfg.FrontendURL,
			SiteName:           appCfg.SiteName,
			ResetTTL:           appCfg.ResetTokenExpiry,
			RevealUnknownEmail: appCfg.RevealUnknownEmail,
		}, logger)
	r.Mount("/forgot-password", passwordfeature.ForgotRoutes(passwordHandler))
	r.Mount("/reset-password", passwordfeature.ResetRoutes(passwordHandler))

	// Catalogue
	itemsHandler := itemsfeature.NewHandler(items, hotels, itemCache, audit, errLog, logger)
	r.Mount("/items", itemsfeature.Routes(itemsHandler))
	itemsfeature.Register(r, itemsHandler)

	hotelsHandler := hotelsfeature.NewHandler(hotels, audit, errLog, logger)
	r.Mount("/hotels", hotelsfeature.Routes(hotelsHandler))
	hotelsfeature.Register(r, hotelsHandler)

	// Bookings
	reservationsHandler := reservationsfeature.NewHandler(workflow, audit, errLog, logger)
	r.Mount("/reservation", reservationsfeature.Routes(reservationsHandler))
	r.Mount("/reservations", reservationsfeature.MineRoutes(reservationsHandler))

	// Visitor feedback
	feedbackHandler := feedbackfeature.NewHandler(feedback, feedbackLimiter, errLog, logger)
	r.Mount("/feedback", feedbackfeature.Routes(feedbackHandler))
	feedbackfeature.Register(r, feedbackHandler)

	// Admin
	auditHandler := auditlogfeature.NewHandler(auditEvents, errLog, logger)
	r.Mount("/audit", auditlogfeature.Routes(auditHandler))

	return r, nil
}
