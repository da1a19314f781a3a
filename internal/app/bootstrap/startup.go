// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"sync"

	"github.com/dalemusser/venuehub/internal/app/store/oauthstate"
	"github.com/dalemusser/venuehub/internal/app/store/sessions"
	userstore "github.com/dalemusser/venuehub/internal/app/store/users"
	"github.com/dalemusser/venuehub/internal/app/system/tasks"
	"github.com/dalemusser/venuehub/internal/app/system/timeouts"
	"github.com/dalemusser/venuehub/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

var (
	runnerMu sync.Mutex
	runner   *tasks.Runner
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built: request
// timeouts, the admin bootstrap, and the background sweep jobs.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{
		Ping:   appCfg.TimeoutPing,
		Short:  appCfg.TimeoutShort,
		Medium: appCfg.TimeoutMedium,
		Long:   appCfg.TimeoutLong,
	})

	if appCfg.AdminEmail != "" {
		if err := ensureAdmin(ctx, deps, appCfg.AdminEmail, logger); err != nil {
			return err
		}
	}

	db := deps.MongoDatabase
	r := tasks.NewRunner(logger,
		tasks.SessionCleanupJob(sessions.New(db), logger),
		tasks.OAuthStateCleanupJob(oauthstate.New(db), logger),
		tasks.ResetTokenCleanupJob(userstore.New(db), logger),
	)
	r.Start()

	runnerMu.Lock()
	runner = r
	runnerMu.Unlock()
	return nil
}

// ensureAdmin promotes the user registered with email to admin. A missing
// user is logged and skipped; the account must sign up first so it has a
// credential.
func ensureAdmin(ctx context.Context, deps DBDeps, email string, logger *zap.Logger) error {
	users := userstore.New(deps.MongoDatabase)

	u, err := users.FindByEmail(ctx, email)
	if err != nil {
		logger.Error("admin lookup failed", zap.Error(err))
		return err
	}
	if u == nil {
		logger.Warn("admin_email has no account yet; skipping promotion", zap.String("email", email))
		return nil
	}
	if u.Role == models.RoleAdmin {
		return nil
	}

	if _, err := users.SetRole(ctx, u.ID, models.RoleAdmin); err != nil {
		logger.Error("admin promotion failed", zap.String("user_id", u.ID.Hex()), zap.Error(err))
		return err
	}
	logger.Info("promoted user to admin",
		zap.String("user_id", u.ID.Hex()),
		zap.String("previous_role", u.Role))
	return nil
}

// stopRunner halts the background jobs started by Startup, if any.
func stopRunner() {
	runnerMu.Lock()
	r := runner
	runner = nil
	runnerMu.Unlock()
	if r != nil {
		r.Stop()
	}
}
