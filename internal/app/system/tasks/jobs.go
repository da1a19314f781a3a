// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"

	"github.com/dalemusser/venuehub/internal/app/store/oauthstate"
	"github.com/dalemusser/venuehub/internal/app/store/sessions"
	userstore "github.com/dalemusser/venuehub/internal/app/store/users"
	"go.uber.org/zap"
)

// SessionCleanupJob creates a job that deletes expired login sessions.
// Mongo's TTL monitor does the same lazily; this keeps the collection exact.
func SessionCleanupJob(sessStore *sessions.Store, logger *zap.Logger) Job {
	return Job{
		Name:     "session-cleanup",
		Interval: 5 * time.Minute,
		Run: func(ctx context.Context) error {
			count, err := sessStore.CleanupExpired(ctx)
			if err != nil {
				return err
			}
			if count > 0 {
				logger.Info("removed expired sessions", zap.Int64("count", count))
			}
			return nil
		},
	}
}

// OAuthStateCleanupJob creates a job that removes expired OAuth state tokens.
// This is a backup for when MongoDB's TTL index cleanup is delayed.
func OAuthStateCleanupJob(stateStore *oauthstate.Store, logger *zap.Logger) Job {
	return Job{
		Name:     "oauth-state-cleanup",
		Interval: 1 * time.Hour,
		Run: func(ctx context.Context) error {
			count, err := stateStore.CleanupExpired(ctx)
			if err != nil {
				return err
			}
			if count > 0 {
				logger.Debug("cleaned up expired OAuth states", zap.Int64("count", count))
			}
			return nil
		},
	}
}

// ResetTokenCleanupJob creates a job that clears password-reset tokens whose
// hour has passed, so an abandoned reset leaves nothing on the user record.
func ResetTokenCleanupJob(users *userstore.Store, logger *zap.Logger) Job {
	return Job{
		Name:     "reset-token-cleanup",
		Interval: 15 * time.Minute,
		Run: func(ctx context.Context) error {
			count, err := users.ClearExpiredResetTokens(ctx, time.Now())
			if err != nil {
				return err
			}
			if count > 0 {
				logger.Info("cleared expired reset tokens", zap.Int64("count", count))
			}
			return nil
		},
	}
}
