// internal/app/system/ratelimit/login.go
package ratelimit

import (
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Scope names which limit rejected a login attempt.
type Scope string

const (
	ScopeNone Scope = ""
	ScopeIP   Scope = "ip"
	ScopeUser Scope = "username"
)

// LoginConfig holds per-IP and per-username attempt budgets.
type LoginConfig struct {
	IPLimit    int
	IPWindow   time.Duration
	UserLimit  int
	UserWindow time.Duration
}

// DefaultLoginConfig allows 10 attempts per IP per minute and
// 5 attempts per username per 5 minutes.
func DefaultLoginConfig() LoginConfig {
	return LoginConfig{IPLimit: 10, IPWindow: time.Minute, UserLimit: 5, UserWindow: 5 * time.Minute}
}

// LoginLimiter throttles login attempts by client IP and by target username.
type LoginLimiter struct {
	ip   Store
	user Store
}

// NewLoginLimiter builds a limiter on Redis when rdb is set, in memory otherwise.
// Zero fields in cfg take their defaults.
func NewLoginLimiter(cfg LoginConfig, rdb *redis.Client, logger *zap.Logger) *LoginLimiter {
	def := DefaultLoginConfig()
	if cfg.IPLimit <= 0 {
		cfg.IPLimit = def.IPLimit
	}
	if cfg.IPWindow <= 0 {
		cfg.IPWindow = def.IPWindow
	}
	if cfg.UserLimit <= 0 {
		cfg.UserLimit = def.UserLimit
	}
	if cfg.UserWindow <= 0 {
		cfg.UserWindow = def.UserWindow
	}
	if rdb != nil {
		return &LoginLimiter{
			ip:   NewRedis(rdb, "venuehub:rl:login:ip:", cfg.IPLimit, cfg.IPWindow, logger),
			user: NewRedis(rdb, "venuehub:rl:login:user:", cfg.UserLimit, cfg.UserWindow, logger),
		}
	}
	return &LoginLimiter{
		ip:   New(cfg.IPLimit, cfg.IPWindow),
		user: New(cfg.UserLimit, cfg.UserWindow),
	}
}

// NewLoginLimiterWithStores wires explicit stores.
func NewLoginLimiterWithStores(ip, user Store) *LoginLimiter {
	return &LoginLimiter{ip: ip, user: user}
}

// Check records an attempt and reports whether it may proceed. On refusal
// the returned Scope names the limit that was hit.
func (ll *LoginLimiter) Check(r *http.Request, username string) (bool, Scope) {
	if !ll.ip.Allow(r.Context(), ClientIP(r)) {
		return false, ScopeIP
	}
	if key := userKey(username); key != "" {
		if !ll.user.Allow(r.Context(), key) {
			return false, ScopeUser
		}
	}
	return true, ScopeNone
}

// ResetUser clears the username budget after a successful login.
func (ll *LoginLimiter) ResetUser(r *http.Request, username string) {
	if key := userKey(username); key != "" {
		ll.user.Reset(r.Context(), key)
	}
}

// Message is the client-facing explanation for a refusal.
func (s Scope) Message() string {
	switch s {
	case ScopeIP:
		return "Too many login attempts. Please wait a minute before trying again."
	case ScopeUser:
		return "Too many login attempts for this account. Please wait a few minutes."
	}
	return ""
}

func userKey(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
