package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	gin "github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"homestay/internal/app/services/auth"
	domainauth "homestay/internal/domain/auth"
	domainuser "homestay/internal/domain/user"
)

const principalContextKey = "homestay.principal"

type principal struct {
	ID    string
	Role  domainuser.Role
	Token string
}

func (p principal) IsAdmin() bool {
	return p.Role == domainuser.RoleAdmin
}

func (p principal) IsHost() bool {
	return p.Role == domainuser.RoleHost || p.Role == domainuser.RoleAdmin
}

// AuthMiddleware resolves an opaque bearer token to the session it names.
// Requests without a valid token pass through anonymous, route guards decide
// what that means.
type AuthMiddleware struct {
	Service *auth.Service
	Logger  *slog.Logger
}

func (m AuthMiddleware) Handle(c *gin.Context) {
	token := extractBearerToken(c.GetHeader("Authorization"))
	if token == "" || m.Service == nil {
		c.Next()
		return
	}
	session, err := m.Service.ResolveToken(c.Request.Context(), token, time.Now())
	if err != nil {
		if !errors.Is(err, domainauth.ErrSessionNotFound) && m.Logger != nil {
			m.Logger.Debug("token validation failed", "error", err)
		}
		c.Next()
		return
	}
	setPrincipal(c, principal{
		ID:    string(session.UserID),
		Role:  session.Role,
		Token: token,
	})
	c.Next()
}

func setPrincipal(c *gin.Context, p principal) {
	c.Set(principalContextKey, p)
}

func currentPrincipal(c *gin.Context) (principal, bool) {
	val, exists := c.Get(principalContextKey)
	if !exists {
		return principal{}, false
	}
	p, ok := val.(principal)
	return p, ok
}

func requireAuth(c *gin.Context) (principal, bool) {
	p, ok := currentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "auth required"})
		return principal{}, false
	}
	return p, true
}

func requireHost(c *gin.Context) (principal, bool) {
	p, ok := requireAuth(c)
	if !ok {
		return principal{}, false
	}
	if !p.IsHost() {
		c.JSON(http.StatusForbidden, gin.H{"error": "host role required"})
		return principal{}, false
	}
	return p, true
}

func requireAdmin(c *gin.Context) (principal, bool) {
	p, ok := requireAuth(c)
	if !ok {
		return principal{}, false
	}
	if !p.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin role required"})
		return principal{}, false
	}
	return p, true
}

func extractBearerToken(header string) string {
	if header == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

// authRateLimiter throttles credential endpoints per client IP. Tracked
// clients are capped, idle entries are swept once the cap is reached.
type authRateLimiter struct {
	mu         sync.Mutex
	perMin     int
	maxClients int
	limiters   map[string]*clientLimiter
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

const (
	defaultMaxClients = 10000
	clientIdleExpiry  = 10 * time.Minute
)

func newAuthRateLimiter(perMin int) *authRateLimiter {
	if perMin <= 0 {
		perMin = 30
	}
	return &authRateLimiter{
		perMin:     perMin,
		maxClients: defaultMaxClients,
		limiters:   make(map[string]*clientLimiter),
	}
}

func (l *authRateLimiter) Handle(c *gin.Context) {
	if !l.allow(c.ClientIP()) {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many attempts, slow down"})
		return
	}
	c.Next()
}

func (l *authRateLimiter) allow(ip string) bool {
	now := time.Now()
	l.mu.Lock()
	entry, ok := l.limiters[ip]
	if !ok {
		if len(l.limiters) >= l.maxClients {
			l.evict(now)
		}
		entry = &clientLimiter{limiter: rate.NewLimiter(rate.Limit(float64(l.perMin)/60.0), l.perMin)}
		l.limiters[ip] = entry
	}
	entry.lastSeen = now
	l.mu.Unlock()
	return entry.limiter.Allow()
}

// evict drops idle clients, and the whole table when every tracked client is
// still active. Resetting an active client's budget is acceptable, unbounded
// growth is not. Caller holds the lock.
func (l *authRateLimiter) evict(now time.Time) {
	for ip, entry := range l.limiters {
		if now.Sub(entry.lastSeen) > clientIdleExpiry {
			delete(l.limiters, ip)
		}
	}
	if len(l.limiters) >= l.maxClients {
		l.limiters = make(map[string]*clientLimiter)
	}
}
