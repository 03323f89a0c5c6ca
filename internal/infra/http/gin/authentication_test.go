package ginserver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthRateLimiterThrottlesPerIP(t *testing.T) {
	l := newAuthRateLimiter(1)

	assert.True(t, l.allow("10.0.0.1"))
	assert.False(t, l.allow("10.0.0.1"))
	assert.True(t, l.allow("10.0.0.2"))
}

func TestAuthRateLimiterEvictsIdleClients(t *testing.T) {
	l := &authRateLimiter{perMin: 60, maxClients: 3, limiters: make(map[string]*clientLimiter)}
	for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		require.True(t, l.allow(ip))
	}
	for _, entry := range l.limiters {
		entry.lastSeen = time.Now().Add(-clientIdleExpiry - time.Minute)
	}

	require.True(t, l.allow("10.0.0.4"))

	assert.Len(t, l.limiters, 1)
	_, tracked := l.limiters["10.0.0.4"]
	assert.True(t, tracked)
}

func TestAuthRateLimiterCapsActiveClients(t *testing.T) {
	l := &authRateLimiter{perMin: 60, maxClients: 2, limiters: make(map[string]*clientLimiter)}
	require.True(t, l.allow("10.0.0.1"))
	require.True(t, l.allow("10.0.0.2"))

	// both tracked clients are still active, the table resets instead of growing
	require.True(t, l.allow("10.0.0.3"))
	assert.Len(t, l.limiters, 1)
}
