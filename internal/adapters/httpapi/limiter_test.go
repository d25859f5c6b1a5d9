package httpapi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIPLimiter_PerIP(t *testing.T) {
	l := NewIPLimiter(0.001, 1)
	defer l.Stop()

	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.2"), "each IP has its own bucket")
}

func TestIPLimiter_CleanupDropsIdleClients(t *testing.T) {
	l := NewIPLimiter(1, 1)
	defer l.Stop()

	l.Allow("10.0.0.1")
	l.cleanup(time.Now().Add(2 * idleClientTTL))

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.Empty(t, l.clients)
}

func TestIPLimiter_StopTwice(t *testing.T) {
	l := NewIPLimiter(1, 1)
	l.Stop()
	l.Stop()
}
