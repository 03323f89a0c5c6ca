package obs

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandlers exposes the liveness and readiness probes. Ready is optional,
// a nil check means the process is ready as soon as it serves traffic.
type HealthHandlers struct {
	Ready func() error
}

// Livez answers as long as the process can serve a request.
func (h HealthHandlers) Livez(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readyz runs the readiness check and reports its failure in the body so the
// orchestrator logs show what dependency is down.
func (h HealthHandlers) Readyz(c *gin.Context) {
	if h.Ready != nil {
		if err := h.Ready(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
