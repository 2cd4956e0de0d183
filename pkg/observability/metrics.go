package observability

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// PrometheusHandler adapts the scrape handler from InitTelemetry to a gin
// route. A nil handler means telemetry was never initialized.
func PrometheusHandler(handler http.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		if handler == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "metrics not initialized"})
			return
		}
		handler.ServeHTTP(c.Writer, c.Request)
	}
}
