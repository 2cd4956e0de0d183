package app

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

const healthCheckTimeout = 2 * time.Second

// HealthChecker probes the backing stores so orchestrators can tell a hung
// dependency apart from a dead process.
type HealthChecker struct {
	infra Infrastructure
}

func NewHealthChecker(infra Infrastructure) *HealthChecker {
	return &HealthChecker{infra: infra}
}

func (h *HealthChecker) check(ctx context.Context) map[string]error {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	probes := map[string]func(context.Context) error{
		"postgres": h.infra.Postgres().Ping,
		"redis":    h.infra.Redis().Ping,
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[string]error, len(probes))
	)
	for name, probe := range probes {
		wg.Add(1)
		go func(name string, probe func(context.Context) error) {
			defer wg.Done()
			err := probe(ctx)
			mu.Lock()
			results[name] = err
			mu.Unlock()
		}(name, probe)
	}
	wg.Wait()

	return results
}

func (h *HealthChecker) Handler(c *gin.Context) {
	results := h.check(c.Request.Context())

	status := http.StatusOK
	checks := make(gin.H, len(results))
	for name, err := range results {
		if err != nil {
			status = http.StatusServiceUnavailable
			checks[name] = err.Error()
		} else {
			checks[name] = "ok"
		}
	}

	body := gin.H{"status": "pass", "checks": checks}
	if status != http.StatusOK {
		body["status"] = "fail"
	}
	c.JSON(status, body)
}
