// README: Health endpoint pinging the store and cache dependencies.
package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
)

type PingFunc func(ctx context.Context) error

type HealthHandler struct {
	checks  map[string]PingFunc
	timeout time.Duration
}

func NewHealthHandler(checks map[string]PingFunc) *HealthHandler {
	return &HealthHandler{checks: checks, timeout: 2 * time.Second}
}

func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := "UP"
	components := make(map[string]string, len(names))
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			components[name] = "DOWN"
			status = "DOWN"
			continue
		}
		components[name] = "UP"
	}

	code := http.StatusOK
	if status != "UP" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(c, code, gin.H{"status": status, "components": components})
}
