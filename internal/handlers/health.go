package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/AnshRaj112/graceway-backend/pkg/response"
	"go.uber.org/zap"
)

// Health pings every configured dependency and answers 503 if any fails.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	results := make(map[string]string, len(h.opts.Checks))
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	healthy := true
	for name, check := range h.opts.Checks {
		wg.Add(1)
		go func(name string, check Check) {
			defer wg.Done()
			status := "ok"
			if err := check(ctx); err != nil {
				h.log.Warn("health check failed", zap.String("dependency", name), zap.Error(err))
				status = "unavailable"
			}
			mu.Lock()
			defer mu.Unlock()
			results[name] = status
			if status != "ok" {
				healthy = false
			}
		}(name, check)
	}
	wg.Wait()

	body := map[string]any{"status": "ok", "dependencies": results, "time": time.Now().UTC()}
	if !healthy {
		body["status"] = "degraded"
		response.JSON(w, http.StatusServiceUnavailable, response.Envelope{Success: false, Message: "Service degraded", Data: body})
		return
	}
	response.Success(w, body, "")
}

func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	response.Fail(w, http.StatusNotFound, "Route not found", nil)
}

func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	response.Fail(w, http.StatusMethodNotAllowed, "Method not allowed", nil)
}
