package gateway

import (
	"context"
	"net/http"
	"sync"
	"time"

	"kadupul/web"
)

const probeTimeout = 2 * time.Second

// handleHealth probes every dependency independently, each with its own
// timeout, and reports a composite status. A failing dependency marks
// only itself unhealthy; the endpoint itself always answers.
func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	services := struct {
		cache       string
		persistence string
		mlService   string
	}{}

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		services.cache = probe(r.Context(), a.cache.Ping)
	}()
	go func() {
		defer wg.Done()
		services.persistence = probe(r.Context(), a.store.Ping)
	}()
	go func() {
		defer wg.Done()
		services.mlService = probe(r.Context(), a.inference.Health)
	}()
	wg.Wait()

	healthy := services.cache == "healthy" &&
		services.persistence == "healthy" &&
		services.mlService == "healthy"

	status := "healthy"
	code := http.StatusOK
	if !healthy {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	web.RespondJSON(w, code, map[string]interface{}{
		"status": status,
		"services": map[string]string{
			"api":         "healthy",
			"cache":       services.cache,
			"persistence": services.persistence,
			"ml_service":  services.mlService,
		},
	})
}

func probe(parent context.Context, ping func(context.Context) error) string {
	ctx, cancel := context.WithTimeout(parent, probeTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if recover() != nil {
				done <- context.Canceled
			}
		}()
		done <- ping(ctx)
	}()

	select {
	case err := <-done:
		if err != nil {
			return "unhealthy"
		}
		return "healthy"
	case <-ctx.Done():
		return "unhealthy"
	}
}

func contextWithTimeout(r *http.Request, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), d)
}
