package httpx

import (
	"context"
	"net/http"
	"time"
)

// HealthChecker reports the health of an optional dependency.
type HealthChecker interface {
	Health(ctx context.Context) error
}

type healthResponse struct {
	Status string `json:"status"`
	Cache  string `json:"cache"`
}

// healthHandler answers readiness/liveness checks. The gateway stays ready
// when the cache is down because polls fall through to the backend.
func healthHandler(cache HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "ok", Cache: "disabled"}
		if cache != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			resp.Cache = "ok"
			if err := cache.Health(ctx); err != nil {
				resp.Cache = "unavailable"
			}
		}
		if r.Method == http.MethodHead {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			return
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}
