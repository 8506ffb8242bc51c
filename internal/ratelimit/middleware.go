package ratelimit

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/render"
	"github.com/oscargavin/foremost-sub001/pkg/metrics"
	"github.com/oscargavin/foremost-sub001/pkg/middleware"
	"go.uber.org/zap"
)

// ClientKey derives the limiter key for a request: the route purpose plus
// the client identity from the forwarding headers. Clients that cannot be
// identified all share a single "unknown" bucket.
func ClientKey(purpose string, r *http.Request) string {
	ip := middleware.ClientIP(r)
	if ip == "" {
		ip = "unknown"
	}
	return purpose + ":" + ip
}

type denyReply struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Middleware enforces cfg for every request passing through it. Denied
// requests get a 429 carrying the reset metadata the client needs to know
// when to come back.
func Middleware(l *Limiter, purpose string, cfg Config) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res := l.Check(ClientKey(purpose, r), cfg)

			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.UnixMilli(), 10))

			if !res.Allowed {
				metrics.IncreaseRateLimitDeniedTotalMetric(purpose)
				zap.S().Named("ratelimit").Debugw("request denied", "purpose", purpose, "reset_at", res.ResetAt)

				render.Status(r, http.StatusTooManyRequests)
				render.JSON(w, r, denyReply{
					Error:   "Rate limit exceeded",
					Message: fmt.Sprintf("Try again after %s", res.ResetAt.UTC().Format(time.RFC3339)),
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
