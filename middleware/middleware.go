package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/nijaru/yt-transcript/errors"
	"github.com/nijaru/yt-transcript/utils"
	"golang.org/x/time/rate"
)

// RateLimiter rejects requests over the configured rate with 429.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter allows limit requests per interval, with a burst of limit.
func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = 1
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Every(interval/time.Duration(limit)), limit),
	}
}

func (rl *RateLimiter) Allow() bool {
	return rl.limiter.Allow()
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow() {
			utils.RespondWithError(w, errors.TooManyRequests("RateLimiter", "Rate limit exceeded"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// BodyLimit caps request bodies at maxBytes.
func BodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				err := errors.Internal("Recovery", fmt.Errorf("%v", rec), "Internal server error")
				GetLogger(r.Context()).WithError(err).WithField("stack", string(debug.Stack())).Error("Panic in handler")
				utils.RespondWithError(w, err)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

