package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/limbo/fittrack/pkg/cleanup"
	"github.com/limbo/fittrack/pkg/httputil"
)

type RequestRateLimiter interface {
	Allow(ctx context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error)
}

// NewRedisLimiter connects to redis and returns a GCRA limiter on top of it.
func NewRedisLimiter(ctx context.Context, address, password string) (*redis_rate.Limiter, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, errors.New("pinging redis error: " + err.Error())
	}
	cleanup.Register(&cleanup.Job{
		Name: "closing redis client",
		F:    client.Close,
	})
	return redis_rate.NewLimiter(client), nil
}

// Middleware limits requests per client address within the given scope.
// A nil limiter disables limiting. onLimited is optional.
func Middleware(limiter RequestRateLimiter, scope string, allowedPerMin int, onLimited func()) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, err := limiter.Allow(r.Context(), scope+":"+clientIP(r), redis_rate.PerMinute(allowedPerMin))
			if err != nil {
				httputil.WriteErrorResponse(w, http.StatusInternalServerError, "rate limit internal error", nil)
				return
			}
			if res.Allowed > 0 {
				next.ServeHTTP(w, r)
				return
			}
			if onLimited != nil {
				onLimited()
			}
			w.Header().Set("Retry-After", fmt.Sprintf("%.0f", res.RetryAfter.Seconds()))
			httputil.WriteErrorResponse(w, http.StatusTooManyRequests,
				fmt.Sprintf("too many attempts, retry after %.0f seconds", res.RetryAfter.Seconds()), nil)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
