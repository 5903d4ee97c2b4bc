package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	maxLimiters = 10000
	limiterTTL  = 10 * time.Minute
)

// RateLimiter ограничивает частоту запросов с одного адреса.
// Используется на входе, регистрации и восстановлении пароля.
type RateLimiter struct {
	mu       sync.Mutex
	limiters *expirable.LRU[string, *rate.Limiter]
	rate     rate.Limit
	burst    int
	logger   *zap.Logger
}

// NewRateLimiter создаёт ограничитель на perSecond запросов в секунду с запасом burst.
func NewRateLimiter(perSecond float64, burst int, logger *zap.Logger) *RateLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateLimiter{
		limiters: expirable.NewLRU[string, *rate.Limiter](maxLimiters, nil, limiterTTL),
		rate:     rate.Limit(perSecond),
		burst:    burst,
		logger:   logger,
	}
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	l, ok := rl.limiters.Get(key)
	if !ok {
		l = rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters.Add(key, l)
	}
	return l
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Handler возвращает middleware ограничения частоты.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientKey(r)
		if !rl.limiter(key).Allow() {
			rl.logger.Warn("rate limit exceeded",
				zap.String("key", key),
				zap.String("path", r.URL.Path),
				zap.String("method", r.Method),
			)
			w.Header().Set("Retry-After", "1")
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
