package server

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"ai-diet-planner/internal/logging"
	"ai-diet-planner/internal/metrics"

	"github.com/juju/ratelimit"
)

const (
	defaultRate     = 3
	defaultCapacity = 600
)

// RateLimiter manages per-client token buckets.
type RateLimiter struct {
	clients  map[string]*ratelimit.Bucket
	mu       sync.RWMutex
	rate     float64
	capacity int64
}

// NewRateLimiter creates a limiter refilling rate tokens per second up to capacity.
func NewRateLimiter(rate float64, capacity int64) *RateLimiter {
	return &RateLimiter{
		clients:  make(map[string]*ratelimit.Bucket),
		rate:     rate,
		capacity: capacity,
	}
}

func (rl *RateLimiter) getBucket(clientIP string) *ratelimit.Bucket {
	rl.mu.RLock()
	bucket, exists := rl.clients[clientIP]
	rl.mu.RUnlock()

	if !exists {
		rl.mu.Lock()
		if bucket, exists = rl.clients[clientIP]; !exists {
			bucket = ratelimit.NewBucketWithRate(rl.rate, rl.capacity)
			rl.clients[clientIP] = bucket
			metrics.RateLimiterBucketsTotal.Set(float64(len(rl.clients)))
		}
		rl.mu.Unlock()
	}

	return bucket
}

// prune drops buckets that have refilled completely.
func (rl *RateLimiter) prune() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for ip, bucket := range rl.clients {
		if bucket.Available() == bucket.Capacity() {
			delete(rl.clients, ip)
		}
	}
	metrics.RateLimiterBucketsTotal.Set(float64(len(rl.clients)))
}

func (rl *RateLimiter) startCleanup(interval time.Duration, done <-chan struct{}) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				rl.prune()
			case <-done:
				return
			}
		}
	}()
}

// tokenCost prices a request. LLM-backed endpoints cost the most.
func tokenCost(r *http.Request) int64 {
	path := r.URL.Path
	switch {
	case path == "/health" || path == "/metrics":
		return 0
	case r.Method == http.MethodPost && (path == "/v1/plans" || strings.HasSuffix(path, "/revise")):
		return 200
	case r.Method == http.MethodPost && (path == "/v1/plans/import-url" || strings.HasSuffix(path, "/sync")):
		return 50
	case path == "/v1/extract":
		return 10
	}
	return 5
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Middleware rejects requests once the client's bucket cannot cover their cost.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cost := tokenCost(r)
		if cost == 0 {
			next.ServeHTTP(w, r)
			return
		}

		ip := clientIP(r)
		bucket := rl.getBucket(ip)

		w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(rl.capacity, 10))
		if bucket.TakeAvailable(cost) < cost {
			logging.Warn("Rate limit exceeded", "remote_addr", ip, "path", r.URL.Path, "cost", cost)
			w.Header().Set("X-RateLimit-Remaining", "0")
			w.Header().Set("Retry-After", "60")
			respondWithError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
			return
		}

		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(bucket.Available(), 10))
		next.ServeHTTP(w, r)
	})
}
