package playground

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/BarberLink/BL-Backend/internal/db"
)

// IsIPRateLimited counts events of the given action from the IP within the
// trailing hour. A limit <= 0 disables the check; an empty IP is never limited.
func IsIPRateLimited(action, ip string, limitPerHour int) bool {
	if ip == "" || limitPerHour <= 0 {
		return false
	}
	windowStart := time.Now().Add(-time.Hour)
	var count int64
	db.DB.Model(&RateLimitEvent{}).
		Where("action = ? AND ip_address = ? AND created_at >= ?", action, ip, windowStart).
		Count(&count)
	return count >= int64(limitPerHour)
}

// RecordEvent appends one rate-limit event. Skipped silently for empty IPs.
func RecordEvent(action, ip string, session *Session) {
	if ip == "" {
		return
	}
	event := RateLimitEvent{Action: action, IPAddress: ip}
	if session != nil {
		event.SessionID = &session.ID
	}
	db.DB.Create(&event)
}

// startGuard is an in-memory token bucket per IP in front of the DB window
// count on /start. It absorbs tight refresh loops without a query each time;
// the DB count remains the authoritative hourly limit.
type startGuard struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
}

func newStartGuard(perSecond float64, burst int) *startGuard {
	return &startGuard{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(perSecond),
		burst:    burst,
	}
}

func (g *startGuard) allow(ip string) bool {
	if ip == "" {
		return true
	}
	g.mu.Lock()
	limiter, ok := g.limiters[ip]
	if !ok {
		limiter = rate.NewLimiter(g.rate, g.burst)
		g.limiters[ip] = limiter
		if len(g.limiters) > 10000 {
			// Bounded memory: drop all buckets rather than tracking LRU.
			g.limiters = map[string]*rate.Limiter{ip: limiter}
		}
	}
	g.mu.Unlock()
	return limiter.Allow()
}
