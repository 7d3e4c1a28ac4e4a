package middleware

import (
	"sync"

	"github.com/akolanti/ChatPDF/internal/config"
	"golang.org/x/time/rate"
)

var limiterInstance = NewIPRateLimiter(rate.Limit(config.RATE_LIMIT_PER_SECOND), config.BURST_RATE_LIMIT_PER_SECOND)

type IPRateLimiter struct {
	ips       map[string]*rate.Limiter
	mu        sync.Mutex
	rateLimit rate.Limit
	burstRate int
}

func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	return &IPRateLimiter{ips: make(map[string]*rate.Limiter), rateLimit: r, burstRate: b}
}

func (i *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()
	limiter, exists := i.ips[ip]
	if !exists {
		limiter = rate.NewLimiter(i.rateLimit, i.burstRate)
		i.ips[ip] = limiter
	}
	return limiter
}

// Prune drops limiters that are back to a full bucket, so addresses seen once
// do not stay in memory forever.
func (i *IPRateLimiter) Prune() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	removed := 0
	for ip, limiter := range i.ips {
		if limiter.Tokens() >= float64(i.burstRate) {
			delete(i.ips, ip)
			removed++
		}
	}
	return removed
}

// PruneRateLimiter is run periodically by the server.
func PruneRateLimiter() int {
	return limiterInstance.Prune()
}
