package transport

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/kripanshu-singh/congkong-livescore/logging"
)

const limiterIdle = 10 * time.Minute

type actorLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per actor: the authenticated subject, or
// the client IP for anonymous requests.
type RateLimiter struct {
	mu     sync.Mutex
	limit  rate.Limit
	burst  int
	actors map[string]*actorLimiter
	now    func() time.Time
}

func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limit:  rate.Limit(perSecond),
		burst:  burst,
		actors: make(map[string]*actorLimiter),
		now:    time.Now,
	}
}

func (l *RateLimiter) Allow(actor string) bool {
	if l == nil || l.limit <= 0 {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	a, ok := l.actors[actor]
	if !ok {
		a = &actorLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.actors[actor] = a
	}
	a.lastSeen = now
	l.evictLocked(now)
	return a.limiter.AllowN(now, 1)
}

func (l *RateLimiter) evictLocked(now time.Time) {
	for k, a := range l.actors {
		if now.Sub(a.lastSeen) > limiterIdle {
			delete(l.actors, k)
		}
	}
}

// Middleware answers 429 when the actor's bucket is empty.
func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := Subject(c)
		if actor == "" {
			actor = c.ClientIP()
		}
		if !l.Allow(actor) {
			logging.Log.Warnf("RATE: throttled %s on %s", actor, c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
