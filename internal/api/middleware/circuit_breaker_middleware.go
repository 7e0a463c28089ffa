package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CircuitState int

const (
	StateClosed CircuitState = iota
	StateOpen
	StateHalfOpen
)

type CircuitBreakerConfig struct {
	FailureThreshold int           // consecutive 5xx responses before opening
	SuccessThreshold int           // successes in half-open before closing
	Timeout          time.Duration // how long the circuit stays open
}

// CircuitBreaker sheds requests to a route whose upstream keeps failing.
type CircuitBreaker struct {
	name      string
	config    CircuitBreakerConfig
	state     CircuitState
	failures  int
	successes int
	openedAt  time.Time
	mutex     sync.Mutex
	now       func() time.Time
}

func NewCircuitBreaker(name string, config CircuitBreakerConfig) *CircuitBreaker {
	return &CircuitBreaker{name: name, config: config, state: StateClosed, now: time.Now}
}

func (cb *CircuitBreaker) State() CircuitState {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	return cb.state
}

// allow moves an expired open circuit to half-open.
func (cb *CircuitBreaker) allow() bool {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	if cb.state == StateOpen {
		if cb.now().Sub(cb.openedAt) < cb.config.Timeout {
			return false
		}
		cb.state = StateHalfOpen
		cb.successes = 0
	}
	return true
}

func (cb *CircuitBreaker) record(failed bool) {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	if failed {
		cb.failures++
		if cb.state == StateHalfOpen || cb.failures >= cb.config.FailureThreshold {
			if cb.state != StateOpen {
				log.Warn("Circuit breaker opened", zap.String("circuit", cb.name), zap.Int("failures", cb.failures))
			}
			cb.state = StateOpen
			cb.openedAt = cb.now()
		}
		return
	}

	cb.failures = 0
	if cb.state == StateHalfOpen {
		cb.successes++
		if cb.successes >= cb.config.SuccessThreshold {
			cb.state = StateClosed
			log.Info("Circuit breaker closed", zap.String("circuit", cb.name))
		}
	}
}

func (cb *CircuitBreaker) CircuitBreakerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cb.allow() {
			abort(c, http.StatusServiceUnavailable, "Service temporarily unavailable, try again shortly")
			return
		}
		c.Next()
		cb.record(c.Writer.Status() >= http.StatusInternalServerError)
	}
}
