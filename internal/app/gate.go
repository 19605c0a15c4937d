// internal/app/gate.go
package app

import (
	"crypto/subtle"
	"sync"

	"github.com/google/uuid"

	apperrors "visa-tracker/internal/common/errors"
	"visa-tracker/internal/common/metrics"
)

// Gate guards the admin surface with a shared passcode. Sessions live in memory only and
// end on Logout or process restart.
type Gate struct {
	passcode string
	newToken func() string

	mu       sync.RWMutex
	sessions map[string]struct{}
}

func NewGate(passcode string) *Gate {
	return &Gate{
		passcode: passcode,
		newToken: uuid.NewString,
		sessions: make(map[string]struct{}),
	}
}

// Login returns a session token when passcode matches.
func (g *Gate) Login(passcode string) (string, error) {
	if subtle.ConstantTimeCompare([]byte(passcode), []byte(g.passcode)) != 1 {
		metrics.AdminLogins.WithLabelValues(metrics.ResultFailure).Inc()
		return "", apperrors.NewUnauthorizedError("Invalid passcode. Please try again.")
	}

	token := g.newToken()
	g.mu.Lock()
	g.sessions[token] = struct{}{}
	g.mu.Unlock()

	metrics.AdminLogins.WithLabelValues(metrics.ResultSuccess).Inc()
	return token, nil
}

func (g *Gate) Valid(token string) bool {
	if token == "" {
		return false
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.sessions[token]
	return ok
}

// Logout ends a session. Unknown tokens are ignored.
func (g *Gate) Logout(token string) {
	g.mu.Lock()
	delete(g.sessions, token)
	g.mu.Unlock()
}
