// Package wsbridge relays a corestream Signal over a WebSocket connection,
// the external-consumer role spec.md assigns to "UI/observer adapters"
// wired at the transport boundary rather than inside the core engine.
package wsbridge

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rivenhollow/corestream/internal/auth"
)

// Authenticator resolves the logical client identifier for an incoming
// WebSocket upgrade request, or rejects it.
type Authenticator interface {
	Authenticate(r *http.Request) (string, error)
}

// AllowAll accepts every request with an empty client identifier. Useful
// for local demos and tests that don't want to thread a real token through.
type AllowAll struct{}

// Authenticate always succeeds.
func (AllowAll) Authenticate(*http.Request) (string, error) { return "", nil }

// HMACAuthenticator validates a compact HS256 token carried either as the
// "auth_token" query parameter or the "X-Auth-Token" header, adapted from
// the teacher's hmacWebsocketAuthenticator.
type HMACAuthenticator struct {
	verifier *auth.HMACTokenVerifier
}

// NewHMACAuthenticator builds an Authenticator backed by an HMAC token
// verifier, accepting clock skew up to leeway.
func NewHMACAuthenticator(secret string, leeway time.Duration) (*HMACAuthenticator, error) {
	verifier, err := auth.NewHMACTokenVerifier(secret, leeway)
	if err != nil {
		return nil, err
	}
	return &HMACAuthenticator{verifier: verifier}, nil
}

// Authenticate validates the incoming token and returns the claimed
// subject as the client identifier.
func (a *HMACAuthenticator) Authenticate(r *http.Request) (string, error) {
	if a == nil || a.verifier == nil {
		return "", errors.New("wsbridge: verifier not configured")
	}
	token := strings.TrimSpace(r.URL.Query().Get("auth_token"))
	if token == "" {
		token = strings.TrimSpace(r.Header.Get("X-Auth-Token"))
	}
	if token == "" {
		return "", errors.New("wsbridge: missing auth token")
	}
	claims, err := a.verifier.Verify(token)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}
