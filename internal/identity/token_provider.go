package identity

import (
	"fmt"
	"sync"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

// GuestSource supplies the locally persisted anonymous id used whenever no
// valid token is present.
type GuestSource interface {
	GuestID() string
}

// TokenProvider resolves identity from a bearer token issued by the
// external auth service. An empty or invalid token resolves to a guest.
// SetToken models sign-in/sign-out events from the ambient session.
type TokenProvider struct {
	mu      sync.Mutex
	secret  []byte
	guests  GuestSource
	current Identity
	changes chan Identity
}

func NewTokenProvider(secret string, guests GuestSource, initialToken string) *TokenProvider {
	p := &TokenProvider{
		secret:  []byte(secret),
		guests:  guests,
		changes: make(chan Identity, 4),
	}
	p.current = p.resolve(initialToken)
	return p
}

func (p *TokenProvider) Current() Identity {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

func (p *TokenProvider) Changes() <-chan Identity { return p.changes }

// SetToken re-resolves identity from a new ambient token and notifies
// observers. An empty token is a sign-out.
func (p *TokenProvider) SetToken(token string) {
	next := p.resolve(token)
	p.mu.Lock()
	changed := next != p.current
	p.current = next
	p.mu.Unlock()
	if changed {
		select {
		case p.changes <- next:
		default:
			log.Warn().Msg("Identity change dropped, observer not keeping up")
		}
	}
}

func (p *TokenProvider) resolve(token string) Identity {
	if token == "" {
		return Guest(p.guests.GuestID())
	}
	userID, email, err := ParseToken(token, p.secret)
	if err != nil {
		log.Warn().Err(err).Msg("Invalid auth token, falling back to guest identity")
		return Guest(p.guests.GuestID())
	}
	return Signed(userID, email)
}

// ParseToken validates an HS256 bearer token and extracts the subject and
// email claims.
func ParseToken(tokenString string, secret []byte) (userID, email string, err error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return "", "", fmt.Errorf("token is not valid")
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", "", fmt.Errorf("token has no subject claim")
	}
	if e, ok := claims["email"].(string); ok {
		email = e
	}
	return sub, email, nil
}
