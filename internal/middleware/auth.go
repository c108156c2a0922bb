package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/vtmai/celwrite/config"
	"github.com/vtmai/celwrite/internal/identity"
)

const identityKey = "celwrite_identity"

// OptionalAuth resolves the caller's identity from a bearer token when one
// is present. It never rejects a request: an absent or invalid token means
// the caller acts as an anonymous guest, which every endpoint permits.
func OptionalAuth(cfg *config.Config) gin.HandlerFunc {
	secret := []byte(cfg.JWTSecret)
	return func(c *gin.Context) {
		tokenString := extractBearerToken(c)
		if tokenString == "" {
			c.Next()
			return
		}
		userID, email, err := identity.ParseToken(tokenString, secret)
		if err != nil {
			log.Warn().Err(err).Str("path", c.FullPath()).Msg("Rejecting invalid bearer token, treating caller as guest")
			c.Next()
			return
		}
		c.Set(identityKey, identity.Signed(userID, email))
		c.Next()
	}
}

// ActorFrom returns the resolved identity for the request. Anonymous
// callers get a zero-value guest identity; handlers combine it with a
// guestId query parameter where relevant.
func ActorFrom(c *gin.Context) identity.Identity {
	if v, ok := c.Get(identityKey); ok {
		if actor, ok := v.(identity.Identity); ok {
			return actor
		}
	}
	return identity.Identity{}
}

func extractBearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return header[7:]
	}
	return ""
}
