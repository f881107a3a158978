package router

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	jwt "github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// ProviderRole is the role claim a token needs to read provider reports.
const ProviderRole = "provider"

type ProviderClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// SignProviderToken issues an HS256 token for the provider identified by subject.
func SignProviderToken(secret []byte, subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := ProviderClaims{
		Role: ProviderRole,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func parseProviderToken(secret []byte, tok string) (*ProviderClaims, error) {
	t, err := jwt.ParseWithClaims(tok, &ProviderClaims{}, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if c, ok := t.Claims.(*ProviderClaims); ok && t.Valid && c.Role == ProviderRole {
		return c, nil
	}
	return nil, errors.New("invalid provider token")
}

// ProviderAuth requires a valid provider bearer token signed with the secret
// current at request time. An empty secret lets every request through.
func ProviderAuth(log *zap.Logger, currentSecret func() []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		secret := currentSecret()
		if len(secret) == 0 {
			c.Next()
			return
		}

		h := c.GetHeader("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		claims, err := parseProviderToken(secret, strings.TrimSpace(strings.TrimPrefix(h, "Bearer ")))
		if err != nil {
			log.Warn("Rejected provider token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Set("provider", claims.Subject)
		c.Next()
	}
}
