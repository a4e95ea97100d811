package middleware

import (
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Context keys set by Auth for downstream handlers.
const (
	ContextUID   = "uid"
	ContextName  = "name"
	ContextAdmin = "is_admin"
)

// Claims is the identity token payload: a stable user id plus display name,
// resolved by the identity service and consumed as player_uid everywhere.
type Claims struct {
	UID   string `json:"uid"`
	Name  string `json:"name"`
	Admin bool   `json:"admin,omitempty"`
	jwt.RegisteredClaims
}

func jwtSecret() []byte {
	if s := os.Getenv("JWT_SECRET"); s != "" {
		return []byte(s)
	}
	return []byte("njuka-dev-secret")
}

// MintToken signs an identity token. Used by the guest login endpoint and by
// tests.
func MintToken(uid, name string, admin bool, ttl time.Duration) (string, error) {
	claims := Claims{
		UID:   uid,
		Name:  name,
		Admin: admin,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			Subject:   uid,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtSecret())
}

// ParseToken validates a token and returns its claims.
func ParseToken(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return jwtSecret(), nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// Auth requires a valid Bearer token and exposes the caller's identity on
// the context.
func Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		claims, err := ParseToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(ContextUID, claims.UID)
		c.Set(ContextName, claims.Name)
		c.Set(ContextAdmin, claims.Admin)
		c.Next()
	}
}

// AdminOnly must run after Auth; rejects non-admin callers.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(ContextAdmin) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin only"})
			return
		}
		c.Next()
	}
}
