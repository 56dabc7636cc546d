// Package server implements JWT-based authentication for kintree.
// Anonymous visitors may browse; signing in reveals private individuals,
// and admin accounts may read the status endpoint.
package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/vesaa/kintree/internal/models"
	"github.com/vesaa/kintree/internal/treeview"
)

// tokenCookie carries the JWT for browser requests (page loads and the
// treeview.js fetches) that cannot set an Authorization header.
const tokenCookie = "kintree_token"

const tokenTTL = 24 * time.Hour

const viewerKey = "viewer"

// Claims is the payload embedded in every JWT issued by /api/login.
type Claims struct {
	Username string `json:"username"`
	Admin    bool   `json:"admin,omitempty"`
	jwt.RegisteredClaims
}

// Auth signs and verifies HS256 tokens.
type Auth struct {
	secret []byte
}

// NewAuth returns an Auth using secret as the signing key.
func NewAuth(secret string) *Auth {
	return &Auth{secret: []byte(secret)}
}

// GenerateJWT creates a signed HS256 JWT valid for 24 hours.
func (a *Auth) GenerateJWT(u *models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		Username: u.Username,
		Admin:    u.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    "kintree",
			Subject:   u.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// parseJWT validates a token string and returns the claims.
func (a *Auth) parseJWT(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// bearer extracts the token from "Authorization: Bearer <jwt>" or the token cookie.
func bearer(c *gin.Context) string {
	if raw := c.GetHeader("Authorization"); raw != "" {
		parts := strings.SplitN(raw, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
		return ""
	}
	if v, err := c.Cookie(tokenCookie); err == nil {
		return v
	}
	return ""
}

// ViewerMiddleware identifies the visitor without requiring a login.
// An invalid or expired token is treated as anonymous.
func (a *Auth) ViewerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		var v treeview.Viewer
		if tok := bearer(c); tok != "" {
			if claims, err := a.parseJWT(tok); err == nil {
				v = treeview.Viewer{Username: claims.Username, IsAdmin: claims.Admin}
			}
		}
		c.Set(viewerKey, v)
		c.Next()
	}
}

// viewerFrom returns the visitor stored by ViewerMiddleware.
func viewerFrom(c *gin.Context) treeview.Viewer {
	v, _ := c.Get(viewerKey)
	viewer, _ := v.(treeview.Viewer)
	return viewer
}

// AdminMiddleware rejects requests without a valid admin token.
func (a *Auth) AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tok := bearer(c)
		if tok == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing token, expected: Authorization: Bearer <token>",
			})
			return
		}

		claims, err := a.parseJWT(tok)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid or expired token",
			})
			return
		}
		if !claims.Admin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "admin access required",
			})
			return
		}

		c.Set("username", claims.Username)
		c.Next()
	}
}
