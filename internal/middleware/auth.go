package middleware

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"presupago/internal/config"
	apperrors "presupago/internal/errors"
	"presupago/internal/models"
)

const userIDKey = "userID"

// getJWTKey returns the JWT key from configuration
func getJWTKey() []byte {
	return []byte(config.Get().JWTSecret)
}

// JWTClaims represents the claims in the JWT
type JWTClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// GenerateToken generates a signed JWT access token for a user.
func GenerateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := &JWTClaims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(config.Get().JWTExpirationDur)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "presupago-api",
			Subject:   fmt.Sprintf("%d", user.ID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(getJWTKey())
}

// parseToken validates a bearer token string and returns its claims.
func parseToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return getJWTKey(), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

// bearerToken extracts the token from the Authorization header, if any.
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// AuthMiddleware requires a valid bearer token and stores the caller's user
// ID on the context.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(apperrors.ErrUnauthorized.StatusCode, gin.H{
				"error": gin.H{
					"code":    apperrors.ErrUnauthorized.Code,
					"message": apperrors.ErrUnauthorized.Message,
				},
			})
			return
		}

		claims, err := parseToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(apperrors.ErrUnauthorized.StatusCode, gin.H{
				"error": gin.H{
					"code":    apperrors.ErrUnauthorized.Code,
					"message": "Invalid or expired token",
				},
			})
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Next()
	}
}

// OptionalAuth stores the caller's user ID on the context when a valid
// bearer token is present and continues anonymously otherwise. Domain
// operations that record an acting user receive the identity as
// identity-or-none and apply their own fallback.
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString := bearerToken(c); tokenString != "" {
			if claims, err := parseToken(tokenString); err == nil {
				c.Set(userIDKey, claims.UserID)
			}
		}
		c.Next()
	}
}
