package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/nguyenquy0710/Financial-Tracking-sub001/internal/pkg/apperror"
	"github.com/nguyenquy0710/Financial-Tracking-sub001/internal/pkg/response"
)

// UserIDKey holds the authenticated user's ID (the token subject)
const UserIDKey = "user_id"

// RequireUser protects account endpoints with a bearer JWT signed (HS256) by
// the tracker's session service. The subject claim becomes the user ID.
func RequireUser(secret string) gin.HandlerFunc {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			response.Error(c, apperror.AuthenticationError(
				"Missing bearer token",
				"Sign in and send the token in the Authorization header",
			))
			return
		}

		claims := &jwt.RegisteredClaims{}
		parsed, err := parser.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		})
		if err != nil || !parsed.Valid {
			response.Error(c, apperror.AuthenticationError(
				"Invalid or expired token",
				"Sign in again",
			).WithError(err))
			return
		}
		if claims.Subject == "" {
			response.Error(c, apperror.AuthenticationError(
				"Token has no subject",
				"Sign in again",
			))
			return
		}

		c.Set(UserIDKey, claims.Subject)
		c.Next()
	}
}

// GenerateUserToken signs a token with the same shape the session service issues
func GenerateUserToken(secret, userID string, claims jwt.RegisteredClaims) (string, error) {
	claims.Subject = userID
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
