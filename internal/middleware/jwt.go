package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/gema-progress-api/internal/utils"
)

// JWTProtected returns a middleware that validates JWT bearer tokens issued
// by the auth subsystem. The token subject is exposed to handlers as an
// opaque reference; the identity resolver decides what it actually is.
func JWTProtected(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authorization := c.Get("Authorization")
		if authorization == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authorization header missing")
		}

		const bearer = "Bearer "
		if !strings.HasPrefix(strings.ToLower(authorization), strings.ToLower(bearer)) {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid authorization header")
		}

		tokenString := strings.TrimSpace(authorization[len(bearer):])
		if tokenString == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token claims")
		}

		if ref := extractSubjectRef(claims); ref != "" {
			c.Locals("subject_ref", ref)
		}

		return c.Next()
	}
}

// extractSubjectRef pulls whichever identifier claim the issuing service set.
// Different token issuers use different claim names for the same subject.
func extractSubjectRef(claims jwt.MapClaims) string {
	for _, key := range []string{"sub", "student_id", "account_id", "user_id"} {
		if value, ok := claims[key]; ok {
			if ref, ok := value.(string); ok && strings.TrimSpace(ref) != "" {
				return strings.TrimSpace(ref)
			}
		}
	}
	return ""
}

// SubjectRefFromContext returns the token subject bound to the request, if any.
func SubjectRefFromContext(c *fiber.Ctx) string {
	if v := c.Locals("subject_ref"); v != nil {
		if ref, ok := v.(string); ok {
			return ref
		}
	}
	return ""
}
