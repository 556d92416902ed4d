package middleware

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

// Caller roles. The engine only uses them to scope which records a request
// may touch; account management lives elsewhere.
const (
	RoleCandidate = "candidate"
	RoleJob       = "job"
)

const (
	localUserID = "auth_user_id"
	localRole   = "auth_role"
)

// Claims is the token payload the engine's collaborator issues: the numeric
// user id in the standard "sub" claim and one of the caller roles.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// callerID parses the numeric user id out of the subject claim. Zero means
// the claim is missing or malformed.
func (c *Claims) callerID() uint {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return 0
	}
	return uint(id)
}

// JWTAuth validates an HS256 bearer token and stores the caller identity on
// the request context.
func JWTAuth(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(header, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing bearer token",
			})
		}

		tokenStr := strings.TrimPrefix(header, "Bearer ")
		token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid token",
			})
		}

		claims, ok := token.Claims.(*Claims)
		if !ok || claims.callerID() == 0 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid token claims",
			})
		}

		c.Locals(localUserID, claims.callerID())
		c.Locals(localRole, claims.Role)
		return c.Next()
	}
}

// RequireRole guards a route group to one caller role.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if CallerRole(c) != role {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": fmt.Sprintf("requires %s role", role),
			})
		}
		return c.Next()
	}
}

// CallerID returns the authenticated user id, 0 when unauthenticated.
func CallerID(c *fiber.Ctx) uint {
	if id, ok := c.Locals(localUserID).(uint); ok {
		return id
	}
	return 0
}

// CallerRole returns the authenticated role, empty when unauthenticated.
func CallerRole(c *fiber.Ctx) string {
	if role, ok := c.Locals(localRole).(string); ok {
		return role
	}
	return ""
}
