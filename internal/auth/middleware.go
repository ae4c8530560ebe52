package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aldoetobex/council-case-backend/pkg/logger"
	"github.com/aldoetobex/council-case-backend/pkg/models"
)

/* ============================== JWT Claims ============================== */

// Claims represents the JWT payload we issue and expect.
type Claims struct {
	Sub  string `json:"sub"`  // user ID
	Role string `json:"role"` // "admin" | "shaykh" | "user"
	jwt.RegisteredClaims
}

var (
	secret   = []byte("dev-secret-change-me")
	tokenTTL = 7 * 24 * time.Hour
)

// Configure sets the signing secret and token lifetime.
func Configure(jwtSecret string, ttl time.Duration) {
	if jwtSecret != "" {
		secret = []byte(jwtSecret)
	}
	if ttl > 0 {
		tokenTTL = ttl
	}
}

/* ============================== JWT Helpers ============================= */

// IssueToken signs a JWT for the given user and role.
func IssueToken(userID string, role models.Role) (string, error) {
	now := time.Now()
	claims := &Claims{
		Sub:  userID,
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(secret)
}

// ParseToken validates a signed token and returns its claims.
func ParseToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, errors.New("invalid claims")
	}
	return claims, nil
}

/* ============================== Middleware ============================== */

// RequireAuth validates a Bearer JWT and injects userID and role into the context.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		h := c.Get("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			return fiber.ErrUnauthorized
		}
		claims, err := ParseToken(strings.TrimPrefix(h, "Bearer "))
		if err != nil {
			return fiber.ErrUnauthorized
		}

		c.Locals("userID", claims.Sub)
		c.Locals("role", claims.Role)
		return c.Next()
	}
}

// MustUserID reads the authenticated user ID from context or panics (programming error).
func MustUserID(c *fiber.Ctx) string {
	if v := c.Locals("userID"); v != nil {
		return v.(string)
	}
	panic(errors.New("user not in context"))
}

// MustUserUUID is MustUserID parsed; a malformed subject yields uuid.Nil.
func MustUserUUID(c *fiber.Ctx) uuid.UUID {
	id, _ := uuid.Parse(MustUserID(c))
	return id
}

// MustRole reads the authenticated user role from context or panics (programming error).
func MustRole(c *fiber.Ctx) models.Role {
	if v := c.Locals("role"); v != nil {
		return models.Role(v.(string))
	}
	panic(errors.New("role not in context"))
}

// RequireRole ensures the authenticated user has one of the expected roles.
func RequireRole(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		have := MustRole(c)
		for _, r := range roles {
			if have == r {
				return c.Next()
			}
		}
		return fiber.ErrForbidden
	}
}

/* =========================== Error Formatting =========================== */

// httpCodeToString converts an HTTP status code to a short, stable string.
func httpCodeToString(code int) string {
	switch code {
	case fiber.StatusBadRequest:
		return "BAD_REQUEST"
	case fiber.StatusUnauthorized:
		return "UNAUTHORIZED"
	case fiber.StatusForbidden:
		return "FORBIDDEN"
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusConflict:
		return "CONFLICT"
	case fiber.StatusUnprocessableEntity:
		return "UNPROCESSABLE_ENTITY"
	case fiber.StatusRequestEntityTooLarge:
		return "PAYLOAD_TOO_LARGE"
	default:
		return "INTERNAL_SERVER_ERROR"
	}
}

// ErrorHandler is a global Fiber error handler that returns a consistent JSON shape.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Internal Server Error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		if strings.TrimSpace(fe.Message) != "" {
			msg = fe.Message
		}
	}
	if code >= fiber.StatusInternalServerError {
		logger.Log.Error("request failed",
			zap.String("method", c.Method()), zap.String("path", c.Path()), zap.Error(err))
	}

	return c.Status(code).JSON(models.ErrorResponse{
		Code:    httpCodeToString(code),
		Error:   true,
		Message: msg,
	})
}
