// Package middleware provides authentication, logging, rate limiting and tracing middleware.
package middleware

import (
	"context"
	"errors"
	"strings"
	"time"

	"pulse/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

var cfg *config.Config

var errNoToken = errors.New("no bearer token")

// InitMiddleware initializes authentication middleware with the given config.
func InitMiddleware(c *config.Config) {
	cfg = c
}

// AuthRequired is a middleware that enforces authentication for protected routes.
func AuthRequired(c *fiber.Ctx) error {
	userID, err := viewerFromRequest(c)
	if err != nil {
		msg := "Invalid or expired token"
		if errors.Is(err, errNoToken) {
			msg = "Authorization header required"
		}
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": msg})
	}

	setViewer(c, userID)
	return c.Next()
}

// AuthOptional resolves the viewer when a valid token is present and lets
// anonymous requests through. A malformed or expired token is still rejected.
func AuthOptional(c *fiber.Ctx) error {
	userID, err := viewerFromRequest(c)
	switch {
	case errors.Is(err, errNoToken):
		return c.Next()
	case err != nil:
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired token"})
	}

	setViewer(c, userID)
	return c.Next()
}

func setViewer(c *fiber.Ctx, userID string) {
	c.Locals("userID", userID)
	c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, userID))
}

// viewerFromRequest reads the token from the Authorization header, or from the
// token query parameter for WebSocket upgrades.
func viewerFromRequest(c *fiber.Ctx) (string, error) {
	tokenString := c.Query("token")
	if authHeader := c.Get("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return "", errors.New("invalid authorization header format")
		}
		tokenString = parts[1]
	}
	if tokenString == "" {
		return "", errNoToken
	}
	return ParseToken(tokenString)
}

// ParseToken validates an HMAC bearer token and returns its subject.
func ParseToken(tokenString string) (string, error) {
	if cfg == nil {
		return "", errors.New("auth middleware not initialized")
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}), jwt.WithExpirationRequired()}
	if cfg.JWTIssuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.JWTIssuer))
	}
	if cfg.JWTAudience != "" {
		opts = append(opts, jwt.WithAudience(cfg.JWTAudience))
	}

	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	}, opts...)
	if err != nil || !token.Valid {
		return "", errors.New("invalid or expired token")
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || strings.TrimSpace(claims.Subject) == "" {
		return "", errors.New("invalid token structure - missing subject")
	}
	return claims.Subject, nil
}

// SignToken issues a token for userID the way the auth provider does. Used by
// the seeder and tests.
func SignToken(c *config.Config, userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    c.JWTIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	if c.JWTAudience != "" {
		claims.Audience = jwt.ClaimStrings{c.JWTAudience}
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(c.JWTSecret))
}

// ViewerID returns the authenticated user for the request, or "".
func ViewerID(c *fiber.Ctx) string {
	id, _ := c.Locals("userID").(string)
	return id
}
