package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gofiber/fiber/v3"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"marketmind/internal/apperr"
	"marketmind/internal/models"
)

// UserStore resolves the account behind a verified credential.
type UserStore interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserBySub(ctx context.Context, sub string) (*models.User, error)
	UpsertUser(ctx context.Context, user *models.User) error
}

var errUnauthenticated = errors.New("authentication required")

// AuthMiddleware handles user authentication via bearer tokens.
//
// Two credential forms are accepted: HS256 tokens signed with the service
// secret whose subject is the user id, and, when an OIDC provider is
// configured, ID tokens from that provider whose subject is the user's
// external identity.
type AuthMiddleware struct {
	users    UserStore
	secret   []byte
	issuer   string
	verifier *oidc.IDTokenVerifier
}

// NewAuthMiddleware creates a new auth middleware instance.
func NewAuthMiddleware(users UserStore, secret, issuer string) *AuthMiddleware {
	return &AuthMiddleware{users: users, secret: []byte(secret), issuer: issuer}
}

// EnableOIDC accepts ID tokens issued by the given provider for clientID.
func (m *AuthMiddleware) EnableOIDC(ctx context.Context, issuer, clientID string) error {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return fmt.Errorf("discover oidc provider: %w", err)
	}
	m.verifier = provider.Verifier(&oidc.Config{ClientID: clientID})
	return nil
}

// RequireAuth ensures the request carries a valid bearer credential.
func (m *AuthMiddleware) RequireAuth(c fiber.Ctx) error {
	user, err := m.authenticate(c)
	if err != nil {
		if !errors.Is(err, errUnauthenticated) {
			slog.Warn("authentication failed", "error", err, "path", c.Path())
		}
		return unauthorized(c)
	}

	c.Locals("user", user)
	return c.Next()
}

// OptionalAuth loads the user if authenticated, but doesn't require authentication.
func (m *AuthMiddleware) OptionalAuth(c fiber.Ctx) error {
	if user, err := m.authenticate(c); err == nil {
		c.Locals("user", user)
	}
	return c.Next()
}

// RequireAdmin allows admins and superadmins. Must run after RequireAuth.
func RequireAdmin(c fiber.Ctx) error {
	user, ok := c.Locals("user").(*models.User)
	if !ok || user == nil {
		return unauthorized(c)
	}
	if !user.IsAdmin() {
		return forbidden(c, "admin access required")
	}
	return c.Next()
}

// RequireSuperadmin allows superadmins only. Must run after RequireAuth.
func RequireSuperadmin(c fiber.Ctx) error {
	user, ok := c.Locals("user").(*models.User)
	if !ok || user == nil {
		return unauthorized(c)
	}
	if !user.IsSuperadmin() {
		return forbidden(c, "superadmin access required")
	}
	return c.Next()
}

func (m *AuthMiddleware) authenticate(c fiber.Ctx) (*models.User, error) {
	raw := bearerToken(c.Get(fiber.HeaderAuthorization))
	if raw == "" {
		return nil, errUnauthenticated
	}

	ctx := c.Context()

	if id, err := m.parseServiceToken(raw); err == nil {
		return m.activeUser(m.users.GetUserByID(ctx, id))
	} else if m.verifier == nil {
		return nil, err
	}

	idToken, err := m.verifier.Verify(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("verify id token: %w", err)
	}
	return m.oidcUser(ctx, idToken)
}

// oidcUser returns the user for an ID token, provisioning a regular user on
// first sight.
func (m *AuthMiddleware) oidcUser(ctx context.Context, idToken *oidc.IDToken) (*models.User, error) {
	user, err := m.users.GetUserBySub(ctx, idToken.Subject)
	if err == nil {
		return m.activeUser(user, nil)
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	var claims struct {
		Email             string `json:"email"`
		Name              string `json:"name"`
		PreferredUsername string `json:"preferred_username"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("parse id token claims: %w", err)
	}
	if claims.Email == "" {
		return nil, errors.New("id token has no email claim")
	}

	username := claims.PreferredUsername
	if username == "" {
		username = strings.Split(claims.Email, "@")[0]
	}

	user = &models.User{
		Sub:      idToken.Subject,
		Email:    claims.Email,
		Username: username,
		FullName: claims.Name,
	}
	if err := m.users.UpsertUser(ctx, user); err != nil {
		return nil, fmt.Errorf("provision user: %w", err)
	}
	slog.Info("provisioned user from oidc", "user_id", user.ID, "email", user.Email)
	return m.activeUser(user, nil)
}

func (m *AuthMiddleware) activeUser(user *models.User, err error) (*models.User, error) {
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, fmt.Errorf("user %s is inactive", user.ID)
	}
	return user, nil
}

func (m *AuthMiddleware) parseServiceToken(raw string) (uuid.UUID, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired()}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(token *jwt.Token) (any, error) {
		return m.secret, nil
	}, opts...)
	if err != nil {
		return uuid.Nil, fmt.Errorf("parse token: %w", err)
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("token subject is not a user id: %w", err)
	}
	return id, nil
}

// IssueToken signs an HS256 token for userID valid for ttl.
func IssueToken(secret, issuer string, userID uuid.UUID, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func unauthorized(c fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"status": "error",
		"error":  "authentication required",
	})
}

func forbidden(c fiber.Ctx, message string) error {
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
		"status": "error",
		"error":  message,
	})
}
