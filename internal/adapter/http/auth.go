package http

import (
	"errors"
	"strings"

	"dyd/internal/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const userKey = "user_id"

// Claims are the fields read from the auth provider's access tokens.
type Claims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Authenticator checks HS256 bearer tokens signed with the auth provider's
// JWT secret. The subject is the user ID.
type Authenticator struct {
	secret []byte
}

func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

// ValidateToken parses tokenString and returns the user it was issued to.
func (a *Authenticator) ValidateToken(tokenString string) (uuid.UUID, *Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return uuid.Nil, nil, err
	}
	if !token.Valid {
		return uuid.Nil, nil, errors.New("invalid token")
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, nil, errors.New("token subject is not a user id")
	}
	return id, claims, nil
}

// Middleware rejects requests without a valid bearer token and stores the
// user ID in the request locals.
func (a *Authenticator) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if token == "" || token == header {
			return domain.ErrUnauthorized
		}
		id, _, err := a.ValidateToken(token)
		if err != nil {
			return domain.ErrUnauthorized
		}
		c.Locals(userKey, id)
		return c.Next()
	}
}

func currentUser(c *fiber.Ctx) (uuid.UUID, error) {
	id, ok := c.Locals(userKey).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, domain.ErrUnauthorized
	}
	return id, nil
}
