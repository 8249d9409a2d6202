package auth

import (
	"errors"
	"fmt"
	jwt "github.com/golang-jwt/jwt/v4"
	"github.com/nikolayk812/orders-demo/internal/domain"
	"strings"
)

const (
	userIDClaim  = "user_id"
	isAdminClaim = "isAdmin"
)

var (
	// ErrInvalidToken signals a token that is malformed or not signed with the shared secret.
	ErrInvalidToken = domain.E(domain.KindUnauthenticated, "auth", errors.New("could not validate credentials"))
	// ErrMissingSubject signals a valid token that carries no user_id claim.
	ErrMissingSubject = domain.E(domain.KindUnauthenticated, "auth", errors.New("invalid token"))
)

// Authenticator turns HS256 bearer tokens into callers.
type Authenticator struct {
	secret []byte
	parser *jwt.Parser
}

func NewAuthenticator(secret string) (*Authenticator, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("secret is empty")
	}

	return &Authenticator{
		secret: []byte(secret),
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})),
	}, nil
}

func (a *Authenticator) Authenticate(tokenStr string) (domain.Caller, error) {
	tokenStr = strings.TrimSpace(tokenStr)
	if tokenStr == "" {
		return domain.Caller{}, ErrInvalidToken
	}

	claims := jwt.MapClaims{}
	_, err := a.parser.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	})
	if err != nil {
		return domain.Caller{}, fmt.Errorf("parser.ParseWithClaims: %w: %w", ErrInvalidToken, err)
	}

	userID, ok := claims[userIDClaim].(string)
	if !ok || strings.TrimSpace(userID) == "" {
		return domain.Caller{}, ErrMissingSubject
	}

	isAdmin, _ := claims[isAdminClaim].(bool)

	return domain.Caller{
		ID:      userID,
		IsAdmin: isAdmin,
	}, nil
}

// Sign issues a token for caller; used by tooling and tests.
func (a *Authenticator) Sign(caller domain.Caller) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		userIDClaim:  caller.ID,
		isAdminClaim: caller.IsAdmin,
	})

	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("token.SignedString: %w", err)
	}

	return signed, nil
}
