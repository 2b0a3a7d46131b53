package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const SessionCookie = "admin_session"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrMissingSecret      = errors.New("JWT secret is not set")
)

type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Sessions manages admin session tokens.
type Sessions struct {
	secret       []byte
	passwordHash string
	ttl          time.Duration
}

func NewSessions(secret, passwordHash string) *Sessions {
	return &Sessions{
		secret:       []byte(secret),
		passwordHash: passwordHash,
		ttl:          24 * time.Hour,
	}
}

// Login checks the admin password and issues a session token.
func (s *Sessions) Login(password string) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrMissingSecret
	}
	if s.passwordHash == "" || !CheckPasswordHash(password, s.passwordHash) {
		return "", ErrInvalidCredentials
	}

	claims := AdminClaims{
		Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify parses a session token and confirms the admin role.
func (s *Sessions) Verify(tokenStr string) (*AdminClaims, error) {
	if len(s.secret) == 0 {
		return nil, ErrMissingSecret
	}

	token, err := jwt.ParseWithClaims(
		tokenStr,
		&AdminClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return s.secret, nil
		},
	)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*AdminClaims)
	if !ok || !token.Valid || claims.Role != "admin" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// ExtractSessionToken reads the session token from the admin cookie,
// falling back to the Authorization header.
func ExtractSessionToken(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		if cookie.Value != "" {
			return cookie.Value
		}
	}

	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	return ""
}
