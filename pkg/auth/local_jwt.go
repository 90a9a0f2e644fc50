package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/argon2"
)

const tokenIssuer = "meetingroom"

// ExtractToken extracts the JWT token from an Authorization header value.
// Supports "Bearer <token>" format.
func ExtractToken(authHeader string) (string, error) {
	if authHeader == "" {
		return "", errors.New("empty authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization header format")
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errors.New("empty token")
	}

	return token, nil
}

// SessionClaims are the claims of a shared-login session token
type SessionClaims struct {
	SessionID  string `json:"sid"`
	RememberMe bool   `json:"remember_me"`
	jwt.RegisteredClaims
}

// LocalJWTAuth checks the shared desk credential and signs session tokens
type LocalJWTAuth struct {
	SecretKey    []byte
	TokenExpiry  time.Duration
	username     string
	passwordHash string
}

// NewLocalJWTAuth hashes the shared password once; tokens live for expiry (default 24h)
func NewLocalJWTAuth(secretKey, username, password string, expiry time.Duration) (*LocalJWTAuth, error) {
	if secretKey == "" {
		return nil, errors.New("JWT secret key cannot be empty")
	}
	if username == "" || password == "" {
		return nil, errors.New("shared username and password are required")
	}
	if expiry == 0 {
		expiry = 24 * time.Hour
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	return &LocalJWTAuth{
		SecretKey:    []byte(secretKey),
		TokenExpiry:  expiry,
		username:     username,
		passwordHash: hash,
	}, nil
}

// CheckCredentials compares a login attempt with the shared credential
func (a *LocalJWTAuth) CheckCredentials(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(a.username), []byte(username)) == 1
	passOK, err := VerifyPassword(a.passwordHash, password)
	return userOK && err == nil && passOK
}

// GenerateToken signs a session token and returns it with its expiry
func (a *LocalJWTAuth) GenerateToken(sessionID string, rememberMe bool) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(a.TokenExpiry)
	if rememberMe {
		// remembered sessions last a week longer than regular ones
		expiresAt = expiresAt.Add(7 * 24 * time.Hour)
	}

	claims := SessionClaims{
		SessionID:  sessionID,
		RememberMe: rememberMe,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   a.username,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.SecretKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session token: %w", err)
	}
	return token, expiresAt, nil
}

// VerifyToken verifies a session token and returns its claims
func (a *LocalJWTAuth) VerifyToken(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.SecretKey, nil
	}, jwt.WithIssuer(tokenIssuer))

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if claims, ok := token.Claims.(*SessionClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}

// Argon2 password hashing parameters
const (
	argon2Time      = 3
	argon2Memory    = 64 * 1024
	argon2Threads   = 4
	argon2KeyLength = 32
	saltLength      = 16
)

// HashPassword hashes a password using Argon2id, formatted argon2id$salt$hash
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	hash := argon2.IDKey([]byte(password), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLength)

	saltEncoded := base64.RawStdEncoding.EncodeToString(salt)
	hashEncoded := base64.RawStdEncoding.EncodeToString(hash)

	return fmt.Sprintf("argon2id$%s$%s", saltEncoded, hashEncoded), nil
}

// VerifyPassword verifies a password against an Argon2id hash
func VerifyPassword(hashedPassword, password string) (bool, error) {
	if !strings.HasPrefix(hashedPassword, "argon2id$") {
		return false, fmt.Errorf("invalid hash format: missing argon2id prefix")
	}

	hashParts := strings.Split(strings.TrimPrefix(hashedPassword, "argon2id$"), "$")
	if len(hashParts) != 2 {
		return false, fmt.Errorf("invalid hash format: expected 2 parts, got %d", len(hashParts))
	}

	salt, err := base64.RawStdEncoding.DecodeString(hashParts[0])
	if err != nil {
		return false, fmt.Errorf("failed to decode salt: %w", err)
	}

	expectedHash, err := base64.RawStdEncoding.DecodeString(hashParts[1])
	if err != nil {
		return false, fmt.Errorf("failed to decode hash: %w", err)
	}

	actualHash := argon2.IDKey([]byte(password), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLength)

	return subtle.ConstantTimeCompare(actualHash, expectedHash) == 1, nil
}
