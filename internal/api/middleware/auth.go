package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Context keys for storing viewer information
type contextKey string

const (
	AccountIDKey contextKey = "account_id"
	ClaimsKey    contextKey = "jwt_claims"
)

// Claims are the access token claims. Subject carries the account id.
type Claims struct {
	jwt.RegisteredClaims
	Scope string `json:"scope,omitempty"`
}

var errMissingSubject = errors.New("token has no subject")

// AuthMiddleware authenticates Bearer access tokens signed with HS256
type AuthMiddleware struct {
	logger *slog.Logger
	secret []byte
}

// NewAuthMiddleware creates an auth middleware verifying tokens with secret
func NewAuthMiddleware(secret string, logger *slog.Logger) *AuthMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthMiddleware{
		secret: []byte(secret),
		logger: logger,
	}
}

// IssueToken signs an access token for accountID. Used by tests and tooling.
func (m *AuthMiddleware) IssueToken(accountID string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Scope: "read write",
	})
	return token.SignedString(m.secret)
}

func (m *AuthMiddleware) parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, errMissingSubject
	}
	return claims, nil
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer ")), true
}

// RequireAuth rejects requests without a valid token with 401.
// On success the account id and claims are injected into the context.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			writeAuthError(w, "Missing Authorization header")
			return
		}

		token, ok := bearerToken(r)
		if !ok {
			writeAuthError(w, "Invalid Authorization header format. Expected: Bearer <token>")
			return
		}

		claims, err := m.parse(token)
		if err != nil {
			m.logger.Warn("[AUTH_FAILURE] token rejected",
				"ip", r.RemoteAddr,
				"method", r.Method,
				"path", r.URL.Path,
				"error", err,
			)
			writeAuthError(w, "Invalid or expired token")
			return
		}

		next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
	})
}

// OptionalAuth loads the viewer when a valid token is present and
// otherwise serves the request anonymously
func (m *AuthMiddleware) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := m.parse(token)
		if err != nil {
			m.logger.Debug("optional auth failed", "error", err)
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
	})
}

func withClaims(ctx context.Context, claims *Claims) context.Context {
	ctx = context.WithValue(ctx, AccountIDKey, claims.Subject)
	return context.WithValue(ctx, ClaimsKey, claims)
}

// GetAccountID returns the authenticated account id, or "" for anonymous requests
func GetAccountID(r *http.Request) string {
	accountID, _ := r.Context().Value(AccountIDKey).(string)
	return accountID
}

// GetClaims returns the verified token claims
func GetClaims(r *http.Request) *Claims {
	claims, _ := r.Context().Value(ClaimsKey).(*Claims)
	return claims
}

// SetTestAccountID injects an account id into ctx. Tests only.
func SetTestAccountID(ctx context.Context, accountID string) context.Context {
	return context.WithValue(ctx, AccountIDKey, accountID)
}

func writeAuthError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   "AuthenticationRequired",
		"message": message,
	})
}
