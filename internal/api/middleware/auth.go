package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"loan-desk/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleOfficer  = "officer"
	RoleCustomer = "customer"

	// CustomerIDHeader supplies the caller when auth is disabled.
	CustomerIDHeader = "X-Customer-ID"
)

type Identity struct {
	Username   string
	CustomerID int64
	Role       string
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

type Claims struct {
	Username   string `json:"username"`
	CustomerID int64  `json:"customerId"`
	Role       string `json:"role"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 token carrying the identity.
func IssueToken(secret string, ttl time.Duration, id Identity, now time.Time) (string, error) {
	if secret == "" {
		return "", errors.New("jwt secret is not configured")
	}
	claims := Claims{
		Username:   id.Username,
		CustomerID: id.CustomerID,
		Role:       id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func AuthMiddleware(cfg config.AuthConfig, logger *slog.Logger) func(http.Handler) http.Handler {
	if !cfg.Enabled {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				id := Identity{Username: "dev", Role: RoleOfficer}
				if raw := r.Header.Get(CustomerIDHeader); raw != "" {
					customerID, err := strconv.ParseInt(raw, 10, 64)
					if err != nil {
						logger.Warn("AuthMiddleware: Invalid customer id header", "value", raw)
						writeAuthError(w, http.StatusUnauthorized, "Unauthorized")
						return
					}
					id.CustomerID = customerID
				}
				next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
			})
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := validateJWT(r, cfg.JWTSecret)
			if err != nil {
				logger.Warn("AuthMiddleware: Rejected request", "error", err, "path", r.URL.Path)
				writeAuthError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			logger.Debug("AuthMiddleware: Authenticated request", "username", id.Username, "role", id.Role)
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// RequireRole must run after AuthMiddleware.
func RequireRole(role string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok {
				writeAuthError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			if id.Role != role {
				logger.Warn("RequireRole: Forbidden", "username", id.Username, "role", id.Role, "required", role)
				writeAuthError(w, http.StatusForbidden, "Forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func validateJWT(r *http.Request, secret string) (Identity, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return Identity{}, errors.New("missing Authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return Identity{}, errors.New("invalid Authorization header format")
	}

	var claims Claims
	token, err := jwt.ParseWithClaims(parts[1], &claims, func(token *jwt.Token) (any, error) {
		if secret == "" {
			return nil, errors.New("jwt secret is not configured")
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Identity{}, err
	}
	if !token.Valid {
		return Identity{}, errors.New("invalid token")
	}
	if claims.Role != RoleOfficer && claims.Role != RoleCustomer {
		return Identity{}, fmt.Errorf("unknown role %q", claims.Role)
	}

	return Identity{Username: claims.Username, CustomerID: claims.CustomerID, Role: claims.Role}, nil
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"message": message},
	})
}
