package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	apperrors "stowaway/pkg/errors"
	httputil "stowaway/pkg/http"
	"stowaway/pkg/identity"
	"stowaway/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
)

type AuthConfig struct {
	Secret   []byte
	Issuer   string
	Resolver *identity.Resolver
}

// Claims is the token shape issued by the identity provider.
type Claims struct {
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// Authenticate verifies an optional HS256 bearer token and stores the caller
// identity in the request context. Requests without a token pass through as
// anonymous; handlers decide whether that is acceptable.
func Authenticate(cfg AuthConfig, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := ParseToken(tokenStr, cfg.Secret, cfg.Issuer)
			if err != nil {
				log.Warn("Rejected bearer token",
					"request_id", RequestID(r.Context()),
					"path", r.URL.Path,
					"error", err,
				)
				message := "Invalid token"
				if errors.Is(err, jwt.ErrTokenExpired) {
					message = "Token expired"
				}
				if writeErr := httputil.WriteError(w, apperrors.Unauthorized(message)); writeErr != nil {
					log.Error("failed to write error response", "handler", "Authenticate", "operation", "WriteError", "error", writeErr)
				}
				return
			}

			caller := cfg.Resolver.Resolve(claims.Subject, claims.Roles)
			ctx := identity.WithIdentity(r.Context(), caller)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func ParseToken(tokenStr string, secret []byte, issuer string) (*Claims, error) {
	if len(secret) == 0 {
		return nil, errors.New("token verification is not configured")
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("token is not valid")
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("token has no subject")
	}

	return claims, nil
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", true
	}
	return strings.TrimSpace(token), true
}
