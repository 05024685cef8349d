package main

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// AuthConfig configures JWT authentication for the /api routes.
type AuthConfig struct {
	// Enabled enables authentication. If false, all requests are served.
	Enabled bool

	// Secret is the shared secret for HMAC JWT validation.
	Secret string

	// Issuer is the expected "iss" claim (optional).
	Issuer string

	// Audience is the expected "aud" claim (optional).
	Audience string
}

// validateJWT validates a bearer token against the configured secret and
// claims.
func (s *Server) validateJWT(tokenString string) error {
	if s.auth == nil || s.auth.Secret == "" {
		return errors.New("authentication not configured")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.auth.Secret), nil
	}, jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}))

	if err != nil {
		return fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return errors.New("invalid token claims")
	}

	if s.auth.Issuer != "" {
		issuer, _ := claims.GetIssuer()
		if issuer != s.auth.Issuer {
			return fmt.Errorf("invalid issuer: expected %s, got %s", s.auth.Issuer, issuer)
		}
	}

	if s.auth.Audience != "" {
		audiences, _ := claims.GetAudience()
		found := false
		for _, aud := range audiences {
			if aud == s.auth.Audience {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("invalid audience: expected %s", s.auth.Audience)
		}
	}

	return nil
}

// requireAuth wraps a handler with bearer-token validation when auth is
// enabled.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.auth == nil || !s.auth.Enabled {
			next(w, r)
			return
		}

		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		if err := s.validateJWT(token); err != nil {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}

		next(w, r)
	}
}
