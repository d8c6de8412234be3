package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"go-referral/pkg/problemdetails"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const serviceTokenIssuer = "go-referral"

var errInvalidToken = errors.New("invalid service token")

type callerKey struct{}

// ServiceAuth guards the administrative endpoints with HS256 service tokens.
// An empty secret disables the check.
type ServiceAuth struct {
	secret []byte
	logger *zap.Logger
}

func NewServiceAuth(secret string, logger *zap.Logger) *ServiceAuth {
	return &ServiceAuth{secret: []byte(secret), logger: logger}
}

// Enabled reports whether tokens are required.
func (a *ServiceAuth) Enabled() bool {
	return len(a.secret) > 0
}

// IssueToken signs a service token for subject, valid for ttl.
func (a *ServiceAuth) IssueToken(subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    serviceTokenIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// ParseToken validates a token and returns its subject.
func (a *ServiceAuth) ParseToken(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(serviceTokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", errInvalidToken
	}
	return claims.Subject, nil
}

// Middleware rejects requests without a valid bearer token.
func (a *ServiceAuth) Middleware(next http.Handler) http.Handler {
	if !a.Enabled() {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || raw == "" {
			writeUnauthorized(w, "Missing bearer token")
			return
		}

		subject, err := a.ParseToken(raw)
		if err != nil {
			a.logger.Debug("rejected service token", zap.Error(err))
			writeUnauthorized(w, "Invalid or expired service token")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), callerKey{}, subject)))
	})
}

// CallerFromContext returns the authenticated token subject, if any.
func CallerFromContext(ctx context.Context) string {
	subject, _ := ctx.Value(callerKey{}).(string)
	return subject
}

func writeUnauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="referrals"`)
	writeProblem(w, problemdetails.New(
		http.StatusUnauthorized,
		problemdetails.TypeUnauthorized,
		"Unauthorized",
		detail,
	))
}
