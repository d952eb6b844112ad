package middleware

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v4"
)

type contextKey string

const claimsContextKey contextKey = "claims"

const (
	JWTClaimName = "name"
	JWTClaimRole = "role"
)

func withClaims(ctx context.Context, claims jwt.MapClaims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

func claimString(ctx context.Context, name string) (string, error) {
	claims, ok := ctx.Value(claimsContextKey).(jwt.MapClaims)
	if !ok {
		return "", errors.New("token claims not found in context")
	}
	raw, ok := claims[name]
	if !ok {
		return "", fmt.Errorf("missing '%s' claim in token", name)
	}
	value, ok := raw.(string)
	if !ok || value == "" {
		return "", fmt.Errorf("invalid '%s' claim: %v", name, raw)
	}
	return value, nil
}

func GetRoleFromContext(ctx context.Context) (string, error) {
	return claimString(ctx, JWTClaimRole)
}

func GetNameFromContext(ctx context.Context) (string, error) {
	return claimString(ctx, JWTClaimName)
}
