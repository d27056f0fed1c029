// Package token resolves the credentials used to talk to the forge.
//
// Tokens are read from GIT_TOKEN_* prefixed environment variables first,
// either as a bare token or as a JSON document carrying expiry metadata:
//
//	export GIT_TOKEN_GITHUB="ghp_..."
//	export GIT_TOKEN_GITHUB='{"Value":"ghp_...","ExpiresAt":"2027-01-01T00:00:00Z"}'
//
// When no prefixed variable is set, the conventional GH_TOKEN and
// GITHUB_TOKEN variables used by the gh CLI are consulted.
package token

import (
	"context"
	"errors"
	"time"
)

// Common errors that may be returned by token operations
var (
	ErrTokenNotFound = errors.New("token not found")
	ErrTokenInvalid  = errors.New("token is invalid")
	ErrTokenExpired  = errors.New("token has expired")
)

// Provider names the forge a token belongs to.
type Provider string

const (
	ProviderGitHub Provider = "GITHUB"
)

// Token represents an authentication token with metadata
type Token struct {
	// Value is the actual token string
	Value string `json:"Value"`

	// ExpiresAt indicates when the token will expire
	// Zero value means the token does not expire
	ExpiresAt time.Time `json:"ExpiresAt"`

	// Scope defines the permissions granted to this token
	Scope string `json:"Scope,omitempty"`
}

// Storage defines the interface for token sources
type Storage interface {
	// Retrieve gets a token by its key
	// Returns ErrTokenNotFound if the token doesn't exist
	Retrieve(ctx context.Context, key string) (Token, error)
}

// IsExpired checks if a token has expired
func IsExpired(token Token) bool {
	if token.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().After(token.ExpiresAt)
}

// IsValid performs basic validation of a token
func IsValid(token Token) bool {
	return token.Value != ""
}
