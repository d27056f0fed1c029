package token

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

const (
	// EnvPrefix is the prefix used for all token environment variables
	EnvPrefix = "GIT_TOKEN_"
)

// EnvStorage implements Storage using environment variables.
type EnvStorage struct{}

// NewEnvStorage creates a new environment variable-based token storage
func NewEnvStorage() *EnvStorage {
	return &EnvStorage{}
}

// Retrieve gets a token by its key from environment variables
func (e *EnvStorage) Retrieve(_ context.Context, key string) (Token, error) {
	data := strings.TrimSpace(os.Getenv(e.FormatEnvKey(key)))
	if data == "" {
		return Token{}, ErrTokenNotFound
	}

	var token Token
	if strings.HasPrefix(data, "{") {
		if err := json.Unmarshal([]byte(data), &token); err != nil {
			return Token{}, fmt.Errorf("failed to unmarshal token: %w", err)
		}
	} else {
		token.Value = data
	}

	if !IsValid(token) {
		return Token{}, ErrTokenInvalid
	}
	if IsExpired(token) {
		return Token{}, ErrTokenExpired
	}

	return token, nil
}

// FormatEnvKey converts a token key into an environment variable name
func (e *EnvStorage) FormatEnvKey(key string) string {
	sanitized := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return '_'
	}, strings.ToUpper(key))

	return EnvPrefix + sanitized
}
