package token

import (
	"context"
	"errors"
	"os"
)

// fallbackEnv lists the variables consulted when the storage has no token.
var fallbackEnv = []string{"GH_TOKEN", "GITHUB_TOKEN"}

// Resolve returns the token for provider. Storage errors other than
// ErrTokenNotFound are returned as is so that an expired or malformed token
// is reported instead of silently falling back to anonymous access.
func Resolve(ctx context.Context, storage Storage, provider Provider) (string, error) {
	if storage != nil {
		t, err := storage.Retrieve(ctx, string(provider))
		if err == nil {
			return t.Value, nil
		}
		if !errors.Is(err, ErrTokenNotFound) {
			return "", err
		}
	}

	for _, name := range fallbackEnv {
		if v := os.Getenv(name); v != "" {
			return v, nil
		}
	}

	return "", ErrTokenNotFound
}
