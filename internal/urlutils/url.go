// Package urlutils builds and validates the HTTPS URLs used to address
// remote repositories. Repository names double as local directory names, so
// the name checks here also guard the working tree against path traversal.
package urlutils

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var (
	// ErrInvalidURL indicates that the provided URL is not valid
	ErrInvalidURL = errors.New("invalid URL format")

	// ErrInvalidHost indicates that the host is empty or malformed
	ErrInvalidHost = errors.New("invalid git host")

	// ErrInvalidPath indicates that the URL path is not a valid repository path
	ErrInvalidPath = errors.New("invalid repository path")

	// ErrNotHTTPS indicates that the URL does not use HTTPS protocol
	ErrNotHTTPS = errors.New("URL must use HTTPS protocol")

	ownerRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]{0,38}$`)
	repoRegex  = regexp.MustCompile(`^[a-zA-Z0-9_.-]{1,100}$`)
	hostRegex  = regexp.MustCompile(`^[a-zA-Z0-9.-]+(:[0-9]{1,5})?$`)
)

// ValidateOwner checks an organization or user name.
func ValidateOwner(owner string) error {
	if !ownerRegex.MatchString(owner) {
		return fmt.Errorf("%w: invalid owner name %q", ErrInvalidPath, owner)
	}
	return nil
}

// ValidateRepoName checks that name is a repository name that is also a
// single, non-special path element.
func ValidateRepoName(name string) error {
	if name == "." || name == ".." || !repoRegex.MatchString(name) {
		return fmt.Errorf("%w: invalid repository name %q", ErrInvalidPath, name)
	}
	return nil
}

// SplitNameWithOwner splits an owner/name identifier.
func SplitNameWithOwner(nameWithOwner string) (owner, name string, err error) {
	parts := strings.Split(nameWithOwner, "/")
	if len(parts) != 2 {
		return "", "", fmt.Errorf("%w: %q (expected owner/repo)", ErrInvalidPath, nameWithOwner)
	}
	if err := ValidateOwner(parts[0]); err != nil {
		return "", "", err
	}
	if err := ValidateRepoName(parts[1]); err != nil {
		return "", "", err
	}
	return parts[0], parts[1], nil
}

// CloneURL returns the HTTPS clone URL of owner/name on host.
func CloneURL(host, nameWithOwner string) (*url.URL, error) {
	if host == "" || !hostRegex.MatchString(host) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidHost, host)
	}
	owner, name, err := SplitNameWithOwner(nameWithOwner)
	if err != nil {
		return nil, err
	}
	return &url.URL{
		Scheme: "https",
		Host:   host,
		Path:   fmt.Sprintf("/%s/%s.git", owner, name),
	}, nil
}

// ParseHTTPSURL parses a repository URL and requires the https scheme.
// file:// URLs are accepted as well so local mirrors can be used.
func ParseHTTPSURL(rawURL string) (*url.URL, error) {
	if strings.HasPrefix(rawURL, "git@") {
		return nil, ErrNotHTTPS
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	switch parsedURL.Scheme {
	case "https":
		if parsedURL.Host == "" {
			return nil, fmt.Errorf("%w: missing host", ErrInvalidHost)
		}
	case "file":
	default:
		return nil, ErrInvalidURL
	}

	return parsedURL, nil
}

// Redact returns rawURL without any user info, for logging.
func Redact(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil {
		u.User = nil
		return u.String()
	}
	return rawURL
}
