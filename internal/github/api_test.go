package github

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NicabarNimble/go-gitbackup/internal/errors"
	"github.com/NicabarNimble/go-gitbackup/internal/repo"
)

// pagedOrg serves count repositories named r0..r{count-1} for /orgs/acme/repos.
func pagedOrg(t *testing.T, count int, requests *int32) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(requests, 1)
		if r.URL.Path != "/orgs/acme/repos" {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"message": "Not Found"}`))
			return
		}
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("["))
		first := true
		for i := (page - 1) * perPage; i < page*perPage && i < count; i++ {
			if !first {
				w.Write([]byte(","))
			}
			first = false
			fmt.Fprintf(w, `{"name":"r%d","full_name":"acme/r%d"}`, i, i)
		}
		w.Write([]byte("]"))
	}
}

func TestListOrgRepositories(t *testing.T) {
	tests := []struct {
		name         string
		count        int
		limit        int
		wantLen      int
		wantRequests int32
	}{
		{name: "fewer than limit", count: 3, limit: 10, wantLen: 3, wantRequests: 1},
		{name: "limit truncates", count: 50, limit: 5, wantLen: 5, wantRequests: 1},
		{name: "paginates", count: 250, limit: 230, wantLen: 230, wantRequests: 3},
		{name: "exact page boundary", count: 100, limit: 200, wantLen: 100, wantRequests: 2},
		{name: "zero limit", count: 3, limit: 0, wantLen: 0, wantRequests: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var requests int32
			server := httptest.NewServer(pagedOrg(t, tt.count, &requests))
			defer server.Close()

			client := NewClient("", WithBaseURL(server.URL))
			repos, err := client.ListOrgRepositories(context.Background(), "acme", tt.limit)
			require.NoError(t, err)
			assert.Len(t, repos, tt.wantLen)
			assert.Equal(t, tt.wantRequests, atomic.LoadInt32(&requests))
			if tt.wantLen > 0 {
				assert.Equal(t, repo.Repository{Name: "r0", NameWithOwner: "acme/r0"}, repos[0])
			}
		})
	}
}

func TestListOrgRepositories_UserFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/octocat/repos":
			w.Write([]byte(`[{"name":"hello","full_name":"octocat/hello"}]`))
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"message": "Not Found"}`))
		}
	}))
	defer server.Close()

	client := NewClient("", WithBaseURL(server.URL))
	repos, err := client.ListOrgRepositories(context.Background(), "octocat", 10)
	require.NoError(t, err)
	assert.Equal(t, []repo.Repository{{Name: "hello", NameWithOwner: "octocat/hello"}}, repos)
}

func TestListOrgRepositories_Errors(t *testing.T) {
	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantList   bool
		wantDecode bool
		check      func(t *testing.T, err error)
	}{
		{
			name: "bad credentials",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"message": "Bad credentials"}`))
			},
			wantList: true,
			check: func(t *testing.T, err error) {
				assert.True(t, errors.IsUnauthorized(err))
				assert.Contains(t, err.Error(), "Bad credentials")
			},
		},
		{
			name: "rate limited",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("X-RateLimit-Remaining", "0")
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte(`{"message": "API rate limit exceeded"}`))
			},
			wantList: true,
			check: func(t *testing.T, err error) {
				assert.True(t, errors.IsRateLimitExceeded(err))
			},
		},
		{
			name: "unknown owner",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				w.Write([]byte(`{"message": "Not Found"}`))
			},
			wantList: true,
			check: func(t *testing.T, err error) {
				assert.True(t, errors.IsNotFound(err))
			},
		},
		{
			name: "malformed payload",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"not": "a list"`))
			},
			wantDecode: true,
		},
		{
			name: "unsafe repository name",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`[{"name":"..","full_name":"acme/.."}]`))
			},
			wantDecode: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client := NewClient("token", WithBaseURL(server.URL))
			repos, err := client.ListOrgRepositories(context.Background(), "acme", 10)
			require.Error(t, err)
			assert.Nil(t, repos)
			assert.True(t, errors.IsFatal(err))

			var le *errors.ListError
			var de *errors.DecodeError
			assert.Equal(t, tt.wantList, stderrors.As(err, &le))
			assert.Equal(t, tt.wantDecode, stderrors.As(err, &de))
			if tt.check != nil {
				tt.check(t, err)
			}
		})
	}
}

func TestSendRequest_Headers(t *testing.T) {
	var gotAuth, gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAgent = r.Header.Get("User-Agent")
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	_, err := NewClient("secret", WithBaseURL(server.URL+"/")).ListOrgRepositories(context.Background(), "acme", 1)
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, userAgent, gotAgent)

	_, err = NewClient("", WithBaseURL(server.URL)).ListOrgRepositories(context.Background(), "acme", 1)
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestListOrgRepositories_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	_, err := NewClient("", WithBaseURL(server.URL), WithHTTPClient(&http.Client{})).
		ListOrgRepositories(context.Background(), "acme", 1)
	var le *errors.ListError
	require.True(t, stderrors.As(err, &le))
	assert.Equal(t, "acme", le.Organization)
}
