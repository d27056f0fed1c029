package github

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NicabarNimble/go-gitbackup/internal/errors"
	"github.com/NicabarNimble/go-gitbackup/internal/repo"
)

func mockGH(t *testing.T, out string, err error) *[][]string {
	t.Helper()
	original := runCommand
	t.Cleanup(func() { runCommand = original })

	calls := &[][]string{}
	runCommand = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		*calls = append(*calls, append([]string{name}, args...))
		return []byte(out), err
	}
	return calls
}

func TestCLILister_List(t *testing.T) {
	calls := mockGH(t, `[{"name":"x","nameWithOwner":"acme/x"},{"name":"y","nameWithOwner":"acme/y"}]`, nil)

	repos, err := (&CLILister{}).List(context.Background(), "acme", 5)
	require.NoError(t, err)
	assert.Equal(t, []repo.Repository{
		{Name: "x", NameWithOwner: "acme/x"},
		{Name: "y", NameWithOwner: "acme/y"},
	}, repos)

	require.Len(t, *calls, 1)
	assert.Equal(t, []string{"gh", "repo", "list", "acme", "--limit", "5", "--json", "name,nameWithOwner"}, (*calls)[0])
}

func TestCLILister_ZeroLimit(t *testing.T) {
	calls := mockGH(t, "", nil)

	repos, err := (&CLILister{}).List(context.Background(), "acme", 0)
	require.NoError(t, err)
	assert.Empty(t, repos)
	assert.Empty(t, *calls)
}

func TestCLILister_Failures(t *testing.T) {
	t.Run("command fails", func(t *testing.T) {
		mockGH(t, "", stderrors.New("gh: exit status 1: could not resolve to an Organization"))

		_, err := (&CLILister{Binary: "/opt/gh"}).List(context.Background(), "acme", 10)
		var le *errors.ListError
		require.True(t, stderrors.As(err, &le))
		assert.Equal(t, "acme", le.Organization)
		assert.Contains(t, err.Error(), "could not resolve")
	})

	t.Run("bad payload", func(t *testing.T) {
		mockGH(t, "not json", nil)

		_, err := (&CLILister{}).List(context.Background(), "acme", 10)
		var de *errors.DecodeError
		require.True(t, stderrors.As(err, &de))
	})
}

func TestAPILister_List(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"name":"x","full_name":"acme/x"}]`))
	}))
	defer server.Close()

	l := &APILister{Client: NewClient("", WithBaseURL(server.URL))}
	repos, err := l.List(context.Background(), "acme", 10)
	require.NoError(t, err)
	assert.Equal(t, []repo.Repository{{Name: "x", NameWithOwner: "acme/x"}}, repos)
}
