package manpage

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pageContent = ".TH OVC 1\n.SH NAME\novc \\- openshift client version control\n"

func newTestInstaller(version, baseURL string, client *http.Client) *Installer {
	return &Installer{
		BaseURL: baseURL,
		Repo:    DefaultRepo,
		Version: version,
		HTTP:    client,
	}
}

func TestEnsureInstallsAndTracksVersion(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	fetches := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/"+DefaultRepo+"/v1.2.3/man/ovc.1", r.URL.Path)
		fetches++
		w.Write([]byte(pageContent))
	}))
	defer srv.Close()

	m := newTestInstaller("1.2.3", srv.URL, srv.Client())
	m.Ensure(false)
	assert.Equal(t, 1, fetches)

	base := os.Getenv("XDG_DATA_HOME")
	page, err := os.ReadFile(filepath.Join(base, "man", "man1", "ovc.1"))
	require.NoError(t, err)
	assert.Equal(t, pageContent, string(page))

	tracked, err := os.ReadFile(filepath.Join(base, "ovc", "man-version"))
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", string(tracked))

	// Matching tracked version short-circuits without another fetch.
	m.Ensure(false)
	assert.Equal(t, 1, fetches)
}

func TestEnsureStripsVersionPrefix(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// A v-prefixed build version must not become "vv1.2.3" in the tag ref.
		assert.Equal(t, "/"+DefaultRepo+"/v1.2.3/man/ovc.1", r.URL.Path)
		w.Write([]byte(pageContent))
	}))
	defer srv.Close()

	m := newTestInstaller("v1.2.3", srv.URL, srv.Client())
	m.Ensure(false)
}

func TestEnsureFetchFailureLeavesNothing(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	fetches := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	m := newTestInstaller("9.9.9", srv.URL, srv.Client())
	m.Ensure(false)

	base := os.Getenv("XDG_DATA_HOME")
	_, err := os.Stat(filepath.Join(base, "man", "man1", "ovc.1"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(base, "ovc", "man-version"))
	assert.True(t, os.IsNotExist(err), "tracking file must only be written on success")

	// Without a tracking file the next run retries.
	m.Ensure(false)
	assert.Equal(t, 2, fetches)
}
