package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ovc/internal/platform"
)

// fakeLister returns a canned listing, counting calls, or an error.
type fakeLister struct {
	versions []string
	err      error
	calls    int
}

func (f *fakeLister) ListVersions() ([]string, error) {
	f.calls++
	return f.versions, f.err
}

func newTestStore(t *testing.T, lister Lister) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "versions.json"), lister, platform.DefaultMirrorBase)
}

func TestLoadMissingFile(t *testing.T) {
	s := newTestStore(t, &fakeLister{})
	c, err := s.Load()
	require.NoError(t, err)
	assert.Nil(t, c, "missing cache file should load as absent, not as an error")
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t, &fakeLister{})
	require.NoError(t, s.Save([]VersionInfo{
		{Version: "4.19.0", URLs: map[string]string{"linux-x86_64": "https://x"}},
		{Version: "4.19.1", URLs: map[string]string{"linux-x86_64": "https://y"}},
	}))

	c, err := s.Load()
	require.NoError(t, err)
	require.NotNil(t, c)

	url, ok := c.DownloadURL("4.19.0", "linux-x86_64")
	assert.True(t, ok)
	assert.Equal(t, "https://x", url)

	assert.True(t, c.HasVersion("4.19.1"))
	assert.False(t, c.HasVersion("4.20.0"))
	assert.Equal(t, []string{"4.19.0", "4.19.1"}, c.VersionStrings())
	assert.WithinDuration(t, time.Now(), c.Timestamp(), time.Minute)

	_, ok = c.DownloadURL("4.19.0", "mac-arm64")
	assert.False(t, ok, "unknown platform key should miss")
}

func TestLoadLegacyFormatMigrates(t *testing.T) {
	s := newTestStore(t, &fakeLister{})
	legacy := `{"versions":["4.19.0"],"timestamp":"2024-01-01T00:00:00Z"}`
	require.NoError(t, os.WriteFile(s.path, []byte(legacy), 0644))

	c, err := s.Load()
	require.NoError(t, err)
	require.NotNil(t, c)

	// URLs are synthesized for every known platform descriptor.
	for _, p := range platform.All() {
		url, ok := c.DownloadURL("4.19.0", p.Name)
		assert.True(t, ok, "platform %s", p.Name)
		assert.Equal(t, p.DownloadURL(platform.DefaultMirrorBase, "4.19.0"), url)
	}

	// The original timestamp survives the migration.
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), c.Timestamp().UTC())

	// And the upgraded form was written back to disk with a "urls" key.
	raw, err := os.ReadFile(s.path)
	require.NoError(t, err)
	var onDisk struct {
		Versions []map[string]json.RawMessage `json:"versions"`
	}
	require.NoError(t, json.Unmarshal(raw, &onDisk))
	require.Len(t, onDisk.Versions, 1)
	assert.Contains(t, onDisk.Versions[0], "urls")
}

func TestLoadCorruptFileSelfHeals(t *testing.T) {
	s := newTestStore(t, &fakeLister{})
	require.NoError(t, os.WriteFile(s.path, []byte("{not json"), 0644))

	c, err := s.Load()
	require.NoError(t, err, "a corrupt cache must never surface as an error")
	assert.Nil(t, c)

	_, statErr := os.Stat(s.path)
	assert.True(t, os.IsNotExist(statErr), "corrupt cache file should be removed")
}

func TestLoadUnrecognizedShapeDiscarded(t *testing.T) {
	s := newTestStore(t, &fakeLister{})
	// Valid JSON, but neither format (no versions list at all).
	require.NoError(t, os.WriteFile(s.path, []byte(`{"foo": 1}`), 0644))

	c, err := s.Load()
	require.NoError(t, err)
	assert.Nil(t, c)
	_, statErr := os.Stat(s.path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestFetchAndCacheAllSorts(t *testing.T) {
	lister := &fakeLister{versions: []string{"4.19.1", "4.2.0", "4.19.0-rc.1", "4.19.0"}}
	s := newTestStore(t, lister)

	versions, err := s.FetchAndCacheAll(false)
	require.NoError(t, err)
	assert.Equal(t, []string{"4.2.0", "4.19.0-rc.1", "4.19.0", "4.19.1"}, versions)

	c, err := s.Load()
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, versions, c.VersionStrings())
}

func TestUpdateForMissingSkipsWhenPresent(t *testing.T) {
	lister := &fakeLister{versions: []string{"4.19.0"}}
	s := newTestStore(t, lister)
	require.NoError(t, s.Save(s.BuildVersionInfo([]string{"4.19.0"})))

	// Already cached: no refresh, no network call.
	updated, err := s.UpdateForMissing("4.19.0", false)
	require.NoError(t, err)
	assert.False(t, updated)
	assert.Zero(t, lister.calls)
}

func TestUpdateForMissingRefreshes(t *testing.T) {
	lister := &fakeLister{versions: []string{"4.19.0", "4.19.1"}}
	s := newTestStore(t, lister)
	require.NoError(t, s.Save(s.BuildVersionInfo([]string{"4.19.0"})))

	updated, err := s.UpdateForMissing("4.19.1", false)
	require.NoError(t, err)
	assert.True(t, updated)
	assert.Equal(t, 1, lister.calls)

	c, err := s.Load()
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.True(t, c.HasVersion("4.19.1"))
}

func TestVersionExists(t *testing.T) {
	lister := &fakeLister{versions: []string{"4.19.0", "4.19.1"}}
	s := newTestStore(t, lister)

	// Cold cache: the answer is unknown, caller probes the mirror.
	_, known, err := s.VersionExists("4.19.0", platform.LinuxX8664, false)
	require.NoError(t, err)
	assert.False(t, known)

	require.NoError(t, s.Save(s.BuildVersionInfo([]string{"4.19.0"})))

	exists, known, err := s.VersionExists("4.19.0", platform.LinuxX8664, false)
	require.NoError(t, err)
	assert.True(t, known)
	assert.True(t, exists)

	// Miss without refresh permission stays a miss.
	exists, known, err = s.VersionExists("4.19.1", platform.LinuxX8664, false)
	require.NoError(t, err)
	assert.True(t, known)
	assert.False(t, exists)
	assert.Zero(t, lister.calls)

	// Miss with refresh permission finds the newly published version.
	exists, known, err = s.VersionExists("4.19.1", platform.LinuxX8664, true)
	require.NoError(t, err)
	assert.True(t, known)
	assert.True(t, exists)
	assert.Equal(t, 1, lister.calls)
}

func TestAvailableVersionsPrefersCache(t *testing.T) {
	lister := &fakeLister{versions: []string{"4.19.0"}}
	s := newTestStore(t, lister)

	// Cold cache fetches from the mirror.
	versions, err := s.AvailableVersions(false)
	require.NoError(t, err)
	assert.Equal(t, []string{"4.19.0"}, versions)
	assert.Equal(t, 1, lister.calls)

	// Warm cache answers without the mirror, even though it never expires.
	versions, err = s.AvailableVersions(false)
	require.NoError(t, err)
	assert.Equal(t, []string{"4.19.0"}, versions)
	assert.Equal(t, 1, lister.calls)
}

func TestAvailableVersionsColdCacheNetworkError(t *testing.T) {
	lister := &fakeLister{err: assert.AnError}
	s := newTestStore(t, lister)

	// With no cached data to fall back on, the fetch error is hard.
	_, err := s.AvailableVersions(false)
	assert.Error(t, err)
}

func TestFormatAge(t *testing.T) {
	assert.Equal(t, "2h ago", FormatAge(time.Now().Add(-7200*time.Second)))
	assert.Equal(t, "5m ago", FormatAge(time.Now().Add(-300*time.Second)))
	assert.Equal(t, "12s ago", FormatAge(time.Now().Add(-12*time.Second)))
	// Clock skew clamps to zero instead of going negative.
	assert.Equal(t, "0s ago", FormatAge(time.Now().Add(30*time.Second)))
}
