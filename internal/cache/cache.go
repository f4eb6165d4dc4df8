package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"ovc/internal/logger"
	"ovc/internal/platform"
	"ovc/internal/version"
)

// VersionInfo pairs a version string with its download URL per platform name.
type VersionInfo struct {
	Version string            `json:"version"`
	URLs    map[string]string `json:"urls"`
}

// Cache is the in-memory form of the persisted version listing. Versions keep
// their stored order; sorting happens before insertion, not on read.
type Cache struct {
	versions  []VersionInfo
	timestamp time.Time
}

// fileFormat is the current on-disk shape of the cache.
type fileFormat struct {
	Versions  []VersionInfo `json:"versions"`
	Timestamp time.Time     `json:"timestamp"`
}

// legacyFormat is the original on-disk shape, a flat list of version strings.
// It is still accepted on read and transparently upgraded.
type legacyFormat struct {
	Versions  []string  `json:"versions"`
	Timestamp time.Time `json:"timestamp"`
}

// VersionStrings returns just the version strings, in stored order.
func (c *Cache) VersionStrings() []string {
	out := make([]string, 0, len(c.versions))
	for _, v := range c.versions {
		out = append(out, v.Version)
	}
	return out
}

// HasVersion reports whether a version is present in the cache.
func (c *Cache) HasVersion(v string) bool {
	for _, entry := range c.versions {
		if entry.Version == v {
			return true
		}
	}
	return false
}

// DownloadURL returns the cached URL for a version on one platform.
func (c *Cache) DownloadURL(ver, platformName string) (string, bool) {
	for _, entry := range c.versions {
		if entry.Version == ver {
			url, ok := entry.URLs[platformName]
			return url, ok
		}
	}
	return "", false
}

// Timestamp returns when the cached listing was created.
func (c *Cache) Timestamp() time.Time {
	return c.timestamp
}

// Lister is the external collaborator that fetches a fresh version listing
// from the mirror. Satisfied by mirror.Client.
type Lister interface {
	ListVersions() ([]string, error)
}

// Store owns the single cache file on disk. The path is injected so tests can
// point it at a temp directory instead of the user's real cache location.
//
// The cache never expires on its own: the only refresh trigger is a query for
// a version that is absent from the loaded cache. Concurrent ovc processes may
// both refresh; the file is always replaced wholesale, so the last writer wins
// without corrupting anything.
type Store struct {
	path       string
	lister     Lister
	mirrorBase string
}

// NewStore builds a Store around a cache file path and a version lister.
func NewStore(path string, lister Lister, mirrorBase string) *Store {
	return &Store{path: path, lister: lister, mirrorBase: mirrorBase}
}

// DefaultPath resolves the cache file location: $XDG_CACHE_HOME/ovc/versions.json,
// falling back to $HOME/.cache/ovc/versions.json. The directory is created on
// the way.
func DefaultPath() (string, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot resolve cache directory: %w", err)
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, "ovc")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("cannot create cache directory %s: %w", dir, err)
	}
	return filepath.Join(dir, "versions.json"), nil
}

// Load reads the cache file. A missing file yields (nil, nil): cold cache,
// not an error. A file in the legacy flat-string format is upgraded in memory
// (URLs synthesized for every known platform), written back best-effort with
// its original timestamp preserved, and returned. A file that parses as
// neither format is deleted and treated as absent: a corrupt cache must never
// fail the caller.
func (s *Store) Load() (*Cache, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot read cache file %s: %w", s.path, err)
	}

	var current fileFormat
	if err := json.Unmarshal(data, &current); err == nil && current.Versions != nil {
		return &Cache{versions: current.Versions, timestamp: current.Timestamp}, nil
	}

	var legacy legacyFormat
	if err := json.Unmarshal(data, &legacy); err == nil && legacy.Versions != nil {
		logger.Debug("[DEBUG] Migrating legacy cache format at %s\n", s.path)
		upgraded := &Cache{
			versions:  s.BuildVersionInfo(legacy.Versions),
			timestamp: legacy.Timestamp,
		}
		if err := s.write(upgraded.versions, upgraded.timestamp); err != nil {
			// Migration persists best-effort; the in-memory cache is intact.
			logger.Debug("[DEBUG] Could not persist migrated cache: %v\n", err)
		}
		return upgraded, nil
	}

	logger.Debug("[DEBUG] Discarding unreadable cache file %s\n", s.path)
	_ = os.Remove(s.path)
	return nil, nil
}

// Save overwrites the cache file with the given versions and a fresh
// timestamp. This is the store's one real error path; callers treat caching
// as an optimization and must not fail their primary operation over it.
func (s *Store) Save(versions []VersionInfo) error {
	return s.write(versions, time.Now().UTC())
}

func (s *Store) write(versions []VersionInfo, ts time.Time) error {
	payload := fileFormat{Versions: versions, Timestamp: ts}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot marshal version cache: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("cannot create cache directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("cannot write cache file %s: %w", s.path, err)
	}
	return nil
}

// BuildVersionInfo expands plain version strings into VersionInfo entries
// with a download URL for every known platform descriptor.
func (s *Store) BuildVersionInfo(versions []string) []VersionInfo {
	platforms := platform.All()
	out := make([]VersionInfo, 0, len(versions))
	for _, v := range versions {
		urls := make(map[string]string, len(platforms))
		for _, p := range platforms {
			urls[p.Name] = p.DownloadURL(s.mirrorBase, v)
		}
		out = append(out, VersionInfo{Version: v, URLs: urls})
	}
	return out
}

// FetchAndCacheAll pulls the full listing from the mirror, sorts it, and
// rewrites the cache. The sorted version strings are returned even when the
// cache write fails.
func (s *Store) FetchAndCacheAll(verbose bool) ([]string, error) {
	versions, err := s.lister.ListVersions()
	if err != nil {
		return nil, err
	}
	version.Sort(versions)

	if err := s.Save(s.BuildVersionInfo(versions)); err != nil {
		if verbose {
			logger.Warn("[WARN] Failed to cache versions: %v\n", err)
		}
	} else if verbose {
		logger.Info("[INFO] Cached %d versions\n", len(versions))
	}
	return versions, nil
}

// UpdateForMissing refreshes the cache because missingVersion was not found.
// It reloads first: another ovc process may already have refreshed, in which
// case no network call is made. Returns true when a refresh actually ran.
func (s *Store) UpdateForMissing(missingVersion string, verbose bool) (bool, error) {
	if c, err := s.Load(); err != nil {
		return false, err
	} else if c != nil && c.HasVersion(missingVersion) {
		return false, nil
	}

	if verbose {
		logger.Info("[INFO] Version %s not in cache, refreshing from mirror...\n", missingVersion)
	}
	if _, err := s.FetchAndCacheAll(verbose); err != nil {
		return false, err
	}
	return true, nil
}

// VersionExists answers "is this version downloadable for this platform"
// from cached data. The second return value is false when no cache exists at
// all, in which case the caller should fall back to probing the mirror
// directly. With updateIfMissing set, a miss triggers one refresh-on-miss
// cycle before answering.
func (s *Store) VersionExists(ver string, p platform.Platform, updateIfMissing bool) (exists, known bool, err error) {
	c, err := s.Load()
	if err != nil {
		return false, false, err
	}
	if c == nil {
		return false, false, nil
	}

	if _, ok := c.DownloadURL(ver, p.Name); ok {
		return true, true, nil
	}
	if !updateIfMissing {
		return false, true, nil
	}

	updated, err := s.UpdateForMissing(ver, false)
	if err != nil {
		return false, true, err
	}
	if updated {
		if c, err = s.Load(); err != nil {
			return false, true, err
		}
		if c != nil {
			_, ok := c.DownloadURL(ver, p.Name)
			return ok, true, nil
		}
	}
	return false, true, nil
}

// AvailableVersions returns every known version string. Cached data is used
// whenever present (the cache does not expire) and the mirror is only hit on
// a cold cache. Use UpdateForMissing to force a refresh for a specific miss.
func (s *Store) AvailableVersions(verbose bool) ([]string, error) {
	c, err := s.Load()
	if err != nil {
		return nil, err
	}
	if c != nil {
		if verbose {
			logger.Info("[INFO] Using cached versions (last updated: %s)\n", FormatAge(c.Timestamp()))
		}
		return c.VersionStrings(), nil
	}

	if verbose {
		logger.Info("[INFO] No cache found, fetching versions from mirror...\n")
	}
	return s.FetchAndCacheAll(verbose)
}

// FormatAge renders how long ago a timestamp was in coarse units: "2h ago",
// "30m ago", "12s ago". Negative durations from clock skew clamp to "0s ago".
func FormatAge(t time.Time) string {
	age := time.Since(t)
	switch {
	case age >= time.Hour:
		return fmt.Sprintf("%dh ago", int(age.Hours()))
	case age >= time.Minute:
		return fmt.Sprintf("%dm ago", int(age.Minutes()))
	default:
		secs := int(age.Seconds())
		if secs < 0 {
			secs = 0
		}
		return fmt.Sprintf("%ds ago", secs)
	}
}
