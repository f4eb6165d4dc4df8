package updater

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"

	"ovc/internal/httpclient"
	"ovc/internal/installer"
	"ovc/internal/logger"
)

// DefaultRepo is the GitHub repository releases are pulled from.
const DefaultRepo = "t-c-l-o-u-d/ovc"

// Release mirrors the fields of the GitHub release JSON we care about.
type Release struct {
	TagName string  `json:"tag_name"` // The release tag (e.g., v1.0.0)
	Assets  []Asset `json:"assets"`
}

// Asset is one downloadable file attached to a release.
type Asset struct {
	Name               string `json:"name"`                 // Asset filename
	BrowserDownloadURL string `json:"browser_download_url"` // Direct download URL
}

// Updater replaces the running ovc executable with the latest GitHub release.
// Note that ovc's own release tags are ordinary semver, unlike oc versions,
// which need the custom comparator in internal/version.
type Updater struct {
	// APIBase is the GitHub API root, overridable in tests.
	APIBase string
	// Repo is the "owner/name" repository to query.
	Repo string
	// Current is the running build's version string.
	Current string
	// HTTP is the client used for API calls and asset downloads.
	HTTP *http.Client
}

// New builds an Updater for the given running version.
func New(current string, insecure bool) *Updater {
	return &Updater{
		APIBase: "https://api.github.com",
		Repo:    DefaultRepo,
		Current: current,
		HTTP:    httpclient.New(60*time.Second, insecure),
	}
}

// Run performs the self-update: fetch the latest release, compare tags,
// download the matching asset, and swap the running executable. When the
// running build is already current (or newer), nothing is downloaded.
func (u *Updater) Run(verbose bool) error {
	release, err := u.latestRelease()
	if err != nil {
		return err
	}

	if !u.isNewer(release.TagName) {
		logger.Info("[INFO] ovc %s is already up to date\n", u.Current)
		return nil
	}

	assetName, assetURL, err := pickAsset(release)
	if err != nil {
		return err
	}
	if verbose {
		logger.Info("[INFO] Updating to %s (%s)\n", release.TagName, assetName)
	}

	tmp, err := os.CreateTemp("", "ovc-update-*"+archiveSuffix(assetName))
	if err != nil {
		return fmt.Errorf("cannot create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := installer.DownloadFile(u.HTTP, assetURL, tmpPath); err != nil {
		return err
	}
	return u.replaceExecutable(tmpPath)
}

// latestRelease fetches and decodes the latest release metadata.
func (u *Updater) latestRelease() (*Release, error) {
	url := fmt.Sprintf("%s/repos/%s/releases/latest", u.APIBase, u.Repo)
	logger.Debug("[DEBUG] Fetching GitHub release from URL: %s\n", url)

	resp, err := u.HTTP.Get(url)
	if err != nil {
		return nil, fmt.Errorf("HTTP GET error fetching latest release: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			logger.Warn("[WARN] Failed to close HTTP response body: %v\n", cerr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GitHub release fetch failed: HTTP status %d", resp.StatusCode)
	}

	var release Release
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("failed to decode GitHub release JSON: %w", err)
	}
	logger.Debug("[DEBUG] Release tag: %s with %d assets\n", release.TagName, len(release.Assets))
	return &release, nil
}

// isNewer compares a release tag against the running version with semver.
// Unparseable versions (dev builds, odd tags) always update.
func (u *Updater) isNewer(tag string) bool {
	latest, err := semver.NewVersion(strings.TrimPrefix(tag, "v"))
	if err != nil {
		return true
	}
	current, err := semver.NewVersion(strings.TrimPrefix(u.Current, "v"))
	if err != nil {
		return true
	}
	return latest.GreaterThan(current)
}

// archiveExtensions are the asset formats the extractor understands.
var archiveExtensions = []string{".tar.gz", ".tgz", ".tar.xz", ".zip", ".7z"}

// archiveSuffix returns the recognized archive extension of an asset name,
// empty when there is none.
func archiveSuffix(name string) string {
	lower := strings.ToLower(name)
	for _, ext := range archiveExtensions {
		if strings.HasSuffix(lower, ext) {
			return ext
		}
	}
	return ""
}

// assetPatterns lists the OS/arch substrings seen in release asset names,
// most specific first, for the running build.
func assetPatterns() []string {
	arch := strings.ToLower(runtime.GOARCH)
	osys := strings.ToLower(runtime.GOOS)

	patterns := []string{
		osys + "_" + arch,
		osys + "-" + arch,
	}
	// Common aliases: amd64 assets are frequently labelled x86_64, and
	// darwin ones macos.
	if arch == "amd64" {
		patterns = append(patterns, osys+"_x86_64", osys+"-x86_64")
	}
	if arch == "arm64" {
		patterns = append(patterns, osys+"_aarch64", osys+"-aarch64")
	}
	if osys == "darwin" {
		patterns = append(patterns, "macos_"+arch, "macos-"+arch, "macos")
	}
	return append(patterns, osys)
}

// pickAsset chooses the release asset for the running OS/arch, preferring the
// most specific name pattern.
func pickAsset(release *Release) (name, url string, err error) {
	for _, pattern := range assetPatterns() {
		for _, asset := range release.Assets {
			lower := strings.ToLower(asset.Name)
			if strings.Contains(lower, pattern) && archiveSuffix(lower) != "" {
				logger.Debug("[DEBUG] Found matching asset: %s\n", asset.Name)
				return asset.Name, asset.BrowserDownloadURL, nil
			}
		}
	}
	return "", "", fmt.Errorf("no matching asset found for %s/%s in release %s",
		runtime.GOOS, runtime.GOARCH, release.TagName)
}

// binaryName is the executable name expected inside a release archive.
func binaryName() string {
	if runtime.GOOS == "windows" {
		return "ovc.exe"
	}
	return "ovc"
}

// replaceExecutable extracts the new binary next to the running one and
// renames it into place. The sibling temp file keeps the rename on one
// filesystem, so it stays atomic.
func (u *Updater) replaceExecutable(archivePath string) error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("cannot locate running executable: %w", err)
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return fmt.Errorf("cannot resolve running executable: %w", err)
	}

	staged := exe + ".new"
	if err := installer.ExtractBinary(archivePath, binaryName(), staged); err != nil {
		return err
	}
	if err := os.Rename(staged, exe); err != nil {
		os.Remove(staged)
		return fmt.Errorf("failed to replace %s: %w", exe, err)
	}
	logger.Info("[INFO] Updated %s\n", exe)
	return nil
}
