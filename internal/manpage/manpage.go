package manpage

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ovc/internal/httpclient"
	"ovc/internal/logger"
)

// DefaultBaseURL is the raw-content root the man page is fetched from.
const DefaultBaseURL = "https://raw.githubusercontent.com"

// DefaultRepo is the GitHub repository hosting the man page, the same one
// self-update pulls releases from.
const DefaultRepo = "t-c-l-o-u-d/ovc"

// Installer keeps the local man page in step with the running build, so that
// `man ovc` works without a package manager. The installed build version is
// tracked in a small file next to the page; when it matches the running
// build, nothing is fetched.
type Installer struct {
	// BaseURL is the raw-content root, overridable in tests.
	BaseURL string
	// Repo is the "owner/name" repository the page is fetched from.
	Repo string
	// Version is the running build's version string.
	Version string
	// HTTP is the client used to fetch the page.
	HTTP *http.Client
}

// New builds a man page installer for the given running version.
func New(version string, insecure bool) *Installer {
	return &Installer{
		BaseURL: DefaultBaseURL,
		Repo:    DefaultRepo,
		Version: version,
		HTTP:    httpclient.New(30*time.Second, insecure),
	}
}

// Ensure installs the man page matching the running build when the tracked
// version disagrees. Best effort: failures are warnings at most and never
// block the command that triggered the check.
func (m *Installer) Ensure(verbose bool) {
	if installedVersion() == m.Version {
		return
	}
	if err := m.install(verbose); err != nil && verbose {
		logger.Warn("[WARN] Failed to install man page: %v\n", err)
	}
}

// install fetches the page for the running version and writes it plus the
// tracking file. The tracking file is only written on success, so a failed
// fetch is retried on the next run.
func (m *Installer) install(verbose bool) error {
	url := fmt.Sprintf("%s/%s/v%s/man/ovc.1", m.BaseURL, m.Repo, strings.TrimPrefix(m.Version, "v"))
	if verbose {
		logger.Info("[INFO] Fetching man page from: %s\n", url)
	}

	resp, err := m.HTTP.Get(url)
	if err != nil {
		return fmt.Errorf("failed to GET %s: %w", url, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			logger.Warn("[WARN] Failed to close response body: %v\n", cerr)
		}
	}()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("man page fetch failed: HTTP status %d from %s", resp.StatusCode, url)
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read man page: %w", err)
	}

	dir, err := manDir()
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "ovc.1"), content, 0644); err != nil {
		return fmt.Errorf("failed to write man page: %w", err)
	}

	path, err := versionPath()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(m.Version), 0644); err != nil {
		return fmt.Errorf("failed to write man page version file: %w", err)
	}

	if verbose {
		logger.Info("[INFO] Installed man page for version %s\n", m.Version)
	}
	return nil
}

// dataBase resolves the XDG data root: $XDG_DATA_HOME, falling back to
// ~/.local/share.
func dataBase() (string, error) {
	if base := os.Getenv("XDG_DATA_HOME"); base != "" {
		return base, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot resolve data directory: %w", err)
	}
	return filepath.Join(home, ".local", "share"), nil
}

// manDir resolves the man1 installation directory, creating it on the way.
func manDir() (string, error) {
	base, err := dataBase()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(base, "man", "man1")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("cannot create man directory %s: %w", dir, err)
	}
	return dir, nil
}

// versionPath resolves the tracking file recording which build's man page is
// installed, creating its directory on the way.
func versionPath() (string, error) {
	base, err := dataBase()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(base, "ovc")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("cannot create data directory %s: %w", dir, err)
	}
	return filepath.Join(dir, "man-version"), nil
}

// installedVersion reads the tracking file; empty when absent or unreadable.
func installedVersion() string {
	path, err := versionPath()
	if err != nil {
		return ""
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(raw))
}
