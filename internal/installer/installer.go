package installer

import (
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"ovc/internal/cache"
	"ovc/internal/httpclient"
	"ovc/internal/logger"
	"ovc/internal/mirror"
	"ovc/internal/platform"
	"ovc/internal/version"
)

// Installer manages the local oc binaries for one platform: downloading and
// extracting archives, scanning what is installed, pruning, and keeping the
// oc/kubectl symlinks pointed at the default version.
//
// The home directory is injected so tests can run against a temp dir instead
// of the real $HOME.
type Installer struct {
	homeDir    string
	mirrorBase string
	store      *cache.Store
	client     *mirror.Client
	platform   platform.Platform
	http       *http.Client
}

// New builds an Installer. The archive download client carries no timeout,
// since full client archives can take minutes on slow links.
func New(homeDir, mirrorBase string, store *cache.Store, client *mirror.Client, p platform.Platform, insecure bool) *Installer {
	return &Installer{
		homeDir:    homeDir,
		mirrorBase: mirrorBase,
		store:      store,
		client:     client,
		platform:   p,
		http:       httpclient.New(0, insecure),
	}
}

// BinDir returns the platform-specific directory holding the downloaded
// binaries, creating it on first use.
func (i *Installer) BinDir() (string, error) {
	dir := filepath.Join(i.homeDir, filepath.FromSlash(platform.BinDir), i.platform.Name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("cannot create bin directory %s: %w", dir, err)
	}
	return dir, nil
}

// LocalBin returns ~/.local/bin, where the default symlinks live.
func (i *Installer) LocalBin() string {
	return filepath.Join(i.homeDir, ".local", "bin")
}

// BinaryPath returns where a given version's binary is (or would be) stored.
func (i *Installer) BinaryPath(ver string) (string, error) {
	dir, err := i.BinDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "oc-"+ver), nil
}

// downloadURL prefers the cached URL for a version and falls back to building
// one from the platform descriptor.
func (i *Installer) downloadURL(ver string) string {
	if c, err := i.store.Load(); err == nil && c != nil {
		if url, ok := c.DownloadURL(ver, i.platform.Name); ok {
			return url
		}
	}
	return i.platform.DownloadURL(i.mirrorBase, ver)
}

// EnsureBinary makes sure the binary for a version is present locally,
// downloading and extracting it when needed. Returns the binary path, whether
// a download actually happened, and the URL it came (or would come) from.
func (i *Installer) EnsureBinary(ver string, verbose bool) (string, bool, string, error) {
	ocPath, err := i.BinaryPath(ver)
	if err != nil {
		return "", false, "", err
	}
	url := i.downloadURL(ver)

	if _, err := os.Stat(ocPath); err == nil {
		return ocPath, false, url, nil
	}

	// Confirm the version is downloadable before fetching the archive. The
	// cache answers when it can (refreshing once on a miss); a cold cache
	// falls back to probing the mirror directly.
	exists, known, err := i.store.VersionExists(ver, i.platform, true)
	if err != nil {
		return "", false, "", err
	}
	if !known {
		if exists, err = i.client.VersionExists(ver); err != nil {
			return "", false, "", err
		}
	}
	if !exists {
		return "", false, "", fmt.Errorf("version '%s' not found for platform %s", ver, i.platform.Name)
	}

	if verbose {
		logger.Info("[INFO] Downloading from: %s\n", url)
	}

	tmp, err := os.CreateTemp("", "ovc-*."+i.platform.FileExtension)
	if err != nil {
		return "", false, "", fmt.Errorf("cannot create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := DownloadFile(i.http, url, tmpPath); err != nil {
		return "", false, "", err
	}
	if err := ExtractBinary(tmpPath, i.platform.BinaryName(), ocPath); err != nil {
		return "", false, "", err
	}
	return ocPath, true, url, nil
}

// SetDefault points the oc and kubectl symlinks in ~/.local/bin at the given
// version's binary, downloading it first if needed. Existing symlinks are
// removed before relinking, broken ones included.
func (i *Installer) SetDefault(ver string) error {
	ocPath, _, _, err := i.EnsureBinary(ver, false)
	if err != nil {
		return err
	}

	localBin := i.LocalBin()
	if err := os.MkdirAll(localBin, 0755); err != nil {
		return fmt.Errorf("cannot create %s: %w", localBin, err)
	}

	for _, name := range []string{"oc", "kubectl"} {
		link := filepath.Join(localBin, name)
		if err := removeIfExists(link); err != nil {
			return err
		}
		if err := os.Symlink(ocPath, link); err != nil {
			return fmt.Errorf("failed to create symlink %s -> %s: %w", link, ocPath, err)
		}
	}
	return nil
}

// removeIfExists deletes a file or symlink, tolerating broken symlinks, which
// Stat would report as nonexistent.
func removeIfExists(path string) error {
	if _, err := os.Lstat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("cannot inspect %s: %w", path, err)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to remove existing file/symlink at %s: %w", path, err)
	}
	return nil
}

// ListInstalled scans the bin directory for oc-{version} files and returns
// the versions sorted ascending.
func (i *Installer) ListInstalled() ([]string, error) {
	dir, err := i.BinDir()
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot read bin directory %s: %w", dir, err)
	}

	var versions []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if ver, ok := strings.CutPrefix(entry.Name(), "oc-"); ok {
			versions = append(versions, ver)
		}
	}
	version.Sort(versions)
	return versions, nil
}

// Prune removes installed binaries whose version matches the pattern and
// returns how many were removed.
func (i *Installer) Prune(pattern string, verbose bool) (int, error) {
	installed, err := i.ListInstalled()
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, ver := range installed {
		if !version.MatchesPattern(ver, pattern) {
			continue
		}
		path, err := i.BinaryPath(ver)
		if err != nil {
			return removed, err
		}
		if verbose {
			logger.Info("[INFO] Removing: %s\n", path)
		}
		if err := os.Remove(path); err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", path, err)
		}
		removed++
	}
	return removed, nil
}

// ForeignOC reports an oc binary on $PATH that ovc does not manage, i.e. one
// living outside ~/.local/bin. Such a binary would shadow the managed
// symlink, so downloads refuse to proceed until it is removed.
func (i *Installer) ForeignOC() (string, bool) {
	path, err := exec.LookPath("oc")
	if err != nil {
		return "", false
	}
	if filepath.Dir(path) == i.LocalBin() {
		return "", false
	}
	return path, true
}

// CheckPathWarnings prints setup hints: a missing oc symlink, or ~/.local/bin
// not being on $PATH. Purely advisory.
func (i *Installer) CheckPathWarnings() {
	localBin := i.LocalBin()
	if _, err := os.Lstat(filepath.Join(localBin, "oc")); err != nil {
		logger.Warn("[WARN] oc binary not found in %s\n", localBin)
		logger.Warn("[WARN] Run 'ovc VERSION' to install a version and set it as default\n")
		return
	}

	pathVar := os.Getenv("PATH")
	for _, p := range filepath.SplitList(pathVar) {
		if p == "" {
			continue
		}
		if canonical(p) == canonical(localBin) {
			return
		}
	}
	logger.Warn("[WARN] %s is not in your $PATH\n", localBin)
}

// canonical resolves symlinks for PATH entry comparison, falling back to the
// raw path when resolution fails.
func canonical(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}
	return path
}
