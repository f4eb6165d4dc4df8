package mirror

import (
	"bufio"
	"fmt"
	"net/http"
	"strings"
	"time"

	"ovc/internal/httpclient"
	"ovc/internal/logger"
	"ovc/internal/platform"
)

// Client talks to the OpenShift mirror: it discovers available versions from
// the directory index and probes individual archives for existence.
type Client struct {
	base     string
	platform platform.Platform
	http     *http.Client
}

// NewClient builds a mirror client for one platform. The base URL is usually
// platform.DefaultMirrorBase but can point at a private mirror; insecure
// skips TLS verification for mirrors with self-signed certificates.
func NewClient(base string, p platform.Platform, insecure bool) *Client {
	return &Client{
		base:     base,
		platform: p,
		http:     httpclient.New(30*time.Second, insecure),
	}
}

// ListVersions fetches the mirror's directory index and extracts the version
// directory names. The index is a plain HTML listing; each entry of interest
// is the second double-quoted token on its line, ends with a slash, and
// starts with an ASCII digit. Order is as served; callers sort.
func (c *Client) ListVersions() ([]string, error) {
	url := c.platform.VersionsURL(c.base)
	logger.Debug("[DEBUG] Fetching version listing from %s\n", url)

	resp, err := c.http.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to GET %s: %w", url, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			logger.Warn("[WARN] Failed to close response body: %v\n", cerr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("version listing fetch failed: HTTP status %d from %s", resp.StatusCode, url)
	}

	var versions []string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		name, ok := quotedToken(scanner.Text())
		if !ok {
			continue
		}
		if !strings.HasSuffix(name, "/") {
			continue
		}
		if name == "" || name[0] < '0' || name[0] > '9' {
			continue
		}
		versions = append(versions, strings.TrimSuffix(name, "/"))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read version listing: %w", err)
	}

	logger.Debug("[DEBUG] Mirror listed %d version directories\n", len(versions))
	return versions, nil
}

// quotedToken returns the content of the first double-quoted region of a
// line, i.e. the href value in the index HTML.
func quotedToken(line string) (string, bool) {
	parts := strings.Split(line, "\"")
	if len(parts) < 2 {
		return "", false
	}
	return parts[1], true
}

// VersionExists issues a HEAD request against the archive URL for one
// version. Used as a fallback when the cache cannot answer.
func (c *Client) VersionExists(version string) (bool, error) {
	url := c.platform.DownloadURL(c.base, version)
	logger.Debug("[DEBUG] HEAD %s\n", url)

	resp, err := c.http.Head(url)
	if err != nil {
		return false, fmt.Errorf("failed to HEAD %s: %w", url, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			logger.Warn("[WARN] Failed to close response body: %v\n", cerr)
		}
	}()
	return resp.StatusCode >= 200 && resp.StatusCode < 300, nil
}
