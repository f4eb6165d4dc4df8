package platform

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDownloadURL(t *testing.T) {
	url := LinuxX8664.DownloadURL(DefaultMirrorBase, "4.19.0")
	assert.Equal(t,
		"https://mirror.openshift.com/pub/openshift-v4/x86_64/clients/ocp/4.19.0/openshift-client-linux-4.19.0.tar.gz",
		url)

	// Apple Silicon archives live in the x86_64 mirror directory.
	url = MacARM64.DownloadURL(DefaultMirrorBase, "4.19.0")
	assert.Equal(t,
		"https://mirror.openshift.com/pub/openshift-v4/x86_64/clients/ocp/4.19.0/openshift-client-mac-arm64-4.19.0.tar.gz",
		url)

	url = WindowsX8664.DownloadURL(DefaultMirrorBase, "4.19.0")
	assert.True(t, strings.HasSuffix(url, "openshift-client-windows-4.19.0.zip"), url)
}

func TestVersionsURL(t *testing.T) {
	assert.Equal(t,
		"https://mirror.openshift.com/pub/openshift-v4/aarch64/clients/ocp/",
		LinuxARM64.VersionsURL(DefaultMirrorBase))
}

func TestURLRespectsMirrorBase(t *testing.T) {
	url := LinuxX8664.DownloadURL("https://mirror.internal/ocp", "4.19.0")
	assert.True(t, strings.HasPrefix(url, "https://mirror.internal/ocp/"), url)
}

func TestByName(t *testing.T) {
	for _, p := range All() {
		got, ok := ByName(p.Name)
		assert.True(t, ok)
		assert.Equal(t, p, got)
	}
	_, ok := ByName("plan9-386")
	assert.False(t, ok)
}

func TestBinaryName(t *testing.T) {
	assert.Equal(t, "oc", LinuxX8664.BinaryName())
	assert.Equal(t, "oc.exe", WindowsX8664.BinaryName())
}

func TestDetectReturnsKnownPlatform(t *testing.T) {
	p := Detect()
	_, ok := ByName(p.Name)
	assert.True(t, ok, "Detect must return one of the known descriptors")
}

func TestAllNamesUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, p := range All() {
		assert.False(t, seen[p.Name], "duplicate platform name %s", p.Name)
		seen[p.Name] = true
	}
}
