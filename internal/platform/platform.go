package platform

import (
	"fmt"
	"runtime"
)

// DefaultMirrorBase is the public OpenShift mirror hosting the client archives.
// It can be overridden through the settings file, e.g. for air-gapped mirrors.
const DefaultMirrorBase = "https://mirror.openshift.com/pub/openshift-v4"

// BinDir is where downloaded oc binaries live, relative to the user's home.
// Each platform gets its own subdirectory underneath it.
const BinDir = ".local/bin/oc_bins"

// Platform describes one OS/architecture target the mirror hosts binaries for.
// The fields encode the mirror's path and naming conventions for that target.
type Platform struct {
	// Name is the stable lookup key, e.g. "linux-x86_64".
	Name string
	// MirrorPath is the mirror subdirectory for this platform.
	MirrorPath string
	// BinarySuffix is the platform part of the archive filename.
	BinarySuffix string
	// FileExtension is the archive format the mirror serves for this platform.
	FileExtension string
}

var (
	// LinuxX8664 is the primary production target.
	LinuxX8664 = Platform{Name: "linux-x86_64", MirrorPath: "x86_64", BinarySuffix: "linux", FileExtension: "tar.gz"}

	// LinuxARM64 covers aarch64 Linux hosts.
	LinuxARM64 = Platform{Name: "linux-arm64", MirrorPath: "aarch64", BinarySuffix: "linux", FileExtension: "tar.gz"}

	// MacX8664 covers Intel Macs.
	MacX8664 = Platform{Name: "mac-x86_64", MirrorPath: "x86_64", BinarySuffix: "mac", FileExtension: "tar.gz"}

	// MacARM64 covers Apple Silicon. The mirror stores these archives in the
	// x86_64 directory, only the filename suffix differs.
	MacARM64 = Platform{Name: "mac-arm64", MirrorPath: "x86_64", BinarySuffix: "mac-arm64", FileExtension: "tar.gz"}

	// WindowsX8664 covers Windows; the mirror ships it as a zip, also from
	// the x86_64 directory.
	WindowsX8664 = Platform{Name: "windows-x86_64", MirrorPath: "x86_64", BinarySuffix: "windows", FileExtension: "zip"}
)

// All returns every platform descriptor known to ovc. The cache builds a
// download URL per entry so one refresh serves every platform.
func All() []Platform {
	return []Platform{LinuxX8664, LinuxARM64, MacX8664, MacARM64, WindowsX8664}
}

// ByName looks up a platform descriptor by its stable name. Used when the
// settings file pins a platform instead of relying on detection.
func ByName(name string) (Platform, bool) {
	for _, p := range All() {
		if p.Name == name {
			return p, true
		}
	}
	return Platform{}, false
}

// Detect picks the platform descriptor for the running OS and architecture.
// Unknown combinations fall back to linux-x86_64, matching the mirror's
// broadest coverage.
func Detect() Platform {
	switch runtime.GOOS {
	case "linux":
		if runtime.GOARCH == "arm64" {
			return LinuxARM64
		}
		return LinuxX8664
	case "darwin":
		if runtime.GOARCH == "arm64" {
			return MacARM64
		}
		return MacX8664
	case "windows":
		return WindowsX8664
	default:
		return LinuxX8664
	}
}

// BinaryName is the name of the client executable inside the archive.
func (p Platform) BinaryName() string {
	if p.Name == WindowsX8664.Name {
		return "oc.exe"
	}
	return "oc"
}

// DownloadURL builds the archive URL for one version of this platform, e.g.
// {base}/x86_64/clients/ocp/4.19.0/openshift-client-linux-4.19.0.tar.gz
func (p Platform) DownloadURL(mirrorBase, version string) string {
	return fmt.Sprintf("%s/%s/clients/ocp/%s/openshift-client-%s-%s.%s",
		mirrorBase, p.MirrorPath, version, p.BinarySuffix, version, p.FileExtension)
}

// VersionsURL builds the directory-listing URL used to discover versions.
func (p Platform) VersionsURL(mirrorBase string) string {
	return fmt.Sprintf("%s/%s/clients/ocp/", mirrorBase, p.MirrorPath)
}
