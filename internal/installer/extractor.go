package installer

import (
	"archive/tar" // For reading .tar archives
	"archive/zip" // For reading .zip archives (windows client, some release assets)
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip" // For reading .7z release assets
	"github.com/xi2/xz"          // For reading .tar.xz release assets

	"ovc/internal/logger"
)

// ExtractBinary pulls a single named executable out of an archive and writes
// it to destPath with executable permissions. The archive format is chosen by
// filename suffix. The OpenShift mirror serves tar.gz (unix) and zip
// (windows); the remaining formats cover self-update release assets, which
// follow no single convention.
func ExtractBinary(archivePath, binaryName, destPath string) error {
	switch {
	case strings.HasSuffix(archivePath, ".zip"):
		logger.Debug("[DEBUG] Archive type is zip\n")
		return extractFromZip(archivePath, binaryName, destPath)
	case strings.HasSuffix(archivePath, ".7z"):
		logger.Debug("[DEBUG] Archive type is 7z\n")
		return extractFrom7z(archivePath, binaryName, destPath)
	case strings.HasSuffix(archivePath, ".tar"),
		strings.HasSuffix(archivePath, ".tar.gz"),
		strings.HasSuffix(archivePath, ".tgz"),
		strings.HasSuffix(archivePath, ".tar.xz"):
		logger.Debug("[DEBUG] Archive type is tar\n")
		return extractFromTar(archivePath, binaryName, destPath)
	default:
		return fmt.Errorf("unsupported archive format: %s", archivePath)
	}
}

// extractFromTar streams a (possibly compressed) tarball and stops at the
// first regular member whose base name matches.
func extractFromTar(archivePath, binaryName, destPath string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open archive %s: %w", archivePath, err)
	}
	defer f.Close()

	var reader io.Reader = f
	switch {
	case strings.HasSuffix(archivePath, ".tar.gz"), strings.HasSuffix(archivePath, ".tgz"):
		gr, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("failed to read gzip stream: %w", err)
		}
		defer gr.Close()
		reader = gr
	case strings.HasSuffix(archivePath, ".tar.xz"):
		xzr, err := xz.NewReader(f, 0)
		if err != nil {
			return fmt.Errorf("failed to read xz stream: %w", err)
		}
		reader = xzr
	}

	tr := tar.NewReader(reader)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read archive %s: %w", archivePath, err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		if filepath.Base(hdr.Name) != binaryName {
			continue
		}
		return writeBinary(tr, destPath)
	}
	return fmt.Errorf("%s binary not found in archive %s", binaryName, archivePath)
}

// extractFromZip finds the named member in a zip archive.
func extractFromZip(archivePath, binaryName, destPath string) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open zip archive %s: %w", archivePath, err)
	}
	defer r.Close()

	for _, f := range r.File {
		if f.FileInfo().IsDir() || filepath.Base(f.Name) != binaryName {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("failed to read %s from zip: %w", f.Name, err)
		}
		err = writeBinary(rc, destPath)
		rc.Close()
		return err
	}
	return fmt.Errorf("%s binary not found in archive %s", binaryName, archivePath)
}

// extractFrom7z finds the named member in a 7z archive.
func extractFrom7z(archivePath, binaryName, destPath string) error {
	r, err := sevenzip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open 7z archive %s: %w", archivePath, err)
	}
	defer r.Close()

	for _, f := range r.File {
		if f.FileInfo().IsDir() || filepath.Base(f.Name) != binaryName {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("failed to read %s from 7z: %w", f.Name, err)
		}
		err = writeBinary(rc, destPath)
		rc.Close()
		return err
	}
	return fmt.Errorf("%s binary not found in archive %s", binaryName, archivePath)
}

// writeBinary copies the member contents to destPath and marks it executable.
func writeBinary(r io.Reader, destPath string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", destPath, err)
	}
	out, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0755)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", destPath, err)
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return fmt.Errorf("failed to write %s: %w", destPath, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", destPath, err)
	}
	return os.Chmod(destPath, 0755)
}
