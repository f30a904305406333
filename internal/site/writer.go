package site

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/vaultmark/internal/foundation/errors"
)

// outputPath joins rel under dir, refusing anything that escapes it.
func outputPath(dir, rel string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(strings.TrimPrefix(rel, "/")))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", errors.ValidationError("output path escapes the output directory").
			WithContext("path", rel).Build()
	}
	return filepath.Join(dir, clean), nil
}

// writeFile replaces full atomically through a temporary sibling.
func writeFile(full string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "create output directory").
			WithContext("path", full).Build()
	}
	tmp, err := os.CreateTemp(filepath.Dir(full), ".vaultmark-*")
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "create temporary file").
			WithContext("path", full).Build()
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		return errors.WrapError(err, errors.CategoryFileSystem, "write output file").
			WithContext("path", full).Build()
	}
	if err := tmp.Close(); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "write output file").
			WithContext("path", full).Build()
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "chmod output file").
			WithContext("path", full).Build()
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "replace output file").
			WithContext("path", full).Build()
	}
	return nil
}

// copyAsset copies src to dst unless dst already has the same size and is not
// older. It reports whether a copy happened.
func copyAsset(src io.Reader, srcInfo os.FileInfo, dst string) (bool, error) {
	if info, err := os.Stat(dst); err == nil && info.Size() == srcInfo.Size() && !info.ModTime().Before(srcInfo.ModTime()) {
		return false, nil
	}
	data, err := io.ReadAll(src)
	if err != nil {
		return false, errors.WrapError(err, errors.CategoryFileSystem, "read asset").
			WithContext("path", dst).Build()
	}
	if err := writeFile(dst, data); err != nil {
		return false, err
	}
	return true, nil
}

