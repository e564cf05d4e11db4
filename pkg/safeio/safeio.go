package safeio

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideBase is returned when a path resolves outside its base directory.
var ErrOutsideBase = errors.New("path is outside base directory")

// JoinContained joins name onto baseDir and returns the absolute result,
// rejecting names that escape baseDir (e.g. "../x.nuspec" or absolute paths
// pointing elsewhere).
func JoinContained(baseDir, name string) (string, error) {
	baseAbs, err := filepath.Abs(baseDir)
	if err != nil {
		return "", errors.New("failed to resolve base directory")
	}
	target := name
	if !filepath.IsAbs(target) {
		target = filepath.Join(baseAbs, name)
	}
	targetAbs, err := filepath.Abs(target)
	if err != nil {
		return "", errors.New("failed to resolve file path")
	}

	rel, err := filepath.Rel(baseAbs, targetAbs)
	if err != nil {
		return "", errors.New("failed to compute relative path")
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrOutsideBase
	}
	return targetAbs, nil
}

// ReadFileContained reads a file only if it is contained within baseDir.
func ReadFileContained(baseDir, filePath string) ([]byte, error) {
	abs, err := JoinContained(baseDir, filePath)
	if err != nil {
		return nil, err
	}
	// #nosec G304 -- abs has been verified to be contained within baseDir
	return os.ReadFile(abs)
}

// WriteFilePreservePerms writes data to path preserving existing file mode when possible.
// When the file does not exist, it uses a sane default of 0644.
func WriteFilePreservePerms(path string, data []byte) error {
	var mode os.FileMode = 0o644
	if st, err := os.Stat(path); err == nil {
		mode = st.Mode() & 0o777
		if mode == 0 {
			mode = 0o644
		}
	}
	return os.WriteFile(path, data, mode)
}

// IsDir reports whether path exists and is a directory.
func IsDir(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.IsDir()
}
