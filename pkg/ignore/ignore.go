// Package ignore provides gitignore-based file filtering using go-git
package ignore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	gitignore "github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// FileName is the project-level ignore file read after git's own.
const FileName = ".nuspecgenignore"

// Matcher provides gitignore-based file filtering for one project root.
type Matcher struct {
	matcher gitignore.Matcher
}

// NewMatcher creates a matcher with layered ignore files, later layers
// overriding earlier ones:
// 1. the .git directory
// 2. .gitignore files anywhere under root and .git/info/exclude
// 3. root/.nuspecgenignore
func NewMatcher(root string) (*Matcher, error) {
	fs := osfs.New(root)

	patterns := []gitignore.Pattern{gitignore.ParsePattern(".git/", nil)}

	// ReadPatterns with nil reads .gitignore files recursively and .git/info/exclude
	gitPatterns, err := gitignore.ReadPatterns(fs, nil)
	if err != nil {
		return nil, fmt.Errorf("read ignore files under %s: %w", root, err)
	}
	patterns = append(patterns, gitPatterns...)

	own, err := readIgnoreFile(filepath.Join(root, FileName))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	for _, p := range own {
		patterns = append(patterns, gitignore.ParsePattern(p, nil))
	}

	return &Matcher{matcher: gitignore.NewMatcher(patterns)}, nil
}

// readIgnoreFile reads patterns from a text file in .gitignore syntax
func readIgnoreFile(path string) ([]string, error) {
	content, err := os.ReadFile(filepath.Clean(path)) // #nosec G304 -- fixed name under the project root
	if err != nil {
		return nil, err
	}

	var patterns []string
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns, nil
}

// Match reports whether the slash-separated path, relative to the matcher's
// root, is ignored.
func (m *Matcher) Match(rel string, isDir bool) bool {
	parts := splitPath(rel)
	if len(parts) == 0 {
		return false
	}
	return m.matcher.Match(parts, isDir)
}

// Excludes reports whether the file at rel is ignored.
func (m *Matcher) Excludes(rel string) bool {
	return m.Match(rel, false)
}

// splitPath converts a slash-separated path into components for go-git matching
func splitPath(path string) []string {
	path = strings.TrimPrefix(filepath.ToSlash(path), "/")
	if path == "" || path == "." {
		return nil
	}

	parts := strings.Split(path, "/")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" && part != "." {
			result = append(result, part)
		}
	}
	return result
}
