// Package probe searches a project tree for the local files that feed the
// descriptor: the assembly info source (version) and the package icon.
package probe

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fulmenhq/nuspecgen/pkg/logger"
	"github.com/fulmenhq/nuspecgen/pkg/safeio"
)

// Defaults for the probes.
const (
	DefaultVersionFile = "AssemblyInfo.cs"
	DefaultVersion     = "1.0.0"
	DefaultIconFile    = "logo.png"
)

// ErrNotFound is returned when no file matches.
var ErrNotFound = errors.New("file not found")

var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`, `{`, `\{`, `}`, `\}`)

var assemblyFileVersion = regexp.MustCompile(`(?i)\[\s*assembly\s*:\s*AssemblyFileVersion\s*\(\s*"([0-9]+\.[0-9]+\.[0-9]+\.[0-9]+)"\s*\)\s*\]`)

// Prober searches one project tree.
type Prober struct {
	Root string
	// Exclude, when set, drops candidates by their slash-separated
	// root-relative path
	Exclude func(rel string) bool
}

// FindFile returns the slash-separated path, relative to root, of the first
// file named exactly name anywhere under root. Candidates are ordered
// shallowest first, then lexically, so the result does not depend on
// directory iteration order.
func FindFile(root, name string) (string, error) {
	return Prober{Root: root}.FindFile(name)
}

// FindFile is FindFile limited to candidates Exclude lets through.
func (p Prober) FindFile(name string) (string, error) {
	pattern := "**/" + globEscaper.Replace(name)
	matches, err := doublestar.Glob(os.DirFS(p.Root), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return "", fmt.Errorf("search %s for %s: %w", p.Root, name, err)
	}

	if p.Exclude != nil {
		kept := matches[:0]
		for _, m := range matches {
			if p.Exclude(m) {
				logger.Debug("skipping ignored candidate", logger.String("path", m))
				continue
			}
			kept = append(kept, m)
		}
		matches = kept
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("%s under %s: %w", name, p.Root, ErrNotFound)
	}

	sort.Slice(matches, func(i, j int) bool {
		di, dj := depth(matches[i]), depth(matches[j])
		if di != dj {
			return di < dj
		}
		return matches[i] < matches[j]
	})
	return matches[0], nil
}

func depth(p string) int {
	return strings.Count(p, "/")
}

// ExtractFileVersion returns the four-part AssemblyFileVersion declared in an
// assembly info source, or false when there is none.
func ExtractFileVersion(source string) (string, bool) {
	m := assemblyFileVersion.FindStringSubmatch(source)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// VersionResult describes where a version came from.
type VersionResult struct {
	Version string
	// Source is the project-relative file the version was read from; empty
	// when the default was used
	Source string
}

// ProbeVersion finds fileName under root and extracts its file version,
// falling back to def when the file is absent or declares no version.
func ProbeVersion(root, fileName, def string) (VersionResult, error) {
	return Prober{Root: root}.Version(fileName, def)
}

// Version is ProbeVersion over the Prober's tree.
func (p Prober) Version(fileName, def string) (VersionResult, error) {
	rel, err := p.FindFile(fileName)
	if errors.Is(err, ErrNotFound) {
		logger.Debug("no version source found, using default", logger.String("file", fileName), logger.String("version", def))
		return VersionResult{Version: def}, nil
	}
	if err != nil {
		return VersionResult{}, err
	}

	data, err := safeio.ReadFileContained(p.Root, filepath.FromSlash(rel))
	if err != nil {
		return VersionResult{}, fmt.Errorf("read %s: %w", rel, err)
	}

	v, ok := ExtractFileVersion(string(data))
	if !ok {
		logger.Warn("version source declares no AssemblyFileVersion, using default",
			logger.String("file", rel), logger.String("version", def))
		return VersionResult{Version: def}, nil
	}
	return VersionResult{Version: v, Source: rel}, nil
}

// ProbeIcon reports the project-relative path of the icon file, or "" when
// there is none.
func ProbeIcon(root, fileName string) (string, error) {
	return Prober{Root: root}.Icon(fileName)
}

// Icon is ProbeIcon over the Prober's tree.
func (p Prober) Icon(fileName string) (string, error) {
	rel, err := p.FindFile(fileName)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return rel, nil
}
