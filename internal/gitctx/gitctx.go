// Package gitctx derives the hosting repository of a project from its git
// metadata.
package gitctx

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/fulmenhq/nuspecgen/pkg/github"
	git "github.com/go-git/go-git/v5"
)

// DefaultRemote is the remote consulted when none is named.
const DefaultRemote = "origin"

var (
	// ErrNotRepository indicates the target is not inside a git work tree.
	ErrNotRepository = errors.New("not a git repository")
	// ErrNoRemote indicates the named remote is not configured.
	ErrNoRemote = errors.New("remote not configured")
	// ErrNotGitHub indicates a remote that does not point at github.com.
	ErrNotGitHub = errors.New("remote is not a GitHub repository")
)

// RemoteContext captures the git facts used to pick a repository identifier.
type RemoteContext struct {
	Root       string              `json:"root"`
	Remote     string              `json:"remote"`
	URL        string              `json:"url"`
	Branch     string              `json:"branch,omitempty"`
	Repository github.RepositoryID `json:"-"`
}

// Detect opens the repository containing target, searching parent
// directories, and resolves remoteName to a GitHub owner/name.
func Detect(target, remoteName string) (*RemoteContext, error) {
	if remoteName == "" {
		remoteName = DefaultRemote
	}

	repo, err := git.PlainOpenWithOptions(target, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%s: %w", target, ErrNotRepository)
		}
		return nil, fmt.Errorf("open git repository at %s: %w", target, err)
	}

	remote, err := repo.Remote(remoteName)
	if err != nil {
		if errors.Is(err, git.ErrRemoteNotFound) {
			return nil, fmt.Errorf("%s: %w", remoteName, ErrNoRemote)
		}
		return nil, err
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return nil, fmt.Errorf("%s has no URL: %w", remoteName, ErrNoRemote)
	}

	id, err := ParseRemoteURL(urls[0])
	if err != nil {
		return nil, err
	}

	ctx := &RemoteContext{Remote: remoteName, URL: urls[0], Repository: id}
	if wt, err := repo.Worktree(); err == nil {
		ctx.Root = wt.Filesystem.Root()
	}
	// An unborn HEAD has no branch yet
	if head, err := repo.Head(); err == nil {
		ctx.Branch = head.Name().Short()
	}
	return ctx, nil
}

// ParseRemoteURL extracts owner/name from the remote URL forms git accepts
// for github.com: scp-like ssh, ssh://, git://, http(s)://.
func ParseRemoteURL(raw string) (github.RepositoryID, error) {
	raw = strings.TrimSpace(raw)
	var host, path string

	if !strings.Contains(raw, "://") {
		// scp-like: [user@]host:owner/name
		at := strings.LastIndex(raw, "@")
		rest := raw[at+1:]
		colon := strings.Index(rest, ":")
		if colon < 0 {
			return github.RepositoryID{}, fmt.Errorf("%w: %q", ErrNotGitHub, raw)
		}
		host, path = rest[:colon], rest[colon+1:]
	} else {
		u, err := url.Parse(raw)
		if err != nil {
			return github.RepositoryID{}, fmt.Errorf("%w: %q", ErrNotGitHub, raw)
		}
		switch u.Scheme {
		case "ssh", "git", "http", "https", "git+ssh":
		default:
			return github.RepositoryID{}, fmt.Errorf("%w: unsupported scheme %q", ErrNotGitHub, u.Scheme)
		}
		host, path = u.Hostname(), u.Path
	}

	host = strings.ToLower(host)
	if host != "github.com" && host != "www.github.com" {
		return github.RepositoryID{}, fmt.Errorf("%w: host %q", ErrNotGitHub, host)
	}

	id, err := github.ParseRepositoryID(strings.TrimPrefix(path, "/"))
	if err != nil {
		return github.RepositoryID{}, fmt.Errorf("%w: %v", ErrNotGitHub, err)
	}
	return id, nil
}
