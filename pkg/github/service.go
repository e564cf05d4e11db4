package github

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/fulmenhq/nuspecgen/pkg/remote"
)

// DefaultAPIURL is the public GitHub REST endpoint.
const DefaultAPIURL = "https://api.github.com"

// ErrNoLicense indicates the repository has no detectable license, so there is
// no license resource to look up.
var ErrNoLicense = errors.New("repository reports no license")

// ErrInvalidRepositoryID indicates an identifier that is not owner/name.
var ErrInvalidRepositoryID = errors.New("repository identifier must be owner/name")

var repoPart = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// RepositoryID is an owner/name pair.
type RepositoryID struct {
	Owner string
	Name  string
}

func (id RepositoryID) String() string {
	return id.Owner + "/" + id.Name
}

// ParseRepositoryID accepts "owner/name", "github.com/owner/name" and
// "https://github.com/owner/name(.git)".
func ParseRepositoryID(s string) (RepositoryID, error) {
	repo := strings.TrimSpace(s)
	repo = strings.TrimPrefix(repo, "https://")
	repo = strings.TrimPrefix(repo, "http://")
	repo = strings.TrimPrefix(repo, "github.com/")
	repo = strings.TrimSuffix(repo, "/")
	repo = strings.TrimSuffix(repo, ".git")

	parts := strings.Split(repo, "/")
	if len(parts) != 2 || !repoPart.MatchString(parts[0]) || !repoPart.MatchString(parts[1]) {
		return RepositoryID{}, fmt.Errorf("%w: %q", ErrInvalidRepositoryID, s)
	}
	return RepositoryID{Owner: parts[0], Name: parts[1]}, nil
}

// Getter fetches a JSON resource. *remote.Client satisfies it.
type Getter interface {
	Get(ctx context.Context, url string) (*remote.Resource, error)
}

// Service performs the typed lookups.
type Service struct {
	client Getter
	apiURL string
}

// NewService creates a Service. An empty apiURL selects DefaultAPIURL.
func NewService(client Getter, apiURL string) *Service {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	return &Service{client: client, apiURL: strings.TrimSuffix(apiURL, "/")}
}

// RepositoryURL is the API URL of the repository resource.
func (s *Service) RepositoryURL(id RepositoryID) string {
	return fmt.Sprintf("%s/repos/%s/%s", s.apiURL, id.Owner, id.Name)
}

// Repository fetches the repository resource.
func (s *Service) Repository(ctx context.Context, id RepositoryID) (*Repository, error) {
	var repo Repository
	if err := s.fetch(ctx, "repository", s.RepositoryURL(id), &repo); err != nil {
		return nil, err
	}
	return &repo, nil
}

// Owner fetches the repository owner's profile through the embedded owner URL.
func (s *Service) Owner(ctx context.Context, repo *Repository) (*Owner, error) {
	var owner Owner
	if err := s.fetch(ctx, "owner", repo.Owner.URL, &owner); err != nil {
		return nil, err
	}
	return &owner, nil
}

// License fetches the full license resource through the embedded license URL.
func (s *Service) License(ctx context.Context, repo *Repository) (*License, error) {
	if repo.License == nil || repo.License.URL == "" {
		return nil, fmt.Errorf("%s: %w", repo.FullName, ErrNoLicense)
	}
	var lic License
	if err := s.fetch(ctx, "license", repo.License.URL, &lic); err != nil {
		return nil, err
	}
	return &lic, nil
}

// HeadCommit fetches the default branch, whose commit is the branch head.
func (s *Service) HeadCommit(ctx context.Context, repo *Repository) (*Branch, error) {
	var branch Branch
	url := ExpandBranchURL(repo.BranchesURL, repo.DefaultBranch)
	if err := s.fetch(ctx, "branch", url, &branch); err != nil {
		return nil, err
	}
	return &branch, nil
}

// Tags fetches the tag list in API order.
func (s *Service) Tags(ctx context.Context, repo *Repository) ([]Tag, error) {
	var tags []Tag
	if err := s.fetch(ctx, "tags", repo.TagsURL, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

func (s *Service) fetch(ctx context.Context, resource, url string, v any) error {
	if url == "" {
		return &SchemaError{Resource: resource, Problems: []string{"no URL to fetch"}}
	}
	res, err := s.client.Get(ctx, url)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", resource, err)
	}
	if err := validate(resource, url, res.Raw); err != nil {
		return err
	}
	if err := res.Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", resource, err)
	}
	return nil
}

// ExpandBranchURL fills the "{/branch}" variable of a repository's
// branches_url. Templates without the variable get the branch appended.
func ExpandBranchURL(template, branch string) string {
	const variable = "{/branch}"
	if strings.Contains(template, variable) {
		return strings.Replace(template, variable, "/"+branch, 1)
	}
	return strings.TrimSuffix(template, "/") + "/" + branch
}

// TagNames returns the names of tags in order.
func TagNames(tags []Tag) []string {
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name)
	}
	return names
}
