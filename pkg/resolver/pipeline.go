package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fulmenhq/nuspecgen/pkg/descriptor"
	"github.com/fulmenhq/nuspecgen/pkg/github"
	"github.com/fulmenhq/nuspecgen/pkg/ignore"
	"github.com/fulmenhq/nuspecgen/pkg/logger"
	"github.com/fulmenhq/nuspecgen/pkg/probe"
	"github.com/fulmenhq/nuspecgen/pkg/safeio"
	"github.com/fulmenhq/nuspecgen/pkg/scaffold"
)

// DefaultIconFallbackURL is used when the project has no icon file.
const DefaultIconFallbackURL = "https://upload.wikimedia.org/wikipedia/commons/thumb/2/25/NuGet_project_logo.svg/220px-NuGet_project_logo.svg.png"

// DefaultIconTemplate points at the icon file on the default branch.
const DefaultIconTemplate = "https://raw.githubusercontent.com/{{repository}}/{{branch}}/{{path}}"

// ErrInvalidProject indicates a project that fails basic checks.
var ErrInvalidProject = errors.New("invalid project")

// Scaffolder runs the scaffolding tool. *scaffold.Invoker satisfies it.
type Scaffolder interface {
	Run(ctx context.Context, tool string, args []string, workDir string) (*scaffold.Result, error)
}

// MetadataSource performs the remote lookups. *github.Service satisfies it.
type MetadataSource interface {
	Repository(ctx context.Context, id github.RepositoryID) (*github.Repository, error)
	Owner(ctx context.Context, repo *github.Repository) (*github.Owner, error)
	License(ctx context.Context, repo *github.Repository) (*github.License, error)
	HeadCommit(ctx context.Context, repo *github.Repository) (*github.Branch, error)
	Tags(ctx context.Context, repo *github.Repository) ([]github.Tag, error)
}

// Project is the validated input of a run.
type Project struct {
	// Path is the project directory
	Path       string
	Repository github.RepositoryID
	// Force lets the scaffolding tool overwrite an existing descriptor
	Force bool
}

// Options tunes a Pipeline. Zero values select the defaults.
type Options struct {
	Tool      string
	ExtraArgs []string

	IconFileName    string
	IconTemplate    string
	IconFallbackURL string

	VersionFile    string
	DefaultVersion string

	// RespectIgnore skips probe candidates excluded by the project's
	// .gitignore files or .nuspecgenignore
	RespectIgnore bool

	// NoOp resolves every field without saving the descriptor
	NoOp bool
}

func (o Options) withDefaults() Options {
	if o.Tool == "" {
		o.Tool = scaffold.DefaultTool
	}
	if o.IconFileName == "" {
		o.IconFileName = probe.DefaultIconFile
	}
	if o.IconTemplate == "" {
		o.IconTemplate = DefaultIconTemplate
	}
	if o.IconFallbackURL == "" {
		o.IconFallbackURL = DefaultIconFallbackURL
	}
	if o.VersionFile == "" {
		o.VersionFile = probe.DefaultVersionFile
	}
	if o.DefaultVersion == "" {
		o.DefaultVersion = probe.DefaultVersion
	}
	return o
}

// Outcome describes a completed run.
type Outcome struct {
	DescriptorPath string
	Metadata       Metadata
	Scaffold       *scaffold.Result
	// VersionSource is the file the version came from, empty for the default
	VersionSource string
	// IconPath is the icon file found in the project, empty for the fallback
	IconPath string
	Saved    bool
}

// Pipeline resolves and writes descriptor metadata.
type Pipeline struct {
	scaffolder Scaffolder
	source     MetadataSource
	opts       Options
	icon       *iconTemplate
}

// NewPipeline creates a Pipeline. The icon template is parsed up front.
func NewPipeline(scaffolder Scaffolder, source MetadataSource, opts Options) (*Pipeline, error) {
	opts = opts.withDefaults()
	icon, err := parseIconTemplate(opts.IconTemplate)
	if err != nil {
		return nil, err
	}
	return &Pipeline{scaffolder: scaffolder, source: source, opts: opts, icon: icon}, nil
}

// Resolve runs the whole pipeline for project.
func (p *Pipeline) Resolve(ctx context.Context, project Project) (*Outcome, error) {
	if !safeio.IsDir(project.Path) {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrInvalidProject, project.Path)
	}

	args := append(scaffold.SpecArgs(project.Force), p.opts.ExtraArgs...)
	logger.Info("Scaffolding descriptor", logger.String("tool", p.opts.Tool), logger.String("project", project.Path))
	scaffolded, err := p.scaffolder.Run(ctx, p.opts.Tool, args, project.Path)
	if err != nil {
		return nil, fmt.Errorf("scaffold: %w", err)
	}

	path, err := safeio.JoinContained(project.Path, scaffolded.GeneratedFileName)
	if err != nil {
		return nil, fmt.Errorf("descriptor %q: %w", scaffolded.GeneratedFileName, err)
	}
	doc, err := descriptor.Load(path)
	if err != nil {
		return nil, err
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	logger.Debug("Loaded descriptor", logger.String("path", path))

	meta, err := p.remoteFields(ctx, project.Repository)
	if err != nil {
		return nil, err
	}

	outcome := &Outcome{DescriptorPath: path, Scaffold: scaffolded}

	prober, err := p.prober(project.Path)
	if err != nil {
		return nil, err
	}
	version, err := prober.Version(p.opts.VersionFile, p.opts.DefaultVersion)
	if err != nil {
		return nil, fmt.Errorf("probe version: %w", err)
	}
	outcome.VersionSource = version.Source

	iconURL, iconPath, err := p.iconURL(prober, project, meta.branch)
	if err != nil {
		return nil, err
	}
	outcome.IconPath = iconPath

	outcome.Metadata = Metadata{
		{descriptor.FieldID, meta.id},
		{descriptor.FieldVersion, version.Version},
		{descriptor.FieldTitle, meta.description},
		{descriptor.FieldAuthors, meta.owner},
		{descriptor.FieldOwners, meta.owner},
		{descriptor.FieldLicenseURL, meta.licenseURL},
		{descriptor.FieldProjectURL, meta.projectURL},
		{descriptor.FieldIconURL, iconURL},
		{descriptor.FieldDescription, meta.description},
		{descriptor.FieldReleaseNotes, meta.releaseNotes},
		{descriptor.FieldTags, meta.tags},
	}

	for _, f := range outcome.Metadata {
		if err := doc.SetField(f.Name, f.Value); err != nil {
			return nil, err
		}
	}

	if p.opts.NoOp {
		logger.Info("No-op mode, descriptor not saved", logger.String("path", path))
		return outcome, nil
	}
	if err := doc.Save(path); err != nil {
		return nil, fmt.Errorf("save descriptor: %w", err)
	}
	outcome.Saved = true
	logger.Info("Descriptor updated", logger.String("path", path), logger.Int("fields", len(outcome.Metadata)))
	return outcome, nil
}

type remoteMetadata struct {
	id           string
	description  string
	owner        string
	licenseURL   string
	projectURL   string
	releaseNotes string
	tags         string
	branch       string
}

func (p *Pipeline) remoteFields(ctx context.Context, id github.RepositoryID) (*remoteMetadata, error) {
	logger.Info("Fetching repository metadata", logger.String("repository", id.String()))
	repo, err := p.source.Repository(ctx, id)
	if err != nil {
		return nil, err
	}
	owner, err := p.source.Owner(ctx, repo)
	if err != nil {
		return nil, err
	}
	license, err := p.source.License(ctx, repo)
	if err != nil {
		return nil, err
	}
	head, err := p.source.HeadCommit(ctx, repo)
	if err != nil {
		return nil, err
	}
	tags, err := p.source.Tags(ctx, repo)
	if err != nil {
		return nil, err
	}

	if repo.Description == nil || *repo.Description == "" {
		logger.Warn("repository has no description, using its name", logger.String("repository", id.String()))
	}

	return &remoteMetadata{
		id:           repo.Name,
		description:  repo.DescriptionOr(repo.Name),
		owner:        owner.DisplayName(),
		licenseURL:   license.HTMLURL,
		projectURL:   repo.HTMLURL,
		releaseNotes: head.Commit.Commit.Message,
		tags:         strings.Join(github.TagNames(tags), " "),
		branch:       repo.DefaultBranch,
	}, nil
}

func (p *Pipeline) prober(root string) (probe.Prober, error) {
	prober := probe.Prober{Root: root}
	if !p.opts.RespectIgnore {
		return prober, nil
	}
	m, err := ignore.NewMatcher(root)
	if err != nil {
		return probe.Prober{}, err
	}
	prober.Exclude = m.Excludes
	return prober, nil
}

func (p *Pipeline) iconURL(prober probe.Prober, project Project, branch string) (string, string, error) {
	rel, err := prober.Icon(p.opts.IconFileName)
	if err != nil {
		return "", "", fmt.Errorf("probe icon: %w", err)
	}
	if rel == "" {
		logger.Debug("no icon file found, using fallback", logger.String("file", p.opts.IconFileName))
		return p.opts.IconFallbackURL, "", nil
	}
	url, err := p.icon.render(IconContext{
		Owner:  project.Repository.Owner,
		Name:   project.Repository.Name,
		Branch: branch,
		Path:   rel,
	})
	if err != nil {
		return "", "", err
	}
	return url, rel, nil
}
