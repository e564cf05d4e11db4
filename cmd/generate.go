/*
Copyright © 2025 3 Leaps <info@3leaps.com>
*/
package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fulmenhq/nuspecgen/internal/gitctx"
	"github.com/fulmenhq/nuspecgen/pkg/buildinfo"
	"github.com/fulmenhq/nuspecgen/pkg/config"
	"github.com/fulmenhq/nuspecgen/pkg/github"
	"github.com/fulmenhq/nuspecgen/pkg/logger"
	"github.com/fulmenhq/nuspecgen/pkg/remote"
	"github.com/fulmenhq/nuspecgen/pkg/report"
	"github.com/fulmenhq/nuspecgen/pkg/resolver"
	"github.com/fulmenhq/nuspecgen/pkg/safeio"
	"github.com/fulmenhq/nuspecgen/pkg/scaffold"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func addGenerateFlags(fs *pflag.FlagSet) {
	fs.StringP("project", "p", "", "Project directory to generate the descriptor in (required)")
	fs.StringP("github", "g", "", "GitHub repository as owner/name (required unless --from-git)")
	fs.BoolP("force", "f", false, "Overwrite an existing descriptor")
	fs.Bool("from-git", false, "Derive the repository from the project's git remote")
	fs.String("remote", gitctx.DefaultRemote, "Git remote consulted by --from-git")
	fs.String("output-format", string(report.FormatText), "Format for the resolved fields: text, json, yaml, toml")
	fs.Bool("respect-ignore", false, "Skip version and icon candidates excluded by .gitignore or .nuspecgenignore")
}

// generateOptions are the validated command line inputs.
type generateOptions struct {
	project    resolver.Project
	configFile string
	noOp       bool
	format     report.Format
	// render prints the resolved fields after the run
	render bool
	// respectIgnore overrides probe.respect_ignore when non-nil
	respectIgnore *bool
}

func parseGenerateOptions(cmd *cobra.Command) (*generateOptions, error) {
	projectFlag, _ := cmd.Flags().GetString("project")
	repoFlag, _ := cmd.Flags().GetString("github")
	force, _ := cmd.Flags().GetBool("force")
	fromGit, _ := cmd.Flags().GetBool("from-git")
	remoteName, _ := cmd.Flags().GetString("remote")
	formatFlag, _ := cmd.Flags().GetString("output-format")
	configFile, _ := cmd.Flags().GetString("config")
	noOp, _ := cmd.Flags().GetBool("no-op")

	if strings.TrimSpace(projectFlag) == "" {
		return nil, usageErrorf("--project is required")
	}
	projectPath, err := filepath.Abs(projectFlag)
	if err != nil {
		return nil, newUsageError(fmt.Errorf("invalid project path %q: %w", projectFlag, err))
	}
	if !safeio.IsDir(projectPath) {
		return nil, usageErrorf("project path %s does not exist or is not a directory", projectPath)
	}

	format, err := report.ParseFormat(formatFlag)
	if err != nil {
		return nil, newUsageError(err)
	}

	var repo github.RepositoryID
	switch {
	case repoFlag != "" && fromGit:
		return nil, usageErrorf("--github and --from-git are mutually exclusive")
	case repoFlag != "":
		if repo, err = github.ParseRepositoryID(repoFlag); err != nil {
			return nil, newUsageError(err)
		}
	case fromGit:
		detected, err := gitctx.Detect(projectPath, remoteName)
		if err != nil {
			return nil, newUsageError(fmt.Errorf("--from-git: %w", err))
		}
		logger.Info("Using repository from git remote",
			logger.String("remote", detected.Remote), logger.String("repository", detected.Repository.String()))
		repo = detected.Repository
	default:
		return nil, usageErrorf("--github is required (or use --from-git)")
	}

	opts := &generateOptions{
		project:    resolver.Project{Path: projectPath, Repository: repo, Force: force},
		configFile: configFile,
		noOp:       noOp,
		format:     format,
		render:     noOp || cmd.Flags().Changed("output-format"),
	}
	if cmd.Flags().Changed("respect-ignore") {
		respect, _ := cmd.Flags().GetBool("respect-ignore")
		opts.respectIgnore = &respect
	}
	return opts, nil
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	opts, err := parseGenerateOptions(cmd)
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfig(config.LoadOptions{ConfigFile: opts.configFile, ProjectDir: opts.project.Path})
	if err != nil {
		return &configError{err: err}
	}

	// The proxy is checked before the scaffolding tool runs so a bad
	// environment leaves the project untouched.
	clientOpts, err := cfg.ClientOptions(buildinfo.UserAgent())
	if err != nil {
		return err
	}
	client, err := remote.NewClient(clientOpts)
	if err != nil {
		return err
	}
	logger.Debug("Remote client ready", logger.String("proxy", clientOpts.Proxy.String()), logger.String("api", cfg.GitHub.APIURL))

	invoker := scaffold.NewInvoker(scaffold.NewLocalExecutor(cfg.Scaffold.SearchPaths...))
	pipelineOpts := cfg.PipelineOptions(opts.noOp)
	if opts.respectIgnore != nil {
		pipelineOpts.RespectIgnore = *opts.respectIgnore
	}
	pipeline, err := resolver.NewPipeline(invoker, github.NewService(client, cfg.GitHub.APIURL), pipelineOpts)
	if err != nil {
		return err
	}

	outcome, err := pipeline.Resolve(cmd.Context(), opts.project)
	if err != nil {
		return err
	}

	if opts.render {
		return report.Render(cmd.OutOrStdout(), opts.format, report.FromOutcome(outcome))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", outcome.DescriptorPath)
	return nil
}
