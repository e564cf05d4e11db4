/*
Copyright © 2025 3 Leaps <info@3leaps.com>
*/
package scaffold

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/fulmenhq/nuspecgen/pkg/logger"
)

// LocalExecutor runs tools installed on the local system
type LocalExecutor struct {
	shimDirs []string
}

// NewLocalExecutor creates a LocalExecutor that also searches extraDirs and
// the usual NuGet install locations after PATH.
func NewLocalExecutor(extraDirs ...string) *LocalExecutor {
	return &LocalExecutor{
		shimDirs: append(append([]string{}, extraDirs...), getShimDirectories()...),
	}
}

// Execute runs the tool locally
func (e *LocalExecutor) Execute(ctx context.Context, opts ExecuteOptions) (*ExecuteResult, error) {
	toolPath := e.FindToolPath(opts.Tool)
	if toolPath == "" {
		return nil, fmt.Errorf("%w: %s not found in PATH or known install directories", ErrToolNotFound, opts.Tool)
	}

	// #nosec G204 - toolPath is validated via FindToolPath
	cmd := exec.CommandContext(ctx, toolPath, opts.Args...)

	if opts.WorkDir != "" {
		cmd.Dir = opts.WorkDir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.Debug("running tool", logger.String("path", toolPath), logger.String("args", strings.Join(opts.Args, " ")), logger.String("dir", opts.WorkDir))

	err := cmd.Run()

	result := &ExecuteResult{
		Stdout: stdout.Bytes(),
		Stderr: stderr.Bytes(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return nil, fmt.Errorf("failed to execute %s: %w", opts.Tool, err)
	}

	return result, nil
}

// FindToolPath finds a tool by name, checking PATH first then known install
// directories. nuget is often installed as a dotnet global tool or through
// a Windows package manager whose shim directory is not on PATH.
func (e *LocalExecutor) FindToolPath(toolName string) string {
	if path, err := exec.LookPath(toolName); err == nil {
		return path
	}

	for _, shimDir := range e.shimDirs {
		if shimDir == "" {
			continue
		}
		candidate := filepath.Join(shimDir, toolName)
		if runtime.GOOS == "windows" && !strings.HasSuffix(candidate, ".exe") {
			candidate += ".exe"
		}
		if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
			logger.Debug(fmt.Sprintf("found %s in %s", toolName, shimDir))
			return candidate
		}
	}

	return ""
}

// getShimDirectories returns install directories that exist on this machine
func getShimDirectories() []string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil
	}

	candidates := []string{
		// dotnet tool install --global
		filepath.Join(homeDir, ".dotnet", "tools"),
	}

	if runtime.GOOS == "windows" {
		candidates = append(candidates, filepath.Join(homeDir, "scoop", "shims"))
		if programData := os.Getenv("ProgramData"); programData != "" {
			candidates = append(candidates, filepath.Join(programData, "chocolatey", "bin"))
		}
	} else {
		candidates = append(candidates, "/usr/local/bin", "/opt/homebrew/bin")
	}

	var dirs []string
	for _, dir := range candidates {
		if _, err := os.Stat(dir); err == nil {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}
