/*
Copyright © 2025 3 Leaps <info@3leaps.com>
*/

// Package scaffold runs the external descriptor scaffolding tool and works out
// which file it produced.
package scaffold

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/fulmenhq/nuspecgen/pkg/logger"
)

// Tool and arguments for `nuget spec`.
const (
	DefaultTool  = "nuget"
	SpecCommand  = "spec"
	ForceFlag    = "-force"
	SpecFileExt  = ".nuspec"
	fallbackSpec = "Package" + SpecFileExt
)

// SpecArgs returns the argument list for `nuget spec`, with -force when
// regenerating over an existing descriptor.
func SpecArgs(force bool) []string {
	if force {
		return []string{SpecCommand, ForceFlag}
	}
	return []string{SpecCommand}
}

// ErrNoAnnouncement indicates tool output without a single-quoted file name.
var ErrNoAnnouncement = errors.New("tool output does not name a generated file")

// OutputError is returned when the generated file cannot be identified from
// the tool's output.
type OutputError struct {
	Tool     string
	ExitCode int
	Output   string
	Wrapped  error
}

func (e *OutputError) Error() string {
	out := strings.TrimSpace(e.Output)
	if out == "" {
		out = "<no output>"
	}
	return fmt.Sprintf("%s exited %d: %v\n%s", e.Tool, e.ExitCode, e.Wrapped, out)
}

func (e *OutputError) Unwrap() error {
	return e.Wrapped
}

// OutputLine is one captured stream. Text holds the whole stream.
type OutputLine struct {
	Stdout bool
	Text   string
}

// Result is the outcome of a scaffolding run.
type Result struct {
	GeneratedFileName string
	Output            []OutputLine
	ExitCode          int
	// Conventional is set when the name came from ConventionalFileName
	// rather than from the tool's output
	Conventional bool
}

// CombinedOutput joins the captured streams, stdout first.
func (r *Result) CombinedOutput() string {
	return joinOutput(r.Output)
}

func joinOutput(lines []OutputLine) string {
	texts := make([]string, 0, len(lines))
	for _, l := range lines {
		texts = append(texts, l.Text)
	}
	return strings.Join(texts, "\n")
}

var quotedToken = regexp.MustCompile(`'([^'\r\n]*)'`)

// ExtractGeneratedFileName returns the first single-quoted token in output.
// nuget announces the descriptor as "Created 'Foo.nuspec' successfully." or
// "'Foo.nuspec' already exists, use -Force to overwrite it.".
func ExtractGeneratedFileName(output string) (string, error) {
	m := quotedToken.FindStringSubmatch(output)
	if m == nil || strings.TrimSpace(m[1]) == "" {
		return "", ErrNoAnnouncement
	}
	return m[1], nil
}

// ConventionalFileName is the name nuget spec gives the descriptor in dir:
// <project>.nuspec when dir holds exactly one .csproj, Package.nuspec
// otherwise.
func ConventionalFileName(dir string) string {
	projects, err := filepath.Glob(filepath.Join(dir, "*.csproj"))
	if err != nil || len(projects) != 1 {
		return fallbackSpec
	}
	base := filepath.Base(projects[0])
	return strings.TrimSuffix(base, filepath.Ext(base)) + SpecFileExt
}

// EnsureTrailingSeparator appends the OS path separator when missing.
func EnsureTrailingSeparator(dir string) string {
	if dir == "" || strings.HasSuffix(dir, string(os.PathSeparator)) {
		return dir
	}
	return dir + string(os.PathSeparator)
}

// Invoker runs the scaffolding tool.
type Invoker struct {
	executor ToolExecutor
}

// NewInvoker creates an Invoker on top of executor.
func NewInvoker(executor ToolExecutor) *Invoker {
	return &Invoker{executor: executor}
}

// Run executes tool with args in workDir, waits for it, and identifies the
// file it generated. The name announced in the output wins; when there is
// none, the conventional name is accepted only if the tool exited zero and
// that file exists.
func (i *Invoker) Run(ctx context.Context, tool string, args []string, workDir string) (*Result, error) {
	workDir = EnsureTrailingSeparator(workDir)

	res, err := i.executor.Execute(ctx, ExecuteOptions{Tool: tool, Args: args, WorkDir: workDir})
	if err != nil {
		return nil, err
	}

	result := &Result{ExitCode: res.ExitCode}
	if len(res.Stdout) > 0 {
		result.Output = append(result.Output, OutputLine{Stdout: true, Text: string(res.Stdout)})
	}
	if len(res.Stderr) > 0 {
		result.Output = append(result.Output, OutputLine{Stdout: false, Text: string(res.Stderr)})
	}

	combined := result.CombinedOutput()
	if res.ExitCode != 0 {
		logger.Warn("scaffolding tool exited non-zero", logger.String("tool", tool), logger.Int("exit_code", res.ExitCode))
	}

	name, err := ExtractGeneratedFileName(combined)
	if err == nil {
		result.GeneratedFileName = name
		return result, nil
	}

	if res.ExitCode != 0 {
		return nil, &OutputError{Tool: tool, ExitCode: res.ExitCode, Output: combined, Wrapped: err}
	}

	conventional := ConventionalFileName(workDir)
	if _, statErr := os.Stat(filepath.Join(workDir, conventional)); statErr == nil {
		logger.Warn("tool output names no file, using conventional descriptor name",
			logger.String("tool", tool), logger.String("file", conventional))
		result.GeneratedFileName = conventional
		result.Conventional = true
		return result, nil
	}

	return nil, &OutputError{Tool: tool, ExitCode: res.ExitCode, Output: combined, Wrapped: err}
}
