/*
Copyright © 2025 3 Leaps <info@3leaps.com>
*/
package scaffold

import (
	"context"
	"errors"
)

// ErrToolNotFound indicates the scaffolding executable is not installed.
var ErrToolNotFound = errors.New("tool not found")

// ExecuteOptions configures tool execution
type ExecuteOptions struct {
	// Tool name (e.g., "nuget")
	Tool string

	// Args to pass to the tool
	Args []string

	// WorkDir is the working directory (defaults to current directory)
	WorkDir string
}

// ExecuteResult contains the output of tool execution
type ExecuteResult struct {
	// ExitCode from the tool
	ExitCode int

	// Stdout contains standard output
	Stdout []byte

	// Stderr contains standard error
	Stderr []byte
}

// ToolExecutor executes external tools
type ToolExecutor interface {
	// Execute runs a tool and waits for it to exit. A non-zero exit is
	// reported through ExecuteResult.ExitCode, not as an error.
	Execute(ctx context.Context, opts ExecuteOptions) (*ExecuteResult, error)
}
