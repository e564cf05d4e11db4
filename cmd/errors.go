/*
Copyright © 2025 3 Leaps <info@3leaps.com>
*/
package cmd

import (
	"errors"
	"fmt"

	"github.com/fulmenhq/nuspecgen/pkg/descriptor"
	"github.com/fulmenhq/nuspecgen/pkg/exitcode"
	"github.com/fulmenhq/nuspecgen/pkg/github"
	"github.com/fulmenhq/nuspecgen/pkg/remote"
	"github.com/fulmenhq/nuspecgen/pkg/resolver"
	"github.com/fulmenhq/nuspecgen/pkg/scaffold"
)

// usageError marks a failure caused by the command line itself.
type usageError struct {
	err error
}

func newUsageError(err error) error {
	return &usageError{err: err}
}

func usageErrorf(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

func (e *usageError) Error() string { return e.err.Error() }

func (e *usageError) Unwrap() error { return e.err }

// configError marks a configuration file or environment problem.
type configError struct {
	err error
}

func (e *configError) Error() string { return e.err.Error() }

func (e *configError) Unwrap() error { return e.err }

// exitCodeFor maps an error from a run to the process exit code.
func exitCodeFor(err error) int {
	if err == nil {
		return exitcode.Success
	}

	var (
		usageErr    *usageError
		cfgErr      *configError
		remoteCfg   *remote.ConfigurationError
		outputErr   *scaffold.OutputError
		schemaErr   *github.SchemaError
		missingErr  *descriptor.MissingElementError
		templateErr *resolver.IconTemplateError
	)

	switch {
	case errors.As(err, &usageErr):
		return exitcode.UsageError
	case errors.As(err, &cfgErr), errors.As(err, &remoteCfg):
		return exitcode.ConfigError
	case errors.Is(err, scaffold.ErrToolNotFound):
		return exitcode.ToolNotFound
	case errors.As(err, &outputErr):
		return exitcode.ScaffoldError
	case remote.IsFetchError(err), errors.As(err, &schemaErr), errors.Is(err, github.ErrNoLicense):
		return exitcode.NetworkError
	case errors.As(err, &missingErr), errors.Is(err, descriptor.ErrNoMetadata), errors.As(err, &templateErr):
		return exitcode.TemplateError
	default:
		return exitcode.GeneralError
	}
}
