// Package exitcode provides the process exit codes for nuspecgen
package exitcode

// Exit codes for the nuspecgen CLI. Any non-zero code means the descriptor was
// not completed; the finer codes only tell scripts which stage gave up.
const (
	Success       = 0
	GeneralError  = 1
	ConfigError   = 2
	UsageError    = 3
	ScaffoldError = 4
	NetworkError  = 5
	TemplateError = 6
	ToolNotFound  = 9
)

// String returns a human-readable description of the exit code
func String(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case ConfigError:
		return "Configuration error"
	case UsageError:
		return "Invalid arguments"
	case ScaffoldError:
		return "Scaffolding tool error"
	case NetworkError:
		return "Remote metadata error"
	case TemplateError:
		return "Descriptor template error"
	case ToolNotFound:
		return "Tool not found"
	default:
		return "Unknown error"
	}
}
