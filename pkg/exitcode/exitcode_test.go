package exitcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExitCodeValues(t *testing.T) {
	assert.Equal(t, 0, Success)
	assert.Equal(t, 1, GeneralError)
	assert.Equal(t, 2, ConfigError)
	assert.Equal(t, 3, UsageError)
	assert.Equal(t, 4, ScaffoldError)
	assert.Equal(t, 5, NetworkError)
	assert.Equal(t, 6, TemplateError)
	assert.Equal(t, 9, ToolNotFound)
}

func TestString(t *testing.T) {
	tests := []struct {
		code     int
		expected string
	}{
		{Success, "Success"},
		{GeneralError, "General error"},
		{ConfigError, "Configuration error"},
		{UsageError, "Invalid arguments"},
		{ScaffoldError, "Scaffolding tool error"},
		{NetworkError, "Remote metadata error"},
		{TemplateError, "Descriptor template error"},
		{ToolNotFound, "Tool not found"},
		{42, "Unknown error"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, String(tt.code), "code %d", tt.code)
	}
}
