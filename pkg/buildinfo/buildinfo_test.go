package buildinfo

import (
	"runtime/debug"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBinaryVersionDefault(t *testing.T) {
	assert.Equal(t, "dev", BinaryVersion)
}

func TestModuleVersionMatchesBuildInfo(t *testing.T) {
	expected := ""
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		expected = info.Main.Version
	}
	assert.Equal(t, expected, ModuleVersion())
}

func TestVersionPrefersLdflags(t *testing.T) {
	orig := BinaryVersion
	t.Cleanup(func() { BinaryVersion = orig })

	BinaryVersion = "v1.4.0"
	assert.Equal(t, "v1.4.0", Version())
}

func TestUserAgent(t *testing.T) {
	ua := UserAgent()
	assert.True(t, strings.HasPrefix(ua, "nuspecgen/"))
	assert.NotEqual(t, "nuspecgen/", ua)
}
