package cmd

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/fulmenhq/nuspecgen/pkg/descriptor"
	"github.com/fulmenhq/nuspecgen/pkg/exitcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAPI = "http://api.nuspecgen.test"

// fakeGitHub answers the lookups for acme/widget. It is reached as a
// forward proxy, so request URLs are absolute.
func fakeGitHub(t *testing.T, seen *[]string, auth *string) *httptest.Server {
	t.Helper()
	responses := map[string]string{
		"/repos/acme/widget": `{
			"name": "widget", "full_name": "acme/widget", "description": "A widget",
			"html_url": "https://github.com/acme/widget", "default_branch": "main",
			"branches_url": "` + testAPI + `/repos/acme/widget/branches{/branch}",
			"tags_url": "` + testAPI + `/repos/acme/widget/tags",
			"owner": {"login": "acme", "url": "` + testAPI + `/users/acme"},
			"license": {"key": "mit", "url": "` + testAPI + `/licenses/mit"}
		}`,
		"/users/acme":                     `{"login": "acme", "name": "Acme"}`,
		"/licenses/mit":                   `{"key": "mit", "html_url": "https://x/LICENSE"}`,
		"/repos/acme/widget/branches/main": `{"name": "main", "commit": {"sha": "abc", "commit": {"message": "Initial"}}}`,
		"/repos/acme/widget/tags":          `[{"name": "v1"}, {"name": "v2"}]`,
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*seen = append(*seen, r.URL.String())
		*auth = r.Header.Get("Proxy-Authorization")
		body, ok := responses[r.URL.Path]
		if !ok || r.URL.Host != "api.nuspecgen.test" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"Not Found"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

// fakeNuget writes a script that behaves like "nuget spec": it drops the
// template into the working directory and announces it.
func fakeNuget(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script tool stand-in")
	}
	template, err := filepath.Abs(filepath.Join("testdata", "Package.nuspec"))
	require.NoError(t, err)

	script := filepath.Join(t.TempDir(), "nuget")
	body := "#!/bin/sh\ncp '" + template + "' Package.nuspec\necho \"Created 'Package.nuspec' successfully.\"\n"
	require.NoError(t, os.WriteFile(script, []byte(body), 0o755))
	return script
}

func setupEndToEnd(t *testing.T) (project string, seen *[]string, auth *string) {
	t.Helper()
	isolateEnv(t)
	seen, auth = new([]string), new(string)
	proxy := fakeGitHub(t, seen, auth)
	pu, err := url.Parse(proxy.URL)
	require.NoError(t, err)

	t.Setenv("HTTP_PROXY", "http://alice:s3cret@"+pu.Host)
	t.Setenv("NUSPECGEN_GITHUB_API_URL", testAPI)
	t.Setenv("NUSPECGEN_SCAFFOLD_TOOL", fakeNuget(t))

	project = t.TempDir()
	props := filepath.Join(project, "Properties")
	require.NoError(t, os.MkdirAll(props, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(props, "AssemblyInfo.cs"),
		[]byte(`[assembly: AssemblyFileVersion("1.2.3.0")]`), 0o644))
	return project, seen, auth
}

func TestRun_EndToEnd(t *testing.T) {
	project, seen, auth := setupEndToEnd(t)

	code, out, _ := executeCommand(t, "-p", project, "-g", "acme/widget")
	require.Equal(t, exitcode.Success, code, out)

	path := filepath.Join(project, "Package.nuspec")
	assert.Contains(t, out, "Updated "+path)

	doc, err := descriptor.Load(path)
	require.NoError(t, err)
	want := map[string]string{
		"id":           "widget",
		"version":      "1.2.3.0",
		"title":        "A widget",
		"authors":      "Acme",
		"owners":       "Acme",
		"licenseUrl":   "https://x/LICENSE",
		"projectUrl":   "https://github.com/acme/widget",
		"iconUrl":      "https://upload.wikimedia.org/wikipedia/commons/thumb/2/25/NuGet_project_logo.svg/220px-NuGet_project_logo.svg.png",
		"description":  "A widget",
		"releaseNotes": "Initial",
		"tags":         "v1 v2",
	}
	for field, value := range want {
		got, err := doc.Field(field)
		require.NoError(t, err)
		assert.Equal(t, value, got, field)
	}

	assert.Equal(t, []string{
		testAPI + "/repos/acme/widget",
		testAPI + "/users/acme",
		testAPI + "/licenses/mit",
		testAPI + "/repos/acme/widget/branches/main",
		testAPI + "/repos/acme/widget/tags",
	}, *seen)
	assert.True(t, strings.HasPrefix(*auth, "Basic "))
}

func TestRun_NoOpRendersJSON(t *testing.T) {
	project, _, _ := setupEndToEnd(t)

	code, out, _ := executeCommand(t, "-p", project, "-g", "acme/widget", "--no-op", "--output-format", "json")
	require.Equal(t, exitcode.Success, code, out)

	var got struct {
		Descriptor string `json:"descriptor"`
		Saved      bool   `json:"saved"`
		Fields     []struct {
			Name  string `json:"name"`
			Value string `json:"value"`
		} `json:"fields"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.False(t, got.Saved)
	require.Len(t, got.Fields, len(descriptor.Fields))
	assert.Equal(t, "id", got.Fields[0].Name)
	assert.Equal(t, "widget", got.Fields[0].Value)

	saved, err := os.ReadFile(filepath.Join(project, "Package.nuspec"))
	require.NoError(t, err)
	template, err := os.ReadFile(filepath.Join("testdata", "Package.nuspec"))
	require.NoError(t, err)
	assert.Equal(t, template, saved, "no-op leaves the scaffolded descriptor as written")
}

func TestRun_RemoteFailure(t *testing.T) {
	project, _, _ := setupEndToEnd(t)

	code, out, _ := executeCommand(t, "-p", project, "-g", "acme/missing")
	assert.Equal(t, exitcode.NetworkError, code)
	assert.Contains(t, out, "404")
}
