package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func captureCmd() (*cobra.Command, *bytes.Buffer) {
	var buf bytes.Buffer
	c := &cobra.Command{}
	c.SetOut(&buf)
	c.SetErr(&buf)
	return c, &buf
}

func TestRunRender(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hello.html"), []byte("You said: <%= message %>"), 0o644))

	renderDir = dir
	renderSets = []string{"message=hi"}
	defer func() { renderDir = "templates"; renderSets = nil }()

	c, buf := captureCmd()
	require.NoError(t, runRender(c, []string{"hello.html"}))
	assert.Equal(t, "You said: hi", buf.String())
}

func TestRunRenderBadSetFlag(t *testing.T) {
	renderSets = []string{"novalue"}
	defer func() { renderSets = nil }()

	c, _ := captureCmd()
	err := runRender(c, []string{"hello.html"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "key=value")
}

func TestCheckTemplates(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "good.html"), []byte("<% if x: %>a<% endif %>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.html"), []byte("<% endif %>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	results, err := checkTemplates(dir)
	require.NoError(t, err)
	require.Len(t, results, 2)

	byName := map[string]checkResult{}
	for _, res := range results {
		byName[res.Template] = res
	}
	assert.Equal(t, "ok", byName["good.html"].Status)
	assert.Equal(t, "error", byName["bad.html"].Status)
	assert.Equal(t, 1, byName["bad.html"].Line)
}

func TestRunCheckYAMLOutput(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "page.html"), []byte("plain"), 0o644))

	checkFormat = "yaml"
	defer func() { checkFormat = "table" }()

	c, buf := captureCmd()
	require.NoError(t, runCheck(c, []string{dir}))

	var results []checkResult
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "page.html", results[0].Template)
	assert.Equal(t, "ok", results[0].Status)
}

func TestRunCheckFailsOnMalformedTemplate(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.html"), []byte("<% if x: %>never closed"), 0o644))

	c, _ := captureCmd()
	err := runCheck(c, []string{dir})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed validation")
}

func TestLintHTML(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		warnings int
	}{
		{name: "balanced", html: "<html><body><p>hi</p></body></html>", warnings: 0},
		{name: "void elements ignored", html: "<p><br><img src=\"x\"></p>", warnings: 0},
		{name: "unclosed element", html: "<div><p>hi</p>", warnings: 1},
		{name: "stray close", html: "<p>hi</p></div>", warnings: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, lintHTML(tt.html), tt.warnings)
		})
	}
}

func TestAddFlagValidation(t *testing.T) {
	c := &cobra.Command{}
	c.Flags().Int("port", 8000, "")
	addFlagValidation(c, "port", validatePort)

	assert.NoError(t, c.Flags().Set("port", "3000"))
	assert.Error(t, c.Flags().Set("port", "70000"))
	assert.Error(t, c.Flags().Set("port", "nope"))
}

func TestProjectTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "mysite", want: "Mysite"},
		{in: "my-site", want: "My Site"},
		{in: "my_cool.site", want: "My Cool Site"},
		{in: "---", want: "Velum"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, projectTitle(tt.in))
		})
	}
}

func TestRunInitScaffoldsProject(t *testing.T) {
	dir := t.TempDir()

	c, buf := captureCmd()
	require.NoError(t, runInit(c, []string{dir}))

	for _, name := range []string{
		".velum.yml",
		"templates/index.html",
		"templates/hello.html",
		"templates/whatsup.html",
		"static/style.css",
	} {
		_, err := os.Stat(filepath.Join(dir, filepath.FromSlash(name)))
		assert.NoError(t, err, "expected %s to exist", name)
	}
	assert.Contains(t, buf.String(), "create templates/index.html")

	// A second run without --force leaves existing files alone.
	c2, buf2 := captureCmd()
	require.NoError(t, runInit(c2, []string{dir}))
	assert.Contains(t, buf2.String(), "skip")
}
