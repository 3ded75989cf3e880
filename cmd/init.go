package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Scaffold a new velum project",
	Long: `Create a minimal project layout: a .velum.yml config file, a
templates directory with the default pages, and a static directory.

Examples:
  velum init           # Scaffold into the current directory
  velum init mysite    # Scaffold into ./mysite`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing files")
}

const configTemplate = `server:
  host: localhost
  port: 8000
templates:
  dir: templates
static:
  url_prefix: /static/
  dir: static
development:
  hot_reload: true
  live_reload: true
log:
  level: info
  format: text
`

const indexTemplate = `<!DOCTYPE html>
<html>
<head>
  <title>%s</title>
  <link rel="stylesheet" href="/static/style.css">
</head>
<body>
  <h1>%s</h1>
  <%% greeted = "hello" %%>
  <p>Greeting: <%%= greeted %%></p>
</body>
</html>
`

const helloTemplate = `<!DOCTYPE html>
<html>
<body>
  <%% if message: %%>
  <p>You said: <%%= message %%></p>
  <%% else: %%>
  <p>Say something with ?message=...</p>
  <%% endif %%>
</body>
</html>
`

const whatsupTemplate = `<!DOCTYPE html>
<html>
<body>
  <p>Info: <%%= info %%></p>
</body>
</html>
`

const styleTemplate = `body {
  font-family: sans-serif;
  margin: 2rem auto;
  max-width: 40rem;
}
`

func runInit(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	title := projectTitle(filepath.Base(abs))

	for _, sub := range []string{"templates", "static"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return err
		}
	}

	files := map[string]string{
		".velum.yml":             configTemplate,
		"templates/index.html":   fmt.Sprintf(indexTemplate, title, title),
		"templates/hello.html":   helloTemplate,
		"templates/whatsup.html": whatsupTemplate,
		"static/style.css":       styleTemplate,
	}
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if !initForce {
			if _, err := os.Stat(path); err == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "skip %s (exists)\n", name)
				continue
			}
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "create %s\n", name)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nProject %q is ready. Run: velum serve\n", title)
	return nil
}

// projectTitle turns a directory name like "my-site" into "My Site".
func projectTitle(base string) string {
	words := strings.FieldsFunc(base, func(r rune) bool {
		return r == '-' || r == '_' || r == '.'
	})
	if len(words) == 0 {
		return "Velum"
	}
	return cases.Title(language.English).String(strings.Join(words, " "))
}
