package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/net/html"
	"gopkg.in/yaml.v3"

	"github.com/velumweb/velum/internal/template"
)

var (
	checkFormat string
	checkHTML   bool
)

var checkCmd = &cobra.Command{
	Use:   "check [dir]",
	Short: "Validate every template in a directory",
	Long: `Tokenize and parse every template below the given directory
(default: templates) and report malformed templates with their line
numbers. With --html, templates that render against an empty context are
additionally checked for unbalanced HTML elements.

Examples:
  velum check
  velum check ./pages -f yaml
  velum check --html`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVarP(&checkFormat, "format", "f", "table", "Output format (table, yaml)")
	checkCmd.Flags().BoolVar(&checkHTML, "html", false, "Lint rendered output for unbalanced HTML elements")
}

// checkResult is one template's diagnostics.
type checkResult struct {
	Template string   `yaml:"template"`
	Status   string   `yaml:"status"`
	Error    string   `yaml:"error,omitempty"`
	Line     int      `yaml:"line,omitempty"`
	Warnings []string `yaml:"warnings,omitempty"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	dir := "templates"
	if len(args) == 1 {
		dir = args[0]
	}

	results, err := checkTemplates(dir)
	if err != nil {
		return err
	}

	switch checkFormat {
	case "yaml":
		encoder := yaml.NewEncoder(cmd.OutOrStdout())
		defer encoder.Close()
		if err := encoder.Encode(results); err != nil {
			return err
		}
	case "table":
		for _, res := range results {
			switch {
			case res.Error != "" && res.Line > 0:
				fmt.Fprintf(cmd.OutOrStdout(), "%-30s %s:%d: %s\n", res.Template, res.Status, res.Line, res.Error)
			case res.Error != "":
				fmt.Fprintf(cmd.OutOrStdout(), "%-30s %s: %s\n", res.Template, res.Status, res.Error)
			default:
				fmt.Fprintf(cmd.OutOrStdout(), "%-30s ok\n", res.Template)
			}
			for _, warning := range res.Warnings {
				fmt.Fprintf(cmd.OutOrStdout(), "%-30s warning: %s\n", "", warning)
			}
		}
	default:
		return fmt.Errorf("unsupported format %q (supported: table, yaml)", checkFormat)
	}

	for _, res := range results {
		if res.Status == "error" {
			return fmt.Errorf("%d of %d templates failed validation", countErrors(results), len(results))
		}
	}
	return nil
}

func countErrors(results []checkResult) int {
	n := 0
	for _, res := range results {
		if res.Status == "error" {
			n++
		}
	}
	return n
}

func checkTemplates(dir string) ([]checkResult, error) {
	var results []checkResult
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".html") {
			return nil
		}
		name, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		results = append(results, checkOne(dir, filepath.ToSlash(name), path))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

func checkOne(dir, name, path string) checkResult {
	res := checkResult{Template: name, Status: "ok"}

	src, err := os.ReadFile(path)
	if err != nil {
		res.Status = "error"
		res.Error = err.Error()
		return res
	}
	prog, err := template.Compile(string(src))
	if err != nil {
		res.Status = "error"
		var te *template.Error
		if errors.As(err, &te) {
			res.Error = te.Message
			res.Line = te.Line
		} else {
			res.Error = err.Error()
		}
		return res
	}

	if checkHTML {
		out, err := template.Render(prog, template.Context{})
		if err != nil {
			// Rendering with an empty context is best-effort; a
			// template needing request data is not an error here.
			res.Warnings = append(res.Warnings, "html lint skipped: "+err.Error())
			return res
		}
		res.Warnings = append(res.Warnings, lintHTML(out)...)
	}
	return res
}

// voidElements never take a closing tag.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

// lintHTML tokenizes rendered output and reports elements whose open
// and close tag counts disagree.
func lintHTML(rendered string) []string {
	counts := make(map[string]int)
	tokenizer := html.NewTokenizer(strings.NewReader(rendered))
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			var warnings []string
			for tag, n := range counts {
				if n > 0 {
					warnings = append(warnings, fmt.Sprintf("unclosed <%s> element", tag))
				} else if n < 0 {
					warnings = append(warnings, fmt.Sprintf("stray </%s> close tag", tag))
				}
			}
			return warnings
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			if tag := string(name); !voidElements[tag] {
				counts[tag]++
			}
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			counts[string(name)]--
		}
	}
}
