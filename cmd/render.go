package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/velumweb/velum/internal/template"
)

var (
	renderDir  string
	renderSets []string
)

var renderCmd = &cobra.Command{
	Use:   "render <template>",
	Short: "Render a single template to stdout",
	Long: `Render a named template from the template directory against a
context built from --set flags and print the result.

Examples:
  velum render hello.html --set message=hi
  velum render index.html -d ./templates`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringVarP(&renderDir, "dir", "d", "templates", "Template directory")
	renderCmd.Flags().StringArrayVarP(&renderSets, "set", "s", nil, "Context value as key=value (repeatable)")
}

func runRender(cmd *cobra.Command, args []string) error {
	ctx := template.Context{}
	for _, pair := range renderSets {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return fmt.Errorf("invalid --set %q, expected key=value", pair)
		}
		ctx[key] = value
	}

	loader := template.NewLoader(renderDir)
	out, err := loader.Render(args[0], ctx)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}
