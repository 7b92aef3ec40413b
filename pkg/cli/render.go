package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/getpressed/pressed/pkg/template"
)

var renderDataPath string

var renderCmd = &cobra.Command{
	Use:   "render <template-file>",
	Short: "Render a template file to stdout",
	Long: `Render reads a template file, substitutes variables from a JSON data
file (--data), and writes the result to stdout. Without --data the template
renders with empty data, so every variable degrades to an empty string.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read template: %w", err)
		}

		data := map[string]any{}
		if renderDataPath != "" {
			rawData, err := os.ReadFile(renderDataPath)
			if err != nil {
				return fmt.Errorf("read data file: %w", err)
			}
			if err := json.Unmarshal(rawData, &data); err != nil {
				return fmt.Errorf("parse data file: %w", err)
			}
		}

		fmt.Fprint(cmd.OutOrStdout(), template.Substitute(string(raw), data))
		return nil
	},
}

func init() {
	renderCmd.Flags().StringVar(&renderDataPath, "data", "", "JSON file with template data")
	rootCmd.AddCommand(renderCmd)
}
