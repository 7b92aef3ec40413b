package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/getpressed/pressed/pkg/template"
)

var validateSchemaPath string

var validateCmd = &cobra.Command{
	Use:   "validate <template-file>",
	Short: "Check a template's variables against a schema",
	Long: `Validate extracts the variables a template references and checks them
against a JSON schema file (--schema). Exits non-zero if any variable is not
declared.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read template: %w", err)
		}

		schema := map[string]any{}
		if validateSchemaPath != "" {
			rawSchema, err := os.ReadFile(validateSchemaPath)
			if err != nil {
				return fmt.Errorf("read schema file: %w", err)
			}
			if err := json.Unmarshal(rawSchema, &schema); err != nil {
				return fmt.Errorf("parse schema file: %w", err)
			}
		}

		out := cmd.OutOrStdout()
		for _, v := range template.ExtractVariables(string(raw)) {
			fmt.Fprintln(out, v)
		}

		result := template.ValidateTemplate(string(raw), schema)
		if !result.Valid {
			for _, msg := range result.Errors {
				fmt.Fprintln(cmd.ErrOrStderr(), msg)
			}
			return fmt.Errorf("template has %d validation error(s)", len(result.Errors))
		}
		fmt.Fprintln(out, "template is valid")
		return nil
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateSchemaPath, "schema", "", "JSON file with the variable schema")
	rootCmd.AddCommand(validateCmd)
}
