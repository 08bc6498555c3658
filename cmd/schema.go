package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stackgen-cli/batectify/internal/schema"
	"gopkg.in/yaml.v3"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the batect configuration schema used for validation",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		os.Stdout.Write(schema.Raw())
		fmt.Println()
	},
}

var schemaValidateCmd = &cobra.Command{
	Use:   "validate <batect.yml>",
	Short: "Validate an existing batect.yml against the schema",
	Args:  cobra.ExactArgs(1),
	Run:   runSchemaValidate,
}

func init() {
	schemaCmd.AddCommand(schemaValidateCmd)
	rootCmd.AddCommand(schemaCmd)
}

func runSchemaValidate(cmd *cobra.Command, args []string) {
	data, err := os.ReadFile(args[0])
	if err != nil {
		color.Red("Error: %v", err)
		os.Exit(2)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		color.Red("Error parsing %s: %v", args[0], err)
		os.Exit(2)
	}

	v, err := schema.New()
	if err != nil {
		color.Red("Error: %v", err)
		os.Exit(2)
	}

	violations := v.ValidateValue(doc)
	if len(violations) == 0 {
		color.Green("%s is valid", args[0])
		return
	}

	for _, violation := range violations {
		fmt.Printf("  %s %s: %s\n", color.RedString("✗"), violation.Path, violation.Message)
	}
	os.Exit(1)
}
