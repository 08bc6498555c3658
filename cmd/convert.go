package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stackgen-cli/batectify/internal/baseline"
	"github.com/stackgen-cli/batectify/internal/logger"
	"github.com/stackgen-cli/batectify/internal/models"
	"github.com/stackgen-cli/batectify/internal/parser"
	"github.com/stackgen-cli/batectify/internal/reporter"
	"github.com/stackgen-cli/batectify/internal/rules"
	"github.com/stackgen-cli/batectify/internal/schema"
	"github.com/stackgen-cli/batectify/internal/translate"
)

var (
	outputFile     string
	formatFlag     string
	serviceFilter  string
	severityMin    string
	strictMode     bool
	validateOutput bool
	rulesFile      string
	categoryMode   bool
	categoryDetail bool
	baselineFlag   string
	saveBaseline   string
)

var convertCmd = &cobra.Command{
	Use:   "convert <compose-file|dir>",
	Short: "Convert a Docker Compose file to batect.yml",
	Long: `Convert a Docker Compose file and report everything that could not be translated.

The batect configuration is written to stdout (or --output); the report of
dropped or changed settings is written to stderr.

Examples:
  batectify convert docker-compose.yml
  batectify convert -o batect.yml .
  batectify convert --format json docker-compose.yml
  batectify convert --service api docker-compose.yml
  batectify convert --strict docker-compose.yml

  # Category summary
  batectify convert --category docker-compose.yml
  batectify convert --category-detail docker-compose.yml

  # Only report diagnostics that are new since a saved baseline
  batectify convert --save-baseline main docker-compose.yml
  batectify convert --baseline main docker-compose.yml

  # Use custom rules file
  batectify convert --rules .batectify.yaml docker-compose.yml`,
	Args: cobra.ExactArgs(1),
	Run:  runConvert,
}

func init() {
	convertCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write batect.yml to this file instead of stdout")
	convertCmd.Flags().StringVarP(&formatFlag, "format", "f", "text", "Report format: text, json, markdown")
	convertCmd.Flags().StringVarP(&serviceFilter, "service", "s", "", "Only report diagnostics for this service")
	convertCmd.Flags().StringVar(&severityMin, "severity", "info", "Minimum severity: info, warning, error")
	convertCmd.Flags().BoolVar(&strictMode, "strict", false, "Exit 1 if any warning or error remains")
	convertCmd.Flags().BoolVar(&validateOutput, "validate", true, "Validate the output against the batect schema")
	convertCmd.Flags().StringVar(&rulesFile, "rules", "", "Path to rules file (default: .batectify.yaml)")
	convertCmd.Flags().BoolVar(&categoryMode, "category", false, "Show category summary report")
	convertCmd.Flags().BoolVar(&categoryDetail, "category-detail", false, "Show detailed category report")
	convertCmd.Flags().StringVar(&baselineFlag, "baseline", "", "Hide diagnostics accepted in a saved baseline")
	convertCmd.Flags().StringVar(&saveBaseline, "save-baseline", "", "Save current diagnostics as an accepted baseline")

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) {
	log := logger.Default()

	// Load rules
	var r *rules.Rules
	var err error
	if rulesFile != "" {
		r, err = rules.LoadRules(rulesFile)
		if err != nil {
			color.Red("Error loading rules: %v", err)
			os.Exit(2)
		}
	} else {
		r, err = rules.LoadRulesFromDir(".")
		if err != nil {
			log.Warn("ignoring rules file", "error", err)
		}
	}

	sourceFile, err := parser.ResolvePath(args[0])
	if err != nil {
		color.Red("Error: %v", err)
		os.Exit(2)
	}

	cfg, diags, err := convertFile(sourceFile, validateOutput, log)
	if err != nil {
		color.Red("Error converting %s: %v", sourceFile, err)
		os.Exit(2)
	}

	// Apply rules-based severity overrides and filtering
	if r != nil {
		diags = r.Apply(diags)
	}

	baselineMgr := baseline.NewManager(".batectify")
	if saveBaseline != "" {
		if err := baselineMgr.Save(saveBaseline, sourceFile, diags); err != nil {
			color.Red("Error saving baseline: %v", err)
			os.Exit(2)
		}
		log.Info("saved baseline", "name", saveBaseline, "diagnostics", diags.Len())
	}
	if baselineFlag != "" {
		if !baselineMgr.Exists(baselineFlag) {
			color.Red("Baseline '%s' not found; create it with --save-baseline %s", baselineFlag, baselineFlag)
			os.Exit(2)
		}
		bl, err := baselineMgr.Load(baselineFlag)
		if err != nil {
			color.Red("Error loading baseline '%s': %v", baselineFlag, err)
			os.Exit(2)
		}
		diags = bl.Filter(diags)
	}

	// Filter by service if specified
	if serviceFilter != "" {
		diags = rules.FilterByService(diags, serviceFilter)
	}

	// Filter by severity
	diags = rules.FilterBySeverity(diags, severityMin)

	out, err := models.MarshalBatectYAML(cfg)
	if err != nil {
		color.Red("Error generating batect.yml: %v", err)
		os.Exit(2)
	}

	if err := writeConfig(out, outputFile, os.Stdout); err != nil {
		color.Red("Error writing batect.yml: %v", err)
		os.Exit(2)
	}

	var reportOut io.Writer = os.Stderr
	if outputFile != "" {
		log.Info("wrote batect configuration", "file", outputFile, "containers", cfg.Containers.Len())
		reportOut = os.Stdout
	}

	report, err := renderReport(diags, sourceFile, cfg)
	if err != nil {
		color.Red("Error generating report: %v", err)
		os.Exit(2)
	}
	fmt.Fprintln(reportOut, report)

	// Exit code handling
	if strictMode && diags.Summary.WarningCount+diags.Summary.ErrorCount > 0 {
		os.Exit(1)
	}
}

// convertFile parses, translates and optionally validates one compose file
func convertFile(path string, validate bool, log logger.Logger) (*models.BatectConfig, *models.Diagnostics, error) {
	log.Debug("parsing compose file", "file", path)
	src, err := parser.ParseComposeFile(path)
	if err != nil {
		return nil, nil, err
	}

	log.Debug("translating", "services", src.ServiceNames())
	cfg, diags, err := translate.Translate(src)
	if err != nil {
		return nil, diags, err
	}
	log.Info("translated compose file", "containers", cfg.Containers.Len(), "diagnostics", diags.Len())

	if validate {
		v, err := schema.New()
		if err != nil {
			return nil, diags, err
		}
		violations, err := v.Validate(cfg)
		if err != nil {
			return nil, diags, err
		}
		schema.Report(violations, diags)
		if n := len(diags.OfKind(models.KindSchemaViolation)); n > 0 {
			log.Warn("translated output does not match the batect schema", "violations", n)
		}
	}

	return cfg, diags, nil
}

// writeConfig writes the document to path, or to stdout when path is empty
func writeConfig(out []byte, path string, stdout io.Writer) error {
	if path != "" {
		if err := os.WriteFile(path, out, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		return nil
	}
	if _, err := stdout.Write(out); err != nil {
		return fmt.Errorf("failed to write to stdout: %w", err)
	}
	return nil
}

func renderReport(diags *models.Diagnostics, sourceFile string, cfg *models.BatectConfig) (string, error) {
	switch {
	case categoryDetail:
		return reporter.ToCategoryDetail(diags, sourceFile), nil
	case categoryMode:
		return reporter.ToCategorySummary(diags, sourceFile), nil
	case formatFlag == "json":
		jsonBytes, err := json.MarshalIndent(reporter.ToJSON(diags, sourceFile, cfg), "", "  ")
		if err != nil {
			return "", err
		}
		return string(jsonBytes), nil
	case formatFlag == "markdown":
		return reporter.ToMarkdown(diags, sourceFile), nil
	default:
		return reporter.ToText(diags, sourceFile), nil
	}
}
