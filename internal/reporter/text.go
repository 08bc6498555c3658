package reporter

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/stackgen-cli/batectify/internal/models"
)

// ToText generates a human-readable text report
func ToText(diags *models.Diagnostics, sourceFile string) string {
	var sb strings.Builder

	// Header
	cyan := color.New(color.FgCyan).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()

	sb.WriteString(cyan("batectify\n\n"))
	sb.WriteString(fmt.Sprintf("Converting: %s → batect.yml\n\n", sourceFile))

	// Summary
	s := diags.Summary
	sb.WriteString(fmt.Sprintf("Summary: %d diagnostics (%s, %s, %d info)\n\n",
		s.Total,
		red(fmt.Sprintf("%d errors", s.ErrorCount)),
		yellow(fmt.Sprintf("%d warnings", s.WarningCount)),
		s.InfoCount))

	if s.Total == 0 {
		sb.WriteString(green("Everything was translated.\n"))
		return sb.String()
	}

	sb.WriteString(strings.Repeat("━", 50) + "\n\n")

	groups, order := groupByScope(diags.Records)
	for _, key := range order {
		sb.WriteString(fmt.Sprintf("%s\n", cyan(groupTitle(key))))
		for _, d := range groups[key] {
			sb.WriteString(fmt.Sprintf("  %s %s %s\n", kindIcon(d.Kind), severityLabel(d.Severity), d.Heading()))
			if text := d.Text(); text != "" {
				sb.WriteString(fmt.Sprintf("           %s\n", text))
			}
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func kindIcon(kind models.DiagnosticKind) string {
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	switch kind {
	case models.KindUnsupportedKey:
		return yellow("➖")
	case models.KindConflictingValue:
		return yellow("⚡")
	case models.KindUnsupportedValue:
		return yellow("✂")
	case models.KindMissingMapping:
		return red("⚠️")
	case models.KindSchemaViolation:
		return red("✗")
	}
	return "•"
}

func severityLabel(s models.Severity) string {
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	switch s {
	case models.SeverityError:
		return red("ERROR   ")
	case models.SeverityWarning:
		return yellow("WARNING ")
	default:
		return "INFO    "
	}
}

// scopeKey identifies the group a diagnostic is reported under
func scopeKey(d models.Diagnostic) string {
	switch d.Scope {
	case models.ScopeRoot:
		return "root"
	case models.ScopeOutput:
		return "output"
	}
	if d.Name != "" {
		return "service:" + d.Name
	}
	parts := strings.SplitN(d.Path, ".", 3)
	if len(parts) >= 2 && parts[0] == "services" {
		return "service:" + parts[1]
	}
	return "other"
}

func groupTitle(key string) string {
	switch {
	case key == "root":
		return "Document"
	case key == "output":
		return "Output validation"
	case strings.HasPrefix(key, "service:"):
		return "Service: " + strings.TrimPrefix(key, "service:")
	}
	return "Other"
}

// groupByScope groups diagnostics, keeping the order groups first appear in
func groupByScope(records []models.Diagnostic) (map[string][]models.Diagnostic, []string) {
	groups := make(map[string][]models.Diagnostic)
	var order []string
	for _, d := range records {
		key := scopeKey(d)
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], d)
	}
	return groups, order
}

func formatValue(v string) string {
	if len(v) > 50 {
		return fmt.Sprintf("%q...", v[:47])
	}
	return fmt.Sprintf("%q", v)
}
