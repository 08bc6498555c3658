package reporter

import (
	"fmt"
	"strings"

	"github.com/stackgen-cli/batectify/internal/models"
)

// ToMarkdown generates a Markdown report suitable for PR comments
func ToMarkdown(diags *models.Diagnostics, sourceFile string) string {
	var sb strings.Builder

	// Header
	sb.WriteString("## Docker Compose → batect\n\n")
	sb.WriteString(fmt.Sprintf("**Source:** `%s`\n\n", sourceFile))

	// Summary
	s := diags.Summary
	sb.WriteString("### Summary\n\n")
	sb.WriteString("| Metric | Count |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Unsupported Keys | %d |\n", s.UnsupportedKeys))
	sb.WriteString(fmt.Sprintf("| Unsupported Values | %d |\n", s.UnsupportedValues))
	sb.WriteString(fmt.Sprintf("| Conflicting Values | %d |\n", s.ConflictingValues))
	sb.WriteString(fmt.Sprintf("| Total Diagnostics | %d |\n", s.Total))

	if s.ErrorCount > 0 {
		sb.WriteString(fmt.Sprintf("| ⚠️ **Errors** | **%d** |\n", s.ErrorCount))
	}
	if s.SchemaViolations > 0 {
		sb.WriteString(fmt.Sprintf("| ✗ Schema Violations | %d |\n", s.SchemaViolations))
	}

	sb.WriteString("\n")

	if s.Total == 0 {
		sb.WriteString("✅ Everything was translated.\n")
		return sb.String()
	}

	// Errors first
	errs := filterBySeverity(diags.Records, models.SeverityError)
	if len(errs) > 0 {
		sb.WriteString("### ⚠️ Errors\n\n")
		writeTable(&sb, errs)
	}

	warnings := filterBySeverity(diags.Records, models.SeverityWarning)
	if len(warnings) > 0 {
		sb.WriteString("### ⚡ Warnings\n\n")
		writeTable(&sb, warnings)
	}

	// Info diagnostics (collapsed by default in long reports)
	infos := filterBySeverity(diags.Records, models.SeverityInfo)
	if len(infos) > 0 {
		if len(infos) > 5 {
			sb.WriteString(fmt.Sprintf("<details>\n<summary>ℹ️ Info (%d)</summary>\n\n", len(infos)))
		} else {
			sb.WriteString("### ℹ️ Info\n\n")
		}
		writeTable(&sb, infos)
		if len(infos) > 5 {
			sb.WriteString("</details>\n")
		}
	}

	return sb.String()
}

func writeTable(sb *strings.Builder, records []models.Diagnostic) {
	sb.WriteString("| Scope | Path | Diagnostic |\n")
	sb.WriteString("|-------|------|------------|\n")
	for _, d := range records {
		sb.WriteString(fmt.Sprintf("| %s | `%s` | %s |\n", groupTitle(scopeKey(d)), d.Path, escapeCell(describeDiagnostic(d))))
	}
	sb.WriteString("\n")
}

func filterBySeverity(records []models.Diagnostic, severity models.Severity) []models.Diagnostic {
	var result []models.Diagnostic
	for _, d := range records {
		if d.Severity == severity {
			result = append(result, d)
		}
	}
	return result
}

func describeDiagnostic(d models.Diagnostic) string {
	switch d.Kind {
	case models.KindUnsupportedKey:
		return fmt.Sprintf("Unsupported key `%s`", d.Key)
	case models.KindUnsupportedValue:
		desc := fmt.Sprintf("Dropped `%s`", truncateValue(d.Value))
		if d.Message != "" {
			desc += ": " + d.Message
		}
		return desc
	}
	return d.Text()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}

func truncateValue(s string) string {
	if len(s) > 30 {
		return s[:27] + "..."
	}
	return s
}
