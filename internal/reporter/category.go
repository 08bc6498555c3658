package reporter

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/fatih/color"
	"github.com/stackgen-cli/batectify/internal/models"
)

// CategorySummary holds diagnostics grouped by category
type CategorySummary struct {
	Category    string
	Count       int
	Errors      int
	Warning     int
	Info        int
	Diagnostics []models.Diagnostic
}

// ToCategorySummary generates a category-based summary report
func ToCategorySummary(diags *models.Diagnostics, sourceFile string) string {
	var sb strings.Builder

	cyan := color.New(color.FgCyan).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()

	sb.WriteString(cyan("batectify: Category Summary\n\n"))
	sb.WriteString(fmt.Sprintf("Converting: %s → batect.yml\n\n", sourceFile))

	summaries := groupByCategory(diags.Records)

	if len(summaries) == 0 {
		sb.WriteString(green("Everything was translated.\n"))
		return sb.String()
	}

	// Print table header
	sb.WriteString("┌" + strings.Repeat("─", 20) + "┬" + strings.Repeat("─", 8) + "┬" + strings.Repeat("─", 10) + "┬" + strings.Repeat("─", 10) + "┬" + strings.Repeat("─", 8) + "┐\n")
	sb.WriteString(fmt.Sprintf("│ %-18s │ %6s │ %8s │ %8s │ %6s │\n",
		"Category", "Total", "Errors", "Warning", "Info"))
	sb.WriteString("├" + strings.Repeat("─", 20) + "┼" + strings.Repeat("─", 8) + "┼" + strings.Repeat("─", 10) + "┼" + strings.Repeat("─", 10) + "┼" + strings.Repeat("─", 8) + "┤\n")

	for _, s := range summaries {
		errorStr := fmt.Sprintf("%8d", s.Errors)
		warningStr := fmt.Sprintf("%8d", s.Warning)
		if s.Errors > 0 {
			errorStr = red(errorStr)
		}
		if s.Warning > 0 {
			warningStr = yellow(warningStr)
		}

		sb.WriteString(fmt.Sprintf("│ %-18s │ %6d │ %s │ %s │ %6d │\n",
			s.Category, s.Count, errorStr, warningStr, s.Info))
	}

	sb.WriteString("└" + strings.Repeat("─", 20) + "┴" + strings.Repeat("─", 8) + "┴" + strings.Repeat("─", 10) + "┴" + strings.Repeat("─", 10) + "┴" + strings.Repeat("─", 8) + "┘\n")

	var totalCount, totalErrors, totalWarning, totalInfo int
	for _, s := range summaries {
		totalCount += s.Count
		totalErrors += s.Errors
		totalWarning += s.Warning
		totalInfo += s.Info
	}

	sb.WriteString(fmt.Sprintf("\nTotal: %d diagnostics (%s, %s, %d info)\n",
		totalCount,
		red(fmt.Sprintf("%d errors", totalErrors)),
		yellow(fmt.Sprintf("%d warnings", totalWarning)),
		totalInfo))

	return sb.String()
}

// ToCategoryDetail generates detailed output grouped by category
func ToCategoryDetail(diags *models.Diagnostics, sourceFile string) string {
	var sb strings.Builder

	cyan := color.New(color.FgCyan).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()

	sb.WriteString(cyan("batectify: Category Report\n\n"))
	sb.WriteString(fmt.Sprintf("Converting: %s → batect.yml\n\n", sourceFile))

	summaries := groupByCategory(diags.Records)

	if len(summaries) == 0 {
		sb.WriteString(green("Everything was translated.\n"))
		return sb.String()
	}

	for _, s := range summaries {
		var header string
		switch s.Category {
		case "environment":
			header = "🔧 Environment Variables"
		case "ports":
			header = "🔌 Port Mappings"
		case "images":
			header = "📦 Images & Builds"
		case "volumes":
			header = "💾 Volumes"
		case "health":
			header = "🩺 Health Checks"
		case "validation":
			header = "✗ Output Validation"
		default:
			header = "📋 " + titleCase(s.Category)
		}

		sb.WriteString(cyan(fmt.Sprintf("\n%s (%d diagnostics)\n", header, s.Count)))
		sb.WriteString(strings.Repeat("─", 40) + "\n")

		for _, d := range s.Diagnostics {
			icon := kindIcon(d.Kind)
			sevLabel := severityLabel(d.Severity)

			switch d.Kind {
			case models.KindUnsupportedValue:
				sb.WriteString(fmt.Sprintf("  %s %s %s = %s (dropped)\n", icon, sevLabel, d.Path, formatValue(d.Value)))
			case models.KindUnsupportedKey:
				sb.WriteString(fmt.Sprintf("  %s %s %s (unsupported)\n", icon, sevLabel, d.Path))
			default:
				sb.WriteString(fmt.Sprintf("  %s %s %s: %s\n", icon, sevLabel, d.Path, d.Text()))
			}
		}
	}

	var totalErrors, totalWarning int
	for _, s := range summaries {
		totalErrors += s.Errors
		totalWarning += s.Warning
	}

	if totalErrors > 0 {
		sb.WriteString(fmt.Sprintf("\n%s\n", red(fmt.Sprintf("⚠️  %d errors", totalErrors))))
	}
	if totalWarning > 0 {
		sb.WriteString(fmt.Sprintf("%s\n", yellow(fmt.Sprintf("⚡ %d warnings", totalWarning))))
	}

	return sb.String()
}

// groupByCategory groups diagnostics by their category
func groupByCategory(records []models.Diagnostic) []CategorySummary {
	categories := make(map[string]*CategorySummary)

	for _, d := range records {
		cat := categorize(d)
		if _, ok := categories[cat]; !ok {
			categories[cat] = &CategorySummary{
				Category: cat,
			}
		}

		cs := categories[cat]
		cs.Count++
		cs.Diagnostics = append(cs.Diagnostics, d)

		switch d.Severity {
		case models.SeverityError:
			cs.Errors++
		case models.SeverityWarning:
			cs.Warning++
		default:
			cs.Info++
		}
	}

	result := make([]CategorySummary, 0, len(categories))
	for _, cs := range categories {
		result = append(result, *cs)
	}

	sort.Slice(result, func(i, j int) bool {
		// Sort by error count, then warning, then total, then name
		if result[i].Errors != result[j].Errors {
			return result[i].Errors > result[j].Errors
		}
		if result[i].Warning != result[j].Warning {
			return result[i].Warning > result[j].Warning
		}
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Category < result[j].Category
	})

	return result
}

// categorize determines the category of a diagnostic from its path
func categorize(d models.Diagnostic) string {
	if d.Kind == models.KindSchemaViolation {
		return "validation"
	}
	if d.Scope == models.ScopeRoot {
		return "document"
	}

	key := d.Key
	parts := strings.SplitN(d.Path, ".", 4)
	if len(parts) >= 3 && parts[0] == "services" {
		key = parts[2]
	}

	switch key {
	case "environment", "env_file":
		return "environment"
	case "port", "ports", "expose":
		return "ports"
	case "image", "build":
		return "images"
	case "volume", "volumes", "tmpfs":
		return "volumes"
	case "healthcheck":
		return "health"
	case "depends_on", "links":
		return "dependencies"
	case "networks", "network_mode", "extra_hosts", "dns":
		return "networks"
	case "deploy", "restart", "scale":
		return "deploy"
	}
	return "other"
}

// titleCase converts a string to title case (first letter uppercased)
func titleCase(s string) string {
	if len(s) == 0 {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
