package rules

import "github.com/stackgen-cli/batectify/internal/models"

// FilterByService keeps only diagnostics about one service
func FilterByService(diags *models.Diagnostics, service string) *models.Diagnostics {
	filtered := models.NewDiagnostics()

	for _, d := range diags.Records {
		if d.Scope == models.ScopeService && serviceName(d) == service {
			filtered.Add(d)
		}
	}

	return filtered
}

// FilterBySeverity keeps only diagnostics at or above a severity level
func FilterBySeverity(diags *models.Diagnostics, minSeverity string) *models.Diagnostics {
	minLevel := models.SeverityLevel(models.ParseSeverity(minSeverity))

	filtered := models.NewDiagnostics()

	for _, d := range diags.Records {
		if models.SeverityLevel(d.Severity) >= minLevel {
			filtered.Add(d)
		}
	}

	return filtered
}
