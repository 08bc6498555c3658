package reporter

import "github.com/stackgen-cli/batectify/internal/models"

// JSONReport is the stable JSON output format
type JSONReport struct {
	SchemaVersion string              `json:"schema_version"`
	SourceFile    string              `json:"source_file"`
	Containers    []string            `json:"containers"`
	Summary       models.Summary      `json:"summary"`
	Diagnostics   []models.Diagnostic `json:"diagnostics"`
}

// ToJSON converts diagnostics to the stable JSON format
func ToJSON(diags *models.Diagnostics, sourceFile string, cfg *models.BatectConfig) *JSONReport {
	report := &JSONReport{
		SchemaVersion: "1.0",
		SourceFile:    sourceFile,
		Containers:    []string{},
		Summary:       diags.Summary,
		Diagnostics:   diags.Records,
	}
	if cfg != nil && cfg.Containers != nil {
		report.Containers = cfg.Containers.Names()
	}
	return report
}
