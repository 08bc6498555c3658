package baseline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/stackgen-cli/batectify/internal/models"
)

// Baseline is a saved set of accepted diagnostics for one compose file
type Baseline struct {
	Version      string    `json:"version"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"created_at"`
	Source       string    `json:"source"` // compose file the diagnostics came from
	Fingerprints []string  `json:"fingerprints"`
}

// Manager handles baseline operations
type Manager struct {
	baseDir string
}

// NewManager creates a baseline manager
func NewManager(baseDir string) *Manager {
	if baseDir == "" {
		baseDir = ".batectify"
	}
	return &Manager{baseDir: baseDir}
}

// Save records the current diagnostics as accepted
func (m *Manager) Save(name, source string, diags *models.Diagnostics) error {
	if err := os.MkdirAll(m.baseDir, 0755); err != nil {
		return err
	}

	baseline := &Baseline{
		Version:      "1.0",
		Name:         name,
		CreatedAt:    time.Now(),
		Source:       source,
		Fingerprints: make([]string, 0, diags.Len()),
	}
	for _, d := range diags.Records {
		baseline.Fingerprints = append(baseline.Fingerprints, Fingerprint(d))
	}

	content, err := json.MarshalIndent(baseline, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(m.path(name), content, 0644)
}

// Load loads a baseline by name
func (m *Manager) Load(name string) (*Baseline, error) {
	data, err := os.ReadFile(m.path(name))
	if err != nil {
		return nil, err
	}

	var baseline Baseline
	if err := json.Unmarshal(data, &baseline); err != nil {
		return nil, err
	}

	return &baseline, nil
}

// Exists checks if a baseline exists
func (m *Manager) Exists(name string) bool {
	_, err := os.Stat(m.path(name))
	return err == nil
}

func (m *Manager) path(name string) string {
	return filepath.Join(m.baseDir, sanitizeFilename(name)+".json")
}

// Filter returns the diagnostics not accepted by the baseline. Severity is
// not part of the fingerprint, so changing rules does not resurface them.
func (b *Baseline) Filter(diags *models.Diagnostics) *models.Diagnostics {
	accepted := make(map[string]bool, len(b.Fingerprints))
	for _, fp := range b.Fingerprints {
		accepted[fp] = true
	}

	result := models.NewDiagnostics()
	for _, d := range diags.Records {
		if !accepted[Fingerprint(d)] {
			result.Add(d)
		}
	}
	return result
}

// Fingerprint identifies a diagnostic across runs
func Fingerprint(d models.Diagnostic) string {
	return strings.Join([]string{string(d.Kind), d.Path, d.Key, d.Value}, "|")
}

// sanitizeFilename makes a name safe for filesystem
func sanitizeFilename(name string) string {
	var sb strings.Builder
	for _, r := range name {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '-' || r == '_':
			sb.WriteRune(r)
		case r == ' ' || r == '/' || r == '\\':
			sb.WriteByte('_')
		}
	}
	if sb.Len() == 0 {
		return "default"
	}
	return sb.String()
}
