package rules

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-playground/validator/v10"
	"github.com/stackgen-cli/batectify/internal/models"
	"gopkg.in/yaml.v3"
)

// RulesConfig defines how diagnostics are filtered and graded
type RulesConfig struct {
	Version string `yaml:"version"`

	// SeverityOverrides maps path patterns to severity levels
	SeverityOverrides []SeverityRule `yaml:"severity_overrides" validate:"dive"`

	// IgnorePatterns defines paths to completely ignore
	IgnorePatterns []IgnoreRule `yaml:"ignore_patterns" validate:"dive"`

	// ServiceIgnores defines per-service ignore lists
	ServiceIgnores map[string]ServiceIgnoreRules `yaml:"service_ignores" validate:"dive"`
}

// SeverityRule maps a path pattern to a severity
type SeverityRule struct {
	Pattern  string `yaml:"pattern" validate:"required"`                           // glob or regex pattern
	Severity string `yaml:"severity" validate:"required,oneof=info warning error"` // info, warning, error
	IsRegex  bool   `yaml:"regex"`                                                 // if true, use regex matching
}

// IgnoreRule defines what to ignore
type IgnoreRule struct {
	Pattern string `yaml:"pattern" validate:"required"` // path pattern to ignore
	IsRegex bool   `yaml:"regex"`                       // if true, use regex matching
	Reason  string `yaml:"reason"`                      // why it's ignored (for reports)
}

// ServiceIgnoreRules defines ignores for a specific service
type ServiceIgnoreRules struct {
	Keys []string `yaml:"keys"` // compose keys to ignore, e.g. "networks", "healthcheck.test"
}

// Rules holds the loaded rules configuration
type Rules struct {
	config           *RulesConfig
	severityPatterns []compiledSeverity
	ignorePatterns   []compiledIgnore
}

// matcher reports whether a diagnostic path matches a rule pattern
type matcher func(path string) bool

type compiledSeverity struct {
	match    matcher
	severity models.Severity
}

type compiledIgnore struct {
	match  matcher
	reason string
}

var validate = validator.New()

// LoadRules loads rules from a file path
func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseRules(data)
}

// ParseRules parses and validates rules YAML
func ParseRules(data []byte) (*Rules, error) {
	var config RulesConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, err
	}
	if err := validate.Struct(&config); err != nil {
		return nil, fmt.Errorf("invalid rules: %w", err)
	}
	return compileRules(&config)
}

// LoadRulesFromDir finds and loads .batectify.yaml from directory
func LoadRulesFromDir(dir string) (*Rules, error) {
	candidates := []string{
		".batectify.yaml",
		".batectify.yml",
		"batectify.yaml",
		"batectify.yml",
	}

	for _, name := range candidates {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadRules(path)
		}
	}

	// Return empty rules if no file found
	return &Rules{config: &RulesConfig{}}, nil
}

// compileRules compiles the patterns for efficient matching
func compileRules(config *RulesConfig) (*Rules, error) {
	rules := &Rules{
		config:           config,
		severityPatterns: make([]compiledSeverity, 0, len(config.SeverityOverrides)),
		ignorePatterns:   make([]compiledIgnore, 0, len(config.IgnorePatterns)),
	}

	for _, sr := range config.SeverityOverrides {
		match, err := compilePattern(sr.Pattern, sr.IsRegex)
		if err != nil {
			return nil, err
		}
		rules.severityPatterns = append(rules.severityPatterns, compiledSeverity{
			match:    match,
			severity: models.ParseSeverity(sr.Severity),
		})
	}

	for _, ir := range config.IgnorePatterns {
		match, err := compilePattern(ir.Pattern, ir.IsRegex)
		if err != nil {
			return nil, err
		}
		rules.ignorePatterns = append(rules.ignorePatterns, compiledIgnore{
			match:  match,
			reason: ir.Reason,
		})
	}

	return rules, nil
}

// compilePattern builds a matcher for a regex or a glob. Globs use
// doublestar syntax; paths contain no "/", so "*" spans dotted segments.
func compilePattern(pattern string, isRegex bool) (matcher, error) {
	if isRegex {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		return re.MatchString, nil
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid pattern %q", pattern)
	}
	return func(path string) bool {
		return globMatch(pattern, path)
	}, nil
}

func globMatch(pattern, path string) bool {
	matched, err := doublestar.Match(pattern, path)
	return err == nil && matched
}

// GetSeverityOverride returns custom severity if matched, empty otherwise
func (r *Rules) GetSeverityOverride(path string) (models.Severity, bool) {
	for _, sp := range r.severityPatterns {
		if sp.match(path) {
			return sp.severity, true
		}
	}
	return "", false
}

// ShouldIgnore returns true if the path should be ignored
func (r *Rules) ShouldIgnore(path string) (bool, string) {
	for _, ip := range r.ignorePatterns {
		if ip.match(path) {
			return true, ip.reason
		}
	}
	return false, ""
}

// ShouldIgnoreServiceKey returns true if the key should be ignored for service
func (r *Rules) ShouldIgnoreServiceKey(service, key string) bool {
	if r.config.ServiceIgnores == nil {
		return false
	}

	si, ok := r.config.ServiceIgnores[service]
	if !ok {
		return false
	}

	for _, k := range si.Keys {
		if k == key || globMatch(k, key) {
			return true
		}
	}

	return false
}

// Apply returns a new collector holding the diagnostics that survive the
// rules, with severity overrides applied
func (r *Rules) Apply(diags *models.Diagnostics) *models.Diagnostics {
	result := models.NewDiagnostics()

	for _, d := range diags.Records {
		if ignore, _ := r.ShouldIgnore(d.Path); ignore {
			continue
		}

		if d.Scope == models.ScopeService && r.ShouldIgnoreServiceKey(serviceName(d), extractKeyFromPath(d.Path)) {
			continue
		}

		if severity, ok := r.GetSeverityOverride(d.Path); ok {
			d.Severity = severity
		}

		result.Add(d)
	}

	return result
}

func serviceName(d models.Diagnostic) string {
	if d.Name != "" {
		return d.Name
	}
	// Unsupported key diagnostics only carry the path
	parts := strings.SplitN(d.Path, ".", 3)
	if len(parts) >= 2 && parts[0] == "services" {
		return parts[1]
	}
	return ""
}

// extractKeyFromPath turns "services.api.healthcheck.test" into "healthcheck.test"
func extractKeyFromPath(path string) string {
	parts := strings.SplitN(path, ".", 3)
	if len(parts) == 3 {
		return parts[2]
	}
	return ""
}
