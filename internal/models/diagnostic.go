package models

import "fmt"

// DiagnosticKind represents the type of fidelity loss recorded
type DiagnosticKind string

const (
	KindUnsupportedKey   DiagnosticKind = "unsupported_key"
	KindConflictingValue DiagnosticKind = "conflicting_value"
	KindUnsupportedValue DiagnosticKind = "unsupported_value"
	KindMissingMapping   DiagnosticKind = "missing_mapping"
	KindSchemaViolation  DiagnosticKind = "schema_violation"
)

// Scope represents what kind of entity a diagnostic refers to
type Scope string

const (
	ScopeRoot    Scope = "root"
	ScopeService Scope = "service"
	ScopeOutput  Scope = "output"
)

// Severity represents the impact level of a diagnostic
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Diagnostic is a single non-fatal observation made while translating.
// Which fields are populated depends on Kind:
//
//	unsupported_key:   Label, Key
//	conflicting_value: Scope, Name, Key, Message
//	unsupported_value: Scope, Name, Key, Value, Message (optional)
//	missing_mapping:   Scope, Key, Message
//	schema_violation:  Path, Message
type Diagnostic struct {
	Kind     DiagnosticKind `json:"kind"`
	Scope    Scope          `json:"scope"`
	Label    string         `json:"label,omitempty"` // e.g. "service web healthcheck"
	Name     string         `json:"name,omitempty"`  // e.g. service name
	Key      string         `json:"key,omitempty"`
	Value    string         `json:"value,omitempty"`
	Message  string         `json:"message,omitempty"`
	Path     string         `json:"path"` // e.g. services.web.healthcheck.test
	Severity Severity       `json:"severity"`
}

// Heading returns a short title for the diagnostic
func (d Diagnostic) Heading() string {
	switch d.Kind {
	case KindUnsupportedKey:
		return "Unsupported " + d.Label + " key"
	case KindConflictingValue:
		return fmt.Sprintf("Conflicting values for %s %s", d.Scope, d.Name)
	case KindUnsupportedValue:
		return fmt.Sprintf("%s %s - unsupported %s %q", d.Scope, d.Name, d.Key, d.Value)
	case KindMissingMapping:
		return "Supported key " + d.Key + " has no mapping logic"
	case KindSchemaViolation:
		return "batect.yml output failed validation"
	}
	return string(d.Kind)
}

// Text returns the full human readable explanation
func (d Diagnostic) Text() string {
	switch d.Kind {
	case KindUnsupportedKey:
		return fmt.Sprintf("The key '%s' under '%s' was not recognised or is not supported by batect.", d.Key, d.Label)
	case KindSchemaViolation:
		return d.Path + ": " + d.Message
	case KindUnsupportedValue:
		if d.Message == "" {
			return fmt.Sprintf("The value %q for '%s' cannot be represented in batect.", d.Value, d.Key)
		}
	}
	return d.Message
}

// Summary provides aggregate counts of diagnostics
type Summary struct {
	Total             int `json:"total"`
	UnsupportedKeys   int `json:"unsupported_keys"`
	ConflictingValues int `json:"conflicting_values"`
	UnsupportedValues int `json:"unsupported_values"`
	MissingMappings   int `json:"missing_mappings"`
	SchemaViolations  int `json:"schema_violations"`
	ErrorCount        int `json:"error_count"`
	WarningCount      int `json:"warning_count"`
	InfoCount         int `json:"info_count"`
}

// Diagnostics is the append-only collector threaded through a translation.
// One collector belongs to one top-level call; it must not be shared across
// goroutines.
type Diagnostics struct {
	Summary Summary      `json:"summary"`
	Records []Diagnostic `json:"diagnostics"`
}

// NewDiagnostics creates an empty collector
func NewDiagnostics() *Diagnostics {
	return &Diagnostics{
		Records: make([]Diagnostic, 0),
	}
}

// Add appends a diagnostic and updates the summary
func (d *Diagnostics) Add(diag Diagnostic) {
	if diag.Severity == "" {
		diag.Severity = defaultSeverity(diag.Kind)
	}
	d.Records = append(d.Records, diag)
	d.Summary.Total++

	switch diag.Kind {
	case KindUnsupportedKey:
		d.Summary.UnsupportedKeys++
	case KindConflictingValue:
		d.Summary.ConflictingValues++
	case KindUnsupportedValue:
		d.Summary.UnsupportedValues++
	case KindMissingMapping:
		d.Summary.MissingMappings++
	case KindSchemaViolation:
		d.Summary.SchemaViolations++
	}

	switch diag.Severity {
	case SeverityError:
		d.Summary.ErrorCount++
	case SeverityWarning:
		d.Summary.WarningCount++
	default:
		d.Summary.InfoCount++
	}
}

// UnsupportedKey records a key the translator does not recognise.
// label is the human scope, e.g. "root" or "service web build"; path is the
// dotted location of the parent, e.g. "services.web.build".
func (d *Diagnostics) UnsupportedKey(label, path, key string) {
	scope := ScopeService
	if label == string(ScopeRoot) {
		scope = ScopeRoot
	}
	d.Add(Diagnostic{
		Kind:  KindUnsupportedKey,
		Scope: scope,
		Label: label,
		Key:   key,
		Path:  joinPath(path, key),
	})
}

// ConflictingValue records two source fields that cannot both be honoured
func (d *Diagnostics) ConflictingValue(scope Scope, name, key, message string) {
	d.Add(Diagnostic{
		Kind:    KindConflictingValue,
		Scope:   scope,
		Name:    name,
		Key:     key,
		Message: message,
		Path:    scopePath(scope, name, key),
	})
}

// UnsupportedValue records a well-formed value outside the representable subset
func (d *Diagnostics) UnsupportedValue(scope Scope, name, key, value, message string) {
	d.Add(Diagnostic{
		Kind:    KindUnsupportedValue,
		Scope:   scope,
		Name:    name,
		Key:     key,
		Value:   value,
		Message: message,
		Path:    scopePath(scope, name, key),
	})
}

// MissingMapping records a recognised key without a dispatch rule
func (d *Diagnostics) MissingMapping(scope Scope, key, message string) {
	d.Add(Diagnostic{
		Kind:    KindMissingMapping,
		Scope:   scope,
		Key:     key,
		Message: message,
		Path:    joinPath(string(scope), key),
	})
}

// SchemaViolation records an output validation failure
func (d *Diagnostics) SchemaViolation(path, message string) {
	d.Add(Diagnostic{
		Kind:    KindSchemaViolation,
		Scope:   ScopeOutput,
		Path:    path,
		Message: message,
	})
}

// Len returns the number of recorded diagnostics
func (d *Diagnostics) Len() int {
	return len(d.Records)
}

// OfKind returns the diagnostics of one kind, in recording order
func (d *Diagnostics) OfKind(kind DiagnosticKind) []Diagnostic {
	var result []Diagnostic
	for _, r := range d.Records {
		if r.Kind == kind {
			result = append(result, r)
		}
	}
	return result
}

func defaultSeverity(kind DiagnosticKind) Severity {
	if kind == KindMissingMapping {
		return SeverityError
	}
	return SeverityWarning
}

func scopePath(scope Scope, name, key string) string {
	if scope == ScopeService {
		return joinPath("services."+name, key)
	}
	return joinPath(string(scope), key)
}

func joinPath(parent, key string) string {
	if parent == "" {
		return key
	}
	if key == "" {
		return parent
	}
	return parent + "." + key
}

// SeverityLevel returns a numeric level for severity comparison
func SeverityLevel(s Severity) int {
	switch s {
	case SeverityError:
		return 3
	case SeverityWarning:
		return 2
	case SeverityInfo:
		return 1
	default:
		return 0
	}
}

// ParseSeverity converts a string to Severity
func ParseSeverity(s string) Severity {
	switch s {
	case "error":
		return SeverityError
	case "warning":
		return SeverityWarning
	default:
		return SeverityInfo
	}
}
