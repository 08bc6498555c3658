// Package schema validates translated documents against the batect
// configuration schema.
package schema

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/kaptinlin/jsonschema"
	"github.com/stackgen-cli/batectify/internal/models"
)

//go:embed batect.schema.json
var schemaJSON []byte

// Violation is a single validation failure
type Violation struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Validator checks documents against the compiled batect schema
type Validator struct {
	schema *jsonschema.Schema
}

// Raw returns the embedded schema document
func Raw() []byte {
	out := make([]byte, len(schemaJSON))
	copy(out, schemaJSON)
	return out
}

// New compiles the embedded schema
func New() (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile(schemaJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return &Validator{schema: schema}, nil
}

// Validate checks a translated config. The config is validated in its JSON
// form, which is field-for-field the same as the YAML that gets written.
func (v *Validator) Validate(cfg *models.BatectConfig) ([]Violation, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	var value map[string]any
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return v.ValidateValue(value), nil
}

// ValidateValue checks an already decoded document, e.g. a batect.yml read
// from disk. A nil result means the document is valid.
func (v *Validator) ValidateValue(value any) []Violation {
	result := v.schema.Validate(value)
	if result.Valid {
		return nil
	}

	var violations []Violation
	collect(result, &violations)
	if len(violations) == 0 {
		violations = append(violations, Violation{Path: "/", Message: "document does not match the batect schema"})
	}

	sort.SliceStable(violations, func(i, j int) bool {
		if violations[i].Path != violations[j].Path {
			return violations[i].Path < violations[j].Path
		}
		return violations[i].Message < violations[j].Message
	})
	return dedupe(violations)
}

// Report folds violations into the diagnostics of a translation
func Report(violations []Violation, diags *models.Diagnostics) {
	for _, v := range violations {
		diags.SchemaViolation(v.Path, v.Message)
	}
}

func collect(result *jsonschema.EvaluationResult, out *[]Violation) {
	if result == nil || result.Valid {
		return
	}

	path := result.InstanceLocation
	if path == "" {
		path = "/"
	}

	keywords := make([]string, 0, len(result.Errors))
	for keyword := range result.Errors {
		keywords = append(keywords, keyword)
	}
	sort.Strings(keywords)
	for _, keyword := range keywords {
		*out = append(*out, Violation{Path: path, Message: result.Errors[keyword].Error()})
	}

	for _, detail := range result.Details {
		collect(detail, out)
	}
}

func dedupe(violations []Violation) []Violation {
	var result []Violation
	for _, v := range violations {
		if len(result) > 0 && result[len(result)-1] == v {
			continue
		}
		result = append(result, v)
	}
	return result
}
