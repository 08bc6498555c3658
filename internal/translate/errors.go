package translate

import (
	"errors"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ErrMalformed matches every ParseError. Malformed input aborts the
// translation; unsupported but well-formed input only produces diagnostics.
var ErrMalformed = errors.New("malformed compose document")

// ParseError reports a value that is structurally invalid compose
type ParseError struct {
	Service string
	Key     string
	Value   string
	Reason  string
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("parse error: service %q %s: %s", e.Service, e.Key, e.Reason)
	if e.Value != "" {
		msg += fmt.Sprintf(" (got %q)", e.Value)
	}
	return msg
}

func (e *ParseError) Is(target error) bool {
	return target == ErrMalformed
}

func malformed(service, key string, node *yaml.Node, reason string) error {
	return &ParseError{Service: service, Key: key, Value: describe(node), Reason: reason}
}

func expected(service, key string, node *yaml.Node, want string) error {
	return malformed(service, key, node, "expected "+want+", got "+shapeOf(node).String())
}

func scalarString(service, key string, node *yaml.Node) (string, error) {
	node = resolve(node)
	if shapeOf(node) != shapeScalar {
		return "", expected(service, key, node, "a string")
	}
	return node.Value, nil
}

func stringList(service, key string, node *yaml.Node) ([]string, error) {
	if shapeOf(node) != shapeSequence {
		return nil, expected(service, key, node, "a list")
	}
	var result []string
	for _, item := range items(node) {
		s, err := scalarString(service, key, item)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, nil
}

func boolValue(service, key string, node *yaml.Node) (bool, error) {
	node = resolve(node)
	if shapeOf(node) != shapeScalar {
		return false, expected(service, key, node, "a boolean")
	}
	var b bool
	if err := node.Decode(&b); err != nil {
		parsed, perr := strconv.ParseBool(node.Value)
		if perr != nil {
			return false, malformed(service, key, node, "expected a boolean")
		}
		return parsed, nil
	}
	return b, nil
}
