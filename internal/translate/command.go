package translate

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// normalizeCommand turns a command into the single string batect expects.
// List elements are joined with spaces and not quoted, so arguments that
// contain whitespace lose their boundaries.
func normalizeCommand(node *yaml.Node, service string) (string, error) {
	switch shapeOf(node) {
	case shapeScalar:
		return resolve(node).Value, nil
	case shapeSequence:
		args, err := stringList(service, "command", node)
		if err != nil {
			return "", err
		}
		return strings.Join(args, " "), nil
	}
	return "", expected(service, "command", node, "a string or list")
}
