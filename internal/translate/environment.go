package translate

import (
	"strings"

	"github.com/stackgen-cli/batectify/internal/models"
	"gopkg.in/yaml.v3"
)

// normalizeEnvironment converts list or mapping form variables to a map.
//
// Compose passes a variable listed without a value through from the host.
// batect has no such syntax, so the value becomes the reference "$KEY",
// which batect expands from the host environment.
func normalizeEnvironment(node *yaml.Node, service, key string, diags *models.Diagnostics) (map[string]string, error) {
	env := make(map[string]string)

	switch shapeOf(node) {
	case shapeMapping:
		for _, e := range entries(node) {
			switch shapeOf(e.value) {
			case shapeAbsent:
				env[e.key] = passthrough(e.key)
			case shapeScalar:
				env[e.key] = e.value.Value
			default:
				diags.UnsupportedValue(models.ScopeService, service, key+"."+e.key, describe(e.value),
					"Only string values can be used for "+key+".")
			}
		}
		return env, nil

	case shapeSequence:
		for _, item := range items(node) {
			s, err := scalarString(service, key, item)
			if err != nil {
				return nil, err
			}
			name, value, found := strings.Cut(s, "=")
			if !found {
				value = passthrough(name)
			}
			env[name] = value
		}
		return env, nil
	}

	return nil, expected(service, key, node, "a list or mapping")
}

func passthrough(name string) string {
	return "$" + name
}
