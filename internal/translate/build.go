package translate

import (
	"github.com/stackgen-cli/batectify/internal/models"
	"gopkg.in/yaml.v3"
)

var buildKeys = []string{"context", "dockerfile", "args"}

// normalizeBuild maps build (a context path or a build mapping) onto
// build_directory, dockerfile and build_args
func normalizeBuild(container *models.Container, node *yaml.Node, service string, diags *models.Diagnostics) error {
	switch shapeOf(node) {
	case shapeScalar:
		container.BuildDirectory = resolve(node).Value
		return nil
	case shapeMapping:
	default:
		return expected(service, "build", node, "a path or mapping")
	}

	warnOnUnsupportedKeys(diags, "service "+service+" build", "services."+service+".build", buildKeys, keysOf(node))

	// compose defaults the context to the project directory
	container.BuildDirectory = "."
	if context := lookup(node, "context"); isSet(context) {
		dir, err := scalarString(service, "build.context", context)
		if err != nil {
			return err
		}
		container.BuildDirectory = dir
	}

	if dockerfile := lookup(node, "dockerfile"); isSet(dockerfile) {
		name, err := scalarString(service, "build.dockerfile", dockerfile)
		if err != nil {
			return err
		}
		container.Dockerfile = name
	}

	if args := lookup(node, "args"); isSet(args) {
		buildArgs, err := normalizeEnvironment(args, service, "build.args", diags)
		if err != nil {
			return err
		}
		container.BuildArgs = buildArgs
	}

	return nil
}
