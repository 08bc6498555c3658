package translate

import (
	"github.com/stackgen-cli/batectify/internal/models"
	"gopkg.in/yaml.v3"
)

// serviceKeys are the compose service keys with a batect equivalent. They
// are processed in this order, which fixes the order of diagnostics.
var serviceKeys = []string{
	"build", "cap_add", "cap_drop", "command", "depends_on", "environment",
	"expose", "healthcheck", "image", "ports", "privileged", "init", "volumes", "working_dir",
}

// simpleKeyMapping lists keys that are copied under a new name
var simpleKeyMapping = map[string]string{
	"cap_add":     "capabilities_to_add",
	"cap_drop":    "capabilities_to_drop",
	"depends_on":  "dependencies",
	"privileged":  "privileged",
	"init":        "enable_init_process",
	"working_dir": "working_directory",
}

const buildImageConflict = "Both 'build' and 'image' are specified. 'image' will be dropped."

// MapService converts one compose service into a batect container.
// The container may be empty when nothing in the service maps to batect.
func MapService(svc *models.ComposeService, diags *models.Diagnostics) (models.Container, error) {
	var container models.Container
	label := "service " + svc.Name
	path := "services." + svc.Name

	warnOnUnsupportedKeys(diags, label, path, serviceKeys, svc.Keys)

	portsDone := false
	for _, key := range serviceKeys {
		node, ok := svc.Get(key)
		if !ok || !isSet(node) {
			continue
		}

		var err error
		if target, ok := simpleKeyMapping[key]; ok {
			err = mapSimpleKey(&container, target, key, node, svc.Name, diags)
		} else {
			switch key {
			case "build":
				err = normalizeBuild(&container, node, svc.Name, diags)
			case "image":
				if build, ok := svc.Get("build"); ok && isSet(build) {
					diags.ConflictingValue(models.ScopeService, svc.Name, "image", buildImageConflict)
				} else {
					container.Image, err = scalarString(svc.Name, key, node)
				}
			case "command":
				container.Command, err = normalizeCommand(node, svc.Name)
			case "environment":
				container.Environment, err = normalizeEnvironment(node, svc.Name, key, diags)
			case "healthcheck":
				container.HealthCheck, err = normalizeHealthCheck(node, svc.Name, diags)
			case "volumes":
				container.Volumes, err = normalizeVolumes(node, svc.Name, diags)
			case "expose", "ports":
				// expose and ports produce a single merged list
				if portsDone {
					continue
				}
				portsDone = true
				container.Ports, err = normalizePorts(svc, diags)
			default:
				diags.MissingMapping(models.ScopeService, key, "This is a bug")
			}
		}
		if err != nil {
			return container, err
		}
	}

	return container, nil
}

// mapSimpleKey copies a value verbatim into the renamed container field
func mapSimpleKey(container *models.Container, target, key string, node *yaml.Node, service string, diags *models.Diagnostics) error {
	var err error
	switch target {
	case "capabilities_to_add":
		container.CapabilitiesToAdd, err = stringList(service, key, node)
	case "capabilities_to_drop":
		container.CapabilitiesToDrop, err = stringList(service, key, node)
	case "dependencies":
		container.Dependencies, err = normalizeDependencies(node, service, diags)
	case "privileged":
		container.Privileged, err = boolValue(service, key, node)
	case "enable_init_process":
		container.EnableInitProcess, err = boolValue(service, key, node)
	case "working_directory":
		container.WorkingDirectory, err = scalarString(service, key, node)
	default:
		diags.MissingMapping(models.ScopeService, key, "This is a bug")
	}
	return err
}

// normalizeDependencies accepts both the list form and the long form of
// depends_on. Long-form options such as condition have no batect
// equivalent; batect always waits for dependencies to be healthy.
func normalizeDependencies(node *yaml.Node, service string, diags *models.Diagnostics) ([]string, error) {
	switch shapeOf(node) {
	case shapeSequence:
		return stringList(service, "depends_on", node)
	case shapeMapping:
		var deps []string
		for _, e := range entries(node) {
			deps = append(deps, e.key)
			warnOnUnsupportedKeys(diags,
				"service "+service+" depends_on "+e.key,
				"services."+service+".depends_on."+e.key,
				nil, keysOf(e.value))
		}
		return deps, nil
	}
	return nil, expected(service, "depends_on", node, "a list or mapping")
}
