package translate

import (
	"fmt"
	"strings"

	"github.com/stackgen-cli/batectify/internal/models"
	"gopkg.in/yaml.v3"
)

// maxVolumeNameLength is the longest cache volume name Docker accepts
const maxVolumeNameLength = 255

var volumeKeys = []string{"type", "source", "target", "read_only"}

func normalizeVolumes(node *yaml.Node, service string, diags *models.Diagnostics) ([]models.VolumeMount, error) {
	if shapeOf(node) != shapeSequence {
		return nil, expected(service, "volumes", node, "a list")
	}

	var volumes []models.VolumeMount
	for _, item := range items(node) {
		volume, ok, err := NormalizeVolume(item, service, diags)
		if err != nil {
			return nil, err
		}
		if ok {
			volumes = append(volumes, volume)
		}
	}
	return volumes, nil
}

// NormalizeVolume converts one entry of a service's volumes list. ok is
// false when the entry cannot be represented and has been dropped; a
// diagnostic explains why.
func NormalizeVolume(node *yaml.Node, service string, diags *models.Diagnostics) (volume models.VolumeMount, ok bool, err error) {
	switch shapeOf(node) {
	case shapeScalar:
		return normalizeShortVolume(resolve(node).Value, service, diags)
	case shapeMapping:
		return normalizeLongVolume(node, service, diags)
	}
	return models.VolumeMount{}, false, expected(service, "volumes", node, "a string or mapping")
}

// normalizeShortVolume handles "[source:]target[:mode]"
func normalizeShortVolume(spec, service string, diags *models.Diagnostics) (models.VolumeMount, bool, error) {
	fields := strings.Split(spec, ":")
	for _, f := range fields {
		if f == "" {
			return models.VolumeMount{}, false, &ParseError{
				Service: service, Key: "volumes", Value: spec,
				Reason: "invalid volume specification: empty field",
			}
		}
	}

	switch len(fields) {
	case 1:
		// Anonymous volume: only the container path is given
		return models.CacheVolume(GenerateVolumeName(service, fields[0]), fields[0], ""), true, nil

	case 2:
		switch {
		case !isPath(fields[0]):
			return models.CacheVolume(fields[0], fields[1], ""), true, nil
		case !isPath(fields[1]):
			// "target:mode"
			return models.CacheVolume(GenerateVolumeName(service, fields[0]), fields[0], fields[1]), true, nil
		}
		// batect understands "local:container" as it is
		return models.RawVolume(spec), true, nil

	case 3:
		switch {
		case !isPath(fields[0]):
			return models.CacheVolume(fields[0], fields[1], fields[2]), true, nil
		case !isPath(fields[1]):
			diags.UnsupportedValue(models.ScopeService, service, "volume", spec,
				fmt.Sprintf("The mode '%s' was ignored; only '%s' is used as mount options.", fields[1], fields[2]))
			return models.CacheVolume(GenerateVolumeName(service, fields[0]), fields[0], fields[2]), true, nil
		}
		return models.RawVolume(spec), true, nil
	}

	return models.VolumeMount{}, false, &ParseError{
		Service: service, Key: "volumes", Value: spec,
		Reason: fmt.Sprintf("invalid volume specification: expected 1 to 3 colon-separated fields, got %d", len(fields)),
	}
}

// normalizeLongVolume handles the mapping form with an explicit type
func normalizeLongVolume(node *yaml.Node, service string, diags *models.Diagnostics) (models.VolumeMount, bool, error) {
	warnOnUnsupportedKeys(diags, "service "+service+" volume", "services."+service+".volumes", volumeKeys, keysOf(node))

	var volumeType string
	if t := lookup(node, "type"); isSet(t) {
		s, err := scalarString(service, "volumes.type", t)
		if err != nil {
			return models.VolumeMount{}, false, err
		}
		volumeType = s
	}

	if volumeType != "bind" && volumeType != "volume" {
		message := "This volume type specified for service " + service + " is not supported."
		if volumeType == "" {
			message = "Volumes in long syntax need a type of 'bind' or 'volume'."
		}
		diags.UnsupportedValue(models.ScopeService, service, "volume", volumeType, message)
		return models.VolumeMount{}, false, nil
	}

	target := lookup(node, "target")
	if !isSet(target) {
		return models.VolumeMount{}, false, malformed(service, "volumes", node, "volume is missing a target")
	}
	container, err := scalarString(service, "volumes.target", target)
	if err != nil {
		return models.VolumeMount{}, false, err
	}

	var source string
	if s := lookup(node, "source"); isSet(s) {
		if source, err = scalarString(service, "volumes.source", s); err != nil {
			return models.VolumeMount{}, false, err
		}
	}

	var options string
	if ro := lookup(node, "read_only"); isSet(ro) {
		readOnly, err := boolValue(service, "volumes.read_only", ro)
		if err != nil {
			return models.VolumeMount{}, false, err
		}
		if readOnly {
			options = "ro"
		}
	}

	if volumeType == "bind" {
		if source == "" {
			return models.VolumeMount{}, false, malformed(service, "volumes", node, "bind mount is missing a source")
		}
		return models.BindMount(source, container, options), true, nil
	}

	name := source
	if name == "" {
		name = GenerateVolumeName(service, container)
	}
	return models.CacheVolume(name, container, options), true, nil
}

// GenerateVolumeName derives a stable cache volume name from the service
// and container path, e.g. ("web", "/var/lib/mysql") -> "web__var_lib_mysql".
func GenerateVolumeName(service, path string) string {
	name := service + "_" + strings.ReplaceAll(path, "/", "_")
	if len(name) > maxVolumeNameLength {
		name = strings.ToValidUTF8(name[:maxVolumeNameLength], "")
	}
	return name
}

// isPath reports whether a volume source is a filesystem path rather than
// a volume name
func isPath(s string) bool {
	return strings.Contains(s, "/") || s == "." || s == ".." || strings.HasPrefix(s, "~")
}
