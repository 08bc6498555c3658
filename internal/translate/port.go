package translate

import (
	"strconv"
	"strings"

	"github.com/stackgen-cli/batectify/internal/models"
	"gopkg.in/yaml.v3"
)

var portKeys = []string{"target", "published", "protocol"}

const (
	tcpOnlyMessage       = "batect only supports TCP ports"
	containerPortMessage = "Containers reach each other directly on the task network, so ports without a host port are not needed."
)

// normalizePorts merges expose and ports, in that order, into one list.
// expose entries are treated exactly like ports entries.
func normalizePorts(svc *models.ComposeService, diags *models.Diagnostics) ([]models.PortMapping, error) {
	var ports []models.PortMapping
	for _, key := range []string{"expose", "ports"} {
		node, ok := svc.Get(key)
		if !ok || !isSet(node) {
			continue
		}
		if shapeOf(node) != shapeSequence {
			return nil, expected(svc.Name, key, node, "a list")
		}
		for _, item := range items(node) {
			port, ok, err := NormalizePort(item, svc.Name, diags)
			if err != nil {
				return nil, err
			}
			if ok {
				ports = append(ports, port)
			}
		}
	}
	return ports, nil
}

// NormalizePort converts one port entry. ok is false when the entry cannot
// be represented and has been dropped; a diagnostic explains why.
func NormalizePort(node *yaml.Node, service string, diags *models.Diagnostics) (port models.PortMapping, ok bool, err error) {
	switch shapeOf(node) {
	case shapeScalar:
		return normalizeShortPort(resolve(node).Value, service, diags)
	case shapeMapping:
		return normalizeLongPort(node, service, diags)
	}
	return models.PortMapping{}, false, expected(service, "ports", node, "a string or mapping")
}

// normalizeShortPort handles "[host:]container[/protocol]"
func normalizeShortPort(spec, service string, diags *models.Diagnostics) (models.PortMapping, bool, error) {
	if !strings.Contains(spec, ":") {
		diags.UnsupportedValue(models.ScopeService, service, "port", spec, containerPortMessage)
		return models.PortMapping{}, false, nil
	}

	mapping := spec
	if idx := strings.LastIndex(spec, "/"); idx >= 0 {
		protocol := spec[idx+1:]
		if !strings.EqualFold(protocol, "tcp") {
			diags.UnsupportedValue(models.ScopeService, service, "port", spec,
				strings.ToUpper(protocol)+" ports unsupported: "+tcpOnlyMessage)
			return models.PortMapping{}, false, nil
		}
		mapping = spec[:idx]
	}

	return models.RawPort(mapping), true, nil
}

// normalizeLongPort handles the mapping form with target/published/protocol
func normalizeLongPort(node *yaml.Node, service string, diags *models.Diagnostics) (models.PortMapping, bool, error) {
	warnOnUnsupportedKeys(diags, "service "+service+" port", "services."+service+".ports", portKeys, keysOf(node))

	if protocol := lookup(node, "protocol"); isSet(protocol) {
		p, err := scalarString(service, "ports.protocol", protocol)
		if err != nil {
			return models.PortMapping{}, false, err
		}
		if !strings.EqualFold(p, "tcp") {
			diags.UnsupportedValue(models.ScopeService, service, "port", p, p+" ports unsupported: "+tcpOnlyMessage)
			return models.PortMapping{}, false, nil
		}
	}

	var local, container int
	for _, field := range []struct {
		key string
		dst *int
	}{
		{"published", &local},
		{"target", &container},
	} {
		value := lookup(node, field.key)
		if !isSet(value) {
			continue
		}
		s, err := scalarString(service, "ports."+field.key, value)
		if err != nil {
			return models.PortMapping{}, false, err
		}
		n, convErr := strconv.Atoi(s)
		if convErr != nil || n < 1 {
			diags.UnsupportedValue(models.ScopeService, service, "port", s,
				"Only single port numbers can be mapped; ranges are not supported.")
			return models.PortMapping{}, false, nil
		}
		*field.dst = n
	}

	return models.PortPair(local, container), true, nil
}
