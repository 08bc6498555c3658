package translate

import (
	"strconv"

	"gopkg.in/yaml.v3"
)

// shape is the structural variant of a raw compose value. Every normalizer
// classifies its input once with shapeOf and then switches on the result.
type shape int

const (
	shapeAbsent shape = iota
	shapeScalar
	shapeSequence
	shapeMapping
)

func (s shape) String() string {
	switch s {
	case shapeScalar:
		return "scalar"
	case shapeSequence:
		return "sequence"
	case shapeMapping:
		return "mapping"
	}
	return "null"
}

func resolve(node *yaml.Node) *yaml.Node {
	for node != nil && node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	return node
}

func shapeOf(node *yaml.Node) shape {
	node = resolve(node)
	if node == nil {
		return shapeAbsent
	}
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			return shapeAbsent
		}
		return shapeScalar
	case yaml.SequenceNode:
		return shapeSequence
	case yaml.MappingNode:
		return shapeMapping
	}
	return shapeAbsent
}

// isSet reports whether a value counts as provided. Empty strings, empty
// collections, false and numeric zero are treated the same as a missing key.
func isSet(node *yaml.Node) bool {
	node = resolve(node)
	switch shapeOf(node) {
	case shapeScalar:
		switch node.Tag {
		case "!!bool":
			b, err := strconv.ParseBool(node.Value)
			return err != nil || b
		case "!!int", "!!float":
			f, err := strconv.ParseFloat(node.Value, 64)
			return err != nil || f != 0
		}
		return node.Value != ""
	case shapeSequence, shapeMapping:
		return len(node.Content) > 0
	}
	return false
}

type entry struct {
	key   string
	value *yaml.Node
}

// entries returns the key/value pairs of a mapping in document order.
// Merge keys are expanded in place; explicit keys win over merged ones and
// earlier merge sources win over later ones.
func entries(node *yaml.Node) []entry {
	return mergedEntries(node, make(map[*yaml.Node]bool))
}

// mergedEntries tracks the mappings being expanded so that a merge key
// referring to its own anchor is not followed again
func mergedEntries(node *yaml.Node, expanding map[*yaml.Node]bool) []entry {
	node = resolve(node)
	if shapeOf(node) != shapeMapping || expanding[node] {
		return nil
	}
	expanding[node] = true
	defer delete(expanding, node)

	explicit := make(map[string]bool)
	for i := 0; i+1 < len(node.Content); i += 2 {
		if !isMergeKey(node.Content[i]) {
			explicit[node.Content[i].Value] = true
		}
	}

	result := make([]entry, 0, len(node.Content)/2)
	seen := make(map[string]bool)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], resolve(node.Content[i+1])
		if !isMergeKey(key) {
			result = append(result, entry{key: key.Value, value: value})
			seen[key.Value] = true
			continue
		}
		sources, ok := mergeSources(value)
		if !ok {
			// left as a literal key so it is reported as unsupported
			result = append(result, entry{key: key.Value, value: value})
			continue
		}
		for _, src := range sources {
			for _, e := range mergedEntries(src, expanding) {
				if explicit[e.key] || seen[e.key] {
					continue
				}
				result = append(result, e)
				seen[e.key] = true
			}
		}
	}
	return result
}

func isMergeKey(node *yaml.Node) bool {
	return node.Kind == yaml.ScalarNode && node.Tag == "!!merge"
}

// mergeSources returns the mappings referenced by a merge key value
func mergeSources(value *yaml.Node) ([]*yaml.Node, bool) {
	switch shapeOf(value) {
	case shapeMapping:
		return []*yaml.Node{value}, true
	case shapeSequence:
		sources := items(value)
		for _, src := range sources {
			if shapeOf(src) != shapeMapping {
				return nil, false
			}
		}
		return sources, true
	}
	return nil, false
}

func keysOf(node *yaml.Node) []string {
	var keys []string
	for _, e := range entries(node) {
		keys = append(keys, e.key)
	}
	return keys
}

func lookup(node *yaml.Node, key string) *yaml.Node {
	for _, e := range entries(node) {
		if e.key == key {
			return e.value
		}
	}
	return nil
}

func items(node *yaml.Node) []*yaml.Node {
	node = resolve(node)
	if shapeOf(node) != shapeSequence {
		return nil
	}
	result := make([]*yaml.Node, 0, len(node.Content))
	for _, item := range node.Content {
		result = append(result, resolve(item))
	}
	return result
}

// describe renders a raw value for diagnostics and errors
func describe(node *yaml.Node) string {
	node = resolve(node)
	if shapeOf(node) == shapeScalar {
		return node.Value
	}
	out, err := yaml.Marshal(node)
	if err != nil {
		return shapeOf(node).String()
	}
	return string(trimNewline(out))
}

func trimNewline(b []byte) []byte {
	for len(b) > 0 && b[len(b)-1] == '\n' {
		b = b[:len(b)-1]
	}
	return b
}
