package parser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/stackgen-cli/batectify/internal/models"
	"gopkg.in/yaml.v3"
)

// ErrNoServices is returned when a document has no services mapping
var ErrNoServices = errors.New("compose file has no services")

// ParseComposeFile parses a Docker Compose file into the ordered source model
func ParseComposeFile(filePath string) (*models.ComposeFile, error) {
	// Handle auto-detection of compose file
	actualPath, err := resolveComposePath(filePath)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(actualPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return Parse(data)
}

// ResolvePath returns the compose file that ParseComposeFile would read
func ResolvePath(path string) (string, error) {
	return resolveComposePath(path)
}

// resolveComposePath finds the actual compose file, supporting auto-detection
func resolveComposePath(path string) (string, error) {
	// If it's a directory, look for compose files
	info, err := os.Stat(path)
	if err == nil && info.IsDir() {
		candidates := []string{
			"compose.yaml",
			"compose.yml",
			"docker-compose.yaml",
			"docker-compose.yml",
		}
		for _, candidate := range candidates {
			fullPath := filepath.Join(path, candidate)
			if _, err := os.Stat(fullPath); err == nil {
				return fullPath, nil
			}
		}
		return "", fmt.Errorf("no compose file found in directory: %s", path)
	}

	// Check if file exists
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("file not found: %s", path)
	}

	return path, nil
}

// Parse parses compose YAML content. Key order is preserved for the root
// mapping, the services mapping and every service.
func Parse(data []byte) (*models.ComposeFile, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, ErrNoServices
	}

	root := resolveAlias(doc.Content[0])
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("failed to parse YAML: top level must be a mapping, got %s", kindName(root))
	}

	cf := &models.ComposeFile{}
	var services *yaml.Node
	for i := 0; i+1 < len(root.Content); i += 2 {
		key := root.Content[i].Value
		value := root.Content[i+1]
		cf.Keys = append(cf.Keys, key)

		switch key {
		case "version":
			cf.Version = value
		case "services":
			services = resolveAlias(value)
		}
	}

	if services == nil {
		return nil, ErrNoServices
	}
	if services.Kind != yaml.MappingNode {
		if isNull(services) {
			return cf, nil
		}
		return nil, fmt.Errorf("services must be a mapping, got %s", kindName(services))
	}

	for i := 0; i+1 < len(services.Content); i += 2 {
		name := services.Content[i].Value
		svc, err := convertService(name, resolveAlias(services.Content[i+1]))
		if err != nil {
			return nil, fmt.Errorf("error converting service %s: %w", name, err)
		}
		cf.Services = append(cf.Services, svc)
	}

	return cf, nil
}

// convertService collects the fields of one service mapping
func convertService(name string, node *yaml.Node) (models.ComposeService, error) {
	svc := models.NewComposeService(name)

	// A service declared with no body, e.g. "web:"
	if isNull(node) {
		return svc, nil
	}

	if node.Kind != yaml.MappingNode {
		return svc, fmt.Errorf("service must be a mapping, got %s", kindName(node))
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode := node.Content[i]
		// Merge keys ("<<: *defaults") are flattened into the service
		if keyNode.Tag == "!!merge" {
			if err := mergeInto(&svc, resolveAlias(node.Content[i+1])); err != nil {
				return svc, err
			}
			continue
		}
		svc.Set(keyNode.Value, node.Content[i+1])
	}

	return svc, nil
}

// mergeInto applies a YAML merge key without overriding explicit fields
func mergeInto(svc *models.ComposeService, node *yaml.Node) error {
	var sources []*yaml.Node
	switch node.Kind {
	case yaml.MappingNode:
		sources = []*yaml.Node{node}
	case yaml.SequenceNode:
		for _, item := range node.Content {
			sources = append(sources, resolveAlias(item))
		}
	default:
		return fmt.Errorf("merge key must reference a mapping, got %s", kindName(node))
	}

	for _, src := range sources {
		if src.Kind != yaml.MappingNode {
			return fmt.Errorf("merge key must reference a mapping, got %s", kindName(src))
		}
		for i := 0; i+1 < len(src.Content); i += 2 {
			key := src.Content[i].Value
			if _, exists := svc.Get(key); exists {
				continue
			}
			svc.Set(key, src.Content[i+1])
		}
	}
	return nil
}

func resolveAlias(node *yaml.Node) *yaml.Node {
	for node != nil && node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	return node
}

func isNull(node *yaml.Node) bool {
	return node == nil || node.Kind == 0 || (node.Kind == yaml.ScalarNode && node.Tag == "!!null")
}

func kindName(node *yaml.Node) string {
	switch node.Kind {
	case yaml.ScalarNode:
		return "scalar"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.AliasNode:
		return "alias"
	case yaml.DocumentNode:
		return "document"
	}
	return "empty"
}
