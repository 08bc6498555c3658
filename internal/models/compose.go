package models

import "gopkg.in/yaml.v3"

// ComposeFile is a parsed Docker Compose document. Root keys and services
// keep the order in which they appear in the source.
type ComposeFile struct {
	Version  *yaml.Node       `json:"-"`
	Keys     []string         `json:"keys"`
	Services []ComposeService `json:"services"`
}

// ComposeService is one entry under the services key. Fields holds the raw
// value of every key, recognised or not; Keys records their order.
type ComposeService struct {
	Name   string
	Keys   []string
	Fields map[string]*yaml.Node
}

// NewComposeService creates an empty service with initialized fields
func NewComposeService(name string) ComposeService {
	return ComposeService{
		Name:   name,
		Fields: make(map[string]*yaml.Node),
	}
}

// Set adds or replaces a field, keeping first-seen key order
func (s *ComposeService) Set(key string, value *yaml.Node) {
	if _, ok := s.Fields[key]; !ok {
		s.Keys = append(s.Keys, key)
	}
	s.Fields[key] = value
}

// Get returns the raw value of a field
func (s *ComposeService) Get(key string) (*yaml.Node, bool) {
	node, ok := s.Fields[key]
	return node, ok
}

// ServiceNames returns service names in document order
func (c *ComposeFile) ServiceNames() []string {
	names := make([]string, 0, len(c.Services))
	for _, s := range c.Services {
		names = append(names, s.Name)
	}
	return names
}
