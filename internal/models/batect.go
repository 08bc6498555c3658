package models

import (
	"bytes"
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// BatectConfig is the translated batect.yml document
type BatectConfig struct {
	Containers *Containers     `yaml:"containers" json:"containers"`
	Tasks      map[string]Task `yaml:"tasks" json:"tasks"`
}

// Task is a batect task definition. Tasks are never synthesised from a
// compose file, so the translated document always has an empty task map.
type Task struct {
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Run         struct {
		Container string `yaml:"container" json:"container"`
		Command   string `yaml:"command,omitempty" json:"command,omitempty"`
	} `yaml:"run" json:"run"`
}

// NewBatectConfig creates an empty config with initialized maps
func NewBatectConfig() *BatectConfig {
	return &BatectConfig{
		Containers: NewContainers(),
		Tasks:      make(map[string]Task),
	}
}

// Container represents a batect container definition
type Container struct {
	Image              string            `yaml:"image,omitempty" json:"image,omitempty"`
	BuildDirectory     string            `yaml:"build_directory,omitempty" json:"build_directory,omitempty"`
	Dockerfile         string            `yaml:"dockerfile,omitempty" json:"dockerfile,omitempty"`
	BuildArgs          map[string]string `yaml:"build_args,omitempty" json:"build_args,omitempty"`
	Command            string            `yaml:"command,omitempty" json:"command,omitempty"`
	Environment        map[string]string `yaml:"environment,omitempty" json:"environment,omitempty"`
	WorkingDirectory   string            `yaml:"working_directory,omitempty" json:"working_directory,omitempty"`
	Volumes            []VolumeMount     `yaml:"volumes,omitempty" json:"volumes,omitempty"`
	Ports              []PortMapping     `yaml:"ports,omitempty" json:"ports,omitempty"`
	Dependencies       []string          `yaml:"dependencies,omitempty" json:"dependencies,omitempty"`
	HealthCheck        *HealthCheck      `yaml:"health_check,omitempty" json:"health_check,omitempty"`
	CapabilitiesToAdd  []string          `yaml:"capabilities_to_add,omitempty" json:"capabilities_to_add,omitempty"`
	CapabilitiesToDrop []string          `yaml:"capabilities_to_drop,omitempty" json:"capabilities_to_drop,omitempty"`
	Privileged         bool              `yaml:"privileged,omitempty" json:"privileged,omitempty"`
	EnableInitProcess  bool              `yaml:"enable_init_process,omitempty" json:"enable_init_process,omitempty"`
}

// HealthCheck overrides the health check declared by the image
type HealthCheck struct {
	Interval    string `yaml:"interval,omitempty" json:"interval,omitempty"`
	Retries     int    `yaml:"retries,omitempty" json:"retries,omitempty"`
	StartPeriod string `yaml:"start_period,omitempty" json:"start_period,omitempty"`
}

// VolumeMount is either a short-syntax string already understood by batect
// (Raw), a cache volume (Type "cache") or a bind mount (Local set).
type VolumeMount struct {
	Raw       string
	Name      string
	Type      string
	Local     string
	Container string
	Options   string
}

// VolumeTypeCache marks a daemon-managed cache volume
const VolumeTypeCache = "cache"

type volumeMountObject struct {
	Name      string `yaml:"name,omitempty" json:"name,omitempty"`
	Type      string `yaml:"type,omitempty" json:"type,omitempty"`
	Local     string `yaml:"local,omitempty" json:"local,omitempty"`
	Container string `yaml:"container" json:"container"`
	Options   string `yaml:"options,omitempty" json:"options,omitempty"`
}

// RawVolume wraps a mount string that batect accepts verbatim
func RawVolume(s string) VolumeMount {
	return VolumeMount{Raw: s}
}

// CacheVolume creates a named cache volume mount
func CacheVolume(name, container, options string) VolumeMount {
	return VolumeMount{Name: name, Type: VolumeTypeCache, Container: container, Options: options}
}

// BindMount creates a host path mount
func BindMount(local, container, options string) VolumeMount {
	return VolumeMount{Local: local, Container: container, Options: options}
}

// IsRaw reports whether the mount is kept in short syntax
func (v VolumeMount) IsRaw() bool {
	return v.Raw != ""
}

func (v VolumeMount) object() volumeMountObject {
	return volumeMountObject{
		Name:      v.Name,
		Type:      v.Type,
		Local:     v.Local,
		Container: v.Container,
		Options:   v.Options,
	}
}

// MarshalYAML emits either the raw string or the structured mount
func (v VolumeMount) MarshalYAML() (interface{}, error) {
	if v.IsRaw() {
		return v.Raw, nil
	}
	return v.object(), nil
}

// MarshalJSON mirrors MarshalYAML
func (v VolumeMount) MarshalJSON() ([]byte, error) {
	if v.IsRaw() {
		return json.Marshal(v.Raw)
	}
	return json.Marshal(v.object())
}

// PortMapping is either a "local:container" string (Raw) or a pair of
// port numbers. A zero number means the source did not provide it.
type PortMapping struct {
	Raw       string
	Local     int
	Container int
}

type portMappingObject struct {
	Local     int `yaml:"local,omitempty" json:"local,omitempty"`
	Container int `yaml:"container,omitempty" json:"container,omitempty"`
}

// RawPort wraps a port string that batect accepts verbatim
func RawPort(s string) PortMapping {
	return PortMapping{Raw: s}
}

// PortPair creates a structured port mapping
func PortPair(local, container int) PortMapping {
	return PortMapping{Local: local, Container: container}
}

// IsRaw reports whether the mapping is kept in short syntax
func (p PortMapping) IsRaw() bool {
	return p.Raw != ""
}

// MarshalYAML emits either the raw string or the structured mapping
func (p PortMapping) MarshalYAML() (interface{}, error) {
	if p.IsRaw() {
		return p.Raw, nil
	}
	return portMappingObject{Local: p.Local, Container: p.Container}, nil
}

// MarshalJSON mirrors MarshalYAML
func (p PortMapping) MarshalJSON() ([]byte, error) {
	if p.IsRaw() {
		return json.Marshal(p.Raw)
	}
	return json.Marshal(portMappingObject{Local: p.Local, Container: p.Container})
}

// Containers is an insertion-ordered map of container definitions
type Containers struct {
	names  []string
	byName map[string]Container
}

// NewContainers creates an empty container map
func NewContainers() *Containers {
	return &Containers{byName: make(map[string]Container)}
}

// Set adds or replaces a container, keeping first insertion order
func (c *Containers) Set(name string, container Container) {
	if _, ok := c.byName[name]; !ok {
		c.names = append(c.names, name)
	}
	c.byName[name] = container
}

// Get returns a container by name
func (c *Containers) Get(name string) (Container, bool) {
	container, ok := c.byName[name]
	return container, ok
}

// Names returns container names in insertion order
func (c *Containers) Names() []string {
	result := make([]string, len(c.names))
	copy(result, c.names)
	return result
}

// Len returns the number of containers
func (c *Containers) Len() int {
	return len(c.names)
}

// MarshalYAML emits containers as a mapping in insertion order
func (c *Containers) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, name := range c.names {
		value := &yaml.Node{}
		if err := value.Encode(c.byName[name]); err != nil {
			return nil, err
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name},
			value,
		)
	}
	return node, nil
}

// MarshalJSON emits containers as an object in insertion order
func (c *Containers) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range c.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(c.byName[name])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalBatectYAML renders the config as a batect.yml document
func MarshalBatectYAML(cfg *BatectConfig) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
