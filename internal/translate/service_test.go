package translate

import (
	"errors"
	"testing"

	"github.com/stackgen-cli/batectify/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapOnlyService(t *testing.T, content string) (models.Container, *models.Diagnostics) {
	t.Helper()
	cf := parseCompose(t, content)
	require.Len(t, cf.Services, 1)
	diags := models.NewDiagnostics()
	container, err := MapService(&cf.Services[0], diags)
	require.NoError(t, err)
	return container, diags
}

func TestMapService_BuildWinsOverImage(t *testing.T) {
	container, diags := mapOnlyService(t, `
services:
  web:
    image: nginx
    build: ./docker
`)

	assert.Equal(t, models.Container{BuildDirectory: "./docker"}, container)
	require.Equal(t, 1, diags.Len())
	conflict := diags.Records[0]
	assert.Equal(t, models.KindConflictingValue, conflict.Kind)
	assert.Equal(t, models.ScopeService, conflict.Scope)
	assert.Equal(t, "web", conflict.Name)
	assert.Equal(t, "image", conflict.Key)
	assert.Equal(t, "Both 'build' and 'image' are specified. 'image' will be dropped.", conflict.Message)
	assert.Equal(t, "Conflicting values for service web", conflict.Heading())
}

func TestMapService_EmptyBuildKeepsImage(t *testing.T) {
	container, diags := mapOnlyService(t, `
services:
  web:
    image: nginx
    build: ""
`)

	assert.Equal(t, models.Container{Image: "nginx"}, container)
	assert.Equal(t, 0, diags.Len())
}

func TestMapService_BuildMapping(t *testing.T) {
	container, diags := mapOnlyService(t, `
services:
  web:
    build:
      context: docker/image
      dockerfile: Dockerfile.dev
      args:
        buildno: 1
      cache_from:
        - alpine:latest
`)

	assert.Equal(t, "docker/image", container.BuildDirectory)
	assert.Equal(t, "Dockerfile.dev", container.Dockerfile)
	assert.Equal(t, map[string]string{"buildno": "1"}, container.BuildArgs)

	require.Equal(t, 1, diags.Len())
	d := diags.Records[0]
	assert.Equal(t, models.KindUnsupportedKey, d.Kind)
	assert.Equal(t, "cache_from", d.Key)
	assert.Equal(t, "service web build", d.Label)
	assert.Equal(t, "services.web.build.cache_from", d.Path)
	assert.Equal(t,
		"The key 'cache_from' under 'service web build' was not recognised or is not supported by batect.",
		d.Text())
}

func TestMapService_BuildMappingDefaults(t *testing.T) {
	container, diags := mapOnlyService(t, `
services:
  web:
    build:
      args:
        - HTTP_PROXY
        - VERSION=2
`)

	assert.Equal(t, ".", container.BuildDirectory)
	assert.Empty(t, container.Dockerfile)
	assert.Equal(t, map[string]string{"HTTP_PROXY": "$HTTP_PROXY", "VERSION": "2"}, container.BuildArgs)
	assert.Equal(t, 0, diags.Len())
}

func TestMapService_Environment(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected map[string]string
	}{
		{
			name: "list form",
			content: `
services:
  web:
    environment:
      - ENVIRONMENT
      - beep=boop
`,
			expected: map[string]string{"ENVIRONMENT": "$ENVIRONMENT", "beep": "boop"},
		},
		{
			name: "value containing equals",
			content: `
services:
  web:
    environment:
      - JAVA_OPTS=-Dfoo=bar
`,
			expected: map[string]string{"JAVA_OPTS": "-Dfoo=bar"},
		},
		{
			name: "mapping form",
			content: `
services:
  web:
    environment:
      DEBUG: "true"
      PORT: 8080
      TOKEN:
`,
			expected: map[string]string{"DEBUG": "true", "PORT": "8080", "TOKEN": "$TOKEN"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			container, diags := mapOnlyService(t, tt.content)
			assert.Equal(t, tt.expected, container.Environment)
			assert.Equal(t, 0, diags.Len())
		})
	}
}

func TestMapService_EnvironmentNestedValue(t *testing.T) {
	container, diags := mapOnlyService(t, `
services:
  web:
    environment:
      NAME: web
      NESTED:
        a: b
`)

	assert.Equal(t, map[string]string{"NAME": "web"}, container.Environment)
	require.Equal(t, 1, diags.Len())
	assert.Equal(t, models.KindUnsupportedValue, diags.Records[0].Kind)
	assert.Equal(t, "environment.NESTED", diags.Records[0].Key)
}

func TestMapService_Command(t *testing.T) {
	container, _ := mapOnlyService(t, `
services:
  web:
    command: ["bundle", "exec", "thin", "-p", "3000"]
`)
	assert.Equal(t, "bundle exec thin -p 3000", container.Command)

	container, _ = mapOnlyService(t, `
services:
  web:
    command: bundle exec thin -p 3000
`)
	assert.Equal(t, "bundle exec thin -p 3000", container.Command)
}

func TestMapService_HealthCheck(t *testing.T) {
	container, diags := mapOnlyService(t, `
services:
  web:
    healthcheck:
      test: ["CMD", "curl", "-f", "http://localhost"]
      interval: 1m30s
      retries: 3
      start_period: 40s
`)

	require.NotNil(t, container.HealthCheck)
	assert.Equal(t, models.HealthCheck{Interval: "1m30s", Retries: 3, StartPeriod: "40s"}, *container.HealthCheck)

	require.Equal(t, 1, diags.Len())
	assert.Equal(t, "test", diags.Records[0].Key)
	assert.Equal(t, "service web healthcheck", diags.Records[0].Label)
}

func TestMapService_HealthCheckBadRetries(t *testing.T) {
	container, diags := mapOnlyService(t, `
services:
  web:
    healthcheck:
      interval: 10s
      retries: many
`)

	require.NotNil(t, container.HealthCheck)
	assert.Equal(t, "10s", container.HealthCheck.Interval)
	assert.Equal(t, 0, container.HealthCheck.Retries)

	values := diags.OfKind(models.KindUnsupportedValue)
	require.Len(t, values, 1)
	assert.Equal(t, "healthcheck.retries", values[0].Key)
	assert.Equal(t, "many", values[0].Value)
}

func TestMapService_SimpleKeys(t *testing.T) {
	container, diags := mapOnlyService(t, `
services:
  web:
    image: nginx
    cap_add:
      - NET_ADMIN
    cap_drop:
      - ALL
    privileged: true
    init: true
    working_dir: /code
    depends_on:
      - db
      - cache
`)

	assert.Equal(t, models.Container{
		Image:              "nginx",
		CapabilitiesToAdd:  []string{"NET_ADMIN"},
		CapabilitiesToDrop: []string{"ALL"},
		Privileged:         true,
		EnableInitProcess:  true,
		WorkingDirectory:   "/code",
		Dependencies:       []string{"db", "cache"},
	}, container)
	assert.Equal(t, 0, diags.Len())
}

func TestMapService_FalsyValuesAreAbsent(t *testing.T) {
	container, diags := mapOnlyService(t, `
services:
  web:
    image: nginx
    privileged: false
    init: false
    command: ""
    environment: []
    ports: []
    working_dir:
`)

	assert.Equal(t, models.Container{Image: "nginx"}, container)
	assert.Equal(t, 0, diags.Len())
}

func TestMapService_DependsOnMapping(t *testing.T) {
	container, diags := mapOnlyService(t, `
services:
  web:
    depends_on:
      db:
        condition: service_healthy
      cache: {}
`)

	assert.Equal(t, []string{"db", "cache"}, container.Dependencies)
	require.Equal(t, 1, diags.Len())
	assert.Equal(t, "condition", diags.Records[0].Key)
	assert.Equal(t, "service web depends_on db", diags.Records[0].Label)
	assert.Equal(t, "services.web.depends_on.db.condition", diags.Records[0].Path)
}

func TestMapService_UnsupportedKeysComeFirst(t *testing.T) {
	_, diags := mapOnlyService(t, `
services:
  web:
    image: nginx
    build: .
    restart: always
    container_name: web-1
`)

	require.Equal(t, 3, diags.Len())
	assert.Equal(t, "restart", diags.Records[0].Key)
	assert.Equal(t, "container_name", diags.Records[1].Key)
	assert.Equal(t, models.KindConflictingValue, diags.Records[2].Kind)
}

func TestMapService_MergeKeys(t *testing.T) {
	cf := parseCompose(t, `
x-defaults: &defaults
  environment:
    LOG_LEVEL: debug
  working_dir: /srv

services:
  web:
    <<: *defaults
    image: nginx
    working_dir: /app
`)
	require.Len(t, cf.Services, 1)

	diags := models.NewDiagnostics()
	container, err := MapService(&cf.Services[0], diags)
	require.NoError(t, err)

	assert.Equal(t, "nginx", container.Image)
	assert.Equal(t, "/app", container.WorkingDirectory)
	assert.Equal(t, map[string]string{"LOG_LEVEL": "debug"}, container.Environment)
	assert.Equal(t, 0, diags.Len())
}

func TestMapService_MergeKeysInsideValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		check   func(t *testing.T, c models.Container)
	}{
		{
			name: "environment",
			content: `
x-env: &env {FOO: foo, BAR: bar}
services:
  web:
    image: nginx
    environment: {<<: *env, BAZ: baz, FOO: override}
`,
			check: func(t *testing.T, c models.Container) {
				assert.Equal(t, map[string]string{"FOO": "override", "BAR": "bar", "BAZ": "baz"}, c.Environment)
			},
		},
		{
			name: "environment from several anchors",
			content: `
x-a: &a {FOO: a}
x-b: &b {FOO: b, BAR: b}
services:
  web:
    image: nginx
    environment:
      <<: [*a, *b]
`,
			check: func(t *testing.T, c models.Container) {
				assert.Equal(t, map[string]string{"FOO": "a", "BAR": "b"}, c.Environment)
			},
		},
		{
			name: "healthcheck",
			content: `
x-hc: &hc {interval: 5s, retries: 1}
services:
  web:
    image: nginx
    healthcheck: {<<: *hc, retries: 3}
`,
			check: func(t *testing.T, c models.Container) {
				require.NotNil(t, c.HealthCheck)
				assert.Equal(t, models.HealthCheck{Interval: "5s", Retries: 3}, *c.HealthCheck)
			},
		},
		{
			name: "build and build args",
			content: `
x-args: &args {VERSION: "2"}
x-build: &build
  context: docker
  args:
    <<: *args
    EXTRA: "yes"
services:
  web:
    build:
      <<: *build
      dockerfile: Dockerfile.dev
`,
			check: func(t *testing.T, c models.Container) {
				assert.Equal(t, "docker", c.BuildDirectory)
				assert.Equal(t, "Dockerfile.dev", c.Dockerfile)
				assert.Equal(t, map[string]string{"VERSION": "2", "EXTRA": "yes"}, c.BuildArgs)
			},
		},
		{
			name: "long syntax volume",
			content: `
x-vol: &vol {type: volume, source: data}
services:
  web:
    image: nginx
    volumes:
      - <<: *vol
        target: /data
`,
			check: func(t *testing.T, c models.Container) {
				assert.Equal(t, []models.VolumeMount{models.CacheVolume("data", "/data", "")}, c.Volumes)
			},
		},
		{
			name: "long syntax port",
			content: `
x-port: &port {protocol: tcp, target: 80}
services:
  web:
    image: nginx
    ports:
      - <<: *port
        published: 8080
`,
			check: func(t *testing.T, c models.Container) {
				assert.Equal(t, []models.PortMapping{models.PortPair(8080, 80)}, c.Ports)
			},
		},
		{
			name: "aliased value",
			content: `
x-env: &env {FOO: foo}
services:
  web:
    image: nginx
    environment: *env
`,
			check: func(t *testing.T, c models.Container) {
				assert.Equal(t, map[string]string{"FOO": "foo"}, c.Environment)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			container, diags := mapOnlyService(t, tt.content)
			tt.check(t, container)
			assert.Equal(t, 0, diags.Len(), "unexpected diagnostics: %v", diags.Records)
		})
	}
}

func TestMapService_MergeKeyNotAMapping(t *testing.T) {
	_, diags := mapOnlyService(t, `
services:
  web:
    image: nginx
    healthcheck:
      <<: just-a-string
      retries: 3
`)

	require.Equal(t, 1, diags.Len())
	assert.Equal(t, models.KindUnsupportedKey, diags.Records[0].Kind)
	assert.Equal(t, "<<", diags.Records[0].Key)
}

func TestMapService_MalformedValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		key     string
	}{
		{
			name: "volumes not a list",
			content: `
services:
  web:
    volumes: /data
`,
			key: "volumes",
		},
		{
			name: "command mapping",
			content: `
services:
  web:
    command:
      run: true
`,
			key: "command",
		},
		{
			name: "environment scalar",
			content: `
services:
  web:
    environment: FOO=bar
`,
			key: "environment",
		},
		{
			name: "privileged not a boolean",
			content: `
services:
  web:
    privileged: sometimes
`,
			key: "privileged",
		},
		{
			name: "ports mapping",
			content: `
services:
  web:
    ports:
      http: 80
`,
			key: "ports",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cf := parseCompose(t, tt.content)
			_, err := MapService(&cf.Services[0], models.NewDiagnostics())
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformed))

			var parseErr *ParseError
			require.True(t, errors.As(err, &parseErr))
			assert.Equal(t, "web", parseErr.Service)
			assert.Equal(t, tt.key, parseErr.Key)
		})
	}
}
