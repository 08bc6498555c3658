package translate

import (
	"errors"
	"testing"

	"github.com/stackgen-cli/batectify/internal/models"
	"github.com/stackgen-cli/batectify/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func parseCompose(t *testing.T, content string) *models.ComposeFile {
	t.Helper()
	cf, err := parser.Parse([]byte(content))
	require.NoError(t, err)
	return cf
}

func translateCompose(t *testing.T, content string) (*models.BatectConfig, *models.Diagnostics) {
	t.Helper()
	cfg, diags, err := Translate(parseCompose(t, content))
	require.NoError(t, err)
	require.NotNil(t, diags)
	return cfg, diags
}

// yamlNode parses a single YAML value
func yamlNode(t *testing.T, content string) *yaml.Node {
	t.Helper()
	var doc yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(content), &doc))
	require.Len(t, doc.Content, 1)
	return doc.Content[0]
}

func TestTranslate_SimpleDocument(t *testing.T) {
	cfg, diags := translateCompose(t, `
version: "3.1"
services:
  alpine:
    image: alpine:latest
`)

	assert.Equal(t, []string{"alpine"}, cfg.Containers.Names())
	alpine, ok := cfg.Containers.Get("alpine")
	require.True(t, ok)
	assert.Equal(t, models.Container{Image: "alpine:latest"}, alpine)
	assert.NotNil(t, cfg.Tasks)
	assert.Empty(t, cfg.Tasks)
	assert.Equal(t, 0, diags.Len())
}

func TestTranslate_UnsupportedRootKeys(t *testing.T) {
	_, diags := translateCompose(t, `
version: "3.8"
services:
  web:
    image: nginx
networks:
  backend: {}
volumes:
  data: {}
`)

	require.Equal(t, 2, diags.Len())
	for i, key := range []string{"networks", "volumes"} {
		d := diags.Records[i]
		assert.Equal(t, models.KindUnsupportedKey, d.Kind)
		assert.Equal(t, models.ScopeRoot, d.Scope)
		assert.Equal(t, "root", d.Label)
		assert.Equal(t, key, d.Key)
		assert.Equal(t, "root."+key, d.Path)
		assert.Equal(t, models.SeverityWarning, d.Severity)
	}
	assert.Equal(t, "Unsupported root key", diags.Records[0].Heading())
}

func TestTranslate_EveryServiceGetsAContainer(t *testing.T) {
	cfg, _ := translateCompose(t, `
services:
  web:
    build: .
    ports:
      - "8080:80"
  worker:
    expose:
      - "4000"
  db:
    image: postgres:16
  cache:
`)

	assert.Equal(t, []string{"web", "worker", "db", "cache"}, cfg.Containers.Names())

	worker, ok := cfg.Containers.Get("worker")
	require.True(t, ok)
	assert.Equal(t, models.Container{}, worker)

	cache, ok := cfg.Containers.Get("cache")
	require.True(t, ok)
	assert.Equal(t, models.Container{}, cache)
}

func TestTranslate_MalformedInputFails(t *testing.T) {
	cfg, diags, err := Translate(parseCompose(t, `
services:
  web:
    image: nginx
    volumes:
      - "a:b:c:d"
`))

	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.NotNil(t, diags)
	assert.True(t, errors.Is(err, ErrMalformed))

	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, "web", parseErr.Service)
	assert.Equal(t, "volumes", parseErr.Key)
	assert.Equal(t, "a:b:c:d", parseErr.Value)
	assert.Contains(t, err.Error(), "parse error")
}

func TestTranslate_DiagnosticsAreDeterministic(t *testing.T) {
	content := `
version: "3"
services:
  web:
    image: nginx
    build:
      context: .
      target: prod
    healthcheck:
      test: ["CMD", "true"]
      timeout: 5s
    ports:
      - "53:53/udp"
      - "80"
    volumes:
      - type: tmpfs
        target: /tmp
    restart: always
  db:
    image: postgres
    logging:
      driver: none
networks:
  default: {}
`
	cfg1, diags1 := translateCompose(t, content)
	cfg2, diags2 := translateCompose(t, content)

	assert.Equal(t, diags1, diags2)
	out1, err := models.MarshalBatectYAML(cfg1)
	require.NoError(t, err)
	out2, err := models.MarshalBatectYAML(cfg2)
	require.NoError(t, err)
	assert.Equal(t, string(out1), string(out2))

	var paths []string
	for _, d := range diags1.Records {
		paths = append(paths, d.Path)
	}
	assert.Equal(t, []string{
		"root.networks",
		"services.web.restart",
		"services.web.build.target",
		"services.web.healthcheck.test",
		"services.web.healthcheck.timeout",
		"services.web.image",
		"services.web.port",
		"services.web.port",
		"services.web.volume",
		"services.db.logging",
	}, paths)
}

func TestTranslateInto_UsesCallerCollector(t *testing.T) {
	diags := models.NewDiagnostics()
	diags.SchemaViolation("/", "pre-existing")

	_, err := TranslateInto(parseCompose(t, `
services:
  web:
    image: nginx
    tty: true
`), diags)
	require.NoError(t, err)

	require.Equal(t, 2, diags.Len())
	assert.Equal(t, models.KindSchemaViolation, diags.Records[0].Kind)
	assert.Equal(t, "tty", diags.Records[1].Key)
}

func TestTranslate_YAMLOutput(t *testing.T) {
	cfg, _ := translateCompose(t, `
services:
  web:
    build:
      context: ./web
      args:
        VERSION: "1"
    command: ["npm", "start"]
    environment:
      - NODE_ENV=production
    ports:
      - "3000:3000"
    volumes:
      - ./src:/app/src
      - /app/node_modules
    depends_on:
      - db
  db:
    image: postgres:16
`)

	out, err := models.MarshalBatectYAML(cfg)
	require.NoError(t, err)

	expected := `containers:
  web:
    build_directory: ./web
    build_args:
      VERSION: "1"
    command: npm start
    environment:
      NODE_ENV: production
    volumes:
      - ./src:/app/src
      - name: web__app_node_modules
        type: cache
        container: /app/node_modules
    ports:
      - 3000:3000
    dependencies:
      - db
  db:
    image: postgres:16
tasks: {}
`
	assert.Equal(t, expected, string(out))
}
