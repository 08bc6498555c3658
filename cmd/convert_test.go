package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stackgen-cli/batectify/internal/logger"
	"github.com/stackgen-cli/batectify/internal/models"
	"github.com/stackgen-cli/batectify/internal/translate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCompose(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "docker-compose.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestConvertFile(t *testing.T) {
	path := writeCompose(t, `
version: "3.8"
services:
  api:
    build: ./api
    ports:
      - "8080:8080"
    depends_on:
      - db
  db:
    image: postgres:16
    environment:
      POSTGRES_PASSWORD: secret
`)

	cfg, diags, err := convertFile(path, true, logger.Discard())
	require.NoError(t, err)
	assert.Equal(t, []string{"api", "db"}, cfg.Containers.Names())
	assert.Equal(t, 0, diags.Len())
}

func TestConvertFile_ReportsSchemaViolations(t *testing.T) {
	path := writeCompose(t, `
services:
  worker:
    restart: always
`)

	cfg, diags, err := convertFile(path, true, logger.Discard())
	require.NoError(t, err)
	assert.Equal(t, []string{"worker"}, cfg.Containers.Names())
	assert.Len(t, diags.OfKind(models.KindUnsupportedKey), 1)
	assert.NotEmpty(t, diags.OfKind(models.KindSchemaViolation))

	_, diags, err = convertFile(path, false, logger.Discard())
	require.NoError(t, err)
	assert.Empty(t, diags.OfKind(models.KindSchemaViolation))
}

func TestConvertFile_Malformed(t *testing.T) {
	path := writeCompose(t, `
services:
  web:
    volumes:
      - "::"
`)

	_, _, err := convertFile(path, true, logger.Discard())
	require.Error(t, err)
	assert.True(t, errors.Is(err, translate.ErrMalformed))
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func TestWriteConfig(t *testing.T) {
	out := []byte("containers: {}\n")

	var buf bytes.Buffer
	require.NoError(t, writeConfig(out, "", &buf))
	assert.Equal(t, string(out), buf.String())

	path := filepath.Join(t.TempDir(), "batect.yml")
	require.NoError(t, writeConfig(out, path, &buf))
	written, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, out, written)

	err = writeConfig(out, "", failingWriter{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken pipe")

	err = writeConfig(out, filepath.Join(t.TempDir(), "missing", "batect.yml"), &buf)
	assert.Error(t, err)
}
