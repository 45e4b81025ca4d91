package platform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFile)
	writeFile(t, path, `
root: data
format: json
collections:
  - name: users
    required: [name]
  - name: orders
    dir: shop/orders
    format: yaml
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "data"), cfg.Root)
	assert.Equal(t, "json", cfg.Format)
	require.Len(t, cfg.Collections, 2)
	assert.Equal(t, []string{"name"}, cfg.Collections[0].Required)
	assert.Equal(t, "shop/orders", cfg.Collections[1].Dir)
	assert.Equal(t, "yaml", cfg.Collections[1].Format)
}

func TestLoadConfig_Defaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFile)
	writeFile(t, path, "collections: [{name: notes}]\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.Root)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "Unknown Field", content: "rot: .\n"},
		{name: "Missing Name", content: "collections: [{dir: x}]\n"},
		{name: "Duplicate Name", content: "collections: [{name: a}, {name: a}]\n"},
		{name: "Not YAML", content: "collections: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), ConfigFile)
			writeFile(t, path, tt.content)

			_, err := LoadConfig(path)
			assert.Error(t, err)
		})
	}
}

func TestWriteConfig_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFile)
	in := &Config{Root: dir, Collections: []CollectionConfig{{Name: "users", Required: []string{"email"}}}}

	require.NoError(t, WriteConfig(path, in))

	out, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
