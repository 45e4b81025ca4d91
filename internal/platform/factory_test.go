package platform

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/stage/pkg/adapters/memory"
	"github.com/aretw0/stage/pkg/core"
)

func TestOpen_FilesystemCollections(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	cfg := &Config{
		Root:   root,
		Format: "json",
		Collections: []CollectionConfig{
			{Name: "users", Required: []string{"name"}},
			{Name: "orders", Dir: "shop/orders"},
		},
	}

	s, err := Open(WithConfig(cfg))
	require.NoError(t, err)
	assert.Equal(t, []string{"orders", "users"}, s.Names())
	assert.DirExists(t, filepath.Join(root, "shop", "orders"))

	users, err := s.Repository("users")
	require.NoError(t, err)

	_, err = users.Add(ctx, "u1", core.Data{"age": 3})
	assert.ErrorIs(t, err, core.ErrValidation)

	_, err = users.Add(ctx, "u1", core.Data{"name": "Ann"})
	require.NoError(t, err)

	_, err = s.Commit(ctx)
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(root, "users", "u1.json"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"Ann"`)
}

func TestOpen_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFile)
	writeFile(t, path, "collections: [{name: notes, format: md}]\n")

	s, err := Open(WithConfigFile(path))
	require.NoError(t, err)
	assert.Equal(t, []string{"notes"}, s.Names())
	assert.DirExists(t, filepath.Join(dir, "notes"))
}

func TestOpen_AdapterOverride(t *testing.T) {
	ctx := context.Background()
	mem := memory.New(map[string]core.Data{"u1": {"name": "Ann"}})
	var added []string

	s, err := Open(
		WithConfig(&Config{Root: t.TempDir(), Collections: []CollectionConfig{{Name: "users"}}}),
		WithAdapter("users", mem),
		WithCollectionOptions("users", core.WithAfterAdd(func(ctx context.Context, key string, data core.Data) (core.Data, error) {
			added = append(added, key)
			return data, nil
		})),
	)
	require.NoError(t, err)

	users, err := s.Repository("users")
	require.NoError(t, err)

	got, err := users.Find(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ann", got["name"])

	_, err = users.Add(ctx, "u2", core.Data{"name": "Bob"})
	require.NoError(t, err)
	assert.Equal(t, []string{"u2"}, added)

	_, err = s.Commit(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2"}, mem.Keys())
}

func TestOpen_Errors(t *testing.T) {
	_, err := Open()
	assert.Error(t, err)

	_, err = Open(WithConfig(&Config{Root: t.TempDir(), Collections: []CollectionConfig{{Name: "a"}, {Name: "a"}}}))
	assert.Error(t, err)

	_, err = Open(WithConfig(&Config{Root: t.TempDir(), Format: "toml", Collections: []CollectionConfig{{Name: "a"}}}))
	assert.Error(t, err, "no serializer for toml")
}
