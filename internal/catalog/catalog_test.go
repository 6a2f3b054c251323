package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmbeddedDefault(t *testing.T) {
	cat, err := Load("")
	require.NoError(t, err)

	assert.True(t, cat.ValidCategory("whatsapp"))
	assert.True(t, cat.ValidCategory("cita-previa"))
	assert.False(t, cat.ValidCategory("plumbing"))

	require.Len(t, cat.Locations, 1)
	assert.Equal(t, "punto-vuela", cat.Locations[0].Slug)
}

func TestLoadCustomFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yml")
	content := `
categories:
  - id: printing
    label: Printing
locations:
  - slug: library
    name: Town Library
    lat: 1.5
    lng: -2.5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cat, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cat.ValidCategory("printing"))
	assert.False(t, cat.ValidCategory("whatsapp"))
	assert.Equal(t, "Town Library", cat.Locations[0].Name)
}

func TestLoadRejectsEmptySets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yml")
	require.NoError(t, os.WriteFile(path, []byte("categories: []\nlocations: []\n"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}
