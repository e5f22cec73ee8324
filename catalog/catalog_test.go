package catalog

import (
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog(t *testing.T) {
	t.Run("relations survive a save and reload", func(t *testing.T) {
		catalogPath := path.Join(t.TempDir(), "catalog")

		cat, err := Load(catalogPath)
		require.NoError(t, err)

		require.NoError(t, cat.Register(Relation{Name: "users", FileName: "users.tbl", RecordCount: 42}))

		reloaded, err := Load(catalogPath)
		require.NoError(t, err)

		rel, err := reloaded.Lookup("users")
		require.NoError(t, err)
		assert.Equal(t, "users.tbl", rel.FileName)
		assert.Equal(t, 42, rel.RecordCount)
	})

	t.Run("a missing catalog file starts empty", func(t *testing.T) {
		cat, err := Load(path.Join(t.TempDir(), "catalog"))
		require.NoError(t, err)

		_, err = cat.Lookup("users")
		assert.Error(t, err)
	})

	t.Run("looking up an unknown relation fails", func(t *testing.T) {
		cat, err := Load(path.Join(t.TempDir(), "catalog"))
		require.NoError(t, err)

		_, err = cat.Lookup("ghost")
		var notFound *FileNotFoundError
		assert.ErrorAs(t, err, &notFound)
	})
}
