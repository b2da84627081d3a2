package documents

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	t.Run("should round-trip a document through nested directories", func(t *testing.T) {
		store := NewStore(t.TempDir())
		path := "certificates/c1/p1/cert-1/certificate-ABC.pdf"

		require.NoError(t, store.Save(path, []byte("hello")))

		data, err := store.Open(path)
		require.NoError(t, err)
		assert.Equal(t, []byte("hello"), data)
	})

	t.Run("should replace an existing document", func(t *testing.T) {
		store := NewStore(t.TempDir())

		require.NoError(t, store.Save("doc.pdf", []byte("v1")))
		require.NoError(t, store.Save("doc.pdf", []byte("v2")))

		data, err := store.Open("doc.pdf")
		require.NoError(t, err)
		assert.Equal(t, []byte("v2"), data)
	})

	t.Run("should delete a stored document", func(t *testing.T) {
		root := t.TempDir()
		store := NewStore(root)

		require.NoError(t, store.Save("a/b/doc.pdf", []byte("x")))
		require.NoError(t, store.Delete("a/b/doc.pdf"))

		_, err := os.Stat(filepath.Join(root, "a", "b", "doc.pdf"))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("should not error deleting a missing document", func(t *testing.T) {
		store := NewStore(t.TempDir())
		assert.NoError(t, store.Delete("missing.pdf"))
	})

	t.Run("should error opening a missing document", func(t *testing.T) {
		store := NewStore(t.TempDir())
		_, err := store.Open("missing.pdf")
		assert.Error(t, err)
	})
}
