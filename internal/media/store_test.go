package media

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"backend-travelcompanion/internal/apperr"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*Store, afero.Fs) {
	t.Helper()
	fsys := afero.NewMemMapFs()
	store, err := NewStore(fsys, "uploads")
	require.NoError(t, err)
	return store, fsys
}

func TestNewStoreCreatesCategoryDirs(t *testing.T) {
	_, fsys := newStore(t)
	for _, dir := range []string{"uploads/photos", "uploads/audio", "uploads/videos"} {
		ok, err := afero.DirExists(fsys, dir)
		require.NoError(t, err)
		assert.True(t, ok, dir)
	}
}

func TestSaveKeepsExtensionAndBytes(t *testing.T) {
	store, fsys := newStore(t)
	data := []byte{0x89, 'P', 'N', 'G', 0, 1, 2, 3}

	name, err := store.Save(Photos, bytes.NewReader(data), "holiday.final.png")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, ".png"))
	assert.Len(t, name, 36+len(".png"))

	stored, err := afero.ReadFile(fsys, "uploads/photos/"+name)
	require.NoError(t, err)
	assert.Equal(t, data, stored)

	other, err := store.Save(Photos, bytes.NewReader(data), "holiday.final.png")
	require.NoError(t, err)
	assert.NotEqual(t, name, other)
}

func TestSaveWithoutExtension(t *testing.T) {
	store, _ := newStore(t)
	name, err := store.Save(Audio, strings.NewReader("abc"), "recording")
	require.NoError(t, err)
	assert.NotContains(t, name, ".")
}

func TestSaveDropsUnsafeExtension(t *testing.T) {
	store, _ := newStore(t)
	for _, original := range []string{`a.j"pg`, "a.p g", "a.", "clip.mp4;x", "a.verylongextension"} {
		name, err := store.Save(Photos, strings.NewReader("abc"), original)
		require.NoError(t, err)
		assert.Len(t, name, 36, original)
	}
	assert.Equal(t, ".JPG", extension("IMG_01.JPG"))
}

func TestResolveRejectsTraversal(t *testing.T) {
	store, _ := newStore(t)
	for _, name := range []string{"../secret", "a/b.png", `a\b.png`, "..", ""} {
		_, err := store.Resolve(Photos, name)
		assert.True(t, errors.Is(err, apperr.ErrValidation), name)
	}

	p, err := store.Resolve(Videos, "clip.mp4")
	require.NoError(t, err)
	assert.Equal(t, "uploads/videos/clip.mp4", p)
}

func TestOpenAndDelete(t *testing.T) {
	store, _ := newStore(t)
	name, err := store.Save(Videos, strings.NewReader("frames"), "clip.mp4")
	require.NoError(t, err)

	f, size, err := store.Open(Videos, name)
	require.NoError(t, err)
	got, _ := io.ReadAll(f)
	_ = f.Close()
	assert.Equal(t, int64(6), size)
	assert.Equal(t, "frames", string(got))

	require.NoError(t, store.Delete(Videos, name))
	_, _, err = store.Open(Videos, name)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	// deleting again is a no-op
	assert.NoError(t, store.Delete(Videos, name))
}

func TestCategoryForKind(t *testing.T) {
	cat, ok := CategoryForKind("photo")
	assert.True(t, ok)
	assert.Equal(t, Photos, cat)
	assert.True(t, cat.Accepts("image/png"))
	assert.False(t, cat.Accepts("text/plain"))

	_, ok = CategoryForKind("document")
	assert.False(t, ok)
}
