package imagestore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtension(t *testing.T) {
	tests := []struct {
		contentType string
		want        string
		ok          bool
	}{
		{"image/png", "png", true},
		{"image/jpeg", "jpeg", true},
		{"image/jpg", "jpg", true},
		{"IMAGE/PNG; charset=binary", "png", true},
		{"image/gif", "", false},
		{"application/pdf", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			got, ok := Extension(tt.contentType)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLocal_SaveAndDelete(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "uploads", "images")
	store, err := NewLocal(dir)
	require.NoError(t, err)

	ref, err := store.Save(ctx, "holiday.png", "image/png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, store.URLPrefix+"/"))
	assert.True(t, strings.HasSuffix(ref, ".png"))
	assert.NotContains(t, ref, "holiday")

	b, err := os.ReadFile(filepath.Join(dir, filepath.Base(ref)))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(b))

	require.NoError(t, store.Delete(ctx, ref))
	_, err = os.Stat(filepath.Join(dir, filepath.Base(ref)))
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, store.Delete(ctx, ref), "deleting twice is fine")
}

func TestLocal_Rejects(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save(ctx, "doc.pdf", "application/pdf", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	assert.Error(t, store.Delete(ctx, "/etc/passwd"))
	assert.Error(t, store.Delete(ctx, store.URLPrefix+"/../secret"))
}
