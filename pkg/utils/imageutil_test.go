package utils

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSupportedImage(t *testing.T) {
	for _, p := range []string{"a.jpg", "b.JPEG", "c.png", "d.Tif", "e.webp", "/x/y/z.gif"} {
		assert.True(t, IsSupportedImage(p), p)
	}
	for _, p := range []string{"a.raf", "b.heic", "noext", "c.jpg.txt", ""} {
		assert.False(t, IsSupportedImage(p), p)
	}
}

func TestContentTypeFor(t *testing.T) {
	assert.Equal(t, "image/jpeg", ContentTypeFor("a_exported.jpg"))
	assert.Equal(t, "image/tiff", ContentTypeFor("a.TIFF"))
	assert.Equal(t, "application/octet-stream", ContentTypeFor("a.psd"))
}

func TestExportFilePath(t *testing.T) {
	src := filepath.Join("photos", "holiday.beach.JPG")

	assert.Equal(t,
		filepath.Join("out", "holiday.beach_exported.png"),
		ExportFilePath("out", src, "_exported", "png"))

	assert.Equal(t,
		filepath.Join("photos", "holiday.beach_exported.jpg"),
		ExportFilePath("", src, "_exported", "jpg"))
}

func TestGenerateStorageKey(t *testing.T) {
	key := GenerateStorageKey("a_exported.jpg")

	assert.True(t, strings.HasPrefix(key, "exported/a_exported_"), key)
	assert.True(t, strings.HasSuffix(key, ".jpg"), key)
	assert.NotEqual(t, key, GenerateStorageKey("a_exported.jpg"))
}
