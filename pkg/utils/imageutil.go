package utils

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SupportedExtensions lists the source file types the export engine decodes.
var SupportedExtensions = []string{"jpg", "jpeg", "png", "gif", "bmp", "tif", "tiff", "webp"}

var contentTypes = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"bmp":  "image/bmp",
	"tif":  "image/tiff",
	"tiff": "image/tiff",
	"webp": "image/webp",
}

func extension(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

// IsSupportedImage checks the file extension, case-insensitively.
func IsSupportedImage(path string) bool {
	ext := extension(path)
	for _, supported := range SupportedExtensions {
		if ext == supported {
			return true
		}
	}
	return false
}

func ContentTypeFor(path string) string {
	if ct, ok := contentTypes[extension(path)]; ok {
		return ct
	}
	return "application/octet-stream"
}

// ExportFilePath builds <folder>/<source stem><suffix>.<ext>. An empty folder
// means the source image's own folder.
func ExportFilePath(folder, sourcePath, suffix, ext string) string {
	if folder == "" {
		folder = filepath.Dir(sourcePath)
	}
	base := filepath.Base(sourcePath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(folder, stem+suffix+"."+ext)
}

func GenerateStorageKey(filename string) string {
	ext := filepath.Ext(filename)
	name := strings.TrimSuffix(filename, ext)
	timestamp := time.Now().Unix()
	uuid := uuid.New().String()[:8]

	return fmt.Sprintf("exported/%s_%d_%s%s", name, timestamp, uuid, ext)
}
