package processor

import (
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/phambaophuc/image-export/pkg/utils"
)

// ValidateSource checks that path is a regular file with a supported image
// extension whose content is actually an image.
func (p *ImageProcessor) ValidateSource(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to read source image: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("source %s is a directory", path)
	}
	if p.cfg.MaxFileSize > 0 && info.Size() > p.cfg.MaxFileSize {
		return fmt.Errorf("file size %s exceeds maximum allowed size %s",
			humanize.Bytes(uint64(info.Size())), humanize.Bytes(uint64(p.cfg.MaxFileSize)))
	}
	if !utils.IsSupportedImage(path) {
		return fmt.Errorf("unsupported source image type: %s", path)
	}

	mime, err := mimetype.DetectFile(path)
	if err != nil {
		return fmt.Errorf("failed to detect content type: %w", err)
	}
	if !strings.HasPrefix(mime.String(), "image/") {
		return fmt.Errorf("source content is %s, not an image", mime.String())
	}
	return nil
}
