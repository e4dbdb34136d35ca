package processor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/phambaophuc/image-export/internal/config"
	"github.com/phambaophuc/image-export/internal/models"
	"github.com/phambaophuc/image-export/pkg/utils"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	// registers the webp decoder with image.Decode for webp sources
	_ "golang.org/x/image/webp"
)

var ErrUnsupportedFormat = errors.New("unsupported export format")

// Uploader mirrors an exported file to remote storage.
type Uploader interface {
	Upload(ctx context.Context, buffer *bytes.Buffer, filename, contentType string) (string, error)
}

// PreviewCache stores encoded previews between requests.
type PreviewCache interface {
	GetFromCache(ctx context.Context, cacheKey string) ([]byte, error)
	SetCache(ctx context.Context, cacheKey string, data []byte) error
}

// ImageProcessor is the local conversion engine. It reads sources from disk,
// applies the sizing settings and writes the encoded result next to the
// configured export folder.
type ImageProcessor struct {
	cfg      config.ExportConfig
	uploader Uploader
	cache    PreviewCache
	logger   *zap.Logger
}

func NewImageProcessor(cfg config.ExportConfig, uploader Uploader, cache PreviewCache, logger *zap.Logger) *ImageProcessor {
	return &ImageProcessor{
		cfg:      cfg,
		uploader: uploader,
		cache:    cache,
		logger:   logger,
	}
}

// Convert exports every image. All images are attempted; the returned error
// combines every per-image failure.
func (p *ImageProcessor) Convert(ctx context.Context, imagePaths []string, settings models.ExportSettings) error {
	var errs error
	for _, imagePath := range imagePaths {
		if err := ctx.Err(); err != nil {
			return multierr.Append(errs, err)
		}

		target, err := p.exportImage(ctx, imagePath, settings)
		if err != nil {
			p.logger.Warn("Failed to export image",
				zap.String("image_path", imagePath),
				zap.Error(err))
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", imagePath, err))
			continue
		}

		p.logger.Info("Image exported",
			zap.String("image_path", imagePath),
			zap.String("target", target))
	}
	return errs
}

func (p *ImageProcessor) exportImage(ctx context.Context, imagePath string, settings models.ExportSettings) (string, error) {
	if err := p.ValidateSource(imagePath); err != nil {
		return "", err
	}

	format := settings.FileSettings.ImageFormat
	ext, err := outputExtension(format, imagePath)
	if err != nil {
		return "", err
	}

	img, err := imaging.Open(imagePath, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	if settings.ImageSizing.ResizeEnabled {
		img = p.resizeImage(img, settings.ImageSizing)
	}

	buffer := &bytes.Buffer{}
	if err := p.encodeImage(buffer, img, format, imagePath, quality(settings.FileSettings.Quality)); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}

	target := utils.ExportFilePath(settings.ExportLocation.FolderPath, imagePath, p.cfg.FileSuffix, ext)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("failed to create export folder: %w", err)
	}
	if err := os.WriteFile(target, buffer.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("failed to save image: %w", err)
	}

	p.mirror(ctx, buffer, target)
	return target, nil
}

// mirror uploads the exported file when remote storage is configured. Upload
// failures do not fail the export.
func (p *ImageProcessor) mirror(ctx context.Context, buffer *bytes.Buffer, target string) {
	if p.uploader == nil {
		return
	}

	url, err := p.uploader.Upload(ctx, buffer, filepath.Base(target), utils.ContentTypeFor(target))
	if err != nil {
		p.logger.Warn("Failed to upload to Storage", zap.String("target", target), zap.Error(err))
		return
	}
	p.logger.Info("Exported image mirrored", zap.String("target", target), zap.String("url", url))
}
