package processor

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"

	"github.com/disintegration/imaging"
	"github.com/phambaophuc/image-export/internal/models"
	"go.uber.org/zap"
)

const previewQuality = 85

// LoadPreview decodes the source, bounds its long edge and returns it as a
// base64 JPEG. Results are cached per file version when a cache is set.
func (p *ImageProcessor) LoadPreview(ctx context.Context, imagePath string) (*models.PreviewImage, error) {
	if err := p.ValidateSource(imagePath); err != nil {
		return nil, err
	}

	info, err := os.Stat(imagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read source image: %w", err)
	}
	cacheKey := p.previewCacheKey(imagePath, info)

	if cached, ok := p.cachedPreview(ctx, cacheKey); ok {
		p.logger.Info("Cache hit", zap.String("image_path", imagePath))
		return cached, nil
	}

	img, err := imaging.Open(imagePath, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if edge := p.cfg.PreviewMaxEdge; edge > 0 {
		img = imaging.Fit(img, edge, edge, imaging.Lanczos)
	}

	buffer := &bytes.Buffer{}
	if err := imaging.Encode(buffer, img, imaging.JPEG, imaging.JPEGQuality(previewQuality)); err != nil {
		return nil, fmt.Errorf("failed to encode preview: %w", err)
	}

	bounds := img.Bounds()
	preview := &models.PreviewImage{
		ImagePath:   imagePath,
		ContentType: "image/jpeg",
		Data:        base64.StdEncoding.EncodeToString(buffer.Bytes()),
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
	}

	p.storePreview(ctx, cacheKey, preview)
	return preview, nil
}

func (p *ImageProcessor) cachedPreview(ctx context.Context, cacheKey string) (*models.PreviewImage, bool) {
	if p.cache == nil {
		return nil, false
	}

	data, err := p.cache.GetFromCache(ctx, cacheKey)
	if err != nil {
		p.logger.Warn("Failed to read preview cache", zap.Error(err))
		return nil, false
	}
	if data == nil {
		return nil, false
	}

	var preview models.PreviewImage
	if err := json.Unmarshal(data, &preview); err != nil {
		p.logger.Warn("Failed to unmarshal cached data", zap.Error(err))
		return nil, false
	}
	return &preview, true
}

func (p *ImageProcessor) storePreview(ctx context.Context, cacheKey string, preview *models.PreviewImage) {
	if p.cache == nil {
		return
	}

	data, err := json.Marshal(preview)
	if err != nil {
		return
	}
	if err := p.cache.SetCache(ctx, cacheKey, data); err != nil {
		p.logger.Warn("Failed to cache data", zap.String("cache_key", cacheKey), zap.Error(err))
	}
}

// previewCacheKey changes whenever the file is rewritten or the preview size
// is reconfigured.
func (p *ImageProcessor) previewCacheKey(imagePath string, info os.FileInfo) string {
	hash := md5.New()
	hash.Write([]byte(imagePath))
	hash.Write([]byte(fmt.Sprintf("_%d_%d_%d", info.Size(), info.ModTime().UnixNano(), p.cfg.PreviewMaxEdge)))
	return fmt.Sprintf("preview_cache:%x", hash.Sum(nil))
}
