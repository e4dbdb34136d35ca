package processor

import (
	"fmt"
	"image"
	"io"
	"math"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/phambaophuc/image-export/internal/models"
	"golang.org/x/image/tiff"
)

var tiffOptions = &tiff.Options{Compression: tiff.Deflate, Predictor: true}

func (p *ImageProcessor) encodeImage(w io.Writer, img image.Image, format models.ImageFormat, sourcePath string, quality int) error {
	switch format {
	case models.FormatJPEG:
		return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(quality))
	case models.FormatPNG:
		return imaging.Encode(w, img, imaging.PNG)
	case models.FormatTIFF:
		return tiff.Encode(w, img, tiffOptions)
	case models.FormatOriginal:
		return encodeAsSource(w, img, sourcePath, quality)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

func encodeAsSource(w io.Writer, img image.Image, sourcePath string, quality int) error {
	f, err := imaging.FormatFromFilename(sourcePath)
	if err != nil {
		return fmt.Errorf("%w: original format of %s", ErrUnsupportedFormat, filepath.Base(sourcePath))
	}

	switch f {
	case imaging.JPEG:
		return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(quality))
	case imaging.TIFF:
		return tiff.Encode(w, img, tiffOptions)
	default:
		return imaging.Encode(w, img, f)
	}
}

// outputExtension picks the file extension for the exported file. Formats
// without an encoder are rejected before the source is decoded.
func outputExtension(format models.ImageFormat, sourcePath string) (string, error) {
	switch format {
	case models.FormatJPEG:
		return "jpg", nil
	case models.FormatPNG:
		return "png", nil
	case models.FormatTIFF:
		return "tiff", nil
	case models.FormatOriginal:
		if _, err := imaging.FormatFromFilename(sourcePath); err != nil {
			return "", fmt.Errorf("%w: original format of %s", ErrUnsupportedFormat, filepath.Base(sourcePath))
		}
		return strings.TrimPrefix(filepath.Ext(sourcePath), "."), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// quality maps the 0-100 setting onto the encoder's 1-100 range.
func quality(q float64) int {
	return min(max(int(math.Round(q)), 1), 100)
}
