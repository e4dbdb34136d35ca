package processor

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
	"github.com/phambaophuc/image-export/internal/models"
	"github.com/phambaophuc/image-export/internal/services/units"
)

func (p *ImageProcessor) resizeImage(img image.Image, sizing models.ImageSizing) image.Image {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	maxWidth, maxHeight := targetBounds(width, height, sizing)
	newWidth, newHeight := fitWithin(width, height, maxWidth, maxHeight, sizing.Enlarge)
	if newWidth == width && newHeight == height {
		return img
	}
	return imaging.Resize(img, newWidth, newHeight, imaging.Lanczos)
}

// targetBounds returns the pixel box the image has to fit in. A zero bound
// leaves that dimension free.
func targetBounds(width, height int, sizing models.ImageSizing) (int, int) {
	toPixels := func(v float64) int {
		px := int(units.ToPixels(v, sizing.ResizeIn, sizing.ResizeResolution, sizing.ResizeResolutionIn))
		return max(px, 1)
	}

	switch sizing.ResizeToFit {
	case models.FitWidthAndHeight, models.FitDimensions:
		return toPixels(sizing.ResizeWidth), toPixels(sizing.ResizeHeight)

	case models.FitLongEdge:
		size := toPixels(sizing.ResizeSize)
		if width > height {
			return size, 0
		}
		return 0, size

	case models.FitShortEdge:
		size := toPixels(sizing.ResizeSize)
		if width < height {
			return size, 0
		}
		return 0, size

	case models.FitMegapixels:
		ratio := math.Sqrt(sizing.ResizeSizeMegapixels * 1_000_000 / float64(width*height))
		return max(int(float64(width)*ratio), 1), max(int(float64(height)*ratio), 1)

	case models.FitPixels:
		return max(int(sizing.ResizeWidth), 1), max(int(sizing.ResizeHeight), 1)
	}
	return 0, 0
}

// fitWithin scales (width, height) by the largest ratio that keeps it inside
// the bounds. Without enlarge the image is never scaled up.
func fitWithin(width, height, maxWidth, maxHeight int, enlarge bool) (int, int) {
	if maxWidth <= 0 && maxHeight <= 0 {
		return width, height
	}

	ratio := math.Inf(1)
	if maxWidth > 0 {
		ratio = float64(maxWidth) / float64(width)
	}
	if maxHeight > 0 {
		ratio = math.Min(ratio, float64(maxHeight)/float64(height))
	}

	if ratio >= 1 && !enlarge {
		return width, height
	}

	newWidth := max(int(math.Round(float64(width)*ratio)), 1)
	newHeight := max(int(math.Round(float64(height)*ratio)), 1)
	return newWidth, newHeight
}
