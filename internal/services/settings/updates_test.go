package settings

import (
	"testing"

	"github.com/phambaophuc/image-export/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestApply_DoesNotModifyInput(t *testing.T) {
	before := models.DefaultExportSettings()
	snapshot := before

	after := Apply(before,
		WithFolderPath("/out"),
		WithQuality(90),
		WithResizeWidth(640),
	)

	assert.Equal(t, snapshot, before)
	assert.Equal(t, "/out", after.ExportLocation.FolderPath)
	assert.Equal(t, 90.0, after.FileSettings.Quality)
	assert.Equal(t, 640.0, after.ImageSizing.ResizeWidth)
}

func TestLeafUpdates(t *testing.T) {
	s := Apply(models.DefaultExportSettings(),
		WithImageFormat(models.FormatPNG),
		WithResizeEnabled(true),
		WithResizeToFit(models.FitLongEdge),
		WithEnlarge(true),
		WithResizeHeight(480),
		WithResizeSize(2048),
		WithResizeSizeMegapixels(12),
		WithResizeResolution(300),
	)

	assert.Equal(t, models.FormatPNG, s.FileSettings.ImageFormat)
	assert.True(t, s.ImageSizing.ResizeEnabled)
	assert.Equal(t, models.FitLongEdge, s.ImageSizing.ResizeToFit)
	assert.True(t, s.ImageSizing.Enlarge)
	assert.Equal(t, 480.0, s.ImageSizing.ResizeHeight)
	assert.Equal(t, 2048.0, s.ImageSizing.ResizeSize)
	assert.Equal(t, 12.0, s.ImageSizing.ResizeSizeMegapixels)
	assert.Equal(t, 300.0, s.ImageSizing.ResizeResolution)
}

func TestWithImageFormat_OriginalKeepsResizeEnabled(t *testing.T) {
	s := Apply(models.DefaultExportSettings(), WithResizeEnabled(true))

	s = WithImageFormat(models.FormatOriginal)(s)

	assert.Equal(t, models.FormatOriginal, s.FileSettings.ImageFormat)
	assert.True(t, s.ImageSizing.ResizeEnabled)
}

func TestWithResizeIn_ConvertsLinearFields(t *testing.T) {
	s := WithResizeIn(models.UnitInches)(models.DefaultExportSettings())

	assert.Equal(t, models.UnitInches, s.ImageSizing.ResizeIn)
	assert.InEpsilon(t, 1000.0/240, s.ImageSizing.ResizeWidth, 1e-9)
	assert.InEpsilon(t, 1000.0/240, s.ImageSizing.ResizeHeight, 1e-9)
	assert.InEpsilon(t, 1000.0/240, s.ImageSizing.ResizeSize, 1e-9)
}

func TestWithResizeResolutionIn_LeavesLinearFields(t *testing.T) {
	inches := WithResizeIn(models.UnitInches)(models.DefaultExportSettings())

	s := WithResizeResolutionIn(models.PixelsPerCm)(inches)

	assert.Equal(t, models.PixelsPerCm, s.ImageSizing.ResizeResolutionIn)
	assert.InDelta(t, 94.488, s.ImageSizing.ResizeResolution, 1e-3)
	assert.Equal(t, inches.ImageSizing.ResizeWidth, s.ImageSizing.ResizeWidth)
	assert.Equal(t, inches.ImageSizing.ResizeHeight, s.ImageSizing.ResizeHeight)
	assert.Equal(t, models.UnitInches, s.ImageSizing.ResizeIn)
}

func TestUnitUpdates_SameUnitUnchanged(t *testing.T) {
	s := models.DefaultExportSettings()

	assert.Equal(t, s, WithResizeIn(models.UnitPixels)(s))
	assert.Equal(t, s, WithResizeResolutionIn(models.PixelsPerInch)(s))
}

func TestUnitUpdates_UnknownUnitKeepsPhysicalSize(t *testing.T) {
	s := Apply(models.DefaultExportSettings(),
		WithResizeIn("furlongs"),
		WithResizeIn(models.UnitInches),
	)
	assert.Equal(t, models.UnitInches, s.ImageSizing.ResizeIn)
	assert.InEpsilon(t, 1000.0/240, s.ImageSizing.ResizeWidth, 1e-9)

	s = Apply(models.DefaultExportSettings(),
		WithResizeResolutionIn("dpi"),
		WithResizeResolutionIn(models.PixelsPerCm),
	)
	assert.Equal(t, models.PixelsPerCm, s.ImageSizing.ResizeResolutionIn)
	assert.InDelta(t, 94.488, s.ImageSizing.ResizeResolution, 1e-3)
}
