package settings

import (
	"github.com/phambaophuc/image-export/internal/models"
	"github.com/phambaophuc/image-export/internal/services/units"
)

// Update turns one settings value into the next. Updates never modify their
// input; ExportSettings is copied on assignment.
type Update func(models.ExportSettings) models.ExportSettings

// Apply runs updates in order and returns the final value.
func Apply(s models.ExportSettings, updates ...Update) models.ExportSettings {
	for _, u := range updates {
		s = u(s)
	}
	return s
}

func WithFolderPath(path string) Update {
	return func(s models.ExportSettings) models.ExportSettings {
		s.ExportLocation.FolderPath = path
		return s
	}
}

// WithImageFormat stores the format as given. Picking "original" does not
// touch resizeEnabled.
func WithImageFormat(f models.ImageFormat) Update {
	return func(s models.ExportSettings) models.ExportSettings {
		s.FileSettings.ImageFormat = f
		return s
	}
}

func WithQuality(q float64) Update {
	return func(s models.ExportSettings) models.ExportSettings {
		s.FileSettings.Quality = q
		return s
	}
}

func WithResizeEnabled(enabled bool) Update {
	return func(s models.ExportSettings) models.ExportSettings {
		s.ImageSizing.ResizeEnabled = enabled
		return s
	}
}

func WithResizeToFit(fit models.ResizeToFit) Update {
	return func(s models.ExportSettings) models.ExportSettings {
		s.ImageSizing.ResizeToFit = fit
		return s
	}
}

func WithEnlarge(enlarge bool) Update {
	return func(s models.ExportSettings) models.ExportSettings {
		s.ImageSizing.Enlarge = enlarge
		return s
	}
}

func WithResizeWidth(v float64) Update {
	return func(s models.ExportSettings) models.ExportSettings {
		s.ImageSizing.ResizeWidth = v
		return s
	}
}

func WithResizeHeight(v float64) Update {
	return func(s models.ExportSettings) models.ExportSettings {
		s.ImageSizing.ResizeHeight = v
		return s
	}
}

func WithResizeSize(v float64) Update {
	return func(s models.ExportSettings) models.ExportSettings {
		s.ImageSizing.ResizeSize = v
		return s
	}
}

func WithResizeSizeMegapixels(v float64) Update {
	return func(s models.ExportSettings) models.ExportSettings {
		s.ImageSizing.ResizeSizeMegapixels = v
		return s
	}
}

func WithResizeResolution(v float64) Update {
	return func(s models.ExportSettings) models.ExportSettings {
		s.ImageSizing.ResizeResolution = v
		return s
	}
}

// WithResizeIn switches the length unit and rescales width, height and size
// so the physical size stays the same.
func WithResizeIn(unit models.LengthUnit) Update {
	return func(s models.ExportSettings) models.ExportSettings {
		s.ImageSizing = units.ConvertLength(s.ImageSizing, unit)
		return s
	}
}

// WithResizeResolutionIn switches the resolution unit and rescales the
// resolution so the density stays the same.
func WithResizeResolutionIn(unit models.ResolutionUnit) Update {
	return func(s models.ExportSettings) models.ExportSettings {
		s.ImageSizing = units.ConvertResolution(s.ImageSizing, unit)
		return s
	}
}
