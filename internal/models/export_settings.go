package models

type ImageFormat string

const (
	FormatJPEG     ImageFormat = "jpeg"
	FormatJPEGXL   ImageFormat = "jpeg_xl"
	FormatAVIF     ImageFormat = "avif"
	FormatPSD      ImageFormat = "psd"
	FormatTIFF     ImageFormat = "tiff"
	FormatPNG      ImageFormat = "png"
	FormatDNG      ImageFormat = "dng"
	FormatOriginal ImageFormat = "original"
)

// IsLossy reports whether the quality setting affects the encoded output.
func (f ImageFormat) IsLossy() bool {
	return f == FormatJPEG || f == FormatAVIF
}

type ResizeToFit string

const (
	FitWidthAndHeight ResizeToFit = "width_and_height"
	FitDimensions     ResizeToFit = "dimensions"
	FitLongEdge       ResizeToFit = "long_edge"
	FitShortEdge      ResizeToFit = "short_edge"
	FitMegapixels     ResizeToFit = "megapixels"
	FitPixels         ResizeToFit = "pixels"
)

// LengthUnit is the unit resizeWidth, resizeHeight and resizeSize are stored in.
type LengthUnit string

const (
	UnitPixels LengthUnit = "pixels"
	UnitInches LengthUnit = "inches"
	UnitCms    LengthUnit = "cms"
)

// ResolutionUnit is the unit resizeResolution is stored in.
type ResolutionUnit string

const (
	PixelsPerInch ResolutionUnit = "pixels_per_inch"
	PixelsPerCm   ResolutionUnit = "pixels_per_cm"
)

type ExportLocation struct {
	FolderPath string `json:"folderPath" validate:"required"`
}

type FileSettings struct {
	ImageFormat ImageFormat `json:"imageFormat" validate:"required,oneof=jpeg jpeg_xl avif psd tiff png dng original"`
	Quality     float64     `json:"quality" validate:"finite,min=0,max=100"`
}

type ImageSizing struct {
	ResizeEnabled        bool           `json:"resizeEnabled"`
	ResizeToFit          ResizeToFit    `json:"resizeToFit" validate:"required,oneof=width_and_height dimensions long_edge short_edge megapixels pixels"`
	Enlarge              bool           `json:"enlarge"`
	ResizeWidth          float64        `json:"resizeWidth" validate:"finite,min=1"`
	ResizeHeight         float64        `json:"resizeHeight" validate:"finite,min=1"`
	ResizeSize           float64        `json:"resizeSize" validate:"finite,min=1"`
	ResizeSizeMegapixels float64        `json:"resizeSizeMegapixels" validate:"finite,min=1"`
	ResizeIn             LengthUnit     `json:"resizeIn" validate:"required,oneof=pixels inches cms"`
	ResizeResolution     float64        `json:"resizeResolution" validate:"finite,min=1"`
	ResizeResolutionIn   ResolutionUnit `json:"resizeResolutionIn" validate:"required,oneof=pixels_per_inch pixels_per_cm"`
}

// ExportSettings is replaced as a whole on every edit. It holds only value
// fields so a plain assignment is a full copy.
type ExportSettings struct {
	ExportLocation ExportLocation `json:"exportLocation"`
	FileSettings   FileSettings   `json:"fileSettings"`
	ImageSizing    ImageSizing    `json:"imageSizing"`
}

const (
	DefaultQuality              = 70
	DefaultResizeLength         = 1000
	DefaultResizeSizeMegapixels = 5
	DefaultResizeResolution     = 240
)

func DefaultExportSettings() ExportSettings {
	return ExportSettings{
		FileSettings: FileSettings{
			ImageFormat: FormatJPEG,
			Quality:     DefaultQuality,
		},
		ImageSizing: ImageSizing{
			ResizeEnabled:        false,
			ResizeToFit:          FitWidthAndHeight,
			Enlarge:              false,
			ResizeWidth:          DefaultResizeLength,
			ResizeHeight:         DefaultResizeLength,
			ResizeSize:           DefaultResizeLength,
			ResizeSizeMegapixels: DefaultResizeSizeMegapixels,
			ResizeIn:             UnitPixels,
			ResizeResolution:     DefaultResizeResolution,
			ResizeResolutionIn:   PixelsPerInch,
		},
	}
}
