package settings

import "github.com/phambaophuc/image-export/internal/models"

// Patch is a partial edit. Nil fields are left alone.
type Patch struct {
	FolderPath           *string                `json:"folderPath"`
	ImageFormat          *models.ImageFormat    `json:"imageFormat"`
	Quality              *float64               `json:"quality"`
	ResizeEnabled        *bool                  `json:"resizeEnabled"`
	ResizeToFit          *models.ResizeToFit    `json:"resizeToFit"`
	Enlarge              *bool                  `json:"enlarge"`
	ResizeWidth          *float64               `json:"resizeWidth"`
	ResizeHeight         *float64               `json:"resizeHeight"`
	ResizeSize           *float64               `json:"resizeSize"`
	ResizeSizeMegapixels *float64               `json:"resizeSizeMegapixels"`
	ResizeIn             *models.LengthUnit     `json:"resizeIn" binding:"omitempty,oneof=pixels inches cms"`
	ResizeResolution     *float64               `json:"resizeResolution"`
	ResizeResolutionIn   *models.ResolutionUnit `json:"resizeResolutionIn" binding:"omitempty,oneof=pixels_per_inch pixels_per_cm"`
}

// ChangesUnits reports whether applying the patch runs a unit conversion.
func (p Patch) ChangesUnits() bool {
	return p.ResizeIn != nil || p.ResizeResolutionIn != nil
}

// Updates lists the patch as updates. Unit switches come first so values
// given in the same patch are taken as already expressed in the new units.
func (p Patch) Updates() []Update {
	var updates []Update

	if p.ResizeResolutionIn != nil {
		updates = append(updates, WithResizeResolutionIn(*p.ResizeResolutionIn))
	}
	if p.ResizeIn != nil {
		updates = append(updates, WithResizeIn(*p.ResizeIn))
	}

	if p.FolderPath != nil {
		updates = append(updates, WithFolderPath(*p.FolderPath))
	}
	if p.ImageFormat != nil {
		updates = append(updates, WithImageFormat(*p.ImageFormat))
	}
	if p.Quality != nil {
		updates = append(updates, WithQuality(*p.Quality))
	}
	if p.ResizeEnabled != nil {
		updates = append(updates, WithResizeEnabled(*p.ResizeEnabled))
	}
	if p.ResizeToFit != nil {
		updates = append(updates, WithResizeToFit(*p.ResizeToFit))
	}
	if p.Enlarge != nil {
		updates = append(updates, WithEnlarge(*p.Enlarge))
	}
	if p.ResizeWidth != nil {
		updates = append(updates, WithResizeWidth(*p.ResizeWidth))
	}
	if p.ResizeHeight != nil {
		updates = append(updates, WithResizeHeight(*p.ResizeHeight))
	}
	if p.ResizeSize != nil {
		updates = append(updates, WithResizeSize(*p.ResizeSize))
	}
	if p.ResizeSizeMegapixels != nil {
		updates = append(updates, WithResizeSizeMegapixels(*p.ResizeSizeMegapixels))
	}
	if p.ResizeResolution != nil {
		updates = append(updates, WithResizeResolution(*p.ResizeResolution))
	}
	return updates
}
