// Package units converts the sizing fields of an export between length and
// resolution units while keeping the physical size and density unchanged.
//
// Resolutions are assumed to be >= 1; callers validate before converting.
package units

import "github.com/phambaophuc/image-export/internal/models"

// CentimetersPerInch is exact by definition.
const CentimetersPerInch = 2.54

// PixelsPerInch returns the density in pixels per inch regardless of the
// unit the resolution is stored in.
func PixelsPerInch(resolution float64, unit models.ResolutionUnit) float64 {
	if unit == models.PixelsPerInch {
		return resolution
	}
	return resolution * CentimetersPerInch
}

// PixelsPerCentimeter returns the density in pixels per centimeter regardless
// of the unit the resolution is stored in.
func PixelsPerCentimeter(resolution float64, unit models.ResolutionUnit) float64 {
	if unit == models.PixelsPerCm {
		return resolution
	}
	return resolution / CentimetersPerInch
}

// KnownLength reports whether u is one of the supported length units.
func KnownLength(u models.LengthUnit) bool {
	switch u {
	case models.UnitPixels, models.UnitInches, models.UnitCms:
		return true
	}
	return false
}

// KnownResolution reports whether u is one of the supported resolution units.
func KnownResolution(u models.ResolutionUnit) bool {
	return u == models.PixelsPerInch || u == models.PixelsPerCm
}

// LinearFactor is the multiplier that takes a length expressed in from to the
// same length expressed in to, at the given resolution.
func LinearFactor(from, to models.LengthUnit, resolution float64, resolutionIn models.ResolutionUnit) float64 {
	if from == to {
		return 1
	}

	ppi := PixelsPerInch(resolution, resolutionIn)
	ppcm := PixelsPerCentimeter(resolution, resolutionIn)

	switch from {
	case models.UnitPixels:
		switch to {
		case models.UnitInches:
			return 1 / ppi
		case models.UnitCms:
			return 1 / ppcm
		}
	case models.UnitInches:
		switch to {
		case models.UnitPixels:
			return ppi
		case models.UnitCms:
			return CentimetersPerInch
		}
	case models.UnitCms:
		switch to {
		case models.UnitPixels:
			return ppcm
		case models.UnitInches:
			return 1 / CentimetersPerInch
		}
	}
	return 1
}

// ConvertLength re-expresses width, height and size in the unit to. All three
// are scaled by one factor in one step. Converting to the current unit
// returns sizing untouched, and so does a conversion from or to an unknown
// unit since no factor relates it to the others.
func ConvertLength(sizing models.ImageSizing, to models.LengthUnit) models.ImageSizing {
	if sizing.ResizeIn == to || !KnownLength(sizing.ResizeIn) || !KnownLength(to) {
		return sizing
	}
	if !KnownResolution(sizing.ResizeResolutionIn) {
		return sizing
	}

	factor := LinearFactor(sizing.ResizeIn, to, sizing.ResizeResolution, sizing.ResizeResolutionIn)

	out := sizing
	out.ResizeWidth = sizing.ResizeWidth * factor
	out.ResizeHeight = sizing.ResizeHeight * factor
	out.ResizeSize = sizing.ResizeSize * factor
	out.ResizeIn = to
	return out
}

// ConvertResolution re-expresses the resolution in the unit to. Linear fields
// are left alone. Unknown units leave sizing untouched.
func ConvertResolution(sizing models.ImageSizing, to models.ResolutionUnit) models.ImageSizing {
	from := sizing.ResizeResolutionIn
	if from == to || !KnownResolution(from) || !KnownResolution(to) {
		return sizing
	}

	out := sizing
	switch {
	case from == models.PixelsPerCm && to == models.PixelsPerInch:
		out.ResizeResolution = sizing.ResizeResolution * CentimetersPerInch
	case from == models.PixelsPerInch && to == models.PixelsPerCm:
		out.ResizeResolution = sizing.ResizeResolution / CentimetersPerInch
	}
	out.ResizeResolutionIn = to
	return out
}

// ToPixels converts a single linear value stored in unit to pixels.
func ToPixels(v float64, unit models.LengthUnit, resolution float64, resolutionIn models.ResolutionUnit) float64 {
	return v * LinearFactor(unit, models.UnitPixels, resolution, resolutionIn)
}
