// Package media describes the printable media a layout targets.
//
// A Profile carries the physical facts about one tape or die-cut label
// (width, printable dots, fixed length) and derives the sizing limits the
// rest of the engine consumes: the preview canvas, the largest printable
// qr, and the prominence floors that keep fonts and codes legible on
// narrow media.
//
// Profiles live in a Registry. The built-in registry covers the common
// continuous tape widths plus a die-cut example; TOML files merge over the
// built-ins so unusual media can be added without a rebuild.
package media

import (
	"math"

	"github.com/labelsmith/labelsmith/pkg/errors"
	"github.com/labelsmith/labelsmith/pkg/geom"
)

// DefaultID is the profile used when a caller does not pick one.
const DefaultID = "tape-12"

// FontSizeFloor is the hard lower bound for font downscaling, independent
// of media. Below this size thermal print degrades into unreadable smears.
const FontSizeFloor = 10.0

// referenceUsableDots anchors the prominence scale. Floors are tuned for a
// 12 mm tape and scale linearly for narrower or wider media.
const referenceUsableDots = 70.0

// Profile describes one printable medium in device units (dots).
type Profile struct {
	ID        string  `toml:"id" json:"id"`
	Name      string  `toml:"name" json:"name"`
	WidthMM   float64 `toml:"width_mm" json:"widthMM"`
	DotsPerMM float64 `toml:"dots_per_mm" json:"dotsPerMM"`

	// UsableDots is the printable extent across the feed axis.
	UsableDots float64 `toml:"usable_dots" json:"usableDots"`

	// DesignLengthDots is the working canvas length along the feed axis
	// for continuous media. Ignored when FixedLengthDots is set.
	DesignLengthDots float64 `toml:"design_length_dots" json:"designLengthDots"`

	// FixedLengthDots is the label length for die-cut media, 0 for
	// continuous tape.
	FixedLengthDots float64 `toml:"fixed_length_dots" json:"fixedLengthDots,omitempty"`

	MarginDots float64 `toml:"margin_dots" json:"marginDots"`

	validated bool
}

// ValidateAndSetDefaults fills in derived defaults and validates the
// profile. It is idempotent and safe to call multiple times.
func (p *Profile) ValidateAndSetDefaults() error {
	if p.validated {
		return nil
	}

	if err := errors.ValidateMediaID(p.ID); err != nil {
		return err
	}
	if p.DotsPerMM <= 0 {
		p.DotsPerMM = 8
	}
	if p.WidthMM <= 0 && p.UsableDots <= 0 {
		return errors.New(errors.ErrCodeInvalidMedia, "media %s: width_mm or usable_dots required", p.ID)
	}
	if p.UsableDots <= 0 {
		// Print heads cover roughly 85% of the physical tape width.
		p.UsableDots = math.Round(p.WidthMM * p.DotsPerMM * 0.85)
	}
	if p.MarginDots < 0 {
		return errors.New(errors.ErrCodeInvalidMedia, "media %s: negative margin", p.ID)
	}
	if p.MarginDots == 0 {
		p.MarginDots = 2
	}
	if p.DesignLengthDots <= 0 {
		p.DesignLengthDots = 6 * p.UsableDots
	}
	if p.FixedLengthDots < 0 {
		return errors.New(errors.ErrCodeInvalidMedia, "media %s: negative fixed length", p.ID)
	}

	p.validated = true
	return nil
}

// Canvas returns the preview extent in device units. Height is the usable
// print width across the feed; width is the fixed label length for die-cut
// media or the design length for continuous tape.
func (p Profile) Canvas() geom.Size {
	length := p.DesignLengthDots
	if p.FixedLengthDots > 0 {
		length = p.FixedLengthDots
	}
	return geom.Size{Width: length, Height: p.UsableDots}
}

// UsablePrintWidth returns the printable extent across the feed axis.
// Prominence floors scale against this value.
func (p Profile) UsablePrintWidth() float64 {
	return p.UsableDots
}

// MaxQRSize returns the edge length of the largest printable qr square.
func (p Profile) MaxQRSize() float64 {
	return p.UsableDots - 2*p.MarginDots
}

// MinQRSize returns the smallest qr edge the medium should carry. Below
// this, scanners start to miss. The floor scales with the usable print
// width but never drops under 24 dots.
func (p Profile) MinQRSize() float64 {
	return math.Max(24, math.Round(0.3*p.UsableDots))
}

// MinBarcodeHeight returns the smallest printable 1D barcode height.
func (p Profile) MinBarcodeHeight() float64 {
	return math.Max(16, math.Round(0.25*p.UsableDots))
}

// ProminenceScale returns the linear factor applied to size floors tuned
// at the reference tape width.
func (p Profile) ProminenceScale() float64 {
	return p.UsableDots / referenceUsableDots
}

// MinFontSize returns the medium-scaled font prominence floor. It never
// drops under the hard FontSizeFloor.
func (p Profile) MinFontSize() float64 {
	return math.Max(FontSizeFloor, math.Round(12*p.ProminenceScale()))
}

// Continuous reports whether the medium is endless tape (no fixed length).
func (p Profile) Continuous() bool {
	return p.FixedLengthDots == 0
}
