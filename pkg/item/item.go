// Package item defines the label item model shared by the editor, the
// action bridge, measurement, and normalization.
//
// A label layout is an ordered list of items. Every item has a stable uuid,
// a position mode, offsets, and a rotation; the remaining fields depend on
// the item type. The same struct serves editing, JSON transport, and BSON
// persistence, with a type discriminator instead of per-type structs.
//
// # Position modes
//
// Flow items are laid out sequentially along the feed axis and use their
// offsets as a nudge from the assigned slot. Absolute items are pinned in
// draw space: the offsets place the unrotated box's top-left corner, except
// for shapes, whose offsets are measured from the canvas centre to the
// shape centre.
//
// # QR sizing
//
// A qr item is always square. Size is the single source of truth; width and
// height are derived views and are never stored independently. Payloads
// that set a qr width or height update Size instead.
package item

import (
	"strings"

	"github.com/google/uuid"

	"github.com/labelsmith/labelsmith/pkg/errors"
)

// Type identifies the kind of a label item.
type Type string

// Item types.
const (
	TypeText    Type = "text"
	TypeQR      Type = "qr"
	TypeBarcode Type = "barcode"
	TypeShape   Type = "shape"
	TypeImage   Type = "image"
	TypeIcon    Type = "icon"
)

// Types lists all item types in a stable order.
func Types() []Type {
	return []Type{TypeText, TypeQR, TypeBarcode, TypeShape, TypeImage, TypeIcon}
}

// ParseType converts a string into a Type.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Types() {
		if t == known {
			return t, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidItemType, "unknown item type %q", s)
}

// PositionMode controls how an item is placed on the canvas.
type PositionMode string

// Position modes.
const (
	PositionFlow     PositionMode = "flow"
	PositionAbsolute PositionMode = "absolute"
)

// ShapeType identifies the geometry of a shape item.
type ShapeType string

// Shape types.
const (
	ShapeRect      ShapeType = "rect"
	ShapeRoundRect ShapeType = "roundrect"
	ShapeOval      ShapeType = "oval"
	ShapeLine      ShapeType = "line"
)

// TextAlign controls horizontal text alignment within the item box.
type TextAlign string

// Text alignments.
const (
	AlignLeft   TextAlign = "left"
	AlignCenter TextAlign = "center"
	AlignRight  TextAlign = "right"
)

// Protocol identifies a 1D barcode symbology.
type Protocol string

// Barcode protocols.
const (
	ProtocolCode128 Protocol = "code128"
	ProtocolEAN13   Protocol = "ean13"
	ProtocolCode39  Protocol = "code39"
)

// Creation defaults.
const (
	DefaultFontSize      = 28.0
	DefaultFontFamily    = "sans"
	DefaultQRSize        = 64.0
	DefaultBarcodeHeight = 40.0
	DefaultShapeSize     = 40.0
	DefaultLineWidth     = 2.0
	DefaultImageSize     = 64.0
	DefaultIconSize      = 32.0
	DefaultIcon          = "star"
)

// Item is a single element of a label layout.
//
// Only the fields matching Type are meaningful; the rest stay at their zero
// value and are omitted from serialization.
type Item struct {
	ID           string       `json:"id" bson:"id"`
	Type         Type         `json:"type" bson:"type"`
	PositionMode PositionMode `json:"positionMode" bson:"positionMode"`
	XOffset      float64      `json:"xOffset" bson:"xOffset"`
	YOffset      float64      `json:"yOffset" bson:"yOffset"`
	Rotation     float64      `json:"rotation,omitempty" bson:"rotation,omitempty"`

	// Text fields.
	Text          string    `json:"text,omitempty" bson:"text,omitempty"`
	FontFamily    string    `json:"fontFamily,omitempty" bson:"fontFamily,omitempty"`
	FontSize      float64   `json:"fontSize,omitempty" bson:"fontSize,omitempty"`
	TextBold      bool      `json:"textBold,omitempty" bson:"textBold,omitempty"`
	TextItalic    bool      `json:"textItalic,omitempty" bson:"textItalic,omitempty"`
	TextUnderline bool      `json:"textUnderline,omitempty" bson:"textUnderline,omitempty"`
	TextAlign     TextAlign `json:"textAlign,omitempty" bson:"textAlign,omitempty"`

	// QR fields. Text doubles as the encoded content.
	Size            float64 `json:"size,omitempty" bson:"size,omitempty"`
	ErrorCorrection string  `json:"errorCorrection,omitempty" bson:"errorCorrection,omitempty"`

	// Barcode fields. Height is shared with shapes.
	Protocol Protocol `json:"protocol,omitempty" bson:"protocol,omitempty"`
	ShowText bool     `json:"showText,omitempty" bson:"showText,omitempty"`

	// Shape fields. Width/Height are shared with images.
	ShapeType ShapeType `json:"shapeType,omitempty" bson:"shapeType,omitempty"`
	Width     float64   `json:"width,omitempty" bson:"width,omitempty"`
	Height    float64   `json:"height,omitempty" bson:"height,omitempty"`
	LineWidth float64   `json:"lineWidth,omitempty" bson:"lineWidth,omitempty"`
	Filled    bool      `json:"filled,omitempty" bson:"filled,omitempty"`

	// Image fields.
	Source string `json:"source,omitempty" bson:"source,omitempty"`

	// Icon fields.
	Icon string `json:"icon,omitempty" bson:"icon,omitempty"`
}

// NewText creates a text item with creation defaults.
func NewText() *Item {
	return &Item{
		ID:           uuid.NewString(),
		Type:         TypeText,
		PositionMode: PositionFlow,
		FontFamily:   DefaultFontFamily,
		FontSize:     DefaultFontSize,
		TextAlign:    AlignLeft,
	}
}

// NewQR creates a qr item with creation defaults.
func NewQR() *Item {
	return &Item{
		ID:              uuid.NewString(),
		Type:            TypeQR,
		PositionMode:    PositionFlow,
		Size:            DefaultQRSize,
		ErrorCorrection: "M",
	}
}

// NewBarcode creates a barcode item with creation defaults.
func NewBarcode() *Item {
	return &Item{
		ID:           uuid.NewString(),
		Type:         TypeBarcode,
		PositionMode: PositionFlow,
		Protocol:     ProtocolCode128,
		Height:       DefaultBarcodeHeight,
		ShowText:     true,
	}
}

// NewShape creates a shape item of the given kind with creation defaults.
// Shapes are created in absolute mode with centre-relative offsets.
func NewShape(kind ShapeType) *Item {
	if kind == "" {
		kind = ShapeRect
	}
	return &Item{
		ID:           uuid.NewString(),
		Type:         TypeShape,
		PositionMode: PositionAbsolute,
		ShapeType:    kind,
		Width:        DefaultShapeSize,
		Height:       DefaultShapeSize,
		LineWidth:    DefaultLineWidth,
	}
}

// NewImage creates an image item with creation defaults.
func NewImage() *Item {
	return &Item{
		ID:           uuid.NewString(),
		Type:         TypeImage,
		PositionMode: PositionFlow,
		Width:        DefaultImageSize,
		Height:       DefaultImageSize,
	}
}

// NewIcon creates an icon item with creation defaults.
func NewIcon() *Item {
	return &Item{
		ID:           uuid.NewString(),
		Type:         TypeIcon,
		PositionMode: PositionFlow,
		Icon:         DefaultIcon,
		Size:         DefaultIconSize,
	}
}

// New creates an item of the given type with creation defaults.
// For shapes the default shape type is rect; use NewShape to pick one.
func New(t Type) (*Item, error) {
	switch t {
	case TypeText:
		return NewText(), nil
	case TypeQR:
		return NewQR(), nil
	case TypeBarcode:
		return NewBarcode(), nil
	case TypeShape:
		return NewShape(ShapeRect), nil
	case TypeImage:
		return NewImage(), nil
	case TypeIcon:
		return NewIcon(), nil
	}
	return nil, errors.New(errors.ErrCodeInvalidItemType, "unknown item type %q", t)
}

// SetQRSize updates the size of a qr item, keeping width and height views
// in sync by construction. Non-positive sizes are ignored.
func (i *Item) SetQRSize(size float64) {
	if i.Type != TypeQR || size <= 0 {
		return
	}
	i.Size = size
}

// QRSize returns the edge length of a qr item. Both the width and height of
// a qr item read back as this value.
func (i *Item) QRSize() float64 {
	return i.Size
}

// Clone returns a deep copy of the item.
func (i *Item) Clone() *Item {
	c := *i
	return &c
}

// HasExplicitOffset reports whether the item carries a non-default offset.
// Used to protect caller-placed coordinates from alignment passes.
func (i *Item) HasExplicitOffset() bool {
	return i.XOffset != 0 || i.YOffset != 0
}

// Label returns a short human-readable description for logs and previews.
func (i *Item) Label() string {
	switch i.Type {
	case TypeText, TypeQR, TypeBarcode:
		text := strings.TrimSpace(i.Text)
		if text == "" {
			return string(i.Type)
		}
		if r := []rune(text); len(r) > 24 {
			text = string(r[:24]) + "…"
		}
		return string(i.Type) + " " + text
	case TypeShape:
		return "shape " + string(i.ShapeType)
	case TypeImage:
		return "image"
	case TypeIcon:
		return "icon " + i.Icon
	}
	return string(i.Type)
}
