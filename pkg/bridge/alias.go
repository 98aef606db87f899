package bridge

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/labelsmith/labelsmith/pkg/item"
)

// Canonical item fields accepted per item type. The type-specific sets are
// in addition to the common positional fields.
var (
	commonFields = []string{"positionMode", "xOffset", "yOffset", "rotation"}

	typeFields = map[item.Type][]string{
		item.TypeText:    {"text", "fontFamily", "fontSize", "textBold", "textItalic", "textUnderline", "textAlign"},
		item.TypeQR:      {"text", "size", "errorCorrection", "width", "height"},
		item.TypeBarcode: {"text", "protocol", "showText", "width", "height"},
		item.TypeShape:   {"shapeType", "width", "height", "lineWidth", "filled"},
		item.TypeImage:   {"source", "width", "height"},
		item.TypeIcon:    {"icon", "size"},
	}
)

// globalAliases maps loose payload keys onto canonical fields, independent
// of item type.
var globalAliases = map[string]string{
	"position_mode": "positionMode",
	"position":      "positionMode",
	"positioning":   "positionMode",
	"x_offset":      "xOffset",
	"x":             "xOffset",
	"y_offset":      "yOffset",
	"y":             "yOffset",
	"angle":         "rotation",

	"content": "text",
	"data":    "text",
	"value":   "text",

	"font":           "fontFamily",
	"font_family":    "fontFamily",
	"font_size":      "fontSize",
	"bold":           "textBold",
	"text_bold":      "textBold",
	"italic":         "textItalic",
	"text_italic":    "textItalic",
	"underline":      "textUnderline",
	"text_underline": "textUnderline",
	"align":          "textAlign",
	"alignment":      "textAlign",
	"text_align":     "textAlign",

	"error_correction":          "errorCorrection",
	"ecc":                       "errorCorrection",
	"qrErrorCorrectionLevel":    "errorCorrection",
	"qr_error_correction_level": "errorCorrection",

	"format":            "protocol",
	"barcodeFormat":     "protocol",
	"barcode_format":    "protocol",
	"show_text":         "showText",
	"barcodeShowText":   "showText",
	"barcode_show_text": "showText",

	"shape":        "shapeType",
	"shape_type":   "shapeType",
	"kind":         "shapeType",
	"line_width":   "lineWidth",
	"strokeWidth":  "lineWidth",
	"stroke_width": "lineWidth",

	"src":  "source",
	"url":  "source",
	"path": "source",

	"name":   "icon",
	"symbol": "icon",
}

// typeAliases resolve before globalAliases, so a type can claim a key the
// global table maps elsewhere.
var typeAliases = map[item.Type]map[string]string{
	item.TypeText: {
		// On a text item a bare size means the font size.
		"size": "fontSize",
	},
	item.TypeQR: {
		// A qr is square; either edge means size.
		"width":  "size",
		"height": "size",
	},
	item.TypeIcon: {
		"width":  "size",
		"height": "size",
	},
}

// resolveAlias maps a payload key to the canonical field for a type.
func resolveAlias(t item.Type, key string) (string, bool) {
	if canon, ok := typeAliases[t][key]; ok {
		return canon, true
	}
	canon := key
	if mapped, ok := globalAliases[key]; ok {
		canon = mapped
	}
	for _, f := range commonFields {
		if canon == f {
			return canon, true
		}
	}
	for _, f := range typeFields[t] {
		if canon == f {
			return canon, true
		}
	}
	return "", false
}

// CanonicalFields returns the accepted field names for a type, sorted.
func CanonicalFields(t item.Type) []string {
	out := make([]string, 0, len(commonFields)+len(typeFields[t]))
	out = append(out, commonFields...)
	out = append(out, typeFields[t]...)
	sort.Strings(out)
	return out
}

// mergeFields applies a loose payload onto an item. Unknown keys and bad
// values become warnings; fields the item type does not carry are treated
// as unknown. The qr size rule applies here: an explicit size wins, and
// when only width or height are given the smaller one drives size.
func mergeFields(it *item.Item, fields map[string]any) []string {
	if len(fields) == 0 {
		return nil
	}

	var warnings []string

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var (
		qrSizeExplicit bool
		qrSizeFold     float64
		qrSizeFolded   bool
	)

	for _, key := range keys {
		canon, ok := resolveAlias(it.Type, key)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("unknown property %q for %s item", key, it.Type))
			continue
		}

		value := fields[key]
		if it.Type == item.TypeQR && canon == "size" {
			f, ok := asFloat(value)
			if !ok {
				warnings = append(warnings, fmt.Sprintf("property %q: cannot read %v as a number", key, value))
				continue
			}
			if key == "size" {
				qrSizeExplicit = true
				it.SetQRSize(f)
				continue
			}
			if !qrSizeFolded || f < qrSizeFold {
				qrSizeFold = f
				qrSizeFolded = true
			}
			continue
		}

		if warn := applyField(it, canon, value); warn != "" {
			warnings = append(warnings, warn)
		}
	}

	if qrSizeFolded && !qrSizeExplicit {
		it.SetQRSize(qrSizeFold)
	}

	return warnings
}

// applyField sets one canonical field. A non-empty return is a warning and
// the field stays unchanged.
func applyField(it *item.Item, canon string, value any) string {
	badNumber := func() string {
		return fmt.Sprintf("property %q: cannot read %v as a number", canon, value)
	}

	switch canon {
	case "positionMode":
		s, ok := asString(value)
		if !ok {
			return fmt.Sprintf("property %q: cannot read %v as a string", canon, value)
		}
		switch strings.ToLower(s) {
		case "flow", "inline":
			it.PositionMode = item.PositionFlow
		case "absolute", "abs", "fixed", "free":
			it.PositionMode = item.PositionAbsolute
		default:
			return fmt.Sprintf("property %q: unknown position mode %q", canon, s)
		}
	case "xOffset":
		f, ok := asFloat(value)
		if !ok {
			return badNumber()
		}
		it.XOffset = f
	case "yOffset":
		f, ok := asFloat(value)
		if !ok {
			return badNumber()
		}
		it.YOffset = f
	case "rotation":
		f, ok := asFloat(value)
		if !ok {
			return badNumber()
		}
		it.Rotation = f
	case "text":
		s, ok := asString(value)
		if !ok {
			return fmt.Sprintf("property %q: cannot read %v as a string", canon, value)
		}
		it.Text = s
	case "fontFamily":
		s, ok := asString(value)
		if !ok {
			return fmt.Sprintf("property %q: cannot read %v as a string", canon, value)
		}
		it.FontFamily = s
	case "fontSize":
		f, ok := asFloat(value)
		if !ok {
			return badNumber()
		}
		if f <= 0 {
			return fmt.Sprintf("property %q: %v is not a positive size", canon, value)
		}
		it.FontSize = f
	case "textBold", "textItalic", "textUnderline", "filled", "showText":
		b, ok := asBool(value)
		if !ok {
			return fmt.Sprintf("property %q: cannot read %v as a boolean", canon, value)
		}
		switch canon {
		case "textBold":
			it.TextBold = b
		case "textItalic":
			it.TextItalic = b
		case "textUnderline":
			it.TextUnderline = b
		case "filled":
			it.Filled = b
		case "showText":
			it.ShowText = b
		}
	case "textAlign":
		s, ok := asString(value)
		if !ok {
			return fmt.Sprintf("property %q: cannot read %v as a string", canon, value)
		}
		switch strings.ToLower(s) {
		case "left":
			it.TextAlign = item.AlignLeft
		case "center", "centre", "middle":
			it.TextAlign = item.AlignCenter
		case "right":
			it.TextAlign = item.AlignRight
		default:
			return fmt.Sprintf("property %q: unknown alignment %q", canon, s)
		}
	case "size":
		f, ok := asFloat(value)
		if !ok {
			return badNumber()
		}
		if f <= 0 {
			return fmt.Sprintf("property %q: %v is not a positive size", canon, value)
		}
		it.Size = f
	case "errorCorrection":
		s, ok := asString(value)
		if !ok {
			return fmt.Sprintf("property %q: cannot read %v as a string", canon, value)
		}
		level := strings.ToUpper(strings.TrimSpace(s))
		switch level {
		case "L", "M", "Q", "H":
			it.ErrorCorrection = level
		default:
			return fmt.Sprintf("property %q: unknown level %q", canon, s)
		}
	case "protocol":
		s, ok := asString(value)
		if !ok {
			return fmt.Sprintf("property %q: cannot read %v as a string", canon, value)
		}
		switch strings.ToLower(strings.ReplaceAll(s, "-", "")) {
		case "code128":
			it.Protocol = item.ProtocolCode128
		case "ean13", "ean":
			it.Protocol = item.ProtocolEAN13
		case "code39":
			it.Protocol = item.ProtocolCode39
		default:
			return fmt.Sprintf("property %q: unknown protocol %q", canon, s)
		}
	case "shapeType":
		s, ok := asString(value)
		if !ok {
			return fmt.Sprintf("property %q: cannot read %v as a string", canon, value)
		}
		kind, ok := parseShapeKind(s)
		if !ok {
			return fmt.Sprintf("property %q: unknown shape %q", canon, s)
		}
		it.ShapeType = kind
	case "width":
		f, ok := asFloat(value)
		if !ok {
			return badNumber()
		}
		it.Width = f
	case "height":
		f, ok := asFloat(value)
		if !ok {
			return badNumber()
		}
		it.Height = f
	case "lineWidth":
		f, ok := asFloat(value)
		if !ok {
			return badNumber()
		}
		if f <= 0 {
			return fmt.Sprintf("property %q: %v is not a positive width", canon, value)
		}
		it.LineWidth = f
	case "source":
		s, ok := asString(value)
		if !ok {
			return fmt.Sprintf("property %q: cannot read %v as a string", canon, value)
		}
		it.Source = s
	case "icon":
		s, ok := asString(value)
		if !ok {
			return fmt.Sprintf("property %q: cannot read %v as a string", canon, value)
		}
		it.Icon = s
	default:
		return fmt.Sprintf("unknown property %q for %s item", canon, it.Type)
	}
	return ""
}

// parseShapeKind maps loose shape names onto a ShapeType.
func parseShapeKind(s string) (item.ShapeType, bool) {
	switch strings.ToLower(strings.ReplaceAll(s, "_", "")) {
	case "rect", "rectangle", "box":
		return item.ShapeRect, true
	case "roundrect", "rounded":
		return item.ShapeRoundRect, true
	case "oval", "ellipse", "circle":
		return item.ShapeOval, true
	case "line", "divider", "rule":
		return item.ShapeLine, true
	}
	return "", false
}

// asFloat coerces a loose payload value to a number.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

// asString coerces a loose payload value to a string. Numbers format
// naturally so a proposer sending 42 for text content still lands.
func asString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(s), true
	}
	return "", false
}

// asBool coerces a loose payload value to a boolean.
func asBool(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "yes", "on", "1":
			return true, true
		case "false", "no", "off", "0":
			return false, true
		}
		return false, false
	case float64:
		return b != 0, true
	}
	return false, false
}
