// Package fonts resolves system font files for text measurement and
// preview rendering.
//
// Layout items name fonts by family ("sans", "serif", "mono") and style
// (bold, italic), never by file. The resolver maps that to a usable TTF
// on the host by probing a fixed list of widely installed faces, so the
// same layout measures the same on Linux, macOS and Windows hosts that
// carry any of them. Lookups are cached; a style with no usable face
// resolves to "" and callers fall back to estimation.
//
// # Usage
//
//	r := fonts.NewResolver()
//	path := r.Path(fonts.Style{Family: fonts.FamilySans, Bold: true})
//	if path == "" {
//		// no usable face, estimate instead
//	}
package fonts

import (
	"sort"
	"sync"

	"github.com/flopp/go-findfont"
)

// Families understood by the resolver. Unknown family names resolve
// like FamilySans.
const (
	FamilySans  = "sans"
	FamilySerif = "serif"
	FamilyMono  = "mono"
)

// Style selects a face within a family.
type Style struct {
	Family string
	Bold   bool
	Italic bool
}

// faceSet holds probe-order filenames for one family.
type faceSet struct {
	regular    []string
	bold       []string
	italic     []string
	boldItalic []string
}

// families covers DejaVu and Liberation (Linux), Noto (Android/Linux),
// the classic Microsoft core fonts (macOS/Windows) and GNU FreeFont.
var families = map[string]faceSet{
	FamilySans: {
		regular:    []string{"DejaVuSans.ttf", "LiberationSans-Regular.ttf", "NotoSans-Regular.ttf", "Arial.ttf", "arial.ttf", "FreeSans.ttf"},
		bold:       []string{"DejaVuSans-Bold.ttf", "LiberationSans-Bold.ttf", "NotoSans-Bold.ttf", "Arial Bold.ttf", "arialbd.ttf", "FreeSansBold.ttf"},
		italic:     []string{"DejaVuSans-Oblique.ttf", "LiberationSans-Italic.ttf", "NotoSans-Italic.ttf", "Arial Italic.ttf", "ariali.ttf", "FreeSansOblique.ttf"},
		boldItalic: []string{"DejaVuSans-BoldOblique.ttf", "LiberationSans-BoldItalic.ttf", "NotoSans-BoldItalic.ttf", "arialbi.ttf", "FreeSansBoldOblique.ttf"},
	},
	FamilySerif: {
		regular:    []string{"DejaVuSerif.ttf", "LiberationSerif-Regular.ttf", "NotoSerif-Regular.ttf", "Times New Roman.ttf", "times.ttf", "FreeSerif.ttf"},
		bold:       []string{"DejaVuSerif-Bold.ttf", "LiberationSerif-Bold.ttf", "NotoSerif-Bold.ttf", "timesbd.ttf", "FreeSerifBold.ttf"},
		italic:     []string{"DejaVuSerif-Italic.ttf", "LiberationSerif-Italic.ttf", "NotoSerif-Italic.ttf", "timesi.ttf", "FreeSerifItalic.ttf"},
		boldItalic: []string{"DejaVuSerif-BoldItalic.ttf", "LiberationSerif-BoldItalic.ttf", "NotoSerif-BoldItalic.ttf", "timesbi.ttf", "FreeSerifBoldItalic.ttf"},
	},
	FamilyMono: {
		regular:    []string{"DejaVuSansMono.ttf", "LiberationMono-Regular.ttf", "NotoSansMono-Regular.ttf", "Courier New.ttf", "cour.ttf", "FreeMono.ttf"},
		bold:       []string{"DejaVuSansMono-Bold.ttf", "LiberationMono-Bold.ttf", "NotoSansMono-Bold.ttf", "courbd.ttf", "FreeMonoBold.ttf"},
		italic:     []string{"DejaVuSansMono-Oblique.ttf", "LiberationMono-Italic.ttf", "NotoSansMono-Italic.ttf", "couri.ttf", "FreeMonoOblique.ttf"},
		boldItalic: []string{"DejaVuSansMono-BoldOblique.ttf", "LiberationMono-BoldItalic.ttf", "courbi.ttf", "FreeMonoBoldOblique.ttf"},
	},
}

// Families returns the known family names, sorted.
func Families() []string {
	names := make([]string, 0, len(families))
	for name := range families {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolver caches style lookups against the host font directories.
// Safe for concurrent use.
type Resolver struct {
	override string

	mu    sync.Mutex
	paths map[Style]string
}

// NewResolver creates a resolver that probes the system font directories.
func NewResolver() *Resolver {
	return &Resolver{paths: make(map[Style]string)}
}

// NewFixedResolver resolves every style to the given file. Used when a
// deployment ships its own face and for reproducible tests.
func NewFixedResolver(path string) *Resolver {
	return &Resolver{override: path, paths: make(map[Style]string)}
}

// Path resolves a font file for the style, caching the result. Styled
// lookups degrade toward the family's regular face; "" means nothing
// usable was found.
func (r *Resolver) Path(style Style) string {
	if r.override != "" {
		return r.override
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if path, ok := r.paths[style]; ok {
		return path
	}

	path := ""
	for _, name := range candidates(style) {
		if p, err := findfont.Find(name); err == nil {
			path = p
			break
		}
	}

	r.paths[style] = path
	return path
}

// candidates returns probe-order filenames for a style.
func candidates(style Style) []string {
	set, ok := families[style.Family]
	if !ok {
		set = families[FamilySans]
	}

	var names []string
	switch {
	case style.Bold && style.Italic:
		names = append(names, set.boldItalic...)
		names = append(names, set.bold...)
	case style.Bold:
		names = append(names, set.bold...)
	case style.Italic:
		names = append(names, set.italic...)
	}
	return append(names, set.regular...)
}
