package media

import (
	"os"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/labelsmith/labelsmith/pkg/errors"
)

// Registry holds the known media profiles, keyed by id.
type Registry struct {
	profiles map[string]Profile
}

// Builtin returns a registry with the standard continuous tape widths and
// a die-cut example. All built-ins are pre-validated.
func Builtin() *Registry {
	r := &Registry{profiles: make(map[string]Profile)}
	builtins := []Profile{
		{ID: "tape-6", Name: "6 mm continuous tape", WidthMM: 6, UsableDots: 32},
		{ID: "tape-9", Name: "9 mm continuous tape", WidthMM: 9, UsableDots: 52},
		{ID: "tape-12", Name: "12 mm continuous tape", WidthMM: 12, UsableDots: 70},
		{ID: "tape-18", Name: "18 mm continuous tape", WidthMM: 18, UsableDots: 112},
		{ID: "tape-24", Name: "24 mm continuous tape", WidthMM: 24, UsableDots: 128},
		{ID: "tape-36", Name: "36 mm continuous tape", WidthMM: 36, UsableDots: 224},
		{ID: "die-cut-17x54", Name: "17×54 mm die-cut label", WidthMM: 17, UsableDots: 112, FixedLengthDots: 432},
	}
	for _, p := range builtins {
		// Built-in values are known good.
		_ = p.ValidateAndSetDefaults()
		r.profiles[p.ID] = p
	}
	return r
}

// Get returns the profile with the given id.
func (r *Registry) Get(id string) (Profile, error) {
	p, ok := r.profiles[id]
	if !ok {
		return Profile{}, errors.New(errors.ErrCodeInvalidMedia, "unknown media %q", id)
	}
	return p, nil
}

// Default returns the profile used when no media is requested.
func (r *Registry) Default() Profile {
	if p, ok := r.profiles[DefaultID]; ok {
		return p
	}
	// A registry without the default id still has to answer; fall back to
	// any profile in deterministic order.
	list := r.List()
	if len(list) > 0 {
		return list[0]
	}
	p := Profile{ID: DefaultID, WidthMM: 12, UsableDots: 70}
	_ = p.ValidateAndSetDefaults()
	return p
}

// List returns all profiles sorted by id.
func (r *Registry) List() []Profile {
	out := make([]Profile, 0, len(r.profiles))
	for _, p := range r.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Add validates a profile and merges it into the registry, replacing any
// existing profile with the same id.
func (r *Registry) Add(p Profile) error {
	if err := p.ValidateAndSetDefaults(); err != nil {
		return err
	}
	r.profiles[p.ID] = p
	return nil
}

// profileFile is the on-disk TOML shape for extra media profiles.
//
//	[[media]]
//	id = "tape-4"
//	name = "4 mm continuous tape"
//	width_mm = 4.0
type profileFile struct {
	Media []Profile `toml:"media"`
}

// LoadFile merges the profiles from a TOML file over the registry.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidMedia, err, "read media file %s", path)
	}
	return r.LoadTOML(data)
}

// LoadTOML merges the profiles from TOML data over the registry.
func (r *Registry) LoadTOML(data []byte) error {
	var file profileFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidMedia, err, "parse media profiles")
	}
	for _, p := range file.Media {
		if err := r.Add(p); err != nil {
			return err
		}
	}
	return nil
}
