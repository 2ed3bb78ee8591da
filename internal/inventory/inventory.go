// Package inventory reads the laboratory mirror inventory: coating
// reflectivity and transmissivity per vendor, design wavelength and
// surface label.
//
//	[mirrors.newport.775.SR]
//	r = 0.9985
//	t = 0.0015
//
//	[mirrors.thorlabs.775.P01]
//	r_measured = [99.1, 99.3, 99.2]
package inventory

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gonum.org/v1/gonum/stat"
	"gopkg.in/yaml.v3"
)

var ErrNotFound = errors.New("inventory: entry not found")

// Coating is one surface as written in the inventory file. Either the
// fractions r/t are given directly, or one of them is measured in percent
// and the other is its complement.
type Coating struct {
	R         *float64  `toml:"r" yaml:"r,omitempty"`
	T         *float64  `toml:"t" yaml:"t,omitempty"`
	RMeasured []float64 `toml:"r_measured" yaml:"r_measured,omitempty"`
	TMeasured []float64 `toml:"t_measured" yaml:"t_measured,omitempty"`
}

// Resolve returns the power reflectivity and transmissivity as fractions.
func (c Coating) Resolve() (r, t float64, err error) {
	switch {
	case c.R != nil && c.T != nil:
		r, t = *c.R, *c.T
	case len(c.RMeasured) > 0:
		r = stat.Mean(c.RMeasured, nil) / 100
		t = 1 - r
	case len(c.TMeasured) > 0:
		t = stat.Mean(c.TMeasured, nil) / 100
		r = 1 - t
	case c.R != nil:
		r, t = *c.R, 1-*c.R
	case c.T != nil:
		t, r = *c.T, 1-*c.T
	default:
		return 0, 0, errors.New("no r, t or measurement given")
	}
	if r < 0 || r > 1 || t < 0 || t > 1 {
		return 0, 0, fmt.Errorf("r=%g t=%g outside [0, 1]", r, t)
	}
	return r, t, nil
}

// Entry is a resolved inventory surface.
type Entry struct {
	Vendor     string
	Wavelength string
	Surface    string
	R, T       float64
}

func (e Entry) Key() string {
	return e.Vendor + "/" + e.Wavelength + "/" + e.Surface
}

type file struct {
	Mirrors map[string]map[string]map[string]Coating `toml:"mirrors" yaml:"mirrors"`
}

type Inventory struct {
	entries map[string]Entry
}

// Load reads a .toml or .yaml/.yml inventory file.
func Load(path string) (*Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f file
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, &f)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &f)
	default:
		return nil, fmt.Errorf("inventory: unsupported file type %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("inventory: parse %s: %w", path, err)
	}
	return build(f)
}

func build(f file) (*Inventory, error) {
	inv := &Inventory{entries: make(map[string]Entry)}
	for vendor, byWavelength := range f.Mirrors {
		for wl, bySurface := range byWavelength {
			for surface, c := range bySurface {
				r, t, err := c.Resolve()
				if err != nil {
					return nil, fmt.Errorf("inventory: %s/%s/%s: %w", vendor, wl, surface, err)
				}
				e := Entry{Vendor: vendor, Wavelength: wl, Surface: surface, R: r, T: t}
				inv.entries[e.Key()] = e
			}
		}
	}
	return inv, nil
}

// New builds an inventory from already resolved entries.
func New(entries ...Entry) *Inventory {
	inv := &Inventory{entries: make(map[string]Entry, len(entries))}
	for _, e := range entries {
		inv.entries[e.Key()] = e
	}
	return inv
}

func (inv *Inventory) Lookup(vendor, wavelength, surface string) (Entry, error) {
	e, ok := inv.entries[vendor+"/"+wavelength+"/"+surface]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s/%s/%s", ErrNotFound, vendor, wavelength, surface)
	}
	return e, nil
}

// Entries lists every surface sorted by vendor, wavelength and surface.
func (inv *Inventory) Entries() []Entry {
	out := make([]Entry, 0, len(inv.entries))
	for _, e := range inv.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}

func (inv *Inventory) Len() int { return len(inv.entries) }
