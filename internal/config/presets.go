package config

import (
	"math"
	"sort"

	"github.com/san-kum/cavitylab/internal/cavity"
	"github.com/san-kum/cavitylab/internal/inventory"
)

var Presets = map[string]*Config{
	// 25 mm cavity driven at 1550 nm with an AR-side input coupler
	"supermirror_1550": {
		Name:   "supermirror_1550",
		Laser:  LaserConfig{Power: 1, Wavelength: 1550e-9},
		Input:  MirrorConfig{Coating: measuredR(0.03732781857, 0.01831459068), Rc: -1},
		Output: MirrorConfig{Coating: coating(0.99, 0.01), Rc: math.Inf(1)},
		Distances: DistanceConfig{
			MiMo: 25e-3,
		},
		Sweep:    SweepConfig{Kind: SweepPiezo, MoveBy: 2.5e-6},
		Detector: "cav_refl",
	},
	"newport_775": {
		Name:   "newport_775",
		Laser:  LaserConfig{Power: 1, Wavelength: 775e-9},
		Input:  MirrorConfig{Coating: measuredR(73.6692276, 73.37778473), Rc: -1},
		Output: MirrorConfig{Coating: coating(0.97, 0.03), Rc: math.Inf(1)},
		Distances: DistanceConfig{
			MiMo: 25e-3,
		},
		Sweep:    SweepConfig{Kind: SweepPiezo, MoveBy: 2.5e-6},
		Detector: "cav_refl",
	},
	// needs an inventory with both surfaces
	"thorlabs_775": {
		Name:   "thorlabs_775",
		Laser:  LaserConfig{Power: 1, Wavelength: 775e-9},
		Input:  MirrorConfig{Ref: "newport/775/SR", Rc: -1},
		Output: MirrorConfig{Ref: "thorlabs/775/P01", Rc: math.Inf(1)},
		Distances: DistanceConfig{
			MiMo: 20e-3,
		},
		Sweep:    SweepConfig{Kind: SweepPiezo, MoveBy: 2.5e-6},
		Detector: "cav_refl",
	},
	// two carriers overlapped on bs1, phase modulated, tapped by bs2 and
	// sent into a 30 cm cavity
	"demo_30cm": {
		Name:  "demo_30cm",
		Laser: LaserConfig{Power: 100e-6, Wavelength: 1550e-9},
		Host: HostConfig{
			Lasers: []SourceConfig{{Name: "l1548", Power: 0, Wavelength: 1548e-9}},
			Beamsplitters: []SplitterConfig{
				{Name: "bs1", R: 0.5, T: 0.5},
				{Name: "bs2", R: 0.1, T: 0.9},
			},
			Modulators: []ModulatorConfig{{Name: "eom", Frequency: 100e6, Midx: 10}},
			Spaces: []SpaceConfig{
				{Name: "source_bs1", From: "source.p1", To: "bs1.p1", L: 1},
				{Name: "l1548_bs1", From: "l1548.p1", To: "bs1.p4", L: 1},
				{Name: "bs1_eom", From: "bs1.p3", To: "eom.p1", L: 0.5},
				{Name: "eom_bs2", From: "eom.p2", To: "bs2.p1", L: 0.5},
			},
			Detectors: []DetectorConfig{
				{Name: "init", Node: "bs2.p2.o"},
				{Name: "refl", Node: "bs2.p4.o"},
			},
			Attach: "bs2.p3",
		},
		Input:  MirrorConfig{Coating: coating(0.99, 0.01), Rc: 1},
		Output: MirrorConfig{Coating: coating(0.99, 0.01), Rc: 1},
		Distances: DistanceConfig{
			ToMirror: 1,
			MiMo:     0.3,
		},
		Modes: ModesConfig{Parity: "even", MaxOrder: 4},
		Sweep: SweepConfig{
			Kind:   SweepXaxis,
			Target: "m_input.phi",
			Start:  -180,
			Stop:   180,
			Steps:  DefaultSteps,
		},
		Detector: "cav_tran",
	},
	// mode-matching lens and an uncoated window ahead of a 25 mm cavity
	"lens_window_1550": {
		Name:  "lens_window_1550",
		Laser: LaserConfig{Power: 1, Wavelength: 1550e-9},
		Host: HostConfig{
			Lenses: []LensConfig{{
				After:    "source.p1",
				Distance: 0.2,
				Lens:     cavity.Lens{Name: "ml", Rc1: 0.05, Rc2: 0.05, Tc: 3e-3, Nr: 1.444},
			}},
			ThickMirrors: []ThickMirrorConfig{{
				After:         "ml_backface.p2",
				Distance:      0.1,
				EdgeThickness: 6.35e-3,
				Diameter:      25.4e-3,
				ThickMirror: cavity.ThickMirror{
					Front:     cavity.Surface{Name: "win_s1", R: 0.04, T: 0.96, Rc: math.Inf(1)},
					Substrate: cavity.Substrate{Name: "window", Nr: 1.444},
					Back:      cavity.Surface{Name: "win_s2", R: 0.04, T: 0.96, Rc: 1},
				},
			}},
			Attach: "win_s2_backface.p2",
		},
		Input:  MirrorConfig{Coating: coating(0.99, 0.01), Rc: -1},
		Output: MirrorConfig{Coating: coating(0.99, 0.01), Rc: math.Inf(1)},
		Distances: DistanceConfig{
			ToMirror: 0.05,
			MiMo:     25e-3,
		},
		Sweep:    SweepConfig{Kind: SweepPiezo, MoveBy: 2.5e-6},
		Detector: "cav_tran",
	},
}

func measuredR(percent ...float64) inventory.Coating {
	return inventory.Coating{RMeasured: percent}
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *cfg
	c.Host = cfg.Host.clone()
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
