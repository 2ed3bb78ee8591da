package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/cavitylab/internal/cavity"
	"github.com/san-kum/cavitylab/internal/config"
	"github.com/san-kum/cavitylab/internal/sweep"
)

const (
	metadataFile = "metadata.json"
	samplesFile  = "samples.csv"
	configFile   = "config.yaml"
)

var ErrRunNotFound = errors.New("storage: run not found")

type Store struct {
	baseDir string
	now     func() time.Time
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Timestamp  time.Time          `json:"timestamp"`
	Action     string             `json:"action"`
	Target     string             `json:"target"`
	Start      float64            `json:"start"`
	Stop       float64            `json:"stop"`
	Samples    int                `json:"samples"`
	Wavelength float64            `json:"wavelength"`
	Power      float64            `json:"power"`
	Detectors  []string           `json:"detectors"`
	Cavity     *cavity.Properties `json:"cavity,omitempty"`
	Metrics    map[string]float64 `json:"metrics,omitempty"`
}

// NewRunID returns "<name>_<unix seconds>_<8 hex chars>".
func NewRunID(name string, at time.Time) string {
	return fmt.Sprintf("%s_%d_%s", name, at.Unix(), uuid.NewString()[:8])
}

// Save writes the run's metadata, its configuration and one CSV row per
// sweep sample. props may be nil.
func (s *Store) Save(cfg *config.Config, res *sweep.Result, props *cavity.Properties, metrics map[string]float64) (string, error) {
	at := s.now()
	runID := NewRunID(cfg.Name, at)
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Name:       cfg.Name,
		Timestamp:  at,
		Action:     res.Name,
		Target:     res.Target,
		Samples:    res.Len(),
		Wavelength: cfg.Laser.Wavelength,
		Power:      cfg.Laser.Power,
		Detectors:  res.Detectors(),
		Metrics:    finiteMetrics(metrics),
	}
	if res.Len() > 0 {
		meta.Start, meta.Stop = res.XAt(0), res.XAt(res.Len()-1)
	}
	if props != nil && finiteProps(props) {
		meta.Cavity = props
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := config.Save(filepath.Join(runDir, configFile), cfg); err != nil {
		return "", err
	}

	f, err := os.Create(filepath.Join(runDir, samplesFile))
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := WriteCSV(f, res); err != nil {
		return "", err
	}
	return runID, f.Close()
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	return f.Close()
}

// List returns every readable run, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	sort.SliceStable(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadConfig(runID string) (*config.Config, error) {
	return config.Load(filepath.Join(s.baseDir, runID, configFile))
}

// LoadSamples rebuilds the sweep result of a run from its CSV.
func (s *Store) LoadSamples(runID string) (*sweep.Result, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(filepath.Join(s.baseDir, runID, samplesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("storage: %s has no header", samplesFile)
	}

	detectors := records[0][1:]
	x := make([]float64, 0, len(records)-1)
	powers := make([][]float64, len(detectors))
	for i := 1; i < len(records); i++ {
		row := make([]float64, len(records[i]))
		for j, field := range records[i] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("storage: row %d column %d: %w", i, j, err)
			}
			row[j] = v
		}
		x = append(x, row[0])
		for d := range detectors {
			powers[d] = append(powers[d], row[d+1])
		}
	}
	return sweep.NewResult(meta.Action, meta.Target, x, detectors, powers)
}

func finiteMetrics(m map[string]float64) map[string]float64 {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out[k] = v
		}
	}
	return out
}

func finiteProps(p *cavity.Properties) bool {
	for _, v := range []float64{p.Length, p.RoundTrip, p.FSR, p.Finesse, p.FWHM, p.Pole, p.Loss, p.G1, p.G2} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
