package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/san-kum/cavitylab/internal/sweep"
)

type ExportData struct {
	Run       *RunMetadata         `json:"run,omitempty"`
	Action    string               `json:"action"`
	Target    string               `json:"target"`
	Samples   int                  `json:"samples"`
	X         []float64            `json:"x"`
	Detectors map[string][]float64 `json:"detectors"`
}

// ExportJSON writes a sweep result, and its run metadata when known, as
// indented JSON.
func ExportJSON(w io.Writer, meta *RunMetadata, res *sweep.Result) error {
	data := ExportData{
		Run:       meta,
		Action:    res.Name,
		Target:    res.Target,
		Samples:   res.Len(),
		X:         res.X,
		Detectors: make(map[string][]float64),
	}
	for _, d := range res.Detectors() {
		p, err := res.Detector(d)
		if err != nil {
			return err
		}
		data.Detectors[d] = p
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// WriteCSV writes a header of "x" and the detector names, then one row
// per sample.
func WriteCSV(w io.Writer, res *sweep.Result) error {
	cw := csv.NewWriter(w)
	detectors := res.Detectors()
	series := make([][]float64, len(detectors))
	for i, d := range detectors {
		p, err := res.Detector(d)
		if err != nil {
			return err
		}
		series[i] = p
	}

	if err := cw.Write(append([]string{"x"}, detectors...)); err != nil {
		return err
	}
	row := make([]string, len(detectors)+1)
	for i := 0; i < res.Len(); i++ {
		row[0] = strconv.FormatFloat(res.XAt(i), 'g', -1, 64)
		for j, p := range series {
			row[j+1] = strconv.FormatFloat(p[i], 'g', -1, 64)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
