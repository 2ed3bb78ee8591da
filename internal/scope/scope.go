// Package scope reads oscilloscope captures exported as CSV: '%' comment
// lines, then rows of time (s) and one or more channel voltages.
package scope

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

var ErrEmptyTrace = errors.New("scope: trace has no samples")

// Trace is a single channel against time, sorted by time.
type Trace struct {
	Time    []float64
	Voltage []float64
}

func (t *Trace) Len() int { return len(t.Time) }

// Slice returns the samples with t0 <= time <= t1. The result shares
// storage with t.
func (t *Trace) Slice(t0, t1 float64) *Trace {
	lo := sort.SearchFloat64s(t.Time, t0)
	hi := sort.Search(len(t.Time), func(i int) bool { return t.Time[i] > t1 })
	if hi < lo {
		hi = lo
	}
	return &Trace{Time: t.Time[lo:hi], Voltage: t.Voltage[lo:hi]}
}

// Negate returns a copy with inverted voltage, turning troughs into peaks.
func (t *Trace) Negate() *Trace {
	v := make([]float64, len(t.Voltage))
	for i, x := range t.Voltage {
		v[i] = -x
	}
	return &Trace{Time: t.Time, Voltage: v}
}

// Load reads channel (1-based, counted after the time column) of a CSV
// capture.
func Load(path string, channel int) (*Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tr, err := Read(f, channel)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tr, nil
}

func Read(r io.Reader, channel int) (*Trace, error) {
	if channel < 1 {
		return nil, fmt.Errorf("scope: channel must be >= 1, got %d", channel)
	}
	cr := csv.NewReader(bufio.NewReader(r))
	cr.Comment = '%'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	tr := &Trace{}
	line := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("scope: %w", err)
		}
		line++
		if len(rec) <= channel {
			return nil, fmt.Errorf("scope: row %d has %d columns, channel %d requested", line, len(rec), channel)
		}
		ts, err := strconv.ParseFloat(strings.TrimSpace(rec[0]), 64)
		if err != nil {
			// header row
			if line == 1 {
				continue
			}
			return nil, fmt.Errorf("scope: row %d: bad time %q", line, rec[0])
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[channel]), 64)
		if err != nil {
			return nil, fmt.Errorf("scope: row %d: bad voltage %q", line, rec[channel])
		}
		tr.Time = append(tr.Time, ts)
		tr.Voltage = append(tr.Voltage, v)
	}
	if tr.Len() == 0 {
		return nil, ErrEmptyTrace
	}
	if !sort.Float64sAreSorted(tr.Time) {
		sort.Sort(byTime{tr})
	}
	return tr, nil
}

type byTime struct{ *Trace }

func (b byTime) Len() int           { return len(b.Time) }
func (b byTime) Less(i, j int) bool { return b.Time[i] < b.Time[j] }
func (b byTime) Swap(i, j int) {
	b.Time[i], b.Time[j] = b.Time[j], b.Time[i]
	b.Voltage[i], b.Voltage[j] = b.Voltage[j], b.Voltage[i]
}
