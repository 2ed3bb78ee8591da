package scope

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const capture = `% Moku:Lab Oscilloscope
% Acquired 2024-03-01
% Time (s), Channel A (V), Channel B (V)
0.000, 0.10, 1.00
0.001, 0.20, 0.90
0.002, 0.30, 0.40
0.003, 0.40, 0.95
`

func TestReadChannels(t *testing.T) {
	a, err := Read(strings.NewReader(capture), 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0.001, 0.002, 0.003}, a.Time)
	assert.Equal(t, []float64{0.1, 0.2, 0.3, 0.4}, a.Voltage)

	b, err := Read(strings.NewReader(capture), 2)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0.9, 0.4, 0.95}, b.Voltage)
}

func TestReadHeaderRowAndUnsorted(t *testing.T) {
	tr, err := Read(strings.NewReader("time,volts\n0.2,2\n0.1,1\n"), 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0.2}, tr.Time)
	assert.Equal(t, []float64{1, 2}, tr.Voltage)
}

func TestReadErrors(t *testing.T) {
	_, err := Read(strings.NewReader("% only comments\n"), 1)
	assert.ErrorIs(t, err, ErrEmptyTrace)

	_, err = Read(strings.NewReader(capture), 3)
	assert.ErrorContains(t, err, "channel 3")

	_, err = Read(strings.NewReader("0,1\n0.1,x\n"), 1)
	assert.ErrorContains(t, err, "bad voltage")

	_, err = Read(strings.NewReader(capture), 0)
	assert.Error(t, err)
}

func TestSlice(t *testing.T) {
	tr, err := Read(strings.NewReader(capture), 2)
	require.NoError(t, err)

	s := tr.Slice(0.001, 0.002)
	assert.Equal(t, []float64{0.001, 0.002}, s.Time)
	assert.Equal(t, []float64{0.9, 0.4}, s.Voltage)

	assert.Zero(t, tr.Slice(1, 2).Len())
	assert.Zero(t, tr.Slice(0.002, 0.001).Len())
}

func TestNegate(t *testing.T) {
	tr := &Trace{Time: []float64{0, 1}, Voltage: []float64{1, -2}}
	assert.Equal(t, []float64{-1, 2}, tr.Negate().Voltage)
	assert.Equal(t, []float64{1, -2}, tr.Voltage)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fsr.csv")
	require.NoError(t, os.WriteFile(path, []byte(capture), 0o644))
	tr, err := Load(path, 2)
	require.NoError(t, err)
	assert.Equal(t, 4, tr.Len())

	_, err = Load(filepath.Join(t.TempDir(), "missing.csv"), 1)
	assert.Error(t, err)
}
