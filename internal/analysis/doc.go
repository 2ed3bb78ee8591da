// Package analysis turns oscilloscope captures of a cavity scan into a
// finesse measurement.
//
// The workflow mirrors what is done by hand on the bench:
//
//   - [FindPeaks] on the negated trace locates the resonance dips
//   - the mean dip spacing is one free spectral range in time
//   - [FitLorentzian] fits each dip over one spacing
//   - finesse is the spacing over the mean fitted width
//
// [MeasureFinesse] runs all of it:
//
//	tr, _ := scope.Load("second_fsr_measurement.csv", 1)
//	res, err := analysis.MeasureFinesse(tr.Slice(0.025, 0.135), analysis.FinesseOptions{Distance: 150})
package analysis
