// Package viz renders sweep results and cavity figures on the terminal.
//
// Static output uses asciigraph ([Plot]) or a braille [Canvas]; reports are
// styled with lipgloss. [ScanModel] is a Bubble Tea program that re-runs a
// short sweep whenever the window changes.
//
// # Key Bindings
//
//	←/→  - Shift the sweep window by a tenth of its span
//	+/-  - Zoom in/out
//	Tab  - Cycle detectors
//	L    - Toggle log10 scale
//	R    - Reset window
//	Q    - Quit
package viz
