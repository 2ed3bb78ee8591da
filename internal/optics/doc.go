// Package optics provides the model primitives for frequency-domain optical
// simulations.
//
// A [Model] holds named elements joined by spaces:
//
//   - [Laser], [Mirror], [Beamsplitter], [Modulator]: optical elements
//   - [Port]: a connection slot identified by element name and index
//   - [Space]: a length of free space (or medium) between two ports
//   - [Cavity]: a resonant region declared from a source port
//   - [Detector]: a power tap bound to a [Node]
//
// # Ports across copies
//
// Ports are plain values, so a port taken from one model names the same
// slot in any [Model.DeepCopy] of it. [Model.ResolvePort] performs the
// look-up among the open ports of the copy and fails with a
// [PortResolutionError] when the slot is missing or already connected.
//
// # Parameters
//
// Every element and space implements [Configurable]. Parameters are
// addressed as "component.param":
//
//	m.SetParam("s_mi_mo.L", 0.15)
//	m.SetParam("m_input.phi", 90)
package optics
