// Package viz renders a running experiment in the terminal.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [Model]: live view of one scenario driven at 60 frames per second
//   - [RunInteractive]: scenario picker that tunes a config and opens [Model]
//   - [Canvas]: Braille-based pixel canvas with per-cell colour
//   - Temperature buckets are coloured with an HCL blend from the theme
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	.     - Step one frame while paused
//	R     - Reset to the initial state
//	I     - Toggle the quadtree index
//	Q     - Toggle the quadtree overlay
//	H     - Toggle temperature
//	+/-   - Add or remove a substep
//	T     - Cycle color themes
//	?     - Show help overlay
//
// The left mouse button grabs the particle nearest the cursor and drags it
// until release.
package viz
