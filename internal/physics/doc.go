// Package physics provides the particle primitives of the solver.
//
// The per-substep operations work on a single particle or a single pair in
// place. Only the [Chain] constructors and [Chain.Links] allocate:
//
//   - [Particle]: circle integrated with position Verlet
//   - [Link]: distance constraint between two pool indices, solved by [SolveLink]
//   - [Chain]: blueprint of particles joined end to end by links
//   - [Boundary]: circular container applied by [Boundary.Constrain]
//   - [Thermal]: temperature range, decay and buoyancy parameters
//
// # Velocity
//
// Velocity is never stored. It is implied by Current - Previous, so moving
// Current directly (a positional correction) also changes the velocity the
// next [Particle.Integrate] call sees:
//
//	p := physics.NewParticle(r2.Vec{X: 0, Y: 0}, 5, false)
//	p.Accelerate(r2.Vec{Y: 1000})
//	p.Integrate(1.0/300, 0)
package physics
