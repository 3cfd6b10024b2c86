// Package solver owns the particle pool and advances it with a fixed
// substep pipeline.
//
// Each call to [Solver.Update] splits the frame delta into SubSteps equal
// substeps. Every substep runs, in order:
//
//  1. gravity and buoyancy are added to every free particle
//  2. the boundary pulls escaped particles back inside
//  3. the quadtree is rebuilt from the particle bounds
//  4. heat zones warm the particles they contain
//  5. overlapping pairs are pushed apart, then links are relaxed once
//  6. every particle is integrated and its accumulator cleared
//
// After the last substep temperatures decay once and, if enabled, the state
// is checked for NaN or Inf.
//
// Particles are addressed by [Handle], their index in the pool. Handles stay
// valid until [Solver.Reset]. The pool only grows; there is no removal.
//
// Indexed and exhaustive collision modes visit pairs in different orders and
// are not expected to produce identical trajectories, only the same settled
// behaviour.
package solver
