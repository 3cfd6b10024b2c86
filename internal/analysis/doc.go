// Package analysis post-processes runs and compares them.
//
//   - [PowerSpectrum] and [DominantFrequency]: spectrum of a sampled series
//   - [Track]: phase portrait of a single particle
//   - [Divergence]: separation of two runs that start a small offset apart
//   - [SubstepSweep]: a metric as a function of the substep count
//
// # Sensitivity
//
// Piles of particles are chaotic. Two runs whose first particle starts a
// fraction of a unit apart end in visibly different heaps:
//
//	d, err := analysis.Divergence(cfg, 1e-6)
//	if err == nil && d.Rate() > 0 {
//	    // separation grows exponentially
//	}
package analysis
