package physics

import "gonum.org/v1/gonum/spatial/r2"

// Link is a distance constraint between two particles of the same pool.
type Link struct {
	A          int     `json:"a"`
	B          int     `json:"b"`
	RestLength float64 `json:"rest_length"`
}

// SolveLink runs one relaxation pass pulling p1 and p2 towards restLength.
// Free particles share the correction, a single free particle takes all of
// it, two static particles are left alone. Coincident particles have no axis
// and are skipped.
func SolveLink(p1, p2 *Particle, restLength float64) {
	if p1.Static && p2.Static {
		return
	}
	axis := r2.Sub(p1.Current, p2.Current)
	dist := r2.Norm(axis)
	if !(dist > 0) { // also catches NaN
		return
	}
	n := r2.Scale(1/dist, axis)
	delta := restLength - dist

	switch {
	case p1.Static:
		p2.Current = r2.Sub(p2.Current, r2.Scale(delta, n))
	case p2.Static:
		p1.Current = r2.Add(p1.Current, r2.Scale(delta, n))
	default:
		half := r2.Scale(0.5*delta, n)
		p1.Current = r2.Add(p1.Current, half)
		p2.Current = r2.Sub(p2.Current, half)
	}
}

// ResolveOverlap pushes two overlapping circles apart along the line
// between their centres and reports whether a correction was made. The
// split follows the same static rules as [SolveLink].
func ResolveOverlap(a, b *Particle) bool {
	if a.Static && b.Static {
		return false
	}
	axis := r2.Sub(a.Current, b.Current)
	dist := r2.Norm(axis)
	minDist := a.Radius + b.Radius
	if !(dist < minDist) || dist == 0 {
		return false
	}
	n := r2.Scale(1/dist, axis)
	delta := minDist - dist

	switch {
	case b.Static:
		a.Current = r2.Add(a.Current, r2.Scale(delta, n))
	case a.Static:
		b.Current = r2.Sub(b.Current, r2.Scale(delta, n))
	default:
		half := r2.Scale(0.5*delta, n)
		a.Current = r2.Add(a.Current, half)
		b.Current = r2.Sub(b.Current, half)
	}
	return true
}
