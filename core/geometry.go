package core

import "math"

// Vec3 is an ECEF-style vector in metres.
type Vec3 struct {
	X, Y, Z float64
}

// Sub returns v - other.
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{X: v.X - other.X, Y: v.Y - other.Y, Z: v.Z - other.Z}
}

// Norm returns the Euclidean norm of the vector.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// DistanceTo returns the straight-line distance between two points.
func (v Vec3) DistanceTo(other Vec3) float64 {
	return v.Sub(other).Norm()
}

// BaselineGeometry holds the precomputed pairwise station geometry used by
// delay and sensitivity calculations: coordinate deltas and chord distances
// between every station pair, keyed by station index.
type BaselineGeometry struct {
	DX       [][]float64
	DY       [][]float64
	DZ       [][]float64
	Distance [][]float64
}

// PrecomputeBaselines builds the pairwise geometry tables for the given
// station positions. Entry [i][j] is the vector from station i to station j;
// the tables are antisymmetric in the deltas and symmetric in distance.
func PrecomputeBaselines(positions []Vec3) *BaselineGeometry {
	n := len(positions)
	g := &BaselineGeometry{
		DX:       make([][]float64, n),
		DY:       make([][]float64, n),
		DZ:       make([][]float64, n),
		Distance: make([][]float64, n),
	}
	for i := range positions {
		g.DX[i] = make([]float64, n)
		g.DY[i] = make([]float64, n)
		g.DZ[i] = make([]float64, n)
		g.Distance[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			d := positions[j].Sub(positions[i])
			g.DX[i][j] = d.X
			g.DY[i][j] = d.Y
			g.DZ[i][j] = d.Z
			g.Distance[i][j] = d.Norm()
		}
	}
	return g
}
