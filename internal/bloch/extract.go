// Package bloch computes per-qubit Bloch vectors of multi-qubit states.
package bloch

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/cblas128"
	"gonum.org/v1/gonum/mat"
)

// Vector is a qubit's marginal position on the Bloch sphere: (<X>, <Y>, <Z>).
type Vector [3]float64

func (v Vector) X() float64 { return v[0] }
func (v Vector) Y() float64 { return v[1] }
func (v Vector) Z() float64 { return v[2] }

// Norm is 1 for a qubit in a pure product state and shrinks towards 0 as the
// qubit becomes entangled or mixed.
func (v Vector) Norm() float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

func (v Vector) String() string {
	return fmt.Sprintf("(%+.3f, %+.3f, %+.3f)", v[0], v[1], v[2])
}

// Extract returns one Bloch vector per qubit of state, ordered by qubit
// index, or last qubit first when reverseBits is set. It fails with an
// *InvalidStateError, and no vectors, when the state is malformed.
func Extract(state State, reverseBits bool) ([]Vector, error) {
	rho, n, err := state.DensityMatrix()
	if err != nil {
		return nil, err
	}

	vectors := make([]Vector, n)
	for i := range n {
		for k, p := range paulis {
			obs := p.Matrix()
			if n > 1 {
				obs = Embed(p, i, n)
			}
			vectors[i][k] = Expectation(obs, rho)
		}
	}

	if reverseBits {
		slices.Reverse(vectors)
	}
	return vectors, nil
}

// Expectation returns Re(Tr(obs·rho)). Both matrices must be square and of
// the same dimension.
func Expectation(obs, rho *mat.CDense) float64 {
	dim, _ := rho.Dims()
	prod := mat.NewCDense(dim, dim, nil)
	cblas128.Gemm(blas.NoTrans, blas.NoTrans, 1, obs.RawCMatrix(), rho.RawCMatrix(), 0, prod.RawCMatrix())

	var tr complex128
	for i := range dim {
		tr += prod.At(i, i)
	}
	return real(tr)
}

// Labels returns the subplot label for each vector returned by Extract with
// the same reverseBits flag; labels follow the qubit shown at that position.
func Labels(n int, reverseBits bool) []string {
	labels := make([]string, n)
	for i := range n {
		pos := i
		if reverseBits {
			pos = n - 1 - i
		}
		labels[i] = fmt.Sprintf("qubit %d", pos)
	}
	return labels
}
