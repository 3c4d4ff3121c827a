package bloch

import (
	"fmt"
	"math/bits"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

type stateKind int

const (
	kindNone stateKind = iota
	kindVector
	kindMatrix
	kindRows
)

// State is a quantum state as handed over by a simulator or a client: either
// a pure state vector or a density matrix. It is resolved once into a
// canonical density matrix by Extract.
//
// A State never mutates the data it was built from, but it does not copy it
// either; callers must not modify the slices or matrix while extracting.
type State struct {
	kind   stateKind
	vector []complex128
	matrix mat.CMatrix
	rows   [][]complex128
}

// FromStatevector wraps a pure state given as 2^n amplitudes, qubit i being
// bit i of the basis-state index.
func FromStatevector(amplitudes []complex128) State {
	return State{kind: kindVector, vector: amplitudes}
}

// FromDensityMatrix wraps a 2^n × 2^n density matrix.
func FromDensityMatrix(m mat.CMatrix) State {
	return State{kind: kindMatrix, matrix: m}
}

// FromRows wraps a density matrix given row by row, as decoded from JSON.
// Ragged or non-square input is reported by Extract.
func FromRows(rows [][]complex128) State {
	return State{kind: kindRows, rows: rows}
}

// NumQubits returns the qubit count of the state, or an InvalidStateError if
// it cannot be determined.
func (s State) NumQubits() (int, error) {
	switch s.kind {
	case kindVector:
		return qubitsForDim(len(s.vector))
	case kindMatrix:
		if s.matrix == nil {
			return 0, invalid("nil density matrix")
		}
		r, c := s.matrix.Dims()
		if r != c {
			return 0, invalid(fmt.Sprintf("density matrix is %dx%d, not square", r, c))
		}
		return qubitsForDim(r)
	case kindRows:
		for i, row := range s.rows {
			if len(row) != len(s.rows) {
				return 0, invalid(fmt.Sprintf("row %d has %d entries, want %d", i, len(row), len(s.rows)))
			}
		}
		return qubitsForDim(len(s.rows))
	}
	return 0, invalid("empty state")
}

// DensityMatrix returns the canonical density-matrix representation of the
// state and its qubit count.
func (s State) DensityMatrix() (*mat.CDense, int, error) {
	n, err := s.NumQubits()
	if err != nil {
		return nil, 0, err
	}
	dim := 1 << n
	rho := mat.NewCDense(dim, dim, nil)

	switch s.kind {
	case kindVector:
		for i, a := range s.vector {
			for j, b := range s.vector {
				rho.Set(i, j, a*cmplx.Conj(b))
			}
		}
	case kindMatrix:
		for i := range dim {
			for j := range dim {
				rho.Set(i, j, s.matrix.At(i, j))
			}
		}
	case kindRows:
		for i, row := range s.rows {
			for j, v := range row {
				rho.Set(i, j, v)
			}
		}
	}
	return rho, n, nil
}

// MaxQubits bounds the states Extract accepts; the embedded observables cost
// O(8^n) each.
const MaxQubits = 8

// qubitsForDim returns log2(dim) for dim a power of two in [2, 2^MaxQubits].
func qubitsForDim(dim int) (int, error) {
	if dim < 2 {
		return 0, invalid(fmt.Sprintf("dimension %d is too small", dim))
	}
	if bits.OnesCount(uint(dim)) != 1 {
		return 0, invalid(fmt.Sprintf("dimension %d is not a power of two", dim))
	}
	n := bits.TrailingZeros(uint(dim))
	if n > MaxQubits {
		return 0, invalid(fmt.Sprintf("%d qubits exceed the limit of %d", n, MaxQubits))
	}
	return n, nil
}
