package bloch

import "gonum.org/v1/gonum/mat"

// Pauli identifies one of the three single-qubit Pauli observables.
type Pauli int

const (
	PauliX Pauli = iota
	PauliY
	PauliZ
)

// paulis is the order the components of a Vector are computed in.
var paulis = [3]Pauli{PauliX, PauliY, PauliZ}

func (p Pauli) String() string {
	switch p {
	case PauliX:
		return "X"
	case PauliY:
		return "Y"
	case PauliZ:
		return "Z"
	}
	return "?"
}

// Matrix returns a fresh 2x2 matrix for the observable.
func (p Pauli) Matrix() *mat.CDense {
	switch p {
	case PauliX:
		return mat.NewCDense(2, 2, []complex128{0, 1, 1, 0})
	case PauliY:
		return mat.NewCDense(2, 2, []complex128{0, -1i, 1i, 0})
	default:
		return mat.NewCDense(2, 2, []complex128{1, 0, 0, -1})
	}
}

// Embed returns p acting on qubit of an n-qubit register and the identity on
// every other qubit. Qubit 0 is the right-most tensor factor, so it maps to
// the least significant bit of the basis-state index.
func Embed(p Pauli, qubit, n int) *mat.CDense {
	op := mat.NewCDense(1, 1, []complex128{1})
	for q := n - 1; q >= 0; q-- {
		if q == qubit {
			op = kron(op, p.Matrix())
		} else {
			op = kron(op, identity2())
		}
	}
	return op
}

func identity2() *mat.CDense {
	return mat.NewCDense(2, 2, []complex128{1, 0, 0, 1})
}

// kron returns the Kronecker product a ⊗ b.
func kron(a, b *mat.CDense) *mat.CDense {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	out := mat.NewCDense(ar*br, ac*bc, nil)
	for i := range ar {
		for j := range ac {
			aij := a.At(i, j)
			if aij == 0 {
				continue
			}
			for k := range br {
				for l := range bc {
					out.Set(i*br+k, j*bc+l, aij*b.At(k, l))
				}
			}
		}
	}
	return out
}
