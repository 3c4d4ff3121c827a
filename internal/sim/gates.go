package sim

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"qviz/internal/circuit"
)

// ErrUnsupportedGate is returned for gate types the simulator cannot run.
var ErrUnsupportedGate = errors.New("unsupported gate")

type matrix2 [2][2]complex128

var (
	identity = matrix2{{1, 0}, {0, 1}}
	pauliX   = matrix2{{0, 1}, {1, 0}}
	pauliY   = matrix2{{0, -1i}, {1i, 0}}
	pauliZ   = matrix2{{1, 0}, {0, -1}}
	hadamard = matrix2{
		{complex(1/math.Sqrt2, 0), complex(1/math.Sqrt2, 0)},
		{complex(1/math.Sqrt2, 0), complex(-1/math.Sqrt2, 0)},
	}
	phaseS = matrix2{{1, 0}, {0, 1i}}
	phaseT = matrix2{{1, 0}, {0, cmplx.Exp(complex(0, math.Pi/4))}}
	sqrtX  = matrix2{{0.5 + 0.5i, 0.5 - 0.5i}, {0.5 - 0.5i, 0.5 + 0.5i}}
)

func (m matrix2) dagger() matrix2 {
	return matrix2{
		{cmplx.Conj(m[0][0]), cmplx.Conj(m[1][0])},
		{cmplx.Conj(m[0][1]), cmplx.Conj(m[1][1])},
	}
}

func rx(theta float64) matrix2 {
	c := complex(math.Cos(theta/2), 0)
	js := complex(0, -math.Sin(theta/2))
	return matrix2{{c, js}, {js, c}}
}

func ry(theta float64) matrix2 {
	c := complex(math.Cos(theta/2), 0)
	s := complex(math.Sin(theta/2), 0)
	return matrix2{{c, -s}, {s, c}}
}

func rz(theta float64) matrix2 {
	return matrix2{{cmplx.Exp(complex(0, -theta/2)), 0}, {0, cmplx.Exp(complex(0, theta/2))}}
}

func phase(lambda float64) matrix2 {
	return matrix2{{1, 0}, {0, cmplx.Exp(complex(0, lambda))}}
}

func u3(theta, phi, lambda float64) matrix2 {
	c := complex(math.Cos(theta/2), 0)
	s := complex(math.Sin(theta/2), 0)
	return matrix2{
		{c, -cmplx.Exp(complex(0, lambda)) * s},
		{cmplx.Exp(complex(0, phi)) * s, cmplx.Exp(complex(0, phi+lambda)) * c},
	}
}

// targetMatrix returns the single-qubit matrix a gate applies to its target,
// controls aside.
func targetMatrix(g circuit.Gate) (matrix2, error) {
	param := func(i int) float64 {
		if i < len(g.Params) {
			return g.Params[i]
		}
		return 0
	}

	var m matrix2
	switch g.Type {
	case "ID":
		m = identity
	case "H", "CH":
		m = hadamard
	case "X", "CX", "CCX":
		m = pauliX
	case "Y", "CY":
		m = pauliY
	case "Z", "CZ":
		m = pauliZ
	case "S":
		m = phaseS
	case "T":
		m = phaseT
	case "SX":
		m = sqrtX
	case "RX", "CRX":
		m = rx(param(0))
	case "RY", "CRY":
		m = ry(param(0))
	case "RZ", "CRZ":
		m = rz(param(0))
	case "P", "U1", "CP", "CU1":
		m = phase(param(0))
	case "U2":
		m = u3(math.Pi/2, param(0), param(1))
	case "U3":
		m = u3(param(0), param(1), param(2))
	default:
		return matrix2{}, fmt.Errorf("%w: %s", ErrUnsupportedGate, g.Type)
	}
	if g.IsDagger {
		m = m.dagger()
	}
	return m, nil
}

// applyGate applies a unitary gate to the state.
func (s *StateVector) applyGate(g circuit.Gate) error {
	for _, q := range g.Qubits() {
		if q < 0 || q >= s.NumQubits {
			return fmt.Errorf("gate %s: qubit %d out of range", g.Name(), q)
		}
	}
	if g.Type == "SWAP" {
		s.applySWAP(g.Control, g.Target)
		return nil
	}
	m, err := targetMatrix(g)
	if err != nil {
		return err
	}
	s.applyControlled(g.ControlQubits(), g.Target, m)
	return nil
}
