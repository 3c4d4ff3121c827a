package sim

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
)

// Default error rates of the analysis noise model.
const (
	DefaultP1    = 0.001 // 1-qubit gate error rate
	DefaultP2    = 0.01  // 2-qubit gate error rate
	DefaultPMeas = 0.02  // measurement error rate, recorded but not applied
)

var (
	// basisGates carry the errors of the analysis noise model.
	basisOneQubitGates = []string{"u1", "u2", "u3"}
	basisTwoQubitGates = []string{"cx"}

	oneQubitGates = []string{"id", "h", "x", "y", "z", "s", "sdg", "t", "tdg", "sx", "sxdg", "rx", "ry", "rz", "p", "u1", "u2", "u3"}
	twoQubitGates = []string{"cx", "cy", "cz", "ch", "swap", "crx", "cry", "crz", "cp", "cu1"}
)

// NoiseModel attaches depolarizing errors to gates by instruction name and
// optionally flips measured bits.
type NoiseModel struct {
	depolarizing map[string]float64
	Readout      float64 // probability a measured bit is flipped
	PMeas        float64 // measurement error rate kept for reporting only
}

// NewNoiseModel returns an empty noise model.
func NewNoiseModel() *NoiseModel {
	return &NoiseModel{depolarizing: make(map[string]float64)}
}

// DepolarizingModel returns a model with p1 depolarizing error after every
// single-qubit gate and p2 two-qubit depolarizing error after every
// two-qubit gate.
func DepolarizingModel(p1, p2 float64) *NoiseModel {
	m := NewNoiseModel()
	m.AddDepolarizing(p1, oneQubitGates...)
	m.AddDepolarizing(p2, twoQubitGates...)
	return m
}

// BasisModel returns a model with p1 depolarizing error after u1, u2 and u3
// and p2 two-qubit depolarizing error after cx only. Circuits are not
// rewritten into that basis, so h, x, rz, cz and the like run error-free.
func BasisModel(p1, p2 float64) *NoiseModel {
	m := NewNoiseModel()
	m.AddDepolarizing(p1, basisOneQubitGates...)
	m.AddDepolarizing(p2, basisTwoQubitGates...)
	return m
}

// DefaultNoiseModel returns the model used by the analysis suite: BasisModel
// with the default rates.
func DefaultNoiseModel() *NoiseModel {
	m := BasisModel(DefaultP1, DefaultP2)
	m.PMeas = DefaultPMeas
	return m
}

// AddDepolarizing sets the depolarizing probability applied over the qubits
// of each named gate.
func (m *NoiseModel) AddDepolarizing(p float64, gates ...string) {
	for _, g := range gates {
		m.depolarizing[g] = p
	}
}

// Depolarizing returns the error probability attached to a gate name.
func (m *NoiseModel) Depolarizing(gate string) (float64, bool) {
	if m == nil {
		return 0, false
	}
	p, ok := m.depolarizing[gate]
	return p, ok
}

// Gates returns the gate names that carry an error, sorted.
func (m *NoiseModel) Gates() []string {
	names := make([]string, 0, len(m.depolarizing))
	for name := range m.depolarizing {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

var paulis = [4]matrix2{identity, pauliX, pauliY, pauliZ}

// depolarize applies, with probability p, a Pauli drawn uniformly from the
// 4^n Paulis over qubits (identity included).
func (s *StateVector) depolarize(rng *rand.Rand, p float64, qubits []int) {
	if p <= 0 || rng.Float64() >= p {
		return
	}
	for _, q := range qubits {
		if k := rng.IntN(4); k != 0 {
			s.apply1(q, paulis[k])
		}
	}
}

// krausChannel returns the Kraus operators of a named single-qubit channel.
func krausChannel(noiseType string, p float64) ([]matrix2, error) {
	if p < 0 || p > 1 {
		return nil, fmt.Errorf("noise %s: parameter %g outside [0, 1]", noiseType, p)
	}
	switch noiseType {
	case "amplitude_damping":
		return []matrix2{
			{{1, 0}, {0, complex(math.Sqrt(1-p), 0)}},
			{{0, complex(math.Sqrt(p), 0)}, {0, 0}},
		}, nil
	case "phase_damping":
		return []matrix2{
			{{1, 0}, {0, complex(math.Sqrt(1-p), 0)}},
			{{0, 0}, {0, complex(math.Sqrt(p), 0)}},
		}, nil
	}
	return nil, fmt.Errorf("unknown noise type %q", noiseType)
}

// applyKraus samples one Kraus operator with probability ‖Kψ‖² and applies
// it, renormalising the state.
func (s *StateVector) applyKraus(rng *rand.Rand, q int, ops []matrix2) {
	r := rng.Float64()
	for i, k := range ops {
		next := s.Clone()
		next.apply1(q, k)
		weight := 0.0
		for _, a := range next.Amplitudes {
			weight += real(a)*real(a) + imag(a)*imag(a)
		}
		if r < weight || i == len(ops)-1 {
			next.normalize()
			s.Amplitudes = next.Amplitudes
			return
		}
		r -= weight
	}
}

// applyNoise applies an explicit noise annotation.
func (s *StateVector) applyNoise(rng *rand.Rand, noiseType string, q int, params []float64) error {
	p := 0.01
	if len(params) > 0 {
		p = params[0]
	}
	if noiseType == "depolarizing" {
		s.depolarize(rng, p, []int{q})
		return nil
	}
	ops, err := krausChannel(noiseType, p)
	if err != nil {
		return err
	}
	s.applyKraus(rng, q, ops)
	return nil
}
