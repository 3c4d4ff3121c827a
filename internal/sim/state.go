package sim

import (
	"fmt"
	"math"
	"math/cmplx"
)

// StateVector is a pure n-qubit state. Qubit q is bit q of the basis index.
type StateVector struct {
	Amplitudes []complex128
	NumQubits  int
}

// NewStateVector returns |0…0⟩ over numQubits qubits.
func NewStateVector(numQubits int) *StateVector {
	amps := make([]complex128, 1<<numQubits)
	amps[0] = 1
	return &StateVector{Amplitudes: amps, NumQubits: numQubits}
}

func (s *StateVector) Clone() *StateVector {
	amps := make([]complex128, len(s.Amplitudes))
	copy(amps, s.Amplitudes)
	return &StateVector{Amplitudes: amps, NumQubits: s.NumQubits}
}

// apply1 applies a single-qubit matrix to qubit q.
func (s *StateVector) apply1(q int, m matrix2) {
	s.applyControlled(nil, q, m)
}

// applyControlled applies m to target on the basis states where every
// control qubit is 1.
func (s *StateVector) applyControlled(controls []int, target int, m matrix2) {
	mask := 0
	for _, c := range controls {
		mask |= 1 << c
	}
	bit := 1 << target
	for i := range s.Amplitudes {
		if i&bit != 0 || i&mask != mask {
			continue
		}
		j := i | bit
		a0, a1 := s.Amplitudes[i], s.Amplitudes[j]
		s.Amplitudes[i] = m[0][0]*a0 + m[0][1]*a1
		s.Amplitudes[j] = m[1][0]*a0 + m[1][1]*a1
	}
}

func (s *StateVector) applySWAP(q1, q2 int) {
	bit1 := 1 << q1
	bit2 := 1 << q2
	for i := range s.Amplitudes {
		if i&bit1 != 0 && i&bit2 == 0 {
			j := (i &^ bit1) | bit2
			s.Amplitudes[i], s.Amplitudes[j] = s.Amplitudes[j], s.Amplitudes[i]
		}
	}
}

// prob1 returns the probability of measuring qubit q as 1.
func (s *StateVector) prob1(q int) float64 {
	bit := 1 << q
	p := 0.0
	for i, a := range s.Amplitudes {
		if i&bit != 0 {
			p += real(a * cmplx.Conj(a))
		}
	}
	return p
}

// collapse projects qubit q onto outcome and renormalises.
func (s *StateVector) collapse(q, outcome int) {
	bit := 1 << q
	norm := 0.0
	for i, a := range s.Amplitudes {
		if (i&bit != 0) == (outcome == 1) {
			norm += real(a * cmplx.Conj(a))
		} else {
			s.Amplitudes[i] = 0
		}
	}
	if norm == 0 {
		return
	}
	scale := complex(1/math.Sqrt(norm), 0)
	for i := range s.Amplitudes {
		s.Amplitudes[i] *= scale
	}
}

// applyReset projects qubit q onto |0⟩, or flips it when the |0⟩ branch is
// empty.
func (s *StateVector) applyReset(q int) {
	if s.prob1(q) > 1-1e-12 {
		s.apply1(q, pauliX)
		return
	}
	s.collapse(q, 0)
}

// normalize rescales the state to unit norm.
func (s *StateVector) normalize() {
	norm := 0.0
	for _, a := range s.Amplitudes {
		norm += real(a * cmplx.Conj(a))
	}
	if norm == 0 {
		return
	}
	scale := complex(1/math.Sqrt(norm), 0)
	for i := range s.Amplitudes {
		s.Amplitudes[i] *= scale
	}
}

// QubitProbability holds the marginal outcome probabilities of one qubit.
type QubitProbability struct {
	Prob0 float64
	Prob1 float64
}

// QubitProbabilities returns the marginal probabilities of every qubit.
func (s *StateVector) QubitProbabilities() []QubitProbability {
	probs := make([]QubitProbability, s.NumQubits)
	for i, a := range s.Amplitudes {
		prob := real(a * cmplx.Conj(a))
		for q := range s.NumQubits {
			if i&(1<<q) != 0 {
				probs[q].Prob1 += prob
			} else {
				probs[q].Prob0 += prob
			}
		}
	}
	return probs
}

// probabilityCutoff drops numerically empty outcomes.
const probabilityCutoff = 1e-15

// Probabilities returns |a_i|² keyed by the n-bit basis string, qubit n-1
// left-most. Outcomes with probability ≤ 1e-15 are omitted.
func (s *StateVector) Probabilities() map[string]float64 {
	probs := make(map[string]float64)
	for i, a := range s.Amplitudes {
		p := real(a * cmplx.Conj(a))
		if p > probabilityCutoff {
			probs[fmt.Sprintf("%0*b", s.NumQubits, i)] = p
		}
	}
	return probs
}
