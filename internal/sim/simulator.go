// Package sim runs circuits on a state-vector backend: the ideal final state,
// shot-based measurement counts with an optional noise model, and
// trajectory-averaged density matrices.
package sim

import (
	"context"
	"errors"
	"fmt"
	"math/cmplx"
	"math/rand/v2"
	"strings"

	"gonum.org/v1/gonum/mat"

	"qviz/internal/circuit"
)

// ErrTooManyQubits is returned for circuits wider than circuit.MaxQubits or
// circuit.MaxClbits.
var ErrTooManyQubits = errors.New("circuit exceeds the simulator size limit")

// checkSize rejects empty circuits and circuits the simulator will not
// allocate.
func checkSize(c *circuit.Circuit) error {
	if c.NumQubits == 0 {
		return errors.New("circuit has no qubits")
	}
	if c.NumQubits > circuit.MaxQubits {
		return fmt.Errorf("%w: %d qubits, limit is %d", ErrTooManyQubits, c.NumQubits, circuit.MaxQubits)
	}
	if n := c.NumClbits(); n > circuit.MaxClbits {
		return fmt.Errorf("%w: %d classical bits, limit is %d", ErrTooManyQubits, n, circuit.MaxClbits)
	}
	return nil
}

// ErrNoClassicalBits is returned by Run for circuits that measure nothing.
var ErrNoClassicalBits = errors.New("circuit has no classical bits to count")

// Counts maps classical bitstrings to the number of shots that produced them.
// Keys hold one space-separated group per classical register, last register
// first, highest bit left.
type Counts map[string]int

// Total returns the number of shots recorded.
func (c Counts) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithNoise attaches a noise model to Run and DensityMatrix.
func WithNoise(m *NoiseModel) Option {
	return func(s *Simulator) { s.noise = m }
}

// WithSeed makes every call deterministic. A zero seed draws a fresh seed per
// call.
func WithSeed(seed uint64) Option {
	return func(s *Simulator) { s.seed = seed }
}

// Simulator executes circuits. It holds no mutable state and is safe for
// concurrent use.
type Simulator struct {
	noise *NoiseModel
	seed  uint64
}

// New returns a simulator configured by opts.
func New(opts ...Option) *Simulator {
	s := &Simulator{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Noise returns the attached noise model, or nil.
func (s *Simulator) Noise() *NoiseModel { return s.noise }

func (s *Simulator) rng() *rand.Rand {
	seed := s.seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Statevector evolves |0…0⟩ through the circuit without noise. Measurements,
// noise annotations and classically controlled gates are skipped; a reset
// projects its qubit onto |0⟩.
func (s *Simulator) Statevector(c *circuit.Circuit) (*StateVector, error) {
	if err := checkSize(c); err != nil {
		return nil, err
	}
	state := NewStateVector(c.NumQubits)
	for _, g := range c.Ordered() {
		switch {
		case g.IsBarrier(), g.IsMeasure(), g.IsNoise, g.IsConditional():
			continue
		case g.IsReset():
			state.applyReset(g.Target)
		default:
			if err := state.applyGate(g); err != nil {
				return nil, err
			}
		}
	}
	return state, nil
}

// trajectory is one stochastic execution of a circuit.
type trajectory struct {
	state *StateVector
	bits  []int
	rng   *rand.Rand
	noise *NoiseModel
}

func (t *trajectory) measure(q int) int {
	outcome := 0
	if t.rng.Float64() < t.state.prob1(q) {
		outcome = 1
	}
	t.state.collapse(q, outcome)
	return outcome
}

func (t *trajectory) conditionHolds(g circuit.Gate) bool {
	value := 0
	for i := range max(g.ClassicalWidth, 1) {
		value |= t.bits[g.ClassicalControl+i] << i
	}
	return value == g.ClassicalValue
}

// step executes one gate. With measure false, measurements are skipped and
// conditional gates never fire.
func (t *trajectory) step(g circuit.Gate, measure bool) error {
	switch {
	case g.IsBarrier():
		return nil
	case g.IsConditional() && (!measure || !t.conditionHolds(g)):
		return nil
	case g.IsMeasure():
		if !measure {
			return nil
		}
		bit := t.measure(g.Target)
		if t.noise != nil && t.noise.Readout > 0 && t.rng.Float64() < t.noise.Readout {
			bit ^= 1
		}
		t.bits[g.Clbit] = bit
		return nil
	case g.IsReset():
		if t.measure(g.Target) == 1 {
			t.state.apply1(g.Target, pauliX)
		}
		return nil
	case g.IsNoise:
		return t.state.applyNoise(t.rng, g.NoiseType, g.Target, g.Params)
	}

	if err := t.state.applyGate(g); err != nil {
		return err
	}
	if p, ok := t.noise.Depolarizing(g.Name()); ok {
		t.state.depolarize(t.rng, p, g.Qubits())
	}
	return nil
}

// Run executes the circuit shots times and returns the measured counts.
func (s *Simulator) Run(ctx context.Context, c *circuit.Circuit, shots int) (Counts, error) {
	if shots <= 0 {
		return nil, fmt.Errorf("shots must be positive, got %d", shots)
	}
	if err := checkSize(c); err != nil {
		return nil, err
	}
	numClbits := c.NumClbits()
	if numClbits == 0 {
		return nil, ErrNoClassicalBits
	}
	gates := c.Ordered()
	rng := s.rng()
	regs := c.ClassicalRegisters()
	counts := make(Counts)

	if s.noise == nil && terminalMeasurementsOnly(gates) {
		return s.sampleFinal(ctx, c, gates, shots, rng, regs)
	}

	for shot := range shots {
		if shot%64 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		t := &trajectory{
			state: NewStateVector(c.NumQubits),
			bits:  make([]int, numClbits),
			rng:   rng,
			noise: s.noise,
		}
		for _, g := range gates {
			if err := t.step(g, true); err != nil {
				return nil, err
			}
		}
		counts[formatBits(t.bits, regs)]++
	}
	return counts, nil
}

// terminalMeasurementsOnly reports whether the outcome distribution can be
// sampled from the final state: no noise, resets or conditions, and no gate
// acts on a qubit after it has been measured.
func terminalMeasurementsOnly(gates []circuit.Gate) bool {
	measured := make(map[int]bool)
	for _, g := range gates {
		switch {
		case g.IsNoise, g.IsReset(), g.IsConditional():
			return false
		case g.IsBarrier():
			continue
		case g.IsMeasure():
			measured[g.Target] = true
			continue
		}
		for _, q := range g.Qubits() {
			if measured[q] {
				return false
			}
		}
	}
	return true
}

func (s *Simulator) sampleFinal(ctx context.Context, c *circuit.Circuit, gates []circuit.Gate, shots int, rng *rand.Rand, regs []circuit.Register) (Counts, error) {
	state, err := s.Statevector(c)
	if err != nil {
		return nil, err
	}
	cdf := make([]float64, len(state.Amplitudes))
	acc := 0.0
	for i, a := range state.Amplitudes {
		acc += real(a)*real(a) + imag(a)*imag(a)
		cdf[i] = acc
	}

	counts := make(Counts)
	bits := make([]int, c.NumClbits())
	for shot := range shots {
		if shot%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		r := rng.Float64() * acc
		basis := len(cdf) - 1
		for i, v := range cdf {
			if r < v {
				basis = i
				break
			}
		}
		clear(bits)
		for _, g := range gates {
			if g.IsMeasure() {
				bits[g.Clbit] = (basis >> g.Target) & 1
			}
		}
		counts[formatBits(bits, regs)]++
	}
	return counts, nil
}

// formatBits renders classical bits as a count key.
func formatBits(bits []int, regs []circuit.Register) string {
	groups := make([]string, len(regs))
	offset := 0
	for i, r := range regs {
		var sb strings.Builder
		for b := r.Size - 1; b >= 0; b-- {
			sb.WriteByte(byte('0' + bits[offset+b]))
		}
		groups[len(regs)-1-i] = sb.String()
		offset += r.Size
	}
	return strings.Join(groups, " ")
}

// DensityMatrix returns the state of the circuit as a density matrix,
// averaging |ψ⟩⟨ψ| over trajectories runs of the noisy evolution.
// Measurements are skipped. Without noise a single trajectory is exact.
func (s *Simulator) DensityMatrix(ctx context.Context, c *circuit.Circuit, trajectories int) (*mat.CDense, error) {
	if err := checkSize(c); err != nil {
		return nil, err
	}
	if trajectories <= 0 || !s.stochastic(c) {
		trajectories = 1
	}
	dim := 1 << c.NumQubits
	rho := mat.NewCDense(dim, dim, nil)
	gates := c.Ordered()
	rng := s.rng()
	weight := complex(1/float64(trajectories), 0)

	for range trajectories {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		t := &trajectory{
			state: NewStateVector(c.NumQubits),
			bits:  make([]int, c.NumClbits()),
			rng:   rng,
			noise: s.noise,
		}
		for _, g := range gates {
			if err := t.step(g, false); err != nil {
				return nil, err
			}
		}
		amps := t.state.Amplitudes
		for i, a := range amps {
			for j, b := range amps {
				rho.Set(i, j, rho.At(i, j)+weight*a*cmplx.Conj(b))
			}
		}
	}
	return rho, nil
}

// stochastic reports whether evolving c involves randomness.
func (s *Simulator) stochastic(c *circuit.Circuit) bool {
	if s.noise != nil && len(s.noise.depolarizing) > 0 {
		return true
	}
	for _, g := range c.Gates {
		if g.IsNoise || g.IsReset() {
			return true
		}
	}
	return false
}
