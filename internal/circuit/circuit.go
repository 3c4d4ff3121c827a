// Package circuit models quantum circuits: gates placed on a step timeline,
// named quantum and classical registers, an OpenQASM reader and writer, a
// dependency DAG and the metrics derived from it.
package circuit

import (
	"slices"
)

// Size limits of a circuit. State vectors and density matrices grow as 2^n
// and 4^n, so anything past MaxQubits is refused at the edges.
const (
	MaxQubits = 8
	MaxClbits = 64
)

// Register is a named, contiguous block of qubits or classical bits.
type Register struct {
	Name string
	Size int
}

// Circuit holds a quantum circuit. Qubits and classical bits are numbered
// globally in register declaration order.
type Circuit struct {
	Name      string
	NumQubits int
	QRegs     []Register
	CRegs     []Register
	Gates     []Gate
	MaxSteps  int
}

// New returns an empty circuit with a single quantum register "q" and, when
// numClbits > 0, a single classical register "c".
func New(name string, numQubits, numClbits int) *Circuit {
	c := &Circuit{Name: name, NumQubits: numQubits}
	if numQubits > 0 {
		c.QRegs = []Register{{Name: "q", Size: numQubits}}
	}
	if numClbits > 0 {
		c.CRegs = []Register{{Name: "c", Size: numClbits}}
	}
	return c
}

// NewWithRegisters returns an empty circuit over the given registers.
func NewWithRegisters(name string, qregs, cregs []Register) *Circuit {
	c := &Circuit{Name: name, QRegs: slices.Clone(qregs), CRegs: slices.Clone(cregs)}
	for _, r := range qregs {
		c.NumQubits += r.Size
	}
	return c
}

// NumClbits returns the number of classical bits: the declared registers,
// widened to cover any bit a gate refers to.
func (c *Circuit) NumClbits() int {
	n := 0
	for _, r := range c.CRegs {
		n += r.Size
	}
	for _, g := range c.Gates {
		for _, b := range g.Clbits() {
			n = max(n, b+1)
		}
	}
	return n
}

// QuantumRegisters returns the declared quantum registers, or a single "q"
// register spanning every qubit when none were declared.
func (c *Circuit) QuantumRegisters() []Register {
	if len(c.QRegs) > 0 {
		return c.QRegs
	}
	if c.NumQubits == 0 {
		return nil
	}
	return []Register{{Name: "q", Size: c.NumQubits}}
}

// ClassicalRegisters returns the declared classical registers. Bits used by
// gates beyond the declared ones are grouped into a trailing "c" register.
func (c *Circuit) ClassicalRegisters() []Register {
	declared := 0
	for _, r := range c.CRegs {
		declared += r.Size
	}
	extra := c.NumClbits() - declared
	if extra <= 0 {
		return c.CRegs
	}
	return append(slices.Clone(c.CRegs), Register{Name: "c", Size: extra})
}

// AddQuantumRegister appends a quantum register and returns the global index
// of its first qubit.
func (c *Circuit) AddQuantumRegister(name string, size int) int {
	offset := c.NumQubits
	if len(c.QRegs) == 0 && c.NumQubits > 0 {
		c.QRegs = []Register{{Name: "q", Size: c.NumQubits}}
	}
	c.QRegs = append(c.QRegs, Register{Name: name, Size: size})
	c.NumQubits += size
	return offset
}

// AddClassicalRegister appends a classical register and returns the global
// index of its first bit.
func (c *Circuit) AddClassicalRegister(name string, size int) int {
	offset := 0
	for _, r := range c.CRegs {
		offset += r.Size
	}
	c.CRegs = append(c.CRegs, Register{Name: name, Size: size})
	return offset
}

// Ordered returns the gates sorted by step, keeping insertion order within a
// step.
func (c *Circuit) Ordered() []Gate {
	gates := slices.Clone(c.Gates)
	slices.SortStableFunc(gates, func(a, b Gate) int { return a.Step - b.Step })
	return gates
}

func (c *Circuit) appendGate(g Gate) {
	c.Gates = append(c.Gates, g)
	if g.Step >= c.MaxSteps {
		c.MaxSteps = g.Step + 1
	}
}

// AddGate appends a gate to the circuit.
func (c *Circuit) AddGate(gateType string, target, step int, control ...int) {
	g := newGate(gateType, target)
	g.Step = step
	if len(control) > 0 {
		g.Control = control[0]
	}
	c.appendGate(g)
}

// AddParameterizedGate appends a parameterized gate to the circuit.
func (c *Circuit) AddParameterizedGate(gateType string, target, step int, params []float64, control ...int) {
	g := newGate(gateType, target)
	g.Step = step
	g.Params = params
	if len(control) > 0 {
		g.Control = control[0]
	}
	c.appendGate(g)
}

// AddMultiControlGate appends a multi-controlled gate to the circuit.
func (c *Circuit) AddMultiControlGate(gateType string, target, step int, controls []int) {
	g := newGate(gateType, target)
	g.Step = step
	g.Controls = controls
	c.appendGate(g)
}

// AddClassicalControlGate appends a single-qubit gate conditioned on a
// classical bit holding 1.
func (c *Circuit) AddClassicalControlGate(gateType string, target, step, cbit int) {
	g := newGate(gateType, target)
	g.Step = step
	g.ClassicalControl = cbit
	g.ClassicalWidth = 1
	g.ClassicalValue = 1
	c.appendGate(g)
}

// AddDaggerGate appends a dagger (adjoint) gate to the circuit.
func (c *Circuit) AddDaggerGate(gateType string, target, step int) {
	g := newGate(gateType, target)
	g.Step = step
	g.IsDagger = true
	c.appendGate(g)
}

// AddMeasure appends a measurement of qubit into clbit.
func (c *Circuit) AddMeasure(qubit, clbit, step int) {
	g := newGate("MEASURE", qubit)
	g.Step = step
	g.Clbit = clbit
	c.appendGate(g)
}

// AddReset appends a reset gate to the circuit.
func (c *Circuit) AddReset(target, step int) {
	g := newGate("RESET", target)
	g.Step = step
	c.appendGate(g)
}

// AddNoise appends a noise operation to the circuit.
func (c *Circuit) AddNoise(target, step int, noiseType string, params ...float64) {
	g := newGate("NOISE", target)
	g.Step = step
	g.Params = params
	g.IsNoise = true
	g.NoiseType = noiseType
	c.appendGate(g)
}

// AddBarrier appends a barrier spanning all qubits at the given step.
func (c *Circuit) AddBarrier(step int) {
	c.Gates = slices.DeleteFunc(c.Gates, func(g Gate) bool {
		return g.Step == step && g.IsBarrier()
	})
	g := newGate("BARRIER", -1)
	g.Step = step
	c.appendGate(g)
}

// RemoveGateAt removes any gate at the given step and qubit.
// Also removes barriers at that step since they span all qubits.
func (c *Circuit) RemoveGateAt(step, qubit int) {
	c.Gates = slices.DeleteFunc(c.Gates, func(g Gate) bool {
		if g.Step == step && g.IsBarrier() {
			return true
		}
		return g.Step == step && g.references(qubit)
	})
	c.recountSteps()
}

// GateAt returns the gate at the given step and qubit, or nil.
func (c *Circuit) GateAt(step, qubit int) *Gate {
	for i := range c.Gates {
		g := &c.Gates[i]
		if g.Step == step && g.references(qubit) {
			return g
		}
	}
	return nil
}

// MeasureAtStep returns the measurement placed at the given step, or nil.
func (c *Circuit) MeasureAtStep(step int) *Gate {
	for i := range c.Gates {
		if c.Gates[i].Step == step && c.Gates[i].IsMeasure() {
			return &c.Gates[i]
		}
	}
	return nil
}

func (c *Circuit) recountSteps() {
	c.MaxSteps = 0
	for _, g := range c.Gates {
		c.MaxSteps = max(c.MaxSteps, g.Step+1)
	}
}

// Clone returns a deep copy of the circuit.
func (c *Circuit) Clone() *Circuit {
	out := *c
	out.QRegs = slices.Clone(c.QRegs)
	out.CRegs = slices.Clone(c.CRegs)
	out.Gates = make([]Gate, len(c.Gates))
	for i, g := range c.Gates {
		g.Controls = slices.Clone(g.Controls)
		g.Params = slices.Clone(g.Params)
		out.Gates[i] = g
	}
	return &out
}

// Resize sets the number of qubits. Growing extends the last quantum
// register; shrinking truncates the registers and drops every gate that
// touches a removed qubit.
func (c *Circuit) Resize(n int) {
	if n < 0 || n == c.NumQubits {
		return
	}
	regs := slices.Clone(c.QuantumRegisters())
	if n > c.NumQubits {
		if len(regs) == 0 {
			regs = []Register{{Name: "q"}}
		}
		regs[len(regs)-1].Size += n - c.NumQubits
	} else {
		kept := regs[:0]
		remaining := n
		for _, r := range regs {
			if remaining == 0 {
				break
			}
			r.Size = min(r.Size, remaining)
			remaining -= r.Size
			kept = append(kept, r)
		}
		regs = kept
		c.Gates = slices.DeleteFunc(c.Gates, func(g Gate) bool {
			for _, q := range g.Qubits() {
				if q >= n {
					return true
				}
			}
			return false
		})
		c.recountSteps()
	}
	c.QRegs = regs
	c.NumQubits = n
}
