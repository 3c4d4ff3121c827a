package circuit

// Builder appends gates to a circuit, placing each one at the earliest step
// where every wire it occupies is free.
//
// A multi-qubit gate occupies the whole qubit span between its outermost
// qubits so its connector never crosses another gate. A measurement occupies
// its qubit and every qubit below it, plus the classical lane, because its
// connector runs down to the classical wire.
type Builder struct {
	c        *Circuit
	next     []int // next free step per qubit
	nextBits int   // next free step on the classical lane
}

// NewBuilder returns a builder over a circuit with one "q" and one "c"
// register.
func NewBuilder(name string, numQubits, numClbits int) *Builder {
	return Wrap(New(name, numQubits, numClbits))
}

// NewRegisterBuilder returns a builder over a circuit with named registers.
func NewRegisterBuilder(name string, qregs, cregs []Register) *Builder {
	return Wrap(NewWithRegisters(name, qregs, cregs))
}

// Wrap returns a builder that keeps appending to c.
func Wrap(c *Circuit) *Builder {
	b := &Builder{c: c, next: make([]int, c.NumQubits)}
	for _, g := range c.Gates {
		b.occupy(g, g.Step)
	}
	return b
}

// Circuit returns the circuit built so far.
func (b *Builder) Circuit() *Circuit { return b.c }

// Append places g at the earliest free step and adds it to the circuit.
func (b *Builder) Append(g Gate) *Builder {
	g.Step = b.freeStep(g)
	b.occupy(g, g.Step)
	b.c.appendGate(g)
	return b
}

func (b *Builder) lanes(g Gate) (lo, hi int, classical bool) {
	n := b.c.NumQubits
	switch {
	case g.IsBarrier():
		return 0, n - 1, false
	case g.IsMeasure():
		return g.Target, n - 1, true
	}
	lo, hi = g.span()
	return lo, hi, g.IsConditional()
}

func (b *Builder) grow() {
	for len(b.next) < b.c.NumQubits {
		b.next = append(b.next, 0)
	}
}

func (b *Builder) freeStep(g Gate) int {
	b.grow()
	lo, hi, classical := b.lanes(g)
	step := 0
	for q := max(lo, 0); q <= hi && q < len(b.next); q++ {
		step = max(step, b.next[q])
	}
	if classical {
		step = max(step, b.nextBits)
	}
	return step
}

func (b *Builder) occupy(g Gate, step int) {
	b.grow()
	lo, hi, classical := b.lanes(g)
	for q := max(lo, 0); q <= hi && q < len(b.next); q++ {
		b.next[q] = max(b.next[q], step+1)
	}
	if classical {
		b.nextBits = max(b.nextBits, step+1)
	}
}

func (b *Builder) single(typ string, q int) *Builder {
	return b.Append(newGate(typ, q))
}

func (b *Builder) rotation(typ string, theta float64, q int) *Builder {
	g := newGate(typ, q)
	g.Params = []float64{theta}
	return b.Append(g)
}

func (b *Builder) controlled(typ string, ctrl, target int) *Builder {
	g := newGate(typ, target)
	g.Control = ctrl
	return b.Append(g)
}

func (b *Builder) H(q int) *Builder  { return b.single("H", q) }
func (b *Builder) X(q int) *Builder  { return b.single("X", q) }
func (b *Builder) Y(q int) *Builder  { return b.single("Y", q) }
func (b *Builder) Z(q int) *Builder  { return b.single("Z", q) }
func (b *Builder) ID(q int) *Builder { return b.single("ID", q) }
func (b *Builder) S(q int) *Builder  { return b.single("S", q) }
func (b *Builder) T(q int) *Builder  { return b.single("T", q) }

func (b *Builder) Sdg(q int) *Builder {
	g := newGate("S", q)
	g.IsDagger = true
	return b.Append(g)
}

func (b *Builder) RX(theta float64, q int) *Builder { return b.rotation("RX", theta, q) }
func (b *Builder) RY(theta float64, q int) *Builder { return b.rotation("RY", theta, q) }
func (b *Builder) RZ(theta float64, q int) *Builder { return b.rotation("RZ", theta, q) }
func (b *Builder) P(theta float64, q int) *Builder  { return b.rotation("P", theta, q) }

func (b *Builder) CX(ctrl, target int) *Builder { return b.controlled("CX", ctrl, target) }
func (b *Builder) CZ(ctrl, target int) *Builder { return b.controlled("CZ", ctrl, target) }
func (b *Builder) SWAP(q1, q2 int) *Builder     { return b.controlled("SWAP", q1, q2) }

// CCX appends a Toffoli gate.
func (b *Builder) CCX(c1, c2, target int) *Builder {
	g := newGate("CCX", target)
	g.Controls = []int{c1, c2}
	return b.Append(g)
}

// Measure appends a measurement of qubit into clbit.
func (b *Builder) Measure(qubit, clbit int) *Builder {
	g := newGate("MEASURE", qubit)
	g.Clbit = clbit
	return b.Append(g)
}

// MeasureRange measures qubits[i] into clbits[i] for every i.
func (b *Builder) MeasureRange(qubits, clbits []int) *Builder {
	for i := range min(len(qubits), len(clbits)) {
		b.Measure(qubits[i], clbits[i])
	}
	return b
}

// MeasureAll adds a barrier and a new classical register "meas" with one bit
// per qubit, then measures every qubit into it.
func (b *Builder) MeasureAll() *Builder {
	b.Barrier()
	offset := b.c.AddClassicalRegister("meas", b.c.NumQubits)
	for q := range b.c.NumQubits {
		b.Measure(q, offset+q)
	}
	return b
}

// Barrier appends a barrier across all qubits.
func (b *Builder) Barrier() *Builder { return b.Append(newGate("BARRIER", -1)) }

// Reset appends a reset of q to |0>.
func (b *Builder) Reset(q int) *Builder { return b.single("RESET", q) }

// Noise appends a noise annotation on q.
func (b *Builder) Noise(q int, noiseType string, params ...float64) *Builder {
	g := newGate("NOISE", q)
	g.IsNoise = true
	g.NoiseType = noiseType
	g.Params = params
	return b.Append(g)
}

// If conditions the most recently appended gate on the classical register
// bits [first, first+width) holding value.
func (b *Builder) If(first, width, value int) *Builder {
	if len(b.c.Gates) == 0 {
		return b
	}
	g := &b.c.Gates[len(b.c.Gates)-1]
	g.ClassicalControl = first
	g.ClassicalWidth = width
	g.ClassicalValue = value
	b.nextBits = max(b.nextBits, g.Step+1)
	return b
}
