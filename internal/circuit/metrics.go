package circuit

// Metrics are the structural figures of a circuit.
type Metrics struct {
	Depth      int            `json:"depth"`
	Width      int            `json:"width"`
	Size       int            `json:"size"`
	GateCounts map[string]int `json:"gate_counts"`
}

// Metrics computes depth, width, size and per-name gate counts.
//
// Depth is the longest path through the dependency graph over qubit and
// classical-bit wires; barriers do not add to it but still synchronise the
// wires they span. Size counts every instruction except barriers. Width is
// qubits plus classical bits. Noise annotations are not instructions and are
// left out of all figures.
func (c *Circuit) Metrics() Metrics {
	m := Metrics{
		Width:      c.NumQubits + c.NumClbits(),
		GateCounts: make(map[string]int),
	}

	for _, g := range c.Gates {
		if g.IsNoise {
			continue
		}
		m.GateCounts[g.Name()]++
		if !g.IsBarrier() {
			m.Size++
		}
	}

	dag := FromCircuit(c)
	for _, lv := range dag.Layers(depthWeight) {
		m.Depth = max(m.Depth, lv)
	}
	return m
}

func depthWeight(g Gate) int {
	if g.IsBarrier() || g.IsNoise {
		return 0
	}
	return 1
}

// Depth returns the circuit depth.
func (c *Circuit) Depth() int { return c.Metrics().Depth }
