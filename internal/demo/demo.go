// Package demo holds the illustrative circuits analysed by the suite and the
// default program loaded into the editors.
package demo

import (
	"math"
	"strings"

	"qviz/internal/circuit"
)

// DefaultQASM is the program the web editor starts from.
const DefaultQASM = `// OpenQASM 3 code
OPENQASM 3;
include "stdgates.inc";

qubit[4] q;
bit[4] c;

h q[0];
cx q[0], q[1];
measure q -> c;
`

// EditorQASM is the smaller program the terminal editor starts from.
const EditorQASM = `OPENQASM 3;
include "stdgates.inc";

qubit[2] q;
bit[2] c;

h q[0];
cx q[0], q[1];
measure q -> c;
`

// Circuit is a named demo circuit.
type Circuit struct {
	Name    string
	Circuit *circuit.Circuit
}

// Slug returns the lower-case, underscore-separated form of the name used in
// file names and URLs.
func (c Circuit) Slug() string { return Slug(c.Name) }

// Slug converts a display name to its file-name form.
func Slug(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "_")
}

// Suite returns the six analysis circuits in report order. Each call builds
// fresh circuits.
func Suite() []Circuit {
	return []Circuit{
		{"Error Detection", ErrorDetection()},
		{"Register Simulation", RegisterSimulation()},
		{"Memory Operations", MemoryOperations()},
		{"Arithmetic", Arithmetic()},
		{"Cache Simulation", CacheSimulation()},
		{"Pipeline", Pipeline()},
	}
}

// Lookup returns the suite circuit whose name or slug matches name.
func Lookup(name string) (Circuit, bool) {
	for _, c := range Suite() {
		if c.Name == name || c.Slug() == name {
			return c, true
		}
	}
	return Circuit{}, false
}

// ErrorDetection encodes q0 into a three-qubit repetition code, flips q0,
// decodes and corrects with a Toffoli.
func ErrorDetection() *circuit.Circuit {
	b := circuit.NewRegisterBuilder("error_detection",
		[]circuit.Register{{Name: "q", Size: 3}},
		[]circuit.Register{{Name: "c", Size: 3}})
	b.H(0).CX(0, 1).CX(0, 2)
	b.X(0)
	b.CX(0, 1).CX(0, 2).CCX(1, 2, 0)
	b.MeasureRange([]int{0, 1, 2}, []int{0, 1, 2})
	return b.Circuit()
}

// RegisterSimulation entangles two pairs of a four-qubit register and applies
// a phase to each pair.
func RegisterSimulation() *circuit.Circuit {
	b := circuit.NewBuilder("register_simulation", 4, 4)
	for q := range 4 {
		b.H(q)
	}
	b.CX(0, 1).CX(2, 3).Barrier()
	b.RZ(math.Pi/4, 0).RZ(math.Pi/4, 2).Barrier()
	return b.MeasureAll().Circuit()
}

// MemoryOperations stores a Bell pair, idles, then reads it back.
func MemoryOperations() *circuit.Circuit {
	b := circuit.NewBuilder("memory_operations", 3, 3)
	b.H(0).CX(0, 1).Barrier()
	b.ID(0).ID(1).Barrier()
	b.CX(0, 2).H(0)
	return b.MeasureAll().Circuit()
}

// Arithmetic adds q0 and q1 (both set to 1) into sum q2 and carry q3.
func Arithmetic() *circuit.Circuit {
	b := circuit.NewBuilder("arithmetic", 4, 4)
	b.X(0).X(1)
	b.CX(0, 2).CX(1, 2).CCX(0, 1, 3)
	return b.MeasureAll().Circuit()
}

// CacheSimulation fans a superposed cache line out to four cache and four
// data qubits.
func CacheSimulation() *circuit.Circuit {
	b := circuit.NewRegisterBuilder("cache_simulation",
		[]circuit.Register{{Name: "cache", Size: 4}, {Name: "data", Size: 4}},
		[]circuit.Register{{Name: "measurement", Size: 8}})
	const cache, data = 0, 4
	b.H(cache).CX(cache, data)
	for i := 1; i < 4; i++ {
		b.CX(cache, cache+i)
		b.CX(data, data+i)
	}
	return b.MeasureAll().Circuit()
}

// Pipeline passes a superposition through three barrier-separated stages.
func Pipeline() *circuit.Circuit {
	b := circuit.NewBuilder("pipeline", 5, 5)
	b.H(0).Barrier()
	b.CX(0, 1).Barrier()
	b.H(1).CX(1, 2).Barrier()
	return b.MeasureAll().Circuit()
}
