package circuit

// DAGNode is a gate in the dependency graph. A gate depends on the last
// earlier gate touching each of its qubit and classical-bit wires.
type DAGNode struct {
	ID           int
	Gate         Gate
	Dependencies []int // IDs of nodes that must execute before this one
}

// CircuitDAG represents a circuit as a directed acyclic graph over its
// qubit and classical-bit wires. Node IDs follow execution order.
type CircuitDAG struct {
	Nodes     []*DAGNode
	NumQubits int
	NumClbits int
}

// FromCircuit builds the dependency graph of c, walking gates in step order.
func FromCircuit(c *Circuit) *CircuitDAG {
	dag := &CircuitDAG{NumQubits: c.NumQubits, NumClbits: c.NumClbits()}
	last := make([]int, dag.NumQubits+dag.NumClbits)
	for i := range last {
		last[i] = -1
	}

	for _, g := range c.Ordered() {
		node := &DAGNode{ID: len(dag.Nodes), Gate: g}
		for _, w := range dag.wires(g) {
			if prev := last[w]; prev >= 0 && !containsInt(node.Dependencies, prev) {
				node.Dependencies = append(node.Dependencies, prev)
			}
			last[w] = node.ID
		}
		dag.Nodes = append(dag.Nodes, node)
	}
	return dag
}

// wires returns the wire indices a gate occupies: qubits first, then
// classical bits offset by NumQubits.
func (dag *CircuitDAG) wires(g Gate) []int {
	var wires []int
	if g.IsBarrier() {
		for q := range dag.NumQubits {
			wires = append(wires, q)
		}
	} else {
		wires = append(wires, g.Qubits()...)
	}
	for _, b := range g.Clbits() {
		wires = append(wires, dag.NumQubits+b)
	}
	return wires
}

// TopologicalSort returns nodes in an order respecting dependencies, ties
// broken by ID.
func (dag *CircuitDAG) TopologicalSort() []*DAGNode {
	indegree := make([]int, len(dag.Nodes))
	children := make([][]int, len(dag.Nodes))
	for _, n := range dag.Nodes {
		indegree[n.ID] = len(n.Dependencies)
		for _, dep := range n.Dependencies {
			children[dep] = append(children[dep], n.ID)
		}
	}

	var ready []int
	for _, n := range dag.Nodes {
		if indegree[n.ID] == 0 {
			ready = append(ready, n.ID)
		}
	}

	result := make([]*DAGNode, 0, len(dag.Nodes))
	for len(ready) > 0 {
		best := 0
		for i, id := range ready {
			if id < ready[best] {
				best = i
			}
		}
		id := ready[best]
		ready = append(ready[:best], ready[best+1:]...)
		result = append(result, dag.Nodes[id])
		for _, child := range children[id] {
			indegree[child]--
			if indegree[child] == 0 {
				ready = append(ready, child)
			}
		}
	}
	return result
}

// Layers returns the longest weighted path ending at each node, where weight
// decides how much a node adds. Zero-weight nodes still synchronise the
// wires they span.
func (dag *CircuitDAG) Layers(weight func(Gate) int) []int {
	level := make([]int, len(dag.Nodes))
	for _, n := range dag.TopologicalSort() {
		lv := 0
		for _, dep := range n.Dependencies {
			lv = max(lv, level[dep])
		}
		level[n.ID] = lv + weight(n.Gate)
	}
	return level
}

// GetNodesOnQubit returns all nodes that touch the given qubit in order.
func (dag *CircuitDAG) GetNodesOnQubit(qubit int) []*DAGNode {
	var nodes []*DAGNode
	for _, n := range dag.Nodes {
		if n.Gate.IsBarrier() || n.Gate.references(qubit) {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

func containsInt(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
