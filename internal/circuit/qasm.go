package circuit

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Pre-compiled regexps for QASM parsing.
var (
	qregRegex          = regexp.MustCompile(`^qreg\s+(\w+)\s*\[\s*(\d+)\s*\]$`)
	cregRegex          = regexp.MustCompile(`^creg\s+(\w+)\s*\[\s*(\d+)\s*\]$`)
	qubitRegex         = regexp.MustCompile(`^qubit\s*(?:\[\s*(\d+)\s*\])?\s+(\w+)$`)
	bitRegex           = regexp.MustCompile(`^bit\s*(?:\[\s*(\d+)\s*\])?\s+(\w+)$`)
	measureRegex       = regexp.MustCompile(`^measure\s+(.+?)\s*->\s*(.+)$`)
	assignMeasureRegex = regexp.MustCompile(`^(.+?)\s*=\s*measure\s+(.+)$`)
	ifRegex            = regexp.MustCompile(`^if\s*\(\s*(\w+)\s*(?:\[\s*(\d+)\s*\])?\s*==\s*(\d+)\s*\)\s*(.+)$`)
	gateRegex          = regexp.MustCompile(`^([A-Za-z_]\w*)\s*(?:\(([^)]*)\))?\s*(.*)$`)
	operandRegex       = regexp.MustCompile(`^(\w+)\s*(?:\[\s*(\d+)\s*\])?$`)
	noiseRegex         = regexp.MustCompile(`^noise\s+(\w+)\s+([^\s]+)(?:\s+param=(` + paramPattern + `))?$`)
)

// unsupportedKeywords start statements the reader recognises but cannot run.
var unsupportedKeywords = []string{"gate", "opaque", "def", "for", "while", "defcal", "box"}

// ParseError reports a QASM statement that could not be read.
type ParseError struct {
	Line      int
	Statement string
	Reason    string
}

func (e *ParseError) Error() string {
	if e.Statement == "" {
		return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
	}
	return fmt.Sprintf("line %d: %s in %q", e.Line, e.Reason, e.Statement)
}

type regInfo struct {
	offset int
	size   int
}

type parser struct {
	b     *Builder
	qregs map[string]regInfo
	cregs map[string]regInfo
	line  int
	stmt  string
}

// Parse reads an OpenQASM 2.0 program or the OpenQASM 3 subset that maps onto
// it: qubit/bit declarations, standard gates, measure in both spellings,
// reset, barrier and if conditions. Register operands broadcast.
//
// Comments of the form "// noise <type> <qubit> [param=<p>]" become noise
// annotations on the circuit.
func Parse(src string) (*Circuit, error) {
	p := &parser{
		b:     Wrap(&Circuit{}),
		qregs: make(map[string]regInfo),
		cregs: make(map[string]regInfo),
	}

	for i, raw := range strings.Split(src, "\n") {
		p.line = i + 1
		code, comment, hasComment := strings.Cut(raw, "//")
		for stmt := range strings.SplitSeq(code, ";") {
			p.stmt = strings.TrimSpace(stmt)
			if p.stmt == "" {
				continue
			}
			if err := p.statement(p.stmt); err != nil {
				return nil, err
			}
		}
		if hasComment {
			if err := p.noise(strings.TrimSpace(comment)); err != nil {
				return nil, err
			}
		}
	}

	if p.b.c.NumQubits == 0 {
		p.stmt = ""
		return nil, p.fail("program declares no qubits")
	}
	return p.b.c, nil
}

func (p *parser) fail(format string, args ...any) error {
	return &ParseError{Line: p.line, Statement: p.stmt, Reason: fmt.Sprintf(format, args...)}
}

func (p *parser) statement(stmt string) error {
	keyword, _, _ := strings.Cut(stmt, " ")
	keyword = strings.TrimSpace(keyword)

	switch {
	case strings.HasPrefix(stmt, "OPENQASM"), keyword == "include":
		return nil
	case keyword == "barrier":
		return p.barrier(strings.TrimSpace(strings.TrimPrefix(stmt, "barrier")))
	case keyword == "reset":
		return p.reset(strings.TrimSpace(strings.TrimPrefix(stmt, "reset")))
	}
	for _, kw := range unsupportedKeywords {
		if keyword == kw || strings.HasPrefix(keyword, kw+"(") {
			return p.fail("%q blocks are not supported", kw)
		}
	}

	if m := qregRegex.FindStringSubmatch(stmt); m != nil {
		return p.declare(p.qregs, m[1], m[2], true)
	}
	if m := qubitRegex.FindStringSubmatch(stmt); m != nil {
		return p.declare(p.qregs, m[2], m[1], true)
	}
	if m := cregRegex.FindStringSubmatch(stmt); m != nil {
		return p.declare(p.cregs, m[1], m[2], false)
	}
	if m := bitRegex.FindStringSubmatch(stmt); m != nil {
		return p.declare(p.cregs, m[2], m[1], false)
	}
	if m := measureRegex.FindStringSubmatch(stmt); m != nil {
		return p.measure(m[1], m[2])
	}
	if m := assignMeasureRegex.FindStringSubmatch(stmt); m != nil {
		return p.measure(m[2], m[1])
	}
	if m := ifRegex.FindStringSubmatch(stmt); m != nil {
		return p.conditional(m)
	}
	return p.gate(stmt, nil)
}

func (p *parser) declare(regs map[string]regInfo, name, sizeStr string, quantum bool) error {
	if _, ok := p.qregs[name]; ok {
		return p.fail("register %q already declared", name)
	}
	if _, ok := p.cregs[name]; ok {
		return p.fail("register %q already declared", name)
	}
	size := 1
	if sizeStr != "" {
		var err error
		if size, err = strconv.Atoi(sizeStr); err != nil || size < 1 {
			return p.fail("invalid register size %q", sizeStr)
		}
	}

	c := p.b.c
	if quantum && c.NumQubits+size > MaxQubits {
		return p.fail("register %q would bring the circuit to %d qubits, limit is %d", name, c.NumQubits+size, MaxQubits)
	}
	if !quantum && c.NumClbits()+size > MaxClbits {
		return p.fail("register %q would bring the circuit to %d classical bits, limit is %d", name, c.NumClbits()+size, MaxClbits)
	}
	var offset int
	if quantum {
		offset = c.AddQuantumRegister(name, size)
	} else {
		offset = c.AddClassicalRegister(name, size)
	}
	regs[name] = regInfo{offset: offset, size: size}
	return nil
}

// operand resolves "name" or "name[i]" to global bit indices.
func (p *parser) operand(s string, regs map[string]regInfo, kind string) ([]int, error) {
	s = strings.TrimSpace(s)
	m := operandRegex.FindStringSubmatch(s)
	if m == nil {
		return nil, p.fail("malformed %s operand %q", kind, s)
	}
	r, ok := regs[m[1]]
	if !ok {
		return nil, p.fail("undeclared %s register %q", kind, m[1])
	}
	if m[2] == "" {
		bits := make([]int, r.size)
		for i := range bits {
			bits[i] = r.offset + i
		}
		return bits, nil
	}
	idx, _ := strconv.Atoi(m[2])
	if idx >= r.size {
		return nil, p.fail("index %d out of range for %s[%d]", idx, m[1], r.size)
	}
	return []int{r.offset + idx}, nil
}

func (p *parser) operands(list string, regs map[string]regInfo, kind string) ([][]int, error) {
	var out [][]int
	for part := range strings.SplitSeq(list, ",") {
		if strings.TrimSpace(part) == "" {
			return nil, p.fail("empty %s operand", kind)
		}
		bits, err := p.operand(part, regs, kind)
		if err != nil {
			return nil, err
		}
		out = append(out, bits)
	}
	return out, nil
}

// broadcast expands register operands: every register argument must have
// the same size, single bits are repeated.
func (p *parser) broadcast(args [][]int) ([][]int, error) {
	n := 1
	for _, a := range args {
		if len(a) == 1 {
			continue
		}
		if n > 1 && len(a) != n {
			return nil, p.fail("register operands differ in size (%d vs %d)", n, len(a))
		}
		n = len(a)
	}
	rows := make([][]int, n)
	for i := range rows {
		row := make([]int, len(args))
		for j, a := range args {
			if len(a) == 1 {
				row[j] = a[0]
			} else {
				row[j] = a[i]
			}
		}
		rows[i] = row
	}
	return rows, nil
}

type condition struct {
	first, width, value int
}

func (p *parser) conditional(m []string) error {
	r, ok := p.cregs[m[1]]
	if !ok {
		return p.fail("undeclared classical register %q", m[1])
	}
	cond := condition{first: r.offset, width: r.size}
	if m[2] != "" {
		idx, _ := strconv.Atoi(m[2])
		if idx >= r.size {
			return p.fail("index %d out of range for %s[%d]", idx, m[1], r.size)
		}
		cond = condition{first: r.offset + idx, width: 1}
	}
	value, err := strconv.Atoi(m[3])
	if err != nil || cond.width < 63 && value >= 1<<cond.width {
		return p.fail("condition value %s does not fit in %d bits", m[3], cond.width)
	}
	cond.value = value

	body := strings.TrimSpace(m[4])
	if strings.HasPrefix(body, "reset ") {
		return p.reset(strings.TrimSpace(strings.TrimPrefix(body, "reset")), &cond)
	}
	return p.gate(body, &cond)
}

func (p *parser) gate(stmt string, cond *condition) error {
	m := gateRegex.FindStringSubmatch(stmt)
	if m == nil {
		return p.fail("unrecognised statement")
	}
	typ, dagger, ok := resolveGateName(m[1])
	if !ok {
		return p.fail("unsupported gate %q", m[1])
	}
	arity := catalog[typ]

	params, err := parseParamList(m[2])
	if err != nil {
		return p.fail("%v", err)
	}
	if len(params) != arity.params {
		return p.fail("gate %s takes %d parameter(s), got %d", m[1], arity.params, len(params))
	}
	if strings.TrimSpace(m[3]) == "" {
		return p.fail("gate %s has no operands", m[1])
	}

	args, err := p.operands(m[3], p.qregs, "quantum")
	if err != nil {
		return err
	}
	if len(args) != arity.qubits {
		return p.fail("gate %s acts on %d qubit(s), got %d", m[1], arity.qubits, len(args))
	}
	rows, err := p.broadcast(args)
	if err != nil {
		return err
	}

	for _, qubits := range rows {
		for i := range qubits {
			for j := i + 1; j < len(qubits); j++ {
				if qubits[i] == qubits[j] {
					return p.fail("duplicate qubit operand")
				}
			}
		}
		last := len(qubits) - 1
		g := newGate(typ, qubits[last])
		g.IsDagger = dagger
		if len(params) > 0 {
			g.Params = append([]float64(nil), params...)
		}
		switch last {
		case 0:
		case 1:
			g.Control = qubits[0]
		default:
			g.Controls = append([]int(nil), qubits[:last]...)
		}
		p.appendConditional(g, cond)
	}
	return nil
}

func (p *parser) appendConditional(g Gate, cond *condition) {
	if cond != nil {
		g.ClassicalControl = cond.first
		g.ClassicalWidth = cond.width
		g.ClassicalValue = cond.value
	}
	p.b.Append(g)
}

func (p *parser) measure(src, dst string) error {
	qs, err := p.operand(src, p.qregs, "quantum")
	if err != nil {
		return err
	}
	cs, err := p.operand(dst, p.cregs, "classical")
	if err != nil {
		return err
	}
	if len(qs) != len(cs) {
		return p.fail("cannot measure %d qubit(s) into %d bit(s)", len(qs), len(cs))
	}
	for i := range qs {
		p.b.Measure(qs[i], cs[i])
	}
	return nil
}

func (p *parser) reset(args string, cond ...*condition) error {
	qs, err := p.operand(args, p.qregs, "quantum")
	if err != nil {
		return err
	}
	for _, q := range qs {
		g := newGate("RESET", q)
		if len(cond) > 0 {
			p.appendConditional(g, cond[0])
		} else {
			p.b.Append(g)
		}
	}
	return nil
}

func (p *parser) barrier(args string) error {
	if args != "" {
		if _, err := p.operands(args, p.qregs, "quantum"); err != nil {
			return err
		}
	}
	p.b.Barrier()
	return nil
}

func (p *parser) noise(comment string) error {
	m := noiseRegex.FindStringSubmatch(comment)
	if m == nil {
		return nil
	}
	p.stmt = "// " + comment
	qs, err := p.operand(m[2], p.qregs, "quantum")
	if err != nil {
		return err
	}
	var params []float64
	if m[3] != "" {
		v, ok := ParseParam(m[3])
		if !ok {
			return p.fail("invalid noise parameter %q", m[3])
		}
		params = []float64{v}
	}
	for _, q := range qs {
		p.b.Noise(q, m[1], params...)
	}
	return nil
}

// ToQASM renders the circuit as an OpenQASM 2.0 program. Noise annotations
// are written as comments Parse reads back.
func (c *Circuit) ToQASM() string {
	qregs := c.QuantumRegisters()
	cregs := c.ClassicalRegisters()

	var sb strings.Builder
	sb.WriteString("OPENQASM 2.0;\n")
	sb.WriteString("include \"qelib1.inc\";\n\n")
	for _, r := range qregs {
		fmt.Fprintf(&sb, "qreg %s[%d];\n", r.Name, r.Size)
	}
	for _, r := range cregs {
		fmt.Fprintf(&sb, "creg %s[%d];\n", r.Name, r.Size)
	}
	sb.WriteString("\n")

	qubit := func(i int) string { return bitName(qregs, i) }

	for _, g := range c.Ordered() {
		switch {
		case g.IsBarrier():
			names := make([]string, len(qregs))
			for i, r := range qregs {
				names[i] = r.Name
			}
			fmt.Fprintf(&sb, "barrier %s;\n", strings.Join(names, ", "))
			continue
		case g.IsNoise:
			if len(g.Params) > 0 {
				fmt.Fprintf(&sb, "// noise %s %s param=%s\n", g.NoiseType, qubit(g.Target), FormatParam(g.Params[0]))
			} else {
				fmt.Fprintf(&sb, "// noise %s %s\n", g.NoiseType, qubit(g.Target))
			}
			continue
		case g.IsMeasure():
			fmt.Fprintf(&sb, "measure %s -> %s;\n", qubit(g.Target), bitName(cregs, g.Clbit))
			continue
		}

		if g.IsConditional() {
			sb.WriteString(conditionQASM(cregs, g))
		}
		sb.WriteString(g.Name())
		if len(g.Params) > 0 {
			params := make([]string, len(g.Params))
			for i, v := range g.Params {
				params[i] = FormatParam(v)
			}
			fmt.Fprintf(&sb, "(%s)", strings.Join(params, ", "))
		}
		operands := make([]string, 0, 3)
		for _, q := range g.Qubits() {
			operands = append(operands, qubit(q))
		}
		fmt.Fprintf(&sb, " %s;\n", strings.Join(operands, ", "))
	}

	return sb.String()
}

// bitName returns "reg[i]" for a global bit index.
// QubitName returns the register-qualified name of qubit q, e.g. "data[2]".
func (c *Circuit) QubitName(q int) string { return bitName(c.QuantumRegisters(), q) }

// ClbitName returns the register-qualified name of classical bit b.
func (c *Circuit) ClbitName(b int) string { return bitName(c.ClassicalRegisters(), b) }

func bitName(regs []Register, global int) string {
	offset := 0
	for _, r := range regs {
		if global < offset+r.Size {
			return fmt.Sprintf("%s[%d]", r.Name, global-offset)
		}
		offset += r.Size
	}
	return fmt.Sprintf("q[%d]", global)
}

func conditionQASM(cregs []Register, g Gate) string {
	offset := 0
	for _, r := range cregs {
		if g.ClassicalControl == offset && max(g.ClassicalWidth, 1) == r.Size {
			return fmt.Sprintf("if (%s==%d) ", r.Name, g.ClassicalValue)
		}
		offset += r.Size
	}
	return fmt.Sprintf("if (%s==%d) ", bitName(cregs, g.ClassicalControl), g.ClassicalValue)
}
