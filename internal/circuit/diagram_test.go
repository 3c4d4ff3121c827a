package circuit

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestDiagramLayout(t *testing.T) {
	c := NewBuilder("bell", 2, 2).H(0).CX(0, 1).Measure(0, 0).Measure(1, 1).Circuit()
	out := c.Diagram(DiagramOptions{})
	t.Logf("\n%s", out)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if want := 1 + 3*2 + 2; len(lines) != want {
		t.Fatalf("expected %d lines, got %d", want, len(lines))
	}
	width := LabelWidth + c.MaxSteps*CellWidth
	for i, line := range lines {
		if n := utf8.RuneCountInString(line); n != width {
			t.Errorf("line %d is %d runes wide, want %d: %q", i, n, width, line)
		}
	}
	for _, want := range []string{"q[0]", "q[1]", "┤  H  ├", "●", "⊕", "c2", "╩0", "╩1"} {
		if !strings.Contains(out, want) {
			t.Errorf("diagram is missing %q", want)
		}
	}
}

func TestDiagramCursor(t *testing.T) {
	c := NewBuilder("cursor", 2, 0).H(0).Circuit()
	out := c.Diagram(DiagramOptions{Steps: 3, Cursor: &Position{Step: 1, Qubit: 1}})
	if !strings.Contains(out, "╔") || !strings.Contains(out, "╝") {
		t.Errorf("expected a highlighted cell:\n%s", out)
	}
}

func TestDiagramPainter(t *testing.T) {
	c := NewBuilder("paint", 1, 0).X(0).Circuit()
	var gates int
	c.Diagram(DiagramOptions{Paint: func(role Role, s string) string {
		if role == RoleGate {
			gates++
		}
		return s
	}})
	if gates != 3 {
		t.Errorf("expected the gate box painted on 3 rows, got %d", gates)
	}
}

func TestCellAtPassThrough(t *testing.T) {
	c := NewBuilder("span", 3, 0).CX(0, 2).Circuit()
	info := c.CellAt(0, 1)
	if !info.PassThrough || !info.VertAbove || !info.VertBelow {
		t.Errorf("middle qubit should show a pass-through connector: %+v", info)
	}
	if !c.CellAt(0, 0).IsControl || !c.CellAt(0, 2).IsTarget {
		t.Errorf("control/target not detected")
	}
}
