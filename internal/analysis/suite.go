package analysis

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"qviz/internal/circuit"
	"qviz/internal/demo"
	"qviz/internal/render"
)

// Result is the analysis of one named circuit.
type Result struct {
	Name    string           `json:"name"`
	Circuit *circuit.Circuit `json:"-"`
	Metrics Metrics          `json:"metrics"`
}

// RunSuite analyses every circuit concurrently and returns the results in
// input order. The first failure cancels the remaining runs.
func (a *Analyzer) RunSuite(ctx context.Context, circuits []demo.Circuit, shots int) ([]Result, error) {
	results := make([]Result, len(circuits))
	g, ctx := errgroup.WithContext(ctx)
	for i, dc := range circuits {
		g.Go(func() error {
			a.log.Info().Str("circuit", dc.Name).Msg("analyzing circuit")
			m, err := a.Analyze(ctx, dc.Circuit, shots)
			if err != nil {
				return fmt.Errorf("%s: %w", dc.Name, err)
			}
			results[i] = Result{Name: dc.Name, Circuit: dc.Circuit, Metrics: m}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Summary renders the short per-circuit result block.
func Summary(r Result) string {
	m := r.Metrics
	var sb strings.Builder
	fmt.Fprintf(&sb, "\nResults for %s:\n", r.Name)
	fmt.Fprintf(&sb, "Circuit depth: %d\n", m.Depth)
	fmt.Fprintf(&sb, "Total gates: %d\n", m.TotalGates())
	fmt.Fprintf(&sb, "Error rate: %.4f\n", m.ErrorAnalysis.TotalErrorRate)
	fmt.Fprintf(&sb, "Execution time: %.4fs\n", m.ExecutionTime.Seconds())
	return sb.String()
}

// Report renders the performance report for a suite run.
func Report(results []Result) string {
	var sb strings.Builder
	sb.WriteString("Quantum Circuit Performance Analysis\n")
	sb.WriteString(strings.Repeat("=", 40) + "\n\n")

	for _, r := range results {
		m := r.Metrics
		fmt.Fprintf(&sb, "\n%s Circuit Analysis:\n", r.Name)
		sb.WriteString(strings.Repeat("-", 20) + "\n")

		sb.WriteString("Circuit Metrics:\n")
		fmt.Fprintf(&sb, "  - Depth: %d\n", m.Depth)
		fmt.Fprintf(&sb, "  - Width: %d\n", m.Width)
		fmt.Fprintf(&sb, "  - Total Gates: %d\n", m.TotalGates())

		sb.WriteString("\nGate Distribution:\n")
		for _, name := range m.GateOrder {
			fmt.Fprintf(&sb, "  - %s: %d\n", name, m.GateCounts[name])
		}

		sb.WriteString("\nPerformance:\n")
		fmt.Fprintf(&sb, "  - Execution Time: %.4fs\n", m.ExecutionTime.Seconds())
		fmt.Fprintf(&sb, "  - Error Rate: %.4f\n\n", m.ErrorAnalysis.TotalErrorRate)
	}
	return sb.String()
}

// Figures renders the circuit diagram, gate distribution, ideal-vs-noisy
// comparison and metrics card of a result, in that order.
func Figures(r Result) ([][]byte, error) {
	m := r.Metrics

	diagram, err := render.CircuitDiagram(r.Circuit, render.Options{Title: "Circuit Diagram"})
	if err != nil {
		return nil, err
	}
	gates, err := render.GateDistribution(m.GateOrder, m.GateCounts, render.Options{})
	if err != nil {
		return nil, err
	}

	ideal := m.ErrorAnalysis.IdealCounts
	states := make([]string, 0, len(ideal))
	for s := range ideal {
		states = append(states, s)
	}
	slices.Sort(states)
	total := float64(ideal.Total())
	idealProbs := make([]float64, len(states))
	noisyProbs := make([]float64, len(states))
	for i, s := range states {
		idealProbs[i] = float64(ideal[s]) / total
		noisyProbs[i] = float64(m.ErrorAnalysis.NoisyCounts[s]) / total
	}
	errs, err := render.ErrorComparison(states, idealProbs, noisyProbs, render.Options{})
	if err != nil {
		return nil, err
	}

	card, err := render.MetricsCard([]string{
		fmt.Sprintf("Circuit Depth: %d", m.Depth),
		fmt.Sprintf("Circuit Width: %d", m.Width),
		fmt.Sprintf("Circuit Size: %d", m.Size),
		fmt.Sprintf("Execution Time: %.4fs", m.ExecutionTime.Seconds()),
		fmt.Sprintf("Error Rate: %.4f", m.ErrorAnalysis.TotalErrorRate),
	}, render.Options{})
	if err != nil {
		return nil, err
	}
	return [][]byte{diagram, gates, errs, card}, nil
}

// FigureName returns the file name of the i-th figure (0-based) of a result.
func FigureName(name string, i int) string {
	return fmt.Sprintf("%s_%d.png", demo.Slug(name), i+1)
}
