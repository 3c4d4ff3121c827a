// Package analysis compares ideal and noisy executions of circuits and
// reports their structural and performance metrics.
package analysis

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"qviz/internal/bloch"
	"qviz/internal/circuit"
	"qviz/internal/sim"
	"qviz/pkg/logger"
)

// DefaultShots is the number of shots per run when none is given.
const DefaultShots = 1000

// ErrorAnalysis compares the ideal and noisy outcome distributions.
type ErrorAnalysis struct {
	TotalErrorRate float64    `json:"total_error_rate"`
	IdealCounts    sim.Counts `json:"ideal_counts"`
	NoisyCounts    sim.Counts `json:"noisy_counts"`
}

// Metrics is the analysis of one circuit.
type Metrics struct {
	circuit.Metrics
	GateOrder     []string       `json:"gate_order"`
	ExecutionTime time.Duration  `json:"execution_time"`
	ErrorAnalysis ErrorAnalysis  `json:"error_analysis"`
	Bloch         []bloch.Vector `json:"bloch_vectors"`
	NoisyBloch    []bloch.Vector `json:"noisy_bloch_vectors,omitempty"`
}

// TotalGates returns the number of instructions, barriers included.
func (m Metrics) TotalGates() int {
	n := 0
	for _, v := range m.GateCounts {
		n += v
	}
	return n
}

// Analyzer runs circuits on an ideal and a noisy simulator.
type Analyzer struct {
	noise        *sim.NoiseModel
	seed         uint64
	trajectories int
	log          zerolog.Logger

	ideal *sim.Simulator
	noisy *sim.Simulator
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithNoiseModel replaces the default noise model.
func WithNoiseModel(m *sim.NoiseModel) Option {
	return func(a *Analyzer) { a.noise = m }
}

// WithSeed seeds both simulators.
func WithSeed(seed uint64) Option {
	return func(a *Analyzer) { a.seed = seed }
}

// WithTrajectories sets how many noisy runs are averaged for the noisy Bloch
// vectors. Zero disables them.
func WithTrajectories(n int) Option {
	return func(a *Analyzer) { a.trajectories = n }
}

// WithLogger attaches a logger.
func WithLogger(l zerolog.Logger) Option {
	return func(a *Analyzer) { a.log = logger.Component(l, "analyzer") }
}

// NewAnalyzer returns an analyzer using the default noise model.
func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{
		noise:        sim.DefaultNoiseModel(),
		trajectories: 100,
		log:          zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.ideal = sim.New(sim.WithSeed(a.seed))
	a.noisy = sim.New(sim.WithNoise(a.noise), sim.WithSeed(a.seed))
	return a
}

// NoiseModel returns the model used for noisy runs.
func (a *Analyzer) NoiseModel() *sim.NoiseModel { return a.noise }

// Analyze computes the structural metrics of c, times an ideal run of shots
// shots and compares it with a noisy run.
func (a *Analyzer) Analyze(ctx context.Context, c *circuit.Circuit, shots int) (Metrics, error) {
	if shots <= 0 {
		shots = DefaultShots
	}
	m := Metrics{Metrics: c.Metrics(), GateOrder: gateOrder(c)}

	start := time.Now()
	ideal, err := a.ideal.Run(ctx, c, shots)
	if err != nil {
		return Metrics{}, fmt.Errorf("ideal run: %w", err)
	}
	m.ExecutionTime = time.Since(start)

	noisy, err := a.noisy.Run(ctx, c, shots)
	if err != nil {
		return Metrics{}, fmt.Errorf("noisy run: %w", err)
	}
	m.ErrorAnalysis = AnalyzeErrors(ideal, noisy)

	sv, err := a.ideal.Statevector(c)
	if err != nil {
		return Metrics{}, err
	}
	if m.Bloch, err = bloch.Extract(bloch.FromStatevector(sv.Amplitudes), false); err != nil {
		return Metrics{}, err
	}

	if a.trajectories > 0 {
		rho, err := a.noisy.DensityMatrix(ctx, c, a.trajectories)
		if err != nil {
			return Metrics{}, fmt.Errorf("noisy state: %w", err)
		}
		if m.NoisyBloch, err = bloch.Extract(bloch.FromDensityMatrix(rho), false); err != nil {
			return Metrics{}, err
		}
	}

	a.log.Debug().
		Str("circuit", c.Name).
		Int("depth", m.Depth).
		Float64("error_rate", m.ErrorAnalysis.TotalErrorRate).
		Dur("execution_time", m.ExecutionTime).
		Msg("analyzed circuit")
	return m, nil
}

// AnalyzeErrors computes the total variation distance between the ideal and
// noisy distributions over the ideal outcomes. Both distributions are
// normalised by the ideal shot total.
func AnalyzeErrors(ideal, noisy sim.Counts) ErrorAnalysis {
	res := ErrorAnalysis{IdealCounts: ideal, NoisyCounts: noisy}
	total := float64(ideal.Total())
	if total == 0 {
		return res
	}
	sum := 0.0
	for state, n := range ideal {
		sum += math.Abs(float64(n)/total - float64(noisy[state])/total)
	}
	res.TotalErrorRate = sum / 2
	return res
}

// gateOrder lists instruction names in order of first appearance.
func gateOrder(c *circuit.Circuit) []string {
	var names []string
	seen := make(map[string]bool)
	for _, g := range c.Gates {
		if g.IsNoise {
			continue
		}
		if name := g.Name(); !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}
