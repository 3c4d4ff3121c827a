// Package visualize turns QASM source into everything the editors display:
// the parsed circuit, its Bloch vectors, basis-state probabilities and PNG
// renderings.
package visualize

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/plot/vg"

	"qviz/internal/bloch"
	"qviz/internal/circuit"
	"qviz/internal/render"
	"qviz/internal/sim"
	"qviz/pkg/logger"
)

// DefaultTrajectories is the number of noisy runs averaged into a density
// matrix when no other count is configured.
const DefaultTrajectories = 200

// Options selects what a visualization computes.
type Options struct {
	Images      bool // render the circuit and Bloch sphere PNGs
	ReverseBits bool // list qubits from n-1 down to 0
	Noisy       bool // extract from the trajectory-averaged noisy state
}

// Result is one visualization of a program.
type Result struct {
	Circuit       *circuit.Circuit
	CircuitImage  []byte
	StateImage    []byte
	Probabilities map[string]float64
	Bloch         []bloch.Vector
	Labels        []string
}

// Visualizer runs the parse, simulate, extract and render pipeline.
type Visualizer struct {
	ideal        *sim.Simulator
	noisy        *sim.Simulator
	trajectories int
	log          zerolog.Logger
}

// Option configures a Visualizer.
type Option func(*Visualizer)

// WithNoise sets the simulator used for noisy extraction.
func WithNoise(s *sim.Simulator, trajectories int) Option {
	return func(v *Visualizer) {
		v.noisy = s
		if trajectories > 0 {
			v.trajectories = trajectories
		}
	}
}

// New returns a visualizer using an ideal simulator and, unless overridden,
// the default noise model for noisy extraction.
func New(log zerolog.Logger, opts ...Option) *Visualizer {
	v := &Visualizer{
		ideal:        sim.New(),
		noisy:        sim.New(sim.WithNoise(sim.DefaultNoiseModel())),
		trajectories: DefaultTrajectories,
		log:          logger.Component(log, "visualizer"),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Visualize parses code and computes its visualization.
func (v *Visualizer) Visualize(ctx context.Context, code string, opts Options) (*Result, error) {
	c, err := circuit.Parse(code)
	if err != nil {
		return nil, err
	}
	return v.VisualizeCircuit(ctx, c, opts)
}

// VisualizeCircuit computes the visualization of an already parsed circuit.
func (v *Visualizer) VisualizeCircuit(ctx context.Context, c *circuit.Circuit, opts Options) (*Result, error) {
	start := time.Now()

	sv, err := v.ideal.Statevector(c)
	if err != nil {
		return nil, fmt.Errorf("simulate: %w", err)
	}

	state := bloch.FromStatevector(sv.Amplitudes)
	if opts.Noisy {
		rho, err := v.noisy.DensityMatrix(ctx, c, v.trajectories)
		if err != nil {
			return nil, fmt.Errorf("simulate: %w", err)
		}
		state = bloch.FromDensityMatrix(rho)
	}

	vectors, err := bloch.Extract(state, opts.ReverseBits)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Circuit:       c,
		Probabilities: sv.Probabilities(),
		Bloch:         vectors,
		Labels:        bloch.Labels(len(vectors), opts.ReverseBits),
	}

	if opts.Images {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if res.CircuitImage, err = render.CircuitDiagram(c, render.Options{}); err != nil {
			return nil, fmt.Errorf("draw circuit: %w", err)
		}
		stateOpts := render.Options{Width: 4 * vg.Inch, Height: 4 * vg.Inch}
		if res.StateImage, err = render.BlochMultivector(res.Bloch, res.Labels, stateOpts); err != nil {
			return nil, fmt.Errorf("draw state: %w", err)
		}
	}

	v.log.Debug().
		Int("qubits", c.NumQubits).
		Int("gates", len(c.Gates)).
		Bool("noisy", opts.Noisy).
		Dur("elapsed", time.Since(start)).
		Msg("visualized circuit")
	return res, nil
}

// Extract computes Bloch vectors for a raw state, labelled for the requested
// ordering.
func Extract(state bloch.State, reverseBits bool) ([]bloch.Vector, []string, error) {
	vectors, err := bloch.Extract(state, reverseBits)
	if err != nil {
		return nil, nil, err
	}
	return vectors, bloch.Labels(len(vectors), reverseBits), nil
}
