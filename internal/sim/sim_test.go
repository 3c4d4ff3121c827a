package sim

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qviz/internal/circuit"
)

func bell() *circuit.Circuit {
	return circuit.NewBuilder("bell", 2, 2).H(0).CX(0, 1).Measure(0, 0).Measure(1, 1).Circuit()
}

func TestStatevectorBell(t *testing.T) {
	sv, err := New().Statevector(bell())
	require.NoError(t, err)

	probs := sv.Probabilities()
	assert.Len(t, probs, 2)
	assert.InDelta(t, 0.5, probs["00"], 1e-12)
	assert.InDelta(t, 0.5, probs["11"], 1e-12)
}

func TestStatevectorLittleEndian(t *testing.T) {
	c := circuit.NewBuilder("x0", 3, 0).X(0).Circuit()
	sv, err := New().Statevector(c)
	require.NoError(t, err)

	assert.Equal(t, map[string]float64{"001": 1}, sv.Probabilities())
	marg := sv.QubitProbabilities()
	assert.InDelta(t, 1, marg[0].Prob1, 1e-12)
	assert.InDelta(t, 1, marg[2].Prob0, 1e-12)
}

func TestGateIdentities(t *testing.T) {
	tests := []struct {
		name  string
		build func(b *circuit.Builder)
		want  string
	}{
		{"HZH is X", func(b *circuit.Builder) { b.H(0).S(0).S(0).H(0) }, "1"},
		{"S then Sdg", func(b *circuit.Builder) { b.H(0).S(0).Sdg(0).H(0) }, "0"},
		{"RX pi", func(b *circuit.Builder) { b.RX(math.Pi, 0) }, "1"},
		{"RY pi", func(b *circuit.Builder) { b.RY(math.Pi, 0) }, "1"},
		{"T eight times", func(b *circuit.Builder) {
			b.H(0)
			for range 8 {
				b.T(0)
			}
			b.H(0)
		}, "0"},
		{"Y flips", func(b *circuit.Builder) { b.Y(0) }, "1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := circuit.NewBuilder(tt.name, 1, 0)
			tt.build(b)
			sv, err := New().Statevector(b.Circuit())
			require.NoError(t, err)
			assert.InDelta(t, 1, sv.Probabilities()[tt.want], 1e-9)
		})
	}
}

func TestParsedGates(t *testing.T) {
	c, err := circuit.Parse(`OPENQASM 2.0;
qreg q[3];
u3(pi,0,pi) q[0];
u2(0,pi) q[1];
h q[1];
x q[1];
ccx q[0], q[1], q[2];
swap q[0], q[1];`)
	require.NoError(t, err)

	sv, err := New().Statevector(c)
	require.NoError(t, err)
	assert.InDelta(t, 1, sv.Probabilities()["111"], 1e-9)
}

func TestStatevectorSkipsMeasurementAndResets(t *testing.T) {
	c := circuit.NewBuilder("reset", 2, 1).
		X(0).X(1).Measure(0, 0).Reset(1).
		Noise(0, "amplitude_damping", 1).
		Circuit()
	sv, err := New().Statevector(c)
	require.NoError(t, err)
	assert.InDelta(t, 1, sv.Probabilities()["01"], 1e-12)
}

func TestRunBell(t *testing.T) {
	counts, err := New(WithSeed(7)).Run(context.Background(), bell(), 2000)
	require.NoError(t, err)

	assert.Equal(t, 2000, counts.Total())
	for key := range counts {
		assert.Contains(t, []string{"00", "11"}, key)
	}
	assert.InDelta(t, 1000, counts["00"], 150)
}

func TestRunDeterministicWithSeed(t *testing.T) {
	a, err := New(WithSeed(42)).Run(context.Background(), bell(), 500)
	require.NoError(t, err)
	b, err := New(WithSeed(42)).Run(context.Background(), bell(), 500)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRunRegisterKeys(t *testing.T) {
	c := circuit.NewWithRegisters("regs",
		[]circuit.Register{{Name: "q", Size: 3}},
		[]circuit.Register{{Name: "a", Size: 1}, {Name: "b", Size: 2}})
	circuit.Wrap(c).X(0).X(2).Measure(0, 0).Measure(1, 1).Measure(2, 2)

	counts, err := New(WithSeed(1)).Run(context.Background(), c, 10)
	require.NoError(t, err)
	assert.Equal(t, Counts{"10 1": 10}, counts)
}

func TestRunMeasureAll(t *testing.T) {
	c := circuit.NewBuilder("ghz", 3, 0).H(0).CX(0, 1).CX(1, 2).MeasureAll().Circuit()
	counts, err := New(WithSeed(3)).Run(context.Background(), c, 400)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"000", "111"}, keys(counts))
}

func TestRunConditional(t *testing.T) {
	c := circuit.NewBuilder("feedforward", 2, 2).
		H(0).Measure(0, 0).
		X(1).If(0, 1, 1).
		Measure(1, 1).
		Circuit()

	counts, err := New(WithSeed(11)).Run(context.Background(), c, 300)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"00", "11"}, keys(counts))
}

func TestRunReset(t *testing.T) {
	c := circuit.NewBuilder("reset", 1, 1).H(0).Reset(0).Measure(0, 0).Circuit()
	counts, err := New(WithSeed(5)).Run(context.Background(), c, 200)
	require.NoError(t, err)
	assert.Equal(t, Counts{"0": 200}, counts)
}

func TestRunAmplitudeDamping(t *testing.T) {
	c := circuit.NewBuilder("decay", 1, 1).X(0).Noise(0, "amplitude_damping", 1).Measure(0, 0).Circuit()
	counts, err := New(WithSeed(5)).Run(context.Background(), c, 50)
	require.NoError(t, err)
	assert.Equal(t, Counts{"0": 50}, counts)
}

func TestRunReadoutError(t *testing.T) {
	m := NewNoiseModel()
	m.Readout = 1
	c := circuit.NewBuilder("flip", 1, 1).X(0).Measure(0, 0).Circuit()

	counts, err := New(WithNoise(m), WithSeed(2)).Run(context.Background(), c, 20)
	require.NoError(t, err)
	assert.Equal(t, Counts{"0": 20}, counts)
}

func TestRunDepolarizingNoise(t *testing.T) {
	noisy, err := New(WithNoise(DepolarizingModel(0.5, 0.5)), WithSeed(9)).Run(context.Background(), bell(), 2000)
	require.NoError(t, err)
	assert.Equal(t, 2000, noisy.Total())
	assert.Greater(t, noisy["01"]+noisy["10"], 0)
}

func TestRunErrors(t *testing.T) {
	ctx := context.Background()

	_, err := New().Run(ctx, bell(), 0)
	assert.Error(t, err)

	_, err = New().Run(ctx, circuit.NewBuilder("bare", 1, 0).H(0).Circuit(), 10)
	assert.ErrorIs(t, err, ErrNoClassicalBits)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = New().Run(cancelled, bell(), 10)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSizeLimits(t *testing.T) {
	ctx := context.Background()
	wide := circuit.New("wide", circuit.MaxQubits+1, 1)

	_, err := New().Statevector(wide)
	assert.ErrorIs(t, err, ErrTooManyQubits)
	_, err = New().Run(ctx, wide, 10)
	assert.ErrorIs(t, err, ErrTooManyQubits)
	_, err = New().DensityMatrix(ctx, wide, 1)
	assert.ErrorIs(t, err, ErrTooManyQubits)

	huge := circuit.New("huge", 64, 1)
	_, err = New().Statevector(huge)
	assert.ErrorIs(t, err, ErrTooManyQubits)

	manyBits := circuit.New("bits", 1, circuit.MaxClbits+1)
	_, err = New().Run(ctx, manyBits, 10)
	assert.ErrorIs(t, err, ErrTooManyQubits)

	sv, err := New().Statevector(circuit.New("edge", circuit.MaxQubits, 0))
	require.NoError(t, err)
	assert.Len(t, sv.Amplitudes, 1<<circuit.MaxQubits)
}

func TestUnsupportedGate(t *testing.T) {
	c := circuit.New("bad", 1, 0)
	c.AddGate("FOO", 0, 0)
	_, err := New().Statevector(c)
	assert.ErrorIs(t, err, ErrUnsupportedGate)
}

func TestDensityMatrixBell(t *testing.T) {
	rho, err := New().DensityMatrix(context.Background(), bell(), 100)
	require.NoError(t, err)

	r, c := rho.Dims()
	require.Equal(t, 4, r)
	require.Equal(t, 4, c)
	assert.InDelta(t, 0.5, real(rho.At(0, 0)), 1e-12)
	assert.InDelta(t, 0.5, real(rho.At(0, 3)), 1e-12)
	assert.InDelta(t, 0.5, real(rho.At(3, 3)), 1e-12)
}

func TestDensityMatrixMixed(t *testing.T) {
	c := circuit.NewBuilder("dephase", 1, 0).H(0).Noise(0, "phase_damping", 1).Circuit()
	rho, err := New(WithSeed(4)).DensityMatrix(context.Background(), c, 400)
	require.NoError(t, err)

	assert.InDelta(t, 0.5, real(rho.At(0, 0)), 0.1)
	assert.InDelta(t, 0, real(rho.At(0, 1)), 1e-12)
}

func TestNoiseModel(t *testing.T) {
	m := DefaultNoiseModel()

	p, ok := m.Depolarizing("cx")
	assert.True(t, ok)
	assert.Equal(t, DefaultP2, p)

	p, ok = m.Depolarizing("u3")
	assert.True(t, ok)
	assert.Equal(t, DefaultP1, p)

	_, ok = m.Depolarizing("measure")
	assert.False(t, ok)
	assert.Equal(t, DefaultPMeas, m.PMeas)

	for _, name := range []string{"h", "x", "rz", "id", "cz", "swap", "crx", "ccx"} {
		_, ok = m.Depolarizing(name)
		assert.False(t, ok, name)
	}
	assert.Equal(t, []string{"cx", "u1", "u2", "u3"}, m.Gates())

	broad := DepolarizingModel(DefaultP1, DefaultP2)
	p, ok = broad.Depolarizing("h")
	assert.True(t, ok)
	assert.Equal(t, DefaultP1, p)
	p, ok = broad.Depolarizing("cz")
	assert.True(t, ok)
	assert.Equal(t, DefaultP2, p)

	var none *NoiseModel
	_, ok = none.Depolarizing("cx")
	assert.False(t, ok)
}

func TestKrausChannelValidation(t *testing.T) {
	_, err := krausChannel("amplitude_damping", 1.5)
	assert.Error(t, err)
	_, err = krausChannel("bit_flip", 0.1)
	assert.Error(t, err)
}

func keys(c Counts) []string {
	out := make([]string, 0, len(c))
	for k := range c {
		out = append(out, k)
	}
	return out
}
