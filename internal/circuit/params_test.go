package circuit

import (
	"math"
	"testing"
)

func TestParseParam(t *testing.T) {
	tests := []struct {
		input string
		want  float64
		ok    bool
	}{
		// Plain numbers
		{"1.5707", 1.5707, true},
		{"-0.5", -0.5, true},
		{"0", 0, true},
		{"3.14e-2", 0.0314, true},

		// Pi constant
		{"pi", math.Pi, true},
		{"PI", math.Pi, true},
		{"π", math.Pi, true},

		// Pi fractions and coefficients
		{"pi/2", math.Pi / 2, true},
		{"pi/8", math.Pi / 8, true},
		{"2pi", 2 * math.Pi, true},
		{"3*pi/4", 3 * math.Pi / 4, true},
		{"2*pi/3", 2 * math.Pi / 3, true},

		// Negative
		{"-pi", -math.Pi, true},
		{"-3*pi/4", -3 * math.Pi / 4, true},

		// Whitespace
		{" pi / 2 ", math.Pi / 2, true},
		{" 3 * pi / 4 ", 3 * math.Pi / 4, true},

		// Invalid
		{"", 0, false},
		{"abc", 0, false},
		{"pi/0", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseParam(tt.input)
		if ok != tt.ok {
			t.Errorf("ParseParam(%q): ok=%v, want ok=%v", tt.input, ok, tt.ok)
			continue
		}
		if ok && math.Abs(got-tt.want) > 1e-10 {
			t.Errorf("ParseParam(%q) = %g, want %g", tt.input, got, tt.want)
		}
	}
}

func TestFormatParam(t *testing.T) {
	tests := []struct {
		input float64
		want  string
	}{
		{math.Pi, "pi"},
		{math.Pi / 2, "pi/2"},
		{math.Pi / 4, "pi/4"},
		{3 * math.Pi / 4, "3*pi/4"},
		{-math.Pi / 2, "-pi/2"},
		{2 * math.Pi, "2*pi"},
		{1.5, "1.5"},
		{0, "0"},
		{0.01, "0.01"},
	}

	for _, tt := range tests {
		if got := FormatParam(tt.input); got != tt.want {
			t.Errorf("FormatParam(%g) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestParseParamList(t *testing.T) {
	if params, err := parseParamList("pi/2,pi/4"); err != nil || len(params) != 2 {
		t.Errorf("parseParamList('pi/2,pi/4') should return 2 params, got %v, %v", params, err)
	}
	if params, err := parseParamList("pi/2,garbage"); err == nil {
		t.Errorf("parseParamList('pi/2,garbage') should fail, got %v", params)
	}
	if params, err := parseParamList(""); err != nil || params != nil {
		t.Errorf("parseParamList('') should return nil, got %v, %v", params, err)
	}
}
