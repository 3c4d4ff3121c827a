package server

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"qviz/internal/bloch"
	"qviz/internal/circuit"
	"qviz/internal/demo"
	"qviz/internal/visualize"
)

type visualizeRequest struct {
	Code        string `json:"code"`
	ReverseBits bool   `json:"reverse_bits"`
	Noisy       bool   `json:"noisy"`
}

type visualizeResponse struct {
	CircuitImage  string             `json:"circuit_image"`
	StateImage    string             `json:"state_image"`
	Probabilities map[string]float64 `json:"probabilities"`
	BlochVectors  []bloch.Vector     `json:"bloch_vectors"`
	QubitLabels   []string           `json:"qubit_labels"`
}

type blochRequest struct {
	Statevector   []Complex   `json:"statevector"`
	DensityMatrix [][]Complex `json:"density_matrix"`
	Code          string      `json:"code"`
	ReverseBits   bool        `json:"reverse_bits"`
	Noisy         bool        `json:"noisy"`
}

type blochResponse struct {
	BlochVectors []bloch.Vector `json:"bloch_vectors"`
	QubitLabels  []string       `json:"qubit_labels"`
}

type demoResponse struct {
	Name    string          `json:"name"`
	Slug    string          `json:"slug"`
	QASM    string          `json:"qasm"`
	Metrics circuit.Metrics `json:"metrics"`
}

// handleVisualize handles POST /api/visualize
func (s *Server) handleVisualize(w http.ResponseWriter, r *http.Request) {
	var req visualizeRequest
	if err := decodeRequest(r, &req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := s.visualize(r.Context(), req)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	s.writeResponse(w, r, http.StatusOK, resp)
}

func (s *Server) visualize(ctx context.Context, req visualizeRequest) (*visualizeResponse, error) {
	res, err := s.visualizer.Visualize(ctx, req.Code, visualize.Options{
		Images:      true,
		ReverseBits: req.ReverseBits,
		Noisy:       req.Noisy,
	})
	if err != nil {
		return nil, err
	}
	return &visualizeResponse{
		CircuitImage:  base64.StdEncoding.EncodeToString(res.CircuitImage),
		StateImage:    base64.StdEncoding.EncodeToString(res.StateImage),
		Probabilities: res.Probabilities,
		BlochVectors:  res.Bloch,
		QubitLabels:   res.Labels,
	}, nil
}

// handleBloch handles POST /api/bloch
func (s *Server) handleBloch(w http.ResponseWriter, r *http.Request) {
	var req blochRequest
	if err := decodeRequest(r, &req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	vectors, labels, err := s.bloch(r.Context(), req)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	s.writeResponse(w, r, http.StatusOK, blochResponse{BlochVectors: vectors, QubitLabels: labels})
}

func (s *Server) bloch(ctx context.Context, req blochRequest) ([]bloch.Vector, []string, error) {
	given := 0
	for _, set := range []bool{req.Statevector != nil, req.DensityMatrix != nil, req.Code != ""} {
		if set {
			given++
		}
	}
	if given != 1 {
		return nil, nil, errors.New("provide exactly one of statevector, density_matrix or code")
	}

	switch {
	case req.Statevector != nil:
		return visualize.Extract(bloch.FromStatevector(toComplexSlice(req.Statevector)), req.ReverseBits)
	case req.DensityMatrix != nil:
		return visualize.Extract(bloch.FromRows(toComplexRows(req.DensityMatrix)), req.ReverseBits)
	}

	res, err := s.visualizer.Visualize(ctx, req.Code, visualize.Options{ReverseBits: req.ReverseBits, Noisy: req.Noisy})
	if err != nil {
		return nil, nil, err
	}
	return res.Bloch, res.Labels, nil
}

func newDemoResponse(d demo.Circuit) demoResponse {
	return demoResponse{
		Name:    d.Name,
		Slug:    d.Slug(),
		QASM:    d.Circuit.ToQASM(),
		Metrics: d.Circuit.Metrics(),
	}
}

// handleListDemos handles GET /api/demos
func (s *Server) handleListDemos(w http.ResponseWriter, r *http.Request) {
	suite := demo.Suite()
	out := make([]demoResponse, len(suite))
	for i, d := range suite {
		out[i] = newDemoResponse(d)
	}
	s.writeResponse(w, r, http.StatusOK, out)
}

// handleGetDemo handles GET /api/demos/{name}
func (s *Server) handleGetDemo(w http.ResponseWriter, r *http.Request) {
	d, ok := demo.Lookup(chi.URLParam(r, "name"))
	if !ok {
		s.writeError(w, r, http.StatusNotFound, "unknown demo circuit")
		return
	}
	s.writeResponse(w, r, http.StatusOK, newDemoResponse(d))
}

// handleAnalyzeDemo handles POST /api/demos/{name}/analyze
func (s *Server) handleAnalyzeDemo(w http.ResponseWriter, r *http.Request) {
	d, ok := demo.Lookup(chi.URLParam(r, "name"))
	if !ok {
		s.writeError(w, r, http.StatusNotFound, "unknown demo circuit")
		return
	}

	m, err := s.analyzer.Analyze(r.Context(), d.Circuit, s.cfg.Shots)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	s.writeResponse(w, r, http.StatusOK, m)
}
