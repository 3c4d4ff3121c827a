package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	contentTypeJSON    = "application/json"
	contentTypeMsgpack = "application/msgpack"
	maxBodyBytes       = 1 << 20
)

// errorResponse is the body of every failed request.
type errorResponse struct {
	Detail string `json:"detail"`
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeResponse(w, r, http.StatusOK, map[string]any{
		"status":  "healthy",
		"version": "1.0.0",
		"service": "qviz",
	})
}

// handleSystemStatus handles system status requests
func (s *Server) handleSystemStatus(w http.ResponseWriter, r *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	cpuPercent := 0.0
	if pct, err := cpu.Percent(100*time.Millisecond, false); err != nil {
		s.log.Warn().Err(err).Msg("Failed to get CPU percentage")
	} else if len(pct) > 0 {
		cpuPercent = pct[0]
	}

	ramPercent := 0.0
	if vm, err := mem.VirtualMemory(); err != nil {
		s.log.Warn().Err(err).Msg("Failed to get memory statistics")
	} else {
		ramPercent = vm.UsedPercent
	}

	s.writeResponse(w, r, http.StatusOK, map[string]any{
		"status":         "running",
		"uptime_seconds": int(time.Since(s.started).Seconds()),
		"cpu_percent":    cpuPercent,
		"ram_percent":    ramPercent,
		"memory": map[string]any{
			"alloc_mb":       m.Alloc / 1024 / 1024,
			"total_alloc_mb": m.TotalAlloc / 1024 / 1024,
			"sys_mb":         m.Sys / 1024 / 1024,
			"num_gc":         m.NumGC,
		},
		"goroutines": runtime.NumGoroutine(),
	})
}

// wantsMsgpack reports whether the client asked for MessagePack.
func wantsMsgpack(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), contentTypeMsgpack)
}

// writeResponse writes data as JSON, or MessagePack when the client accepts
// it.
func (s *Server) writeResponse(w http.ResponseWriter, r *http.Request, status int, data any) {
	if r != nil && wantsMsgpack(r) {
		w.Header().Set("Content-Type", contentTypeMsgpack)
		w.WriteHeader(status)
		enc := msgpack.NewEncoder(w)
		enc.SetCustomStructTag("json")
		if err := enc.Encode(data); err != nil {
			s.log.Error().Err(err).Msg("Failed to encode MessagePack response")
		}
		return
	}

	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	s.writeResponse(w, r, status, errorResponse{Detail: message})
}

// decodeRequest reads a JSON or MessagePack body into dst.
func decodeRequest(r *http.Request, dst any) error {
	body := io.LimitReader(r.Body, maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == contentTypeMsgpack {
		dec := msgpack.NewDecoder(body)
		dec.SetCustomStructTag("json")
		if err := dec.Decode(dst); err != nil {
			return fmt.Errorf("invalid request body: %w", err)
		}
		return nil
	}

	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}
