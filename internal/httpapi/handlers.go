// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ScanQuery Contributors

package httpapi

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/samber/oops"

	"github.com/scanquery/scanquery/internal/kvengine"
	"github.com/scanquery/scanquery/internal/predicate"
	"github.com/scanquery/scanquery/pkg/errutil"
)

// scanRequestDTO is the wire shape of POST /v1/scan (spec.md §6.4).
// Binary key fields travel base64-encoded, since JSON strings must be
// valid UTF-8 and store keys are arbitrary bytes.
type scanRequestDTO struct {
	Query    json.RawMessage `json:"query"`
	StartKey string          `json:"start_key,omitempty"`
	EndKey   string          `json:"end_key,omitempty"`
	MaxCount int             `json:"max_count,omitempty"`
}

type scanResponseDTO struct {
	Values  []string `json:"values"`
	More    bool     `json:"more"`
	LastKey string   `json:"last_key,omitempty"`
}

type checkQueryRequestDTO struct {
	Query json.RawMessage `json:"query"`
}

type checkQueryResponseDTO struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// handleScan compiles the request's predicate and runs a bounded scan
// against the server's instance, returning one page of results.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req scanRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("malformed request body: %w", err))
		return
	}

	var pred predicate.Predicate
	if len(req.Query) > 0 {
		compiled, err := predicate.Compile(req.Query)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		pred = compiled
	}

	startKey, err := decodeKey(req.StartKey)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid start_key: %w", err))
		return
	}
	endKey, err := decodeKey(req.EndKey)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid end_key: %w", err))
		return
	}

	maxCount := req.MaxCount
	if maxCount <= 0 {
		maxCount = s.defaultMaxCount
	}

	started := time.Now()
	resp, err := s.instance.Scan(r.Context(), kvengine.ScanRequest{
		Predicate: pred,
		StartKey:  startKey,
		EndKey:    endKey,
		MaxCount:  maxCount,
	})
	duration := time.Since(started)

	if err != nil {
		if s.metrics != nil {
			s.metrics.ObserveScan("error", duration, 0, 0, false)
		}
		errutil.LogError(slog.Default(), "scan failed", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	if s.metrics != nil {
		s.metrics.ObserveScan("ok", duration, resp.RecordsVisited, resp.RecordsMatched, resp.More)
	}

	dto := scanResponseDTO{
		Values: make([]string, len(resp.Values)),
		More:   resp.More,
	}
	for i, v := range resp.Values {
		dto.Values[i] = base64.StdEncoding.EncodeToString(v)
	}
	if len(resp.LastKey) > 0 {
		dto.LastKey = base64.StdEncoding.EncodeToString(resp.LastKey)
	}

	if err := writeJSON(w, http.StatusOK, dto); err != nil {
		slog.Error("failed to write scan response", "error", err)
	}
}

// handleCheckQuery reports whether a predicate description compiles,
// without running a scan (spec.md §6.1's check_query, exposed over HTTP).
func (s *Server) handleCheckQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req checkQueryRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("malformed request body: %w", err))
		return
	}

	dto := checkQueryResponseDTO{Valid: true}
	if err := predicate.CheckQuery(req.Query); err != nil {
		dto.Valid = false
		dto.Error = err.Error()
	}

	if err := writeJSON(w, http.StatusOK, dto); err != nil {
		slog.Error("failed to write check-query response", "error", err)
	}
}

func decodeKey(encoded string) ([]byte, error) {
	if encoded == "" {
		return nil, nil
	}
	return base64.StdEncoding.DecodeString(encoded)
}

type errorResponseDTO struct {
	Code  string `json:"code,omitempty"`
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, statusCode int, err error) {
	dto := errorResponseDTO{Error: err.Error()}
	if oerr, ok := oops.AsOops(err); ok {
		dto.Code = oerr.Code()
	}
	if jsonErr := writeJSON(w, statusCode, dto); jsonErr != nil {
		slog.Error("failed to write error response", "error", jsonErr)
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON response: %w", err)
	}
	return nil
}
