// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for the campus directory API.
// Handlers are grouped by concern (public, admin, auth) and receive their
// dependencies through the handler struct.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"campusdir/internal/directory"
)

// maxBodyBytes caps request bodies. Directory payloads are small.
const maxBodyBytes = 64 << 10

// respondJSON writes v as a JSON response with the given status.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

// errorBody is the uniform error response shape.
type errorBody struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

// respondError maps a directory error to its HTTP status and writes the
// JSON error body. Unknown errors become opaque 500s.
func respondError(w http.ResponseWriter, err error) {
	var ve *directory.ValidationError
	var ce *directory.ConflictError
	var nfe *directory.NotFoundError
	var se *directory.StoreError

	switch {
	case errors.As(err, &ve):
		respondJSON(w, http.StatusBadRequest, errorBody{Error: ve.Message, Reason: string(ve.Reason)})
	case errors.As(err, &ce):
		respondJSON(w, http.StatusConflict, errorBody{Error: ce.Message, Reason: string(ce.Reason)})
	case errors.As(err, &nfe):
		respondJSON(w, http.StatusNotFound, errorBody{Error: nfe.Error()})
	case errors.Is(err, directory.ErrInvalidTransition):
		respondJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.As(err, &se):
		slog.Error("store operation failed", "op", se.Op, "error", se.Err)
		respondJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	default:
		slog.Error("request failed", "error", err)
		respondJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

// badRequest writes a 400 with a plain message.
func badRequest(w http.ResponseWriter, msg string) {
	respondJSON(w, http.StatusBadRequest, errorBody{Error: msg})
}

// decodeJSON reads a size-limited JSON body into dst, rejecting unknown
// fields. On failure it writes the 400 itself and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		badRequest(w, "invalid request body")
		return false
	}
	return true
}
