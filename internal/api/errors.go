// SPDX-License-Identifier: MIT

package api

import (
	"encoding/json"
	"net/http"
)

// Error codes returned in JSON bodies.
const (
	codeCatalogUnavailable = "catalog_unavailable"
	codeInternal           = "internal_error"
)

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErrorCode writes {"error": code}
func writeErrorCode(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
