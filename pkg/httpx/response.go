package httpx

import (
	"encoding/json"
	"net/http"
)

// Response is the uniform body shape every endpoint speaks. Handlers with
// payloads embed it in their own response structs so the success flag and
// message always sit at the top level.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
// It automatically sets the Content-Type header and Cache-Control headers.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes a failure envelope with the given status code.
func WriteError(w http.ResponseWriter, code int, msg string) {
	WriteJSON(w, code, Response{Success: false, Message: msg})
}

// WriteSuccess writes a bare success envelope for operations with no payload.
func WriteSuccess(w http.ResponseWriter, code int, msg string) {
	WriteJSON(w, code, Response{Success: true, Message: msg})
}

// NoCache sets the Cache-Control and Pragma headers to prevent caching.
// This is commonly required for sensitive responses like tokens.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}
