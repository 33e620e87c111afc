package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// statusResponse is the wire shape shared by checkout and error responses.
type statusResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, r *http.Request, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zctx.From(r.Context()).Error("Failed to encode response", zap.Error(err))
	}
}

func respondStatus(w http.ResponseWriter, r *http.Request, code int, ok bool, message string) {
	respondJSON(w, r, code, statusResponse{Status: ok, Message: message})
}

func respondError(w http.ResponseWriter, r *http.Request, code int, message string) {
	respondStatus(w, r, code, false, message)
}

// respondInternal logs the cause and returns a generic message so
// infrastructure details never leak to clients.
func respondInternal(w http.ResponseWriter, r *http.Request, err error) {
	zctx.From(r.Context()).Error("Internal error", zap.Error(err))
	respondError(w, r, http.StatusInternalServerError, "Internal server error")
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
