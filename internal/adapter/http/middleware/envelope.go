package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/iho/goppob/internal/adapter/http/dto"
)

func writeEnvelope(w http.ResponseWriter, httpStatus, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	json.NewEncoder(w).Encode(dto.Envelope{Status: status, Message: message})
}
