package api

import (
	"encoding/json/v2"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

// envelopeVersion is the wire version of the response envelope. Bump
// only with a coordinated client release.
const envelopeVersion = 1

type successEnvelope struct {
	V       int  `json:"v"`
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

type errorEnvelope struct {
	V       int    `json:"v"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
}

// EnvelopeTransformer wraps every response body in the versioned
// envelope. Success bodies become {"v":1,"success":true,"data":...};
// errors carry either a bare error string or code/message/details.
// The field name "v" is part of the client contract.
func EnvelopeTransformer(ctx huma.Context, status string, v any) (any, error) {
	if apiErr, ok := v.(*APIError); ok {
		if apiErr.Code == "" {
			return &errorEnvelope{
				V:     envelopeVersion,
				Error: apiErr.Message,
			}, nil
		}
		return &errorEnvelope{
			V:       envelopeVersion,
			Code:    apiErr.Code,
			Message: apiErr.Message,
			Details: apiErr.Details,
		}, nil
	}

	if strings.HasPrefix(status, "4") || strings.HasPrefix(status, "5") {
		if err, ok := v.(error); ok {
			return &errorEnvelope{
				V:     envelopeVersion,
				Error: err.Error(),
			}, nil
		}
		return &errorEnvelope{V: envelopeVersion}, nil
	}

	return &successEnvelope{
		V:       envelopeVersion,
		Success: true,
		Data:    v,
	}, nil
}

// writeSuccess writes an enveloped JSON response from a chi handler.
// Huma routes get the envelope via EnvelopeTransformer; the multipart
// and streaming endpoints bypass huma and use this instead.
func writeSuccess(w http.ResponseWriter, status int, data any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	envelope := successEnvelope{V: envelopeVersion, Success: true, Data: data}
	if err := json.MarshalWrite(w, envelope); err != nil {
		logger.Error("encode response", "error", err)
	}
}

// writeError writes an enveloped error response from a chi handler.
func writeError(w http.ResponseWriter, status int, message string, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	envelope := errorEnvelope{V: envelopeVersion, Error: message}
	if err := json.MarshalWrite(w, envelope); err != nil {
		logger.Error("encode error response", "error", err)
	}
}
