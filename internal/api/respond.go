package api

import (
	"encoding/json"
	stderrors "errors"
	"log"
	"net/http"

	"github.com/oleandergames/tradecraft/internal/platform/errors"
	"github.com/oleandergames/tradecraft/internal/platform/errors/i18n"
)

type successEnvelope struct {
	Status string `json:"status"`
	Data   any    `json:"data,omitempty"`
}

type errorEnvelope struct {
	Status string    `json:"status"`
	Error  errorBody `json:"error"`
}

type errorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

func respondSuccess(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(successEnvelope{Status: "success", Data: data}); err != nil {
		log.Printf("encode response: %v", err)
	}
}

// respondError renders the envelope for a failed request. The message is
// localized from the error code and metadata; the internal message never
// leaves the server.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.CodeOf(err)

	var metadata map[string]string
	var domainErr *errors.Error
	if stderrors.As(err, &domainErr) {
		metadata = domainErr.Metadata
	}

	status := code.HTTPStatus()
	if status >= http.StatusInternalServerError {
		log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
	}

	catalog := i18n.GetCatalog(r.Header.Get("Accept-Language"))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	envelope := errorEnvelope{
		Status: "error",
		Error: errorBody{
			Code:      string(code),
			Message:   catalog.Format(string(code), metadata),
			Retryable: code.Retryable(),
		},
	}
	if err := json.NewEncoder(w).Encode(envelope); err != nil {
		log.Printf("encode error response: %v", err)
	}
}

func invalidRequest(reason string) *errors.Error {
	return errors.WithMetadata(errors.CodeInvalidRequest, "invalid request: "+reason, map[string]string{
		"reason": reason,
	})
}

func decodeBody(r *http.Request, dst any) error {
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return invalidRequest("malformed JSON body")
	}
	return nil
}
