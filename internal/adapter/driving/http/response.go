package httphandler

import (
	"encoding/json"
	"net/http"

	"github.com/ericfisherdev/logingate/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// RecordResponse is the JSON representation of a login. Nullable fields are
// always present and encode as null when unset.
type RecordResponse struct {
	Origin        string  `json:"origin"`
	FormSubmitURL *string `json:"formSubmitURL"`
	Realm         *string `json:"realm"`
	Username      string  `json:"username"`
	Password      string  `json:"password"`
	UsernameField *string `json:"usernameField"`
	PasswordField *string `json:"passwordField"`
}

// StoreRequest is the JSON body for the store endpoint.
type StoreRequest struct {
	Origin        string  `json:"origin"`
	FormSubmitURL *string `json:"formSubmitURL"`
	Realm         *string `json:"realm"`
	Username      string  `json:"username"`
	Password      string  `json:"password"`
	UsernameField *string `json:"usernameField"`
	PasswordField *string `json:"passwordField"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// toRecordResponse converts a public Record to its JSON representation.
func toRecordResponse(rec model.Record) RecordResponse {
	return RecordResponse(rec)
}

func (req StoreRequest) toRecord() model.Record {
	return model.Record(req)
}
