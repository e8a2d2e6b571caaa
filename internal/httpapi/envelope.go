// Package httpapi exposes the dashboard REST API: the auth endpoints, the
// balance report endpoints, and the uniform response envelope.
package httpapi

import (
	"encoding/json"
	"log"
	"net/http"
)

// Envelope is the uniform response wrapper returned by every endpoint.
// Status false with HTTP 200 signals a business-logic failure whose Message
// entries are shown to the user; non-2xx responses are transport failures.
type Envelope struct {
	Status         bool     `json:"Status"`
	Data           any      `json:"Data"`
	Message        []string `json:"Message"`
	HttpStatusCode int      `json:"HttpStatusCode"`
	RequestUrl     string   `json:"RequestUrl"`
}

func writeEnvelope(w http.ResponseWriter, r *http.Request, status bool, httpStatus int, data any, messages ...string) {
	if messages == nil {
		messages = []string{}
	}
	env := Envelope{
		Status:         status,
		Data:           data,
		Message:        messages,
		HttpStatusCode: httpStatus,
		RequestUrl:     r.URL.RequestURI(),
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(httpStatus)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		log.Printf("httpapi: encode envelope for %s: %v", r.URL.Path, err)
	}
}

// writeSuccess writes a Status true envelope with HTTP 200.
func writeSuccess(w http.ResponseWriter, r *http.Request, data any) {
	writeEnvelope(w, r, true, http.StatusOK, data)
}

// writeBusinessFailure writes a Status false envelope with HTTP 200.
// Callers branch on Status, not the HTTP code, so the messages carry the failure.
func writeBusinessFailure(w http.ResponseWriter, r *http.Request, messages ...string) {
	writeEnvelope(w, r, false, http.StatusOK, nil, messages...)
}

// writeTransportError writes a Status false envelope with the given non-2xx code.
func writeTransportError(w http.ResponseWriter, r *http.Request, httpStatus int, messages ...string) {
	writeEnvelope(w, r, false, httpStatus, nil, messages...)
}
