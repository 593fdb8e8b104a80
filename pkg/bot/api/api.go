/*
2019 © Postgres.ai
*/

// Package api provides helpers to read and write JSON over HTTP.
package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/pkg/errors"
	"gitlab.com/postgres-ai/database-lab/v2/pkg/log"

	"gitlab.com/postgres-ai/askdb/pkg/models"
)

// ErrEmptyBody means that a request has no body.
var ErrEmptyBody = errors.New("request body cannot be empty")

// ReadJSON reads a JSON request body of a limited size.
func ReadJSON(r *http.Request, limit int64, v interface{}) error {
	if r.Body == nil || r.Body == http.NoBody {
		return ErrEmptyBody
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, limit+1))
	if err != nil {
		return errors.Wrap(err, "failed to read request body")
	}

	if int64(len(data)) > limit {
		return errors.Errorf("request body exceeds %d bytes", limit)
	}

	if len(data) == 0 {
		return ErrEmptyBody
	}

	if err := json.Unmarshal(data, v); err != nil {
		return errors.Wrap(err, "failed to parse request body")
	}

	return nil
}

// WriteJSON responds with a JSON document.
func WriteJSON(w http.ResponseWriter, httpCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(httpCode)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Err("failed to write response:", err)
	}
}

// SendMessage responds with a successful chat envelope.
func SendMessage(w http.ResponseWriter, message *models.ChatResponse) {
	WriteJSON(w, http.StatusOK, models.ChatEnvelope{Success: true, Message: message})
}

// SendError responds with a failed chat envelope.
func SendError(w http.ResponseWriter, r *http.Request, httpCode int, message string) {
	log.Err("Request failed:", r.Method, r.URL.Path, httpCode, message)

	WriteJSON(w, httpCode, models.ChatEnvelope{Success: false, Error: message})
}
