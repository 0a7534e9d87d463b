// Package jsonapi implements the response envelope of the dashboard
// API. Every endpoint answers with a Document: either data plus optional
// metadata, or a list of errors. The two are mutually exclusive.
package jsonapi

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// ContentType is the media type of every dashboard API response.
const ContentType = "application/json; charset=utf-8"

// Meta holds free-form response metadata.
type Meta map[string]any

// Document is the top-level response envelope.
type Document struct {
	Data   any     `json:"data,omitempty"`
	Errors []Error `json:"errors,omitempty"`
	Meta   Meta    `json:"meta,omitempty"`
}

// Error is one API error. Status is the HTTP status as a string, Code a
// short machine-readable tag, Detail the human-readable message.
type Error struct {
	Status string `json:"status"`
	Code   string `json:"code,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// StatusCode returns the numeric HTTP status of the error.
func (e Error) StatusCode() int {
	switch e.Status {
	case "400":
		return http.StatusBadRequest
	case "401":
		return http.StatusUnauthorized
	case "403":
		return http.StatusForbidden
	case "404":
		return http.StatusNotFound
	case "409":
		return http.StatusConflict
	case "422":
		return http.StatusUnprocessableEntity
	case "502":
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// NewError builds an Error from a numeric status.
func NewError(status int, code, detail string) Error {
	return Error{
		Status: strconv.Itoa(status),
		Code:   code,
		Detail: detail,
	}
}

// WriteData writes a data document.
func WriteData(w http.ResponseWriter, status int, data any) {
	writeDocument(w, status, Document{Data: data})
}

// WriteMeta writes a metadata-only document.
func WriteMeta(w http.ResponseWriter, status int, meta Meta) {
	writeDocument(w, status, Document{Meta: meta})
}

// WriteError writes an error document. The HTTP status comes from the
// first error.
func WriteError(w http.ResponseWriter, errs ...Error) {
	if len(errs) == 0 {
		errs = []Error{NewError(http.StatusInternalServerError, "internal", "")}
	}
	writeDocument(w, errs[0].StatusCode(), Document{Errors: errs})
}

// WriteNoContent writes a 204 with an empty body.
func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func writeDocument(w http.ResponseWriter, status int, doc Document) {
	w.Header().Set("Content-Type", ContentType)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(doc)
}
