// Package jsonresp writes the {success, data, error, meta} envelope used by
// the /api routes.
package jsonresp

import (
	"encoding/json"
	"net/http"

	"github.com/metacode22/study-somoim/internal/domain/models"
)

// Error codes.
const (
	CodeBadRequest   = "BAD_REQUEST"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeNotFound     = "NOT_FOUND"
	CodeRateLimited  = "RATE_LIMITED"
	CodeUpstream     = "UPSTREAM_ERROR"
	CodeInternal     = "INTERNAL_ERROR"
)

// Envelope is the response wrapper.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   *Error `json:"error,omitempty"`
	Meta    *Meta  `json:"meta,omitempty"`
}

// Error is the error half of an envelope.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Meta carries pagination for list responses.
type Meta struct {
	Total       int  `json:"total"`
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	TotalPages  int  `json:"totalPages"`
	HasNextPage bool `json:"hasNextPage"`
}

// MetaFrom converts backend page metadata.
func MetaFrom(m models.PageMeta) *Meta {
	return &Meta{Total: m.Total, Page: m.Page, Limit: m.Limit, TotalPages: m.TotalPages, HasNextPage: m.HasNextPage}
}

func write(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

// OK writes a 200 envelope around data.
func OK(w http.ResponseWriter, data any) {
	write(w, http.StatusOK, Envelope{Success: true, Data: data})
}

// List writes a 200 envelope with pagination metadata.
func List(w http.ResponseWriter, data any, meta *Meta) {
	write(w, http.StatusOK, Envelope{Success: true, Data: data, Meta: meta})
}

// Fail writes an error envelope.
func Fail(w http.ResponseWriter, status int, code, message string) {
	write(w, status, Envelope{Success: false, Error: &Error{Code: code, Message: message}})
}

// BadRequest writes a 400 envelope.
func BadRequest(w http.ResponseWriter, message string) {
	Fail(w, http.StatusBadRequest, CodeBadRequest, message)
}

// NotFound writes a 404 envelope.
func NotFound(w http.ResponseWriter, message string) {
	Fail(w, http.StatusNotFound, CodeNotFound, message)
}

// Upstream writes a 502 envelope for backend failures.
func Upstream(w http.ResponseWriter, message string) {
	Fail(w, http.StatusBadGateway, CodeUpstream, message)
}
