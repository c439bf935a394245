// Package http writes the API's JSON envelope and adapts chi to the platform router
package http

import (
	"encoding/json"
	"mime"
	stdhttp "net/http"
	"strconv"

	pnet "punchclock/internal/platform/net"
)

// Envelope is the standard response body for all endpoints
type Envelope = pnet.Envelope

// JSON writes v as application/json with the given status
func JSON(w stdhttp.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Response is what return-style handlers produce. An error Body becomes an error envelope
type Response struct {
	Status int
	Body   any
	Header stdhttp.Header
}

// Blob is a Body written as raw bytes instead of a JSON envelope
type Blob struct {
	ContentType string
	// Filename sets an attachment Content-Disposition when not empty
	Filename string
	Data     []byte
}

// Handle adapts a Response-returning handler to net/http
func Handle(h func(r *stdhttp.Request) Response) stdhttp.HandlerFunc {
	return func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		h(r).write(w, r)
	}
}

func (resp Response) write(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	for k, vv := range resp.Header {
		for _, v := range vv {
			w.Header().Add(k, v)
		}
	}
	status := resp.Status
	if status == 0 {
		status = stdhttp.StatusOK
	}

	switch body := resp.Body.(type) {
	case error:
		code, env := pnet.Failure(body, pnet.RequestID(r.Context()))
		JSON(w, code, env)
	case Blob:
		ct := body.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		w.Header().Set("Content-Type", ct)
		if body.Filename != "" {
			w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": body.Filename}))
		}
		w.Header().Set("Content-Length", strconv.Itoa(len(body.Data)))
		w.WriteHeader(status)
		_, _ = w.Write(body.Data)
	default:
		JSON(w, status, pnet.Success(status, body, pnet.RequestID(r.Context())))
	}
}

// OK returns a 200 response
func OK(data any) Response { return Response{Status: stdhttp.StatusOK, Body: data} }

// Created returns a 201 response
func Created(data any) Response { return Response{Status: stdhttp.StatusCreated, Body: data} }

// File returns a 200 response carrying raw bytes
func File(contentType, filename string, data []byte) Response {
	return Response{Status: stdhttp.StatusOK, Body: Blob{ContentType: contentType, Filename: filename, Data: data}}
}

// Error returns a response that maps the error to status and envelope
func Error(err error) Response { return Response{Body: err} }
