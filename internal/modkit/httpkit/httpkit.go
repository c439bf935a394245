// Package httpkit is what service modules import for routing and responses,
// so they never reach into the platform http packages directly
package httpkit

import (
	"net/http"

	phttp "punchclock/internal/platform/net/http"
)

type (
	// Envelope is the JSON body of every response
	Envelope = phttp.Envelope
	// Response is what return-style handlers produce
	Response = phttp.Response
	// Handler is the platform handler type
	Handler = phttp.Handler
	// Router is the routing surface modules mount against
	Router = phttp.Router
)

// Created returns a 201 response
func Created(data any) Response { return phttp.Created(data) }

// File returns a 200 attachment response
func File(contentType, filename string, data []byte) Response {
	return phttp.File(contentType, filename, data)
}

// Error maps err to its status and envelope
func Error(err error) Response { return phttp.Error(err) }

// Handle adapts a Response-returning function
func Handle(fn func(*http.Request) Response) Handler { return phttp.Handle(fn) }

// Call adapts a value-returning function; a returned Response passes through
// untouched and any other value is wrapped in a 200 envelope
func Call(fn func(*http.Request) (any, error)) Handler {
	return phttp.Handle(func(r *http.Request) Response {
		out, err := fn(r)
		if err != nil {
			return phttp.Error(err)
		}
		if resp, ok := out.(Response); ok {
			return resp
		}
		return phttp.OK(out)
	})
}

// Get mounts fn under GET path
func Get(r Router, path string, fn func(*http.Request) (any, error)) { r.Get(path, Call(fn)) }
