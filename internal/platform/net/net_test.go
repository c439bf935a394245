package net_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	perr "punchclock/internal/platform/errors"
	pnet "punchclock/internal/platform/net"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
)

func TestClientID(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "", pnet.ClientID(ctx))
	assert.Equal(t, ctx, pnet.WithClient(ctx, ""), "empty client leaves ctx alone")
	assert.Equal(t, "gate-2", pnet.ClientID(pnet.WithClient(ctx, "gate-2")))
}

func TestRequestID(t *testing.T) {
	ctx := context.WithValue(context.Background(), chimw.RequestIDKey, "req-9")
	assert.Equal(t, "req-9", pnet.RequestID(ctx))
	assert.Equal(t, "", pnet.RequestID(context.Background()))
}

func TestSuccess(t *testing.T) {
	env := pnet.Success(http.StatusCreated, map[string]int{"inserted": 2}, "r1")
	assert.Equal(t, pnet.Envelope{
		StatusCode: 201,
		Status:     "Created",
		RequestID:  "r1",
		Data:       map[string]int{"inserted": 2},
	}, env)
}

func TestFailure(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		want   pnet.Envelope
	}{
		{
			name:   "nil",
			status: 200,
			want:   pnet.Envelope{StatusCode: 200, Status: "OK", RequestID: "r"},
		},
		{
			name:   "validation names field",
			err:    perr.WithField(perr.Newf(perr.ErrorCodeValidation, "verifycode out of range"), "verifycode"),
			status: 400,
			want: pnet.Envelope{
				StatusCode: 400, Status: "Bad Request",
				Code: perr.ErrorCodeValidation, Error: "verifycode out of range", Field: "verifycode", RequestID: "r",
			},
		},
		{
			name:   "foreign error",
			err:    errors.New("socket closed"),
			status: 500,
			want: pnet.Envelope{
				StatusCode: 500, Status: "Internal Server Error",
				Error: "socket closed", RequestID: "r",
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, env := pnet.Failure(tc.err, "r")
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.want, env)
		})
	}
}
