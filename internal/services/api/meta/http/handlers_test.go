package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	phttp "punchclock/internal/platform/net/http"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func get(t *testing.T, d Deps, path string, out any) int {
	t.Helper()
	m := chi.NewRouter()
	Register(phttp.AdaptChi(m), d)
	rec := httptest.NewRecorder()
	m.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	env := struct {
		Data any `json:"data"`
	}{Data: out}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec.Code
}

func TestPing(t *testing.T) {
	var out PingResponse
	require.Equal(t, http.StatusOK, get(t, Deps{}, "/ping", &out))
	assert.Equal(t, "Hello from server!", out.Message)
}

func TestReady(t *testing.T) {
	cases := []struct {
		name   string
		deps   Deps
		status string
	}{
		{"all ok", Deps{PG: pinger{}, CH: pinger{}}, "ok"},
		{"ch skipped", Deps{PG: pinger{}}, "degraded"},
		{"pg down", Deps{PG: pinger{err: errors.New("refused")}, CH: pinger{}}, "fail"},
		{"not a pinger", Deps{PG: struct{}{}, CH: pinger{}}, "degraded"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var out ReadyResponse
			require.Equal(t, http.StatusOK, get(t, tc.deps, "/ready", &out))
			assert.Equal(t, tc.status, out.Status)
			assert.Len(t, out.Checks, 2)
		})
	}
}

func TestServiceAndVersion(t *testing.T) {
	d := Deps{ServiceName: "punchclock-api", StartedAt: time.Now().Add(-time.Minute)}

	var svc ServiceResponse
	require.Equal(t, http.StatusOK, get(t, d, "/service", &svc))
	assert.Equal(t, "punchclock-api", svc.Name)
	assert.GreaterOrEqual(t, svc.Uptime, int64(60))

	var v struct {
		Service string `json:"service"`
	}
	require.Equal(t, http.StatusOK, get(t, d, "/version", &v))
	assert.Equal(t, "punchclock-api", v.Service)
}
