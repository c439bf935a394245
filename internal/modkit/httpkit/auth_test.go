package httpkit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	perr "punchclock/internal/platform/errors"
	pnet "punchclock/internal/platform/net"
	phttp "punchclock/internal/platform/net/http"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authReq(header string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/punches", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	return req
}

func TestNewStaticPort(t *testing.T) {
	assert.Nil(t, NewStaticPort(nil))
	assert.Nil(t, NewStaticPort([]string{"", "  "}))

	p := NewStaticPort([]string{"gate-a = tok-a", "", "tok-bare"})
	require.NotNil(t, p)

	cases := []struct {
		header string
		client string
		msg    string
	}{
		{"Bearer tok-a", "gate-a", ""},
		{"bearer  tok-bare", "client-3", ""},
		{"Bearer tok-x", "", "invalid bearer token"},
		{"Basic tok-a", "", "missing bearer token"},
		{"Bearer", "", "missing bearer token"},
		{"", "", "missing bearer token"},
	}
	for _, tc := range cases {
		t.Run(tc.header, func(t *testing.T) {
			got, err := p.Parse(authReq(tc.header))
			if tc.msg != "" {
				require.Error(t, err)
				assert.Equal(t, tc.msg, err.Error())
				assert.Equal(t, perr.ErrorCodeUnauthorized, perr.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.client, got)
		})
	}
}

func TestNilPortRejects(t *testing.T) {
	var p *Port
	_, err := p.Parse(authReq("Bearer anything"))
	assert.Equal(t, perr.ErrorCodeUnauthorized, perr.CodeOf(err))
}

func TestClient(t *testing.T) {
	_, err := Client(authReq(""))
	assert.Error(t, err)

	req := authReq("")
	req = req.WithContext(pnet.WithClient(req.Context(), "gate-a"))
	got, err := Client(req)
	require.NoError(t, err)
	assert.Equal(t, "gate-a", got)
}

func TestRequireToken(t *testing.T) {
	mux := chi.NewRouter()
	r := phttp.AdaptChi(mux)
	r.Get("/open", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	r.Group(func(g Router) {
		g.Use(RequireToken(NewStaticPort([]string{"gate-a=tok-a"})))
		g.Post("/punches", Handle(func(req *http.Request) Response {
			cid, _ := Client(req)
			return Created(cid)
		}))
	})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, authReq("Bearer tok-a"))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"data":"gate-a"`)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, authReq("Bearer nope"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/open", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
