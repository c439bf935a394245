package module

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	modkit "punchclock/internal/modkit"
	"punchclock/internal/platform/config"
	phttp "punchclock/internal/platform/net/http"
	"punchclock/internal/platform/store"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seqTx hands out serials from a counter and accepts every write
type seqTx struct{ n atomic.Int64 }

type seqRow struct{ v int64 }

func (r seqRow) Scan(dest ...any) error { *(dest[0].(*int64)) = r.v; return nil }

func (*seqTx) Exec(context.Context, string, ...any) (store.CommandTag, error) { return nil, nil }
func (*seqTx) Query(context.Context, string, ...any) (store.Rows, error)      { return nil, nil }
func (t *seqTx) QueryRow(context.Context, string, ...any) store.Row           { return seqRow{t.n.Add(1)} }
func (t *seqTx) Tx(_ context.Context, fn func(q store.RowQuerier) error) error { return fn(t) }

func mount(t *testing.T, o Options) http.Handler {
	t.Helper()
	m := New(modkit.Deps{PG: &seqTx{}}, o)
	mux := chi.NewRouter()
	m.MountRoutes(phttp.AdaptChi(mux))
	return mux
}

func do(h http.Handler, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/punches", strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

const onePunch = `{"userid":7,"punchedAt":"2024-03-01T09:00:00"}`

func TestFromConfig(t *testing.T) {
	t.Setenv("CORE_INGEST_TOKENS", "front=abc, back=def")
	t.Setenv("CORE_INGEST_MAX_BATCH", "20")
	o, err := FromConfig(config.New())
	require.NoError(t, err)
	assert.Equal(t, []string{"front=abc", "back=def"}, o.Tokens)
	assert.Equal(t, 20, o.MaxBatch)
	assert.Equal(t, 3, o.Retries)
	assert.Equal(t, "America/New_York", o.Location.String())
}

func TestModule_ProtectedWhenTokensSet(t *testing.T) {
	h := mount(t, Options{Tokens: []string{"front=abc"}})

	assert.Equal(t, http.StatusUnauthorized, do(h, onePunch, "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(h, onePunch, "nope").Code)

	rec := do(h, onePunch, "abc")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"serial":1`)
}

func TestModule_OpenWithoutTokens(t *testing.T) {
	h := mount(t, Options{})
	rec := do(h, `[`+onePunch+`,`+onePunch+`]`, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"serial":2`)
}

func TestModule_NameAndPorts(t *testing.T) {
	m := New(modkit.Deps{PG: &seqTx{}}, Options{})
	assert.Equal(t, "punches", m.Name())
	assert.Equal(t, "/punches", m.Prefix())
	p, ok := m.Ports().(Ports)
	require.True(t, ok)
	assert.NotNil(t, p.Ingest)
}
