package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"punchclock/internal/core/punch"
	perr "punchclock/internal/platform/errors"
	ptime "punchclock/internal/platform/time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustRange(t *testing.T, a, b string) ptime.Range {
	t.Helper()
	s, err := ptime.ParseDate(a)
	require.NoError(t, err)
	e, err := ptime.ParseDate(b)
	require.NoError(t, err)
	r, err := ptime.NewRange(s, e)
	require.NoError(t, err)
	return r
}

func serve(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewClient(Options{URL: srv.URL, Token: "sekret", Timeout: time.Second})
	require.NoError(t, err)
	return c
}

func TestFetch_SendsRangeAndToken(t *testing.T) {
	var got request
	c := serve(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer sekret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`[]`))
	})

	res, err := c.Fetch(context.Background(), mustRange(t, "2024-03-01", "2024-03-05"))
	require.NoError(t, err)
	assert.Empty(t, res.Events)
	assert.Equal(t, request{StartDate: "2024-03-01", EndDate: "2024-03-05", Timezone: "America/New_York"}, got)
}

func TestFetch_AcceptsBothShapesAndDropsBadItems(t *testing.T) {
	bodies := map[string]string{
		"list": `[
			{"userid": 7, "punchedAt": "2024-03-01T09:00:00-05:00", "source_event_id": "x-1"},
			{"user_id": "8", "timestamp": "2024-03-01 17:00:00"},
			{"userid": "nope", "punchedAt": "2024-03-01T09:00:00Z"},
			{"userid": 9},
			"garbage"
		]`,
		"object": `{"punches": [
			{"userid": 7, "punchedAt": "2024-03-01T09:00:00-05:00", "source_event_id": "x-1"},
			{"user_id": "8", "timestamp": "2024-03-01 17:00:00", "extra": true},
			{"userid": -1, "punchedAt": "2024-03-01T09:00:00Z"},
			{"punchedAt": "2024-03-01T09:00:00Z"},
			{"userid": 10, "punchedAt": "yesterday"}
		]}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			c := serve(t, func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte(body)) })
			res, err := c.Fetch(context.Background(), mustRange(t, "2024-03-01", "2024-03-01"))
			require.NoError(t, err)
			require.Len(t, res.Events, 2)
			assert.Equal(t, 3, res.Dropped)

			first, second := res.Events[0], res.Events[1]
			assert.Equal(t, int64(7), first.UserID)
			assert.Equal(t, "x-1", first.SourceEventID)
			assert.Equal(t, punch.PriorityExternal, first.Priority)
			assert.Equal(t, punch.SourceExternal, first.Source)
			assert.Equal(t, time.Date(2024, 3, 1, 14, 0, 0, 0, time.UTC), first.At)

			assert.Equal(t, int64(8), second.UserID)
			assert.Equal(t, time.Date(2024, 3, 1, 22, 0, 0, 0, time.UTC), second.At)
			assert.Equal(t, SyntheticID(second), second.SourceEventID)
			assert.Equal(t, "2024-03-01", second.Date.String())
		})
	}
}

func TestFetch_SoftFailuresAreUnavailable(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"status": func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "upstream sad", http.StatusBadGateway)
		},
		"malformed": func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte(`{"data": 1}`)) },
		"scalar":    func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte(`42`)) },
		"empty":     func(w http.ResponseWriter, _ *http.Request) {},
	}
	for name, h := range cases {
		t.Run(name, func(t *testing.T) {
			c := serve(t, h)
			_, err := c.Fetch(context.Background(), mustRange(t, "2024-03-01", "2024-03-01"))
			require.Error(t, err)
			assert.Equal(t, perr.ErrorCodeUnavailable, perr.CodeOf(err), "code=%v", perr.CodeOf(err))
		})
	}
}

func TestFetch_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() { close(release); srv.Close() })

	c, err := NewClient(Options{URL: srv.URL, Timeout: 50 * time.Millisecond})
	require.NoError(t, err)

	start := time.Now()
	_, err = c.Fetch(context.Background(), mustRange(t, "2024-03-01", "2024-03-01"))
	require.Error(t, err)
	assert.Equal(t, perr.ErrorCodeUnavailable, perr.CodeOf(err))
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestNewClient_Validates(t *testing.T) {
	_, err := NewClient(Options{})
	require.Error(t, err)

	_, err = NewClient(Options{URL: "http://x", Timezone: "Mars/Olympus"})
	require.Error(t, err)

	c, err := NewClient(Options{URL: "http://x"})
	require.NoError(t, err)
	assert.Equal(t, 8*time.Second, c.Timeout())
}

func TestSyntheticID_Stable(t *testing.T) {
	at := time.Date(2024, 3, 1, 14, 0, 0, 250, time.UTC)
	a := punch.Event{UserID: 3, At: at}
	b := punch.Event{UserID: 3, At: at.Add(500 * time.Millisecond)}
	assert.Equal(t, SyntheticID(a), SyntheticID(b))
	assert.NotEqual(t, SyntheticID(a), SyntheticID(punch.Event{UserID: 4, At: at}))
}
