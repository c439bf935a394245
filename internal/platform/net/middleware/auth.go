package middleware

import (
	"net/http"

	pnet "punchclock/internal/platform/net"
)

// AuthPort resolves the calling clock client from a request
type AuthPort interface {
	Parse(r *http.Request) (clientID string, err error)
}

// Auth rejects requests the port cannot resolve and tags the rest with
// their client id. A nil port passes everything
func Auth(p AuthPort, write func(w http.ResponseWriter, status int, body any)) Middleware {
	return func(next http.Handler) http.Handler {
		if p == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cid, err := p.Parse(r)
			if err != nil {
				status, env := pnet.Failure(err, pnet.RequestID(r.Context()))
				write(w, status, env)
				return
			}
			next.ServeHTTP(w, r.WithContext(pnet.WithClient(r.Context(), cid)))
		})
	}
}
