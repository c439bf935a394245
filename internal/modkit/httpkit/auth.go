package httpkit

import (
	"crypto/subtle"
	"net/http"
	"strconv"
	"strings"

	perr "punchclock/internal/platform/errors"
	pnet "punchclock/internal/platform/net"
	phttp "punchclock/internal/platform/net/http"
	"punchclock/internal/platform/net/middleware"
)

type credential struct{ client, token string }

// Port resolves clock-client bearer tokens
type Port struct{ creds []credential }

// NewStaticPort builds a Port from "client=token" entries; a bare token is
// named client-N by position. Blank entries are skipped and no entries at all
// yields nil, which leaves routes open
func NewStaticPort(entries []string) *Port {
	var p Port
	for i, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		name, tok, ok := strings.Cut(e, "=")
		if !ok {
			name, tok = "client-"+strconv.Itoa(i+1), e
		}
		p.creds = append(p.creds, credential{strings.TrimSpace(name), strings.TrimSpace(tok)})
	}
	if len(p.creds) == 0 {
		return nil
	}
	return &p
}

// Parse implements middleware.AuthPort
func (p *Port) Parse(r *http.Request) (string, error) {
	tok, err := Bearer(r)
	if err != nil {
		return "", err
	}
	if p != nil {
		for _, c := range p.creds {
			if subtle.ConstantTimeCompare([]byte(c.token), []byte(tok)) == 1 {
				return c.client, nil
			}
		}
	}
	return "", perr.Unauthorizedf("invalid bearer token")
}

// Bearer extracts the token from "Authorization: Bearer <token>", scheme case-insensitive
func Bearer(r *http.Request) (string, error) {
	scheme, tok, _ := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
	tok = strings.TrimSpace(tok)
	if !strings.EqualFold(scheme, "bearer") || tok == "" {
		return "", perr.Unauthorizedf("missing bearer token")
	}
	return tok, nil
}

// Client is the clock client the auth middleware resolved for r
func Client(r *http.Request) (string, error) {
	if cid := pnet.ClientID(r.Context()); cid != "" {
		return cid, nil
	}
	return "", perr.Unauthorizedf("missing bearer token")
}

// RequireToken rejects requests without a token p accepts, answering with the error envelope
func RequireToken(p middleware.AuthPort) middleware.Middleware { return middleware.Auth(p, phttp.JSON) }
