package httpkit

import (
	"compress/flate"
	"net/http"
	"time"

	"punchclock/internal/platform/config"
	"punchclock/internal/platform/net/middleware"
)

// StackOptions tune the shared API middleware
type StackOptions struct {
	CORSOrigins []string
	SlowRequest time.Duration
	Timeout     time.Duration
}

// StackFromConfig reads CORS_ORIGINS, SLOW_REQUEST and REQUEST_TIMEOUT from cfg
func StackFromConfig(cfg config.Conf) StackOptions {
	return StackOptions{
		CORSOrigins: cfg.MayCSV("CORS_ORIGINS", nil),
		SlowRequest: cfg.MayDuration("SLOW_REQUEST", 500*time.Millisecond),
		Timeout:     cfg.MayDuration("REQUEST_TIMEOUT", 30*time.Second),
	}
}

// CommonStack is the middleware every API route runs behind. A zero Timeout
// leaves requests unbounded
func CommonStack(o StackOptions) []func(http.Handler) http.Handler {
	mws := []func(http.Handler) http.Handler{
		middleware.RequestID(),
		middleware.RealIP(),
		middleware.AccessLog(o.SlowRequest),
		middleware.RecoverJSON,
		middleware.NoCache(),
		middleware.CORS(middleware.CORSOptions{AllowedOrigins: o.CORSOrigins}),
		middleware.Compress(flate.BestSpeed),
		middleware.StripSlashes(),
	}
	if o.Timeout > 0 {
		mws = append(mws, middleware.Timeout(o.Timeout))
	}
	return mws
}

// MountAPIV1 scopes mount under /api/v1 behind mw
func MountAPIV1(r Router, mw []func(http.Handler) http.Handler, mount func(Router)) {
	r.Route("/api/v1", func(api Router) {
		api.Use(mw...)
		mount(api)
	})
}
