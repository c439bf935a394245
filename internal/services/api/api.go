// Package api provides the HTTP API for the application
package api

import (
	"punchclock/internal/platform/config"
	"punchclock/internal/platform/logger"
	phttp "punchclock/internal/platform/net/http"
	"punchclock/internal/platform/store"

	"punchclock/internal/modkit"
	"punchclock/internal/modkit/httpkit"
	"punchclock/internal/modkit/module"
	"punchclock/internal/modkit/swaggerkit"

	metamod "punchclock/internal/services/api/meta/module"
	punchesmod "punchclock/internal/services/punches/module"
	reportmod "punchclock/internal/services/report/module"
)

// Options are the API options
type Options struct {
	// Config is the unprefixed root; modules pick their own prefixes
	Config         config.Conf
	Store          *store.Store
	Logger         *logger.Logger
	EnableSwagger  bool
	EnableProfiler bool
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) error {
	// shared deps for modules
	deps := modkit.Deps{Cfg: opt.Config}
	if opt.Logger != nil {
		deps.Log = *opt.Logger
	}
	if opt.Store != nil {
		deps.PG = opt.Store.PG
		deps.CH = opt.Store.CH
	}

	reportOpts, err := reportmod.FromConfig(deps.Cfg)
	if err != nil {
		return err
	}
	punchOpts, err := punchesmod.FromConfig(deps.Cfg)
	if err != nil {
		return err
	}

	mods := []module.Module{
		metamod.New(deps),
		reportmod.New(deps, reportOpts),
		punchesmod.New(deps, punchOpts),
	}

	swaggerkit.Mount(r, opt.EnableSwagger)
	phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

	stack := httpkit.CommonStack(httpkit.StackFromConfig(deps.Cfg.Prefix("CORE_API_")))
	httpkit.MountAPIV1(r, stack, func(api httpkit.Router) {
		for _, m := range mods {
			// ports are looked up by module name across modules
			module.Register(m.Name(), m.Ports())
			m.MountRoutes(api)
		}
	})
	return nil
}
