// Command punchclock-report prints attendance and hours reports straight from the store
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"punchclock/internal/core/workhours"
	"punchclock/internal/modkit"
	"punchclock/internal/modkit/module"
	"punchclock/internal/platform/config"
	"punchclock/internal/platform/logger"
	"punchclock/internal/platform/store"
	"punchclock/internal/services/report/cli"
	reportmod "punchclock/internal/services/report/module"
)

func main() {
	root := config.New()

	open := func(ctx context.Context) (cli.Runner, func(), error) {
		o, err := reportmod.FromConfig(root)
		if err != nil {
			return nil, nil, err
		}
		st, err := store.Open(ctx, store.ConfigFromEnv(root, "report"), store.WithLogger(*logger.Get()))
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if err := st.Close(context.Background()); err != nil {
				logger.Get().Error().Err(err).Msg("failed to close store")
			}
		}
		if err := st.Guard(ctx); err != nil {
			closeFn()
			return nil, nil, err
		}
		deps := modkit.Deps{Log: *logger.Named("report-cli"), Cfg: root, PG: st.PG, CH: st.CH}
		m := reportmod.New(deps, o)
		module.Register(m.Name(), m.Ports())
		ports, err := reportmod.LookupPorts()
		if err != nil {
			closeFn()
			return nil, nil, err
		}
		return cli.PortRunner{ServicePort: ports.Reports, Limits: ports.Limits}, closeFn, nil
	}
	rules := func() (workhours.Rules, error) { return reportmod.RulesFromConfig(root) }

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCommand(open, rules).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
