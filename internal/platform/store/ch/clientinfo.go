package ch

import (
	"os"
	"runtime"
	"strings"

	"punchclock/internal/core/version"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// BuildClientInfo names this process in system.query_log: the app (default
// "punchclock") with its role tag, then the build, go version and host
func BuildClientInfo(name, tag string) clickhouse.ClientInfo {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "punchclock"
	}
	host, _ := os.Hostname()
	b := version.Info(name)

	type product = struct{ Name, Version string }
	return clickhouse.ClientInfo{Products: []product{
		{Name: name, Version: strings.TrimSpace(tag)},
		{Name: "build", Version: b.Version + "+" + b.Commit},
		{Name: "go", Version: runtime.Version()},
		{Name: "host", Version: host},
	}}
}
