package store

import (
	"context"

	"punchclock/internal/platform/store/ch"
)

// chAdapter is *ch.CH with its rows narrowed to store.Rows
type chAdapter struct{ *ch.CH }

var (
	_ Clickhouse = chAdapter{}
	_ Pinger     = chAdapter{}
)

func (a chAdapter) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	r, err := a.CH.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return chRows{r}, nil
}

// chRows drops the error driver.Rows.Close returns
type chRows struct{ ch.Rows }

func (r chRows) Close() { _ = r.Rows.Close() }
