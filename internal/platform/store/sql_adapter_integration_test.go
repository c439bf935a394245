//go:build integration_pg
// +build integration_pg

package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	perr "punchclock/internal/platform/errors"

	"github.com/rs/zerolog"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPostgres(t *testing.T) string {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "postgres",
				"POSTGRES_DB":       "postgres",
			},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("5432/tcp"),
				wait.ForLog("database system is ready to accept connections"),
			).WithDeadline(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("start postgres: %v", err)
	}
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	mp, err := c.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	return fmt.Sprintf("postgres://postgres:postgres@%s:%s/postgres?sslmode=disable", host, mp.Port())
}

func TestRunTx_Integration(t *testing.T) {
	dsn := startPostgres(t)
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	s, err := Open(ctx, Config{
		AppName: "punchclock-store-it",
		PG:      PGConfig{Enabled: true, URL: dsn, MaxConns: 2, LogSQL: true, SlowQueryMs: 1},
	}, WithLogger(zerolog.New(io.Discard)))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = s.Close(context.Background()) }()
	if err := s.Guard(ctx); err != nil {
		t.Fatalf("Guard: %v", err)
	}

	if _, err := s.PG.Exec(ctx, `create table checkinout (serial bigint primary key, userid bigint not null)`); err != nil {
		t.Fatalf("create: %v", err)
	}

	insert := func(serial int64) func(context.Context, RowQuerier) error {
		return func(ctx context.Context, q RowQuerier) error {
			_, err := q.Exec(ctx, `insert into checkinout (serial, userid) values ($1, 7)`, serial)
			return perr.FromPostgres(err, "insert")
		}
	}

	if err := RunTx(ctx, s.PG, RetryPolicy{Attempts: 1}, insert(1)); err != nil {
		t.Fatalf("commit: %v", err)
	}

	rollback := errors.New("reject item")
	err = RunTx(ctx, s.PG, RetryPolicy{Attempts: 1}, func(ctx context.Context, q RowQuerier) error {
		if err := insert(2)(ctx, q); err != nil {
			return err
		}
		return rollback
	})
	if !errors.Is(err, rollback) {
		t.Fatalf("rollback err = %v", err)
	}

	attempts := 0
	err = RunTx(ctx, s.PG, RetryPolicy{Attempts: 3, Backoff: time.Millisecond}, func(ctx context.Context, q RowQuerier) error {
		attempts++
		return insert(1)(ctx, q)
	})
	if !perr.IsDuplicateKey(err) || attempts != 3 {
		t.Fatalf("duplicate: err=%v attempts=%d", err, attempts)
	}

	n, err := Scalar[int64](ctx, s.PG, `select count(*) from checkinout`)
	if err != nil || n != 1 {
		t.Fatalf("rows = %d %v", n, err)
	}
}
