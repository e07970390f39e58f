// Package testenv provides database pools for tests.
//
// Tests using this package run against the database at $PMS_TEST_DATABASE_URL,
// and they are skipped when it is not set.
package testenv

import (
	"context"
	"os"
	"strings"
	"testing"

	kpool "github.com/keti-strato/pms/pkg/conn/db/postgres/pool"
)

const envDatabaseURL = "PMS_TEST_DATABASE_URL"

// PoolBroaker is a interface to get a pool.
type PoolBroaker interface {
	// GetPool returns a pool.
	//
	// Tables are truncated before returning and after t.
	GetPool(ctx context.Context, t *testing.T) kpool.Pool
}

type pg struct {
	pool   kpool.Pool
	tables []string
}

// NewPoolBroaker connects to the test database.
//
// setup is called once with the pool, to create tables.
// tables are truncated around each test.
func NewPoolBroaker(
	ctx context.Context, t *testing.T,
	setup func(context.Context, kpool.Queryer) error,
	tables ...string,
) PoolBroaker {
	t.Helper()

	url := os.Getenv(envDatabaseURL)
	if url == "" {
		t.Skipf("$%s is not set", envDatabaseURL)
	}

	p, err := kpool.Connect(ctx, url, 4)
	if err != nil {
		t.Fatalf("can not connect to test database: %s", err)
	}
	t.Cleanup(p.Close)

	if setup != nil {
		if err := setup(ctx, p); err != nil {
			t.Fatalf("can not setup test database: %s", err)
		}
	}
	return &pg{pool: p, tables: tables}
}

func (p *pg) GetPool(ctx context.Context, t *testing.T) kpool.Pool {
	t.Helper()
	t.Cleanup(func() {
		clearTables(context.Background(), t, p.pool, p.tables)
	})
	clearTables(ctx, t, p.pool, p.tables)
	return p.pool
}

func clearTables(ctx context.Context, t *testing.T, q kpool.Queryer, tables []string) {
	t.Helper()
	if len(tables) == 0 {
		return
	}
	quoted := make([]string, len(tables))
	for i, n := range tables {
		quoted[i] = `"` + n + `"`
	}
	if _, err := q.Exec(ctx, "truncate "+strings.Join(quoted, ", ")); err != nil {
		t.Fatalf("can not truncate tables: %s", err)
	}
}
