package postgres

import (
	"context"
	_ "embed"

	kpool "github.com/keti-strato/pms/pkg/conn/db/postgres/pool"
)

//go:embed schema.sql
var schema string

// EnsureSchema creates tables of the workload mirror unless they exist.
func EnsureSchema(ctx context.Context, q kpool.Queryer) error {
	if _, err := q.Exec(ctx, schema); err != nil {
		return storeError("ensure schema", err)
	}
	return nil
}
