package postgres

import (
	"errors"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	kdb "github.com/keti-strato/pms/pkg/domain/workload/db"
	xe "github.com/keti-strato/pms/pkg/errors"
)

func hintFor(err error) string {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return ""
	}
	switch {
	case pgErr.Code == pgerrcode.UndefinedTable:
		return "tables are missing. is schema initialized?"
	case pgerrcode.IsConnectionException(pgErr.Code):
		return "connection to database is lost"
	case pgerrcode.IsInsufficientResources(pgErr.Code):
		return "database is running out of resources"
	case pgerrcode.IsTransactionRollback(pgErr.Code):
		return "transaction is rolled back by database"
	}
	return ""
}

// storeError wraps err as a StoreError, located at the caller.
func storeError(operation string, err error) error {
	if err == nil {
		return nil
	}
	return xe.WrapAsOuter(
		&kdb.StoreError{Operation: operation, Hint: hintFor(err), Err: err},
		1,
	)
}
