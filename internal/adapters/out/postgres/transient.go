package postgres

import (
	"database/sql/driver"
	"errors"
	"net"

	"orderflow/internal/pkg/retry"

	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres error classes worth another attempt: connection exceptions,
// serialization failures, deadlocks and server shutdown.
var transientSQLStates = map[string]struct{}{
	"08000": {}, "08001": {}, "08003": {}, "08004": {}, "08006": {},
	"40001": {}, "40P01": {},
	"57P01": {}, "57P02": {}, "57P03": {},
	"53300": {},
}

// IsTransient classifies database errors for the retry executor: timeouts, dropped
// connections, serialization conflicts and errors the driver marks safe to retry.
// Constraint violations and other statement errors are permanent.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if retry.IsTimeout(err) || errors.Is(err, driver.ErrBadConn) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		_, ok := transientSQLStates[pgErr.Code]
		return ok
	}

	if pgconn.SafeToRetry(err) || pgconn.Timeout(err) {
		return true
	}

	var opErr *net.OpError
	return errors.As(err, &opErr)
}
