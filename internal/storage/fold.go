package storage

import (
	"database/sql/driver"

	"modernc.org/sqlite"

	"github.com/raiyan37/Centinel/internal/core"
)

// Searching and sorting by name fold case the same way the services do for
// recurring bills. SQLite's own lower() and NOCASE only fold ASCII.
const (
	foldFunction  = "fold"
	foldCollation = "FOLD"
)

func init() {
	sqlite.MustRegisterDeterministicScalarFunction(foldFunction, 1, foldValue)
	sqlite.MustRegisterCollationUtf8(foldCollation, core.CompareNames)
}

func foldValue(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return core.FoldName(v), nil
	case []byte:
		return core.FoldName(string(v)), nil
	default:
		return v, nil
	}
}
