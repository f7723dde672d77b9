package store

import (
	"database/sql"
	"errors"
	"fmt"
)

// ErrStaleWrite is returned by conditional updates whose WHERE clause no longer
// matches, i.e. another request changed the row first.
var ErrStaleWrite = errors.New("row changed concurrently")

func checkAffectedRows(result sql.Result, noRowsErr error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return noRowsErr
	}
	return nil
}
