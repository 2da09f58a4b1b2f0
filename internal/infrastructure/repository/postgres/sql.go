package postgres

import (
	"database/sql"
	"errors"
)

// insertBatchSize keeps multi-row inserts well under the 65535 bind parameter limit.
const insertBatchSize = 500

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func chunks[T any](items []T, size int) [][]T {
	if size <= 0 {
		size = insertBatchSize
	}
	out := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		out = append(out, items[start:min(start+size, len(items))])
	}
	return out
}

func nullInt64ToIntPtr(value sql.NullInt64) *int {
	if !value.Valid {
		return nil
	}
	v := int(value.Int64)
	return &v
}

func intPtrToNullable(value *int) *int64 {
	if value == nil {
		return nil
	}
	v := int64(*value)
	return &v
}
