package repository

import "errors"

// ErrInsufficientStock is returned by guarded stock updates when the row
// would go negative (or does not exist). No row was modified.
var ErrInsufficientStock = errors.New("repository: insufficient stock")

// ErrStaleState is returned by compare-and-set status updates when the row
// is no longer in the expected state.
var ErrStaleState = errors.New("repository: row changed concurrently")

func pageOffset(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	return (page - 1) * limit, limit
}
