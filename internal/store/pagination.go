package store

const (
	// DefaultPageLimit is applied when a listing request omits a limit.
	DefaultPageLimit = 20
	// MaxPageLimit caps the page size a client may request.
	MaxPageLimit = 100
)

// NormalizePagination clamps page number and limit to sane values.
func NormalizePagination(pageNum, limit int) (int, int) {
	if pageNum < 1 {
		pageNum = 1
	}
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return pageNum, limit
}

// paginate returns the window of items for the given page, using
// skip = (pageNum-1)*limit. Out-of-range pages yield an empty slice.
func paginate[T any](items []T, pageNum, limit int) []T {
	pageNum, limit = NormalizePagination(pageNum, limit)

	skip := (pageNum - 1) * limit
	if skip >= len(items) {
		return []T{}
	}

	end := skip + limit
	if end > len(items) {
		end = len(items)
	}

	return items[skip:end]
}
