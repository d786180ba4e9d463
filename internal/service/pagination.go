package service

import "math"

// MaxPage is the largest page whose offset (page-1)*limit still fits in an
// int32, which every supported database accepts as OFFSET.
func MaxPage(limit int) int {
	if limit < 1 {
		limit = 1
	}
	return math.MaxInt32/limit + 1
}

// normalizePage applies the default and maximum page size and clamps page
// to [1, MaxPage(limit)].
func normalizePage(page, limit, def, maxLimit int) (int, int) {
	if limit <= 0 {
		limit = def
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if page < 1 {
		page = 1
	}
	if p := MaxPage(limit); page > p {
		page = p
	}
	return page, limit
}

func offset(page, limit int) int {
	return (page - 1) * limit
}
