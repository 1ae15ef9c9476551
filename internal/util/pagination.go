package util

import "strconv"

const (
	DefaultPageSize = 20
	MaxPageSize     = 50
)

// Page is an offset window over a result list.
type Page struct {
	From int
	Size int
}

// Calculate turns a 1-based page number and a page size into a Page.
// Out of range sizes fall back to DefaultPageSize.
func Calculate(page, size int) Page {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > MaxPageSize {
		size = DefaultPageSize
	}
	return Page{From: (page - 1) * size, Size: size}
}

// ParsePage is Calculate over raw query values; garbage counts as missing.
func ParsePage(page, size string) Page {
	p, _ := strconv.Atoi(page)
	s, _ := strconv.Atoi(size)
	return Calculate(p, s)
}
