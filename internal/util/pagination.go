package util

import (
	"fmt"
	"strconv"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

func Calculate(page, size int) (offset, limit int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > MaxPageSize {
		size = DefaultPageSize
	}
	offset = (page - 1) * size
	return offset, size
}

func ParseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

// FromQuery turns optional page/size query values into an offset and limit.
// With neither value present the limit is 0, meaning no paging.
func FromQuery(page, size string) (offset, limit int) {
	if page == "" && size == "" {
		return 0, 0
	}
	return Calculate(ParseIntDefault(page, 1), ParseIntDefault(size, DefaultPageSize))
}

// ParseID parses a positive numeric path or body id.
func ParseID(s string) (uint, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil || v == 0 {
		return 0, fmt.Errorf("expected a positive numeric id, got %q", s)
	}
	return uint(v), nil
}
