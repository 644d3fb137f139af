package handler

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
)

// parsePagination normalizes page/limit query values: bad or missing input
// falls back to defaults, limit is capped.
func parsePagination(pageRaw, limitRaw string) (page, limit int) {
	page = defaultPage
	limit = defaultLimit

	if value, err := strconv.Atoi(strings.TrimSpace(pageRaw)); err == nil && value > 0 {
		page = value
	}
	if value, err := strconv.Atoi(strings.TrimSpace(limitRaw)); err == nil && value > 0 {
		limit = value
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

func parseDateRequired(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("date is required")
	}
	return time.Parse("2006-01-02", value)
}

func parseDateParam(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func trimPtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	return &trimmed
}
