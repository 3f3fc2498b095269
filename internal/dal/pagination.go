package dal

import (
	"strconv"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 50

	// maxPage keeps (page-1)*limit far away from overflow
	maxPage = 1 << 30
)

// PageRequest is a patient listing request
type PageRequest struct {
	Page   int
	Limit  int
	Search string
}

// ParsePageRequest builds a PageRequest from raw query values. Values that
// are not integers, or are zero, fall back to the defaults; the result is
// then clamped.
func ParsePageRequest(pageStr, limitStr, search string) PageRequest {
	req := PageRequest{
		Page:   parseOrDefault(pageStr, DefaultPage),
		Limit:  parseOrDefault(limitStr, DefaultLimit),
		Search: search,
	}
	return req.normalize()
}

func parseOrDefault(s string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v == 0 {
		return def
	}
	return v
}

// normalize clamps limit to [1, MaxLimit], page to at least 1 and lower-cases
// the search term to match the stored name form
func (r PageRequest) normalize() PageRequest {
	if r.Limit < 1 {
		r.Limit = 1
	}
	if r.Limit > MaxLimit {
		r.Limit = MaxLimit
	}
	if r.Page < 1 {
		r.Page = 1
	}
	if r.Page > maxPage {
		r.Page = maxPage
	}
	r.Search = strings.ToLower(r.Search)
	return r
}

func (r PageRequest) offset() int {
	return (r.Page - 1) * r.Limit
}

// totalPages is ceil(totalCount / limit)
func totalPages(totalCount, limit int) int {
	if totalCount <= 0 {
		return 0
	}
	return (totalCount + limit - 1) / limit
}
