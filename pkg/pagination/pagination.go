package pagination

import (
	"fmt"
	"math"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100

	DefaultPageSize = 10
	MaxPageSize     = 50
)

// Params holds offset pagination parameters extracted from a request.
type Params struct {
	Limit  int
	Offset int
}

// FromContext extracts limit/offset parameters from the echo context.
func FromContext(c echo.Context) Params {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	if offset < 0 {
		offset = 0
	}

	return Params{Limit: limit, Offset: offset}
}

// Response wraps an offset-paginated API response.
type Response struct {
	Data    interface{} `json:"data"`
	Total   int         `json:"total"`
	Limit   int         `json:"limit"`
	Offset  int         `json:"offset"`
	HasMore bool        `json:"has_more"`
}

func NewResponse(data interface{}, total, limit, offset int) *Response {
	return &Response{
		Data:    data,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: offset+limit < total,
	}
}

// HasNext returns true if there are more results after the current page.
func (p Params) HasNext(total int) bool {
	return p.Offset+p.Limit < total
}

// Page holds page-number pagination parameters (?page=N&page_size=M).
type Page struct {
	Number int
	Size   int
}

// PageFromContext reads page and page_size. A missing page means the first
// one; a page that is not a positive integer, or whose offset would
// overflow, is an error. page_size falls
// back to DefaultPageSize when absent or invalid and is capped at MaxPageSize.
func PageFromContext(c echo.Context) (Page, error) {
	p := Page{Number: 1, Size: DefaultPageSize}

	if raw := c.QueryParam("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return p, fmt.Errorf("invalid page %q", raw)
		}
		p.Number = n
	}

	if size, err := strconv.Atoi(c.QueryParam("page_size")); err == nil && size > 0 {
		p.Size = size
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	// The row offset must fit in an int.
	if p.Number-1 > math.MaxInt/p.Size {
		return p, fmt.Errorf("invalid page %d", p.Number)
	}
	return p, nil
}

// Offset returns the row offset of the first item on the page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// TotalPages returns how many pages total rows span (at least 1).
func (p Page) TotalPages(total int) int {
	if total <= 0 {
		return 1
	}
	return (total + p.Size - 1) / p.Size
}

// PageResponse is the envelope for page-number listings.
type PageResponse struct {
	Count      int         `json:"count"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalPages int         `json:"total_pages"`
	Next       *string     `json:"next"`
	Previous   *string     `json:"previous"`
	Results    interface{} `json:"results"`
}

// NewPageResponse builds the envelope. Links keep every other query
// parameter of reqURL (filters) and only swap the page number.
func NewPageResponse(results interface{}, total int, p Page, reqURL *url.URL) *PageResponse {
	resp := &PageResponse{
		Count:      total,
		Page:       p.Number,
		PageSize:   p.Size,
		TotalPages: p.TotalPages(total),
		Results:    results,
	}
	if reqURL == nil {
		return resp
	}
	if p.Number < resp.TotalPages {
		next := pageLink(reqURL, p.Number+1)
		resp.Next = &next
	}
	if p.Number > 1 {
		prev := pageLink(reqURL, p.Number-1)
		resp.Previous = &prev
	}
	return resp
}

func pageLink(u *url.URL, page int) string {
	q := u.Query()
	if page == 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	link := *u
	link.RawQuery = q.Encode()
	return link.String()
}
