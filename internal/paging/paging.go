// Package paging holds the page/per_page contract shared by every list screen.
package paging

import (
	"net/url"
	"strconv"

	"buyback-pos/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
	WindowSize     = 3
)

type Params struct {
	Page    int
	PerPage int
}

// Normalize fills defaults: page < 1 becomes 1, per_page < 1 becomes
// DefaultPerPage and anything above MaxPerPage is capped.
func Normalize(page, perPage int) Params {
	return NormalizeWith(page, perPage, DefaultPerPage)
}

func NormalizeWith(page, perPage, fallback int) Params {
	if fallback < 1 {
		fallback = DefaultPerPage
	}
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = fallback
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return Params{Page: page, PerPage: perPage}
}

// FromQuery reads page and per_page from the request; malformed values are
// treated as missing.
func FromQuery(c *gin.Context, fallback int) Params {
	return FromValues(c.Request.URL.Query(), fallback)
}

func FromValues(q url.Values, fallback int) Params {
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	return NormalizeWith(page, perPage, fallback)
}

// TotalPages is ceil(total/perPage), never less than 1.
func TotalPages(total, perPage int) int {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if total <= 0 {
		return 1
	}
	return (total + perPage - 1) / perPage
}

// Resolve works out the page count from whichever counter the backend filled.
func Resolve[T any](p models.Page[T], perPage int) int {
	for _, n := range []int{p.TotalPages, p.Pages, p.PageCount} {
		if n > 0 {
			return n
		}
	}
	for _, n := range []int{p.Total, p.TotalItems} {
		if n > 0 {
			return TotalPages(n, perPage)
		}
	}
	return 1
}

// Window returns up to size consecutive page numbers around page, clamped to
// [1, totalPages].
func Window(page, totalPages, size int) []int {
	if totalPages < 1 {
		totalPages = 1
	}
	if size < 1 {
		size = WindowSize
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := page - 1
	if start < 1 {
		start = 1
	}
	end := start + size - 1
	if end > totalPages {
		end = totalPages
		start = end - size + 1
		if start < 1 {
			start = 1
		}
	}

	pages := make([]int, 0, end-start+1)
	for n := start; n <= end; n++ {
		pages = append(pages, n)
	}
	return pages
}

// View is what the pager partial renders.
type View struct {
	Page       int
	TotalPages int
	Numbers    []int
	HasPrev    bool
	HasNext    bool
	Prev       int
	Next       int
}

func NewView(page, totalPages int) View {
	if totalPages < 1 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	return View{
		Page:       page,
		TotalPages: totalPages,
		Numbers:    Window(page, totalPages, WindowSize),
		HasPrev:    page > 1,
		HasNext:    page < totalPages,
		Prev:       page - 1,
		Next:       page + 1,
	}
}
