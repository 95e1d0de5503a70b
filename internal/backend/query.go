package backend

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"buyback-pos/internal/paging"
)

type query struct{ url.Values }

func newQuery() query { return query{url.Values{}} }

func (q query) str(key, value string) query {
	if v := strings.TrimSpace(value); v != "" {
		q.Set(key, v)
	}
	return q
}

func (q query) int(key string, value int) query {
	q.Set(key, strconv.Itoa(value))
	return q
}

// id sets key only for a positive id.
func (q query) id(key string, value uint) query {
	if value > 0 {
		q.Set(key, strconv.FormatUint(uint64(value), 10))
	}
	return q
}

func (q query) bool(key string, value bool) query {
	q.Set(key, strconv.FormatBool(value))
	return q
}

func (q query) page(p paging.Params) query {
	p = paging.NormalizeWith(p.Page, p.PerPage, paging.DefaultPerPage)
	return q.int("page", p.Page).int("per_page", p.PerPage)
}

// DateRange filters lists by day. Zero bounds are omitted.
type DateRange struct {
	From time.Time
	To   time.Time
}

const dateLayout = "2006-01-02"

func (q query) dates(r DateRange) query {
	if !r.From.IsZero() {
		q.Set("date_from", r.From.Format(dateLayout))
	}
	if !r.To.IsZero() {
		q.Set("date_to", r.To.Format(dateLayout))
	}
	return q
}

// ParseDateRange reads YYYY-MM-DD bounds; unparsable values are dropped.
// Swapped bounds are put back in order.
func ParseDateRange(from, to string) DateRange {
	var r DateRange
	if t, err := time.Parse(dateLayout, strings.TrimSpace(from)); err == nil {
		r.From = t
	}
	if t, err := time.Parse(dateLayout, strings.TrimSpace(to)); err == nil {
		r.To = t
	}
	if !r.From.IsZero() && !r.To.IsZero() && r.To.Before(r.From) {
		r.From, r.To = r.To, r.From
	}
	return r
}

func (r DateRange) FromString() string {
	if r.From.IsZero() {
		return ""
	}
	return r.From.Format(dateLayout)
}

func (r DateRange) ToString() string {
	if r.To.IsZero() {
		return ""
	}
	return r.To.Format(dateLayout)
}

func (r DateRange) IsZero() bool { return r.From.IsZero() && r.To.IsZero() }

func itoa(id uint) string { return strconv.FormatUint(uint64(id), 10) }
