package repository

import (
	"errors"
	"math"
	"strings"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record conflicts with existing data")
)

const (
	DefaultPage      = 1
	DefaultLimit     = 10
	MaxLimit         = 100
	DefaultSortField = "created_at"
)

// Sortable fields per resource. Anything else falls back to created_at.
var (
	CategorySortFields    = []string{"created_at", "updated_at", "name"}
	EmailSortFields       = []string{"created_at", "received_at", "subject", "confidence"}
	ServiceSortFields     = []string{"created_at", "updated_at", "name", "price"}
	ClientSortFields      = []string{"created_at", "updated_at", "name", "company"}
	QuotationSortFields   = []string{"created_at", "updated_at", "number", "total", "status"}
	AppointmentSortFields = []string{"created_at", "start_time", "status"}
)

type ListOptions struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

// Normalized clamps paging to sane bounds and resets unknown sort keys.
func (o ListOptions) Normalized(allowed []string) ListOptions {
	if o.Page < 1 {
		o.Page = DefaultPage
	}
	if o.Limit < 1 {
		o.Limit = DefaultLimit
	}
	if o.Limit > MaxLimit {
		o.Limit = MaxLimit
	}
	// keeps Offset well inside int32 so it never wraps
	if maxPage := math.MaxInt32 / o.Limit; o.Page > maxPage {
		o.Page = maxPage
	}
	o.SortBy = strings.ToLower(strings.TrimSpace(o.SortBy))
	if !contains(allowed, o.SortBy) {
		o.SortBy = DefaultSortField
	}
	if strings.EqualFold(o.SortOrder, "asc") {
		o.SortOrder = "asc"
	} else {
		o.SortOrder = "desc"
	}
	return o
}

func (o ListOptions) Offset() int {
	return (o.Page - 1) * o.Limit
}

func (o ListOptions) Desc() bool {
	return o.SortOrder != "asc"
}

// Page is one slice of a listing plus the size of the whole result set.
type Page[T any] struct {
	Items []T
	Total int
	Opts  ListOptions
}

func NewPage[T any](items []T, total int, opts ListOptions) *Page[T] {
	if items == nil {
		items = []T{}
	}
	return &Page[T]{Items: items, Total: total, Opts: opts}
}

func (p *Page[T]) TotalPages() int {
	if p.Opts.Limit <= 0 {
		return 0
	}
	return (p.Total + p.Opts.Limit - 1) / p.Opts.Limit
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
