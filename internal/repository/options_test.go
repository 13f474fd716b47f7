package repository

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListOptionsNormalized(t *testing.T) {
	tests := []struct {
		name string
		in   ListOptions
		want ListOptions
	}{
		{"defaults", ListOptions{}, ListOptions{Page: 1, Limit: 10, SortBy: "created_at", SortOrder: "desc"}},
		{"limit capped", ListOptions{Page: 3, Limit: 500}, ListOptions{Page: 3, Limit: 100, SortBy: "created_at", SortOrder: "desc"}},
		{"allowed sort", ListOptions{SortBy: "Name", SortOrder: "ASC"}, ListOptions{Page: 1, Limit: 10, SortBy: "name", SortOrder: "asc"}},
		{"unknown sort", ListOptions{SortBy: "password", SortOrder: "sideways"}, ListOptions{Page: 1, Limit: 10, SortBy: "created_at", SortOrder: "desc"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Normalized(ClientSortFields))
		})
	}
}

func TestPageTotalPages(t *testing.T) {
	opts := ListOptions{Page: 1, Limit: 10}
	assert.Equal(t, 0, NewPage([]int{}, 0, opts).TotalPages())
	assert.Equal(t, 1, NewPage([]int{1}, 10, opts).TotalPages())
	assert.Equal(t, 3, NewPage([]int{1}, 21, opts).TotalPages())
	assert.NotNil(t, NewPage[int](nil, 0, opts).Items)
	assert.Equal(t, 20, ListOptions{Page: 3, Limit: 10}.Offset())
}

func TestListOptionsHugePageStaysPositive(t *testing.T) {
	opts := ListOptions{Page: math.MaxInt64, Limit: 10}.Normalized(EmailSortFields)
	assert.Equal(t, math.MaxInt32/10, opts.Page)
	assert.Greater(t, opts.Offset(), 0)
	assert.LessOrEqual(t, opts.Offset(), math.MaxInt32)

	opts = ListOptions{Page: math.MaxInt64, Limit: math.MaxInt64}.Normalized(EmailSortFields)
	assert.Equal(t, MaxLimit, opts.Limit)
	assert.Greater(t, opts.Offset(), 0)
}
