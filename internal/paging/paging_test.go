package paging_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"storefront/internal/paging"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		name               string
		page, pageSize     int
		wantPage, wantSize int
	}{
		{"defaults", 0, 0, 1, paging.DefaultPageSize},
		{"negative page", -3, 10, 1, 10},
		{"over max size", 2, 500, 2, paging.MaxPageSize},
		{"in range", 3, 25, 3, 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, size := paging.Clamp(tt.page, tt.pageSize)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantSize, size)
		})
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name           string
		page, pageSize int
		total          int64
		want           paging.Pagination
	}{
		{
			"first of many", 1, 10, 35,
			paging.Pagination{CurrentPage: 1, TotalPages: 4, TotalCount: 35, HasNext: true, HasPrev: false},
		},
		{
			"middle page", 2, 10, 35,
			paging.Pagination{CurrentPage: 2, TotalPages: 4, TotalCount: 35, HasNext: true, HasPrev: true},
		},
		{
			"last page", 4, 10, 35,
			paging.Pagination{CurrentPage: 4, TotalPages: 4, TotalCount: 35, HasNext: false, HasPrev: true},
		},
		{
			"exact fit", 2, 10, 20,
			paging.Pagination{CurrentPage: 2, TotalPages: 2, TotalCount: 20, HasNext: false, HasPrev: true},
		},
		{
			"empty", 1, 10, 0,
			paging.Pagination{CurrentPage: 1, TotalPages: 0, TotalCount: 0, HasNext: false, HasPrev: false},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, paging.New(tt.page, tt.pageSize, tt.total))
		})
	}
}
