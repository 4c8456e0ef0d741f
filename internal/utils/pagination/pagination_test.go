package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBound(t *testing.T) {
	tests := []struct {
		name     string
		size     int
		expected int
	}{
		{"zero uses default", 0, 20},
		{"negative uses default", -5, 20},
		{"within range", 50, 50},
		{"at max", 100, 100},
		{"above max", 250, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Bound(tt.size, DefaultPageSize, MaxPageSize))
		})
	}

	t.Run("default above upper is capped", func(t *testing.T) {
		assert.Equal(t, 10, Bound(0, 50, 10))
	})
}

func TestClampPageSize(t *testing.T) {
	assert.Equal(t, DefaultPageSize, ClampPageSize(0))
	assert.Equal(t, 7, ClampPageSize(7))
	assert.Equal(t, MaxPageSize, ClampPageSize(1000))
}

func TestPagination_Offset(t *testing.T) {
	tests := []struct {
		page, size int
		expected   int
	}{
		{1, 20, 0},
		{2, 20, 20},
		{3, 10, 20},
		{0, 10, 0},
		{2, 500, 100},
	}

	for _, tt := range tests {
		p := &Pagination{Page: tt.page, PageSize: tt.size}
		assert.Equal(t, tt.expected, p.Offset())
	}
}

func TestPagination_LargePage(t *testing.T) {
	p := &Pagination{Page: 500000000000000000, PageSize: 20}
	assert.ErrorIs(t, p.Validate(), ErrPageOutOfRange)

	offset := p.Offset()
	assert.GreaterOrEqual(t, offset, 0)
	assert.Equal(t, MaxPage, p.Page)

	p = &Pagination{Page: MaxPage, PageSize: MaxPageSize}
	assert.NoError(t, p.Validate())
	assert.GreaterOrEqual(t, p.Offset(), 0)
}

func TestNew(t *testing.T) {
	p := New()
	assert.Equal(t, DefaultPage, p.Page)
	assert.Equal(t, DefaultPageSize, p.PageSize)
}
