package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePage(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"", 1},
		{"abc", 1},
		{"2", 2},
		{"0", 0},
		{"-3", -3},
		{"1.5", 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParsePage(tt.raw), "raw=%q", tt.raw)
	}
}

func TestPaginate(t *testing.T) {
	tests := []struct {
		name      string
		total     int64
		requested int
		number    int
		numPages  int
		offset    int
	}{
		{"empty list has page 1", 0, 1, 1, 1, 0},
		{"empty list out of range", 0, 5, 1, 1, 0},
		{"first page", 13, 1, 1, 2, 0},
		{"second page", 13, 2, 2, 2, 10},
		{"beyond last clamps", 13, 99, 2, 2, 10},
		{"zero clamps to last", 13, 0, 2, 2, 10},
		{"negative clamps to last", 13, -1, 2, 2, 10},
		{"exact multiple", 20, 2, 2, 2, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			number, numPages, offset := Paginate(tt.total, tt.requested)
			assert.Equal(t, tt.number, number)
			assert.Equal(t, tt.numPages, numPages)
			assert.Equal(t, tt.offset, offset)
		})
	}
}

func TestPage_Navigation(t *testing.T) {
	p := Page{Number: 2, NumPages: 3}
	assert.True(t, p.HasPrevious())
	assert.True(t, p.HasNext())
	assert.Equal(t, 1, p.PreviousNumber())
	assert.Equal(t, 3, p.NextNumber())
	assert.True(t, p.HasOtherPages())
	assert.Equal(t, []int{1, 2, 3}, p.PageRange())

	single := Page{Number: 1, NumPages: 1}
	assert.False(t, single.HasPrevious())
	assert.False(t, single.HasNext())
	assert.False(t, single.HasOtherPages())
}
