package submissions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPaginatedResult(t *testing.T) {
	tests := []struct {
		name     string
		total    int64
		pageSize int
		pages    int
	}{
		{name: "empty", total: 0, pageSize: 20, pages: 0},
		{name: "exact", total: 40, pageSize: 20, pages: 2},
		{name: "remainder", total: 41, pageSize: 20, pages: 3},
		{name: "zero page size", total: 5, pageSize: 0, pages: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := NewPaginatedResult(nil, 1, tt.pageSize, tt.total)
			assert.Equal(t, tt.pages, res.TotalPages)
			assert.NotNil(t, res.Data)
		})
	}
}
