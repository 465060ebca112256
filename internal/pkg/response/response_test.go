// internal/pkg/response/response_test.go
package response

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name     string
		page     int
		limit    int
		total    int64
		wantPage int
		wantNext bool
		wantPrev bool
	}{
		{"first of many", 1, 20, 95, 5, true, false},
		{"middle page", 3, 20, 95, 5, true, true},
		{"last page", 5, 20, 95, 5, false, true},
		{"exact fit", 2, 10, 20, 2, false, true},
		{"empty result", 1, 20, 0, 0, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPagination(tt.page, tt.limit, tt.total)
			assert.Equal(t, tt.wantPage, p.Pages)
			assert.Equal(t, tt.wantNext, p.HasNext)
			assert.Equal(t, tt.wantPrev, p.HasPrev)
			assert.Equal(t, tt.total, p.Total)
		})
	}
}
