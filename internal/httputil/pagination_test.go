package httputil

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantOffset int
		wantLimit  int
		wantErr    bool
	}{
		{"defaults", "", 0, 50, false},
		{"explicit values", "offset=10&limit=25", 10, 25, false},
		{"max limit", "limit=100", 0, 100, false},
		{"limit too large", "limit=101", 0, 0, true},
		{"negative offset", "offset=-1", 0, 0, true},
		{"zero limit", "limit=0", 0, 0, true},
		{"non-numeric offset", "offset=abc", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(recorder)
			c.Request = httptest.NewRequest("GET", "/?"+tt.query, nil)

			offset, limit, err := ParsePagination(c)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantOffset, offset)
			assert.Equal(t, tt.wantLimit, limit)
		})
	}
}
