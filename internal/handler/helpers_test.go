package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func testContext(target string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	return c
}

func TestPagination(t *testing.T) {
	tests := []struct {
		name      string
		target    string
		wantLimit int
		wantSkip  int
	}{
		{name: "empty", target: "/x", wantLimit: 0, wantSkip: 0},
		{name: "skip", target: "/x?limit=5&skip=10", wantLimit: 5, wantSkip: 10},
		{name: "offset alias", target: "/x?offset=7", wantLimit: 0, wantSkip: 7},
		{name: "skip wins over offset", target: "/x?skip=2&offset=7", wantLimit: 0, wantSkip: 2},
		{name: "garbage", target: "/x?limit=abc", wantLimit: 0, wantSkip: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limit, skip := pagination(testContext(tt.target))
			assert.Equal(t, tt.wantLimit, limit)
			assert.Equal(t, tt.wantSkip, skip)
		})
	}
}

func TestFieldFilters(t *testing.T) {
	got := fieldFilters(testContext("/x?field.featured=true&field.hidden=false&field.rank=2.5&field.role=CEO&status=draft"))

	assert.Equal(t, map[string]interface{}{
		"featured": true,
		"hidden":   false,
		"rank":     2.5,
		"role":     "CEO",
	}, got)
}

func TestFieldFilters_None(t *testing.T) {
	assert.Nil(t, fieldFilters(testContext("/x?status=draft")))
}
