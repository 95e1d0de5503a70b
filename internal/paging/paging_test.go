package paging

import (
	"net/http/httptest"
	"testing"

	"buyback-pos/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		page    int
		perPage int
		want    Params
	}{
		{"omitted", 0, 0, Params{1, 20}},
		{"negative page", -3, 10, Params{1, 10}},
		{"explicit", 4, 50, Params{4, 50}},
		{"per page capped", 2, 500, Params{2, MaxPerPage}},
		{"negative per page", 1, -1, Params{1, 20}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.page, tt.perPage))
		})
	}
}

func TestFromQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		query string
		want  Params
	}{
		{"", Params{1, 20}},
		{"?page=0", Params{1, 20}},
		{"?page=abc&per_page=xyz", Params{1, 20}},
		{"?page=3", Params{3, 20}},
		{"?page=2&per_page=5", Params{2, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest("GET", "/x"+tt.query, nil)
			assert.Equal(t, tt.want, FromQuery(c, 20))
		})
	}
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 1, TotalPages(0, 20))
	assert.Equal(t, 1, TotalPages(20, 20))
	assert.Equal(t, 2, TotalPages(21, 20))
	assert.Equal(t, 5, TotalPages(100, 20))
}

func TestResolve(t *testing.T) {
	assert.Equal(t, 7, Resolve(models.Page[int]{TotalPages: 7, Total: 1000}, 20))
	assert.Equal(t, 4, Resolve(models.Page[int]{PageCount: 4}, 20))
	assert.Equal(t, 3, Resolve(models.Page[int]{Total: 41}, 20))
	assert.Equal(t, 2, Resolve(models.Page[int]{TotalItems: 21}, 20))
	assert.Equal(t, 1, Resolve(models.Page[int]{}, 20))
}

func TestWindow(t *testing.T) {
	tests := []struct {
		page, total int
		want        []int
	}{
		{1, 1, []int{1}},
		{1, 2, []int{1, 2}},
		{1, 10, []int{1, 2, 3}},
		{2, 10, []int{1, 2, 3}},
		{5, 10, []int{4, 5, 6}},
		{10, 10, []int{8, 9, 10}},
		{12, 10, []int{8, 9, 10}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Window(tt.page, tt.total, 3), "page %d of %d", tt.page, tt.total)
	}
}

func TestNewView(t *testing.T) {
	v := NewView(1, 3)
	assert.False(t, v.HasPrev)
	assert.True(t, v.HasNext)
	assert.Equal(t, 2, v.Next)

	v = NewView(3, 3)
	assert.True(t, v.HasPrev)
	assert.False(t, v.HasNext)
	assert.Equal(t, []int{1, 2, 3}, v.Numbers)
}
