package shopify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestNextPageURL Link 헤더에서 다음 페이지 URL이 정확히 추출되는지 검증합니다.
func TestNextPageURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{
			name:   "빈 헤더",
			header: "",
			want:   "",
		},
		{
			name:   "next 항목만 존재",
			header: `<https://s.myshopify.com/admin/api/2024-07/products.json?page_info=abc&limit=250>; rel="next"`,
			want:   "https://s.myshopify.com/admin/api/2024-07/products.json?page_info=abc&limit=250",
		},
		{
			name:   "previous와 next가 함께 존재",
			header: `<https://s.myshopify.com/products.json?page_info=prev>; rel="previous", <https://s.myshopify.com/products.json?page_info=next>; rel="next"`,
			want:   "https://s.myshopify.com/products.json?page_info=next",
		},
		{
			name:   "previous만 존재 (마지막 페이지)",
			header: `<https://s.myshopify.com/products.json?page_info=prev>; rel="previous"`,
			want:   "",
		},
		{
			name:   "rel 속성 없는 항목",
			header: `<https://s.myshopify.com/products.json>`,
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, nextPageURL(tt.header))
		})
	}
}
