package shopify_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darkkaiser/shopping-feed-server/internal/config"
	apperrors "github.com/darkkaiser/shopping-feed-server/internal/pkg/errors"
	"github.com/darkkaiser/shopping-feed-server/internal/pkg/fetcher"
	"github.com/darkkaiser/shopping-feed-server/internal/service/feed/shopify"
)

// newTestClient 로컬 테스트 서버를 대상으로 동작하는 Client를 생성합니다.
func newTestClient(serverURL string, maxPages int) *shopify.Client {
	cfg := &config.ShopifyConfig{
		AccessToken: "shpat_test_token",
		APIVersion:  "2024-07",
		PageSize:    250,
		MaxPages:    maxPages,
	}

	f := fetcher.NewStatusCodeFetcher(fetcher.NewHTTPFetcher(5 * time.Second))
	return shopify.NewClientWithFetcher(f, serverURL, cfg)
}

// productsPage 지정된 개수의 상품을 담은 products.json 응답 본문을 생성합니다.
func productsPage(startID, count int) string {
	body := `{"products":[`
	for i := range count {
		if i > 0 {
			body += ","
		}
		body += fmt.Sprintf(`{"id":%d,"title":"상품 %d","status":"active"}`, startID+i, startID+i)
	}
	return body + `]}`
}

// =============================================================================
// FetchAllProducts 검증
// =============================================================================

// TestFetchAllProducts_페이지네이션 N개 페이지가 순서대로 중복 없이 수집되는지 검증합니다.
// 마지막 페이지를 제외한 모든 페이지는 Link 헤더로 다음 페이지를 안내합니다.
func TestFetchAllProducts_페이지네이션(t *testing.T) {
	t.Parallel()

	const pages = 3
	const perPage = 5

	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 인증 헤더 확인
		assert.Equal(t, "shpat_test_token", r.Header.Get("X-Shopify-Access-Token"))

		page := 1
		if p := r.URL.Query().Get("page"); p != "" {
			_, err := fmt.Sscanf(p, "%d", &page)
			assert.NoError(t, err)
		} else {
			// 첫 페이지 요청에는 limit/fields 쿼리가 포함되어야 함
			assert.Equal(t, "250", r.URL.Query().Get("limit"))
			assert.NotEmpty(t, r.URL.Query().Get("fields"))
		}

		if page < pages {
			w.Header().Set("Link",
				fmt.Sprintf(`<%s/admin/api/2024-07/products.json?page=%d>; rel="next"`, server.URL, page+1))
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write([]byte(productsPage(page*100, perPage)))
	}))
	defer server.Close()

	products, err := newTestClient(server.URL, 10).FetchAllProducts(context.Background())
	require.NoError(t, err)

	// 전체 개수 = 페이지별 개수의 합
	require.Len(t, products, pages*perPage)

	// 페이지 순서 그대로, 중복 없이 수집되어야 함
	seen := make(map[int64]bool)
	prevID := int64(0)
	for _, p := range products {
		assert.False(t, seen[p.ID], "상품 ID가 중복 수집되었습니다: %d", p.ID)
		assert.Greater(t, p.ID, prevID, "상품 순서가 응답 순서와 다릅니다")
		seen[p.ID] = true
		prevID = p.ID
	}
}

// TestFetchAllProducts_단일페이지 Link 헤더가 없는 응답은 한 페이지로 종료되는지 검증합니다.
func TestFetchAllProducts_단일페이지(t *testing.T) {
	t.Parallel()

	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(productsPage(1, 3)))
	}))
	defer server.Close()

	products, err := newTestClient(server.URL, 10).FetchAllProducts(context.Background())
	require.NoError(t, err)

	assert.Len(t, products, 3)
	assert.Equal(t, 1, calls)
}

// TestFetchAllProducts_최대페이지초과 연속 토큰을 끝없이 반환하는 소스에 대해
// 최대 페이지 수 초과 시 ExecutionFailed 에러로 중단되는지 검증합니다.
func TestFetchAllProducts_최대페이지초과(t *testing.T) {
	t.Parallel()

	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		// 항상 다음 페이지를 안내하는 오동작 소스
		w.Header().Set("Link", fmt.Sprintf(`<%s/products.json?page_info=loop>; rel="next"`, server.URL))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(productsPage(1, 1)))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL, 3).FetchAllProducts(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ExecutionFailed))
}

// TestFetchAllProducts_인증실패전파 소스의 인증 오류가 호출자에게 전파되는지 검증합니다.
func TestFetchAllProducts_인증실패전파(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":"[API] Invalid API key or access token"}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL, 10).FetchAllProducts(context.Background())
	require.Error(t, err)

	var statusErr *fetcher.HTTPStatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
}

// =============================================================================
// FetchShopName 검증
// =============================================================================

// TestFetchShopName 스토어 이름이 shop.json 응답에서 추출되는지 검증합니다.
func TestFetchShopName(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/shop.json")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"shop":{"name":"Acme Store"}}`))
	}))
	defer server.Close()

	name, err := newTestClient(server.URL, 10).FetchShopName(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Acme Store", name)
}

// TestFetchShopName_이름누락 응답에 스토어 이름이 없으면 ParsingFailed 에러를 반환하는지 검증합니다.
func TestFetchShopName_이름누락(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"shop":{}}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL, 10).FetchShopName(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ParsingFailed))
}
