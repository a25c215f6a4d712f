package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRateLimitedServer(requestsPerSecond int, burst int) *echo.Echo {
	e := echo.New()
	e.Use(RateLimiting(requestsPerSecond, burst))
	e.GET("/test", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	return e
}

// =============================================================================
// RateLimiting 검증
// =============================================================================

// TestRateLimiting_버스트초과시거부 버스트 허용량을 초과한 요청이 429로 거부되는지 검증합니다.
func TestRateLimiting_버스트초과시거부(t *testing.T) {
	t.Parallel()

	e := newRateLimitedServer(1, 2)

	var lastCode int
	var rejected *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.RemoteAddr = "203.0.113.10:1234"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		lastCode = rec.Code
		if rec.Code == http.StatusTooManyRequests {
			rejected = rec
		}
	}

	require.Equal(t, http.StatusTooManyRequests, lastCode)
	require.NotNil(t, rejected)
	assert.Equal(t, "1", rejected.Header().Get("Retry-After"))
}

// TestRateLimiting_IP별독립제한 서로 다른 IP는 독립적인 제한을 갖는지 검증합니다.
func TestRateLimiting_IP별독립제한(t *testing.T) {
	t.Parallel()

	e := newRateLimitedServer(1, 1)

	// 첫 번째 IP의 토큰 소진
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.RemoteAddr = "203.0.113.10:1234"
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/test", nil)
	req.RemoteAddr = "203.0.113.10:1234"
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	// 다른 IP는 여전히 허용
	req = httptest.NewRequest(http.MethodGet, "/test", nil)
	req.RemoteAddr = "203.0.113.20:1234"
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

// TestRateLimiting_잘못된설정 설정값이 0 이하인 경우 패닉이 발생하는지 검증합니다.
func TestRateLimiting_잘못된설정(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { RateLimiting(0, 10) })
	assert.Panics(t, func() { RateLimiting(10, 0) })
}
