package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darkkaiser/shopping-feed-server/internal/service/api/constants"
	"github.com/darkkaiser/shopping-feed-server/internal/service/api/model/response"
)

func newTestHTTPServer() *echo.Echo {
	e := NewHTTPServer(HTTPServerConfig{
		Debug:        false,
		AllowOrigins: []string{"*"},
	})
	e.GET("/test", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	return e
}

// =============================================================================
// NewHTTPServer 검증
// =============================================================================

// TestNewHTTPServer_존재하지않는라우트 404 에러가 표준 JSON 형식으로 반환되는지 검증합니다.
func TestNewHTTPServer_존재하지않는라우트(t *testing.T) {
	t.Parallel()

	e := newTestHTTPServer()

	req := httptest.NewRequest(http.MethodGet, "/unknown", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp response.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, http.StatusNotFound, resp.ResultCode)
	assert.Equal(t, constants.ErrMsgNotFound, resp.Message)
}

// TestNewHTTPServer_Server헤더제거 응답에서 서버 스택 정보가 노출되지 않는지 검증합니다.
func TestNewHTTPServer_Server헤더제거(t *testing.T) {
	t.Parallel()

	e := newTestHTTPServer()

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get(echo.HeaderServer))
}

// TestNewHTTPServer_RequestID 모든 응답에 X-Request-ID 헤더가 포함되는지 검증합니다.
func TestNewHTTPServer_RequestID(t *testing.T) {
	t.Parallel()

	e := newTestHTTPServer()

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

// TestNewHTTPServer_보안헤더 Secure 미들웨어의 보안 헤더가 적용되는지 검증합니다.
func TestNewHTTPServer_보안헤더(t *testing.T) {
	t.Parallel()

	e := newTestHTTPServer()

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, "nosniff", rec.Header().Get(echo.HeaderXContentTypeOptions))
}

// TestNewHTTPServer_패닉복구 핸들러의 패닉이 500 응답으로 복구되는지 검증합니다.
func TestNewHTTPServer_패닉복구(t *testing.T) {
	t.Parallel()

	e := newTestHTTPServer()
	e.GET("/panic", func(_ echo.Context) error {
		panic("핸들러 패닉")
	})

	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp response.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusInternalServerError, resp.ResultCode)
}
