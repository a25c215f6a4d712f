package system

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darkkaiser/shopping-feed-server/internal/pkg/version"
	"github.com/darkkaiser/shopping-feed-server/internal/service/api/constants"
	"github.com/darkkaiser/shopping-feed-server/internal/service/api/model/system"
	apperrors "github.com/darkkaiser/shopping-feed-server/internal/pkg/errors"
)

// fakeSender 헬스체크 결과를 제어할 수 있는 테스트용 알림 발송자 구현체
type fakeSender struct {
	healthErr error
}

func (f *fakeSender) NotifyWithTitle(_ string, _ string, _ string, _ bool) error { return nil }
func (f *fakeSender) NotifyDefault(_ string) error                              { return nil }
func (f *fakeSender) NotifyDefaultWithError(_ string) error                     { return nil }
func (f *fakeSender) Health() error                                             { return f.healthErr }

func serveRequest(t *testing.T, path string, handler echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, handler(c))

	return rec
}

// =============================================================================
// HealthCheckHandler 검증
// =============================================================================

// TestHealthCheckHandler_정상 모든 의존성이 정상인 경우의 응답을 검증합니다.
func TestHealthCheckHandler_정상(t *testing.T) {
	t.Parallel()

	h := NewHandler(&fakeSender{}, version.Get())

	rec := serveRequest(t, "/health", h.HealthCheckHandler)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp system.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, constants.HealthStatusHealthy, resp.Status)
	assert.GreaterOrEqual(t, resp.Uptime, int64(0))

	dep, ok := resp.Dependencies[constants.DependencyNotificationService]
	require.True(t, ok)
	assert.Equal(t, constants.HealthStatusHealthy, dep.Status)
}

// TestHealthCheckHandler_의존성비정상 알림 서비스 장애 시 전체 상태가 unhealthy로 보고되는지 검증합니다.
func TestHealthCheckHandler_의존성비정상(t *testing.T) {
	t.Parallel()

	h := NewHandler(&fakeSender{
		healthErr: apperrors.New(apperrors.Unavailable, "Notification 서비스가 실행 중이 아닙니다"),
	}, version.Get())

	rec := serveRequest(t, "/health", h.HealthCheckHandler)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp system.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, constants.HealthStatusUnhealthy, resp.Status)

	dep := resp.Dependencies[constants.DependencyNotificationService]
	assert.Equal(t, constants.HealthStatusUnhealthy, dep.Status)
	assert.Contains(t, dep.Message, "실행 중이 아닙니다")
}

// =============================================================================
// VersionHandler 검증
// =============================================================================

// TestVersionHandler 빌드 정보가 그대로 반환되는지 검증합니다.
func TestVersionHandler(t *testing.T) {
	t.Parallel()

	h := NewHandler(&fakeSender{}, version.Info{
		Version:     "abc1234",
		BuildDate:   "2026-08-01T14:00:00Z",
		BuildNumber: "42",
	})

	rec := serveRequest(t, "/version", h.VersionHandler)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp system.VersionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "abc1234", resp.Version)
	assert.Equal(t, "2026-08-01T14:00:00Z", resp.BuildDate)
	assert.Equal(t, "42", resp.BuildNumber)
	assert.NotEmpty(t, resp.GoVersion)
}
