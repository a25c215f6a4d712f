package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/darkkaiser/shopping-feed-server/internal/pkg/errors"
)

// fakeGenerator 테스트용 피드 생성기 구현체
type fakeGenerator struct {
	document string
	err      error
}

func (f *fakeGenerator) Generate(_ context.Context) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.document, nil
}

// fakeShopNames 테스트용 쇼핑몰 이름 제공자 구현체
type fakeShopNames struct {
	name string
	err  error

	mu    sync.Mutex
	calls int
}

func (f *fakeShopNames) FetchShopName(_ context.Context) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.err != nil {
		return "", f.err
	}
	return f.name, nil
}

func (f *fakeShopNames) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeSender 발송 요청을 기록하는 테스트용 알림 발송자 구현체
type fakeSender struct {
	mu            sync.Mutex
	errorMessages []string
}

func (f *fakeSender) NotifyWithTitle(_ string, _ string, _ string, _ bool) error { return nil }
func (f *fakeSender) NotifyDefault(_ string) error                              { return nil }
func (f *fakeSender) Health() error                                             { return nil }

func (f *fakeSender) NotifyDefaultWithError(message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errorMessages = append(f.errorMessages, message)
	return nil
}

func (f *fakeSender) errorMessageCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.errorMessages)
}

func serveFeedRequest(t *testing.T, h *Handler) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/feed/google-shopping.csv", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.GoogleShoppingFeedHandler(c))

	return rec
}

// =============================================================================
// GoogleShoppingFeedHandler 검증
// =============================================================================

// TestGoogleShoppingFeedHandler_성공 피드 생성 성공 시 응답 형식을 검증합니다.
func TestGoogleShoppingFeedHandler_성공(t *testing.T) {
	t.Parallel()

	h := NewHandler(
		&fakeGenerator{document: "id,title\nSKU-1,Lotion"},
		&fakeShopNames{name: "Acme Store"},
		&fakeSender{},
	)

	rec := serveFeedRequest(t, h)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, feedContentType, rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, `attachment; filename="acme-store-google-shopping-feed.csv"`, rec.Header().Get(echo.HeaderContentDisposition))
	assert.Equal(t, "id,title\nSKU-1,Lotion", rec.Body.String())
}

// TestGoogleShoppingFeedHandler_생성실패 피드 생성 실패 시 text/plain 오류 응답과 알림 발송을 검증합니다.
func TestGoogleShoppingFeedHandler_생성실패(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	h := NewHandler(
		&fakeGenerator{err: apperrors.New(apperrors.Unavailable, "카탈로그 소스 장애")},
		&fakeShopNames{name: "Acme Store"},
		sender,
	)

	rec := serveFeedRequest(t, h)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), echo.MIMETextPlain)
	assert.Contains(t, rec.Body.String(), "카탈로그 소스 장애")

	// 불완전한 피드가 포함되지 않아야 함
	assert.NotContains(t, rec.Body.String(), "id,title")

	assert.Equal(t, 1, sender.errorMessageCount())
}

// TestGoogleShoppingFeedHandler_쇼핑몰이름조회실패 이름 조회 실패 시 기본 파일명으로 피드를 제공하는지 검증합니다.
func TestGoogleShoppingFeedHandler_쇼핑몰이름조회실패(t *testing.T) {
	t.Parallel()

	h := NewHandler(
		&fakeGenerator{document: "id,title"},
		&fakeShopNames{err: apperrors.New(apperrors.Unavailable, "이름 조회 실패")},
		&fakeSender{},
	)

	rec := serveFeedRequest(t, h)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="google-shopping-feed.csv"`, rec.Header().Get(echo.HeaderContentDisposition))
}

// TestGoogleShoppingFeedHandler_파일명캐시 쇼핑몰 이름이 최초 1회만 조회되는지 검증합니다.
func TestGoogleShoppingFeedHandler_파일명캐시(t *testing.T) {
	t.Parallel()

	shopNames := &fakeShopNames{name: "Acme Store"}
	h := NewHandler(&fakeGenerator{document: "id,title"}, shopNames, &fakeSender{})

	serveFeedRequest(t, h)
	serveFeedRequest(t, h)
	serveFeedRequest(t, h)

	assert.Equal(t, 1, shopNames.callCount())
}

// TestNewHandler_필수인자검증 필수 의존성이 없는 경우 패닉이 발생하는지 검증합니다.
func TestNewHandler_필수인자검증(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		NewHandler(nil, &fakeShopNames{}, &fakeSender{})
	})
	assert.Panics(t, func() {
		NewHandler(&fakeGenerator{}, &fakeShopNames{}, nil)
	})
}
