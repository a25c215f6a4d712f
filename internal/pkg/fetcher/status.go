package fetcher

import (
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"

	apperrors "github.com/darkkaiser/shopping-feed-server/internal/pkg/errors"
)

// maxBodySnippetBytes 에러 메시지에 포함할 응답 본문의 최대 크기 (4KB)
const maxBodySnippetBytes = 4 * 1024

// HTTPStatusError HTTP 요청 실패 시 상태 코드와 응답 정보를 포함하는 구조화된 에러입니다.
//
// 상태 코드, URL, 응답 헤더, 응답 본문 일부를 구조화된 필드로 제공하여
// 호출자가 에러 상황을 정확히 파악하고 적절한 대응(재시도, 로깅, 알림 등)을 할 수 있도록 돕습니다.
type HTTPStatusError struct {
	// StatusCode 서버가 반환한 HTTP 상태 코드입니다.
	StatusCode int

	// Status HTTP 상태 코드에 대응하는 텍스트 설명입니다. (예: "404 Not Found")
	Status string

	// URL 요청을 보낸 대상 URL입니다. 민감한 쿼리 파라미터는 마스킹됩니다.
	URL string

	// Header 서버가 반환한 HTTP 응답 헤더입니다. 재시도 정책(Retry-After) 판단에 사용됩니다.
	Header http.Header

	// BodySnippet 응답 본문의 일부(최대 4KB)입니다. 에러 원인 파악 용도로 사용됩니다.
	BodySnippet string

	// Cause 이 HTTP 에러의 근본 원인이 되는 내부 도메인 에러입니다.
	Cause error
}

// Error 표준 error 인터페이스를 구현합니다.
func (e *HTTPStatusError) Error() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "HTTP 요청 실패 [%s]", e.Status)
	if e.URL != "" {
		fmt.Fprintf(&sb, " (url: %s)", e.URL)
	}
	if e.BodySnippet != "" {
		fmt.Fprintf(&sb, ", 응답: %s", e.BodySnippet)
	}

	return sb.String()
}

// Unwrap 에러 체이닝을 위해 내부 도메인 에러를 반환합니다.
func (e *HTTPStatusError) Unwrap() error {
	return e.Cause
}

// StatusCodeFetcher HTTP 응답 상태 코드를 확인하고, 허용된 코드가 아니면 에러로 처리하는 미들웨어입니다.
type StatusCodeFetcher struct {
	delegate        Fetcher
	allowedStatuses []int
}

var _ Fetcher = (*StatusCodeFetcher)(nil)

// NewStatusCodeFetcher 새로운 StatusCodeFetcher 인스턴스를 생성합니다.
// 허용할 상태 코드를 지정하지 않으면 200 OK만 허용합니다.
func NewStatusCodeFetcher(delegate Fetcher, allowedStatuses ...int) *StatusCodeFetcher {
	return &StatusCodeFetcher{
		delegate:        delegate,
		allowedStatuses: allowedStatuses,
	}
}

// Do HTTP 요청을 수행하고 응답 상태 코드를 검사합니다.
// 허용되지 않은 상태 코드인 경우 Body를 닫고 HTTPStatusError를 반환합니다.
func (f *StatusCodeFetcher) Do(req *http.Request) (*http.Response, error) {
	resp, err := f.delegate.Do(req)
	if err != nil {
		return resp, err
	}

	allowed := f.allowedStatuses
	if len(allowed) == 0 {
		allowed = []int{http.StatusOK}
	}

	if slices.Contains(allowed, resp.StatusCode) {
		return resp, nil
	}

	// 에러 판단에 도움이 되도록 응답 본문 일부를 캡처한 후 Body를 닫습니다.
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodySnippetBytes))
	drainAndCloseBody(resp.Body)

	var errType apperrors.ErrorType
	switch {
	case resp.StatusCode == http.StatusNotFound:
		errType = apperrors.NotFound
	case resp.StatusCode == http.StatusRequestTimeout:
		errType = apperrors.Timeout
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		errType = apperrors.Unavailable
	default:
		errType = apperrors.ExecutionFailed
	}

	return nil, &HTTPStatusError{
		StatusCode:  resp.StatusCode,
		Status:      resp.Status,
		URL:         redactURL(req.URL),
		Header:      resp.Header.Clone(),
		BodySnippet: strings.TrimSpace(string(snippet)),
		Cause:       apperrors.Newf(errType, "허용되지 않은 HTTP 상태 코드: %d", resp.StatusCode),
	}
}
