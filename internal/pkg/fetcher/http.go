package fetcher

import (
	"net/http"
	"time"
)

// defaultTimeout 별도의 타임아웃이 지정되지 않은 경우 적용되는 기본값
const defaultTimeout = 30 * time.Second

// defaultUserAgent 요청에 User-Agent가 없는 경우 자동으로 추가되는 기본값
const defaultUserAgent = "shopping-feed-server/1.0"

// HTTPFetcher 타임아웃 및 User-Agent 자동 추가 기능이 내장된 HTTP 클라이언트 구현체입니다.
type HTTPFetcher struct {
	client *http.Client
}

// 컴파일 타임에 인터페이스 구현 여부를 검증합니다.
var _ Fetcher = (*HTTPFetcher)(nil)

// NewHTTPFetcher 지정된 타임아웃 설정이 포함된 새로운 HTTPFetcher 인스턴스를 생성합니다.
// timeout이 0 이하인 경우 기본 타임아웃(30초)이 적용됩니다.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &HTTPFetcher{
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Do HTTP 요청을 실행합니다.
// 요청 헤더에 User-Agent가 없는 경우 기본값을 자동으로 추가합니다.
func (f *HTTPFetcher) Do(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", defaultUserAgent)
	}
	return f.client.Do(req)
}
