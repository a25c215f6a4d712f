// Package fetcher HTTP 요청 수행을 위한 데코레이터 체인 방식의 클라이언트 모음입니다.
//
// Fetcher 인터페이스를 중심으로 상태 코드 검증, 재시도, 요청 속도 제한 기능을
// 미들웨어처럼 조합할 수 있도록 설계되었습니다.
//
//	f := fetcher.NewThrottleFetcher(
//	    fetcher.NewRetryFetcher(
//	        fetcher.NewStatusCodeFetcher(fetcher.NewHTTPFetcher(30*time.Second)),
//	        3, time.Second, 30*time.Second,
//	    ),
//	    rate.Limit(2), 1,
//	)
package fetcher

import (
	"context"
	"io"
	"net/http"
)

// component Fetcher 로깅용 컴포넌트 이름
const component = "pkg.fetcher"

// Fetcher HTTP 요청을 수행하는 핵심 인터페이스입니다.
//
// 구현 시 주의사항:
//   - 반환된 응답 객체의 Body는 반드시 호출자가 닫아야 합니다.
//   - Context 취소 시 즉시 요청을 중단하고 적절한 에러를 반환해야 합니다.
type Fetcher interface {
	Do(req *http.Request) (*http.Response, error)
}

// Get 지정된 URL로 HTTP GET 요청을 전송하는 헬퍼 함수입니다.
// 요청 실패 시 커넥션 재사용을 위해 응답 객체의 Body를 자동으로 비우고 닫습니다.
func Get(ctx context.Context, f Fetcher, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.Do(req)
	if err != nil {
		if resp != nil {
			drainAndCloseBody(resp.Body)
		}
		return nil, err
	}

	return resp, nil
}

// maxDrainBytes 커넥션 재사용을 위해 응답 객체의 Body를 비울 때 읽을 최대 바이트 수 (64KB)
// 이를 초과하는 응답은 완전히 읽히지 않으므로 해당 커넥션은 재사용되지 않습니다.
// (거대한 응답으로 인한 메모리 고갈 방지를 위한 트레이드오프)
const maxDrainBytes = 64 * 1024

// drainAndCloseBody HTTP 커넥션 재사용을 위해 응답 객체의 Body를 안전하게 비우고 닫습니다.
//
// HTTP Keep-Alive 커넥션 풀링을 위해서는 응답 객체의 Body를 완전히 읽어야 합니다.
// Body를 읽지 않고 닫으면 커넥션이 재사용되지 않아 매번 새 TCP 연결이 필요합니다.
func drainAndCloseBody(body io.ReadCloser) {
	if body == nil {
		return
	}
	defer body.Close()

	_, _ = io.Copy(io.Discard, io.LimitReader(body, maxDrainBytes))
}
