package fetcher

import (
	"net/http"

	"golang.org/x/time/rate"
)

// ThrottleFetcher 토큰 버킷 알고리즘으로 요청 속도를 제한하는 미들웨어입니다.
//
// 외부 API의 호출 제한 정책(예: Shopify REST Admin API의 초당 2회 제한)을 준수하기 위해 사용합니다.
// 제한을 초과한 요청은 실패하지 않고 토큰이 확보될 때까지 대기하며,
// 대기 중 Context가 취소되면 즉시 에러를 반환합니다.
type ThrottleFetcher struct {
	delegate Fetcher
	limiter  *rate.Limiter
}

var _ Fetcher = (*ThrottleFetcher)(nil)

// NewThrottleFetcher 새로운 ThrottleFetcher 인스턴스를 생성합니다.
//
// 매개변수:
//   - limit: 초당 허용 요청 수
//   - burst: 순간적으로 허용되는 최대 요청 수 (1 미만이면 1로 보정)
func NewThrottleFetcher(delegate Fetcher, limit rate.Limit, burst int) *ThrottleFetcher {
	if burst < 1 {
		burst = 1
	}

	return &ThrottleFetcher{
		delegate: delegate,
		limiter:  rate.NewLimiter(limit, burst),
	}
}

// Do 토큰이 확보될 때까지 대기한 후 HTTP 요청을 수행합니다.
func (f *ThrottleFetcher) Do(req *http.Request) (*http.Response, error) {
	if err := f.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return f.delegate.Do(req)
}
