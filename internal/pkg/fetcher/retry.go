package fetcher

import (
	"context"
	"errors"
	"math/rand/v2"
	"net/http"
	"strconv"
	"time"

	apperrors "github.com/darkkaiser/shopping-feed-server/internal/pkg/errors"
	applog "github.com/darkkaiser/shopping-feed-server/pkg/log"
)

// RetryFetcher 일시적 오류 발생 시 지수 백오프(Exponential Backoff)로 재시도하는 미들웨어입니다.
//
// 재시도 정책:
//   - 멱등 메서드(GET, HEAD 등)만 재시도합니다. 비멱등 메서드(POST, PATCH)는
//     재시도 시 데이터 중복 생성/수정 위험이 있으므로 재시도를 비활성화합니다.
//   - 429, 408, 5xx(영구적 오류인 501, 505, 511 제외) 및 네트워크 오류에 대해 재시도합니다.
//   - 서버가 Retry-After 헤더로 재시도 시점을 명시한 경우 이를 우선 적용하되,
//     설정된 최대 대기 시간을 초과하면 재시도를 포기하고 즉시 에러를 반환합니다.
//   - 동시 재시도 집중을 방지하기 위해 지터(Jitter)를 적용합니다.
type RetryFetcher struct {
	delegate Fetcher

	maxRetries    int
	minRetryDelay time.Duration
	maxRetryDelay time.Duration
}

var _ Fetcher = (*RetryFetcher)(nil)

// NewRetryFetcher 새로운 RetryFetcher 인스턴스를 생성합니다.
func NewRetryFetcher(delegate Fetcher, maxRetries int, minRetryDelay, maxRetryDelay time.Duration) *RetryFetcher {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if minRetryDelay <= 0 {
		minRetryDelay = time.Second
	}
	if maxRetryDelay < minRetryDelay {
		maxRetryDelay = minRetryDelay
	}

	return &RetryFetcher{
		delegate:      delegate,
		maxRetries:    maxRetries,
		minRetryDelay: minRetryDelay,
		maxRetryDelay: maxRetryDelay,
	}
}

// Do HTTP 요청을 수행하고, 일시적 오류 발생 시 설정된 횟수만큼 재시도합니다.
func (f *RetryFetcher) Do(req *http.Request) (*http.Response, error) {
	effectiveMaxRetries := f.maxRetries

	// 비멱등 메서드는 재시도 비활성화
	if !isIdempotentMethod(req.Method) {
		effectiveMaxRetries = 0
	}

	// 재시도 시 요청 본문을 다시 읽어야 하므로, GetBody가 없으면 재시도만 비활성화하고 요청은 계속 진행합니다.
	if req.Body != nil && req.GetBody == nil {
		effectiveMaxRetries = 0
	}

	var lastErr error

	for attempt := 0; attempt <= effectiveMaxRetries; attempt++ {
		if attempt > 0 {
			delay, giveUpErr := f.nextDelay(attempt, lastErr)
			if giveUpErr != nil {
				return nil, giveUpErr
			}

			applog.WithComponentAndFields(component, applog.Fields{
				"url":         redactURL(req.URL),
				"retry":       attempt,
				"max_retries": effectiveMaxRetries,
				"delay":       delay.String(),
				"error":       lastErr.Error(),
			}).Warn("재시도 대기 중: 일시적 오류로 인해 요청 재시도를 준비합니다")

			timer := time.NewTimer(delay)
			select {
			case <-req.Context().Done():
				timer.Stop()
				return nil, req.Context().Err()
			case <-timer.C:
			}

			// 이전 시도에서 소진된 Body를 복구합니다. 원본 요청 객체를 변경하지 않도록 복제본을 사용합니다.
			if req.GetBody != nil {
				body, err := req.GetBody()
				if err != nil {
					return nil, apperrors.Wrap(err, apperrors.Internal, "재시도를 위한 요청 본문 재생성 실패")
				}
				req = req.Clone(req.Context())
				req.Body = body
			}
		}

		resp, err := f.delegate.Do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !isRetriable(err) {
			return nil, err
		}
	}

	return nil, lastErr
}

// nextDelay 다음 재시도까지 대기할 시간을 계산합니다.
// Retry-After 헤더가 최대 대기 시간을 초과하는 경우 재시도를 포기하는 에러를 반환합니다.
func (f *RetryFetcher) nextDelay(attempt int, lastErr error) (time.Duration, error) {
	// 지수 백오프: 재시도 횟수가 늘어날수록 대기 시간을 2배씩 증가시켜 서버 부하를 줄입니다.
	delay := min(f.minRetryDelay*time.Duration(1<<(attempt-1)), f.maxRetryDelay)

	// 지터: 모든 클라이언트가 동시에 재시도하는 것을 방지하기 위해 무작위성을 추가합니다.
	if delay > 0 {
		delay = time.Duration(rand.Int64N(int64(delay) + 1))
	}
	if delay < f.minRetryDelay {
		delay = f.minRetryDelay
	}

	// 서버가 Retry-After 헤더로 재시도 시점을 명시한 경우 이를 우선 적용합니다.
	var statusErr *HTTPStatusError
	if errors.As(lastErr, &statusErr) {
		if retryAfter := statusErr.Header.Get("Retry-After"); retryAfter != "" {
			if retryAfterDelay, ok := parseRetryAfter(retryAfter); ok {
				if retryAfterDelay > f.maxRetryDelay {
					return 0, apperrors.Newf(apperrors.Unavailable,
						"서버가 요구한 재시도 대기 시간(%s)이 최대 허용치(%s)를 초과하여 재시도를 중단합니다",
						retryAfterDelay, f.maxRetryDelay)
				}
				delay = retryAfterDelay
			}
		}
	}

	return delay, nil
}

// isIdempotentMethod HTTP 메서드의 멱등성 여부를 반환합니다.
func isIdempotentMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodPut, http.MethodDelete:
		return true
	default:
		return false
	}
}

// isRetriable 재시도를 통해 성공할 가능성이 있는 에러인지 판단합니다.
func isRetriable(err error) bool {
	// 컨텍스트 취소/타임아웃은 호출자의 의도이므로 재시도하지 않습니다.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case http.StatusTooManyRequests, http.StatusRequestTimeout:
			return true
		// 501, 505, 511은 영구적인 문제이므로 재시도해도 성공할 가능성이 낮습니다.
		case http.StatusNotImplemented, http.StatusHTTPVersionNotSupported, http.StatusNetworkAuthenticationRequired:
			return false
		default:
			return statusErr.StatusCode >= 500
		}
	}

	// 그 외 전송 계층 에러(커넥션 리셋, DNS 일시 장애 등)는 재시도 대상입니다.
	return true
}

// parseRetryAfter Retry-After 헤더 값을 대기 시간으로 변환합니다.
// 초 단위 숫자 형식과 HTTP-date 형식을 모두 지원합니다.
func parseRetryAfter(value string) (time.Duration, bool) {
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}

	if t, err := http.ParseTime(value); err == nil {
		d := time.Until(t)
		if d < 0 {
			d = 0
		}
		return d, true
	}

	return 0, false
}
