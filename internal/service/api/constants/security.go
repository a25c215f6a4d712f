package constants

import "time"

// 서버 설정 기본값 상수입니다.
const (
	// DefaultRequestTimeout HTTP 요청 처리의 기본 타임아웃 시간 (60초)
	// 카탈로그 전체를 수집하는 피드 생성 요청도 이 시간 안에 완료되어야 합니다.
	DefaultRequestTimeout = 60 * time.Second

	// DefaultReadTimeout 요청 본문 읽기 최대 대기 시간 (30초)
	DefaultReadTimeout = 30 * time.Second

	// DefaultReadHeaderTimeout HTTP 헤더 읽기 최대 대기 시간 (10초)
	// Slowloris DoS 공격을 방어하기 위해 헤더를 매우 느리게 전송하는
	// 악의적인 클라이언트의 연결 고갈 공격을 방지합니다.
	DefaultReadHeaderTimeout = 10 * time.Second

	// DefaultWriteTimeout 응답 쓰기 최대 대기 시간 (90초)
	// 피드 응답은 수 MB에 이를 수 있으므로 요청 타임아웃보다 여유 있게 설정합니다.
	DefaultWriteTimeout = 90 * time.Second

	// DefaultIdleTimeout Keep-Alive 연결 유휴 최대 대기 시간 (120초)
	DefaultIdleTimeout = 120 * time.Second

	// DefaultRateLimitPerSecond IP별 초당 허용 요청 수
	DefaultRateLimitPerSecond = 20

	// DefaultRateLimitBurst IP별 버스트 허용량
	DefaultRateLimitBurst = 40

	// DefaultMaxBodySize 요청 본문의 최대 크기 (128KB)
	// DoS 공격 방지 및 메모리 보호를 위해 제한합니다.
	DefaultMaxBodySize = "128K"
)

// SensitiveQueryParams 로그 기록 시 마스킹 처리해야 할 쿼리 파라미터 목록입니다.
var SensitiveQueryParams = []string{
	"access_token",
	"api_key",
	"password",
	"token",
	"secret",
}
