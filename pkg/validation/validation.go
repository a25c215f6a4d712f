// Package validation 설정값 검증을 위한 공용 유틸리티 함수를 제공합니다.
// 외부 라이브러리(validator)의 커스텀 검증 함수에서 실제 검증 로직으로 사용됩니다.
package validation

import (
	"fmt"
	"time"
)

// ValidatePort TCP 네트워크 포트 번호의 유효성을 검사합니다. 유효 범위는 1-65535입니다.
func ValidatePort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("포트 번호는 1-65535 범위여야 합니다 (입력값: %d)", port)
	}
	return nil
}

// ValidateDuration duration 문자열의 유효성을 검사합니다.
func ValidateDuration(d string) error {
	if _, err := time.ParseDuration(d); err != nil {
		return fmt.Errorf("잘못된 duration 형식입니다: %q (예: 2s, 100ms, 1m)", d)
	}
	return nil
}
