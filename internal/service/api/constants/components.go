// Package constants API 서비스 전반에서 사용되는 상수를 정의합니다.
package constants

// 로깅 시 로그의 발생 위치(컴포넌트)를 식별하기 위한 상수입니다.
const (
	// ComponentService 서비스 로그의 컴포넌트 이름입니다.
	ComponentService = "api.service"

	// ComponentHandler 핸들러 로그의 컴포넌트 이름입니다.
	ComponentHandler = "api.handler"

	// ComponentMiddleware 미들웨어 로그의 컴포넌트 이름입니다.
	ComponentMiddleware = "api.middleware"

	// ComponentErrorHandler 에러 핸들러 로그의 컴포넌트 이름입니다.
	ComponentErrorHandler = "api.error_handler"
)
