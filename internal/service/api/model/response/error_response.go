// Package response API 공통 응답 모델을 정의합니다.
package response

// ErrorResponse API 오류 응답
type ErrorResponse struct {
	// ResultCode HTTP 상태 코드 (예: 400, 429, 500)
	ResultCode int `json:"result_code" example:"500"`

	// Message 에러 메시지
	Message string `json:"message" example:"내부 서버 오류가 발생했습니다"`
}
