// Package notification 피드 생성 결과와 시스템 장애를 관리자에게 통지하는 알림 서비스 패키지입니다.
package notification

// Sender 알림 발송 기능을 제공하는 인터페이스입니다.
// API, 스케줄러와 같은 클라이언트는 이 인터페이스를 통해 알림 서비스를 사용합니다.
type Sender interface {
	// NotifyWithTitle 지정된 Notifier를 통해 제목을 포함한 알림 메시지를 발송합니다.
	// errorOccurred 플래그를 통해 해당 알림이 오류 상황에 대한 것인지 명시할 수 있습니다.
	//
	// 반환값은 발송 요청이 정상적으로 큐에 등록되었는지 여부이며, 실제 전송 결과와는 무관합니다.
	NotifyWithTitle(notifierID string, title string, message string, errorOccurred bool) error

	// NotifyDefault 시스템에 설정된 기본 Notifier를 통해 알림 메시지를 발송합니다.
	NotifyDefault(message string) error

	// NotifyDefaultWithError 시스템에 설정된 기본 Notifier를 통해 "오류" 성격의 알림 메시지를 발송합니다.
	// 시스템 내부 에러, 피드 생성 실패 등 관리자의 주의가 필요한 상황에 사용합니다.
	NotifyDefaultWithError(message string) error

	// Health 알림 서비스가 정상적으로 실행 중인지 확인합니다.
	Health() error
}

// Notifier 개별 알림 채널(텔레그램 등)의 인터페이스입니다.
type Notifier interface {
	// ID Notifier의 고유 식별자를 반환합니다.
	ID() string

	// Send 알림 메시지를 실제 채널로 전송합니다. 전송이 완료될 때까지 블로킹됩니다.
	Send(title string, message string, errorOccurred bool) error
}
