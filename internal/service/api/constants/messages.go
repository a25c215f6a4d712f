package constants

// 클라이언트에게 반환되는 에러 메시지 상수입니다.
const (
	// 404 Not Found
	ErrMsgNotFound = "요청한 리소스를 찾을 수 없습니다"

	// 429 Too Many Requests
	ErrMsgTooManyRequests = "요청이 너무 많습니다. 잠시 후 다시 시도해주세요"

	// 500 Internal Server Error
	ErrMsgInternalServer = "내부 서버 오류가 발생했습니다"

	// ErrMsgFeedGenerationFailed 피드 생성이 실패했을 때의 에러 메시지입니다.
	ErrMsgFeedGenerationFailed = "피드 생성 중 오류가 발생했습니다"
)

// 내부 로깅을 위한 메시지 상수입니다.
const (
	LogMsgServiceStarting       = "API 서비스 시작중..."
	LogMsgServiceStarted        = "API 서비스 시작됨"
	LogMsgServiceAlreadyStarted = "API 서비스가 이미 시작됨!!!"
	LogMsgServiceStopping       = "API 서비스 중지중..."
	LogMsgServiceStopped        = "API 서비스 중지됨"
	LogMsgServiceUnexpectedExit = "API 서비스가 예기치 않게 종료되었습니다"

	LogMsgServiceHTTPServerStarting      = "API 서비스 > http 서버 시작"
	LogMsgServiceHTTPServerStopped       = "API 서비스 > http 서버 중지됨"
	LogMsgServiceHTTPServerShutdownError = "API 서비스 > http 서버 종료 중 오류 발생"
	LogMsgServiceHTTPServerFatalError    = "API 서비스 > http 서버를 구성하는 중에 치명적인 오류가 발생하였습니다."

	LogMsgHTTP4xxClientError = "HTTP 클라이언트 요청 오류"
	LogMsgHTTP5xxServerError = "HTTP 서버 내부 오류"

	LogMsgHealthCheck = "헬스체크 요청 수신"
	LogMsgVersionInfo = "버전 정보 요청 수신"
	LogMsgFeedRequest = "피드 생성 요청 수신"
)

// 시스템 시작 시 발생할 수 있는 크리티컬한 패닉 메시지 상수입니다.
const (
	// PanicMsgAppConfigRequired 패닉 메시지: AppConfig 필수
	PanicMsgAppConfigRequired = "AppConfig는 필수입니다"

	// PanicMsgNotificationSenderRequired 패닉 메시지: NotificationSender 필수
	PanicMsgNotificationSenderRequired = "NotificationSender는 필수입니다"

	// PanicMsgFeedGeneratorRequired 패닉 메시지: FeedGenerator 필수
	PanicMsgFeedGeneratorRequired = "FeedGenerator는 필수입니다"
)
