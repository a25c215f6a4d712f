package notification

import (
	"context"
	"fmt"
	"sync"

	"github.com/darkkaiser/shopping-feed-server/internal/config"
	apperrors "github.com/darkkaiser/shopping-feed-server/internal/pkg/errors"
	"github.com/darkkaiser/shopping-feed-server/internal/service/notification/telegram"
	applog "github.com/darkkaiser/shopping-feed-server/pkg/log"
)

// component 알림 서비스 로깅용 컴포넌트 이름
const component = "notification.service"

// requestQueueSize 발송 대기 큐의 크기입니다.
// 큐가 가득 찬 상태에서의 발송 요청은 블로킹되지 않고 즉시 실패합니다.
const requestQueueSize = 100

// request 발송 대기 큐에 등록되는 알림 발송 요청
type request struct {
	notifierID    string
	title         string
	message       string
	errorOccurred bool
}

// NotifierBuilder 설정 정보로부터 Notifier 목록을 생성하는 함수 타입입니다.
type NotifierBuilder func(cfg *config.NotifierConfig) ([]Notifier, error)

// Service 알림 발송 요청을 큐에 쌓고 백그라운드에서 순차적으로 전송하는 알림 서비스입니다.
//
// 발송 요청은 실제 전송과 분리되어 있어, 텔레그램 서버가 느리거나 일시적으로 응답하지
// 않더라도 호출자(API 핸들러, 스케줄러)는 블로킹되지 않습니다.
type Service struct {
	appConfig *config.AppConfig

	notifiers         map[string]Notifier
	defaultNotifierID string

	notifierBuilder NotifierBuilder

	requestC chan request

	// dispatchStopWG 발송 고루틴의 종료를 대기하는 WaitGroup
	dispatchStopWG *sync.WaitGroup

	running   bool
	runningMu sync.Mutex
}

// NewService 새로운 알림 서비스 인스턴스를 생성합니다.
func NewService(appConfig *config.AppConfig) *Service {
	return &Service{
		appConfig: appConfig,

		defaultNotifierID: appConfig.Notifiers.DefaultNotifierID,

		notifierBuilder: buildTelegramNotifiers,

		dispatchStopWG: &sync.WaitGroup{},

		running:   false,
		runningMu: sync.Mutex{},
	}
}

// SetNotifierBuilder Notifier 생성 함수를 교체합니다. 테스트에서 사용합니다.
func (s *Service) SetNotifierBuilder(builder NotifierBuilder) {
	s.notifierBuilder = builder
}

// buildTelegramNotifiers 설정에 정의된 텔레그램 알림 채널들을 초기화합니다.
func buildTelegramNotifiers(cfg *config.NotifierConfig) ([]Notifier, error) {
	var notifiers []Notifier
	for i := range cfg.Telegrams {
		n, err := telegram.NewNotifier(&cfg.Telegrams[i])
		if err != nil {
			return nil, err
		}
		notifiers = append(notifiers, n)
	}
	return notifiers, nil
}

// Start 알림 서비스를 시작하여 등록된 Notifier들을 활성화합니다.
func (s *Service) Start(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	applog.WithComponent(component).Info("Notification 서비스 시작중...")

	if s.running {
		defer serviceStopWG.Done()
		applog.WithComponent(component).Warn("Notification 서비스가 이미 시작됨!!!")
		return nil
	}

	// 1. Notifier들을 초기화
	notifiers, err := s.notifierBuilder(&s.appConfig.Notifiers)
	if err != nil {
		defer serviceStopWG.Done()
		return apperrors.Wrap(err, apperrors.Internal, "Notifier 초기화 중 에러가 발생했습니다")
	}

	s.notifiers = make(map[string]Notifier, len(notifiers))
	for _, n := range notifiers {
		s.notifiers[n.ID()] = n

		applog.WithComponentAndFields(component, applog.Fields{
			"notifier_id": n.ID(),
		}).Debug("Notifier가 Notification 서비스에 등록됨")
	}

	// 2. 기본 Notifier 존재 여부 확인
	if s.defaultNotifierID != "" {
		if _, ok := s.notifiers[s.defaultNotifierID]; !ok {
			defer serviceStopWG.Done()
			return apperrors.New(apperrors.NotFound, fmt.Sprintf("기본 NotifierID('%s')를 찾을 수 없습니다", s.defaultNotifierID))
		}
	}

	if len(s.notifiers) == 0 {
		applog.WithComponent(component).Warn("설정된 알림 채널이 없어 알림 기능이 비활성화됩니다")
	}

	// 3. 발송 고루틴 및 서비스 종료 감시 루틴 실행
	s.requestC = make(chan request, requestQueueSize)

	s.dispatchStopWG.Add(1)
	go s.runDispatchLoop(serviceStopCtx)

	go s.waitForShutdown(serviceStopCtx, serviceStopWG)

	s.running = true

	applog.WithComponent(component).Info("Notification 서비스 시작됨")

	return nil
}

// runDispatchLoop 발송 대기 큐의 요청을 순차적으로 처리합니다.
func (s *Service) runDispatchLoop(serviceStopCtx context.Context) {
	defer s.dispatchStopWG.Done()

	for {
		select {
		case <-serviceStopCtx.Done():
			return

		case req := <-s.requestC:
			s.dispatch(req)
		}
	}
}

// dispatch 발송 요청 하나를 해당 Notifier로 전달합니다.
// 전송 실패는 로그로만 남기며 서비스 동작에는 영향을 주지 않습니다.
func (s *Service) dispatch(req request) {
	n, ok := s.notifiers[req.notifierID]
	if !ok {
		applog.WithComponentAndFields(component, applog.Fields{
			"notifier_id": req.notifierID,
		}).Errorf("알 수 없는 Notifier('%s')입니다. 알림메시지 발송이 실패하였습니다.(Message:%s)", req.notifierID, req.message)
		return
	}

	if err := n.Send(req.title, req.message, req.errorOccurred); err != nil {
		applog.WithComponentAndFields(component, applog.Fields{
			"notifier_id": req.notifierID,
		}).WithError(err).Error("알림메시지 발송이 실패하였습니다")
	}
}

// waitForShutdown 서비스의 종료 신호를 감지하고 리소스를 안전하게 정리합니다.
func (s *Service) waitForShutdown(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) {
	defer serviceStopWG.Done()

	<-serviceStopCtx.Done()

	applog.WithComponent(component).Info("Notification 서비스 중지중...")

	// 발송 고루틴이 종료될 때까지 대기합니다.
	s.dispatchStopWG.Wait()

	s.runningMu.Lock()
	s.running = false
	s.notifiers = nil
	s.requestC = nil
	s.runningMu.Unlock()

	applog.WithComponent(component).Info("Notification 서비스 중지됨")
}

// NotifyWithTitle 지정된 Notifier를 통해 제목을 포함한 알림 메시지를 발송합니다.
func (s *Service) NotifyWithTitle(notifierID string, title string, message string, errorOccurred bool) error {
	return s.enqueue(request{
		notifierID:    notifierID,
		title:         title,
		message:       message,
		errorOccurred: errorOccurred,
	})
}

// NotifyDefault 시스템에 설정된 기본 Notifier를 통해 알림 메시지를 발송합니다.
func (s *Service) NotifyDefault(message string) error {
	return s.enqueue(request{
		notifierID: s.defaultNotifierID,
		message:    message,
	})
}

// NotifyDefaultWithError 시스템에 설정된 기본 Notifier를 통해 "오류" 알림 메시지를 발송합니다.
func (s *Service) NotifyDefaultWithError(message string) error {
	return s.enqueue(request{
		notifierID:    s.defaultNotifierID,
		message:       message,
		errorOccurred: true,
	})
}

// Health 알림 서비스가 정상적으로 실행 중인지 확인합니다.
func (s *Service) Health() error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	if !s.running {
		return apperrors.New(apperrors.Unavailable, "Notification 서비스가 실행 중이 아닙니다")
	}

	return nil
}

// enqueue 발송 요청을 대기 큐에 등록합니다.
// 알림 채널이 설정되지 않은 경우의 발송 요청은 조용히 무시됩니다.
func (s *Service) enqueue(req request) error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	if !s.running {
		applog.WithComponentAndFields(component, applog.Fields{
			"notifier_id": req.notifierID,
		}).Warn("Notification 서비스가 실행 중이 아니어서 메시지를 전송할 수 없습니다")
		return apperrors.New(apperrors.Unavailable, "Notification 서비스가 실행 중이 아닙니다")
	}

	if len(s.notifiers) == 0 {
		applog.WithComponent(component).Debug("설정된 알림 채널이 없어 알림메시지 발송을 건너뜁니다")
		return nil
	}

	select {
	case s.requestC <- req:
		return nil

	default:
		applog.WithComponentAndFields(component, applog.Fields{
			"notifier_id": req.notifierID,
		}).Error("발송 대기 큐가 가득 차 알림메시지 발송이 실패하였습니다")
		return apperrors.New(apperrors.Unavailable, "발송 대기 큐가 가득 차 있습니다")
	}
}
