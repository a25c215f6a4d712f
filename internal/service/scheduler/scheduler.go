// Package scheduler 설정 파일에 정의된 주기 작업을 Cron 스케줄에 맞춰 실행하는 서비스 패키지입니다.
package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/darkkaiser/shopping-feed-server/internal/config"
	"github.com/darkkaiser/shopping-feed-server/internal/service/feed"
	"github.com/darkkaiser/shopping-feed-server/internal/service/notification"
	"github.com/darkkaiser/shopping-feed-server/pkg/cronx"
	applog "github.com/darkkaiser/shopping-feed-server/pkg/log"
)

// component Scheduler 서비스의 로깅용 컴포넌트 이름
const component = "scheduler.service"

// verificationTimeout 피드 검증 작업 1회 실행의 최대 허용 시간입니다.
// 카탈로그 전체 수집은 호출 속도 제한의 영향을 받으므로 여유 있게 설정합니다.
const verificationTimeout = 10 * time.Minute

// feedVerificationTitle 피드 검증 결과 알림의 제목
const feedVerificationTitle = "구글 쇼핑 피드 점검"

// Generator 피드 문서를 생성하는 컴포넌트의 인터페이스입니다.
type Generator interface {
	Generate(ctx context.Context) (string, error)
}

// Scheduler 피드 검증 작업을 Cron 스케줄에 맞춰 주기적으로 실행하는 서비스입니다.
//
// 피드 검증 작업은 실제 피드 생성 파이프라인 전체를 실행하여 피드가 정상적으로
// 생성되는지 점검하고, 그 결과를 설정된 알림 채널로 통지합니다. API 요청이 오기 전에
// 카탈로그 소스 장애나 설정 오류를 미리 발견하기 위한 장치입니다.
type Scheduler struct {
	schedulerConfig *config.SchedulerConfig

	generator Generator

	notificationSender notification.Sender

	cron *cron.Cron

	running   bool
	runningMu sync.Mutex
}

// NewService 새로운 Scheduler 서비스 인스턴스를 생성합니다.
func NewService(schedulerConfig *config.SchedulerConfig, generator Generator, notificationSender notification.Sender) *Scheduler {
	if generator == nil {
		panic("Generator는 필수입니다")
	}
	if notificationSender == nil {
		panic("NotificationSender는 필수입니다")
	}

	return &Scheduler{
		schedulerConfig: schedulerConfig,

		generator: generator,

		notificationSender: notificationSender,
	}
}

// Start 스케줄러를 시작하고 설정 파일에 정의된 작업들을 Cron 엔진에 등록합니다.
func (s *Scheduler) Start(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	applog.WithComponent(component).Info("Scheduler 서비스 시작중...")

	if s.running {
		serviceStopWG.Done()
		applog.WithComponent(component).Warn("Scheduler 서비스가 이미 시작됨!!!")
		return nil
	}

	// 1. Cron 엔진 초기화
	// - StandardParser: 초 단위 스케줄링 지원 (6개 필드: 초 분 시 일 월 요일)
	// - Recover: Panic 발생 시 복구하여 다른 작업에 영향을 주지 않음
	// - SkipIfStillRunning: 이전 실행이 끝나지 않았으면 다음 실행을 건너뜀
	s.cron = cron.New(
		cron.WithParser(cronx.StandardParser()),
		cron.WithLogger(cron.VerbosePrintfLogger(applog.StandardLogger())),
		cron.WithChain(
			cron.Recover(cron.VerbosePrintfLogger(applog.StandardLogger())),
			cron.SkipIfStillRunning(cron.VerbosePrintfLogger(applog.StandardLogger())),
		),
	)

	// 2. 작업 등록
	s.registerJobs()

	// 3. 스케줄러 시작
	s.cron.Start()
	s.running = true

	applog.WithComponentAndFields(component, applog.Fields{
		"registered_schedules": len(s.cron.Entries()),
	}).Info("Scheduler 서비스 시작됨")

	// 4. 종료 신호 대기 (고루틴)
	go func() {
		defer serviceStopWG.Done()

		<-serviceStopCtx.Done()

		s.Stop()
	}()

	return nil
}

// Stop 실행 중인 스케줄러를 안전하게 중지합니다.
func (s *Scheduler) Stop() {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	if !s.running {
		return
	}

	applog.WithComponent(component).Info("Scheduler 서비스 중지중...")

	// Cron 엔진 중지 및 실행 중인 작업 완료 대기
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}

	s.cron = nil
	s.running = false

	applog.WithComponent(component).Info("Scheduler 서비스 중지됨")
}

// registerJobs 설정 파일에 정의된 작업 중 "실행 가능(Runnable)" 플래그가 켜진 작업들만
// Cron 스케줄러에 등록합니다.
func (s *Scheduler) registerJobs() {
	fv := s.schedulerConfig.FeedVerification
	if !fv.Runnable {
		return
	}

	if _, err := s.cron.AddFunc(fv.TimeSpec, s.RunFeedVerification); err != nil {
		// 스케줄 파싱 실패 시 해당 작업만 건너뛰고 계속 진행
		message := fmt.Sprintf("스케줄 등록 실패: 잘못된 Cron 표현식입니다 (TimeSpec: %s): %v", fv.TimeSpec, err)

		applog.WithComponentAndFields(component, applog.Fields{
			"time_spec": fv.TimeSpec,
			"error":     err,
		}).Error(message)

		s.notify(message, true)
		return
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"time_spec":   fv.TimeSpec,
		"notifier_id": fv.NotifierID,
	}).Debug("피드 검증 작업이 스케줄러에 등록됨")
}

// RunFeedVerification 피드 생성 파이프라인 전체를 1회 실행하여 피드 건전성을 점검하고
// 그 결과를 알림 채널로 통지합니다.
//
// 작업 실행의 생명주기는 스케줄러 서비스의 종료 시그널과 분리되어 있습니다.
// Graceful Shutdown 시 cron.Stop()이 실행 중인 작업의 완료를 대기하므로,
// 작업 도중 컨텍스트 취소로 인한 강제 중단을 방지합니다.
func (s *Scheduler) RunFeedVerification() {
	ctx, cancel := context.WithTimeout(context.Background(), verificationTimeout)
	defer cancel()

	started := time.Now()

	document, err := s.generator.Generate(ctx)
	if err != nil {
		message := fmt.Sprintf("피드 생성이 실패하였습니다: %v", err)

		applog.WithComponentAndFields(component, applog.Fields{
			"error":   err,
			"elapsed": time.Since(started).String(),
		}).Error(message)

		s.notify(message, true)
		return
	}

	if err := verifyFeedDocument(document); err != nil {
		message := fmt.Sprintf("생성된 피드가 유효하지 않습니다: %v", err)

		applog.WithComponentAndFields(component, applog.Fields{
			"error": err,
		}).Error(message)

		s.notify(message, true)
		return
	}

	rows := strings.Count(document, "\n")
	message := fmt.Sprintf("피드가 정상적으로 생성되었습니다.\n- 레코드 수: %d\n- 크기: %d 바이트\n- 소요 시간: %s",
		rows, len(document), time.Since(started).Round(time.Millisecond))

	applog.WithComponentAndFields(component, applog.Fields{
		"rows":    rows,
		"bytes":   len(document),
		"elapsed": time.Since(started).String(),
	}).Info("피드 검증 완료")

	s.notify(message, false)
}

// verifyFeedDocument 생성된 피드 문서의 구조적 건전성을 검사합니다.
func verifyFeedDocument(document string) error {
	if document == "" {
		return fmt.Errorf("피드 문서가 비어 있습니다")
	}

	header, _, _ := strings.Cut(document, "\n")
	expected := feed.Render(feed.Header(), nil)
	if header != expected {
		return fmt.Errorf("피드 헤더가 계약과 다릅니다 (header: %s)", header)
	}

	return nil
}

// notify 피드 검증 결과를 설정된 알림 채널로 통지합니다.
// NotifierID가 비어 있으면 기본 알림 채널을 사용합니다.
func (s *Scheduler) notify(message string, errorOccurred bool) {
	notifierID := s.schedulerConfig.FeedVerification.NotifierID

	var err error
	if notifierID != "" {
		err = s.notificationSender.NotifyWithTitle(notifierID, feedVerificationTitle, message, errorOccurred)
	} else if errorOccurred {
		err = s.notificationSender.NotifyDefaultWithError(message)
	} else {
		err = s.notificationSender.NotifyDefault(message)
	}

	if err != nil {
		applog.WithComponentAndFields(component, applog.Fields{
			"notifier_id": notifierID,
			"error":       err,
		}).Error("피드 검증 결과 알림 발송이 실패하였습니다")
	}
}
