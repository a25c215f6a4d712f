package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darkkaiser/shopping-feed-server/internal/config"
	apperrors "github.com/darkkaiser/shopping-feed-server/internal/pkg/errors"
	"github.com/darkkaiser/shopping-feed-server/internal/service/feed"
)

// fakeGenerator 테스트용 피드 생성기 구현체
type fakeGenerator struct {
	document string
	err      error
}

func (f *fakeGenerator) Generate(_ context.Context) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.document, nil
}

// notifyCall 테스트용 알림 발송자가 수신한 발송 요청
type notifyCall struct {
	notifierID    string
	title         string
	message       string
	errorOccurred bool
}

// fakeSender 발송 요청을 기록하는 테스트용 알림 발송자 구현체
type fakeSender struct {
	mu    sync.Mutex
	calls []notifyCall
}

func (f *fakeSender) NotifyWithTitle(notifierID string, title string, message string, errorOccurred bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, notifyCall{notifierID: notifierID, title: title, message: message, errorOccurred: errorOccurred})
	return nil
}

func (f *fakeSender) NotifyDefault(message string) error {
	return f.NotifyWithTitle("", "", message, false)
}

func (f *fakeSender) NotifyDefaultWithError(message string) error {
	return f.NotifyWithTitle("", "", message, true)
}

func (f *fakeSender) Health() error { return nil }

func (f *fakeSender) notifyCalls() []notifyCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]notifyCall(nil), f.calls...)
}

func validFeedDocument() string {
	return feed.Render(feed.Header(), [][]string{
		{"SKU-1", "Lotion", "", "https://example.com/products/lotion", "", "", "in_stock", "9.99 EUR", "", "", "new", "", "false", "", "1", "", "", "", ""},
	})
}

// =============================================================================
// 생성자 검증
// =============================================================================

// TestNewService 생성자가 필수 의존성을 검증하는지 테스트합니다.
func TestNewService(t *testing.T) {
	t.Parallel()

	cfg := &config.SchedulerConfig{}

	assert.NotPanics(t, func() {
		s := NewService(cfg, &fakeGenerator{}, &fakeSender{})
		assert.NotNil(t, s)
	})

	assert.PanicsWithValue(t, "Generator는 필수입니다", func() {
		NewService(cfg, nil, &fakeSender{})
	})

	assert.PanicsWithValue(t, "NotificationSender는 필수입니다", func() {
		NewService(cfg, &fakeGenerator{}, nil)
	})
}

// =============================================================================
// 서비스 생명주기 검증
// =============================================================================

// TestScheduler_시작과중지 스케줄러의 시작, 중복 시작, 종료 흐름을 검증합니다.
func TestScheduler_시작과중지(t *testing.T) {
	cfg := &config.SchedulerConfig{
		FeedVerification: config.FeedVerificationConfig{
			Runnable: true,
			TimeSpec: "0 0 6 * * *",
		},
	}
	s := NewService(cfg, &fakeGenerator{document: validFeedDocument()}, &fakeSender{})

	ctx, cancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}

	wg.Add(1)
	require.NoError(t, s.Start(ctx, wg))

	// 중복 시작은 에러 없이 무시됨
	wg.Add(1)
	require.NoError(t, s.Start(ctx, wg))

	cancel()
	wg.Wait()

	assert.False(t, s.running)
}

// TestScheduler_비활성작업미등록 Runnable이 꺼진 작업은 스케줄러에 등록되지 않는지 검증합니다.
func TestScheduler_비활성작업미등록(t *testing.T) {
	cfg := &config.SchedulerConfig{
		FeedVerification: config.FeedVerificationConfig{
			Runnable: false,
			TimeSpec: "0 0 6 * * *",
		},
	}
	s := NewService(cfg, &fakeGenerator{}, &fakeSender{})

	ctx, cancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}
	wg.Add(1)

	require.NoError(t, s.Start(ctx, wg))
	assert.Empty(t, s.cron.Entries())

	cancel()
	wg.Wait()
}

// TestScheduler_잘못된스케줄알림 잘못된 Cron 표현식이 오류 알림으로 통지되는지 검증합니다.
func TestScheduler_잘못된스케줄알림(t *testing.T) {
	sender := &fakeSender{}
	cfg := &config.SchedulerConfig{
		FeedVerification: config.FeedVerificationConfig{
			Runnable: true,
			TimeSpec: "잘못된 표현식",
		},
	}
	s := NewService(cfg, &fakeGenerator{}, sender)

	ctx, cancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}
	wg.Add(1)

	require.NoError(t, s.Start(ctx, wg))

	calls := sender.notifyCalls()
	require.Len(t, calls, 1)
	assert.True(t, calls[0].errorOccurred)
	assert.Contains(t, calls[0].message, "잘못된 Cron 표현식")

	cancel()
	wg.Wait()
}

// =============================================================================
// 피드 검증 작업 검증
// =============================================================================

// TestRunFeedVerification_정상 피드 생성 성공 시 정상 알림이 발송되는지 검증합니다.
func TestRunFeedVerification_정상(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	cfg := &config.SchedulerConfig{
		FeedVerification: config.FeedVerificationConfig{
			Runnable:   true,
			TimeSpec:   "0 0 6 * * *",
			NotifierID: "ops",
		},
	}
	s := NewService(cfg, &fakeGenerator{document: validFeedDocument()}, sender)

	s.RunFeedVerification()

	calls := sender.notifyCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "ops", calls[0].notifierID)
	assert.Equal(t, feedVerificationTitle, calls[0].title)
	assert.False(t, calls[0].errorOccurred)
	assert.Contains(t, calls[0].message, "정상적으로 생성")
	assert.Contains(t, calls[0].message, "레코드 수: 1")
}

// TestRunFeedVerification_생성실패 피드 생성 실패 시 오류 알림이 발송되는지 검증합니다.
func TestRunFeedVerification_생성실패(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	cfg := &config.SchedulerConfig{
		FeedVerification: config.FeedVerificationConfig{
			Runnable: true,
			TimeSpec: "0 0 6 * * *",
		},
	}
	s := NewService(cfg, &fakeGenerator{
		err: apperrors.New(apperrors.Unavailable, "카탈로그 소스 장애"),
	}, sender)

	s.RunFeedVerification()

	calls := sender.notifyCalls()
	require.Len(t, calls, 1)
	assert.True(t, calls[0].errorOccurred)
	assert.Contains(t, calls[0].message, "카탈로그 소스 장애")
}

// TestRunFeedVerification_비정상문서 헤더가 훼손된 피드가 오류로 보고되는지 검증합니다.
func TestRunFeedVerification_비정상문서(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	cfg := &config.SchedulerConfig{
		FeedVerification: config.FeedVerificationConfig{
			Runnable: true,
			TimeSpec: "0 0 6 * * *",
		},
	}
	s := NewService(cfg, &fakeGenerator{document: "잘못된,헤더\n1,2"}, sender)

	s.RunFeedVerification()

	calls := sender.notifyCalls()
	require.Len(t, calls, 1)
	assert.True(t, calls[0].errorOccurred)
	assert.Contains(t, calls[0].message, "유효하지 않습니다")
}

// TestVerifyFeedDocument 피드 문서 건전성 검사 규칙을 검증합니다.
func TestVerifyFeedDocument(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		document string
		wantErr  bool
	}{
		{name: "정상 피드", document: validFeedDocument(), wantErr: false},
		{name: "헤더만 있는 피드", document: feed.Render(feed.Header(), nil), wantErr: false},
		{name: "빈 문서", document: "", wantErr: true},
		{name: "잘못된 헤더", document: "a,b,c\n1,2,3", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := verifyFeedDocument(tt.document)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// TestScheduler_스케줄실행 등록된 스케줄이 실제로 실행되는지 검증합니다.
func TestScheduler_스케줄실행(t *testing.T) {
	sender := &fakeSender{}
	cfg := &config.SchedulerConfig{
		FeedVerification: config.FeedVerificationConfig{
			Runnable: true,
			TimeSpec: "@every 100ms",
		},
	}
	s := NewService(cfg, &fakeGenerator{document: validFeedDocument()}, sender)

	ctx, cancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}
	wg.Add(1)

	require.NoError(t, s.Start(ctx, wg))

	require.Eventually(t, func() bool {
		return len(sender.notifyCalls()) >= 1
	}, 3*time.Second, 20*time.Millisecond)

	cancel()
	wg.Wait()
}
