package log

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// silentFormatter 아무런 동작도 하지 않는 포맷터입니다.
// Logrus의 특성상 io.Discard로 출력을 버리더라도 포맷팅 연산은 수행하므로, 이를 방지하기 위해 사용합니다.
// (실제 포맷팅은 Hook에서 수행)
type silentFormatter struct{}

// Format 아무런 변환도 수행하지 않고 nil을 반환합니다.
func (f *silentFormatter) Format(_ *logrus.Entry) ([]byte, error) {
	return nil, nil
}

// hook 로그 레벨에 따라 로그를 적절한 출력 채널로 분배하는 Hook 구현체입니다.
//
// 핵심 역할:
//   - 모든 레벨의 로그를 메인 로그 파일에 기록합니다.
//   - Error 이상의 치명적 로그는 Critical 파일에도 격리 기록하여 장애 분석을 돕습니다.
//   - 콘솔 출력이 활성화된 경우 모든 로그를 표준 출력으로도 내보냅니다.
type hook struct {
	mainWriter     io.Writer // 모든 로그를 기록하는 메인 로깅 채널
	criticalWriter io.Writer // 치명적 장애(ERROR / FATAL / PANIC)를 별도로 격리하여 보존하는 채널
	consoleWriter  io.Writer // 실시간 모니터링을 위한 표준 출력(Stdout)

	formatter Formatter

	mu sync.RWMutex // 로그 기록(Read Lock)과 종료 처리(Write Lock) 간의 동시성 제어

	closed bool // Hook의 종료 여부를 나타내며, true일 경우 모든 로그 기록 요청을 거부
}

// Levels 이 Hook이 수신할 로그 레벨의 집합을 반환합니다.
func (h *hook) Levels() []Level {
	return AllLevels
}

// Fire 발생한 로그 이벤트를 수신하여 레벨에 따라 적절한 Writer로 분배 및 기록합니다.
func (h *hook) Fire(entry *Entry) error {
	// Read Lock을 획득하여 동시 로깅을 허용하며, 작업 수행 중 Hook이 종료되지 않도록 보호합니다.
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return nil
	}

	// 로그 포맷팅 (한 번만 수행하여 재사용)
	msg, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}

	// 표준 출력(Stdout) 쓰기 실패는 전체 로깅 시스템의 가용성에 영향을 주지 않도록 전파하지 않습니다.
	if h.consoleWriter != nil {
		if _, err := h.consoleWriter.Write(msg); err != nil {
			fmt.Fprintf(os.Stderr, "[LOG-SYSTEM-WARN] 표준 출력(Console) 쓰기 실패: %v\n", err)
		}
	}

	var firstErr error

	if h.mainWriter != nil {
		if _, err := h.mainWriter.Write(msg); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	// Error 이상의 로그는 Critical 채널에도 기록합니다.
	if h.criticalWriter != nil && entry.Level <= ErrorLevel {
		if _, err := h.criticalWriter.Write(msg); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

// Close Hook을 비활성화하여 이후의 모든 로그 기록 요청을 무시하도록 합니다.
func (h *hook) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
}
