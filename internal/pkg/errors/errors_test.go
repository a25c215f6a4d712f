package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// New / Newf 검증
// =============================================================================

// TestNew 생성된 에러가 타입과 메시지를 올바르게 보존하는지 검증합니다.
func TestNew(t *testing.T) {
	t.Parallel()

	err := New(ExecutionFailed, "피드 생성에 실패했습니다")

	var appErr *AppError
	require.True(t, As(err, &appErr))
	assert.Equal(t, ExecutionFailed, appErr.Type())
	assert.Equal(t, "피드 생성에 실패했습니다", appErr.Message())
	assert.Equal(t, "[ExecutionFailed] 피드 생성에 실패했습니다", err.Error())
	assert.NotEmpty(t, appErr.Stack(), "에러 생성 시점의 스택이 수집되어야 합니다")
}

// TestNewf 포맷 문자열이 적용되는지 검증합니다.
func TestNewf(t *testing.T) {
	t.Parallel()

	err := Newf(InvalidInput, "통화 코드가 올바르지 않습니다: '%s'", "EURO")
	assert.Equal(t, "[InvalidInput] 통화 코드가 올바르지 않습니다: 'EURO'", err.Error())
}

// =============================================================================
// Wrap / Unwrap 검증
// =============================================================================

// TestWrap 원인 에러가 체인으로 연결되고, nil 래핑 시 nil이 반환되는지 검증합니다.
func TestWrap(t *testing.T) {
	t.Parallel()

	t.Run("원인 에러 체이닝", func(t *testing.T) {
		t.Parallel()

		cause := stderrors.New("connection refused")
		err := Wrap(cause, Unavailable, "카탈로그 페이지 조회 실패")

		assert.Equal(t, "[Unavailable] 카탈로그 페이지 조회 실패: connection refused", err.Error())
		assert.Same(t, cause, stderrors.Unwrap(err))
	})

	t.Run("nil 에러 래핑 → nil 반환", func(t *testing.T) {
		t.Parallel()

		assert.NoError(t, Wrap(nil, System, "무시되어야 합니다"))
		assert.NoError(t, Wrapf(nil, System, "무시되어야 합니다: %d", 1))
	})
}

// =============================================================================
// Is / RootCause / UnderlyingType 검증
// =============================================================================

// TestIs 에러 체인 내의 모든 타입이 탐지되는지 검증합니다.
func TestIs(t *testing.T) {
	t.Parallel()

	inner := New(ParsingFailed, "Link 헤더 해석 실패")
	outer := Wrap(inner, ExecutionFailed, "페이지 수집 실패")

	assert.True(t, Is(outer, ExecutionFailed))
	assert.True(t, Is(outer, ParsingFailed), "체인 안쪽의 타입도 탐지되어야 합니다")
	assert.False(t, Is(outer, NotFound))
	assert.False(t, Is(nil, NotFound))
}

// TestRootCause 체인의 가장 안쪽 에러가 반환되는지 검증합니다.
func TestRootCause(t *testing.T) {
	t.Parallel()

	root := stderrors.New("EOF")
	err := Wrap(Wrap(root, ParsingFailed, "JSON 디코딩 실패"), ExecutionFailed, "페이지 수집 실패")

	assert.Same(t, root, RootCause(err))
	assert.Nil(t, RootCause(nil))
}

// TestUnderlyingType 여러 겹으로 래핑된 에러의 근본 타입이 반환되는지 검증합니다.
func TestUnderlyingType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{
			name: "AppError 체인 → 가장 안쪽 타입",
			err:  Wrap(New(NotFound, "상품 없음"), Internal, "조회 실패"),
			want: NotFound,
		},
		{
			name: "외부 에러 래핑 → 래핑 타입",
			err:  Wrap(stderrors.New("timeout"), Timeout, "요청 시간 초과"),
			want: Timeout,
		},
		{
			name: "AppError가 없는 체인 → Unknown",
			err:  fmt.Errorf("wrapped: %w", stderrors.New("plain")),
			want: Unknown,
		},
		{
			name: "nil → Unknown",
			err:  nil,
			want: Unknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, UnderlyingType(tt.err))
		})
	}
}

// =============================================================================
// Format 검증
// =============================================================================

// TestAppError_Format %+v 출력에 스택 트레이스와 원인 체인이 포함되는지 검증합니다.
func TestAppError_Format(t *testing.T) {
	t.Parallel()

	cause := stderrors.New("connection reset")
	err := Wrap(cause, Unavailable, "카탈로그 소스 통신 실패")

	detailed := fmt.Sprintf("%+v", err)
	assert.Contains(t, detailed, "[Unavailable] 카탈로그 소스 통신 실패")
	assert.Contains(t, detailed, "Stack trace:")
	assert.Contains(t, detailed, "Caused by:")
	assert.Contains(t, detailed, "connection reset")

	assert.Equal(t, err.Error(), fmt.Sprintf("%s", err))
	assert.Equal(t, fmt.Sprintf("%q", err.Error()), fmt.Sprintf("%q", err))
}
