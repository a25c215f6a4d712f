package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/darkkaiser/shopping-feed-server/internal/pkg/errors"
)

// validConfigJSON 테스트에서 사용하는 최소한의 유효한 설정 파일 내용
const validConfigJSON = `{
  "debug": false,
  "shopify": {
    "shop_domain": "my-store.myshopify.com",
    "access_token": "shpat_0123456789abcdef"
  },
  "feed": {
    "base_url": "https://my-store.com",
    "currency": "eur"
  },
  "feed_api": {
    "ws": {
      "listen_port": 8080
    },
    "cors": {
      "allow_origins": ["*"]
    }
  }
}`

// writeConfigFile 임시 디렉토리에 설정 파일을 생성하고 경로를 반환합니다.
func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), DefaultFilename)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

// =============================================================================
// LoadWithFile 검증
// =============================================================================

// TestLoadWithFile_정상설정 유효한 설정 파일이 기본값과 병합되어 로드되는지 검증합니다.
func TestLoadWithFile_정상설정(t *testing.T) {
	cfg, err := LoadWithFile(writeConfigFile(t, validConfigJSON))
	require.NoError(t, err)

	// 파일에 명시된 값
	assert.Equal(t, "my-store.myshopify.com", cfg.Shopify.ShopDomain)
	assert.Equal(t, "shpat_0123456789abcdef", cfg.Shopify.AccessToken)
	assert.Equal(t, "https://my-store.com", cfg.Feed.BaseURL)
	assert.Equal(t, 8080, cfg.FeedAPI.WS.ListenPort)

	// 통화 코드는 대문자로 정규화
	assert.Equal(t, "EUR", cfg.Feed.Currency)

	// 명시되지 않은 값은 기본값으로 채워짐
	assert.Equal(t, DefaultAPIVersion, cfg.Shopify.APIVersion)
	assert.Equal(t, DefaultPageSize, cfg.Shopify.PageSize)
	assert.Equal(t, DefaultMaxPages, cfg.Shopify.MaxPages)
	assert.Equal(t, DefaultMaxRetries, cfg.Shopify.Retry.MaxRetries)
}

// TestLoadWithFile_파일없음 설정 파일이 존재하지 않으면 System 에러를 반환하는지 검증합니다.
func TestLoadWithFile_파일없음(t *testing.T) {
	_, err := LoadWithFile(filepath.Join(t.TempDir(), "not-exists.json"))
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.System))
}

// TestLoadWithFile_알수없는필드거부 구조체에 정의되지 않은 필드가 설정 파일에 존재하면 에러를 반환하는지 검증합니다.
func TestLoadWithFile_알수없는필드거부(t *testing.T) {
	content := `{
  "unknown_field": true,
  "shopify": {"shop_domain": "s.myshopify.com", "access_token": "t"},
  "feed": {"base_url": "https://s.com", "currency": "USD"},
  "feed_api": {"ws": {"listen_port": 8080}, "cors": {"allow_origins": ["*"]}}
}`

	_, err := LoadWithFile(writeConfigFile(t, content))
	require.Error(t, err)
}

// TestLoadWithFile_환경변수우선 환경 변수가 설정 파일의 값을 덮어쓰는지 검증합니다.
func TestLoadWithFile_환경변수우선(t *testing.T) {
	t.Setenv("FEED_SHOPIFY__ACCESS_TOKEN", "shpat_from_env")
	t.Setenv("FEED_SHOPIFY__PAGE_SIZE", "100")

	cfg, err := LoadWithFile(writeConfigFile(t, validConfigJSON))
	require.NoError(t, err)

	assert.Equal(t, "shpat_from_env", cfg.Shopify.AccessToken)
	assert.Equal(t, 100, cfg.Shopify.PageSize)
}

// =============================================================================
// 유효성 검증 실패 케이스
// =============================================================================

// TestLoadWithFile_유효성검증실패 잘못된 설정값이 InvalidInput 에러로 거부되는지 검증합니다.
func TestLoadWithFile_유효성검증실패(t *testing.T) {
	tests := []struct {
		name    string
		mutator string // validConfigJSON 대신 사용할 설정 내용
	}{
		{
			name: "Shopify 액세스 토큰 누락",
			mutator: `{
  "shopify": {"shop_domain": "s.myshopify.com"},
  "feed": {"base_url": "https://s.com", "currency": "USD"},
  "feed_api": {"ws": {"listen_port": 8080}, "cors": {"allow_origins": ["*"]}}
}`,
		},
		{
			name: "페이지 크기 허용 범위 초과",
			mutator: `{
  "shopify": {"shop_domain": "s.myshopify.com", "access_token": "t", "page_size": 500},
  "feed": {"base_url": "https://s.com", "currency": "USD"},
  "feed_api": {"ws": {"listen_port": 8080}, "cors": {"allow_origins": ["*"]}}
}`,
		},
		{
			name: "유효하지 않은 통화 코드",
			mutator: `{
  "shopify": {"shop_domain": "s.myshopify.com", "access_token": "t"},
  "feed": {"base_url": "https://s.com", "currency": "NOPE"},
  "feed_api": {"ws": {"listen_port": 8080}, "cors": {"allow_origins": ["*"]}}
}`,
		},
		{
			name: "CORS 허용 도메인 비어있음",
			mutator: `{
  "shopify": {"shop_domain": "s.myshopify.com", "access_token": "t"},
  "feed": {"base_url": "https://s.com", "currency": "USD"},
  "feed_api": {"ws": {"listen_port": 8080}, "cors": {"allow_origins": []}}
}`,
		},
		{
			name: "와일드카드와 도메인 혼용",
			mutator: `{
  "shopify": {"shop_domain": "s.myshopify.com", "access_token": "t"},
  "feed": {"base_url": "https://s.com", "currency": "USD"},
  "feed_api": {"ws": {"listen_port": 8080}, "cors": {"allow_origins": ["*", "https://a.com"]}}
}`,
		},
		{
			name: "웹 서버 포트 범위 초과",
			mutator: `{
  "shopify": {"shop_domain": "s.myshopify.com", "access_token": "t"},
  "feed": {"base_url": "https://s.com", "currency": "USD"},
  "feed_api": {"ws": {"listen_port": 99999}, "cors": {"allow_origins": ["*"]}}
}`,
		},
		{
			name: "잘못된 스케줄러 Cron 표현식",
			mutator: `{
  "shopify": {"shop_domain": "s.myshopify.com", "access_token": "t"},
  "feed": {"base_url": "https://s.com", "currency": "USD"},
  "feed_api": {"ws": {"listen_port": 8080}, "cors": {"allow_origins": ["*"]}},
  "scheduler": {"feed_verification": {"runnable": true, "time_spec": "not-a-cron"}}
}`,
		},
		{
			name: "잘못된 텔레그램 봇 토큰 형식",
			mutator: `{
  "shopify": {"shop_domain": "s.myshopify.com", "access_token": "t"},
  "feed": {"base_url": "https://s.com", "currency": "USD"},
  "feed_api": {"ws": {"listen_port": 8080}, "cors": {"allow_origins": ["*"]}},
  "notifiers": {"default_notifier_id": "tg", "telegrams": [{"id": "tg", "bot_token": "invalid", "chat_id": 1}]}
}`,
		},
		{
			name: "기본 NotifierID 미정의",
			mutator: `{
  "shopify": {"shop_domain": "s.myshopify.com", "access_token": "t"},
  "feed": {"base_url": "https://s.com", "currency": "USD"},
  "feed_api": {"ws": {"listen_port": 8080}, "cors": {"allow_origins": ["*"]}},
  "notifiers": {"default_notifier_id": "missing", "telegrams": [{"id": "tg", "bot_token": "123456:ABC-DEF1234ghIkl-zyx57W2v1u123ew11", "chat_id": 1}]}
}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadWithFile(writeConfigFile(t, tt.mutator))
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.InvalidInput) || apperrors.Is(err, apperrors.NotFound))
		})
	}
}

// TestVerifyRecommendations 시스템 예약 포트 사용 시 경고가 반환되는지 검증합니다.
func TestVerifyRecommendations(t *testing.T) {
	t.Parallel()

	cfg := &AppConfig{}
	cfg.FeedAPI.WS.ListenPort = 80
	assert.NotEmpty(t, cfg.VerifyRecommendations())

	cfg.FeedAPI.WS.ListenPort = 8080
	assert.Empty(t, cfg.VerifyRecommendations())
}
