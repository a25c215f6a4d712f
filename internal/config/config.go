// Package config 애플리케이션의 설정 로드와 유효성 검증을 담당하는 패키지입니다.
//
// 설정은 다음 우선순위로 병합됩니다. (뒤로 갈수록 높은 우선순위)
//  1. 코드에 정의된 기본값
//  2. JSON 설정 파일
//  3. 환경 변수 (FEED_ 접두사)
package config

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"golang.org/x/text/currency"

	apperrors "github.com/darkkaiser/shopping-feed-server/internal/pkg/errors"
	"github.com/darkkaiser/shopping-feed-server/pkg/cronx"
	"github.com/darkkaiser/shopping-feed-server/pkg/validation"
)

const (
	// AppName 애플리케이션의 전역 고유 식별자입니다.
	AppName string = "shopping-feed-server"

	// DefaultFilename 애플리케이션 초기화 시 참조하는 기본 설정 파일명입니다.
	// 실행 인자를 통해 명시적인 경로가 제공되지 않을 경우, 시스템은 이 파일을 탐색하여 구성을 로드합니다.
	DefaultFilename = AppName + ".json"

	// ------------------------------------------------------------------------------------------------
	// Shopify Admin API 기본값
	// ------------------------------------------------------------------------------------------------

	// DefaultAPIVersion Shopify REST Admin API 버전 기본값
	DefaultAPIVersion = "2024-07"

	// DefaultPageSize 상품 목록 조회 시 페이지당 요청 건수 기본값 (Shopify 허용 최대값)
	DefaultPageSize = 250

	// DefaultMaxPages 폭주 방지를 위한 페이지 조회 횟수 상한 기본값
	DefaultMaxPages = 200

	// DefaultTimeout HTTP 요청 타임아웃 기본값
	DefaultTimeout = "30s"

	// DefaultRateLimitPerSec Shopify REST Admin API의 초당 요청 제한 기본값 (버킷 리필 속도 2/s)
	DefaultRateLimitPerSec = 2.0

	// ------------------------------------------------------------------------------------------------
	// HTTP 재시도 정책 기본값
	// ------------------------------------------------------------------------------------------------

	// DefaultMaxRetries HTTP 요청 실패 시 최대 재시도 횟수 기본값
	DefaultMaxRetries = 3

	// DefaultMinRetryDelay 재시도 사이의 최소 대기 시간 기본값
	DefaultMinRetryDelay = "2s"

	// DefaultMaxRetryDelay 재시도 사이의 최대 대기 시간 기본값
	DefaultMaxRetryDelay = "30s"
)

// AppConfig 애플리케이션의 모든 설정을 관장하는 최상위 루트 구조체
type AppConfig struct {
	Debug     bool            `json:"debug"`
	Shopify   ShopifyConfig   `json:"shopify"`
	Feed      FeedConfig      `json:"feed"`
	FeedAPI   FeedAPIConfig   `json:"feed_api"`
	Notifiers NotifierConfig  `json:"notifiers"`
	Scheduler SchedulerConfig `json:"scheduler"`
}

// validate 설정 파일 로드 직후, 각 설정 항목의 정합성과 필수 값의 유효성을 검증합니다.
func (c *AppConfig) validate() error {
	// Shopify 유효성 검사
	if err := c.Shopify.validate(); err != nil {
		return err
	}

	// Feed 유효성 검사
	if err := c.Feed.validate(); err != nil {
		return err
	}

	// FeedAPI 유효성 검사
	if err := c.FeedAPI.validate(); err != nil {
		return err
	}

	// Notifiers 유효성 검사
	notifierIDs, err := c.Notifiers.validate()
	if err != nil {
		return err
	}

	// Scheduler 유효성 검사
	if err := c.Scheduler.validate(notifierIDs); err != nil {
		return err
	}

	return nil
}

// VerifyRecommendations 서비스 운영의 안정성과 보안을 위해 권장되는 설정 준수 여부를 진단합니다.
// 강제적인 에러를 발생시키지는 않으나, 잠재적 위험 요소(예: Well-known Port 사용)에 대한 경고 메시지를 반환합니다.
func (c *AppConfig) VerifyRecommendations() []string {
	return c.FeedAPI.VerifyRecommendations()
}

// ShopifyConfig Shopify REST Admin API 연동 정보를 정의하는 설정 구조체
type ShopifyConfig struct {
	// ShopDomain 스토어의 myshopify 도메인 (예: my-store.myshopify.com)
	ShopDomain string `json:"shop_domain" validate:"required,hostname"`

	// AccessToken Admin API 액세스 토큰 (예: shpat_ 접두사)
	AccessToken string `json:"access_token" validate:"required"`

	// APIVersion 호출할 Admin API 버전 (예: 2024-07)
	APIVersion string `json:"api_version" validate:"required"`

	// PageSize 상품 목록 조회 시 페이지당 요청 건수 (Shopify 허용 범위: 1~250)
	PageSize int `json:"page_size" validate:"min=1,max=250"`

	// MaxPages 폭주 방지를 위한 페이지 조회 횟수 상한
	MaxPages int `json:"max_pages" validate:"min=1"`

	// Timeout HTTP 요청 타임아웃 (duration 형식, 예: 30s)
	Timeout string `json:"timeout"`

	// RateLimitPerSec API 호출 속도 제한 (초당 요청 수)
	RateLimitPerSec float64 `json:"rate_limit_per_sec" validate:"gt=0"`

	// Retry HTTP 요청 실패 시 재시도 정책
	Retry HTTPRetryConfig `json:"retry"`
}

func (c *ShopifyConfig) validate() error {
	if err := checkStruct(c, "Shopify"); err != nil {
		return err
	}

	if err := validation.ValidateDuration(c.Timeout); err != nil {
		return apperrors.Wrap(err, apperrors.InvalidInput, "Shopify 요청 타임아웃(timeout) 설정이 올바르지 않습니다")
	}

	return c.Retry.validate()
}

// TimeoutDuration 파싱된 HTTP 요청 타임아웃을 반환합니다. validate() 통과를 전제로 합니다.
func (c *ShopifyConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// HTTPRetryConfig HTTP 요청 실패 시 재시도 횟수와 대기 시간을 정의하는 설정 구조체
type HTTPRetryConfig struct {
	MaxRetries    int    `json:"max_retries" validate:"min=0"`
	MinRetryDelay string `json:"min_retry_delay"`
	MaxRetryDelay string `json:"max_retry_delay"`
}

func (c *HTTPRetryConfig) validate() error {
	if err := validation.ValidateDuration(c.MinRetryDelay); err != nil {
		return apperrors.Wrap(err, apperrors.InvalidInput, "재시도 최소 대기 시간(min_retry_delay) 설정이 올바르지 않습니다")
	}
	if err := validation.ValidateDuration(c.MaxRetryDelay); err != nil {
		return apperrors.Wrap(err, apperrors.InvalidInput, "재시도 최대 대기 시간(max_retry_delay) 설정이 올바르지 않습니다")
	}
	if c.MinRetryDelayDuration() > c.MaxRetryDelayDuration() {
		return apperrors.New(apperrors.InvalidInput, "재시도 최소 대기 시간(min_retry_delay)이 최대 대기 시간(max_retry_delay)보다 클 수 없습니다")
	}
	return checkStruct(c, "Shopify > Retry")
}

// MinRetryDelayDuration 파싱된 재시도 최소 대기 시간을 반환합니다.
func (c *HTTPRetryConfig) MinRetryDelayDuration() time.Duration {
	d, _ := time.ParseDuration(c.MinRetryDelay)
	return d
}

// MaxRetryDelayDuration 파싱된 재시도 최대 대기 시간을 반환합니다.
func (c *HTTPRetryConfig) MaxRetryDelayDuration() time.Duration {
	d, _ := time.ParseDuration(c.MaxRetryDelay)
	return d
}

// FeedConfig 생성되는 상품 피드의 공통 속성을 정의하는 설정 구조체
type FeedConfig struct {
	// BaseURL 피드 내 상품 랜딩 페이지 링크의 기준 URL (예: https://my-store.com)
	BaseURL string `json:"base_url" validate:"required,url"`

	// Currency 가격 표기에 사용할 ISO 4217 통화 코드 (예: USD, EUR, KRW)
	Currency string `json:"currency" validate:"required"`
}

func (c *FeedConfig) validate() error {
	if err := checkStruct(c, "Feed"); err != nil {
		return err
	}

	// ISO 4217 통화 코드 검증
	if _, err := currency.ParseISO(c.Currency); err != nil {
		return apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("피드 통화 코드(currency)가 유효한 ISO 4217 코드가 아닙니다: '%s'", c.Currency))
	}

	// 피드 내 표기는 대문자 코드로 통일
	c.Currency = strings.ToUpper(c.Currency)

	return nil
}

// FeedAPIConfig 피드 다운로드를 위한 REST API 서버 설정 구조체
type FeedAPIConfig struct {
	WS   WSConfig   `json:"ws"`
	CORS CORSConfig `json:"cors"`
}

func (c *FeedAPIConfig) validate() error {
	if err := c.WS.validate(); err != nil {
		return err
	}
	return c.CORS.validate()
}

func (c *FeedAPIConfig) VerifyRecommendations() []string {
	return c.WS.VerifyRecommendations()
}

// WSConfig 웹 서버의 포트 및 TLS(HTTPS) 보안 설정을 정의하는 구조체
type WSConfig struct {
	TLSServer   bool   `json:"tls_server"`
	TLSCertFile string `json:"tls_cert_file" validate:"required_if=TLSServer true,omitempty,file"`
	TLSKeyFile  string `json:"tls_key_file" validate:"required_if=TLSServer true,omitempty,file"`
	ListenPort  int    `json:"listen_port" validate:"min=1,max=65535"`
}

func (c *WSConfig) validate() error {
	return checkStruct(c, "FeedAPI > WS")
}

func (c *WSConfig) VerifyRecommendations() []string {
	var warnings []string

	// 시스템 예약 포트(1024 미만) 사용 경고
	if c.ListenPort < 1024 {
		warnings = append(warnings, fmt.Sprintf("시스템 예약 포트(1-1023)를 사용하도록 설정되었습니다(port: %d). 이 경우 서버 구동 시 관리자 권한이 필요할 수 있습니다", c.ListenPort))
	}

	return warnings
}

// CORSConfig 웹 브라우저의 교차 출처 리소스 공유(CORS) 정책을 설정하는 구조체
type CORSConfig struct {
	AllowOrigins []string `json:"allow_origins" validate:"dive,cors_origin"`
}

func (c *CORSConfig) validate() error {
	if len(c.AllowOrigins) == 0 {
		return apperrors.New(apperrors.InvalidInput, "CORS 허용 도메인(allow_origins) 목록이 비어있습니다")
	}

	if slices.Contains(c.AllowOrigins, "*") && len(c.AllowOrigins) > 1 {
		return apperrors.New(apperrors.InvalidInput, "와일드카드(*)는 다른 도메인과 함께 사용할 수 없습니다. 모든 도메인을 허용하려면 와일드카드만 설정하세요")
	}

	return checkStruct(c, "FeedAPI > CORS")
}

// NotifierConfig 텔레그램 등 알림 채널을 정의하는 설정 구조체
type NotifierConfig struct {
	DefaultNotifierID string           `json:"default_notifier_id"`
	Telegrams         []TelegramConfig `json:"telegrams"`
}

func (c *NotifierConfig) validate() ([]string, error) {
	// Notifier 중복 ID 검사
	if err := checkUniqueField(c.Telegrams, "ID", "Notifier"); err != nil {
		return nil, err
	}

	var notifierIDs []string
	for _, telegram := range c.Telegrams {
		if err := checkStruct(telegram, fmt.Sprintf("Telegram Notifier['%s']", telegram.ID)); err != nil {
			return nil, err
		}
		notifierIDs = append(notifierIDs, telegram.ID)
	}

	// 알림 채널이 하나도 정의되지 않은 구성도 허용합니다. (알림 기능 전체 비활성화)
	if len(notifierIDs) == 0 {
		return nil, nil
	}

	// 기본 Notifier ID 검사
	if !slices.Contains(notifierIDs, c.DefaultNotifierID) {
		return nil, apperrors.New(apperrors.NotFound, fmt.Sprintf("기본 NotifierID('%s')가 정의된 Notifier 목록에 존재하지 않습니다", c.DefaultNotifierID))
	}

	return notifierIDs, nil
}

// TelegramConfig 텔레그램 봇 토큰 및 채팅 ID 정보를 담는 설정 구조체
type TelegramConfig struct {
	ID       string `json:"id" validate:"required"`
	BotToken string `json:"bot_token" validate:"required,telegram_bot_token"`
	ChatID   int64  `json:"chat_id" validate:"required"`
}

// SchedulerConfig 주기적으로 실행되는 백그라운드 작업을 정의하는 설정 구조체
type SchedulerConfig struct {
	// FeedVerification 생성된 피드의 건전성을 주기적으로 점검하는 작업
	FeedVerification FeedVerificationConfig `json:"feed_verification"`
}

func (c *SchedulerConfig) validate(notifierIDs []string) error {
	return c.FeedVerification.validate(notifierIDs)
}

// FeedVerificationConfig 피드 검증 작업의 실행 주기와 결과 통지 채널을 정의하는 구조체
type FeedVerificationConfig struct {
	Runnable   bool   `json:"runnable"`
	TimeSpec   string `json:"time_spec"`
	NotifierID string `json:"notifier_id"`
}

func (c *FeedVerificationConfig) validate(notifierIDs []string) error {
	if !c.Runnable {
		return nil
	}

	if err := cronx.Validate(c.TimeSpec); err != nil {
		return apperrors.Wrap(err, apperrors.InvalidInput, "피드 검증 작업의 스케줄러(time_spec) 설정이 유효하지 않습니다")
	}

	if c.NotifierID != "" && !slices.Contains(notifierIDs, c.NotifierID) {
		return apperrors.New(apperrors.NotFound, fmt.Sprintf("피드 검증 작업에서 참조하는 NotifierID('%s')가 정의되지 않았습니다", c.NotifierID))
	}

	return nil
}

// Load 기본 설정 파일을 읽어 애플리케이션 설정을 로드합니다.
func Load() (*AppConfig, error) {
	return LoadWithFile(DefaultFilename)
}

// LoadWithFile 지정된 경로의 설정 파일을 읽어 AppConfig 객체를 생성합니다.
func LoadWithFile(filename string) (*AppConfig, error) {
	k := koanf.New(".")

	// 1. 기본값 로드 (가장 낮은 우선순위)
	err := k.Load(confmap.Provider(map[string]interface{}{
		"shopify.api_version":           DefaultAPIVersion,
		"shopify.page_size":             DefaultPageSize,
		"shopify.max_pages":             DefaultMaxPages,
		"shopify.timeout":               DefaultTimeout,
		"shopify.rate_limit_per_sec":    DefaultRateLimitPerSec,
		"shopify.retry.max_retries":     DefaultMaxRetries,
		"shopify.retry.min_retry_delay": DefaultMinRetryDelay,
		"shopify.retry.max_retry_delay": DefaultMaxRetryDelay,
	}, "."), nil)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "애플리케이션 기본 설정 로드에 실패했습니다")
	}

	// 2. JSON 설정 파일 로드 (기본값 덮어쓰기)
	if err := k.Load(file.Provider(filename), json.Parser()); err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.Wrap(err, apperrors.System, fmt.Sprintf("설정 파일을 찾을 수 없습니다: '%s'", filename))
		}
		return nil, apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("설정 파일 로드 중 오류가 발생했습니다: '%s'", filename))
	}

	// 3. 환경 변수 로드 (최우선 순위, JSON 설정 덮어쓰기)
	// 접두사: FEED_
	// 구분자: 이중 언더스코어(__)를 점(.)으로 변환 (계층 구조 표현)
	// 예: FEED_SHOPIFY__ACCESS_TOKEN -> shopify.access_token
	if err := k.Load(env.Provider("FEED_", ".", func(s string) string {
		s = strings.TrimPrefix(s, "FEED_")
		s = strings.ToLower(s)
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "환경 변수 로드에 실패했습니다")
	}

	// 4. 구조체 언마샬링 (Strict Validation 적용)
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "json",
		DecoderConfig: &mapstructure.DecoderConfig{
			ErrorUnused:      true, // 파일에 존재하지만 구조체에 없는 필드가 있을 경우 에러를 발생시킴
			WeaklyTypedInput: true,
		},
	}
	var appConfig AppConfig
	if err := k.UnmarshalWithConf("", &appConfig, unmarshalConf); err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "설정 데이터를 애플리케이션 구조체로 변환하는데 실패했습니다")
	}

	// 5. 유효성 검사 수행 (정합성 체크)
	if err := appConfig.validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("설정 파일('%s')의 유효성 검증에 실패했습니다", filename))
	}

	return &appConfig, nil
}
