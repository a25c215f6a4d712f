package config

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/darkkaiser/shopping-feed-server/internal/pkg/errors"
	"github.com/darkkaiser/shopping-feed-server/pkg/validation"
)

// validate 패키지 전역에서 공유되는 Validator 인스턴스
var validate = newValidator()

// 텔레그램 봇 토큰 검증을 위한 정규식 (예: 123456:ABC-DEF1234ghIkl-zyx57W2v1u123ew11)
var telegramBotTokenRegex = regexp.MustCompile(`^\d{3,20}:[a-zA-Z0-9_-]{30,50}$`)

// newValidator 새로운 Validator 인스턴스를 생성하고 커스텀 유효성 검사 함수를 등록합니다.
func newValidator() *validator.Validate {
	v := validator.New()

	// 검증 에러가 났을 때, 에러 메시지에 Go 구조체 필드명(예: AccessToken) 대신 JSON 이름(예: access_token)을 보여주도록 설정합니다.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// 커스텀 유효성 검사 함수 등록
	if err := v.RegisterValidation("cors_origin", validateCORSOrigin); err != nil {
		panic(fmt.Sprintf("초기화 치명적 오류: 'cors_origin' 커스텀 유효성 검사 함수 등록에 실패했습니다: %v", err))
	}
	if err := v.RegisterValidation("telegram_bot_token", validateTelegramBotToken); err != nil {
		panic(fmt.Sprintf("초기화 치명적 오류: 'telegram_bot_token' 커스텀 유효성 검사 함수 등록에 실패했습니다: %v", err))
	}

	return v
}

// validateCORSOrigin `validator` 라이브러리의 검증 인터페이스를 도메인 로직과 연결하는 어댑터입니다.
// 실제 검증은 `validation.ValidateCORSOrigin` 함수로 위임합니다.
func validateCORSOrigin(fl validator.FieldLevel) bool {
	return validation.ValidateCORSOrigin(fl.Field().String()) == nil
}

// validateTelegramBotToken 입력된 문자열이 유효한 텔레그램 봇 토큰 형식인지 검증합니다.
// 텔레그램 봇 토큰은 식별자(숫자)와 비밀키(문자열)가 콜론(:)으로 구분된 형태여야 합니다.
func validateTelegramBotToken(fl validator.FieldLevel) bool {
	return telegramBotTokenRegex.MatchString(fl.Field().String())
}

// checkStruct 구조체 인스턴스의 유효성을 태그 규칙에 따라 검증하고,
// 발생한 오류를 사용자 친화적인 도메인 에러로 변환합니다.
func checkStruct(s interface{}, contextName string) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok || len(validationErrors) == 0 {
		return apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("%s 설정 검증 중 알 수 없는 오류가 발생했습니다", contextName))
	}

	// 첫 번째 에러만 상세히 보고
	firstErr := validationErrors[0]

	switch firstErr.Tag() {
	case "required":
		return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("%s의 필수 설정(%s)이 누락되었습니다", contextName, firstErr.Field()))
	case "required_if":
		return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("%s의 설정(%s)은 TLS 서버 활성화 시 필수입니다", contextName, firstErr.Field()))
	case "file":
		return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("%s에 지정된 파일(%s)을 찾을 수 없습니다: '%v'", contextName, firstErr.Field(), firstErr.Value()))
	case "hostname":
		return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("%s의 설정(%s)이 유효한 호스트명이 아닙니다: '%v'", contextName, firstErr.Field(), firstErr.Value()))
	case "url":
		return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("%s의 설정(%s)이 유효한 URL이 아닙니다: '%v'", contextName, firstErr.Field(), firstErr.Value()))
	case "min", "max", "gt":
		return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("%s의 설정(%s)이 허용 범위를 벗어났습니다: '%v'", contextName, firstErr.Field(), firstErr.Value()))
	case "cors_origin":
		return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("CORS Origin 형식이 올바르지 않습니다: '%v' (형식: Scheme://Host[:Port], 예: https://example.com)", firstErr.Value()))
	case "telegram_bot_token":
		return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("%s의 봇 토큰(bot_token) 형식이 올바르지 않습니다", contextName))
	default:
		return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("%s의 설정(%s)이 유효하지 않습니다: '%v'", contextName, firstErr.Field(), firstErr.Value()))
	}
}

// checkUniqueField 구조체 슬라이스에서 지정된 필드의 값이 중복되지 않는지 검사합니다.
func checkUniqueField[T any](items []T, fieldName, itemName string) error {
	seen := make(map[string]struct{}, len(items))

	for _, item := range items {
		v := reflect.ValueOf(item)
		if v.Kind() == reflect.Ptr {
			v = v.Elem()
		}

		field := v.FieldByName(fieldName)
		if !field.IsValid() {
			return apperrors.New(apperrors.Internal, fmt.Sprintf("%s 중복 검사 실패: 필드('%s')를 찾을 수 없습니다", itemName, fieldName))
		}

		key := fmt.Sprintf("%v", field.Interface())
		if _, exists := seen[key]; exists {
			return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("%s의 식별자('%s')가 중복되었습니다", itemName, key))
		}
		seen[key] = struct{}{}
	}

	return nil
}
