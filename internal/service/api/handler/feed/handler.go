// Package feed 구글 쇼핑 피드 다운로드 엔드포인트 핸들러를 제공합니다.
package feed

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/iancoleman/strcase"
	"github.com/labstack/echo/v4"

	"github.com/darkkaiser/shopping-feed-server/internal/service/api/constants"
	"github.com/darkkaiser/shopping-feed-server/internal/service/notification"
	applog "github.com/darkkaiser/shopping-feed-server/pkg/log"
)

// feedContentType 피드 응답의 Content-Type
const feedContentType = "text/csv; charset=utf-8"

// defaultFeedFilename 쇼핑몰 이름 조회가 실패한 경우 사용하는 기본 다운로드 파일명
const defaultFeedFilename = "google-shopping-feed.csv"

// Generator 피드 문서를 생성하는 컴포넌트의 인터페이스입니다.
type Generator interface {
	// Generate 피드 문서 전체를 생성하여 반환합니다.
	Generate(ctx context.Context) (string, error)
}

// ShopNameProvider 쇼핑몰 이름을 조회하는 컴포넌트의 인터페이스입니다.
// 다운로드 파일명 구성에 사용됩니다.
type ShopNameProvider interface {
	FetchShopName(ctx context.Context) (string, error)
}

// Handler 피드 다운로드 엔드포인트 핸들러
type Handler struct {
	generator Generator

	shopNames ShopNameProvider

	notificationSender notification.Sender

	// filenameMu cachedFilename 보호용 뮤텍스
	filenameMu     sync.Mutex
	cachedFilename string
}

// NewHandler Handler 인스턴스를 생성합니다.
func NewHandler(generator Generator, shopNames ShopNameProvider, notificationSender notification.Sender) *Handler {
	if generator == nil {
		panic(constants.PanicMsgFeedGeneratorRequired)
	}
	if notificationSender == nil {
		panic(constants.PanicMsgNotificationSenderRequired)
	}

	return &Handler{
		generator: generator,

		shopNames: shopNames,

		notificationSender: notificationSender,
	}
}

// GoogleShoppingFeedHandler godoc
// @Summary 구글 쇼핑 피드 다운로드
// @Description 쇼핑몰의 전체 상품 카탈로그를 수집하여 구글 쇼핑 피드(CSV)로 변환하여 반환합니다.
// @Description 판매 중(active) 상태의 상품만 포함되며, 상품당 Variant 수만큼의 레코드가 생성됩니다.
// @Description
// @Description 피드 생성은 부분 실패를 허용하지 않습니다. 카탈로그 수집 중 오류가 발생하면
// @Description 불완전한 피드 대신 오류 메시지(text/plain)가 반환됩니다.
// @Tags Feed
// @Produce plain
// @Success 200 {string} string "구글 쇼핑 피드 (text/csv)"
// @Failure 500 {string} string "피드 생성 실패 사유"
// @Router /feed/google-shopping.csv [get]
func (h *Handler) GoogleShoppingFeedHandler(c echo.Context) error {
	applog.WithComponentAndFields(constants.ComponentHandler, applog.Fields{
		"endpoint":  "/feed/google-shopping.csv",
		"method":    c.Request().Method,
		"remote_ip": c.RealIP(),
	}).Debug(constants.LogMsgFeedRequest)

	ctx := c.Request().Context()

	document, err := h.generator.Generate(ctx)
	if err != nil {
		applog.WithComponentAndFields(constants.ComponentHandler, applog.Fields{
			"endpoint": "/feed/google-shopping.csv",
		}).WithError(err).Error(constants.ErrMsgFeedGenerationFailed)

		h.notificationSender.NotifyDefaultWithError(fmt.Sprintf("%s\r\n\r\n%s", constants.ErrMsgFeedGenerationFailed, err))

		// 불완전한 피드를 반환하지 않고 오류 메시지만 text/plain으로 반환
		return c.String(http.StatusInternalServerError, fmt.Sprintf("%s: %s", constants.ErrMsgFeedGenerationFailed, err))
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="%s"`, h.feedFilename(ctx)))

	return c.Blob(http.StatusOK, feedContentType, []byte(document))
}

// feedFilename 쇼핑몰 이름을 기반으로 다운로드 파일명을 구성합니다.
//
// 쇼핑몰 이름은 변하지 않는 값이므로 최초 조회 성공 이후에는 캐시된 값을 사용하며,
// 조회가 실패하더라도 피드 다운로드 자체는 기본 파일명으로 계속 제공됩니다.
func (h *Handler) feedFilename(ctx context.Context) string {
	h.filenameMu.Lock()
	defer h.filenameMu.Unlock()

	if h.cachedFilename != "" {
		return h.cachedFilename
	}

	if h.shopNames == nil {
		return defaultFeedFilename
	}

	shopName, err := h.shopNames.FetchShopName(ctx)
	if err != nil || shopName == "" {
		applog.WithComponent(constants.ComponentHandler).WithError(err).Warn("쇼핑몰 이름 조회가 실패하여 기본 파일명을 사용합니다")
		return defaultFeedFilename
	}

	h.cachedFilename = fmt.Sprintf("%s-google-shopping-feed.csv", strcase.ToKebab(shopName))

	return h.cachedFilename
}
