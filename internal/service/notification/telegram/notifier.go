// Package telegram 텔레그램 Bot API를 통해 알림 메시지를 전송하는 Notifier 구현 패키지입니다.
package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/darkkaiser/shopping-feed-server/internal/config"
	apperrors "github.com/darkkaiser/shopping-feed-server/internal/pkg/errors"
	applog "github.com/darkkaiser/shopping-feed-server/pkg/log"
)

// component 텔레그램 Notifier 로깅용 컴포넌트 이름
const component = "notification.telegram"

// messageMaxLength 텔레그램 Bot API가 허용하는 단일 메시지의 최대 길이(바이트)입니다.
// 이를 초과하는 메시지는 전송 전에 분할되어야 합니다.
const messageMaxLength = 4096

// errorMessagePrefix 오류 알림 메시지의 첫 줄에 붙는 표식
const errorMessagePrefix = "🚨 오류가 발생하였습니다.\n\n"

// botAPI 텔레그램 Bot API 클라이언트의 인터페이스입니다. 테스트에서 실제 API 호출을 대체하기 위해 사용합니다.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier 텔레그램 채널로 알림 메시지를 전송하는 Notifier 구현체입니다.
type Notifier struct {
	id     string
	chatID int64

	bot botAPI
}

// NewNotifier 설정 정보를 바탕으로 텔레그램 Notifier를 생성합니다.
// 봇 토큰이 유효하지 않거나 텔레그램 서버와의 통신이 실패하면 에러를 반환합니다.
func NewNotifier(cfg *config.TelegramConfig) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.Unavailable, "텔레그램 봇('%s') 초기화가 실패하였습니다", cfg.ID)
	}

	return &Notifier{
		id:     cfg.ID,
		chatID: cfg.ChatID,
		bot:    bot,
	}, nil
}

// newNotifierWithBot 테스트용 생성자
func newNotifierWithBot(id string, chatID int64, bot botAPI) *Notifier {
	return &Notifier{
		id:     id,
		chatID: chatID,
		bot:    bot,
	}
}

// ID Notifier의 고유 식별자를 반환합니다.
func (n *Notifier) ID() string {
	return n.id
}

// Send 알림 메시지를 텔레그램 채널로 전송합니다.
//
// 메시지가 텔레그램 API의 최대 길이를 초과하는 경우, 가능한 한 줄바꿈 단위로 분할하여
// 순서대로 전송하며 중간에 전송이 실패하면 즉시 중단합니다.
func (n *Notifier) Send(title string, message string, errorOccurred bool) error {
	m := message
	if title != "" {
		m = fmt.Sprintf("[ %s ]\n\n%s", title, message)
	}
	if errorOccurred {
		m = errorMessagePrefix + m
	}

	for _, chunk := range splitMessage(m, messageMaxLength) {
		if _, err := n.bot.Send(tgbotapi.NewMessage(n.chatID, chunk)); err != nil {
			applog.WithComponentAndFields(component, applog.Fields{
				"notifier_id": n.id,
			}).WithError(err).Error("텔레그램 메시지 전송이 실패하였습니다")

			return apperrors.Wrapf(err, apperrors.Unavailable, "텔레그램 메시지 전송이 실패하였습니다(Notifier:'%s')", n.id)
		}
	}

	return nil
}
