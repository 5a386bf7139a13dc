package telegram

import (
	"context"
	"strconv"
	"trading-dashboard/config"
	"trading-dashboard/pkg/logger"

	"golang.org/x/time/rate"
	"gopkg.in/telebot.v3"
)

// Notifier pushes dashboard events (applied suggestion sets, trial
// improvements) to a single configured chat. All sends are best-effort:
// failures are logged and swallowed so they never reach the caller.
type Notifier struct {
	cfg     *config.TelegramConfig
	log     *logger.Logger
	bot     *telebot.Bot
	chat    *telebot.Chat
	limiter *rate.Limiter
}

func NewNotifier(cfg *config.TelegramConfig, log *logger.Logger) (*Notifier, error) {
	if !cfg.Enabled {
		return &Notifier{cfg: cfg, log: log}, nil
	}

	bot, err := telebot.NewBot(telebot.Settings{
		Token:   cfg.BotToken,
		Offline: false,
	})
	if err != nil {
		return nil, err
	}

	chatID, err := strconv.ParseInt(cfg.ChatID, 10, 64)
	if err != nil {
		return nil, err
	}

	return &Notifier{
		cfg:     cfg,
		log:     log,
		bot:     bot,
		chat:    &telebot.Chat{ID: chatID},
		limiter: rate.NewLimiter(rate.Limit(cfg.MaxRequestPerSecond), cfg.MaxRequestPerSecond),
	}, nil
}

// Notify sends a message to the configured chat. A nil bot (notifier
// disabled) or any send failure is a silent no-op.
func (n *Notifier) Notify(ctx context.Context, message string) {
	if n == nil || n.bot == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, n.cfg.TimeoutDuration)
	defer cancel()

	if err := n.limiter.Wait(ctx); err != nil {
		n.log.WarnContext(ctx, "Telegram notify rate wait cancelled", logger.ErrorField(err))
		return
	}

	if _, err := n.bot.Send(n.chat, message, telebot.ModeMarkdown); err != nil {
		n.log.WarnContext(ctx, "Failed to send telegram notification", logger.ErrorField(err))
	}
}
