// Package bot wires the Telegram update loop to the hosting services.
package bot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"viperrox/hostbot/service"
	"viperrox/hostbot/store"
	"viperrox/hostbot/validators"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type Bot struct {
	api   *tgbotapi.BotAPI
	svc   *service.Service
	store *store.Store

	// Used to fetch document payloads from Telegram's file servers
	http *http.Client

	adminID    int64
	username   string
	contactURL string
}

func New(svc *service.Service, st *store.Store) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(viper.GetString("bot.token"))
	if err != nil {
		return nil, fmt.Errorf("failed to authorize bot, %w", err)
	}

	return &Bot{
		api:        api,
		svc:        svc,
		store:      st,
		http:       &http.Client{Timeout: 30 * time.Second},
		adminID:    viper.GetInt64("bot.admin_id"),
		username:   viper.GetString("bot.username"),
		contactURL: viper.GetString("bot.contact_url"),
	}, nil
}

// Start runs the long-polling update loop. Updates are handled one at a
// time, which keeps every read-modify-write on a single user's record
// sequential within this process.
func (b *Bot) Start() {
	zap.L().Info("Authorized", zap.String("account", b.api.Self.UserName))

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for update := range updates {
		ctx := context.Background()

		if update.Message != nil {
			b.handleMessage(ctx, update.Message)
		}
		if update.CallbackQuery != nil {
			b.handleCallback(ctx, update.CallbackQuery)
		}
	}
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		zap.L().Warn("Failed to send message", zap.Error(err))
	}
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	b.send(msg)
}

func (b *Bot) referralLink(userID int64) string {
	return fmt.Sprintf("https://t.me/%s?start=%d", b.username, userID)
}

// userMessage turns a pipeline error into the chat message shown to the
// user. Unknown errors get a generic line, the details stay in the logs.
func userMessage(err error) string {
	switch {
	case errors.Is(err, validators.ErrFileTooLarge):
		return fmt.Sprintf("⚠️ File exceeds the %dMB limit.", viper.GetInt64("upload.max_size")>>20)
	case errors.Is(err, validators.ErrUnsupportedFormat):
		return "⚠️ Only .html or .zip files are supported."
	case errors.Is(err, validators.ErrInvalidArchive):
		return "⚠️ That ZIP archive can't be read."
	case errors.Is(err, validators.ErrNoHTMLInArchive):
		return "⚠️ No HTML file found in the ZIP archive."
	case errors.Is(err, store.ErrQuotaExceeded):
		return "⚠️ Upload limit reached. Delete some files or invite friends to earn more slots."
	case errors.Is(err, store.ErrNotFound):
		return "⚠️ File not found."
	case errors.Is(err, service.ErrStorageUpload):
		return "❌ Upload failed. Please try again later."
	default:
		return "❌ Something went wrong. Please try again."
	}
}
