package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Delay between broadcast sends, keeps the bot under Telegram's
// messages-per-second ceiling.
const broadcastDelay = 50 * time.Millisecond

func (b *Bot) handleBroadcast(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From.ID != b.adminID {
		b.reply(msg.Chat.ID, "❌ You are not authorized to use this.")
		return
	}

	text := strings.TrimSpace(msg.CommandArguments())
	if text == "" {
		b.reply(msg.Chat.ID, "⚠️ Usage: /broadcast <message>")
		return
	}

	ids, err := b.store.AllUserIDs(ctx)
	if err != nil {
		zap.L().Error("Failed to list users for broadcast", zap.Error(err))
		b.reply(msg.Chat.ID, userMessage(err))
		return
	}

	var sent, failed int

	for _, id := range ids {
		// A user who blocked the bot fails here, that must never stop
		// the rest of the fan-out
		if _, err := b.api.Send(tgbotapi.NewMessage(id, text)); err != nil {
			zap.L().Warn("Broadcast delivery failed",
				zap.Int64("user_id", id),
				zap.Error(err))
			failed++
		} else {
			sent++
		}

		time.Sleep(broadcastDelay)
	}

	b.reply(msg.Chat.ID, fmt.Sprintf("✅ Sent: %d, ❌ Failed: %d", sent, failed))
}
