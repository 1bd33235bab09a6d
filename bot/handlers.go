package bot

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.Document != nil {
		b.handleDocument(ctx, msg)
		return
	}

	if !msg.IsCommand() {
		return
	}

	switch msg.Command() {
	case "start":
		b.handleStart(ctx, msg)
	case "broadcast":
		b.handleBroadcast(ctx, msg)
	case "addslots":
		b.handleAddSlots(ctx, msg)
	default:
		b.reply(msg.Chat.ID, "⚠️ Unknown command. Use /start to open the menu.")
	}
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID

	res, err := b.svc.Onboard(ctx, userID, msg.CommandArguments())
	if err != nil {
		zap.L().Error("Onboarding failed", zap.Int64("user_id", userID), zap.Error(err))
		b.reply(msg.Chat.ID, userMessage(err))
		return
	}

	if res.Credited {
		// Courtesy note, the referrer may have blocked the bot
		note := tgbotapi.NewMessage(res.ReferrerID,
			fmt.Sprintf("🎉 %s joined using your referral link! You earned +%d upload slots.",
				msg.From.FirstName, viper.GetInt("quota.referral_bonus")))
		if _, err := b.api.Send(note); err != nil {
			zap.L().Debug("Failed to notify referrer", zap.Int64("referrer_id", res.ReferrerID), zap.Error(err))
		}
	}

	text := "👋 *Welcome to the HTML Hosting Bot!*\n\n" +
		"Host static websites easily and share public links.\n" +
		fmt.Sprintf("Refer friends and get +%d upload slots per referral.\n\n", viper.GetInt("quota.referral_bonus")) +
		fmt.Sprintf("🔗 Your referral link: `%s`", b.referralLink(userID))

	m := tgbotapi.NewMessage(msg.Chat.ID, text)
	m.ParseMode = tgbotapi.ModeMarkdown
	m.ReplyMarkup = b.mainMenu()
	b.send(m)
}

func (b *Bot) handleAddSlots(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From.ID != b.adminID {
		b.reply(msg.Chat.ID, "❌ You are not authorized to use this.")
		return
	}

	args := strings.Fields(msg.CommandArguments())
	if len(args) != 2 {
		b.reply(msg.Chat.ID, "⚠️ Usage: /addslots <user_id> <slots>")
		return
	}

	userID, err1 := strconv.ParseInt(args[0], 10, 64)
	slots, err2 := strconv.Atoi(args[1])
	if err1 != nil || err2 != nil || slots <= 0 {
		b.reply(msg.Chat.ID, "⚠️ Usage: /addslots <user_id> <slots>")
		return
	}

	if err := b.svc.GrantSlots(ctx, userID, slots); err != nil {
		zap.L().Error("Failed to grant slots", zap.Int64("user_id", userID), zap.Error(err))
		b.reply(msg.Chat.ID, userMessage(err))
		return
	}

	b.reply(msg.Chat.ID, fmt.Sprintf("✅ User %d now has +%d extra upload slots.", userID, slots))
}

func (b *Bot) handleDocument(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	doc := msg.Document

	// Check the declared size before pulling anything from Telegram.
	// The pipeline re-checks the actual byte count
	if int64(doc.FileSize) > viper.GetInt64("upload.max_size") {
		b.reply(msg.Chat.ID, fmt.Sprintf("⚠️ File exceeds the %dMB limit.", viper.GetInt64("upload.max_size")>>20))
		return
	}

	raw, err := b.downloadDocument(doc.FileID)
	if err != nil {
		zap.L().Error("Failed to download document",
			zap.Int64("user_id", userID),
			zap.Error(err))
		b.reply(msg.Chat.ID, "❌ Couldn't fetch your file from Telegram. Please try again.")
		return
	}

	f, err := b.svc.Ingest(ctx, userID, doc.FileName, raw)
	if err != nil {
		zap.L().Warn("Upload rejected",
			zap.Int64("user_id", userID),
			zap.String("file", doc.FileName),
			zap.Error(err))
		b.reply(msg.Chat.ID, userMessage(err))
		return
	}

	b.reply(msg.Chat.ID, fmt.Sprintf(
		"✅ *Upload Successful!*\n\n📄 File: `%s`\n🌐 [Tap To View](%s)\n`%s`",
		f.OriginalName, f.ShortURL, f.ShortURL))
}

func (b *Bot) downloadDocument(fileID string) ([]byte, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, err
	}

	resp, err := b.http.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("telegram file server returned status %d", resp.StatusCode)
	}

	// One past the limit so the validator can tell "at the limit" from
	// "over it"
	return io.ReadAll(io.LimitReader(resp.Body, viper.GetInt64("upload.max_size")+1))
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		zap.L().Warn("Failed to answer callback", zap.Error(err))
	}

	chatID := cb.Message.Chat.ID
	userID := cb.From.ID

	switch action := ParseCallback(cb.Data); action.Command {
	case CmdMenu:
		b.editMenu(cb, "📋 *Main Menu*", b.mainMenu())
	case CmdUpload:
		b.editMenu(cb, fmt.Sprintf("📤 Please send a .html or .zip file now (max %dMB).",
			viper.GetInt64("upload.max_size")>>20), b.backButton())
	case CmdMyFiles:
		b.showMyFiles(ctx, cb)
	case CmdDeleteMenu:
		b.showDeleteMenu(ctx, cb)
	case CmdDeleteFile:
		b.deleteFile(ctx, cb, action.FileID)
	case CmdLeaderboard:
		b.showLeaderboard(ctx, cb)
	case CmdHelp:
		b.showHelp(cb)
	default:
		zap.L().Debug("Unknown callback",
			zap.Int64("user_id", userID),
			zap.String("data", cb.Data))
		b.reply(chatID, "⚠️ Unknown action.")
	}
}

func (b *Bot) editMenu(cb *tgbotapi.CallbackQuery, text string, kb tgbotapi.InlineKeyboardMarkup) {
	edit := tgbotapi.NewEditMessageTextAndMarkup(cb.Message.Chat.ID, cb.Message.MessageID, text, kb)
	edit.ParseMode = tgbotapi.ModeMarkdown
	b.send(edit)
}

func (b *Bot) mainMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📤 Upload File", cbUpload),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📁 My Files", cbMyFiles),
			tgbotapi.NewInlineKeyboardButtonData("❌ Delete File", cbDeleteMenu),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🏆 Leaderboard", cbLeaderboard),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("ℹ️ Help", cbHelp),
			tgbotapi.NewInlineKeyboardButtonURL("📬 Contact", b.contactURL),
		),
	)
}

func (b *Bot) backButton() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔙 Back", cbMenu),
		),
	)
}

func (b *Bot) showMyFiles(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	userID := cb.From.ID

	u, err := b.store.User(ctx, userID)
	if err != nil {
		zap.L().Error("Failed to load user", zap.Int64("user_id", userID), zap.Error(err))
		b.editMenu(cb, userMessage(err), b.backButton())
		return
	}

	files, err := b.store.ListFiles(ctx, userID)
	if err != nil {
		zap.L().Error("Failed to list files", zap.Int64("user_id", userID), zap.Error(err))
		b.editMenu(cb, userMessage(err), b.backButton())
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📂 *Your Files (%d/%d):*\n", u.QuotaUsed, u.QuotaTotal)

	if len(files) == 0 {
		sb.WriteString("\nYour storage is empty.\n")
	} else {
		for _, f := range files {
			fmt.Fprintf(&sb, "• [%s](%s) (%dKB)\n", f.OriginalName, f.ShortURL, f.Size/1024)
		}
	}

	fmt.Fprintf(&sb, "\n🎯 Referrals: %d\n🔗 Referral link: `%s`", u.ReferralCount, b.referralLink(userID))

	b.editMenu(cb, sb.String(), b.backButton())
}

func (b *Bot) showDeleteMenu(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	files, err := b.store.ListFiles(ctx, cb.From.ID)
	if err != nil {
		zap.L().Error("Failed to list files", zap.Int64("user_id", cb.From.ID), zap.Error(err))
		b.editMenu(cb, userMessage(err), b.backButton())
		return
	}

	if len(files) == 0 {
		b.editMenu(cb, "⚠️ No uploaded files found.", b.backButton())
		return
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, f := range files {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑 "+f.OriginalName, fmt.Sprintf("%s%d", cbDeletePrefix, f.ID)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🔙 Back", cbMenu),
	))

	b.editMenu(cb, "🗑️ Select a file to delete:", tgbotapi.NewInlineKeyboardMarkup(rows...))
}

func (b *Bot) deleteFile(ctx context.Context, cb *tgbotapi.CallbackQuery, fileID uint) {
	f, err := b.svc.Delete(ctx, cb.From.ID, fileID)
	if err != nil {
		b.editMenu(cb, userMessage(err), b.backButton())
		return
	}

	b.editMenu(cb, fmt.Sprintf("✅ Deleted `%s`.", f.OriginalName), b.backButton())
}

func (b *Bot) showLeaderboard(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	entries, err := b.svc.Leaderboard(ctx, 0)
	if err != nil {
		zap.L().Error("Failed to build leaderboard", zap.Error(err))
		b.editMenu(cb, userMessage(err), b.backButton())
		return
	}

	var sb strings.Builder
	sb.WriteString("*🏆 Top Referrers:*\n\n")

	if len(entries) == 0 {
		sb.WriteString("Nobody has referred anyone yet.")
	}

	for i, e := range entries {
		fmt.Fprintf(&sb, "%d. `%d` - %d referrals\n", i+1, e.UserID, e.Referrals)
	}

	b.editMenu(cb, sb.String(), b.backButton())
}

func (b *Bot) showHelp(cb *tgbotapi.CallbackQuery) {
	text := "ℹ️ *Bot Help*\n\n" +
		fmt.Sprintf("1. Send a .html or .zip file (max %dMB) to host.\n", viper.GetInt64("upload.max_size")>>20) +
		"2. ZIP must include at least one .html file, `index.html` is preferred.\n" +
		fmt.Sprintf("3. You get %d upload slots by default.\n", viper.GetInt("quota.base_slots")) +
		fmt.Sprintf("4. Earn +%d slots per referral.", viper.GetInt("quota.referral_bonus"))

	b.editMenu(cb, text, b.backButton())
}
