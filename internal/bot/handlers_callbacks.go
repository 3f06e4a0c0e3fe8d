package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"

	"gitlab.com/yelinaung/expense-tracker/internal/logger"
	appmodels "gitlab.com/yelinaung/expense-tracker/internal/models"
)

const (
	deleteCategoryCallbackPrefix = "delcat:"
	cancelCallbackData           = "cancel"
)

func deleteCategoryKeyboard(categoryID string) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{Text: "✅ Yes, Delete", CallbackData: deleteCategoryCallbackPrefix + categoryID},
			},
			{
				{Text: "❌ No, Keep It", CallbackData: cancelCallbackData},
			},
		},
	}
}

// callbackTarget returns the chat and message a callback query was pressed on.
func callbackTarget(update *models.Update) (chatID int64, messageID int, ok bool) {
	msg := update.CallbackQuery.Message.Message
	if msg == nil {
		return 0, 0, false
	}
	return msg.Chat.ID, msg.ID, true
}

func (b *Bot) editMessage(ctx context.Context, tg TelegramAPI, chatID int64, messageID int, text string) {
	_, err := tg.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		logger.Log.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to edit message")
	}
}

// handleDeleteCategoryCallback handles the confirmation button of /deletecategory.
func (b *Bot) handleDeleteCategoryCallback(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleDeleteCategoryCallbackCore(ctx, tgBot, update)
}

// handleDeleteCategoryCallbackCore is the testable implementation.
func (b *Bot) handleDeleteCategoryCallbackCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}

	_, _ = tg.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: update.CallbackQuery.ID,
	})

	chatID, messageID, ok := callbackTarget(update)
	if !ok {
		return
	}

	categoryID := strings.TrimPrefix(update.CallbackQuery.Data, deleteCategoryCallbackPrefix)
	if _, err := uuid.Parse(categoryID); err != nil {
		b.editMessage(ctx, tg, chatID, messageID, "❌ Invalid category.")
		return
	}

	if !b.categories.Ready() || !b.expenses.Ready() {
		b.editMessage(ctx, tg, chatID, messageID, "⚙️ Store is not configured. Send /help after setting it up.")
		return
	}

	cat, err := b.categories.GetByID(ctx, categoryID)
	if err != nil {
		logger.Log.Debug().Err(err).Msg("Category lookup failed")
		b.editMessage(ctx, tg, chatID, messageID, "❌ Category not found. It may already be deleted.")
		return
	}

	if err := b.categories.Delete(ctx, cat.ID); err != nil {
		logger.Log.Error().Err(err).Str("category_id", cat.ID).Msg("Failed to delete category")
		b.editMessage(ctx, tg, chatID, messageID, "❌ Failed to delete category. Please try again.")
		return
	}

	logger.Log.Info().Str("category_id", cat.ID).Msg("Category deleted")
	b.editMessage(ctx, tg, chatID, messageID, fmt.Sprintf(
		"✅ Category '<b>%s</b>' deleted. Its expenses are now %s.",
		escapeHTML(cat.Name), appmodels.UncategorizedName))
}

// handleCancelCallback dismisses a confirmation prompt.
func (b *Bot) handleCancelCallback(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleCancelCallbackCore(ctx, tgBot, update)
}

// handleCancelCallbackCore is the testable implementation of handleCancelCallback.
func (b *Bot) handleCancelCallbackCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}

	_, _ = tg.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: update.CallbackQuery.ID,
		Text:            "Cancelled",
	})

	chatID, messageID, ok := callbackTarget(update)
	if !ok {
		return
	}
	b.editMessage(ctx, tg, chatID, messageID, "👍 Nothing was deleted.")
}
