// Package bot provides the Telegram bot initialization and handlers.
package bot

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"gitlab.com/yelinaung/expense-tracker/internal/config"
	"gitlab.com/yelinaung/expense-tracker/internal/gemini"
	"gitlab.com/yelinaung/expense-tracker/internal/logger"
	"gitlab.com/yelinaung/expense-tracker/internal/models"
)

// pollTimeout is the long-poll timeout used for getUpdates.
const pollTimeout = time.Minute

// CategoryStore is the category data access the bot needs.
type CategoryStore interface {
	Ready() bool
	List(ctx context.Context) ([]models.Category, error)
	GetByID(ctx context.Context, id string) (*models.Category, error)
	GetByName(ctx context.Context, name string) (*models.Category, error)
	Create(ctx context.Context, in models.NewCategory) (*models.Category, error)
	Delete(ctx context.Context, id string) error
}

// ExpenseStore is the expense data access the bot needs.
type ExpenseStore interface {
	Ready() bool
	List(ctx context.Context, filter models.ExpenseFilter) ([]models.Expense, error)
	Create(ctx context.Context, in models.NewExpense) (*models.Expense, error)
	Delete(ctx context.Context, id string) error
}

// CategorySuggester picks a category for descriptions sent without one.
type CategorySuggester interface {
	SuggestCategory(ctx context.Context, description string, names []string) (*gemini.CategorySuggestion, error)
}

// Bot wraps the Telegram bot with application dependencies.
type Bot struct {
	bot        *bot.Bot
	cfg        *config.Config
	categories CategoryStore
	expenses   ExpenseStore
	suggester  CategorySuggester
	now        func() time.Time
}

// New creates a new Bot instance. suggester may be nil.
func New(cfg *config.Config, categories CategoryStore, expenses ExpenseStore, suggester CategorySuggester) (*Bot, error) {
	b := newBot(cfg, categories, expenses, suggester)

	httpClient := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	opts := []bot.Option{
		bot.WithMiddlewares(b.whitelistMiddleware),
		bot.WithDefaultHandler(b.defaultHandler),
		bot.WithHTTPClient(pollTimeout, httpClient),
	}

	telegramBot, err := bot.New(cfg.TelegramBotToken, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b.bot = telegramBot
	b.registerHandlers()

	return b, nil
}

func newBot(cfg *config.Config, categories CategoryStore, expenses ExpenseStore, suggester CategorySuggester) *Bot {
	return &Bot{
		cfg:        cfg,
		categories: categories,
		expenses:   expenses,
		suggester:  suggester,
		now:        time.Now,
	}
}

// Start begins polling for updates and blocks until ctx is done.
func (b *Bot) Start(ctx context.Context) {
	logger.Log.Info().Msg("Bot started polling")
	b.bot.Start(ctx)
}

// registerHandlers sets up command and callback handlers.
func (b *Bot) registerHandlers() {
	commands := []struct {
		name    string
		handler bot.HandlerFunc
	}{
		{"start", b.handleStart},
		{"help", b.handleHelp},
		{"categories", b.handleCategories},
		{"addcategory", b.handleAddCategory},
		{"deletecategory", b.handleDeleteCategory},
		{"add", b.handleAdd},
		{"list", b.handleList},
		{"delete", b.handleDelete},
		{"summary", b.handleSummary},
		{"chart", b.handleChart},
		{"export", b.handleExport},
	}
	for _, c := range commands {
		b.bot.RegisterHandler(bot.HandlerTypeMessageText, c.name, bot.MatchTypeCommandStartOnly, c.handler)
	}

	b.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, deleteCategoryCallbackPrefix, bot.MatchTypePrefix, b.handleDeleteCategoryCallback)
	b.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, cancelCallbackData, bot.MatchTypeExact, b.handleCancelCallback)
}

// whitelistMiddleware checks if the user is whitelisted before processing.
func (b *Bot) whitelistMiddleware(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, tgBot *bot.Bot, update *tgmodels.Update) {
		if !b.allowUpdateCore(ctx, tgBot, update) {
			return
		}
		next(ctx, tgBot, update)
	}
}

// allowUpdateCore is the testable implementation of whitelistMiddleware.
func (b *Bot) allowUpdateCore(ctx context.Context, tg TelegramAPI, update *tgmodels.Update) bool {
	userID := extractUserID(update)
	if userID == 0 {
		return false
	}

	username := extractUsername(update)
	logUserAction(userID, update)

	if b.cfg.IsUserWhitelisted(userID, username) {
		return true
	}

	logger.Log.Warn().
		Str("user_hash", logger.HashUserID(userID)).
		Msg("Blocked non-whitelisted user")
	if update.Message != nil {
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: update.Message.Chat.ID,
			Text:   "⛔ Sorry, you are not authorized to use this bot.",
		})
	}
	return false
}

// logUserAction logs the kind of input a user sent without its content.
func logUserAction(userID int64, update *tgmodels.Update) {
	switch {
	case update.Message != nil:
		logger.Log.Info().
			Str("user_hash", logger.HashUserID(userID)).
			Int64("chat_id", update.Message.Chat.ID).
			Str("text", logger.SanitizeText(update.Message.Text)).
			Msg("User input")

	case update.CallbackQuery != nil:
		logger.Log.Info().
			Str("user_hash", logger.HashUserID(userID)).
			Str("data", update.CallbackQuery.Data).
			Msg("Callback query")
	}
}

// extractUsername gets the username from the update.
func extractUsername(update *tgmodels.Update) string {
	if update.Message != nil && update.Message.From != nil {
		return update.Message.From.Username
	}
	if update.CallbackQuery != nil {
		return update.CallbackQuery.From.Username
	}
	return ""
}

// extractUserID gets the user ID from various update types.
func extractUserID(update *tgmodels.Update) int64 {
	if update.Message != nil && update.Message.From != nil {
		return update.Message.From.ID
	}
	if update.CallbackQuery != nil {
		return update.CallbackQuery.From.ID
	}
	return 0
}

// defaultHandler handles unrecognized messages, attempting free-text expense parsing.
func (b *Bot) defaultHandler(ctx context.Context, tgBot *bot.Bot, update *tgmodels.Update) {
	b.defaultHandlerCore(ctx, tgBot, update)
}

// defaultHandlerCore is the testable implementation of defaultHandler.
func (b *Bot) defaultHandlerCore(ctx context.Context, tg TelegramAPI, update *tgmodels.Update) {
	if update.Message == nil {
		return
	}

	if b.handleFreeTextExpenseCore(ctx, tg, update) {
		return
	}

	b.reply(ctx, tg, update.Message.Chat.ID,
		"I didn't understand that. Use /help to see available commands, or send an expense like <code>5.50 Coffee</code>")
}
