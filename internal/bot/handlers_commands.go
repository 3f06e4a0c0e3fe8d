package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"gitlab.com/yelinaung/expense-tracker/internal/analytics"
	"gitlab.com/yelinaung/expense-tracker/internal/logger"
	appmodels "gitlab.com/yelinaung/expense-tracker/internal/models"
)

// listLimit caps how many expenses /list shows in one message.
const listLimit = 30

// reply sends an HTML message and logs delivery failures.
func (b *Bot) reply(ctx context.Context, tg TelegramAPI, chatID int64, text string) {
	_, err := tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		logger.Log.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send message")
	}
}

// requireStore replies with setup instructions and returns false while the
// store is not configured. Callers must not touch the store in that case.
func (b *Bot) requireStore(ctx context.Context, tg TelegramAPI, chatID int64) bool {
	if b.categories.Ready() && b.expenses.Ready() {
		return true
	}

	var sb strings.Builder
	sb.WriteString("⚙️ <b>Store is not configured</b>\n\n")
	if missing := b.cfg.MissingStoreSettings(); len(missing) > 0 {
		sb.WriteString("Missing: <code>" + strings.Join(missing, "</code>, <code>") + "</code>\n\n")
	}
	sb.WriteString("1. Create a PostgreSQL database for the tracker.\n")
	sb.WriteString("2. Set <code>STORE_URL</code> and <code>STORE_API_KEY</code> in the environment or a .env file.\n")
	sb.WriteString("3. Run <code>expense-tracker migrate</code>, then restart <code>expense-tracker serve</code>.")

	b.reply(ctx, tg, chatID, sb.String())
	return false
}

// handleStart handles the /start command.
func (b *Bot) handleStart(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleStartCore(ctx, tgBot, update)
}

// handleStartCore is the testable implementation of handleStart.
func (b *Bot) handleStartCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}

	firstName := ""
	if update.Message.From != nil {
		firstName = update.Message.From.FirstName
	}

	text := fmt.Sprintf(`👋 Welcome%s!

I'm your personal expense tracker. I keep a running list of what you spend, grouped by category.

<b>Quick Start:</b>
• Send an expense like: <code>5.50 Coffee</code>
• Or use structured format: <code>/add 12 Lunch Food</code>
• See where it went with /summary and /chart

Use /help to see all available commands.`,
		formatGreeting(firstName))

	b.reply(ctx, tg, update.Message.Chat.ID, text)
}

// handleHelp handles the /help command.
func (b *Bot) handleHelp(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleHelpCore(ctx, tgBot, update)
}

// handleHelpCore is the testable implementation of handleHelp.
func (b *Bot) handleHelpCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}

	text := `📚 <b>Available Commands</b>

<b>Expenses:</b>
• <code>/add &lt;amount&gt; &lt;description&gt; [category]</code> - Add an expense
• Just send a message like <code>5.50 Coffee</code> to quickly add
• <code>/list [category]</code> - Recent expenses grouped by day
• <code>/delete &lt;id&gt;</code> - Delete an expense by the ID shown in /list

<b>Categories:</b>
• <code>/categories</code> - List all categories
• <code>/addcategory &lt;name&gt; [#color]</code> - Create a category
• <code>/deletecategory &lt;name&gt;</code> - Delete a category (its expenses are kept)

<b>Reports:</b>
• <code>/summary</code> - Today, this week, this month and top categories
• <code>/chart category|daily|weekly|monthly</code> - Spending chart
• <code>/export</code> - All expenses as CSV

<b>Other:</b>
• <code>/help</code> - Show this help message`

	b.reply(ctx, tg, update.Message.Chat.ID, text)
}

// handleCategories handles the /categories command.
func (b *Bot) handleCategories(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleCategoriesCore(ctx, tgBot, update)
}

// handleCategoriesCore is the testable implementation of handleCategories.
func (b *Bot) handleCategoriesCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	if !b.requireStore(ctx, tg, chatID) {
		return
	}

	categories, err := b.categories.List(ctx)
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to list categories")
		b.reply(ctx, tg, chatID, "❌ Failed to load categories. Please try again.")
		return
	}

	if len(categories) == 0 {
		b.reply(ctx, tg, chatID, "No categories yet. Create one with <code>/addcategory Food</code>.")
		return
	}

	var sb strings.Builder
	sb.WriteString("📁 <b>Expense Categories</b>\n\n")
	for i, cat := range categories {
		fmt.Fprintf(&sb, "%d. %s <code>%s</code>\n", i+1, escapeHTML(cat.Name), cat.Color)
	}

	b.reply(ctx, tg, chatID, sb.String())
}

// handleAddCategory handles the /addcategory command.
func (b *Bot) handleAddCategory(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleAddCategoryCore(ctx, tgBot, update)
}

// handleAddCategoryCore is the testable implementation of handleAddCategory.
func (b *Bot) handleAddCategoryCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	input := ParseCategoryInput(extractCommandArgs(update.Message.Text, "/addcategory"))
	if err := input.Normalize().Validate(); err != nil {
		b.reply(ctx, tg, chatID, fmt.Sprintf(
			"❌ %s\n\nUsage: <code>/addcategory Travel #3b82f6</code>", escapeHTML(err.Error())))
		return
	}

	if !b.requireStore(ctx, tg, chatID) {
		return
	}

	cat, err := b.categories.Create(ctx, input)
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to create category")
		b.reply(ctx, tg, chatID, "❌ Failed to save category. Please try again.")
		return
	}

	logger.Log.Info().Str("category_id", cat.ID).Msg("Category created")
	b.reply(ctx, tg, chatID, fmt.Sprintf("✅ Category '<b>%s</b>' created.", escapeHTML(cat.Name)))
}

// handleDeleteCategory handles the /deletecategory command.
func (b *Bot) handleDeleteCategory(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleDeleteCategoryCore(ctx, tgBot, update)
}

// handleDeleteCategoryCore asks for confirmation before deleting a category.
func (b *Bot) handleDeleteCategoryCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	args := extractCommandArgs(update.Message.Text, "/deletecategory")
	if args == "" {
		b.reply(ctx, tg, chatID, "❌ Please provide a category name.\n\nUsage: <code>/deletecategory Food</code>")
		return
	}

	if !b.requireStore(ctx, tg, chatID) {
		return
	}

	cat, err := b.categories.GetByName(ctx, args)
	if err != nil {
		logger.Log.Debug().Err(err).Msg("Category lookup failed")
		b.reply(ctx, tg, chatID, fmt.Sprintf(
			"❌ Category '%s' not found.\n\nUse /categories to see all categories.", escapeHTML(args)))
		return
	}

	text := fmt.Sprintf(`🗑️ <b>Delete category '%s'?</b>

Its expenses are kept and will show as %s.`, escapeHTML(cat.Name), appmodels.UncategorizedName)

	_, err = tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ParseMode:   models.ParseModeHTML,
		ReplyMarkup: deleteCategoryKeyboard(cat.ID),
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send /deletecategory confirmation")
	}
}

// handleAdd handles the /add command for structured expense input.
func (b *Bot) handleAdd(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleAddCore(ctx, tgBot, update)
}

// handleAddCore is the testable implementation of handleAdd.
func (b *Bot) handleAddCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	// Amount is checked before the store so an invalid /add never reaches it.
	if _, err := ParseAddCommand(update.Message.Text, nil); err != nil {
		b.replyParseError(ctx, tg, chatID, err)
		return
	}

	if !b.requireStore(ctx, tg, chatID) {
		return
	}

	categories, err := b.categories.List(ctx)
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to list categories for /add")
		b.reply(ctx, tg, chatID, "❌ Failed to save expense. Please try again.")
		return
	}

	parsed, err := ParseAddCommand(update.Message.Text, categoryNames(categories))
	if err != nil {
		b.replyParseError(ctx, tg, chatID, err)
		return
	}

	b.saveExpenseCore(ctx, tg, chatID, parsed, categories)
}

func (b *Bot) replyParseError(ctx context.Context, tg TelegramAPI, chatID int64, err error) {
	if errors.Is(err, appmodels.ErrInvalidAmount) {
		b.reply(ctx, tg, chatID, fmt.Sprintf(
			"❌ Amount must be greater than zero and at most %s.", appmodels.MaxAmount.StringFixed(appmodels.AmountScale)))
		return
	}
	b.reply(ctx, tg, chatID,
		"❌ Invalid format.\n\nUsage: <code>/add &lt;amount&gt; &lt;description&gt; [category]</code>\nExample: <code>/add 5.50 Coffee Food</code>")
}

// handleFreeTextExpenseCore saves messages like "5.50 Coffee". It returns
// false when the text is not an expense so the caller can answer instead.
func (b *Bot) handleFreeTextExpenseCore(ctx context.Context, tg TelegramAPI, update *models.Update) bool {
	chatID := update.Message.Chat.ID

	if _, err := ParseExpenseInput(update.Message.Text, nil); err != nil {
		if errors.Is(err, appmodels.ErrInvalidAmount) {
			b.replyParseError(ctx, tg, chatID, err)
			return true
		}
		return false
	}

	if !b.requireStore(ctx, tg, chatID) {
		return true
	}

	categories, err := b.categories.List(ctx)
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to list categories for free text")
		b.reply(ctx, tg, chatID, "❌ Failed to save expense. Please try again.")
		return true
	}

	parsed, err := ParseExpenseInput(update.Message.Text, categoryNames(categories))
	if err != nil {
		return false
	}

	b.saveExpenseCore(ctx, tg, chatID, parsed, categories)
	return true
}

// saveExpenseCore stores a parsed expense dated today. Without an explicit
// category it asks the suggester, when one is configured.
func (b *Bot) saveExpenseCore(
	ctx context.Context,
	tg TelegramAPI,
	chatID int64,
	parsed *ParsedExpense,
	categories []appmodels.Category,
) {
	var category *appmodels.Category
	if parsed.CategoryName != "" {
		category = MatchCategory(parsed.CategoryName, categories)
	} else {
		category = b.suggestCategory(ctx, parsed.Description, categories)
	}

	in := appmodels.NewExpense{
		Amount:      parsed.Amount,
		Description: parsed.Description,
		Date:        analytics.FormatDate(b.now()),
	}
	if category != nil {
		in.CategoryID = &category.ID
	}

	expense, err := b.expenses.Create(ctx, in)
	if err != nil {
		logger.Log.Error().Err(err).
			Str("description", logger.SanitizeDescription(parsed.Description)).
			Msg("Failed to save expense")
		b.reply(ctx, tg, chatID, "❌ Failed to save expense. Please try again.")
		return
	}

	logger.Log.Info().
		Str("expense_id", expense.ID).
		Str("amount", formatAmount(expense.Amount)).
		Msg("Expense added")

	text := fmt.Sprintf(`✅ <b>Expense Added</b>

💰 %s
📝 %s
📁 %s
📅 %s
🆔 <code>%s</code>`,
		formatAmount(expense.Amount),
		escapeHTML(expense.DisplayDescription()),
		escapeHTML(categoryName(expense)),
		expense.Date,
		shortID(expense.ID))

	b.reply(ctx, tg, chatID, text)
}

// suggestCategory returns nil when suggestions are off or fail; the expense
// is then saved without a category.
func (b *Bot) suggestCategory(ctx context.Context, description string, categories []appmodels.Category) *appmodels.Category {
	if b.suggester == nil || description == "" || len(categories) == 0 {
		return nil
	}

	suggestion, err := b.suggester.SuggestCategory(ctx, description, categoryNames(categories))
	if err != nil {
		logger.Log.Warn().Err(err).
			Str("description", logger.SanitizeDescription(description)).
			Msg("Category suggestion failed")
		return nil
	}
	return MatchCategory(suggestion.Category, categories)
}

func categoryNames(categories []appmodels.Category) []string {
	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, c.Name)
	}
	return names
}

// handleList handles the /list command.
func (b *Bot) handleList(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleListCore(ctx, tgBot, update)
}

// handleListCore lists recent expenses grouped by day, optionally for one category.
func (b *Bot) handleListCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	if !b.requireStore(ctx, tg, chatID) {
		return
	}

	var filter appmodels.ExpenseFilter
	title := "Recent Expenses"
	if name := extractCommandArgs(update.Message.Text, "/list"); name != "" {
		cat, err := b.categories.GetByName(ctx, name)
		if err != nil {
			logger.Log.Debug().Err(err).Msg("Category lookup failed")
			b.reply(ctx, tg, chatID, fmt.Sprintf(
				"❌ Category '%s' not found.\n\nUse /categories to see all categories.", escapeHTML(name)))
			return
		}
		filter.CategoryID = cat.ID
		title = cat.Name + " Expenses"
	}

	expenses, err := b.expenses.List(ctx, filter)
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to list expenses")
		b.reply(ctx, tg, chatID, "❌ Failed to load expenses. Please try again.")
		return
	}

	if len(expenses) == 0 {
		b.reply(ctx, tg, chatID, "📋 No expenses found.")
		return
	}

	shown := expenses
	if len(shown) > listLimit {
		shown = shown[:listLimit]
	}

	now := b.now()
	var sb strings.Builder
	fmt.Fprintf(&sb, "📋 <b>%s</b>\n", escapeHTML(title))
	for _, group := range analytics.GroupByDay(shown) {
		fmt.Fprintf(&sb, "\n<b>%s</b> (%s)\n", analytics.DayLabel(group.Date, now), formatAmount(group.Total))
		for i := range group.Expenses {
			sb.WriteString(formatExpenseLine(&group.Expenses[i]) + "\n")
		}
	}
	if len(expenses) > len(shown) {
		fmt.Fprintf(&sb, "\n<i>Showing %d of %d expenses.</i>", len(shown), len(expenses))
	}
	fmt.Fprintf(&sb, "\n<b>Total:</b> %s", formatAmount(analytics.Total(expenses)))

	b.reply(ctx, tg, chatID, sb.String())
}

// handleDelete handles the /delete command.
func (b *Bot) handleDelete(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleDeleteCore(ctx, tgBot, update)
}

// handleDeleteCore deletes the one expense whose ID starts with the given prefix.
func (b *Bot) handleDeleteCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	prefix := strings.ToLower(extractCommandArgs(update.Message.Text, "/delete"))
	if len(prefix) < 4 {
		b.reply(ctx, tg, chatID, "❌ Please provide the expense ID shown in /list.\n\nUsage: <code>/delete 1a2b3c4d</code>")
		return
	}

	if !b.requireStore(ctx, tg, chatID) {
		return
	}

	expenses, err := b.expenses.List(ctx, appmodels.ExpenseFilter{})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to list expenses for /delete")
		b.reply(ctx, tg, chatID, "❌ Failed to delete expense. Please try again.")
		return
	}

	var matches []appmodels.Expense
	for _, e := range expenses {
		if strings.HasPrefix(e.ID, prefix) {
			matches = append(matches, e)
		}
	}

	if len(matches) == 0 {
		b.reply(ctx, tg, chatID, fmt.Sprintf("❌ Expense <code>%s</code> not found.", escapeHTML(prefix)))
		return
	}
	if len(matches) > 1 {
		b.reply(ctx, tg, chatID, fmt.Sprintf(
			"❌ %d expenses start with <code>%s</code>. Please use a longer ID.", len(matches), escapeHTML(prefix)))
		return
	}

	expense := matches[0]
	if err := b.expenses.Delete(ctx, expense.ID); err != nil {
		logger.Log.Error().Err(err).Str("expense_id", expense.ID).Msg("Failed to delete expense")
		b.reply(ctx, tg, chatID, "❌ Failed to delete expense. Please try again.")
		return
	}

	logger.Log.Info().Str("expense_id", expense.ID).Msg("Expense deleted")
	b.reply(ctx, tg, chatID, fmt.Sprintf("✅ Deleted %s %s.",
		formatAmount(expense.Amount), escapeHTML(expense.DisplayDescription())))
}

// handleSummary handles the /summary command.
func (b *Bot) handleSummary(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleSummaryCore(ctx, tgBot, update)
}

// handleSummaryCore shows period totals and the top categories.
func (b *Bot) handleSummaryCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	if !b.requireStore(ctx, tg, chatID) {
		return
	}

	expenses, err := b.expenses.List(ctx, appmodels.ExpenseFilter{})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to list expenses for /summary")
		b.reply(ctx, tg, chatID, "❌ Failed to load summary. Please try again.")
		return
	}

	summary := analytics.Summarize(expenses, b.now())

	var sb strings.Builder
	sb.WriteString("📊 <b>Summary</b>\n\n")
	fmt.Fprintf(&sb, "Today: %s\n", formatAmount(summary.Today))
	fmt.Fprintf(&sb, "This week: %s\n", formatAmount(summary.ThisWeek))
	fmt.Fprintf(&sb, "This month: %s\n", formatAmount(summary.ThisMonth))

	if totals := analytics.ByCategory(expenses); len(totals) > 0 {
		sb.WriteString("\n<b>By category:</b>\n")
		for i, t := range totals {
			if i == 5 {
				break
			}
			fmt.Fprintf(&sb, "• %s: %s\n", escapeHTML(t.Name), formatAmount(t.Total))
		}
	}

	recent := analytics.Recent(expenses, analytics.RecentLimit)
	if len(recent) > 0 {
		sb.WriteString("\n<b>Recent:</b>\n")
		for i := range recent {
			sb.WriteString(formatExpenseLine(&recent[i]) + "\n")
		}
	}

	b.reply(ctx, tg, chatID, sb.String())
}
