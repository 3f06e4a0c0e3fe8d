package bot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"gitlab.com/yelinaung/expense-tracker/internal/analytics"
	"gitlab.com/yelinaung/expense-tracker/internal/logger"
	appmodels "gitlab.com/yelinaung/expense-tracker/internal/models"
	"gitlab.com/yelinaung/expense-tracker/internal/report"
)

const chartKindCategory = "category"

// handleChart handles the /chart command to generate visual expense breakdown charts.
func (b *Bot) handleChart(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleChartCore(ctx, tgBot, update)
}

// handleChartCore is the testable implementation of handleChart.
func (b *Bot) handleChartCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	kind := strings.ToLower(extractCommandArgs(update.Message.Text, "/chart"))
	if kind == "" {
		kind = chartKindCategory
	}

	var granularity analytics.Granularity
	if kind != chartKindCategory {
		g, err := analytics.ParseGranularity(kind)
		if err != nil {
			b.reply(ctx, tg, chatID,
				"❌ Invalid chart type.\n\nUsage: <code>/chart category</code>, <code>/chart daily</code>, <code>/chart weekly</code> or <code>/chart monthly</code>")
			return
		}
		granularity = g
	}

	if !b.requireStore(ctx, tg, chatID) {
		return
	}

	expenses, err := b.expenses.List(ctx, appmodels.ExpenseFilter{})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to fetch expenses for chart")
		b.reply(ctx, tg, chatID, "❌ Failed to generate chart. Please try again.")
		return
	}

	var png []byte
	var title string
	if kind == chartKindCategory {
		title = "Spending by Category"
		png, err = report.CategoryPieChart(analytics.ByCategory(expenses), title)
	} else {
		var buckets []analytics.Bucket
		buckets, err = analytics.OverTime(expenses, granularity)
		if err == nil {
			title = report.OverTimeTitle(granularity)
			png, err = report.OverTimeBarChart(buckets, title)
		}
	}
	if errors.Is(err, report.ErrNoData) {
		b.reply(ctx, tg, chatID, "📊 No expenses to chart yet.")
		return
	}
	if err != nil {
		logger.Log.Error().Err(err).Str("kind", kind).Msg("Failed to generate chart")
		b.reply(ctx, tg, chatID, "❌ Failed to generate chart. Please try again.")
		return
	}

	caption := fmt.Sprintf("📊 <b>%s</b>\n\nTotal: %s\nCount: %d expenses",
		title, formatAmount(analytics.Total(expenses)), len(expenses))

	_, err = tg.SendDocument(ctx, &bot.SendDocumentParams{
		ChatID:    chatID,
		Document:  &models.InputFileUpload{Filename: report.ChartFilename(kind, b.now()), Data: bytes.NewReader(png)},
		Caption:   caption,
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send chart document")
		b.reply(ctx, tg, chatID, "❌ Failed to send chart. Please try again.")
		return
	}

	logger.Log.Info().Str("kind", kind).Int("count", len(expenses)).Msg("Chart sent")
}

// handleExport handles the /export command.
func (b *Bot) handleExport(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleExportCore(ctx, tgBot, update)
}

// handleExportCore sends every expense as a CSV document.
func (b *Bot) handleExportCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	if !b.requireStore(ctx, tg, chatID) {
		return
	}

	var filter appmodels.ExpenseFilter
	expenses, err := b.expenses.List(ctx, filter)
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to fetch expenses for export")
		b.reply(ctx, tg, chatID, "❌ Failed to export expenses. Please try again.")
		return
	}

	if len(expenses) == 0 {
		b.reply(ctx, tg, chatID, "📄 No expenses to export yet.")
		return
	}

	data, err := report.ExpensesCSV(expenses)
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to generate CSV")
		b.reply(ctx, tg, chatID, "❌ Failed to export expenses. Please try again.")
		return
	}

	_, err = tg.SendDocument(ctx, &bot.SendDocumentParams{
		ChatID:    chatID,
		Document:  &models.InputFileUpload{Filename: report.ExportFilename(filter, b.now()), Data: bytes.NewReader(data)},
		Caption:   fmt.Sprintf("📄 %d expenses, total %s", len(expenses), formatAmount(analytics.Total(expenses))),
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send CSV document")
		b.reply(ctx, tg, chatID, "❌ Failed to send export. Please try again.")
	}
}
