package bot

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"gitlab.com/yelinaung/expense-tracker/internal/models"
)

// shortIDLength is how much of an expense ID the bot shows and accepts.
const shortIDLength = 8

// escapeHTML escapes HTML special characters for safe interpolation in Telegram HTML messages.
func escapeHTML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

func formatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func shortID(id string) string {
	if len(id) <= shortIDLength {
		return id
	}
	return id[:shortIDLength]
}

func categoryName(e *models.Expense) string {
	if e.Category == nil {
		return models.UncategorizedName
	}
	return e.Category.Name
}

// formatExpenseLine renders one expense as a list bullet.
func formatExpenseLine(e *models.Expense) string {
	return fmt.Sprintf("• <code>%s</code> %s %s <i>(%s)</i>",
		shortID(e.ID),
		formatAmount(e.Amount),
		escapeHTML(e.DisplayDescription()),
		escapeHTML(categoryName(e)))
}

// formatGreeting returns a greeting suffix with the user's name.
func formatGreeting(firstName string) string {
	if firstName == "" {
		return ""
	}
	return ", " + escapeHTML(firstName)
}
