package bot

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"gitlab.com/yelinaung/expense-tracker/internal/models"
)

// ErrNotAnExpense is returned when the input does not start with an amount.
var ErrNotAnExpense = errors.New("input is not an expense")

// ParsedExpense represents a parsed expense from user input.
type ParsedExpense struct {
	Amount       decimal.Decimal
	Description  string
	CategoryName string
}

// amountRegex matches amounts like "5", "5.50", "5,50" and "-3".
var amountRegex = regexp.MustCompile(`^-?\d+(?:[.,]\d{1,2})?`)

// ParseExpenseInput parses free-text expense input like "5.50 Coffee" or "10 Lunch Food".
// A trailing category name from categoryNames is split off the description;
// the longest matching name wins.
// Non-positive amounts fail with models.ErrInvalidAmount.
func ParseExpenseInput(input string, categoryNames []string) (*ParsedExpense, error) {
	input = strings.TrimSpace(input)

	match := amountRegex.FindString(input)
	if match == "" {
		return nil, ErrNotAnExpense
	}
	rest := input[len(match):]
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		// "5kg rice" or "2024-01-01" are not amounts.
		return nil, ErrNotAnExpense
	}

	amount, err := decimal.NewFromString(strings.ReplaceAll(match, ",", "."))
	if err != nil {
		return nil, ErrNotAnExpense
	}
	if err := models.ValidateAmount(amount); err != nil {
		return nil, err
	}

	parsed := &ParsedExpense{
		Amount:      amount,
		Description: strings.TrimSpace(rest),
	}
	splitCategorySuffix(parsed, categoryNames)
	return parsed, nil
}

// ParseAddCommand parses the /add command format: /add <amount> <description> [category].
func ParseAddCommand(text string, categoryNames []string) (*ParsedExpense, error) {
	return ParseExpenseInput(extractCommandArgs(text, "/add"), categoryNames)
}

func splitCategorySuffix(parsed *ParsedExpense, categoryNames []string) {
	if parsed.Description == "" {
		return
	}

	// Compared rune by rune: case folding can change a string's byte length.
	desc := []rune(parsed.Description)
	var matched string
	var matchedRunes int
	for _, name := range categoryNames {
		n := utf8.RuneCountInString(name)
		if n == 0 || n <= matchedRunes || n > len(desc) {
			continue
		}
		head := desc[:len(desc)-n]
		if !strings.EqualFold(string(desc[len(desc)-n:]), name) {
			continue
		}
		// Only whole words: "Coffee" must not match category "fee".
		if len(head) > 0 && !unicode.IsSpace(head[len(head)-1]) {
			continue
		}
		matched, matchedRunes = name, n
	}

	if matched != "" {
		parsed.Description = strings.TrimSpace(string(desc[:len(desc)-matchedRunes]))
		parsed.CategoryName = matched
	}
}

// ParseCategoryInput parses "/addcategory" arguments: a name optionally
// followed by a #rrggbb color.
func ParseCategoryInput(args string) models.NewCategory {
	args = strings.TrimSpace(args)
	fields := strings.Fields(args)
	if len(fields) > 1 {
		last := fields[len(fields)-1]
		if strings.HasPrefix(last, "#") {
			return models.NewCategory{
				Name:  strings.TrimSpace(strings.TrimSuffix(args, last)),
				Color: strings.ToLower(last),
			}
		}
	}
	return models.NewCategory{Name: args}
}

// extractCommandArgs strips the /command prefix (and optional @botname suffix)
// from a message and returns the remaining trimmed arguments.
func extractCommandArgs(text, command string) string {
	args := strings.TrimSpace(strings.TrimPrefix(text, command))
	if strings.HasPrefix(args, "@") {
		if spaceIdx := strings.Index(args, " "); spaceIdx != -1 {
			args = strings.TrimSpace(args[spaceIdx:])
		} else {
			args = ""
		}
	}
	return args
}
