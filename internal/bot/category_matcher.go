package bot

import (
	"slices"
	"strings"

	"gitlab.com/yelinaung/expense-tracker/internal/models"
)

var stopWords = []string{"and", "the", "for", "out"}

// MatchCategory resolves a category name, typed by a user or returned by the
// suggester, to one of the given categories. Returns nil when nothing fits.
//
// An exact case-insensitive match wins. Otherwise the shortest category whose
// name contains the term is used, then the longest category contained in the
// term, then any category sharing a significant word.
func MatchCategory(name string, categories []models.Category) *models.Category {
	term := strings.ToLower(strings.TrimSpace(name))
	if term == "" {
		return nil
	}

	for i := range categories {
		if strings.EqualFold(categories[i].Name, term) {
			return &categories[i]
		}
	}

	var best *models.Category
	for i := range categories {
		if strings.Contains(strings.ToLower(categories[i].Name), term) &&
			(best == nil || len(categories[i].Name) < len(best.Name)) {
			best = &categories[i]
		}
	}
	if best != nil {
		return best
	}

	for i := range categories {
		if strings.Contains(term, strings.ToLower(categories[i].Name)) &&
			(best == nil || len(categories[i].Name) > len(best.Name)) {
			best = &categories[i]
		}
	}
	if best != nil {
		return best
	}

	termWords := significantWords(term)
	for i := range categories {
		for _, w := range significantWords(categories[i].Name) {
			if slices.Contains(termWords, w) {
				return &categories[i]
			}
		}
	}
	return nil
}

// significantWords lowercases s, splits it on separators and drops short and stop words.
func significantWords(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return r == ' ' || r == '-' || r == '/' || r == '&' || r == ','
	})

	var words []string
	for _, w := range fields {
		if len(w) >= 3 && !slices.Contains(stopWords, w) {
			words = append(words, w)
		}
	}
	return words
}
