package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"gitlab.com/yelinaung/expense-tracker/internal/logger"
	"gitlab.com/yelinaung/expense-tracker/internal/models"
)

const (
	maxDescriptionLength = 200
	maxReasoningLength   = 300
	suggestTimeout       = 10 * time.Second
)

// Suggestion errors.
var (
	ErrEmptyDescription = errors.New("description is required")
	ErrNoCategories     = errors.New("no categories available")
	ErrUnknownCategory  = errors.New("suggested category is not in the available list")
)

// CategorySuggestion is the model's pick for an expense description.
type CategorySuggestion struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

// SuggestCategory asks Gemini which of the given category names fits the
// description best. Only names from the list are ever returned.
func (c *Client) SuggestCategory(ctx context.Context, description string, names []string) (*CategorySuggestion, error) {
	log := logger.Component("gemini").With().Str("description_hash", logger.HashText(description)).Logger()

	if c == nil || c.generator == nil {
		return nil, errors.New("gemini client not initialized")
	}
	description = SanitizeForPrompt(description, maxDescriptionLength)
	if description == "" {
		return nil, ErrEmptyDescription
	}

	allowed := make([]string, 0, len(names))
	for _, n := range names {
		if n = SanitizeForPrompt(n, models.MaxCategoryNameLength); n != "" {
			allowed = append(allowed, n)
		}
	}
	if len(allowed) == 0 {
		return nil, ErrNoCategories
	}

	ctx, cancel := context.WithTimeout(ctx, suggestTimeout)
	defer cancel()

	log.Debug().Int("category_count", len(allowed)).Msg("Requesting category suggestion")

	resp, err := c.generator.GenerateContent(ctx, ModelName, []*genai.Content{
		genai.NewContentFromText(buildPrompt(description, allowed), genai.RoleUser),
	}, suggestionConfig(allowed))
	if err != nil {
		log.Error().Err(err).Msg("Gemini API call failed")
		return nil, fmt.Errorf("gemini API call failed: %w", err)
	}
	if resp == nil {
		return nil, errors.New("no response from Gemini")
	}

	jsonText := extractJSON(resp.Text())
	if jsonText == "" {
		log.Warn().Msg("No JSON found in Gemini response")
		return nil, errors.New("no JSON found in response")
	}

	var suggestion CategorySuggestion
	if err := json.Unmarshal([]byte(jsonText), &suggestion); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	matched := ""
	for _, n := range names {
		if strings.EqualFold(strings.TrimSpace(n), strings.TrimSpace(suggestion.Category)) {
			matched = n
			break
		}
	}
	if matched == "" {
		log.Warn().Str("suggested_category", suggestion.Category).Msg("Suggested category not in available list")
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, suggestion.Category)
	}
	suggestion.Category = matched

	if suggestion.Confidence < 0 || suggestion.Confidence > 1 {
		return nil, fmt.Errorf("confidence out of range: %f", suggestion.Confidence)
	}
	suggestion.Reasoning = SanitizeForPrompt(suggestion.Reasoning, maxReasoningLength)

	log.Debug().
		Str("category", suggestion.Category).
		Float64("confidence", suggestion.Confidence).
		Msg("Category suggested")

	return &suggestion, nil
}

func suggestionConfig(allowed []string) *genai.GenerateContentConfig {
	temp := float32(0.2)
	return &genai.GenerateContentConfig{
		Temperature:     &temp,
		MaxOutputTokens: 400,
		SystemInstruction: genai.NewContentFromText(
			"You categorize personal expenses. Respond with a single JSON object only.", genai.RoleUser),
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"category":   {Type: genai.TypeString, Enum: allowed},
				"confidence": {Type: genai.TypeNumber, Description: "Between 0 and 1"},
				"reasoning":  {Type: genai.TypeString, Description: "One short sentence"},
			},
			Required: []string{"category", "confidence", "reasoning"},
		},
	}
}

func buildPrompt(description string, categories []string) string {
	return fmt.Sprintf(`Pick the category for this expense: "%s"

Categories:
- %s

Use high confidence (0.8-1.0) only when the match is obvious.`, description, strings.Join(categories, "\n- "))
}

// extractJSON returns the outermost JSON object in text, which may carry a preamble.
func extractJSON(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return ""
	}
	return text[start : end+1]
}

// SanitizeForPrompt flattens user text for embedding in a prompt: quotes are
// neutralized, whitespace collapsed, control characters dropped and the
// result truncated to maxLength bytes.
func SanitizeForPrompt(input string, maxLength int) string {
	input = strings.Map(func(r rune) rune {
		switch {
		case r == '"' || r == '`':
			return '\''
		case r == '\n' || r == '\t' || r == '\r':
			return ' '
		case r < 0x20 || r == 0x7f:
			return -1
		}
		return r
	}, input)
	input = strings.Join(strings.Fields(input), " ")

	if len(input) > maxLength {
		input = strings.TrimSpace(strings.ToValidUTF8(input[:maxLength], ""))
	}
	return input
}
