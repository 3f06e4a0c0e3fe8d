package bot

import (
	"context"
	"testing"

	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/require"

	"gitlab.com/yelinaung/expense-tracker/internal/bot/mocks"
)

func TestExtractUserID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		update *models.Update
		want   int64
	}{
		{"message", mocks.MessageUpdate(testChatID, 42, "hi"), 42},
		{"callback query", mocks.CallbackQueryUpdate(testChatID, 43, 1, "cancel"), 43},
		{"empty update", &models.Update{}, 0},
		{"message without sender", &models.Update{Message: &models.Message{Text: "hi"}}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, extractUserID(tt.update))
		})
	}
}

func TestExtractUsername(t *testing.T) {
	t.Parallel()

	require.Equal(t, "testuser", extractUsername(mocks.MessageUpdate(testChatID, testUserID, "hi")))
	require.Equal(t, "testuser", extractUsername(mocks.CallbackQueryUpdate(testChatID, testUserID, 1, "cancel")))
	require.Empty(t, extractUsername(&models.Update{}))
}

func TestAllowUpdateCore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("whitelisted user id", func(t *testing.T) {
		t.Parallel()
		b := setupTestBot(t, newFakeStore(), nil)
		mockBot := mocks.NewMockBot()

		require.True(t, b.allowUpdateCore(ctx, mockBot, mocks.MessageUpdate(testChatID, testUserID, "/start")))
		require.Equal(t, 0, mockBot.SentMessageCount())
	})

	t.Run("stranger is told off", func(t *testing.T) {
		t.Parallel()
		b := setupTestBot(t, newFakeStore(), nil)
		mockBot := mocks.NewMockBot()

		require.False(t, b.allowUpdateCore(ctx, mockBot, mocks.MessageUpdate(testChatID, 999, "/start")))
		require.Equal(t, 1, mockBot.SentMessageCount())
		require.Contains(t, mockBot.LastSentMessage().Text, "not authorized")
	})

	t.Run("stranger callback is dropped silently", func(t *testing.T) {
		t.Parallel()
		b := setupTestBot(t, newFakeStore(), nil)
		mockBot := mocks.NewMockBot()

		require.False(t, b.allowUpdateCore(ctx, mockBot, mocks.CallbackQueryUpdate(testChatID, 999, 1, cancelCallbackData)))
		require.Equal(t, 0, mockBot.SentMessageCount())
	})

	t.Run("update without user", func(t *testing.T) {
		t.Parallel()
		b := setupTestBot(t, newFakeStore(), nil)
		mockBot := mocks.NewMockBot()

		require.False(t, b.allowUpdateCore(ctx, mockBot, &models.Update{}))
		require.Equal(t, 0, mockBot.SentMessageCount())
	})

	t.Run("whitelisted username", func(t *testing.T) {
		t.Parallel()
		b := setupTestBot(t, newFakeStore(), nil)
		b.cfg.WhitelistedUsernames = []string{"Friend"}
		mockBot := mocks.NewMockBot()

		update := mocks.NewUpdateBuilder().
			WithMessage(testChatID, 777, "/list").
			WithFrom(777, "friend", "Fr").
			Build()
		require.True(t, b.allowUpdateCore(ctx, mockBot, update))
	})
}

func TestDefaultHandlerCore_NilMessage(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	b := setupTestBot(t, store, nil)
	mockBot := mocks.NewMockBot()

	b.defaultHandlerCore(context.Background(), mockBot, &models.Update{})
	require.Equal(t, 0, mockBot.SentMessageCount())
	require.Zero(t, store.callCount())
}
