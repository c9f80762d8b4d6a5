package adapter

import (
	"context"
	"errors"
)

// ErrBlocked is returned (wrapped) by a Messenger when the recipient has
// blocked the bot. The scheduler deactivates such users instead of retrying.
var ErrBlocked = errors.New("recipient blocked the bot")

// Button is one inline keyboard button; Data is the callback token.
type Button struct {
	Text string
	Data string
}

// Messenger abstracts the outbound chat transport. The core never formats
// Telegram-specific structures; it hands over text and button rows.
type Messenger interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendKeyboard(ctx context.Context, chatID int64, text string, rows [][]Button) error
	EditMessage(ctx context.Context, chatID int64, messageID int, text string, rows [][]Button) error
}
