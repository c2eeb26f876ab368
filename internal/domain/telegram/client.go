package telegram

import "gopkg.in/telebot.v3"

// Client is the outbound messaging seam the reminder core depends on.
// Delivery is fire-and-forget: a failed send is reported as an error and
// retried only when the record is still due on a later tick.
type Client interface {
	SendMessage(recipientChatID int64, text string, options *telebot.SendOptions) error
}
