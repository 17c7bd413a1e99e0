// Package notify forwards selected activity events to people.
package notify

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-pkgz/lgr"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"workforce-mgmt/pkg/activity"
)

// Notifier delivers a single event.
type Notifier interface {
	Notify(ctx context.Context, e activity.Event) error
}

// TelegramNotifier posts events to one Telegram chat.
type TelegramNotifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegramNotifier authenticates the bot token against the default Telegram endpoint.
func NewTelegramNotifier(token string, chatID int64, log lgr.L) (*TelegramNotifier, error) {
	return NewTelegramNotifierWithEndpoint(token, tgbotapi.APIEndpoint, chatID, http.DefaultClient, log)
}

// NewTelegramNotifierWithEndpoint is NewTelegramNotifier with a custom API endpoint
// format ("https://host/bot%s/%s") and HTTP client.
func NewTelegramNotifierWithEndpoint(token, endpoint string, chatID int64, client *http.Client, log lgr.L) (*TelegramNotifier, error) {
	if log != nil {
		_ = tgbotapi.SetLogger(botLogger{log})
	}
	api, err := tgbotapi.NewBotAPIWithClient(token, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	return &TelegramNotifier{api: api, chatID: chatID}, nil
}

func (n *TelegramNotifier) Notify(_ context.Context, e activity.Event) error {
	msg := tgbotapi.NewMessage(n.chatID, FormatEvent(e))
	if _, err := n.api.Send(msg); err != nil {
		return fmt.Errorf("telegram send %s: %w", e.Type, err)
	}
	return nil
}

// botLogger routes the Bot API client's own logging through lgr.
type botLogger struct{ l lgr.L }

func (b botLogger) Println(v ...any) { b.l.Logf("[DEBUG] %s", strings.TrimSuffix(fmt.Sprintln(v...), "\n")) }

func (b botLogger) Printf(format string, v ...any) { b.l.Logf("[DEBUG] "+format, v...) }

// LogNotifier writes events to a logger.
type LogNotifier struct {
	log lgr.L
}

func NewLogNotifier(log lgr.L) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(_ context.Context, e activity.Event) error {
	n.log.Logf("[INFO] %s", FormatEvent(e))
	return nil
}

// FormatEvent renders an event as a single human-readable line.
func FormatEvent(e activity.Event) string {
	var b strings.Builder
	switch e.Type {
	case activity.TaskOverdue:
		fmt.Fprintf(&b, "Task %d is overdue", e.TaskID)
	case activity.TaskCancelled:
		fmt.Fprintf(&b, "Task %d was cancelled", e.TaskID)
	case activity.TaskCreated:
		fmt.Fprintf(&b, "Task %d was created", e.TaskID)
	case activity.TaskUpdated:
		fmt.Fprintf(&b, "Task %d was updated", e.TaskID)
	case activity.TaskAssigned:
		fmt.Fprintf(&b, "Task %d was assigned", e.TaskID)
	case activity.TaskPriorityChanged:
		fmt.Fprintf(&b, "Task %d priority changed", e.TaskID)
	case activity.CommentAdded:
		fmt.Fprintf(&b, "New comment on task %d", e.TaskID)
	default:
		fmt.Fprintf(&b, "%s (task %d)", e.Type, e.TaskID)
	}
	for _, k := range []string{"assignee_id", "status", "priority", "from", "to", "comment_id"} {
		if v, ok := e.Content[k]; ok {
			fmt.Fprintf(&b, ", %s=%v", k, v)
		}
	}
	return b.String()
}
