// Package notify pushes run summaries to a Telegram chat. The notifier is
// send-only; it never polls for updates.
package notify

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	"outreachbot/internal/config"
	"outreachbot/internal/outreach"
	"outreachbot/pkg/logx"
)

// Notifier sends plain-text status messages to a single chat.
type Notifier struct {
	bot  *tele.Bot
	chat *tele.Chat
	log  logx.Logger
}

// New connects to the Telegram API. Returns an error when the token or
// chat id is missing so callers can treat the notifier as optional.
func New(cfg config.NotifierConfig, log logx.Logger) (*Notifier, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	if cfg.ChatID == 0 {
		return nil, errors.New("telegram chat id is empty")
	}
	b, err := tele.NewBot(tele.Settings{Token: cfg.Token})
	if err != nil {
		return nil, fmt.Errorf("telegram connect: %w", err)
	}
	return &Notifier{
		bot:  b,
		chat: &tele.Chat{ID: cfg.ChatID},
		log:  log,
	}, nil
}

// RunSummary reports the outcome of a dispatch run.
func (n *Notifier) RunSummary(sum outreach.Summary, started time.Time) {
	var b strings.Builder
	fmt.Fprintf(&b, "Outreach run finished in %s\n", time.Since(started).Round(time.Second))
	fmt.Fprintf(&b, "Sent: %d\nFailed: %d\nSkipped: %d\nStill queued: %d", sum.Sent, sum.Failed, sum.Skipped, sum.Remaining)
	n.send(b.String())
}

// Alert reports a failure that needs operator attention.
func (n *Notifier) Alert(msg string) {
	n.send(msg)
}

// send is best effort; a notification failure never fails the run.
func (n *Notifier) send(text string) {
	if _, err := n.bot.Send(n.chat, text); err != nil {
		n.log.Warn("telegram notify failed", logx.Err(err))
	}
}
