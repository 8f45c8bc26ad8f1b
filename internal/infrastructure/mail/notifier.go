package mail

import (
	"context"
	"log/slog"
	"strings"

	"ISSNotifier/internal/metrics"
	"ISSNotifier/internal/ports"
)

// Alert text used when the configuration leaves subject or body empty.
const (
	DefaultSubject = "Look up in the sky!"
	DefaultBody    = "The ISS is flying above you right now!"
)

// Message is one plaintext email.
type Message struct {
	From    string
	To      string
	Subject string
	Body    string
}

// Bytes renders the message with CRLF line endings as expected by DATA.
func (m Message) Bytes() []byte {
	var b strings.Builder
	b.WriteString("From: " + m.From + "\r\n")
	b.WriteString("To: " + m.To + "\r\n")
	b.WriteString("Subject: " + m.Subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	body := strings.ReplaceAll(m.Body, "\r\n", "\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	b.WriteString("\r\n")
	return []byte(b.String())
}

// Sender submits a message to a relay.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Notifier emails the fixed overhead alert to one recipient.
type Notifier struct {
	sender  Sender
	message Message
	logger  *slog.Logger
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier fills in the default subject and body when they are empty.
func NewNotifier(sender Sender, message Message, logger *slog.Logger) *Notifier {
	if message.Subject == "" {
		message.Subject = DefaultSubject
	}
	if message.Body == "" {
		message.Body = DefaultBody
	}
	return &Notifier{sender: sender, message: message, logger: logger}
}

// Notify sends one email. Failures are logged and dropped.
func (n *Notifier) Notify(ctx context.Context) {
	if n.sender == nil {
		n.log().Error("email not sent", "error", "mail sender is not configured")
		metrics.RecordNotification(false)
		return
	}

	if err := n.sender.Send(ctx, n.message); err != nil {
		n.log().Error("email not sent", "to", n.message.To, "error", err)
		metrics.RecordNotification(false)
		return
	}

	n.log().Info("email sent", "to", n.message.To)
	metrics.RecordNotification(true)
}

func (n *Notifier) log() *slog.Logger {
	if n.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return n.logger
}
