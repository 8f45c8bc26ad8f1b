package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"ISSNotifier/internal/domain"
)

// SMTPConfig describes the relay session.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	// StartTLS upgrades the session before authenticating. Disable only for
	// loopback relays.
	StartTLS bool
	Timeout  time.Duration
}

// SMTPSender delivers messages through an authenticated SMTP relay.
type SMTPSender struct {
	cfg       SMTPConfig
	tlsConfig *tls.Config
}

var _ Sender = (*SMTPSender)(nil)

// NewSMTPSender prepares a sender; the session is opened per message.
func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &SMTPSender{
		cfg:       cfg,
		tlsConfig: &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12},
	}
}

// Send opens a session, upgrades it, logs in and submits msg. Login failures
// wrap domain.ErrAuth; everything else wraps domain.ErrTransport.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if s.cfg.Host == "" || s.cfg.Port == 0 {
		return fmt.Errorf("%w: smtp relay misconfigured", domain.ErrTransport)
	}
	if s.cfg.Username == "" || s.cfg.Password == "" {
		return fmt.Errorf("%w: smtp credentials are not set", domain.ErrAuth)
	}
	if !s.cfg.StartTLS && !isLoopback(s.cfg.Host) {
		return fmt.Errorf("%w: refusing to log in to %s without STARTTLS", domain.ErrTransport, s.cfg.Host)
	}

	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	dialer := &net.Dialer{Timeout: s.cfg.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("%w: dial %s: %v", domain.ErrTransport, addr, err)
	}

	deadline := time.Now().Add(s.cfg.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetDeadline(deadline)

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("%w: greeting: %v", domain.ErrTransport, err)
	}
	defer client.Close()

	if s.cfg.StartTLS {
		if ok, _ := client.Extension("STARTTLS"); !ok {
			return fmt.Errorf("%w: %s does not offer STARTTLS", domain.ErrTransport, addr)
		}
		if err := client.StartTLS(s.tlsConfig); err != nil {
			return fmt.Errorf("%w: starttls: %v", domain.ErrTransport, err)
		}
	}

	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("%w: login as %s: %v", domain.ErrAuth, s.cfg.Username, err)
	}

	if err := client.Mail(msg.From); err != nil {
		return fmt.Errorf("%w: mail from: %v", domain.ErrTransport, err)
	}
	if err := client.Rcpt(msg.To); err != nil {
		return fmt.Errorf("%w: rcpt to: %v", domain.ErrTransport, err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("%w: data: %v", domain.ErrTransport, err)
	}
	if _, err := w.Write(msg.Bytes()); err != nil {
		_ = w.Close()
		return fmt.Errorf("%w: write body: %v", domain.ErrTransport, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("%w: end data: %v", domain.ErrTransport, err)
	}

	if err := client.Quit(); err != nil {
		return fmt.Errorf("%w: quit: %v", domain.ErrTransport, err)
	}
	return nil
}

// isLoopback matches the hosts net/smtp allows PLAIN auth on without TLS.
func isLoopback(host string) bool {
	return host == "localhost" || host == "127.0.0.1" || host == "::1"
}
