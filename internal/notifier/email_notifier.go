package notifier

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aleister1102/hashwatch/internal/config"
)

// SendMailFunc delivers msg like smtp.SendMail, giving up when ctx ends.
type SendMailFunc func(ctx context.Context, addr string, a smtp.Auth, from string, to []string, msg []byte) error

const (
	smtpDialTimeout    = 10 * time.Second
	smtpSessionTimeout = time.Minute // used when ctx has no deadline
)

var errSMTPHostMissing = errors.New("SMTP host is not configured")

// EmailNotifier delivers notifications to a single address over SMTP.
type EmailNotifier struct {
	cfg       config.SMTPConfig
	recipient string
	sendMail  SendMailFunc
	logger    zerolog.Logger
}

// NewEmailNotifier creates an EmailNotifier sending to recipient through the relay in cfg.
func NewEmailNotifier(cfg config.SMTPConfig, recipient string, logger zerolog.Logger) *EmailNotifier {
	return &EmailNotifier{
		cfg:       cfg,
		recipient: recipient,
		sendMail:  sendMailContext,
		logger:    logger.With().Str("component", "EmailNotifier").Logger(),
	}
}

// WithSendFunc replaces the SMTP transport.
func (en *EmailNotifier) WithSendFunc(fn SendMailFunc) *EmailNotifier {
	en.sendMail = fn
	return en
}

// Name implements Sender.
func (en *EmailNotifier) Name() string {
	return "email"
}

// Recipient returns the destination address.
func (en *EmailNotifier) Recipient() string {
	return en.recipient
}

// Send delivers msg as a plain-text e-mail.
func (en *EmailNotifier) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if en.cfg.Host == "" {
		return errSMTPHostMissing
	}

	from := en.from()
	body := buildEmail(from, en.recipient, msg)

	var auth smtp.Auth
	if en.cfg.Username != "" {
		auth = smtp.PlainAuth("", en.cfg.Username, en.cfg.Password, en.cfg.Host)
	}

	addr := net.JoinHostPort(en.cfg.Host, strconv.Itoa(en.cfg.Port))
	if err := en.sendMail(ctx, addr, auth, from, []string{en.recipient}, body); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return fmt.Errorf("failed to send e-mail via %s: %w", addr, err)
	}

	en.logger.Debug().Str("recipient", en.recipient).Str("kind", msg.Kind).Msg("E-mail notification sent")
	return nil
}

// sendMailContext performs the smtp.SendMail exchange on a connection that is
// closed as soon as ctx is done.
func sendMailContext(ctx context.Context, addr string, a smtp.Auth, from string, to []string, msg []byte) error {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return err
	}

	dialer := &net.Dialer{Timeout: smtpDialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, ok := ctx.Deadline(); !ok {
		if err := conn.SetDeadline(time.Now().Add(smtpSessionTimeout)); err != nil {
			return err
		}
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	c, err := smtp.NewClient(conn, host)
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.Hello("localhost"); err != nil {
		return err
	}
	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: host}); err != nil {
			return err
		}
	}
	if a != nil {
		if ok, _ := c.Extension("AUTH"); !ok {
			return errors.New("smtp: server doesn't support AUTH")
		}
		if err := c.Auth(a); err != nil {
			return err
		}
	}
	if err := c.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

func (en *EmailNotifier) from() string {
	if en.cfg.From != "" {
		return en.cfg.From
	}
	return DefaultSMTPFromSender
}

// buildEmail renders an RFC 5322 message with CRLF line endings.
func buildEmail(from, to string, msg Message) []byte {
	date := msg.Timestamp
	if date.IsZero() {
		date = time.Now()
	}

	var b bytes.Buffer
	writeHeader(&b, "From", from)
	writeHeader(&b, "To", to)
	writeHeader(&b, "Subject", mime.QEncoding.Encode("utf-8", stripNewlines(msg.Subject)))
	writeHeader(&b, "Date", date.Format(time.RFC1123Z))
	writeHeader(&b, "MIME-Version", "1.0")
	writeHeader(&b, "Content-Type", "text/plain; charset=UTF-8")
	writeHeader(&b, "X-Hashwatch-Kind", msg.Kind)
	b.WriteString("\r\n")

	text := strings.ReplaceAll(msg.Text(), "\r\n", "\n")
	b.WriteString(strings.ReplaceAll(text, "\n", "\r\n"))
	return b.Bytes()
}

func writeHeader(b *bytes.Buffer, name, value string) {
	fmt.Fprintf(b, "%s: %s\r\n", name, stripNewlines(value))
}

func stripNewlines(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}
