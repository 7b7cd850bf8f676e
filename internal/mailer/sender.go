// Package mailer turns notification events into outbound email. It runs in
// its own binary (cmd/mailer) so SMTP latency and retries never sit on the
// request path.
package mailer

import (
	"fmt"
	"io"
	"log"

	"gopkg.in/gomail.v2"
)

type SMTPConfig struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

// Sender delivers mail over SMTP. With no SMTP user configured it logs and
// skips, so local setups work without a mail server.
type Sender struct {
	cfg  SMTPConfig
	send func(*gomail.Message) error
}

func NewSender(cfg SMTPConfig) *Sender {
	s := &Sender{cfg: cfg}
	s.send = func(m *gomail.Message) error {
		d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Pass)
		return d.DialAndSend(m)
	}
	return s
}

func (s *Sender) configured() bool { return s.cfg.User != "" }

func (s *Sender) from() string {
	if s.cfg.From != "" {
		return s.cfg.From
	}
	return fmt.Sprintf("Bookstore <%s>", s.cfg.User)
}

// Attachment is an in-memory file to attach, typically a generated invoice.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

func (s *Sender) Send(to, subject, htmlBody string, attachments ...Attachment) error {
	if !s.configured() {
		log.Printf("[mailer] SMTP not configured - skipping %q to %s", subject, to)
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from())
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)
	for _, a := range attachments {
		a := a
		m.Attach(a.Filename,
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(a.Content)
				return err
			}),
			gomail.SetHeader(map[string][]string{"Content-Type": {a.ContentType}}))
	}

	if err := s.send(m); err != nil {
		return fmt.Errorf("send %q to %s: %w", subject, to, err)
	}
	log.Printf("[mailer] sent %q to %s", subject, to)
	return nil
}
