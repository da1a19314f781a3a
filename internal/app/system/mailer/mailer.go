// internal/app/system/mailer/mailer.go
package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// Email is one outbound message. HTMLBody is optional.
type Email struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Notifier delivers transactional email. Implementations must honour ctx.
type Notifier interface {
	Send(ctx context.Context, e Email) error
}

// Config configures SMTP delivery.
type Config struct {
	Host     string
	Port     int
	User     string
	Pass     string
	From     string
	FromName string
	Timeout  time.Duration
}

// Mailer sends mail over SMTP.
type Mailer struct {
	cfg Config
	log *zap.Logger
}

// New returns a Notifier for cfg. With no SMTP host configured it returns a
// LogNotifier so local development works without a mail server.
func New(cfg Config, logger *zap.Logger) Notifier {
	if strings.TrimSpace(cfg.Host) == "" {
		logger.Warn("mail_smtp_host not set; emails will be logged, not sent")
		return &LogNotifier{Log: logger}
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Mailer{cfg: cfg, log: logger}
}

// Message builds the go-mail message for e.
func (m *Mailer) Message(e Email) (*mail.Msg, error) {
	msg := mail.NewMsg()
	var err error
	if m.cfg.FromName != "" {
		err = msg.FromFormat(m.cfg.FromName, m.cfg.From)
	} else {
		err = msg.From(m.cfg.From)
	}
	if err != nil {
		return nil, fmt.Errorf("set from: %w", err)
	}
	if err := msg.To(e.To); err != nil {
		return nil, fmt.Errorf("set to: %w", err)
	}
	msg.Subject(e.Subject)
	msg.SetBodyString(mail.TypeTextPlain, e.TextBody)
	if e.HTMLBody != "" {
		msg.AddAlternativeString(mail.TypeTextHTML, e.HTMLBody)
	}
	return msg, nil
}

// Send delivers e. The dial, auth and transfer are bounded by ctx and by
// the configured client timeout.
func (m *Mailer) Send(ctx context.Context, e Email) error {
	msg, err := m.Message(e)
	if err != nil {
		return err
	}

	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
		mail.WithTimeout(m.cfg.Timeout),
	}
	if m.cfg.User != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.User),
			mail.WithPassword(m.cfg.Pass),
		)
	}
	client, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	m.log.Debug("email sent", zap.String("subject", e.Subject))
	return nil
}

// LogNotifier writes messages to the log instead of sending them.
type LogNotifier struct {
	Log *zap.Logger
}

// Send logs the recipient and subject. Bodies are not logged because they
// carry tokens.
func (n *LogNotifier) Send(_ context.Context, e Email) error {
	n.Log.Info("email (not sent, no SMTP host)",
		zap.String("to", e.To),
		zap.String("subject", e.Subject))
	return nil
}

// Recorder is an in-memory Notifier for tests. Set Err to make every Send fail.
type Recorder struct {
	mu   sync.Mutex
	Sent []Email
	Err  error
}

// Send records e, or returns Err.
func (r *Recorder) Send(_ context.Context, e Email) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.Sent = append(r.Sent, e)
	return nil
}

// Last returns the most recent message.
func (r *Recorder) Last() (Email, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Sent) == 0 {
		return Email{}, false
	}
	return r.Sent[len(r.Sent)-1], true
}

// ErrSMTPDown is a convenience error for tests that simulate a mail outage.
var ErrSMTPDown = errors.New("smtp unavailable")
