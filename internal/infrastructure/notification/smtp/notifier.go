// Package smtp delivers notifications through an SMTP relay.
package smtp

import (
	"context"
	"fmt"
	"time"

	"github.com/Zhima-Mochi/pizzeria/internal/domain/notification"
	"github.com/Zhima-Mochi/pizzeria/internal/observability"
	"github.com/Zhima-Mochi/pizzeria/internal/observability/logctx"
	"github.com/google/uuid"
	"github.com/wneessen/go-mail"
)

const provider = "smtp"

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	// TLSPolicy is one of "mandatory" (default), "opportunistic" or "none".
	TLSPolicy string
}

type sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

type Notifier struct {
	client sender
	log    observability.Logger
	now    func() time.Time
}

func New(cfg Config, logger observability.Logger) (*Notifier, error) {
	policy, err := tlsPolicy(cfg.TLSPolicy)
	if err != nil {
		return nil, err
	}
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(policy),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthLogin),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp: new client: %w", err)
	}
	return newNotifier(client, logger), nil
}

func newNotifier(client sender, logger observability.Logger) *Notifier {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Notifier{
		client: client,
		log:    logger.With(observability.F("component", "notification_smtp")),
		now:    time.Now,
	}
}

func (n *Notifier) Send(ctx context.Context, m notification.Message) (*notification.Receipt, error) {
	id := uuid.NewString()
	msg, err := buildMessage(id, m)
	if err != nil {
		return nil, err
	}
	if err := n.client.DialAndSendWithContext(ctx, msg); err != nil {
		logctx.FromOr(ctx, n.log).Warn("smtp_send_failed",
			observability.F("to", m.To),
			observability.F("error", err.Error()),
		)
		return nil, fmt.Errorf("smtp: send: %w", err)
	}
	return &notification.Receipt{ID: id, Provider: provider, SentAt: n.now().UTC()}, nil
}

func buildMessage(id string, m notification.Message) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(m.From); err != nil {
		return nil, fmt.Errorf("smtp: from: %w", err)
	}
	if err := msg.To(m.To); err != nil {
		return nil, fmt.Errorf("smtp: to: %w", err)
	}
	msg.Subject(m.Subject)
	msg.SetMessageIDWithValue(id)
	msg.SetBodyString(mail.TypeTextPlain, m.Body)
	return msg, nil
}

func tlsPolicy(name string) (mail.TLSPolicy, error) {
	switch name {
	case "", "mandatory":
		return mail.TLSMandatory, nil
	case "opportunistic":
		return mail.TLSOpportunistic, nil
	case "none":
		return mail.NoTLS, nil
	default:
		return mail.TLSMandatory, fmt.Errorf("smtp: unknown tls policy %q", name)
	}
}

var _ notification.Notifier = (*Notifier)(nil)
