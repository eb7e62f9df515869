package notify

import (
	"context"
	"errors"
	"fmt"

	"venue-staff/internal/config"
	"venue-staff/internal/domain/notification"
	"venue-staff/internal/logging"

	"go.uber.org/zap"
)

// ErrNoAddress is returned by a sender when the recipient has no address on
// its channel. The dispatcher treats it as a skip.
var ErrNoAddress = errors.New("recipient has no address on this channel")

type Sender interface {
	Channel() string
	Send(ctx context.Context, n notification.Notification) error
}

// Dispatcher fans a notification out to every configured channel. A failing
// channel does not stop the others.
type Dispatcher struct {
	senders []Sender
	log     *zap.Logger
}

func NewDispatcher(log *zap.Logger, senders ...Sender) *Dispatcher {
	return &Dispatcher{senders: senders, log: logging.OrNop(log).Named("notify")}
}

// SendersFromConfig builds the channels that have enough configuration to
// deliver anything.
func SendersFromConfig(cfg config.Config) ([]Sender, error) {
	var out []Sender
	if cfg.Mail.SMTPHost != "" && cfg.Mail.From != "" {
		out = append(out, NewSMTP(cfg.Mail))
	}
	if cfg.Line.ChannelToken != "" {
		l, err := NewLine(cfg.Line.ChannelToken)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

func (d *Dispatcher) Channels() []string {
	names := make([]string, 0, len(d.senders))
	for _, s := range d.senders {
		names = append(names, s.Channel())
	}
	return names
}

func (d *Dispatcher) Dispatch(ctx context.Context, n notification.Notification) error {
	var errs []error
	for _, s := range d.senders {
		err := s.Send(ctx, n)
		switch {
		case err == nil:
			d.log.Debug("notification sent",
				zap.String("channel", s.Channel()),
				zap.String("kind", string(n.Kind)),
				zap.Stringer("user_id", n.UserID),
			)
		case errors.Is(err, ErrNoAddress):
		default:
			d.log.Warn("notification channel failed",
				zap.String("channel", s.Channel()),
				zap.String("kind", string(n.Kind)),
				zap.Stringer("user_id", n.UserID),
				zap.Error(err),
			)
			errs = append(errs, fmt.Errorf("%s: %w", s.Channel(), err))
		}
	}
	return errors.Join(errs...)
}
