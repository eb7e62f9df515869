package usecase

import (
	"context"

	"venue-staff/internal/domain/notification"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// notifier delivers best-effort notifications. Failures are logged and never
// fail the operation that triggered them.
type notifier struct {
	n   notification.Notifier
	log *zap.Logger
}

type recipient struct {
	UserID     uuid.UUID
	Email      string
	LineUserID *string
}

func (n notifier) send(ctx context.Context, to recipient, kind notification.Kind, subject, body string) {
	if n.n == nil {
		return
	}
	msg := notification.Notification{
		ID:      uuid.New(),
		Kind:    kind,
		UserID:  to.UserID,
		Email:   to.Email,
		Subject: subject,
		Body:    body,
	}
	if to.LineUserID != nil {
		msg.LineUserID = *to.LineUserID
	}
	if msg.Email == "" && msg.LineUserID == "" {
		return
	}
	if err := n.n.Notify(ctx, msg); err != nil {
		n.log.Warn("notification failed",
			zap.String("kind", string(kind)),
			zap.Stringer("user_id", to.UserID),
			zap.Error(err),
		)
	}
}
