package notify

import (
	"context"
	"fmt"
	"strings"

	"venue-staff/internal/domain/notification"

	"github.com/google/uuid"
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

// LINE rejects text messages longer than this.
const maxLineText = 5000

type linePusher interface {
	PushMessage(req *messaging_api.PushMessageRequest, xLineRetryKey string) (*messaging_api.PushMessageResponse, error)
}

// Line pushes a text message to users who linked their LINE account.
type Line struct {
	api linePusher
}

func NewLine(channelToken string) (*Line, error) {
	api, err := messaging_api.NewMessagingApiAPI(channelToken)
	if err != nil {
		return nil, fmt.Errorf("line client: %w", err)
	}
	return &Line{api: api}, nil
}

func (l *Line) Channel() string { return "line" }

func (l *Line) Send(ctx context.Context, n notification.Notification) error {
	if n.LineUserID == "" {
		return ErrNoAddress
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	req := &messaging_api.PushMessageRequest{
		To: n.LineUserID,
		Messages: []messaging_api.MessageInterface{
			messaging_api.TextMessage{Text: lineText(n)},
		},
	}
	// LINE drops a push whose retry key it has already accepted, so a
	// redelivered message is not sent twice.
	key := n.ID
	if key == uuid.Nil {
		key = uuid.New()
	}
	if _, err := l.api.PushMessage(req, key.String()); err != nil {
		return fmt.Errorf("line push: %w", err)
	}
	return nil
}

func lineText(n notification.Notification) string {
	text := strings.TrimSpace(n.Body)
	if s := strings.TrimSpace(n.Subject); s != "" {
		text = s + "\n\n" + text
	}
	if r := []rune(text); len(r) > maxLineText {
		text = string(r[:maxLineText-1]) + "…"
	}
	return text
}
