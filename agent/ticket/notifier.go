package ticket

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	qstashx "github.com/tanpawarit/demo-agent/pkg/qstash"
)

// Notifier is told about every status change the server stores.
type Notifier interface {
	StatusChanged(ctx context.Context, t Ticket)
}

// QStashNotifier publishes status changes to a webhook through QStash.
type QStashNotifier struct {
	client      *qstashx.Client
	destination string
}

func NewQStashNotifier(client *qstashx.Client, destination string) *QStashNotifier {
	return &QStashNotifier{client: client, destination: strings.TrimSpace(destination)}
}

func (n *QStashNotifier) StatusChanged(ctx context.Context, t Ticket) {
	if n == nil || n.client == nil || n.destination == "" {
		return
	}
	msgID, err := n.client.Publish(ctx, n.destination, t)
	if err != nil {
		log.Warn().Err(err).Str("ticket_id", t.ID).Msg("ticket notification failed")
		return
	}
	log.Debug().Str("ticket_id", t.ID).Str("message_id", msgID).Msg("ticket notification queued")
}
