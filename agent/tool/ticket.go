package tool

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	contractx "github.com/tanpawarit/demo-agent/agent/contract"
)

const defaultTicketBaseURL = "http://127.0.0.1:8001"

// UpdateTicketStatusTool changes a ticket's status on the ticket service and
// returns the stored ticket object.
func UpdateTicketStatusTool(p *Proxy, baseURL string) Descriptor {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		base = defaultTicketBaseURL
	}
	return NewLocal(ToolUpdateTicketStatus, "Modify the status of a ticket via the ticket system.",
		func(ctx context.Context, args map[string]any) (any, error) {
			id, err := stringArg(args, "ticket_id")
			if err != nil {
				return nil, err
			}
			status, err := stringArg(args, "status")
			if err != nil {
				return nil, err
			}
			if strings.TrimSpace(id) == "" || strings.TrimSpace(status) == "" {
				return nil, fmt.Errorf("%w: ticket_id and status must be non-empty", contractx.ErrInvalidArguments)
			}
			endpoint := base + "/tickets/" + url.PathEscape(id)
			return p.Invoke(ctx, endpoint, map[string]any{"status": status})
		},
		Parameter{Name: "ticket_id", Type: "string", Description: "Ticket identifier", Required: true},
		Parameter{Name: "status", Type: "string", Description: "New ticket status", Required: true},
	)
}
