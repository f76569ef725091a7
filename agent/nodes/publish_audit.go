package runnernode

import (
	"context"
	"fmt"

	contractx "github.com/crm-online-boutique/crm-concierge/agent/contract"
	auditx "github.com/crm-online-boutique/crm-concierge/pkg/audit"
)

// PublishAudit ships the finished turn to the audit sink. Best effort: the
// publisher swallows its own failures, so this node can never fail the turn.
func PublishAudit(ctx context.Context, in *GraphState, publisher auditx.Publisher) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	publisher.Publish(ctx, auditx.Record{
		SessionID: in.SessionID,
		Message:   in.Text,
		Reply:     in.Reply,
		Timestamp: in.Now,
	})
	return in, nil
}
