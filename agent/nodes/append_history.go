package runnernode

import (
	"fmt"

	contractx "github.com/crm-online-boutique/crm-concierge/agent/contract"
)

// AppendHistory records the turn into the session: the user's message first,
// then every agent event in the order it was emitted.
func AppendHistory(in *GraphState) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if in.Session == nil {
		return nil, fmt.Errorf("%w: session is not loaded", contractx.ErrValidation)
	}

	in.Session.Append(contractx.NewTextMessage(contractx.RoleUser, in.Text), in.Now)
	for _, ev := range in.Events {
		if len(ev.Message.Parts) == 0 {
			continue
		}
		in.Session.Append(ev.Message, in.Now)
	}
	return in, nil
}
