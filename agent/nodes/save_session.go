package runnernode

import (
	"context"
	"fmt"

	contractx "github.com/crm-online-boutique/crm-concierge/agent/contract"
	statex "github.com/crm-online-boutique/crm-concierge/agent/state"
)

func SaveSession(ctx context.Context, in *GraphState, store statex.Store) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if in.Session == nil {
		return nil, fmt.Errorf("%w: session is not loaded", contractx.ErrValidation)
	}

	if err := in.Session.Validate(); err != nil {
		return nil, err
	}
	if err := store.Save(ctx, in.Session); err != nil {
		return nil, fmt.Errorf("save session %s: %w", in.Session.Key(), err)
	}
	return in, nil
}
