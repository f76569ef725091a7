package runnernode

import (
	"context"
	"errors"
	"fmt"

	contractx "github.com/crm-online-boutique/crm-concierge/agent/contract"
	statex "github.com/crm-online-boutique/crm-concierge/agent/state"
)

// LoadOrCreateSession resolves the session identity against the store. An
// unknown session id is not an error: the first turn of a conversation
// creates it.
func LoadOrCreateSession(
	ctx context.Context,
	in *GraphState,
	store statex.Store,
	appName string,
	userID string,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	sess, err := store.Load(ctx, statex.Key(appName, userID, in.SessionID))
	if err == nil {
		in.Session = sess
		return in, nil
	}
	if !errors.Is(err, statex.ErrSessionNotFound) {
		return nil, err
	}

	in.Session = statex.NewSession(appName, userID, in.SessionID, in.Now)
	return in, nil
}
