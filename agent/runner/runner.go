// Package runner owns the session lifecycle: it resolves the session, drives
// one supervisor turn, persists the grown history, and returns the reply.
package runner

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/eino/compose"

	contractx "github.com/crm-online-boutique/crm-concierge/agent/contract"
	runnernode "github.com/crm-online-boutique/crm-concierge/agent/nodes"
	statex "github.com/crm-online-boutique/crm-concierge/agent/state"
	auditx "github.com/crm-online-boutique/crm-concierge/pkg/audit"
)

var (
	ErrInvalidMessage = runnernode.ErrInvalidMessage
	ErrInvalidSession = runnernode.ErrInvalidSession
)

// DefaultSessionID backs requests that omit a session id; all such requests
// share one conversation.
const DefaultSessionID = "default-session"

type Config struct {
	AppName string `envconfig:"APP_NAME" split_words:"true" default:"crm-concierge-app"`
	UserID  string `envconfig:"USER_ID" split_words:"true" default:"local-user"`
}

type Runner struct {
	store statex.Store
	root  contractx.Delegate
	audit auditx.Publisher

	graphRunner compose.Runnable[runnernode.GraphInput, runnernode.GraphOutput]

	appName string
	userID  string

	now func() time.Time

	// locks holds one mutex per session id seen so far. Sessions are
	// abandoned rather than deleted, so this map grows with the number of
	// distinct ids for the life of the process and is never pruned.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New(store statex.Store, root contractx.Delegate, publisher auditx.Publisher, cfg Config) (*Runner, error) {
	if store == nil {
		return nil, errors.New("session store is required")
	}
	if root == nil {
		return nil, errors.New("root delegate is required")
	}
	if publisher == nil {
		publisher = auditx.Noop{}
	}

	appName := strings.TrimSpace(cfg.AppName)
	if appName == "" {
		appName = "crm-concierge-app"
	}
	userID := strings.TrimSpace(cfg.UserID)
	if userID == "" {
		userID = "local-user"
	}

	r := &Runner{
		store:   store,
		root:    root,
		audit:   publisher,
		appName: appName,
		userID:  userID,
		now:     time.Now,
		locks:   make(map[string]*sync.Mutex),
	}

	graphRunner, err := r.compileTurnGraph(context.Background())
	if err != nil {
		return nil, err
	}
	r.graphRunner = graphRunner

	return r, nil
}

// Submit runs one conversational turn and returns the user-facing reply.
// Turns on the same session are serialized so concurrent submissions cannot
// interleave history; distinct sessions run independently.
func (r *Runner) Submit(ctx context.Context, sessionID string, text string) (string, error) {
	if strings.TrimSpace(sessionID) == "" {
		sessionID = DefaultSessionID
	}

	lock := r.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	out, err := r.graphRunner.Invoke(ctx, runnernode.GraphInput{
		SessionID: sessionID,
		Text:      text,
	})
	if err != nil {
		return "", err
	}
	return out.Reply, nil
}

func (r *Runner) sessionLock(sessionID string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[sessionID] = lock
	}
	return lock
}
