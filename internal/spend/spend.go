// Package spend implements the contract every balance-consuming action
// (like, comment, publish) must satisfy: an authenticated viewer, local
// validation before any network traffic, a single pending call per
// (user, action, target), and no optimistic state on failure. On
// success the caller re-fetches the affected aggregate; the coordinator
// never mutates counters or balances itself.
package spend

import (
	"context"
	"sync"

	"arcadia-news/internal/api"
	"arcadia-news/internal/session"

	"github.com/rs/zerolog"
)

// Reason classifies a rejected action. The three reasons are
// exhaustive: anything that is not a gate or validation rejection is a
// remote failure, including insufficient-balance responses.
type Reason int

const (
	ReasonNone Reason = iota
	// LoginRequired: no valid session; the ledger was never contacted.
	LoginRequired
	// ValidationFailed: a local precondition failed; no network call.
	ValidationFailed
	// RemoteFailure: the remote call failed. Always recoverable; the
	// user may retry immediately.
	RemoteFailure
)

func (r Reason) String() string {
	switch r {
	case LoginRequired:
		return "login_required"
	case ValidationFailed:
		return "validation_failed"
	case RemoteFailure:
		return "remote_failure"
	default:
		return "none"
	}
}

// Outcome is the terminal state of one invocation.
type Outcome struct {
	// Committed means the remote call succeeded and the caller should
	// re-fetch the affected aggregate.
	Committed bool
	// Ignored means an identical invocation was already pending; this
	// one was dropped, not queued.
	Ignored bool
	Reason  Reason
	// Err carries the validation or remote error for logging and user
	// messaging. Nil unless Reason is set.
	Err error
}

// Action describes one spend-gated invocation.
type Action struct {
	// Name of the action, e.g. "like", "comment", "publish".
	Name string
	// Target identifies the server-side aggregate, e.g. an article id.
	// Actions on distinct targets interleave freely.
	Target string
	// Validate runs local precondition checks. Nil means none.
	Validate func() error
	// Call issues the remote mutating call with the viewer's token.
	Call func(ctx context.Context, token api.Token) error
}

// Coordinator gates spend actions. Safe for concurrent use.
type Coordinator struct {
	log zerolog.Logger

	mu       sync.Mutex
	inflight map[string]struct{}
}

// New creates a Coordinator.
func New(log zerolog.Logger) *Coordinator {
	return &Coordinator{
		log:      log,
		inflight: make(map[string]struct{}),
	}
}

// Run executes one spend-gated action to a terminal outcome.
func (c *Coordinator) Run(ctx context.Context, viewer session.Viewer, action Action) Outcome {
	if !viewer.LoggedIn() {
		return Outcome{Reason: LoginRequired}
	}

	if action.Validate != nil {
		if err := action.Validate(); err != nil {
			return Outcome{Reason: ValidationFailed, Err: err}
		}
	}

	key := viewer.Name() + "|" + action.Name + "|" + action.Target
	c.mu.Lock()
	if _, pending := c.inflight[key]; pending {
		c.mu.Unlock()
		return Outcome{Ignored: true}
	}
	c.inflight[key] = struct{}{}
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.inflight, key)
		c.mu.Unlock()
	}()

	if err := action.Call(ctx, viewer.Token); err != nil {
		c.log.Warn().
			Err(err).
			Str("action", action.Name).
			Str("target", action.Target).
			Msg("spend action failed")
		return Outcome{Reason: RemoteFailure, Err: err}
	}

	return Outcome{Committed: true}
}
