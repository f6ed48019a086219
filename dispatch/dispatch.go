// Package dispatch orchestrates one end-to-end processing of an inbound
// workspace event: dedup admission, context assembly, supervisor invocation,
// reply delivery and detached persistence.
package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/deskmesh/agent"
	"github.com/hupe1980/deskmesh/core"
	"github.com/hupe1980/deskmesh/dedupe"
	"github.com/hupe1980/deskmesh/history"
	"github.com/hupe1980/deskmesh/logging"
	"github.com/hupe1980/deskmesh/workspace"
)

// EventKind classifies an inbound event.
type EventKind string

const (
	// KindMention is a message addressing the bot directly.
	KindMention EventKind = "mention"
	// KindMessage is an ordinary channel message.
	KindMessage EventKind = "message"
	// KindOther covers event types the pipeline never acts on.
	KindOther EventKind = "other"
)

// Event is the normalized inbound event handed to the pipeline. It is
// immutable; only its processing side effects are persisted.
type Event struct {
	ID         string
	Kind       EventKind
	SessionID  string // originating channel
	SenderID   string
	Text       string
	Subtype    string // platform message subtype, empty for plain messages
	BotID      string // set when the sender is a bot (self-message suppression)
	ReceivedAt time.Time
}

// SupervisorFactory builds the supervisor descriptor for one dispatch,
// parameterized with the per-dispatch instruction values.
type SupervisorFactory func(params agent.Params) *agent.Agent

// DefaultTimeout bounds one dispatch end to end so a hung model or tool call
// cannot hold its goroutine forever.
const DefaultTimeout = 120 * time.Second

// fallbackReply is posted when the supervisor itself fails; tool-level
// failures are explained by the model instead.
const fallbackReply = "Sorry, I ran into a problem handling that request. Please try again."

// Pipeline wires the dedup gate, history assembler, supervisor and messenger
// into the dispatch flow. Dispatches for different events run fully
// concurrently; the pipeline deliberately does not serialize same-session
// dispatches (two near-simultaneous messages may interleave their persisted
// turns).
type Pipeline struct {
	gate      *dedupe.Gate
	assembler *history.Assembler
	store     history.Store
	messenger workspace.Messenger
	factory   SupervisorFactory
	opts      Options
}

// Options configures a Pipeline.
type Options struct {
	Timeout time.Duration
	Logger  logging.Logger
	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

// NewPipeline constructs a Pipeline.
func NewPipeline(
	gate *dedupe.Gate,
	assembler *history.Assembler,
	store history.Store,
	messenger workspace.Messenger,
	factory SupervisorFactory,
	optFns ...func(o *Options),
) *Pipeline {
	opts := Options{
		Timeout: DefaultTimeout,
		Logger:  logging.NoOpLogger{},
		Now:     time.Now,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Pipeline{
		gate:      gate,
		assembler: assembler,
		store:     store,
		messenger: messenger,
		factory:   factory,
		opts:      opts,
	}
}

// Actionable reports whether the pipeline acts on the event: a mention that
// is not a bot self-message and carries no special subtype.
func Actionable(ev Event) bool {
	return ev.Kind == KindMention && ev.Subtype == "" && ev.BotID == "" && ev.Text != ""
}

// Handle processes one inbound event. Duplicates and non-actionable events
// are dropped silently. Tool failures inside the supervisor surface as
// natural-language replies; only infrastructure failures (reply delivery,
// supervisor crash) are returned. Handle never panics.
func (p *Pipeline) Handle(ctx context.Context, ev Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			p.opts.Logger.Error("dispatch.panic", "event_id", ev.ID, "panic", fmt.Sprintf("%v", r))
			err = fmt.Errorf("dispatch panicked: %v", r)
		}
	}()

	if !Actionable(ev) {
		p.opts.Logger.Debug("dispatch.skip", "event_id", ev.ID, "kind", string(ev.Kind))
		return nil
	}

	if !p.gate.Admit(ev.ID) {
		p.opts.Logger.Info("dispatch.duplicate", "event_id", ev.ID)
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, p.opts.Timeout)
	defer cancel()

	turns, err := p.assembler.Assemble(ctx, ev.SessionID)
	if err != nil {
		// Degrade to an empty window rather than dropping the event.
		p.opts.Logger.Warn("dispatch.history_failed", "event_id", ev.ID, "error", err.Error())
		turns = nil
	}

	params := agent.Params{
		Today:     p.opts.Now().Format(time.RFC3339),
		ChannelID: ev.SessionID,
		Requester: ev.SenderID,
	}
	supervisor := p.factory(params)

	result, err := supervisor.Run(ctx, agent.RunInput{
		Text:    ev.Text,
		History: toContents(turns),
		Params:  params,
	})

	reply := fallbackReply
	if err != nil {
		p.opts.Logger.Error("dispatch.supervisor_failed", "event_id", ev.ID, "error", err.Error())
	} else {
		reply = result.FinalText
	}

	if postErr := p.messenger.Post(ctx, ev.SessionID, reply); postErr != nil {
		p.opts.Logger.Error("dispatch.reply_failed", "event_id", ev.ID, "error", postErr.Error())
		return fmt.Errorf("deliver reply: %w", postErr)
	}

	if err == nil {
		p.persistDetached(ev, reply)
	}

	return err
}

// persistDetached stores the completed exchange without blocking the reply
// path. The background task gets its own context and contains its own
// failures; it shares nothing with the reply path beyond the immutable turn
// payload.
func (p *Pipeline) persistDetached(ev Event, reply string) {
	now := p.opts.Now()
	turns := []history.Turn{
		{SessionID: ev.SessionID, Role: history.RoleUser, Content: ev.Text, CreatedAt: now},
		{SessionID: ev.SessionID, Role: history.RoleAgent, Content: reply, CreatedAt: now},
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				p.opts.Logger.Error("dispatch.persist_panic", "event_id", ev.ID, "panic", fmt.Sprintf("%v", r))
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := p.store.Append(ctx, turns...); err != nil {
			p.opts.Logger.Error("dispatch.persist_failed", "event_id", ev.ID, "error", err.Error())
		}
	}()
}

func toContents(turns []history.Turn) []core.Content {
	out := make([]core.Content, 0, len(turns))
	for _, t := range turns {
		switch t.Role {
		case history.RoleAgent:
			out = append(out, core.NewAssistantText(t.Content))
		default:
			out = append(out, core.NewUserText(t.Content))
		}
	}
	return out
}
