// Package deskmesh provides a high-level façade over the dispatch pipeline
// and its services, enabling construction of the workspace automation bot
// with sensible defaults. Most applications interact with this package by:
//  1. Building assistant.Deps with their collaborators (model, messenger,
//     stores, retriever, mailer)
//  2. Creating a DeskMesh via New() (optionally overriding the history
//     store, dedup gate or timeouts)
//  3. Mounting Handler() on an HTTP server
//
// All defaults are safe for local development and testing; production
// deployments supply durable store implementations and a structured logger.
package deskmesh

import (
	"net/http"
	"time"

	"github.com/hupe1980/deskmesh/agent"
	"github.com/hupe1980/deskmesh/assistant"
	"github.com/hupe1980/deskmesh/dedupe"
	"github.com/hupe1980/deskmesh/dispatch"
	"github.com/hupe1980/deskmesh/history"
	"github.com/hupe1980/deskmesh/logging"
	"github.com/hupe1980/deskmesh/server"
	"github.com/hupe1980/deskmesh/transcripts"
)

// Options configures the DeskMesh instance.
type Options struct {
	// HistoryStore persists conversation turns (defaults to in-memory).
	HistoryStore history.Store
	// HistoryWindow is the number of turns kept per role in the context window.
	HistoryWindow int
	// Gate deduplicates inbound events (defaults to a fresh in-memory gate).
	Gate *dedupe.Gate
	// DispatchTimeout bounds one dispatch end to end.
	DispatchTimeout time.Duration
	// SigningSecret enables inbound signature verification when non-empty.
	SigningSecret string
	// Ingestor enables the transcription webhook route when non-nil.
	Ingestor *transcripts.Ingestor
	// Logger (defaults to NoOp logger if nil).
	Logger logging.Logger
}

// DeskMesh aggregates the pipeline and its HTTP surface.
type DeskMesh struct {
	gate     *dedupe.Gate
	pipeline *dispatch.Pipeline
	server   *server.Server
}

// New creates a DeskMesh instance with optional overrides. Any unset service
// is initialized with an in-memory implementation.
func New(team assistant.Deps, optFns ...func(o *Options)) *DeskMesh {
	opts := Options{
		HistoryStore:    history.NewInMemoryStore(),
		HistoryWindow:   history.DefaultWindow,
		DispatchTimeout: dispatch.DefaultTimeout,
		Logger:          logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Gate == nil {
		opts.Gate = dedupe.NewGate()
	}
	if team.Logger == nil {
		team.Logger = opts.Logger
	}

	assembler := history.NewAssembler(opts.HistoryStore, func(o *history.AssemblerOptions) {
		o.Window = opts.HistoryWindow
	})

	factory := func(params agent.Params) *agent.Agent {
		return assistant.NewSupervisor(team, params)
	}

	pipeline := dispatch.NewPipeline(
		opts.Gate,
		assembler,
		opts.HistoryStore,
		team.Messenger,
		factory,
		func(o *dispatch.Options) {
			o.Timeout = opts.DispatchTimeout
			o.Logger = opts.Logger
		},
	)

	srv := server.New(pipeline, func(o *server.Options) {
		o.SigningSecret = opts.SigningSecret
		o.Ingestor = opts.Ingestor
		o.Logger = opts.Logger
	})

	return &DeskMesh{gate: opts.Gate, pipeline: pipeline, server: srv}
}

// Pipeline returns the dispatch pipeline (useful for tests and embedding).
func (d *DeskMesh) Pipeline() *dispatch.Pipeline { return d.pipeline }

// Handler returns the HTTP routes of the bot.
func (d *DeskMesh) Handler() http.Handler { return d.server.Router() }

// Close releases in-process resources (pending dedup eviction timers).
func (d *DeskMesh) Close() { d.gate.Close() }
