// Package server exposes the inbound webhook endpoint for workspace events.
// The handler acknowledges deliveries immediately and hands actionable
// events to the dispatch pipeline in the background; the dedup gate protects
// against the platform's at-least-once retries.
package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hupe1980/deskmesh/dispatch"
	"github.com/hupe1980/deskmesh/logging"
	"github.com/hupe1980/deskmesh/transcripts"
	"github.com/slack-go/slack"
)

// maxBodyBytes caps inbound payloads; events are small.
const maxBodyBytes = 1 << 20

// envelope is the JSON envelope the platform posts. Every field access must
// tolerate absence: malformed payloads fail closed with an ack and no dispatch.
type envelope struct {
	Type      string `json:"type"`
	Challenge string `json:"challenge"`
	EventID   string `json:"event_id"`
	Event     struct {
		Type    string `json:"type"`
		Subtype string `json:"subtype"`
		BotID   string `json:"bot_id"`
		Text    string `json:"text"`
		User    string `json:"user"`
		Channel string `json:"channel"`
	} `json:"event"`
}

// Server handles the events endpoint.
type Server struct {
	pipeline *dispatch.Pipeline
	opts     Options
}

// Options configures a Server.
type Options struct {
	// SigningSecret enables request signature verification when non-empty.
	SigningSecret string
	// Ingestor enables the transcription webhook route when non-nil.
	Ingestor *transcripts.Ingestor
	Logger   logging.Logger
	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

// New constructs a Server over a dispatch pipeline.
func New(pipeline *dispatch.Pipeline, optFns ...func(o *Options)) *Server {
	opts := Options{
		Logger: logging.NoOpLogger{},
		Now:    time.Now,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Server{pipeline: pipeline, opts: opts}
}

// Router returns the HTTP routes of the server.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Post("/slack/events", s.handleEvents)
	if s.opts.Ingestor != nil {
		r.Post("/transcripts/events", s.handleTranscripts)
	}
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return r
}

// handleTranscripts accepts the recording provider's call-finished webhook
// and runs ingestion in the background, acknowledging immediately.
func (s *Server) handleTranscripts(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return
	}

	var payload struct {
		MeetingID string `json:"meetingId"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.MeetingID == "" {
		s.opts.Logger.Warn("server.malformed_transcript_payload")
		s.ack(w)
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		if _, err := s.opts.Ingestor.Ingest(ctx, payload.MeetingID); err != nil {
			s.opts.Logger.Error("server.ingest_failed", "meeting_id", payload.MeetingID, "error", err.Error())
		}
	}()

	s.ack(w)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return
	}

	if s.opts.SigningSecret != "" {
		if err := s.verifySignature(r.Header, body); err != nil {
			s.opts.Logger.Warn("server.bad_signature", "error", err.Error())
			http.Error(w, "invalid signature", http.StatusUnauthorized)
			return
		}
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		// Fail closed: no dispatch, no crash, still acknowledge.
		s.opts.Logger.Warn("server.malformed_payload", "error", err.Error())
		s.ack(w)
		return
	}

	switch env.Type {
	case "url_verification":
		writeJSON(w, map[string]string{"challenge": env.Challenge})
		return

	case "event_callback":
		ev := s.toEvent(env)
		if ev.ID == "" || ev.SessionID == "" {
			s.opts.Logger.Warn("server.incomplete_event", "event_id", env.EventID)
			s.ack(w)
			return
		}

		// Acknowledge before processing; the platform re-delivers slow
		// responses and the gate handles the retries that still arrive.
		go func() {
			if err := s.pipeline.Handle(context.Background(), ev); err != nil {
				s.opts.Logger.Error("server.dispatch_failed", "event_id", ev.ID, "error", err.Error())
			}
		}()
	}

	s.ack(w)
}

func (s *Server) verifySignature(header http.Header, body []byte) error {
	verifier, err := slack.NewSecretsVerifier(header, s.opts.SigningSecret)
	if err != nil {
		return err
	}
	if _, err := verifier.Write(body); err != nil {
		return err
	}
	return verifier.Ensure()
}

func (s *Server) toEvent(env envelope) dispatch.Event {
	kind := dispatch.KindOther
	switch env.Event.Type {
	case "app_mention":
		kind = dispatch.KindMention
	case "message":
		kind = dispatch.KindMessage
	}

	return dispatch.Event{
		ID:         env.EventID,
		Kind:       kind,
		SessionID:  env.Event.Channel,
		SenderID:   env.Event.User,
		Text:       env.Event.Text,
		Subtype:    env.Event.Subtype,
		BotID:      env.Event.BotID,
		ReceivedAt: s.opts.Now(),
	}
}

func (s *Server) ack(w http.ResponseWriter) {
	writeJSON(w, map[string]bool{"ok": true})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
