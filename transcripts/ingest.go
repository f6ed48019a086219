package transcripts

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/deskmesh/core"
	"github.com/hupe1980/deskmesh/logging"
	"github.com/hupe1980/deskmesh/model"
	"github.com/hupe1980/deskmesh/records"
	"github.com/hupe1980/deskmesh/workspace"
)

// collection is where ingested transcriptions land; the transcripts agent
// reads and deletes the same collection.
const collection = "transcriptions"

const summaryPrompt = `You are an assistant that summarizes business or support-related phone calls. Below is the full transcription of a call.

Your task is to write a concise, clear summary of the call in 2-4 sentences. Focus on the main points discussed, any decisions made, key people mentioned, and any follow-up actions. Do not include small talk or filler content.

Transcription:
{transcription}`

// Ingestor runs the transcription pipeline: fetch, parse, summarize,
// persist, report.
type Ingestor struct {
	source    Source
	llm       model.Model
	store     records.Store
	messenger workspace.Messenger
	opts      IngestorOptions
}

// IngestorOptions configures an Ingestor.
type IngestorOptions struct {
	// ReportChannel receives the call report; empty disables reporting.
	ReportChannel string
	Logger        logging.Logger
}

// NewIngestor constructs an Ingestor over its collaborators.
func NewIngestor(
	source Source,
	llm model.Model,
	store records.Store,
	messenger workspace.Messenger,
	optFns ...func(o *IngestorOptions),
) *Ingestor {
	opts := IngestorOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Ingestor{
		source:    source,
		llm:       llm,
		store:     store,
		messenger: messenger,
		opts:      opts,
	}
}

// Ingest processes one finished call and returns the stored record id.
func (i *Ingestor) Ingest(ctx context.Context, transcriptID string) (string, error) {
	call, err := i.source.Fetch(ctx, transcriptID)
	if err != nil {
		return "", fmt.Errorf("fetch transcript %s: %w", transcriptID, err)
	}

	conv := ParseConversation(call)
	if len(conv.Transcription) == 0 {
		return "", fmt.Errorf("transcript %s is empty", transcriptID)
	}

	summary, err := i.summarize(ctx, conv.Transcription)
	if err != nil {
		return "", fmt.Errorf("summarize transcript %s: %w", transcriptID, err)
	}

	id, err := i.store.Insert(ctx, collection, records.Document{
		"dateString":    conv.DateString,
		"users":         conv.Users,
		"transcription": conv.Transcription,
		"summary":       summary,
	})
	if err != nil {
		return "", fmt.Errorf("store transcript %s: %w", transcriptID, err)
	}

	i.opts.Logger.Info("transcripts.ingested", "transcript_id", transcriptID, "record_id", id)

	if i.opts.ReportChannel != "" {
		if err := i.messenger.Post(ctx, i.opts.ReportChannel, formatReport(conv, summary, id)); err != nil {
			return id, fmt.Errorf("post call report for %s: %w", transcriptID, err)
		}
	}

	return id, nil
}

func (i *Ingestor) summarize(ctx context.Context, transcription []map[string]string) (string, error) {
	encoded, err := json.Marshal(transcription)
	if err != nil {
		return "", fmt.Errorf("encode transcription: %w", err)
	}

	prompt := strings.ReplaceAll(summaryPrompt, "{transcription}", string(encoded))

	resp, err := i.llm.Generate(ctx, model.Request{
		Contents: []core.Content{core.NewUserText(prompt)},
	})
	if err != nil {
		return "", err
	}

	return resp.Content.Text(), nil
}

// formatReport renders the call report posted to the workspace.
func formatReport(conv Conversation, summary, id string) string {
	date := conv.DateString
	clock := ""
	if dt, err := time.Parse(time.RFC3339, conv.DateString); err == nil {
		date = dt.Format("02.01.2006")
		clock = dt.Format("15:04")
	}

	members := "None"
	if len(conv.Users) > 0 {
		members = strings.Join(conv.Users, ", ")
	}

	return fmt.Sprintf(`:telephone_receiver: New Call Report Is Ready!

:busts_in_silhouette: Members:
%s

:calendar: Date: %s
:clock1: Time: %s

:memo: Summary:
%s

:id: ID: %s`, members, date, clock, summary, id)
}
