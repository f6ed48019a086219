package transcripts

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/deskmesh/model"
	"github.com/hupe1980/deskmesh/records"
	"github.com/hupe1980/deskmesh/workspace"
)

type fakeSource struct {
	call *Call
	err  error
	got  string
}

func (f *fakeSource) Fetch(ctx context.Context, transcriptID string) (*Call, error) {
	f.got = transcriptID
	if f.err != nil {
		return nil, f.err
	}
	return f.call, nil
}

type recordingMessenger struct {
	channel string
	text    string
	posts   int
}

func (m *recordingMessenger) Post(ctx context.Context, channelID, text string) error {
	m.channel = channelID
	m.text = text
	m.posts++
	return nil
}

func (m *recordingMessenger) Members(ctx context.Context, channelID string) ([]string, error) {
	return nil, nil
}

func (m *recordingMessenger) Profile(ctx context.Context, userID string) (*workspace.Profile, error) {
	return nil, nil
}

func sampleCall() *Call {
	return &Call{
		Title:      "support call",
		DateString: "2026-08-28T09:30:00.000Z",
		Sentences: []Sentence{
			{Speaker: "Alice", Text: "The export job fails since Tuesday."},
			{Speaker: "Bob", Text: "We will ship a fix this week."},
		},
	}
}

func TestIngestor_Ingest(t *testing.T) {
	src := &fakeSource{call: sampleCall()}
	llm := model.NewMockModel("test")
	llm.EnqueueText("Alice reported a failing export job; Bob committed to a fix this week.")

	store := records.NewInMemoryStore()
	messenger := &recordingMessenger{}

	ing := NewIngestor(src, llm, store, messenger, func(o *IngestorOptions) {
		o.ReportChannel = "C-REPORTS"
	})

	id, err := ing.Ingest(context.Background(), "t-7")
	require.NoError(t, err)
	require.NotEmpty(t, id)
	assert.Equal(t, "t-7", src.got)

	// The record lands in the collection the transcripts agent reads.
	docs, err := store.Find(context.Background(), "transcriptions", records.Filter{}, 10)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "2026-08-28T09:30:00.000Z", docs[0]["dateString"])
	assert.Equal(t, []string{"Alice", "Bob"}, docs[0]["users"])
	assert.Contains(t, docs[0]["summary"], "failing export job")

	// The summarization prompt carries the merged transcription.
	reqs := llm.Requests()
	require.Len(t, reqs, 1)
	prompt := reqs[0].Contents[0].Text()
	assert.Contains(t, prompt, "The export job fails since Tuesday.")

	require.Equal(t, 1, messenger.posts)
	assert.Equal(t, "C-REPORTS", messenger.channel)
	assert.Contains(t, messenger.text, "Alice, Bob")
	assert.Contains(t, messenger.text, "28.08.2026")
	assert.Contains(t, messenger.text, "09:30")
	assert.Contains(t, messenger.text, "Bob committed to a fix")
	assert.Contains(t, messenger.text, id)
}

func TestIngestor_Ingest_NoReportWithoutChannel(t *testing.T) {
	src := &fakeSource{call: sampleCall()}
	llm := model.NewMockModel("test")
	llm.EnqueueText("summary")

	messenger := &recordingMessenger{}

	ing := NewIngestor(src, llm, records.NewInMemoryStore(), messenger)

	_, err := ing.Ingest(context.Background(), "t-7")
	require.NoError(t, err)
	assert.Zero(t, messenger.posts)
}

func TestIngestor_Ingest_EmptyTranscript(t *testing.T) {
	src := &fakeSource{call: &Call{DateString: "2026-08-28T09:30:00.000Z"}}
	llm := model.NewMockModel("test")

	ing := NewIngestor(src, llm, records.NewInMemoryStore(), &recordingMessenger{})

	_, err := ing.Ingest(context.Background(), "t-empty")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
	assert.Empty(t, llm.Requests())
}

func TestIngestor_Ingest_FetchError(t *testing.T) {
	src := &fakeSource{err: fmt.Errorf("provider unreachable")}
	llm := model.NewMockModel("test")

	ing := NewIngestor(src, llm, records.NewInMemoryStore(), &recordingMessenger{})

	_, err := ing.Ingest(context.Background(), "t-7")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider unreachable")
}

func TestFormatReport_UnparsableDateFallsBack(t *testing.T) {
	report := formatReport(Conversation{
		DateString: "yesterday afternoon",
		Users:      []string{"Alice"},
	}, "short summary", "rec-1")

	assert.Contains(t, report, "Date: yesterday afternoon")
	assert.Contains(t, report, "Time: \n")
}
