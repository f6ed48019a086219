// Package transcripts ingests finished call transcriptions: fetch the raw
// transcript from the recording provider, merge it into a per-speaker
// conversation, summarize it, persist it for the transcripts agent and post
// a call report to the workspace.
package transcripts

import (
	"context"
	"sort"
	"strings"
)

// Sentence is one raw utterance of a transcript.
type Sentence struct {
	Speaker string `json:"speaker_name"`
	Text    string `json:"text"`
}

// Call is the raw transcript as delivered by the provider.
type Call struct {
	Title      string     `json:"title"`
	DateString string     `json:"dateString"`
	Sentences  []Sentence `json:"sentences"`
}

// Source fetches raw transcripts by id.
type Source interface {
	Fetch(ctx context.Context, transcriptID string) (*Call, error)
}

// Conversation is the parsed form of a call: consecutive sentences of the
// same speaker merged into one entry, participants collected and sorted.
type Conversation struct {
	DateString    string
	Users         []string
	Transcription []map[string]string
}

// ParseConversation merges a raw transcript into a Conversation. Empty
// sentences are dropped; an unnamed speaker becomes "Speaker".
func ParseConversation(call *Call) Conversation {
	users := map[string]bool{}
	var transcription []map[string]string

	prevSpeaker := ""
	prevText := ""

	for _, s := range call.Sentences {
		speaker := s.Speaker
		if speaker == "" {
			speaker = "Speaker"
		}
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}

		users[speaker] = true

		if speaker == prevSpeaker {
			prevText += " " + text
			continue
		}
		if prevSpeaker != "" {
			transcription = append(transcription, map[string]string{prevSpeaker: prevText})
		}
		prevSpeaker = speaker
		prevText = text
	}
	if prevSpeaker != "" {
		transcription = append(transcription, map[string]string{prevSpeaker: prevText})
	}

	names := make([]string, 0, len(users))
	for name := range users {
		names = append(names, name)
	}
	sort.Strings(names)

	return Conversation{
		DateString:    call.DateString,
		Users:         names,
		Transcription: transcription,
	}
}
