package assistant

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/deskmesh/docstore"
	"github.com/hupe1980/deskmesh/fanout"
	"github.com/hupe1980/deskmesh/knowledge"
	"github.com/hupe1980/deskmesh/mailer"
	"github.com/hupe1980/deskmesh/records"
	"github.com/hupe1980/deskmesh/tool"
	"github.com/hupe1980/deskmesh/workspace"
)

// DefaultProfileFanOut bounds concurrent profile lookups when expanding a
// channel into member profiles.
const DefaultProfileFanOut = 10

// defaultFindLimit caps how many documents a single read returns to the model.
const defaultFindLimit = 50

func newFindDocumentTool(docs docstore.Store) tool.Tool {
	return tool.NewFunctionTool(
		"get_document",
		"Retrieve a document link by its title.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"document_title": map[string]any{
					"type":        "string",
					"description": "The title of the document to retrieve",
				},
			},
			"required": []string{"document_title"},
		},
		tool.SideEffectRead,
		func(ctx context.Context, args map[string]any) (any, error) {
			if docs == nil {
				return nil, fmt.Errorf("document store is not configured")
			}
			title, _ := args["document_title"].(string)
			link, err := docs.FindByTitle(ctx, title)
			if errors.Is(err, docstore.ErrNotFound) {
				return nil, nil
			}
			if err != nil {
				return nil, err
			}
			return link, nil
		},
	)
}

func newListDocumentNamesTool(docs docstore.Store) tool.Tool {
	return tool.NewFunctionTool(
		"list_document_names",
		"List available document names for a 1-indexed inclusive range.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"start": map[string]any{"type": "integer", "description": "First position, starting at 1"},
				"end":   map[string]any{"type": "integer", "description": "Last position, inclusive"},
			},
			"required": []string{"start", "end"},
		},
		tool.SideEffectRead,
		func(ctx context.Context, args map[string]any) (any, error) {
			if docs == nil {
				return nil, fmt.Errorf("document store is not configured")
			}
			start := intArg(args, "start")
			end := intArg(args, "end")
			return docs.ListNames(ctx, start, end)
		},
	)
}

// newChannelProfilesTool expands a channel into member profiles with a
// bounded fan-out. Bot members and unreachable profiles are dropped rather
// than failing the batch.
func newChannelProfilesTool(messenger workspace.Messenger, limit int) tool.Tool {
	return tool.NewFunctionTool(
		"get_channel_profiles",
		"Fetch member profiles of a channel.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"channel_id": map[string]any{
					"type":        "string",
					"description": "The ID of the channel to fetch members from",
				},
			},
			"required": []string{"channel_id"},
		},
		tool.SideEffectRead,
		func(ctx context.Context, args map[string]any) (any, error) {
			channelID, _ := args["channel_id"].(string)
			members, err := messenger.Members(ctx, channelID)
			if err != nil {
				return nil, err
			}

			tasks := make([]fanout.Task[*workspace.Profile], len(members))
			for i, userID := range members {
				userID := userID
				tasks[i] = func(ctx context.Context) (*workspace.Profile, error) {
					return messenger.Profile(ctx, userID)
				}
			}

			resolved := fanout.Run(ctx, limit, tasks)
			profiles := make([]*workspace.Profile, 0, len(resolved))
			for _, p := range resolved {
				if p != nil && *p != nil {
					profiles = append(profiles, *p)
				}
			}

			return profiles, nil
		},
	)
}

func newProfileTool(messenger workspace.Messenger) tool.Tool {
	return tool.NewFunctionTool(
		"get_profile",
		"Retrieve a single member profile by employee id.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"employee_id": map[string]any{"type": "string", "description": "The member id"},
			},
			"required": []string{"employee_id"},
		},
		tool.SideEffectRead,
		func(ctx context.Context, args map[string]any) (any, error) {
			userID, _ := args["employee_id"].(string)
			profile, err := messenger.Profile(ctx, userID)
			if err != nil {
				return nil, err
			}
			if profile == nil {
				return nil, nil
			}
			return profile, nil
		},
	)
}

// newRecordQueryTool exposes a records collection through one tool with a
// type_query discriminator, mirroring how the agents are instructed to use
// it. allowed restricts the operations an agent may perform (the transcripts
// agent, for example, gets no insert/update).
func newRecordQueryTool(name, description, collection string, store records.Store, allowed map[string]bool) tool.Tool {
	return tool.NewFunctionTool(
		name,
		description,
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"type_query": map[string]any{
					"type":        "string",
					"description": `Operation to perform: "read", "insert", "update", "delete" or "delete_many"`,
				},
				"filter": map[string]any{
					"type":        "object",
					"description": "Field/value pairs matched against documents",
				},
				"document": map[string]any{
					"type":        "object",
					"description": "Document to insert",
				},
				"set": map[string]any{
					"type":        "object",
					"description": "Field/value pairs to merge into matching documents",
				},
				"limit": map[string]any{
					"type":        "integer",
					"description": "Maximum documents to return on read",
				},
			},
			"required": []string{"type_query"},
		},
		tool.SideEffectWrite,
		func(ctx context.Context, args map[string]any) (any, error) {
			typeQuery, _ := args["type_query"].(string)
			if !allowed[typeQuery] {
				return nil, fmt.Errorf("unsupported type_query %q", typeQuery)
			}

			filter := records.Filter{}
			if f, ok := args["filter"].(map[string]any); ok {
				filter = records.Filter(f)
			}

			switch typeQuery {
			case "read":
				limit := intArg(args, "limit")
				if limit <= 0 {
					limit = defaultFindLimit
				}
				docs, err := store.Find(ctx, collection, filter, limit)
				if err != nil {
					return nil, err
				}
				if len(docs) == 0 {
					return "no matching records", nil
				}
				return docs, nil

			case "insert":
				doc, ok := args["document"].(map[string]any)
				if !ok {
					return nil, fmt.Errorf("insert requires a document")
				}
				id, err := store.Insert(ctx, collection, records.Document(doc))
				if err != nil {
					return nil, err
				}
				return fmt.Sprintf("record added with id %s", id), nil

			case "update":
				set, ok := args["set"].(map[string]any)
				if !ok {
					return nil, fmt.Errorf("update requires a set object")
				}
				n, err := store.Update(ctx, collection, filter, records.Document(set))
				if err != nil {
					return nil, err
				}
				return fmt.Sprintf("%d record(s) updated", n), nil

			case "delete", "delete_many":
				if typeQuery == "delete" && len(filter) == 0 {
					return nil, fmt.Errorf("delete requires a filter")
				}
				n, err := store.Delete(ctx, collection, filter)
				if err != nil {
					return nil, err
				}
				return fmt.Sprintf("%d record(s) deleted", n), nil

			default:
				return nil, fmt.Errorf("unsupported type_query %q", typeQuery)
			}
		},
	)
}

func newTaskQueryTool(store records.Store) tool.Tool {
	return newRecordQueryTool(
		"query_tasks",
		"Read, insert, update or delete task records.",
		"tasks",
		store,
		map[string]bool{"read": true, "insert": true, "update": true, "delete": true},
	)
}

func newTranscriptionQueryTool(store records.Store) tool.Tool {
	return newRecordQueryTool(
		"query_transcriptions",
		"Read or delete meeting transcription records.",
		"transcriptions",
		store,
		map[string]bool{"read": true, "delete": true, "delete_many": true},
	)
}

func newSendEmailTool(sender mailer.Sender) tool.Tool {
	return tool.NewFunctionTool(
		"send_email",
		"Send emails to a list of recipients. Contents must match recipients by position.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"emails": map[string]any{
					"type":        "array",
					"description": "Recipient email addresses",
				},
				"contents": map[string]any{
					"type":        "array",
					"description": "Message bodies, same order as emails",
				},
				"subject": map[string]any{
					"type":        "string",
					"description": "Optional subject line",
				},
			},
			"required": []string{"emails", "contents"},
		},
		tool.SideEffectExternalSend,
		func(ctx context.Context, args map[string]any) (any, error) {
			if sender == nil {
				return nil, fmt.Errorf("email delivery is not configured")
			}
			emails := stringSlice(args["emails"])
			contents := stringSlice(args["contents"])
			if len(emails) == 0 || len(emails) != len(contents) {
				return nil, fmt.Errorf("emails and contents must be non-empty and equal length")
			}
			subject, _ := args["subject"].(string)
			if subject == "" {
				subject = "Message from your workspace assistant"
			}

			sent := 0
			var failed []string
			for i, recipient := range emails {
				if err := sender.Send(ctx, recipient, subject, contents[i]); err != nil {
					failed = append(failed, recipient)
					continue
				}
				sent++
			}

			if len(failed) > 0 {
				return fmt.Sprintf("sent %d email(s); failed for %v", sent, failed), nil
			}
			return fmt.Sprintf("sent %d email(s)", sent), nil
		},
	)
}

func newKnowledgeTool(retriever knowledge.Retriever) tool.Tool {
	return tool.NewFunctionTool(
		"query_knowledge_base",
		"Answer a business question from the company knowledge base.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{"type": "string", "description": "The question to answer"},
			},
			"required": []string{"query"},
		},
		tool.SideEffectRead,
		func(ctx context.Context, args map[string]any) (any, error) {
			if retriever == nil {
				return nil, fmt.Errorf("knowledge base is not configured")
			}
			query, _ := args["query"].(string)
			return retriever.Answer(ctx, query)
		},
	)
}

func intArg(args map[string]any, key string) int {
	switch v := args[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}

func stringSlice(v any) []string {
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
