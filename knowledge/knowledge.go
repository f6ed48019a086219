// Package knowledge answers business questions from documents indexed in an
// OpenAI vector store, using the Responses API with the file_search tool.
package knowledge

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
)

// Retriever is the knowledge retrieval boundary.
type Retriever interface {
	Answer(ctx context.Context, query string) (string, error)
}

const answerPrompt = `You are an intelligent assistant working with the company's internal documents. Your task is to extract the most relevant data from files stored in a vector database and use it to answer the user's query as accurately as possible.

## User Query

` + "```\n{query}\n```" + `

## Mandatory Instructions:

1. Find and select the **most relevant fragments** from the provided user query.
2. Preserve the **original wording** as much as possible, making **only minimal changes** necessary for clarity and coherence.
3. If needed, **lightly rephrase** for grammar or flow, but **do not fabricate, interpret beyond the original meaning, or add new information**.
4. Focus on **direct, specific answers**; avoid vague summaries or generalizations.
5. If the answer to the user query is not present in the context, clearly respond with: **"The requested information was not found in the provided documents."**`

// VectorStoreRetriever implements Retriever on an OpenAI vector store.
type VectorStoreRetriever struct {
	client        *openai.Client
	vectorStoreID string
	opts          Options
}

// Options configures the retriever.
type Options struct {
	Model string
}

// NewVectorStoreRetriever constructs a retriever over an existing client.
func NewVectorStoreRetriever(client *openai.Client, vectorStoreID string, optFns ...func(o *Options)) *VectorStoreRetriever {
	opts := Options{Model: openai.ChatModelGPT4oMini}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &VectorStoreRetriever{client: client, vectorStoreID: vectorStoreID, opts: opts}
}

// Answer runs an extractive query against the vector store.
func (r *VectorStoreRetriever) Answer(ctx context.Context, query string) (string, error) {
	prompt := strings.ReplaceAll(answerPrompt, "{query}", query)

	resp, err := r.client.Responses.New(ctx, responses.ResponseNewParams{
		Model: shared.ResponsesModel(r.opts.Model),
		Input: responses.ResponseNewParamsInputUnion{OfString: openai.String(prompt)},
		Tools: []responses.ToolUnionParam{{
			OfFileSearch: &responses.FileSearchToolParam{
				VectorStoreIDs: []string{r.vectorStoreID},
			},
		}},
	})
	if err != nil {
		return "", fmt.Errorf("vector store query: %w", err)
	}

	return resp.OutputText(), nil
}
