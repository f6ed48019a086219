package transcripts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const firefliesURL = "https://api.fireflies.ai/graphql"

const transcriptQuery = `
query Transcript($transcriptId: String!) {
  transcript(id: $transcriptId) {
    title
    dateString
    sentences {
      speaker_name
      text
    }
  }
}`

// FirefliesClient implements Source against the Fireflies GraphQL API.
type FirefliesClient struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// FirefliesOptions configures a FirefliesClient.
type FirefliesOptions struct {
	// BaseURL overrides the API endpoint (used by tests).
	BaseURL string
	// HTTPClient overrides the HTTP client (used by tests).
	HTTPClient *http.Client
}

// NewFirefliesClient constructs a client from an API token.
func NewFirefliesClient(token string, optFns ...func(o *FirefliesOptions)) *FirefliesClient {
	opts := FirefliesOptions{BaseURL: firefliesURL}
	for _, fn := range optFns {
		fn(&opts)
	}

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}

	return &FirefliesClient{httpClient: client, baseURL: opts.BaseURL, token: token}
}

type transcriptResponse struct {
	Data struct {
		Transcript *Call `json:"transcript"`
	} `json:"data"`
}

// Fetch retrieves one transcript by id.
func (c *FirefliesClient) Fetch(ctx context.Context, transcriptID string) (*Call, error) {
	payload, err := json.Marshal(map[string]any{
		"query":     transcriptQuery,
		"variables": map[string]string{"transcriptId": transcriptID},
	})
	if err != nil {
		return nil, fmt.Errorf("encode transcript query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transcript request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("transcript request: unexpected status %d", resp.StatusCode)
	}

	var decoded transcriptResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode transcript response: %w", err)
	}
	if decoded.Data.Transcript == nil {
		return nil, fmt.Errorf("transcript %s not found", transcriptID)
	}

	return decoded.Data.Transcript, nil
}
