package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2/google"
)

const driveFilesURL = "https://www.googleapis.com/drive/v3/files"

// driveScope grants read-only metadata access, which covers both lookups.
const driveScope = "https://www.googleapis.com/auth/drive.readonly"

// Drive implements Store against the Google Drive v3 REST API using a
// service-account credential. Only the two list endpoints are exercised, so
// the raw API is called through an oauth2 HTTP client instead of pulling in
// the full API surface.
type Drive struct {
	httpClient *http.Client
	baseURL    string
}

// DriveOptions configures a Drive store.
type DriveOptions struct {
	// BaseURL overrides the Drive endpoint (used by tests).
	BaseURL string
	// HTTPClient overrides the authenticated client (used by tests).
	HTTPClient *http.Client
}

// NewDrive constructs a Drive store from service-account JSON credentials.
func NewDrive(credentialsJSON []byte, optFns ...func(o *DriveOptions)) (*Drive, error) {
	opts := DriveOptions{BaseURL: driveFilesURL}
	for _, fn := range optFns {
		fn(&opts)
	}

	client := opts.HTTPClient
	if client == nil {
		conf, err := google.JWTConfigFromJSON(credentialsJSON, driveScope)
		if err != nil {
			return nil, fmt.Errorf("parse drive credentials: %w", err)
		}
		client = conf.Client(context.Background())
	}

	return &Drive{httpClient: client, baseURL: opts.BaseURL}, nil
}

type driveFile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type driveFileList struct {
	Files []driveFile `json:"files"`
}

// FindByTitle resolves the first document whose name contains the title and
// returns its docs URL.
func (d *Drive) FindByTitle(ctx context.Context, title string) (string, error) {
	query := fmt.Sprintf("name contains '%s'", escapeQuery(title))
	list, err := d.list(ctx, url.Values{
		"q":        {query},
		"pageSize": {"1"},
		"fields":   {"files(id, name)"},
	})
	if err != nil {
		return "", err
	}
	if len(list.Files) == 0 {
		return "", ErrNotFound
	}

	return fmt.Sprintf("https://docs.google.com/document/d/%s/edit", list.Files[0].ID), nil
}

// ListNames returns document names for the 1-indexed inclusive range [start, end].
func (d *Drive) ListNames(ctx context.Context, start, end int) ([]string, error) {
	if start < 1 {
		start = 1
	}
	if end < start {
		return nil, fmt.Errorf("invalid range [%d, %d]", start, end)
	}

	list, err := d.list(ctx, url.Values{
		"orderBy":  {"name"},
		"pageSize": {fmt.Sprintf("%d", end)},
		"fields":   {"files(name)"},
	})
	if err != nil {
		return nil, err
	}

	if start > len(list.Files) {
		return nil, nil
	}
	if end > len(list.Files) {
		end = len(list.Files)
	}

	names := make([]string, 0, end-start+1)
	for _, f := range list.Files[start-1 : end] {
		names = append(names, f.Name)
	}

	return names, nil
}

func (d *Drive) list(ctx context.Context, params url.Values) (*driveFileList, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("drive request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("drive request: unexpected status %d", resp.StatusCode)
	}

	var list driveFileList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("decode drive response: %w", err)
	}

	return &list, nil
}

// escapeQuery escapes quotes and backslashes for a Drive query literal.
func escapeQuery(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}
