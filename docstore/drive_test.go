package docstore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDrive(t *testing.T, handler http.HandlerFunc) *Drive {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	drive, err := NewDrive(nil, func(o *DriveOptions) {
		o.BaseURL = srv.URL
		o.HTTPClient = srv.Client()
	})
	require.NoError(t, err)

	return drive
}

func TestDrive_FindByTitle(t *testing.T) {
	var gotQuery string
	drive := newTestDrive(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"files": []map[string]string{{"id": "abc123", "name": "Q3 Report"}},
		})
	})

	link, err := drive.FindByTitle(context.Background(), "Q3 Report")
	require.NoError(t, err)
	assert.Equal(t, "https://docs.google.com/document/d/abc123/edit", link)
	assert.Equal(t, "name contains 'Q3 Report'", gotQuery)
}

func TestDrive_FindByTitleEscapesQuery(t *testing.T) {
	var gotQuery string
	drive := newTestDrive(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"files": []map[string]string{{"id": "x", "name": "y"}},
		})
	})

	_, err := drive.FindByTitle(context.Background(), `John's \notes`)
	require.NoError(t, err)
	assert.Equal(t, `name contains 'John\'s \\notes'`, gotQuery)
}

func TestDrive_FindByTitleNotFound(t *testing.T) {
	drive := newTestDrive(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"files": []any{}})
	})

	_, err := drive.FindByTitle(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDrive_ListNames(t *testing.T) {
	drive := newTestDrive(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "name", r.URL.Query().Get("orderBy"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"files": []map[string]string{
				{"name": "alpha"}, {"name": "beta"}, {"name": "gamma"},
			},
		})
	})

	names, err := drive.ListNames(context.Background(), 2, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"beta", "gamma"}, names)
}

func TestDrive_ListNamesRangeHandling(t *testing.T) {
	drive := newTestDrive(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"files": []map[string]string{{"name": "alpha"}},
		})
	})

	// Start past the end of the listing yields nothing.
	names, err := drive.ListNames(context.Background(), 5, 8)
	require.NoError(t, err)
	assert.Empty(t, names)

	// End beyond the listing is clamped.
	names, err = drive.ListNames(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha"}, names)

	// Inverted ranges are rejected.
	_, err = drive.ListNames(context.Background(), 3, 1)
	assert.Error(t, err)
}

func TestDrive_ErrorStatus(t *testing.T) {
	drive := newTestDrive(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	})

	_, err := drive.FindByTitle(context.Background(), "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}
