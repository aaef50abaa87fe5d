package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(context.Background(), Config{Endpoint: srv.URL + "/"})
	require.NoError(t, err)
	return c
}

func TestAppend(t *testing.T) {
	var body struct {
		Values [][]any `json:"values"`
	}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasPrefix(r.URL.Path, "/v4/spreadsheets/sheet-1/values/"), r.URL.Path)
		assert.True(t, strings.HasSuffix(r.URL.Path, ":append"), r.URL.Path)
		assert.Equal(t, "RAW", r.URL.Query().Get("valueInputOption"))
		assert.Equal(t, "INSERT_ROWS", r.URL.Query().Get("insertDataOption"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"updates":{"updatedRows":2}}`))
	})

	n, err := c.Append(context.Background(), "sheet-1", "Jobs!A1", [][]any{{"Go Developer", "Acme"}, {"SRE", "Globex"}})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, body.Values, 2)
	assert.Equal(t, "Acme", body.Values[0][1])
}

func TestUpdateAndClear(t *testing.T) {
	var paths []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
		if strings.HasSuffix(r.URL.Path, ":clear") {
			_, _ = w.Write([]byte(`{}`))
			return
		}
		_, _ = w.Write([]byte(`{"updatedRows":1}`))
	})

	require.NoError(t, c.Clear(context.Background(), "sheet-1", "Jobs!A2:Z"))
	n, err := c.Update(context.Background(), "sheet-1", "Jobs!A2", [][]any{{"x"}})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.Len(t, paths, 2)
	assert.True(t, strings.HasPrefix(paths[0], http.MethodPost), paths[0])
	assert.True(t, strings.HasPrefix(paths[1], http.MethodPut), paths[1])
}

func TestErrorsAreWrapped(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":{"code":403,"message":"denied"}}`, http.StatusForbidden)
	})

	_, err := c.Append(context.Background(), "sheet-1", "Jobs!A1", [][]any{{"x"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sheets: append Jobs!A1")
}

func TestNewClientRequiresCredentials(t *testing.T) {
	_, err := NewClient(context.Background(), Config{})
	assert.Error(t, err)
}
