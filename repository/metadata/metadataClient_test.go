package metadata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLookupISBN(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/isbn/9780132350884" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"title":"Clean Code","summary":"A handbook of agile software craftsmanship"}`))
	}))
	defer srv.Close()

	r := NewHTTP(srv.URL)

	info, err := r.LookupISBN(context.Background(), "9780132350884")
	require.NoError(t, err)
	require.Equal(t, "Clean Code", info.Title)
	require.NotEmpty(t, info.Summary)

	_, err = r.LookupISBN(context.Background(), "0000000000")
	require.Error(t, err)
}

func TestLookupISBN_NotConfigured(t *testing.T) {
	r := NewHTTP("")
	_, err := r.LookupISBN(context.Background(), "9780132350884")
	require.Error(t, err)
}
