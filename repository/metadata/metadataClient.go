package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"libcatalog/util/httpx"
)

// BookInfo is the subset of an external catalog record used to
// prefill book create requests.
type BookInfo struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

type Repo interface {
	LookupISBN(ctx context.Context, isbn string) (*BookInfo, error)
}

type httpRepo struct {
	baseURL string
	client  *http.Client
}

func NewHTTP(baseURL string) Repo {
	return &httpRepo{baseURL: baseURL, client: httpx.Client()}
}

func (r *httpRepo) LookupISBN(ctx context.Context, isbn string) (*BookInfo, error) {
	if r.baseURL == "" {
		return nil, errors.New("book lookup not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		r.baseURL+"/isbn/"+url.PathEscape(isbn), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("book lookup failed: %s", resp.Status)
	}

	var out BookInfo
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if out.Title == "" {
		return nil, errors.New("book lookup: empty title")
	}
	return &out, nil
}
