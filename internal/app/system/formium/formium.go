// Package formium is a minimal client for the hosted form-definition
// service. Only the lookup this app needs is implemented: resolving a form
// slug to its definition (id, name, field schema). Definitions change
// rarely, so successful lookups are cached for a short TTL.
package formium

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/poketwo/forms/internal/app/system/memcache"
)

const defaultBaseURL = "https://api.formium.io"

// ErrFormNotFound is returned when the slug resolves to no form.
var ErrFormNotFound = errors.New("form not found")

// Field is one field of a form schema, keyed by slug in submission data.
type Field struct {
	ID    string `json:"id"`
	Slug  string `json:"slug"`
	Title string `json:"title"`
	Type  string `json:"type"`
}

// Form is a hosted form definition.
type Form struct {
	ID     string  `json:"id"`
	Slug   string  `json:"slug"`
	Name   string  `json:"name"`
	Fields []Field `json:"fields"`
}

// FieldTitles maps field slugs to display titles for rendering submissions.
func (f *Form) FieldTitles() map[string]string {
	out := make(map[string]string, len(f.Fields))
	for _, fld := range f.Fields {
		out[fld.Slug] = fld.Title
	}
	return out
}

// Client talks to the form service for a single project.
type Client struct {
	baseURL string
	project string
	token   string
	http    *http.Client
	cache   *memcache.Cache
}

// New builds a client for the given project. cache may be nil to disable
// caching (tests).
func New(project, token string, cache *memcache.Cache) *Client {
	return &Client{
		baseURL: defaultBaseURL,
		project: project,
		token:   token,
		http:    http.DefaultClient,
		cache:   cache,
	}
}

// SetBaseURL overrides the API host. For tests.
func (c *Client) SetBaseURL(u string) { c.baseURL = u }

// FormBySlug resolves a form slug to its definition.
func (c *Client) FormBySlug(ctx context.Context, slug string) (*Form, error) {
	cacheKey := "form:" + slug
	if c.cache != nil {
		if cached, ok := c.cache.Get(cacheKey); ok {
			return cached.(*Form), nil
		}
	}

	endpoint := fmt.Sprintf("%s/v1/projects/%s/forms/%s",
		c.baseURL, url.PathEscape(c.project), url.PathEscape(slug))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("form service: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// fall through to decode
	case http.StatusNotFound:
		return nil, ErrFormNotFound
	default:
		return nil, fmt.Errorf("form service: unexpected status %d", resp.StatusCode)
	}

	var wrapper struct {
		Data *Form `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&wrapper); err != nil {
		return nil, fmt.Errorf("form service: decode: %w", err)
	}
	if wrapper.Data == nil || wrapper.Data.Slug == "" {
		return nil, ErrFormNotFound
	}

	if c.cache != nil {
		c.cache.Set(cacheKey, wrapper.Data)
	}
	return wrapper.Data, nil
}
