package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// OpenLibraryClient fetches book metadata from the OpenLibrary API.
type OpenLibraryClient struct {
	httpClient  *http.Client
	baseURL     string
	rateLimiter *rateLimiter
}

type rateLimiter struct {
	mu       sync.Mutex
	lastCall time.Time
	interval time.Duration
}

func newRateLimiter(interval time.Duration) *rateLimiter {
	return &rateLimiter{interval: interval}
}

func (r *rateLimiter) wait() {
	r.mu.Lock()
	defer r.mu.Unlock()

	since := time.Since(r.lastCall)
	if since < r.interval {
		time.Sleep(r.interval - since)
	}
	r.lastCall = time.Now()
}

// NewOpenLibraryClient creates a new OpenLibrary API client with rate limiting.
func NewOpenLibraryClient() *OpenLibraryClient {
	return &OpenLibraryClient{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:     "https://openlibrary.org",
		rateLimiter: newRateLimiter(time.Second), // 1 request per second
	}
}

func (c *OpenLibraryClient) Name() string {
	return "openlibrary"
}

// LookupISBN fetches the edition record for an ISBN, resolving author
// references with follow-up requests.
func (c *OpenLibraryClient) LookupISBN(ctx context.Context, isbn string) (*BookMetadata, error) {
	c.rateLimiter.wait()

	url := fmt.Sprintf("%s/isbn/%s.json", c.baseURL, isbn)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch ISBN data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var edition openLibraryEdition
	if err := json.NewDecoder(resp.Body).Decode(&edition); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	meta := c.convertEdition(isbn, &edition)

	for _, ref := range edition.Authors {
		name, err := c.fetchAuthorName(ctx, ref.Key)
		if err != nil {
			continue
		}
		meta.Authors = append(meta.Authors, name)
	}

	return meta, nil
}

func (c *OpenLibraryClient) fetchAuthorName(ctx context.Context, authorKey string) (string, error) {
	if authorKey == "" {
		return "", fmt.Errorf("empty author key")
	}

	c.rateLimiter.wait()

	url := fmt.Sprintf("%s%s.json", c.baseURL, authorKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status: %d", resp.StatusCode)
	}

	var authorData struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&authorData); err != nil {
		return "", err
	}

	return authorData.Name, nil
}

func (c *OpenLibraryClient) convertEdition(isbn string, edition *openLibraryEdition) *BookMetadata {
	meta := &BookMetadata{
		ISBN:          isbn,
		Title:         edition.Title,
		PublishedDate: edition.PublishDate,
		PageCount:     edition.NumberOfPages,
		Genres:        edition.Subjects,
		CoverURL:      fmt.Sprintf("https://covers.openlibrary.org/b/isbn/%s-L.jpg", isbn),
	}
	if meta.Title == "" {
		meta.Title = "Unknown Title"
	}

	if len(edition.Publishers) > 0 {
		meta.Publisher = edition.Publishers[0]
	}

	// Description is either a bare string or a {type, value} object.
	switch v := edition.Description.(type) {
	case string:
		meta.Description = v
	case map[string]any:
		if val, ok := v["value"].(string); ok {
			meta.Description = val
		}
	}

	if len(edition.Languages) > 0 {
		meta.Language = languageCode(edition.Languages[0].Key)
	}

	return meta
}

// languageCode maps an OpenLibrary language reference like "/languages/eng"
// to its trailing code.
func languageCode(key string) string {
	for i := len(key) - 1; i >= 0; i-- {
		if key[i] == '/' {
			return key[i+1:]
		}
	}
	return key
}

// OpenLibrary API response types (internal)

type openLibraryEdition struct {
	Key           string        `json:"key"`
	Title         string        `json:"title"`
	Authors       []authorRef   `json:"authors"`
	Publishers    []string      `json:"publishers"`
	PublishDate   string        `json:"publish_date"`
	NumberOfPages int           `json:"number_of_pages"`
	Description   any           `json:"description"` // Can be string or {type, value}
	Subjects      []string      `json:"subjects"`
	Languages     []languageRef `json:"languages"`
}

type authorRef struct {
	Key string `json:"key"`
}

type languageRef struct {
	Key string `json:"key"`
}
