package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const userAgent = "BookwyrmsHoard/1.0 (https://github.com/bookwyrms/hoard)"

// GoogleBooksClient fetches book metadata from the Google Books volumes API.
// An API key is optional; without one the public quota applies.
type GoogleBooksClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewGoogleBooksClient creates a Google Books client.
func NewGoogleBooksClient(apiKey string) *GoogleBooksClient {
	return &GoogleBooksClient{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: "https://www.googleapis.com/books/v1/volumes",
		apiKey:  apiKey,
	}
}

func (c *GoogleBooksClient) Name() string {
	return "googlebooks"
}

// LookupISBN queries volumes matching the ISBN and converts the first hit.
func (c *GoogleBooksClient) LookupISBN(ctx context.Context, isbn string) (*BookMetadata, error) {
	query := url.Values{}
	query.Set("q", "isbn:"+isbn)
	if c.apiKey != "" {
		query.Set("key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch volume data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var result googleVolumesResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(result.Items) == 0 {
		return nil, nil
	}

	return convertVolumeInfo(isbn, &result.Items[0].VolumeInfo), nil
}

func convertVolumeInfo(isbn string, info *googleVolumeInfo) *BookMetadata {
	meta := &BookMetadata{
		ISBN:          isbn,
		Title:         info.Title,
		Authors:       info.Authors,
		Publisher:     info.Publisher,
		PublishedDate: info.PublishedDate,
		Description:   info.Description,
		Genres:        info.Categories,
		PageCount:     info.PageCount,
		Language:      info.Language,
	}
	if meta.Title == "" {
		meta.Title = "Unknown Title"
	}
	meta.CoverURL = bestImageLink(info.ImageLinks)
	return meta
}

// bestImageLink picks the largest available cover image.
func bestImageLink(links map[string]string) string {
	for _, size := range []string{"large", "medium", "small", "thumbnail", "smallThumbnail"} {
		if link := links[size]; link != "" {
			return link
		}
	}
	return ""
}

// Google Books API response types (internal)

type googleVolumesResult struct {
	TotalItems int            `json:"totalItems"`
	Items      []googleVolume `json:"items"`
}

type googleVolume struct {
	ID         string           `json:"id"`
	VolumeInfo googleVolumeInfo `json:"volumeInfo"`
}

type googleVolumeInfo struct {
	Title         string            `json:"title"`
	Authors       []string          `json:"authors"`
	Publisher     string            `json:"publisher"`
	PublishedDate string            `json:"publishedDate"`
	Description   string            `json:"description"`
	Categories    []string          `json:"categories"`
	PageCount     int               `json:"pageCount"`
	Language      string            `json:"language"`
	ImageLinks    map[string]string `json:"imageLinks"`
}
