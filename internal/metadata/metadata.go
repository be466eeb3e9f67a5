// Package metadata fetches book information for an ISBN from external
// catalog APIs. Sources are tried in order; a source failure is a miss, not
// an error, so a flaky upstream never blocks adding a book by hand.
package metadata

import (
	"context"
	"log"
)

// BookMetadata is the external catalog view of a book, shaped to fill the
// optional fields of a catalog record.
type BookMetadata struct {
	ISBN          string   `json:"isbn,omitempty"`
	Title         string   `json:"title,omitempty"`
	Authors       []string `json:"authors,omitempty"`
	Publisher     string   `json:"publisher,omitempty"`
	PublishedDate string   `json:"published_date,omitempty"`
	Description   string   `json:"description,omitempty"`
	Genres        []string `json:"genres,omitempty"`
	PageCount     int      `json:"page_count,omitempty"`
	CoverURL      string   `json:"cover_url,omitempty"`
	Language      string   `json:"language,omitempty"`
}

// Lookup resolves an ISBN against a single external source. Implementations
// return (nil, nil) when the source has no record for the ISBN.
type Lookup interface {
	Name() string
	LookupISBN(ctx context.Context, isbn string) (*BookMetadata, error)
}

// Chain tries each source in order and returns the first hit. Source errors
// are logged and treated as misses; (nil, nil) means every source came up
// empty.
type Chain struct {
	sources []Lookup
}

// NewChain builds a lookup chain over the given sources, tried in order.
func NewChain(sources ...Lookup) *Chain {
	return &Chain{sources: sources}
}

// DefaultChain is the production lookup order: Google Books first for its
// richer records, OpenLibrary as the fallback.
func DefaultChain(googleAPIKey string) *Chain {
	return NewChain(
		NewGoogleBooksClient(googleAPIKey),
		NewOpenLibraryClient(),
	)
}

func (c *Chain) Name() string {
	return "chain"
}

// LookupISBN implements Lookup over the whole chain.
func (c *Chain) LookupISBN(ctx context.Context, isbn string) (*BookMetadata, error) {
	for _, source := range c.sources {
		meta, err := source.LookupISBN(ctx, isbn)
		if err != nil {
			log.Printf("metadata: %s lookup for %s failed: %v", source.Name(), isbn, err)
			continue
		}
		if meta != nil {
			return meta, nil
		}
	}
	return nil, nil
}
