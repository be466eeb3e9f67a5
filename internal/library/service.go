// Package library is the query façade over the catalog store, the search
// index, and the metadata lookup chain. It is the single entry point the
// CLI and HTTP layers call; it normalizes arguments and composes the lower
// layers without adding invariants of its own.
package library

import (
	"context"
	"fmt"
	"time"

	"github.com/bookwyrms/hoard/internal/catalog"
	"github.com/bookwyrms/hoard/internal/database"
	"github.com/bookwyrms/hoard/internal/metadata"
	"github.com/bookwyrms/hoard/internal/search"
)

// Service composes the catalog store, search index, and lookup chain.
type Service struct {
	store  *database.Store
	index  *search.Index
	lookup metadata.Lookup
}

// NewService wires the façade. lookup may be nil to disable external
// metadata resolution (books are then added from manual fields only).
func NewService(store *database.Store, index *search.Index, lookup metadata.Lookup) *Service {
	return &Service{
		store:  store,
		index:  index,
		lookup: lookup,
	}
}

// AddBookInput carries the caller-supplied fields for a new book. ISBN is
// optional: books without one receive a synthetic identifier. Location, if
// set, is the formatted home cell "{location}/{name}/C{column}R{row}".
type AddBookInput struct {
	ISBN          string
	Title         string
	Authors       []string
	Publisher     string
	PublishedDate string
	Description   string
	Genres        []string
	PageCount     int
	CoverURL      string
	Language      string
	Notes         string
	Location      string
}

// AddBook catalogs a new book. With an ISBN, the external lookup chain
// fills in fields the caller left blank; a lookup miss is fine, manual
// fields stand on their own. Without an ISBN the book gets a synthetic
// identifier and the title is required. Adding an ISBN that is already
// cataloged is a conflict, not an overwrite.
func (s *Service) AddBook(ctx context.Context, input AddBookInput) (*catalog.Book, error) {
	book := &catalog.Book{
		Title:         input.Title,
		Authors:       input.Authors,
		Publisher:     input.Publisher,
		PublishedDate: input.PublishedDate,
		Description:   input.Description,
		Genres:        input.Genres,
		PageCount:     input.PageCount,
		CoverURL:      input.CoverURL,
		Language:      input.Language,
		Notes:         input.Notes,
	}

	if input.ISBN != "" {
		isbn, ok := catalog.CanonicalISBN(input.ISBN)
		if !ok {
			return nil, catalog.Validationf("invalid ISBN: %q", input.ISBN)
		}
		book.ISBN = isbn

		if _, err := s.store.GetBook(isbn); err == nil {
			return nil, &catalog.ConflictError{
				Msg: fmt.Sprintf("book %s is already cataloged", isbn),
			}
		} else if !catalog.IsNotFound(err) {
			return nil, err
		}

		s.enrichFromLookup(ctx, book)
	} else {
		book.ISBN = catalog.NewSyntheticISBN()
	}

	if book.Title == "" {
		return nil, catalog.Validationf("title is required when no metadata source knows the ISBN")
	}

	if input.Location != "" {
		loc, err := catalog.ParseLocation(input.Location)
		if err != nil {
			return nil, err
		}
		book.HomeLocation = &loc
	}

	return s.store.UpsertBook(book)
}

// enrichFromLookup fills blank fields from the external chain. Lookup
// failures and misses leave the book untouched.
func (s *Service) enrichFromLookup(ctx context.Context, book *catalog.Book) {
	if s.lookup == nil {
		return
	}
	meta, err := s.lookup.LookupISBN(ctx, book.ISBN)
	if err != nil || meta == nil {
		return
	}

	if book.Title == "" {
		book.Title = meta.Title
	}
	if len(book.Authors) == 0 {
		book.Authors = meta.Authors
	}
	if book.Publisher == "" {
		book.Publisher = meta.Publisher
	}
	if book.PublishedDate == "" {
		book.PublishedDate = meta.PublishedDate
	}
	if book.Description == "" {
		book.Description = meta.Description
	}
	if len(book.Genres) == 0 {
		book.Genres = meta.Genres
	}
	if book.PageCount == 0 {
		book.PageCount = meta.PageCount
	}
	if book.CoverURL == "" {
		book.CoverURL = meta.CoverURL
	}
	if book.Language == "" {
		book.Language = meta.Language
	}
}

// GetBook fetches a book, canonicalizing the ISBN first.
func (s *Service) GetBook(isbn string) (*catalog.Book, error) {
	key, err := normalizeISBN(isbn)
	if err != nil {
		return nil, err
	}
	return s.store.GetBook(key)
}

// RemoveBook deletes a book from the catalog and the index.
func (s *Service) RemoveBook(isbn string) error {
	key, err := normalizeISBN(isbn)
	if err != nil {
		return err
	}
	return s.store.DeleteBook(key)
}

// ListBooks returns the whole catalog in stable order.
func (s *Service) ListBooks() ([]catalog.Book, error) {
	return s.store.ListBooks()
}

// SearchResult pairs a ranked search hit with its catalog record.
type SearchResult struct {
	Book  catalog.Book
	Score float64
}

// SearchBooks answers a free-text or ISBN query with ranked catalog
// records, most relevant first.
func (s *Service) SearchBooks(query string, limit int) ([]SearchResult, error) {
	hits, err := s.index.Search(query, limit)
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(hits))
	for _, hit := range hits {
		book, err := s.store.GetBook(hit.ISBN)
		if err != nil {
			// The index is applied after the commit, so a hit can
			// reference a book deleted between the search and this
			// read. Skip it.
			if catalog.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		results = append(results, SearchResult{Book: *book, Score: hit.Score})
	}
	return results, nil
}

// CheckoutBook lends a book out. A zero date means now.
func (s *Service) CheckoutBook(isbn, to string, date time.Time) (*catalog.Book, error) {
	key, err := normalizeISBN(isbn)
	if err != nil {
		return nil, err
	}
	return s.store.Checkout(key, to, date)
}

// CheckinBook returns a book. newLocation, when non-empty, is a formatted
// cell string replacing the home location; empty keeps the current home.
func (s *Service) CheckinBook(isbn, newLocation string) (*catalog.Book, error) {
	key, err := normalizeISBN(isbn)
	if err != nil {
		return nil, err
	}

	var loc *catalog.ShelfLocation
	if newLocation != "" {
		parsed, err := catalog.ParseLocation(newLocation)
		if err != nil {
			return nil, err
		}
		loc = &parsed
	}
	return s.store.Checkin(key, loc)
}

// LocateBook reports where a book lives, in the stable formatted form.
func (s *Service) LocateBook(isbn string) (string, error) {
	book, err := s.GetBook(isbn)
	if err != nil {
		return "", err
	}
	if book.HomeLocation == nil {
		return "", catalog.ErrNoHomeLocation
	}
	return book.HomeLocation.String(), nil
}

// RelocateBook moves a book's home to a new cell, or clears it when the
// location string is empty.
func (s *Service) RelocateBook(isbn, location string) (*catalog.Book, error) {
	book, err := s.GetBook(isbn)
	if err != nil {
		return nil, err
	}

	if location == "" {
		book.HomeLocation = nil
	} else {
		loc, err := catalog.ParseLocation(location)
		if err != nil {
			return nil, err
		}
		book.HomeLocation = &loc
	}
	return s.store.UpsertBook(book)
}

// --- shelf passthroughs ---

// CreateShelf registers a new grid shelf.
func (s *Service) CreateShelf(location, name string, rows, columns int, description string) (*catalog.Bookshelf, error) {
	shelf, err := catalog.NewBookshelf(location, name, rows, columns, description)
	if err != nil {
		return nil, err
	}
	return s.store.CreateShelf(shelf)
}

// UpdateShelf resizes or relabels a shelf.
func (s *Service) UpdateShelf(location, name string, rows, columns int, description string) (*catalog.Bookshelf, error) {
	return s.store.UpdateShelf(location, name, rows, columns, description)
}

// DeleteShelf removes an empty shelf.
func (s *Service) DeleteShelf(location, name string) error {
	return s.store.DeleteShelf(location, name)
}

// GetShelf fetches one shelf.
func (s *Service) GetShelf(location, name string) (*catalog.Bookshelf, error) {
	return s.store.GetShelf(location, name)
}

// ListShelves returns all shelves in stable order.
func (s *Service) ListShelves() ([]catalog.Bookshelf, error) {
	return s.store.ListShelves()
}

// BooksOnShelf returns the books sitting on a shelf in reading order.
func (s *Service) BooksOnShelf(location, name string) ([]catalog.Book, error) {
	return s.store.BooksOnShelf(location, name)
}

// RebuildSearchIndex reconstructs the index from the books relation and
// reports how many books were indexed.
func (s *Service) RebuildSearchIndex() (int, error) {
	return s.store.RebuildIndex()
}

func normalizeISBN(isbn string) (string, error) {
	key, ok := catalog.CanonicalISBN(isbn)
	if !ok {
		return "", catalog.Validationf("invalid ISBN: %q", isbn)
	}
	return key, nil
}
