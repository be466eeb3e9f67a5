package search

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookwyrms/hoard/internal/catalog"
)

func buildIndex(books ...catalog.Book) *Index {
	idx := NewIndex()
	for i := range books {
		idx.Upsert(&books[i])
	}
	return idx
}

func clrs() catalog.Book {
	return catalog.Book{
		ISBN:        "9780262046305",
		Title:       "Introduction to Algorithms",
		Authors:     []string{"Thomas H. Cormen", "Charles E. Leiserson"},
		Description: "A comprehensive textbook covering the full range of modern algorithms.",
	}
}

func TestSearch_PrefixMatchesTitle(t *testing.T) {
	idx := buildIndex(clrs(), catalog.Book{
		ISBN:  "9780134190440",
		Title: "The Go Programming Language",
	})

	results, err := idx.Search("algo", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "9780262046305", results[0].ISBN)
}

func TestSearch_PrefixMatchesAuthor(t *testing.T) {
	idx := buildIndex(clrs())

	results, err := idx.Search("corm", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "9780262046305", results[0].ISBN)
}

func TestSearch_ExactISBNShortCircuits(t *testing.T) {
	decoy := catalog.Book{
		ISBN:        "9999999999999",
		Title:       "Numbers 9780262046305 in the title",
		Description: "9780262046305",
	}
	idx := buildIndex(clrs(), decoy)

	results, err := idx.Search("978-0-262-04630-5", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "9780262046305", results[0].ISBN)
	assert.True(t, math.IsInf(results[0].Score, 1))
}

func TestSearch_UnknownISBNFallsBackToText(t *testing.T) {
	idx := buildIndex(catalog.Book{
		ISBN:        "9999999999999",
		Title:       "Catalog of 9780262046305 references",
		Description: "mentions 9780262046305 in passing",
	})

	results, err := idx.Search("9780262046305", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "9999999999999", results[0].ISBN)
}

func TestSearch_EmptyQuery(t *testing.T) {
	idx := buildIndex(clrs())

	_, err := idx.Search("", 10)
	assert.ErrorIs(t, err, catalog.ErrEmptyQuery)

	_, err = idx.Search("   \t  ", 10)
	assert.ErrorIs(t, err, catalog.ErrEmptyQuery)
}

func TestSearch_RanksTitleHitsAboveDescriptionHits(t *testing.T) {
	titleHit := catalog.Book{ISBN: "1111111111111", Title: "Dune"}
	descriptionHit := catalog.Book{
		ISBN:        "2222222222222",
		Title:       "Deserts of the World",
		Description: "Includes a chapter comparing fictional dune seas.",
	}
	idx := buildIndex(titleHit, descriptionHit)

	results, err := idx.Search("dune", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "1111111111111", results[0].ISBN)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestSearch_TiesBreakByTitle(t *testing.T) {
	idx := buildIndex(
		catalog.Book{ISBN: "2222222222222", Title: "Borges"},
		catalog.Book{ISBN: "1111111111111", Title: "Austen"},
	)

	// Both match equally; order must be deterministic by title.
	results, err := idx.Search("b a", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "1111111111111", results[0].ISBN)
	assert.Equal(t, "2222222222222", results[1].ISBN)
}

func TestSearch_LimitApplied(t *testing.T) {
	idx := buildIndex(
		catalog.Book{ISBN: "1111111111111", Title: "Go in Action"},
		catalog.Book{ISBN: "2222222222222", Title: "Go Web Programming"},
		catalog.Book{ISBN: "3333333333333", Title: "Learning Go"},
	)

	results, err := idx.Search("go", 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestUpsertReplacesEntry(t *testing.T) {
	book := clrs()
	idx := buildIndex(book)

	book.Title = "Renamed Entirely"
	book.Authors = nil
	book.Description = ""
	idx.Upsert(&book)

	results, err := idx.Search("algorithms", 10)
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = idx.Search("renamed", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, book.ISBN, results[0].ISBN)
}

func TestRemove(t *testing.T) {
	book := clrs()
	idx := buildIndex(book)

	idx.Remove(book.ISBN)
	assert.Zero(t, idx.Len())

	results, err := idx.Search("algorithms", 10)
	require.NoError(t, err)
	assert.Empty(t, results)

	// Removing again is harmless
	idx.Remove(book.ISBN)
}

func TestRebuild(t *testing.T) {
	idx := buildIndex(catalog.Book{ISBN: "1111111111111", Title: "Stale Entry"})

	idx.Rebuild([]catalog.Book{clrs(), {ISBN: "2222222222222", Title: "Fresh Entry"}})
	assert.Equal(t, 2, idx.Len())

	results, err := idx.Search("stale", 10)
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = idx.Search("fresh", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "2222222222222", results[0].ISBN)
}
