package database

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookwyrms/hoard/internal/catalog"
)

// recorderIndex records the index calls the store makes so tests can assert
// the catalog and the index move in lockstep.
type recorderIndex struct {
	mu       sync.Mutex
	upserts  []string
	removes  []string
	rebuilds []int
}

func (r *recorderIndex) Upsert(book *catalog.Book) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserts = append(r.upserts, book.ISBN)
}

func (r *recorderIndex) Remove(isbn string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removes = append(r.removes, isbn)
}

func (r *recorderIndex) Rebuild(books []catalog.Book) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rebuilds = append(r.rebuilds, len(books))
}

func setupTestStore(t *testing.T) (*Store, *recorderIndex) {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "hoard_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, Close(db))
	})

	idx := &recorderIndex{}
	return NewStore(db, idx), idx
}

func mustCreateShelf(t *testing.T, store *Store, location, name string, rows, columns int) *catalog.Bookshelf {
	t.Helper()
	shelf, err := catalog.NewBookshelf(location, name, rows, columns, "")
	require.NoError(t, err)
	created, err := store.CreateShelf(shelf)
	require.NoError(t, err)
	return created
}

func testBook(isbn, title string, loc *catalog.ShelfLocation) *catalog.Book {
	return &catalog.Book{
		ISBN:         isbn,
		Title:        title,
		Authors:      []string{"Test Author"},
		HomeLocation: loc,
	}
}

func cellAt(shelf *catalog.Bookshelf, column, row int) *catalog.ShelfLocation {
	loc, err := shelf.LocationAt(column, row)
	if err != nil {
		panic(err)
	}
	return &loc
}

func TestCreateShelfRejectsDuplicate(t *testing.T) {
	store, _ := setupTestStore(t)

	mustCreateShelf(t, store, "Library", "Large bookshelf", 4, 6)

	dup, err := catalog.NewBookshelf("Library", "Large bookshelf", 2, 2, "")
	require.NoError(t, err)
	_, err = store.CreateShelf(dup)
	assert.True(t, catalog.IsConflict(err))

	// Same name in a different location is a different shelf.
	other, err := catalog.NewBookshelf("Bedroom", "Large bookshelf", 2, 2, "")
	require.NoError(t, err)
	_, err = store.CreateShelf(other)
	assert.NoError(t, err)
}

func TestUpdateShelfGrowAndShrink(t *testing.T) {
	store, _ := setupTestStore(t)

	shelf := mustCreateShelf(t, store, "Library", "Corner shelf", 2, 2)
	_, err := store.UpsertBook(testBook("9780547928227", "The Hobbit", cellAt(shelf, 1, 1)))
	require.NoError(t, err)

	// Growing never strands a book.
	grown, err := store.UpdateShelf("Library", "Corner shelf", 3, 4, "now bigger")
	require.NoError(t, err)
	assert.Equal(t, 3, grown.Rows)
	assert.Equal(t, 4, grown.Columns)
	assert.Equal(t, "now bigger", grown.Description)

	// Shrinking past the occupied cell is rejected with the stranded count.
	_, err = store.UpdateShelf("Library", "Corner shelf", 1, 1, "")
	require.True(t, catalog.IsConflict(err))
	var conflict *catalog.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, 1, conflict.BookCount)

	// The rejected shrink changed nothing.
	current, err := store.GetShelf("Library", "Corner shelf")
	require.NoError(t, err)
	assert.Equal(t, 3, current.Rows)
	assert.Equal(t, 4, current.Columns)
}

func TestUpdateShelfNotFound(t *testing.T) {
	store, _ := setupTestStore(t)

	_, err := store.UpdateShelf("Attic", "Ghost shelf", 2, 2, "")
	assert.True(t, catalog.IsNotFound(err))
}

func TestDeleteShelf(t *testing.T) {
	store, _ := setupTestStore(t)

	shelf := mustCreateShelf(t, store, "Library", "Small shelf", 2, 2)
	_, err := store.UpsertBook(testBook("9780261103573", "The Fellowship of the Ring", cellAt(shelf, 0, 0)))
	require.NoError(t, err)

	err = store.DeleteShelf("Library", "Small shelf")
	require.True(t, catalog.IsConflict(err))
	var conflict *catalog.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, 1, conflict.BookCount)

	require.NoError(t, store.DeleteBook("9780261103573"))
	require.NoError(t, store.DeleteShelf("Library", "Small shelf"))

	_, err = store.GetShelf("Library", "Small shelf")
	assert.True(t, catalog.IsNotFound(err))

	err = store.DeleteShelf("Library", "Small shelf")
	assert.True(t, catalog.IsNotFound(err))
}

func TestListShelvesOrdered(t *testing.T) {
	store, _ := setupTestStore(t)

	mustCreateShelf(t, store, "Library", "Zebra shelf", 2, 2)
	mustCreateShelf(t, store, "Bedroom", "Nightstand", 1, 3)
	mustCreateShelf(t, store, "Library", "Alcove", 4, 4)

	shelves, err := store.ListShelves()
	require.NoError(t, err)
	require.Len(t, shelves, 3)
	assert.Equal(t, "Nightstand", shelves[0].Name)
	assert.Equal(t, "Alcove", shelves[1].Name)
	assert.Equal(t, "Zebra shelf", shelves[2].Name)
}

func TestUpsertBookRoundTrip(t *testing.T) {
	store, idx := setupTestStore(t)

	shelf := mustCreateShelf(t, store, "Library", "Main", 4, 6)
	book := &catalog.Book{
		ISBN:          "9780140449136",
		Title:         "Crime and Punishment",
		Authors:       []string{"Fyodor Dostoevsky", "Constance Garnett"},
		Publisher:     "Penguin Classics",
		PublishedDate: "2002-12-31",
		Description:   "A desperate young man plans the perfect crime.",
		Genres:        []string{"Fiction", "Classics"},
		PageCount:     671,
		Language:      "en",
		Notes:         "gift from Ada",
		HomeLocation:  cellAt(shelf, 2, 1),
	}

	saved, err := store.UpsertBook(book)
	require.NoError(t, err)
	assert.False(t, saved.CreatedAt.IsZero())

	got, err := store.GetBook("9780140449136")
	require.NoError(t, err)
	assert.Equal(t, book.Title, got.Title)
	assert.Equal(t, book.Authors, got.Authors)
	assert.Equal(t, book.Genres, got.Genres)
	assert.Equal(t, book.PageCount, got.PageCount)
	assert.Equal(t, book.Notes, got.Notes)
	require.NotNil(t, got.HomeLocation)
	assert.Equal(t, "Library/Main/C2R1", got.HomeLocation.String())
	assert.False(t, got.IsCheckedOut())

	assert.Equal(t, []string{"9780140449136"}, idx.upserts)
}

func TestUpsertBookValidatesPlacement(t *testing.T) {
	store, idx := setupTestStore(t)

	mustCreateShelf(t, store, "Library", "Main", 2, 2)

	// Shelf that does not exist.
	_, err := store.UpsertBook(testBook("9780000000001", "Nowhere", &catalog.ShelfLocation{
		Location: "Attic", BookshelfName: "Ghost", Column: 0, Row: 0,
	}))
	assert.True(t, catalog.IsValidation(err))

	// Cell outside the shelf's grid.
	_, err = store.UpsertBook(testBook("9780000000002", "Out of Bounds", &catalog.ShelfLocation{
		Location: "Library", BookshelfName: "Main", Column: 5, Row: 0,
	}))
	assert.True(t, catalog.IsValidation(err))

	// No half-applied writes: rejected books were never persisted or indexed.
	_, err = store.GetBook("9780000000001")
	assert.True(t, catalog.IsNotFound(err))
	assert.Empty(t, idx.upserts)

	// A book without a home location is fine.
	_, err = store.UpsertBook(testBook("9780000000003", "Floating", nil))
	assert.NoError(t, err)
}

func TestUpsertBookCellOccupancy(t *testing.T) {
	store, _ := setupTestStore(t)

	shelf := mustCreateShelf(t, store, "Library", "Main", 2, 2)
	_, err := store.UpsertBook(testBook("9780151010264", "Kafka on the Shore", cellAt(shelf, 0, 0)))
	require.NoError(t, err)

	// Another book cannot take the occupied cell.
	_, err = store.UpsertBook(testBook("9780099458326", "Norwegian Wood", cellAt(shelf, 0, 0)))
	require.True(t, catalog.IsConflict(err))
	var conflict *catalog.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "9780151010264", conflict.OccupiedBy)

	// Re-saving the occupant to its own cell is idempotent.
	updated := testBook("9780151010264", "Kafka on the Shore (reread)", cellAt(shelf, 0, 0))
	_, err = store.UpsertBook(updated)
	assert.NoError(t, err)

	got, err := store.GetBook("9780151010264")
	require.NoError(t, err)
	assert.Equal(t, "Kafka on the Shore (reread)", got.Title)
}

func TestDeleteBook(t *testing.T) {
	store, idx := setupTestStore(t)

	_, err := store.UpsertBook(testBook("9780439000000", "Ephemeral", nil))
	require.NoError(t, err)

	require.NoError(t, store.DeleteBook("9780439000000"))
	assert.Equal(t, []string{"9780439000000"}, idx.removes)

	err = store.DeleteBook("9780439000000")
	assert.True(t, catalog.IsNotFound(err))
}

func TestBooksOnShelfReadingOrder(t *testing.T) {
	store, _ := setupTestStore(t)

	shelf := mustCreateShelf(t, store, "Library", "Main", 2, 3)
	_, err := store.UpsertBook(testBook("9780000000010", "Bottom Right", cellAt(shelf, 2, 1)))
	require.NoError(t, err)
	_, err = store.UpsertBook(testBook("9780000000011", "Top Left", cellAt(shelf, 0, 0)))
	require.NoError(t, err)
	_, err = store.UpsertBook(testBook("9780000000012", "Top Right", cellAt(shelf, 2, 0)))
	require.NoError(t, err)

	// A checked-out book is in someone's hands, not on the shelf.
	_, err = store.Checkout("9780000000012", "Morgan", time.Time{})
	require.NoError(t, err)

	books, err := store.BooksOnShelf("Library", "Main")
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, "Top Left", books[0].Title)
	assert.Equal(t, "Bottom Right", books[1].Title)

	_, err = store.BooksOnShelf("Library", "Missing")
	assert.True(t, catalog.IsNotFound(err))
}

func TestCheckoutAndCheckin(t *testing.T) {
	store, _ := setupTestStore(t)

	shelf := mustCreateShelf(t, store, "Library", "Main", 2, 2)
	_, err := store.UpsertBook(testBook("9780261102217", "The Two Towers", cellAt(shelf, 1, 0)))
	require.NoError(t, err)

	when := time.Date(2026, 8, 14, 12, 0, 0, 0, time.UTC)
	out, err := store.Checkout("9780261102217", "Sam", when)
	require.NoError(t, err)
	assert.True(t, out.IsCheckedOut())
	assert.Equal(t, "Sam", out.CheckedOutTo)
	require.NotNil(t, out.CheckedOutDate)
	assert.True(t, out.CheckedOutDate.Equal(when))
	// The home location survives a checkout.
	require.NotNil(t, out.HomeLocation)
	assert.Equal(t, "Library/Main/C1R0", out.HomeLocation.String())

	// Double checkout fails loudly and keeps the first borrower.
	_, err = store.Checkout("9780261102217", "Frodo", time.Time{})
	require.True(t, catalog.IsStateError(err))
	still, err := store.GetBook("9780261102217")
	require.NoError(t, err)
	assert.Equal(t, "Sam", still.CheckedOutTo)

	back, err := store.Checkin("9780261102217", nil)
	require.NoError(t, err)
	assert.False(t, back.IsCheckedOut())
	assert.Nil(t, back.CheckedOutDate)
	assert.Equal(t, "Library/Main/C1R0", back.HomeLocation.String())

	_, err = store.Checkin("9780261102217", nil)
	assert.True(t, catalog.IsStateError(err))
}

func TestCheckoutValidation(t *testing.T) {
	store, _ := setupTestStore(t)

	_, err := store.UpsertBook(testBook("9780060850524", "Brave New World", nil))
	require.NoError(t, err)

	_, err = store.Checkout("9780060850524", "   ", time.Time{})
	assert.True(t, catalog.IsValidation(err))

	_, err = store.Checkout("0000000000000", "Lenina", time.Time{})
	assert.True(t, catalog.IsNotFound(err))

	// Zero date defaults to now.
	before := time.Now().Add(-time.Minute)
	out, err := store.Checkout("9780060850524", "Lenina", time.Time{})
	require.NoError(t, err)
	require.NotNil(t, out.CheckedOutDate)
	assert.True(t, out.CheckedOutDate.After(before))
}

func TestCheckinWithRelocation(t *testing.T) {
	store, _ := setupTestStore(t)

	shelf := mustCreateShelf(t, store, "Library", "Main", 2, 2)
	_, err := store.UpsertBook(testBook("9781984801258", "Uncanny Valley", cellAt(shelf, 0, 0)))
	require.NoError(t, err)
	_, err = store.UpsertBook(testBook("9780374158460", "Annihilation", cellAt(shelf, 1, 1)))
	require.NoError(t, err)

	_, err = store.Checkout("9781984801258", "Robin", time.Time{})
	require.NoError(t, err)

	// Returning onto an occupied cell fails and leaves the book checked out.
	_, err = store.Checkin("9781984801258", cellAt(shelf, 1, 1))
	require.True(t, catalog.IsConflict(err))
	still, err := store.GetBook("9781984801258")
	require.NoError(t, err)
	assert.True(t, still.IsCheckedOut())
	assert.Equal(t, "Library/Main/C0R0", still.HomeLocation.String())

	// Returning to a free cell rehomes the book.
	back, err := store.Checkin("9781984801258", cellAt(shelf, 1, 0))
	require.NoError(t, err)
	assert.False(t, back.IsCheckedOut())
	assert.Equal(t, "Library/Main/C1R0", back.HomeLocation.String())
}

func TestConcurrentCheckoutExactlyOneWins(t *testing.T) {
	store, _ := setupTestStore(t)

	_, err := store.UpsertBook(testBook("9780812550702", "Ender's Game", nil))
	require.NoError(t, err)

	const workers = 8
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = store.Checkout("9780812550702", "Borrower", time.Time{})
		}(i)
	}
	wg.Wait()

	var won, lost int
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		case catalog.IsStateError(err):
			lost++
		default:
			t.Fatalf("unexpected checkout error: %v", err)
		}
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, workers-1, lost)
}

func TestListBooksAndRebuildIndex(t *testing.T) {
	store, idx := setupTestStore(t)

	_, err := store.UpsertBook(testBook("9780000000021", "Zeta", nil))
	require.NoError(t, err)
	_, err = store.UpsertBook(testBook("9780000000022", "Alpha", nil))
	require.NoError(t, err)

	books, err := store.ListBooks()
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, "Alpha", books[0].Title)
	assert.Equal(t, "Zeta", books[1].Title)

	count, err := store.RebuildIndex()
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, []int{2}, idx.rebuilds)
}
