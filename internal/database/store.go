package database

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/bookwyrms/hoard/internal/catalog"
)

// IndexUpdater is the derived-index hook the Store invokes on every
// committed mutation. The catalog row and its index projection change as
// one unit: the updater runs while the store still holds its write lock,
// immediately after the transaction commits, so no reader can observe the
// index lagging the catalog.
type IndexUpdater interface {
	Upsert(book *catalog.Book)
	Remove(isbn string)
	Rebuild(books []catalog.Book)
}

// Store is the invariant-preserving catalog store for shelves and books.
//
// All mutations serialize on an internal lock and re-check their
// preconditions (occupancy, checkout state, referential integrity) inside
// the transaction, against committed state, never against a stale read.
type Store struct {
	db    *gorm.DB
	index IndexUpdater
	mu    sync.Mutex
}

// NewStore wires a Store to its database handle and index updater.
func NewStore(db *gorm.DB, index IndexUpdater) *Store {
	return &Store{db: db, index: index}
}

// --- shelves ---

// CreateShelf persists a new bookshelf. The (location, name) pair must be
// unused.
func (s *Store) CreateShelf(shelf *catalog.Bookshelf) (*catalog.Bookshelf, error) {
	if shelf.Rows < 1 || shelf.Columns < 1 {
		return nil, catalog.Validationf("bookshelf dimensions must be positive, got %d rows × %d columns", shelf.Rows, shelf.Columns)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing shelfRow
		err := tx.Where("location = ? AND name = ?", shelf.Location, shelf.Name).First(&existing).Error
		if err == nil {
			return &catalog.ConflictError{
				Msg: fmt.Sprintf("bookshelf %q already exists in %q", shelf.Name, shelf.Location),
			}
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Create(shelfToRow(shelf)).Error
	})
	if err != nil {
		return nil, err
	}
	return shelf, nil
}

// UpdateShelf changes a shelf's dimensions or description. Growing is
// always allowed; shrinking is rejected while any homed book would fall
// outside the new bounds.
func (s *Store) UpdateShelf(location, name string, rows, columns int, description string) (*catalog.Bookshelf, error) {
	if rows < 1 || columns < 1 {
		return nil, catalog.Validationf("bookshelf dimensions must be positive, got %d rows × %d columns", rows, columns)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var updated *catalog.Bookshelf
	err := s.db.Transaction(func(tx *gorm.DB) error {
		row, err := getShelfRow(tx, location, name)
		if err != nil {
			return err
		}

		var stranded int64
		err = tx.Model(&bookRow{}).
			Where("home_shelf_id = ? AND (home_column >= ? OR home_row >= ?)", row.ID, columns, rows).
			Count(&stranded).Error
		if err != nil {
			return err
		}
		if stranded > 0 {
			return &catalog.ConflictError{
				Msg:       fmt.Sprintf("cannot shrink bookshelf %s/%s: %d books would fall outside the new bounds", location, name, stranded),
				BookCount: int(stranded),
			}
		}

		row.Rows = rows
		row.Columns = columns
		row.Description = description
		if err := tx.Save(row).Error; err != nil {
			return err
		}
		updated = rowToShelf(row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteShelf removes a bookshelf. Deletion is rejected while any book is
// homed on it; the error carries the count.
func (s *Store) DeleteShelf(location, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Transaction(func(tx *gorm.DB) error {
		row, err := getShelfRow(tx, location, name)
		if err != nil {
			return err
		}

		var homed int64
		if err := tx.Model(&bookRow{}).Where("home_shelf_id = ?", row.ID).Count(&homed).Error; err != nil {
			return err
		}
		if homed > 0 {
			return &catalog.ConflictError{
				Msg:       fmt.Sprintf("cannot remove bookshelf %s/%s: it has %d books assigned", location, name, homed),
				BookCount: int(homed),
			}
		}
		return tx.Delete(row).Error
	})
}

// GetShelf fetches a bookshelf by its composite key.
func (s *Store) GetShelf(location, name string) (*catalog.Bookshelf, error) {
	row, err := getShelfRow(s.db, location, name)
	if err != nil {
		return nil, err
	}
	return rowToShelf(row), nil
}

// ListShelves returns all bookshelves ordered by location, then name.
func (s *Store) ListShelves() ([]catalog.Bookshelf, error) {
	var rows []shelfRow
	if err := s.db.Order("location, name").Find(&rows).Error; err != nil {
		return nil, err
	}
	shelves := make([]catalog.Bookshelf, len(rows))
	for i := range rows {
		shelves[i] = *rowToShelf(&rows[i])
	}
	return shelves, nil
}

// --- books ---

// UpsertBook inserts or fully replaces a book record. The home location, if
// set, is re-validated against the shelf's committed bounds and the cell
// occupancy invariant; a conflict reports the occupying ISBN.
func (s *Store) UpsertBook(book *catalog.Book) (*catalog.Book, error) {
	if book.ISBN == "" {
		return nil, catalog.Validationf("book ISBN must not be empty")
	}
	if book.Title == "" {
		return nil, catalog.Validationf("book title must not be empty")
	}
	if book.IsCheckedOut() && book.CheckedOutDate == nil {
		return nil, catalog.Validationf("checked_out_date must be set when the book is checked out")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var saved *catalog.Book
	err := s.db.Transaction(func(tx *gorm.DB) error {
		homeShelfID, err := resolveHomeCell(tx, book.HomeLocation, book.ISBN)
		if err != nil {
			return err
		}

		row := bookToRow(book, homeShelfID)

		var existing bookRow
		err = tx.Where("isbn = ?", book.ISBN).First(&existing).Error
		switch {
		case err == nil:
			row.CreatedAt = existing.CreatedAt
			if err := tx.Save(row).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(row).Error; err != nil {
				return err
			}
		default:
			return err
		}

		saved, err = getBook(tx, book.ISBN)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.index.Upsert(saved)
	return saved, nil
}

// GetBook fetches a book by canonical ISBN.
func (s *Store) GetBook(isbn string) (*catalog.Book, error) {
	return getBook(s.db, isbn)
}

// DeleteBook removes a book record.
func (s *Store) DeleteBook(isbn string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("isbn = ?", isbn).Delete(&bookRow{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &catalog.NotFoundError{Resource: "book", Key: isbn}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.index.Remove(isbn)
	return nil
}

// ListBooks returns every book, ordered by title then ISBN, for full scans
// (exports, status listings, index rebuilds).
func (s *Store) ListBooks() ([]catalog.Book, error) {
	var rows []bookRow
	if err := s.db.Preload("HomeShelf").Order("title, isbn").Find(&rows).Error; err != nil {
		return nil, err
	}
	books := make([]catalog.Book, len(rows))
	for i := range rows {
		books[i] = *rowToBook(&rows[i])
	}
	return books, nil
}

// BooksOnShelf returns the books currently sitting on a shelf, in reading
// order (column within row). Checked-out books are not on any shelf.
func (s *Store) BooksOnShelf(location, name string) ([]catalog.Book, error) {
	shelf, err := getShelfRow(s.db, location, name)
	if err != nil {
		return nil, err
	}

	var rows []bookRow
	err = s.db.Preload("HomeShelf").
		Where("home_shelf_id = ? AND checked_out_to IS NULL", shelf.ID).
		Order("home_row, home_column").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	books := make([]catalog.Book, len(rows))
	for i := range rows {
		books[i] = *rowToBook(&rows[i])
	}
	return books, nil
}

// --- checkout state machine ---

// Checkout transitions a book from Available to CheckedOut. A zero date
// means "now"; callers may backdate for batch corrections. Checking out an
// already-checked-out book fails loudly rather than overwriting the
// borrower.
func (s *Store) Checkout(isbn, to string, date time.Time) (*catalog.Book, error) {
	to = strings.TrimSpace(to)
	if to == "" {
		return nil, catalog.Validationf("borrower name must not be empty")
	}
	if date.IsZero() {
		date = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var checked *catalog.Book
	err := s.db.Transaction(func(tx *gorm.DB) error {
		row, err := getBookRow(tx, isbn)
		if err != nil {
			return err
		}
		if row.CheckedOutTo != nil {
			return &catalog.StateError{
				Msg: fmt.Sprintf("book %s is already checked out to %s", isbn, *row.CheckedOutTo),
			}
		}

		row.CheckedOutTo = &to
		row.CheckedOutDate = &date
		if err := tx.Save(row).Error; err != nil {
			return err
		}

		checked, err = getBook(tx, isbn)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.index.Upsert(checked)
	return checked, nil
}

// Checkin transitions a book from CheckedOut back to Available. When
// newLocation is non-nil it replaces the home location, validated like any
// placement (bounds and occupancy); a rejected location leaves the book
// checked out. A nil newLocation keeps the existing home unchanged.
func (s *Store) Checkin(isbn string, newLocation *catalog.ShelfLocation) (*catalog.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var returned *catalog.Book
	err := s.db.Transaction(func(tx *gorm.DB) error {
		row, err := getBookRow(tx, isbn)
		if err != nil {
			return err
		}
		if row.CheckedOutTo == nil {
			return &catalog.StateError{
				Msg: fmt.Sprintf("book %s is not checked out", isbn),
			}
		}

		if newLocation != nil {
			homeShelfID, err := resolveHomeCell(tx, newLocation, isbn)
			if err != nil {
				return err
			}
			row.HomeShelfID = homeShelfID
			col, r := newLocation.Column, newLocation.Row
			row.HomeColumn = &col
			row.HomeRow = &r
		}

		row.CheckedOutTo = nil
		row.CheckedOutDate = nil
		if err := tx.Save(row).Error; err != nil {
			return err
		}

		returned, err = getBook(tx, isbn)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.index.Upsert(returned)
	return returned, nil
}

// --- index recovery ---

// RebuildIndex reconstructs the search index from the books relation. It
// holds the write lock so no mutation can interleave with the rebuild.
func (s *Store) RebuildIndex() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	books, err := s.ListBooks()
	if err != nil {
		return 0, err
	}
	s.index.Rebuild(books)
	return len(books), nil
}

// --- transaction helpers ---

func getShelfRow(tx *gorm.DB, location, name string) (*shelfRow, error) {
	var row shelfRow
	err := tx.Where("location = ? AND name = ?", location, name).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &catalog.NotFoundError{Resource: "bookshelf", Key: location + "/" + name}
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func getBookRow(tx *gorm.DB, isbn string) (*bookRow, error) {
	var row bookRow
	err := tx.Where("isbn = ?", isbn).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &catalog.NotFoundError{Resource: "book", Key: isbn}
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func getBook(tx *gorm.DB, isbn string) (*catalog.Book, error) {
	var row bookRow
	err := tx.Preload("HomeShelf").Where("isbn = ?", isbn).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &catalog.NotFoundError{Resource: "book", Key: isbn}
	}
	if err != nil {
		return nil, err
	}
	return rowToBook(&row), nil
}

// resolveHomeCell validates a home location against the committed shelf
// state and the occupancy invariant, returning the shelf's key. A nil
// location resolves to no placement. The excluded ISBN makes re-saving a
// book to its own cell idempotent.
func resolveHomeCell(tx *gorm.DB, loc *catalog.ShelfLocation, excludeISBN string) (*uint, error) {
	if loc == nil {
		return nil, nil
	}

	var row shelfRow
	err := tx.Where("location = ? AND name = ?", loc.Location, loc.BookshelfName).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, catalog.Validationf("bookshelf %q not found in location %q", loc.BookshelfName, loc.Location)
	}
	if err != nil {
		return nil, err
	}

	shelf := rowToShelf(&row)
	if !shelf.Contains(*loc) {
		return nil, catalog.Validationf("position C%dR%d is out of bounds for %s/%s (%d columns × %d rows)",
			loc.Column, loc.Row, shelf.Location, shelf.Name, shelf.Columns, shelf.Rows)
	}

	var occupant bookRow
	err = tx.Where("home_shelf_id = ? AND home_column = ? AND home_row = ? AND isbn <> ?",
		row.ID, loc.Column, loc.Row, excludeISBN).First(&occupant).Error
	if err == nil {
		return nil, &catalog.ConflictError{
			Msg:        fmt.Sprintf("cell %s is already occupied by %s", loc, occupant.ISBN),
			OccupiedBy: occupant.ISBN,
		}
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return &row.ID, nil
}
