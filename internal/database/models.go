package database

import (
	"strings"
	"time"

	"github.com/bookwyrms/hoard/internal/catalog"
)

// listDelimiter joins multi-valued text columns (authors, genres).
const listDelimiter = "||"

// shelfRow is the storage shape of a catalog.Bookshelf.
type shelfRow struct {
	ID          uint   `gorm:"primaryKey"`
	Location    string `gorm:"uniqueIndex:idx_bookshelves_location_name;size:255;not null"`
	Name        string `gorm:"uniqueIndex:idx_bookshelves_location_name;size:255;not null"`
	Rows        int    `gorm:"not null"`
	Columns     int    `gorm:"not null"`
	Description string
}

func (shelfRow) TableName() string {
	return "bookshelves"
}

// bookRow is the storage shape of a catalog.Book. The home cell is split
// into a shelf foreign key plus coordinates; the composite unique index is
// a schema-level backstop for the occupancy invariant the Store enforces at
// write time (SQLite treats NULL cells as distinct, so unplaced books never
// collide).
type bookRow struct {
	ISBN          string `gorm:"primaryKey;size:40"`
	Title         string `gorm:"index;size:512;not null"`
	Authors       string `gorm:"type:text"`
	Publisher     string `gorm:"size:256"`
	PublishedDate string `gorm:"size:64"`
	Description   string `gorm:"type:text"`
	Genres        string `gorm:"type:text"`
	PageCount     int
	CoverURL      string `gorm:"size:2048"`
	Language      string `gorm:"size:20"`

	HomeShelfID *uint     `gorm:"uniqueIndex:idx_books_home_cell"`
	HomeColumn  *int      `gorm:"uniqueIndex:idx_books_home_cell"`
	HomeRow     *int      `gorm:"uniqueIndex:idx_books_home_cell"`
	HomeShelf   *shelfRow `gorm:"foreignKey:HomeShelfID"`

	CheckedOutTo   *string `gorm:"size:255"`
	CheckedOutDate *time.Time

	Notes string `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (bookRow) TableName() string {
	return "books"
}

// --- struct ⇄ row mapping ---
//
// The domain structs carry no storage tags; everything persistence-shaped
// lives on this side of the boundary.

func shelfToRow(shelf *catalog.Bookshelf) *shelfRow {
	return &shelfRow{
		Location:    shelf.Location,
		Name:        shelf.Name,
		Rows:        shelf.Rows,
		Columns:     shelf.Columns,
		Description: shelf.Description,
	}
}

func rowToShelf(row *shelfRow) *catalog.Bookshelf {
	return &catalog.Bookshelf{
		Location:    row.Location,
		Name:        row.Name,
		Rows:        row.Rows,
		Columns:     row.Columns,
		Description: row.Description,
	}
}

// bookToRow maps a domain book onto its row. homeShelfID is the resolved
// shelf key when the book has a home location, nil otherwise; resolution
// happens inside the store transaction.
func bookToRow(book *catalog.Book, homeShelfID *uint) *bookRow {
	row := &bookRow{
		ISBN:          book.ISBN,
		Title:         book.Title,
		Authors:       joinList(book.Authors),
		Publisher:     book.Publisher,
		PublishedDate: book.PublishedDate,
		Description:   book.Description,
		Genres:        joinList(book.Genres),
		PageCount:     book.PageCount,
		CoverURL:      book.CoverURL,
		Language:      book.Language,
		Notes:         book.Notes,
	}
	if book.HomeLocation != nil && homeShelfID != nil {
		row.HomeShelfID = homeShelfID
		col, r := book.HomeLocation.Column, book.HomeLocation.Row
		row.HomeColumn = &col
		row.HomeRow = &r
	}
	if book.CheckedOutTo != "" {
		to := book.CheckedOutTo
		row.CheckedOutTo = &to
		row.CheckedOutDate = book.CheckedOutDate
	}
	return row
}

// rowToBook maps a row back to the domain. The HomeShelf association must
// be loaded when the book has a home cell.
func rowToBook(row *bookRow) *catalog.Book {
	book := &catalog.Book{
		ISBN:          row.ISBN,
		Title:         row.Title,
		Authors:       splitList(row.Authors),
		Publisher:     row.Publisher,
		PublishedDate: row.PublishedDate,
		Description:   row.Description,
		Genres:        splitList(row.Genres),
		PageCount:     row.PageCount,
		CoverURL:      row.CoverURL,
		Language:      row.Language,
		Notes:         row.Notes,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
	if row.HomeShelf != nil && row.HomeColumn != nil && row.HomeRow != nil {
		book.HomeLocation = &catalog.ShelfLocation{
			Location:      row.HomeShelf.Location,
			BookshelfName: row.HomeShelf.Name,
			Column:        *row.HomeColumn,
			Row:           *row.HomeRow,
		}
	}
	if row.CheckedOutTo != nil {
		book.CheckedOutTo = *row.CheckedOutTo
		book.CheckedOutDate = row.CheckedOutDate
	}
	return book
}

func joinList(items []string) string {
	return strings.Join(items, listDelimiter)
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, listDelimiter)
}
