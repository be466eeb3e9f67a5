package http

import (
	"time"

	"github.com/bookwyrms/hoard/internal/catalog"
)

// BookView is the wire shape of a catalog book. The home location is the
// stable formatted cell string, or empty when the book has no home.
type BookView struct {
	ISBN           string     `json:"isbn"`
	Title          string     `json:"title"`
	Authors        []string   `json:"authors,omitempty"`
	Publisher      string     `json:"publisher,omitempty"`
	PublishedDate  string     `json:"published_date,omitempty"`
	Description    string     `json:"description,omitempty"`
	Genres         []string   `json:"genres,omitempty"`
	PageCount      int        `json:"page_count,omitempty"`
	CoverURL       string     `json:"cover_url,omitempty"`
	Language       string     `json:"language,omitempty"`
	HomeLocation   string     `json:"home_location,omitempty"`
	CheckedOutTo   string     `json:"checked_out_to,omitempty"`
	CheckedOutDate *time.Time `json:"checked_out_date,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// ShelfView is the wire shape of a bookshelf.
type ShelfView struct {
	Location    string `json:"location"`
	Name        string `json:"name"`
	Rows        int    `json:"rows"`
	Columns     int    `json:"columns"`
	Description string `json:"description,omitempty"`
}

func bookView(book *catalog.Book) BookView {
	view := BookView{
		ISBN:           book.ISBN,
		Title:          book.Title,
		Authors:        book.Authors,
		Publisher:      book.Publisher,
		PublishedDate:  book.PublishedDate,
		Description:    book.Description,
		Genres:         book.Genres,
		PageCount:      book.PageCount,
		CoverURL:       book.CoverURL,
		Language:       book.Language,
		CheckedOutTo:   book.CheckedOutTo,
		CheckedOutDate: book.CheckedOutDate,
		Notes:          book.Notes,
		CreatedAt:      book.CreatedAt,
		UpdatedAt:      book.UpdatedAt,
	}
	if book.HomeLocation != nil {
		view.HomeLocation = book.HomeLocation.String()
	}
	return view
}

func bookViews(books []catalog.Book) []BookView {
	views := make([]BookView, len(books))
	for i := range books {
		views[i] = bookView(&books[i])
	}
	return views
}

func shelfView(shelf *catalog.Bookshelf) ShelfView {
	return ShelfView{
		Location:    shelf.Location,
		Name:        shelf.Name,
		Rows:        shelf.Rows,
		Columns:     shelf.Columns,
		Description: shelf.Description,
	}
}
