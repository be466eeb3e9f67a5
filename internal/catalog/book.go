package catalog

import (
	"strings"
	"time"
)

// Book is a catalogued title, identified by its canonical ISBN (or a
// synthetic identifier when no real ISBN exists).
type Book struct {
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

	// HomeLocation is the shelf cell the book lives on when not lent out.
	HomeLocation *ShelfLocation

	// CheckedOutTo/CheckedOutDate are set together or not at all.
	CheckedOutTo   string
	CheckedOutDate *time.Time

	Notes string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsCheckedOut reports whether the book is currently lent out.
func (b *Book) IsCheckedOut() bool {
	return b.CheckedOutTo != ""
}

// CurrentLocation is the human-readable answer to "where is this book".
func (b *Book) CurrentLocation() string {
	switch {
	case b.IsCheckedOut():
		return "Checked out to " + b.CheckedOutTo
	case b.HomeLocation != nil:
		return b.HomeLocation.String()
	default:
		return "Location unknown"
	}
}

func (b *Book) String() string {
	authors := "Unknown Author"
	if len(b.Authors) > 0 {
		authors = strings.Join(b.Authors, ", ")
	}
	s := b.Title + " by " + authors
	if b.PublishedDate != "" {
		s += " (" + b.PublishedDate + ")"
	}
	return s
}
