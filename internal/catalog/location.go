// Package catalog defines the domain model for the library: books,
// bookshelves, grid locations, ISBN handling, and the typed errors every
// layer above reports. It carries no persistence knowledge; the storage
// boundary maps these types to rows.
package catalog

import (
	"fmt"
	"strconv"
	"strings"
)

// Bookshelf is a physical shelf organized as a columns×rows grid.
// The (Location, Name) pair is its identity.
type Bookshelf struct {
	Location    string // e.g. "Library"
	Name        string // e.g. "Large bookshelf"
	Rows        int
	Columns     int
	Description string
}

// NewBookshelf validates dimensions and identity fields.
func NewBookshelf(location, name string, rows, columns int, description string) (*Bookshelf, error) {
	location = strings.TrimSpace(location)
	name = strings.TrimSpace(name)
	if location == "" || name == "" {
		return nil, Validationf("bookshelf location and name must not be empty")
	}
	if rows < 1 || columns < 1 {
		return nil, Validationf("bookshelf dimensions must be positive, got %d rows × %d columns", rows, columns)
	}
	return &Bookshelf{
		Location:    location,
		Name:        name,
		Rows:        rows,
		Columns:     columns,
		Description: description,
	}, nil
}

// LocationAt returns the ShelfLocation for a cell on this shelf, rejecting
// out-of-bounds coordinates. Coordinates are 0-indexed, columns
// left-to-right, rows top-to-bottom.
func (s *Bookshelf) LocationAt(column, row int) (ShelfLocation, error) {
	if column < 0 || column >= s.Columns {
		return ShelfLocation{}, Validationf("column %d out of bounds for %s/%s (0-%d)", column, s.Location, s.Name, s.Columns-1)
	}
	if row < 0 || row >= s.Rows {
		return ShelfLocation{}, Validationf("row %d out of bounds for %s/%s (0-%d)", row, s.Location, s.Name, s.Rows-1)
	}
	return ShelfLocation{
		Location:      s.Location,
		BookshelfName: s.Name,
		Column:        column,
		Row:           row,
	}, nil
}

// Contains reports whether the location refers to a cell on this shelf.
func (s *Bookshelf) Contains(loc ShelfLocation) bool {
	return loc.Location == s.Location && loc.BookshelfName == s.Name &&
		loc.Column >= 0 && loc.Column < s.Columns &&
		loc.Row >= 0 && loc.Row < s.Rows
}

func (s *Bookshelf) String() string {
	size := fmt.Sprintf("%d×%d", s.Columns, s.Rows)
	if s.Description != "" {
		return fmt.Sprintf("%s in %s (%s) - %s", s.Name, s.Location, size, s.Description)
	}
	return fmt.Sprintf("%s in %s (%s)", s.Name, s.Location, size)
}

// ShelfLocation is a single cell on a bookshelf. It is a value, not an
// entity: validity depends on the referenced shelf existing and the
// coordinate being within its bounds.
type ShelfLocation struct {
	Location      string
	BookshelfName string
	Column        int
	Row           int
}

// String renders the stable external form "{location}/{name}/C{column}R{row}".
// This exact format is persisted and displayed; ParseLocation round-trips it.
func (l ShelfLocation) String() string {
	return fmt.Sprintf("%s/%s/C%dR%d", l.Location, l.BookshelfName, l.Column, l.Row)
}

// ParseLocation parses the string form produced by ShelfLocation.String.
// Surrounding whitespace is tolerated; malformed segments are rejected with
// a descriptive ValidationError. Bounds are not checked here: callers
// validate against the referenced shelf.
func ParseLocation(s string) (ShelfLocation, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return ShelfLocation{}, Validationf("location string is empty")
	}

	parts := strings.Split(trimmed, "/")
	if len(parts) != 3 {
		return ShelfLocation{}, Validationf("location %q must have 3 segments separated by '/', got %d", trimmed, len(parts))
	}

	location := strings.TrimSpace(parts[0])
	name := strings.TrimSpace(parts[1])
	cell := strings.TrimSpace(parts[2])
	if location == "" || name == "" {
		return ShelfLocation{}, Validationf("location %q has an empty segment", trimmed)
	}

	column, row, err := parseCell(cell)
	if err != nil {
		return ShelfLocation{}, Validationf("location %q: %v", trimmed, err)
	}

	return ShelfLocation{
		Location:      location,
		BookshelfName: name,
		Column:        column,
		Row:           row,
	}, nil
}

// parseCell parses a "C{column}R{row}" segment.
func parseCell(cell string) (column, row int, err error) {
	if len(cell) < 4 || cell[0] != 'C' {
		return 0, 0, fmt.Errorf("cell segment %q must look like C{column}R{row}", cell)
	}
	rIdx := strings.IndexByte(cell[1:], 'R')
	if rIdx < 1 {
		return 0, 0, fmt.Errorf("cell segment %q must look like C{column}R{row}", cell)
	}
	rIdx++ // offset for the leading 'C'

	column, err = strconv.Atoi(cell[1:rIdx])
	if err != nil {
		return 0, 0, fmt.Errorf("cell segment %q has a non-numeric column", cell)
	}
	row, err = strconv.Atoi(cell[rIdx+1:])
	if err != nil {
		return 0, 0, fmt.Errorf("cell segment %q has a non-numeric row", cell)
	}
	if column < 0 || row < 0 {
		return 0, 0, fmt.Errorf("cell segment %q has a negative coordinate", cell)
	}
	return column, row, nil
}
