package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBookshelf_RejectsBadDimensions(t *testing.T) {
	_, err := NewBookshelf("Library", "Main", 0, 4, "")
	assert.True(t, IsValidation(err))

	_, err = NewBookshelf("Library", "Main", 3, -1, "")
	assert.True(t, IsValidation(err))

	_, err = NewBookshelf("", "Main", 3, 4, "")
	assert.True(t, IsValidation(err))
}

func TestLocationAt_AllCellsWithinBounds(t *testing.T) {
	shelf, err := NewBookshelf("Library", "Large bookshelf", 3, 5, "")
	require.NoError(t, err)

	for col := 0; col < shelf.Columns; col++ {
		for row := 0; row < shelf.Rows; row++ {
			loc, err := shelf.LocationAt(col, row)
			require.NoError(t, err)

			// Round-trip through the string form
			parsed, err := ParseLocation(loc.String())
			require.NoError(t, err)
			assert.Equal(t, loc, parsed)
		}
	}
}

func TestLocationAt_OutOfBounds(t *testing.T) {
	shelf, err := NewBookshelf("Library", "Main", 2, 2, "")
	require.NoError(t, err)

	cases := []struct{ col, row int }{
		{-1, 0},
		{0, -1},
		{2, 0},
		{0, 2},
		{99, 99},
	}
	for _, c := range cases {
		_, err := shelf.LocationAt(c.col, c.row)
		assert.True(t, IsValidation(err), "expected validation error for C%dR%d", c.col, c.row)
	}
}

func TestFormatLocation(t *testing.T) {
	loc := ShelfLocation{Location: "Office", BookshelfName: "Small shelf", Column: 2, Row: 0}
	assert.Equal(t, "Office/Small shelf/C2R0", loc.String())
}

func TestParseLocation_ToleratesWhitespace(t *testing.T) {
	parsed, err := ParseLocation("  Office/Small shelf/C2R0  ")
	require.NoError(t, err)
	assert.Equal(t, ShelfLocation{
		Location:      "Office",
		BookshelfName: "Small shelf",
		Column:        2,
		Row:           0,
	}, parsed)
}

func TestParseLocation_RejectsMalformed(t *testing.T) {
	bad := []string{
		"",
		"   ",
		"Office/Small shelf",
		"Office/Small shelf/C2R0/extra",
		"Office/Small shelf/2R0",
		"Office/Small shelf/C2",
		"Office/Small shelf/CxRy",
		"Office/Small shelf/R0C2",
		"Office//C2R0",
		"/Shelf/C2R0",
		"Office/Small shelf/C-1R0",
	}
	for _, s := range bad {
		_, err := ParseLocation(s)
		assert.Truef(t, IsValidation(err), "expected validation error for %q, got %v", s, err)
	}
}

func TestParseLocation_LargeCoordinates(t *testing.T) {
	loc := ShelfLocation{Location: "Attic", BookshelfName: "Wall", Column: 12, Row: 40}
	parsed, err := ParseLocation(loc.String())
	require.NoError(t, err)
	assert.Equal(t, loc, parsed)
}

func TestBookshelfString(t *testing.T) {
	shelf, err := NewBookshelf("Library", "Main", 3, 5, "paperbacks")
	require.NoError(t, err)
	assert.Equal(t, "Main in Library (5×3) - paperbacks", shelf.String())

	shelf.Description = ""
	assert.Equal(t, "Main in Library (5×3)", shelf.String())
}
