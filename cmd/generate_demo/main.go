// Command generate_demo creates a demo catalog with sample shelves and
// public domain books.
// Usage: go run cmd/generate_demo/main.go [-db path/to/demo.db]
package main

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/bookwyrms/hoard/internal/catalog"
	"github.com/bookwyrms/hoard/internal/database"
	"github.com/bookwyrms/hoard/internal/search"
)

const defaultDemoDatabasePath = "./demo/demo.db"

func main() {
	dbPath := flag.String("db", defaultDemoDatabasePath, "path to the demo database file")
	flag.Parse()

	log.Printf("Generating demo catalog at %s...", *dbPath)

	// Delete existing demo database to start fresh
	if err := os.Remove(*dbPath); err != nil && !os.IsNotExist(err) {
		log.Fatalf("Failed to remove existing demo database: %v", err)
	}

	db, err := database.Open(*dbPath)
	if err != nil {
		log.Fatalf("Failed to create database: %v", err)
	}
	defer database.Close(db)

	store := database.NewStore(db, search.NewIndex())

	shelves := demoShelves()
	for i := range shelves {
		if _, err := store.CreateShelf(&shelves[i]); err != nil {
			log.Fatalf("Failed to create shelf %s/%s: %v", shelves[i].Location, shelves[i].Name, err)
		}
		log.Printf("Created shelf: %s", &shelves[i])
	}

	for _, book := range demoBooks() {
		if _, err := store.UpsertBook(&book); err != nil {
			log.Printf("Failed to save book %s: %v", book.Title, err)
			continue
		}
		log.Printf("Saved: %s (%s)", book.Title, book.ISBN)
	}

	// Lend one out so the demo shows the checkout state.
	if _, err := store.Checkout("9780141439600", "Ada", time.Now().AddDate(0, 0, -12)); err != nil {
		log.Printf("Failed to check out demo book: %v", err)
	}

	log.Println("Demo catalog generated successfully!")
}

func demoShelves() []catalog.Bookshelf {
	return []catalog.Bookshelf{
		{Location: "Living Room", Name: "Tall case", Rows: 5, Columns: 6, Description: "Fiction and classics"},
		{Location: "Study", Name: "Reference", Rows: 3, Columns: 4, Description: "Technical books"},
	}
}

func demoBooks() []catalog.Book {
	at := func(location, name string, column, row int) *catalog.ShelfLocation {
		return &catalog.ShelfLocation{Location: location, BookshelfName: name, Column: column, Row: row}
	}

	return []catalog.Book{
		{
			ISBN:          "9780140449334",
			Title:         "Meditations",
			Authors:       []string{"Marcus Aurelius"},
			Publisher:     "Penguin Classics",
			PublishedDate: "2006-04-25",
			Description:   "Private reflections of the Roman emperor on Stoic philosophy.",
			Genres:        []string{"Philosophy", "Classics"},
			PageCount:     304,
			Language:      "en",
			HomeLocation:  at("Living Room", "Tall case", 0, 0),
		},
		{
			ISBN:          "9780141439600",
			Title:         "A Tale of Two Cities",
			Authors:       []string{"Charles Dickens"},
			Publisher:     "Penguin Classics",
			PublishedDate: "2003-05-27",
			Description:   "A novel of London and Paris during the French Revolution.",
			Genres:        []string{"Fiction", "Classics"},
			PageCount:     489,
			Language:      "en",
			HomeLocation:  at("Living Room", "Tall case", 1, 0),
		},
		{
			ISBN:          "9780141439587",
			Title:         "Frankenstein",
			Authors:       []string{"Mary Shelley"},
			Publisher:     "Penguin Classics",
			PublishedDate: "2003-01-28",
			Description:   "Victor Frankenstein's experiment creates a being he cannot control.",
			Genres:        []string{"Fiction", "Gothic"},
			PageCount:     352,
			Language:      "en",
			HomeLocation:  at("Living Room", "Tall case", 2, 0),
		},
		{
			ISBN:          "9780262046305",
			Title:         "Introduction to Algorithms",
			Authors:       []string{"Thomas H. Cormen", "Charles E. Leiserson", "Ronald L. Rivest", "Clifford Stein"},
			Publisher:     "MIT Press",
			PublishedDate: "2022-04-05",
			Description:   "The comprehensive algorithms reference.",
			Genres:        []string{"Computer Science"},
			PageCount:     1312,
			Language:      "en",
			HomeLocation:  at("Study", "Reference", 0, 0),
		},
		{
			// A family notebook without an ISBN gets a synthetic one.
			ISBN:    catalog.NewSyntheticISBN(),
			Title:   "Handwritten Garden Journal",
			Authors: []string{"Unknown"},
			Notes:   "Found at the flea market, pressed flowers inside",
		},
	}
}
