// Package search maintains the derived full-text index over the catalog.
//
// The index is a projection of the books relation: it is rebuilt from
// scratch on startup and kept in lockstep by the catalog store, which
// applies every index delta inside the same mutation boundary as the
// database write. It is never a second source of truth.
package search

import (
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/bookwyrms/hoard/internal/catalog"
)

// Field weights: a hit in the title counts for more than one in the
// description. Term frequency is multiplied by the weight of the field the
// term occurred in.
const (
	titleWeight       = 3
	authorsWeight     = 2
	descriptionWeight = 1
)

// Result is a ranked match. Score is relative within a single query; the
// exact-ISBN short circuit reports math.Inf(1).
type Result struct {
	ISBN  string
	Score float64
}

type document struct {
	terms map[string]int // term -> weighted frequency
	title string
}

// Index is an in-memory inverted index over title, authors, and
// description, keyed by canonical ISBN. Safe for concurrent use.
type Index struct {
	mu       sync.RWMutex
	docs     map[string]*document
	postings map[string]map[string]struct{} // term -> set of ISBNs
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{
		docs:     make(map[string]*document),
		postings: make(map[string]map[string]struct{}),
	}
}

// Upsert replaces the index entry for a book.
func (idx *Index) Upsert(book *catalog.Book) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.removeLocked(book.ISBN)

	doc := &document{
		terms: make(map[string]int),
		title: book.Title,
	}
	addTerms(doc.terms, book.Title, titleWeight)
	addTerms(doc.terms, strings.Join(book.Authors, " "), authorsWeight)
	addTerms(doc.terms, book.Description, descriptionWeight)

	idx.docs[book.ISBN] = doc
	for term := range doc.terms {
		set, ok := idx.postings[term]
		if !ok {
			set = make(map[string]struct{})
			idx.postings[term] = set
		}
		set[book.ISBN] = struct{}{}
	}
}

// Remove drops a book from the index. Removing an unknown ISBN is a no-op.
func (idx *Index) Remove(isbn string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.removeLocked(isbn)
}

func (idx *Index) removeLocked(isbn string) {
	doc, ok := idx.docs[isbn]
	if !ok {
		return
	}
	for term := range doc.terms {
		set := idx.postings[term]
		delete(set, isbn)
		if len(set) == 0 {
			delete(idx.postings, term)
		}
	}
	delete(idx.docs, isbn)
}

// Rebuild reconstructs the whole index from the books relation. This is the
// recovery path: the index must always be derivable from the catalog alone.
func (idx *Index) Rebuild(books []catalog.Book) {
	fresh := NewIndex()
	for i := range books {
		fresh.Upsert(&books[i])
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.docs = fresh.docs
	idx.postings = fresh.postings
}

// Len reports the number of indexed books.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.docs)
}

// Search answers a free-text query with up to limit ranked results.
//
// A query that canonicalizes to an ISBN is treated as an exact lookup
// first: if that book is indexed it is returned alone with maximum score.
// Otherwise each whitespace token matches as a prefix against the indexed
// fields and results are ranked by term frequency weighted with inverse
// document frequency, ties broken by title then ISBN.
func (idx *Index) Search(query string, limit int) ([]Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, catalog.ErrEmptyQuery
	}
	if limit <= 0 {
		limit = 10
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if isbn, ok := catalog.CanonicalISBN(query); ok {
		if _, found := idx.docs[isbn]; found {
			return []Result{{ISBN: isbn, Score: math.Inf(1)}}, nil
		}
		// Not in the catalog: fall through to prefix search so that a
		// digit string typed as a query still matches loose text.
	}

	tokens := tokenize(query)
	if len(tokens) == 0 {
		return nil, catalog.ErrEmptyQuery
	}

	scores := make(map[string]float64)
	total := float64(len(idx.docs))
	for _, token := range tokens {
		// Every indexed term with this token as a prefix contributes.
		for term, set := range idx.postings {
			if !strings.HasPrefix(term, token) {
				continue
			}
			idf := math.Log(1 + total/float64(1+len(set)))
			for isbn := range set {
				tf := float64(idx.docs[isbn].terms[term])
				scores[isbn] += (1 + math.Log(tf)) * idf
			}
		}
	}

	results := make([]Result, 0, len(scores))
	for isbn, score := range scores {
		results = append(results, Result{ISBN: isbn, Score: score})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		ti, tj := idx.docs[results[i].ISBN].title, idx.docs[results[j].ISBN].title
		if ti != tj {
			return ti < tj
		}
		return results[i].ISBN < results[j].ISBN
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// tokenize lowercases and splits on anything that is not a letter or digit.
// Single-character fragments are kept: barcode and partial-title entry
// produce legitimately short prefixes.
func tokenize(text string) []string {
	text = strings.ToLower(text)
	return strings.FieldsFunc(text, func(r rune) bool {
		return !isAlphanumeric(r)
	})
}

func isAlphanumeric(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r > 127
}

// addTerms folds the tokens of text into terms with the given field weight.
func addTerms(terms map[string]int, text string, weight int) {
	for _, token := range tokenize(text) {
		terms[token] += weight
	}
}
