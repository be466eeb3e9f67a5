package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bookwyrms/hoard/internal/library"
)

const defaultSearchLimit = 20

type BooksController struct {
	service *library.Service
}

func NewBooksController(service *library.Service) *BooksController {
	return &BooksController{
		service: service,
	}
}

// AddBookRequest is the payload for cataloging a new book. ISBN is
// optional; without it the book gets a synthetic identifier and the title
// must be supplied.
type AddBookRequest struct {
	ISBN          string   `json:"isbn"`
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	Publisher     string   `json:"publisher"`
	PublishedDate string   `json:"published_date"`
	Description   string   `json:"description"`
	Genres        []string `json:"genres"`
	PageCount     int      `json:"page_count"`
	CoverURL      string   `json:"cover_url"`
	Language      string   `json:"language"`
	Notes         string   `json:"notes"`
	Location      string   `json:"location"`
}

func (controller *BooksController) AddBook(c *gin.Context) {
	var req AddBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	book, err := controller.service.AddBook(c.Request.Context(), library.AddBookInput{
		ISBN:          req.ISBN,
		Title:         req.Title,
		Authors:       req.Authors,
		Publisher:     req.Publisher,
		PublishedDate: req.PublishedDate,
		Description:   req.Description,
		Genres:        req.Genres,
		PageCount:     req.PageCount,
		CoverURL:      req.CoverURL,
		Language:      req.Language,
		Notes:         req.Notes,
		Location:      req.Location,
	})
	if err != nil {
		respondDomainError(c, err, "add book")
		return
	}

	respondCreated(c, bookView(book))
}

func (controller *BooksController) GetBook(c *gin.Context) {
	book, err := controller.service.GetBook(c.Param("isbn"))
	if err != nil {
		respondDomainError(c, err, "get book")
		return
	}
	c.IndentedJSON(http.StatusOK, bookView(book))
}

func (controller *BooksController) DeleteBook(c *gin.Context) {
	if err := controller.service.RemoveBook(c.Param("isbn")); err != nil {
		respondDomainError(c, err, "delete book")
		return
	}
	respondSuccess(c, "book removed")
}

// SearchResultView pairs a book with its relevance score.
type SearchResultView struct {
	Book  BookView `json:"book"`
	Score float64  `json:"score"`
}

// SearchBooks answers `GET /api/books?query=...&limit=...`. Without a query
// it lists the whole catalog in stable order.
func (controller *BooksController) SearchBooks(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		books, err := controller.service.ListBooks()
		if err != nil {
			respondInternalError(c, err, "list books")
			return
		}
		c.IndentedJSON(http.StatusOK, gin.H{"books": bookViews(books), "count": len(books)})
		return
	}

	limit := defaultSearchLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			respondBadRequest(c, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	results, err := controller.service.SearchBooks(query, limit)
	if err != nil {
		respondDomainError(c, err, "search books")
		return
	}

	views := make([]SearchResultView, len(results))
	for i, res := range results {
		views[i] = SearchResultView{Book: bookView(&res.Book), Score: res.Score}
	}
	c.IndentedJSON(http.StatusOK, gin.H{"results": views, "count": len(views)})
}

// CheckoutRequest names the borrower. Date is optional RFC 3339 for
// backdated corrections.
type CheckoutRequest struct {
	To   string `json:"to"`
	Date string `json:"date"`
}

func (controller *BooksController) CheckoutBook(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	var date time.Time
	if req.Date != "" {
		parsed, err := time.Parse(time.RFC3339, req.Date)
		if err != nil {
			respondBadRequest(c, "date must be RFC 3339")
			return
		}
		date = parsed
	}

	book, err := controller.service.CheckoutBook(c.Param("isbn"), req.To, date)
	if err != nil {
		respondDomainError(c, err, "checkout book")
		return
	}
	c.IndentedJSON(http.StatusOK, bookView(book))
}

// CheckinRequest optionally rehomes the book on return.
type CheckinRequest struct {
	Location string `json:"location"`
}

func (controller *BooksController) CheckinBook(c *gin.Context) {
	var req CheckinRequest
	// An empty body means "return to the existing home".
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "invalid request body: "+err.Error())
			return
		}
	}

	book, err := controller.service.CheckinBook(c.Param("isbn"), req.Location)
	if err != nil {
		respondDomainError(c, err, "checkin book")
		return
	}
	c.IndentedJSON(http.StatusOK, bookView(book))
}

func (controller *BooksController) LocateBook(c *gin.Context) {
	location, err := controller.service.LocateBook(c.Param("isbn"))
	if err != nil {
		respondDomainError(c, err, "locate book")
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"isbn": c.Param("isbn"), "location": location})
}

// RelocateRequest moves a book's home cell; an empty location clears it.
type RelocateRequest struct {
	Location string `json:"location"`
}

func (controller *BooksController) RelocateBook(c *gin.Context) {
	var req RelocateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	book, err := controller.service.RelocateBook(c.Param("isbn"), req.Location)
	if err != nil {
		respondDomainError(c, err, "relocate book")
		return
	}
	c.IndentedJSON(http.StatusOK, bookView(book))
}

// Reindex rebuilds the search index from the books relation.
func (controller *BooksController) Reindex(c *gin.Context) {
	count, err := controller.service.RebuildSearchIndex()
	if err != nil {
		respondInternalError(c, err, "rebuild index")
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"indexed": count})
}
