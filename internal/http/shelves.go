package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bookwyrms/hoard/internal/library"
)

type ShelvesController struct {
	service *library.Service
}

func NewShelvesController(service *library.Service) *ShelvesController {
	return &ShelvesController{
		service: service,
	}
}

// CreateShelfRequest registers a new grid shelf.
type CreateShelfRequest struct {
	Location    string `json:"location"`
	Name        string `json:"name"`
	Rows        int    `json:"rows"`
	Columns     int    `json:"columns"`
	Description string `json:"description"`
}

func (controller *ShelvesController) CreateShelf(c *gin.Context) {
	var req CreateShelfRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	shelf, err := controller.service.CreateShelf(req.Location, req.Name, req.Rows, req.Columns, req.Description)
	if err != nil {
		respondDomainError(c, err, "create shelf")
		return
	}
	respondCreated(c, shelfView(shelf))
}

// UpdateShelfRequest resizes or relabels an existing shelf.
type UpdateShelfRequest struct {
	Rows        int    `json:"rows"`
	Columns     int    `json:"columns"`
	Description string `json:"description"`
}

func (controller *ShelvesController) UpdateShelf(c *gin.Context) {
	var req UpdateShelfRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	shelf, err := controller.service.UpdateShelf(c.Param("location"), c.Param("name"), req.Rows, req.Columns, req.Description)
	if err != nil {
		respondDomainError(c, err, "update shelf")
		return
	}
	c.IndentedJSON(http.StatusOK, shelfView(shelf))
}

func (controller *ShelvesController) GetShelf(c *gin.Context) {
	shelf, err := controller.service.GetShelf(c.Param("location"), c.Param("name"))
	if err != nil {
		respondDomainError(c, err, "get shelf")
		return
	}
	c.IndentedJSON(http.StatusOK, shelfView(shelf))
}

func (controller *ShelvesController) ListShelves(c *gin.Context) {
	shelves, err := controller.service.ListShelves()
	if err != nil {
		respondInternalError(c, err, "list shelves")
		return
	}

	views := make([]ShelfView, len(shelves))
	for i := range shelves {
		views[i] = shelfView(&shelves[i])
	}
	c.IndentedJSON(http.StatusOK, gin.H{"shelves": views, "count": len(views)})
}

func (controller *ShelvesController) DeleteShelf(c *gin.Context) {
	if err := controller.service.DeleteShelf(c.Param("location"), c.Param("name")); err != nil {
		respondDomainError(c, err, "delete shelf")
		return
	}
	respondSuccess(c, "shelf removed")
}

// BooksOnShelf lists the books sitting on a shelf in reading order.
func (controller *ShelvesController) BooksOnShelf(c *gin.Context) {
	books, err := controller.service.BooksOnShelf(c.Param("location"), c.Param("name"))
	if err != nil {
		respondDomainError(c, err, "books on shelf")
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"books": bookViews(books), "count": len(books)})
}
