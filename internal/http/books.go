package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shelfwise/shelfwise/internal/database/catalog"
	"github.com/shelfwise/shelfwise/internal/entities"
)

// BooksController exposes the catalog over HTTP. Listing and search are
// open to every authenticated user; mutations are gated to librarians by
// the router.
type BooksController struct {
	catalog *catalog.Repository
}

func NewBooksController(repo *catalog.Repository) *BooksController {
	return &BooksController{catalog: repo}
}

func (controller *BooksController) ListBooks(c *gin.Context) {
	books, err := controller.catalog.List()
	if err != nil {
		respondLibErr(c, err, "list books")
		return
	}
	c.JSON(http.StatusOK, gin.H{"books": books, "count": len(books)})
}

func (controller *BooksController) SearchBooks(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		respondBadRequest(c, "q query parameter is required")
		return
	}

	books, err := controller.catalog.Search(query)
	if err != nil {
		respondLibErr(c, err, "search books")
		return
	}
	c.JSON(http.StatusOK, gin.H{"books": books, "count": len(books)})
}

func (controller *BooksController) GetBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := controller.catalog.GetByID(id)
	if err != nil {
		respondLibErr(c, err, "get book")
		return
	}
	c.JSON(http.StatusOK, book)
}

type createBookRequest struct {
	Title           string `json:"title" binding:"required"`
	Author          string `json:"author"`
	ISBN            string `json:"isbn"`
	Category        string `json:"category"`
	Description     string `json:"description"`
	PublicationYear int    `json:"publication_year"`
	TotalCopies     int    `json:"total_copies" binding:"required"`
	AvailableCopies int    `json:"available_copies"`
}

func (controller *BooksController) CreateBook(c *gin.Context) {
	var req createBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	book, err := controller.catalog.Add(&entities.Book{
		Title:           req.Title,
		Author:          req.Author,
		ISBN:            req.ISBN,
		Category:        req.Category,
		Description:     req.Description,
		PublicationYear: req.PublicationYear,
		TotalCopies:     req.TotalCopies,
		AvailableCopies: req.AvailableCopies,
	})
	if err != nil {
		respondLibErr(c, err, "create book")
		return
	}
	respondCreated(c, book)
}

type updateBookRequest struct {
	Title           *string `json:"title"`
	Author          *string `json:"author"`
	ISBN            *string `json:"isbn"`
	Category        *string `json:"category"`
	Description     *string `json:"description"`
	PublicationYear *int    `json:"publication_year"`
	TotalCopies     *int    `json:"total_copies"`
	AvailableCopies *int    `json:"available_copies"`
}

func (controller *BooksController) UpdateBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req updateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	book, err := controller.catalog.Update(id, catalog.UpdateParams{
		Title:           req.Title,
		Author:          req.Author,
		ISBN:            req.ISBN,
		Category:        req.Category,
		Description:     req.Description,
		PublicationYear: req.PublicationYear,
		TotalCopies:     req.TotalCopies,
		AvailableCopies: req.AvailableCopies,
	})
	if err != nil {
		respondLibErr(c, err, "update book")
		return
	}
	c.JSON(http.StatusOK, book)
}

func (controller *BooksController) DeleteBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := controller.catalog.Delete(id); err != nil {
		respondLibErr(c, err, "delete book")
		return
	}
	respondSuccess(c, "book deleted")
}
