package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/shelfwise/shelfwise/internal/database/catalog"
	"github.com/shelfwise/shelfwise/internal/entities"
)

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func setupBooksTest(t *testing.T) (*catalog.Repository, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbPath := "./test_books_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.Book{}))

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}
	return catalog.NewRepository(db), cleanup
}

func booksRouter(repo *catalog.Repository) *gin.Engine {
	controller := NewBooksController(repo)

	router := gin.New()
	router.GET("/api/books", controller.ListBooks)
	router.GET("/api/books/search", controller.SearchBooks)
	router.GET("/api/books/:id", controller.GetBook)
	router.POST("/api/books", controller.CreateBook)
	router.PATCH("/api/books/:id", controller.UpdateBook)
	router.DELETE("/api/books/:id", controller.DeleteBook)
	return router
}

func addTestBook(t *testing.T, repo *catalog.Repository, title string) *entities.Book {
	book, err := repo.Add(&entities.Book{
		Title:           title,
		Author:          "Test Author",
		TotalCopies:     2,
		AvailableCopies: 2,
	})
	require.NoError(t, err)
	return book
}

func TestBooksController_ListBooks(t *testing.T) {
	t.Run("returns empty list when no books", func(t *testing.T) {
		repo, cleanup := setupBooksTest(t)
		defer cleanup()

		router := booksRouter(repo)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/books", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		require.NoError(t, err)

		assert.Equal(t, float64(0), response["count"])
		assert.Empty(t, response["books"])
	})

	t.Run("returns books with count", func(t *testing.T) {
		repo, cleanup := setupBooksTest(t)
		defer cleanup()

		addTestBook(t, repo, "Book 1")
		addTestBook(t, repo, "Book 2")

		router := booksRouter(repo)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/books", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		require.NoError(t, err)

		assert.Equal(t, float64(2), response["count"])
		books := response["books"].([]interface{})
		assert.Len(t, books, 2)
	})
}

func TestBooksController_SearchBooks(t *testing.T) {
	t.Run("returns 400 when q is missing", func(t *testing.T) {
		repo, cleanup := setupBooksTest(t)
		defer cleanup()

		router := booksRouter(repo)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/books/search", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "q query parameter is required")
	})

	t.Run("matches by substring", func(t *testing.T) {
		repo, cleanup := setupBooksTest(t)
		defer cleanup()

		addTestBook(t, repo, "Clean Code")
		addTestBook(t, repo, "Design Patterns")

		router := booksRouter(repo)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/books/search?q=clean", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		require.NoError(t, err)
		assert.Equal(t, float64(1), response["count"])
	})
}

func TestBooksController_GetBook(t *testing.T) {
	t.Run("returns the book", func(t *testing.T) {
		repo, cleanup := setupBooksTest(t)
		defer cleanup()

		book := addTestBook(t, repo, "Test Book")
		router := booksRouter(repo)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/books/"+itoa(book.ID), nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Test Book")
	})

	t.Run("returns 404 for unknown book", func(t *testing.T) {
		repo, cleanup := setupBooksTest(t)
		defer cleanup()

		router := booksRouter(repo)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/books/999", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("returns 400 for malformed id", func(t *testing.T) {
		repo, cleanup := setupBooksTest(t)
		defer cleanup()

		router := booksRouter(repo)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/books/abc", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestBooksController_CreateBook(t *testing.T) {
	t.Run("creates a book", func(t *testing.T) {
		repo, cleanup := setupBooksTest(t)
		defer cleanup()

		router := booksRouter(repo)

		body := `{"title":"New Book","author":"New Author","total_copies":3,"available_copies":3}`
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/books", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		books, err := repo.List()
		require.NoError(t, err)
		require.Len(t, books, 1)
		assert.Equal(t, "New Book", books[0].Title)
	})

	t.Run("returns 400 when required fields are missing", func(t *testing.T) {
		repo, cleanup := setupBooksTest(t)
		defer cleanup()

		router := booksRouter(repo)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/books", strings.NewReader(`{"author":"No Title"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("returns 400 when available exceeds total", func(t *testing.T) {
		repo, cleanup := setupBooksTest(t)
		defer cleanup()

		router := booksRouter(repo)

		body := `{"title":"Bad Book","total_copies":1,"available_copies":5}`
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/books", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestBooksController_UpdateBook(t *testing.T) {
	t.Run("updates only provided fields", func(t *testing.T) {
		repo, cleanup := setupBooksTest(t)
		defer cleanup()

		book := addTestBook(t, repo, "Old Title")
		router := booksRouter(repo)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PATCH", "/api/books/"+itoa(book.ID), strings.NewReader(`{"title":"New Title"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		updated, err := repo.GetByID(book.ID)
		require.NoError(t, err)
		assert.Equal(t, "New Title", updated.Title)
		assert.Equal(t, "Test Author", updated.Author)
	})

	t.Run("returns 404 for unknown book", func(t *testing.T) {
		repo, cleanup := setupBooksTest(t)
		defer cleanup()

		router := booksRouter(repo)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PATCH", "/api/books/999", strings.NewReader(`{"title":"Ghost"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestBooksController_DeleteBook(t *testing.T) {
	t.Run("deletes the book", func(t *testing.T) {
		repo, cleanup := setupBooksTest(t)
		defer cleanup()

		book := addTestBook(t, repo, "Doomed")
		router := booksRouter(repo)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("DELETE", "/api/books/"+itoa(book.ID), nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		_, err := repo.GetByID(book.ID)
		assert.Error(t, err)
	})

	t.Run("returns 404 for unknown book", func(t *testing.T) {
		repo, cleanup := setupBooksTest(t)
		defer cleanup()

		router := booksRouter(repo)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("DELETE", "/api/books/999", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
