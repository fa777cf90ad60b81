package catalog

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/shelfwise/shelfwise/internal/entities"
	"github.com/shelfwise/shelfwise/internal/liberr"
)

func setupTestDB(t *testing.T) (*gorm.DB, *Repository, func()) {
	dbPath := "./test_catalog_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&entities.Book{},
	)
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return db, repo, cleanup
}

func createTestBook(t *testing.T, repo *Repository, title string, total, available int) *entities.Book {
	book, err := repo.Add(&entities.Book{
		Title:           title,
		Author:          "Test Author",
		Category:        "Testing",
		TotalCopies:     total,
		AvailableCopies: available,
	})
	require.NoError(t, err)
	return book
}

func TestRepository_Add(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	book, err := repo.Add(&entities.Book{
		Title:           "The Go Programming Language",
		Author:          "Alan Donovan",
		TotalCopies:     3,
		AvailableCopies: 3,
	})

	require.NoError(t, err)
	assert.NotZero(t, book.ID)
	assert.Equal(t, 3, book.AvailableCopies)
}

func TestRepository_Add_Validation(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	// Zero total copies
	_, err := repo.Add(&entities.Book{Title: "Bad", TotalCopies: 0})
	assert.ErrorIs(t, err, liberr.ErrValidation)

	// Available above total
	_, err = repo.Add(&entities.Book{Title: "Bad", TotalCopies: 2, AvailableCopies: 3})
	assert.ErrorIs(t, err, liberr.ErrValidation)

	// Negative available
	_, err = repo.Add(&entities.Book{Title: "Bad", TotalCopies: 2, AvailableCopies: -1})
	assert.ErrorIs(t, err, liberr.ErrValidation)

	// Missing title
	_, err = repo.Add(&entities.Book{TotalCopies: 1, AvailableCopies: 1})
	assert.ErrorIs(t, err, liberr.ErrValidation)
}

func TestRepository_GetByID(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	book := createTestBook(t, repo, "Test Book", 2, 2)

	found, err := repo.GetByID(book.ID)
	require.NoError(t, err)
	assert.Equal(t, "Test Book", found.Title)
}

func TestRepository_GetByID_NotFound(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.GetByID(999)
	assert.ErrorIs(t, err, liberr.ErrNotFound)
}

func TestRepository_List_OrderedByTitle(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	createTestBook(t, repo, "Zebra Patterns", 1, 1)
	createTestBook(t, repo, "Algorithms", 1, 1)
	createTestBook(t, repo, "Middleware", 1, 1)

	books, err := repo.List()
	require.NoError(t, err)
	require.Len(t, books, 3)
	assert.Equal(t, "Algorithms", books[0].Title)
	assert.Equal(t, "Middleware", books[1].Title)
	assert.Equal(t, "Zebra Patterns", books[2].Title)
}

func TestRepository_Search(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.Add(&entities.Book{
		Title:           "Clean Code",
		Author:          "Robert C. Martin",
		Category:        "Software Engineering",
		TotalCopies:     1,
		AvailableCopies: 1,
	})
	require.NoError(t, err)
	_, err = repo.Add(&entities.Book{
		Title:           "Introduction to Algorithms",
		Author:          "Thomas H. Cormen",
		Category:        "Computer Science",
		TotalCopies:     1,
		AvailableCopies: 1,
	})
	require.NoError(t, err)

	// Case-insensitive title match
	books, err := repo.Search("clean")
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Clean Code", books[0].Title)

	// Author match
	books, err = repo.Search("cormen")
	require.NoError(t, err)
	assert.Len(t, books, 1)

	// Category match
	books, err = repo.Search("science")
	require.NoError(t, err)
	assert.Len(t, books, 1)

	// No match
	books, err = repo.Search("quantum")
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestRepository_Update_Partial(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	book := createTestBook(t, repo, "Old Title", 3, 3)

	newTitle := "New Title"
	updated, err := repo.Update(book.ID, UpdateParams{Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, "New Title", updated.Title)
	// Untouched fields keep their values
	assert.Equal(t, "Test Author", updated.Author)
	assert.Equal(t, 3, updated.TotalCopies)

	found, err := repo.GetByID(book.ID)
	require.NoError(t, err)
	assert.Equal(t, "New Title", found.Title)
}

func TestRepository_Update_InvariantRevalidated(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	book := createTestBook(t, repo, "Test Book", 3, 3)

	// Shrinking total below available must fail
	newTotal := 2
	_, err := repo.Update(book.ID, UpdateParams{TotalCopies: &newTotal})
	assert.ErrorIs(t, err, liberr.ErrValidation)

	// And the stored record is untouched
	found, err := repo.GetByID(book.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, found.TotalCopies)
}

func TestRepository_Update_NotFound(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	title := "Ghost"
	_, err := repo.Update(999, UpdateParams{Title: &title})
	assert.ErrorIs(t, err, liberr.ErrNotFound)
}

func TestRepository_Delete(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	book := createTestBook(t, repo, "Doomed", 1, 1)

	err := repo.Delete(book.ID)
	require.NoError(t, err)

	_, err = repo.GetByID(book.ID)
	assert.ErrorIs(t, err, liberr.ErrNotFound)
}

func TestRepository_Delete_NotFound(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	err := repo.Delete(999)
	assert.ErrorIs(t, err, liberr.ErrNotFound)
}

func TestRepository_DecrementAvailable(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	book := createTestBook(t, repo, "Test Book", 2, 2)

	require.NoError(t, repo.DecrementAvailable(book.ID))
	require.NoError(t, repo.DecrementAvailable(book.ID))

	found, err := repo.GetByID(book.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, found.AvailableCopies)

	// Cannot go below zero
	err = repo.DecrementAvailable(book.ID)
	assert.ErrorIs(t, err, liberr.ErrConflict)
}

func TestRepository_IncrementAvailable(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	book := createTestBook(t, repo, "Test Book", 2, 0)

	require.NoError(t, repo.IncrementAvailable(book.ID))
	require.NoError(t, repo.IncrementAvailable(book.ID))

	found, err := repo.GetByID(book.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, found.AvailableCopies)

	// Cannot go above total
	err = repo.IncrementAvailable(book.ID)
	assert.ErrorIs(t, err, liberr.ErrConflict)
}

func TestRepository_AdjustAvailable_NotFound(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	assert.ErrorIs(t, repo.IncrementAvailable(999), liberr.ErrNotFound)
	assert.ErrorIs(t, repo.DecrementAvailable(999), liberr.ErrNotFound)
}
