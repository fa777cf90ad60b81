// Package catalog provides database operations for the book catalog.
//
// The repository owns the copy-count invariant: for every book,
// 0 <= available_copies <= total_copies. Relative adjustments go through
// IncrementAvailable/DecrementAvailable, which issue a single guarded
// UPDATE so concurrent callers cannot double-count.
package catalog

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/shelfwise/shelfwise/internal/entities"
	"github.com/shelfwise/shelfwise/internal/liberr"
)

// Repository handles all book catalog database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new catalog repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// UpdateParams carries the optional fields for a partial book update.
// Nil pointers leave the stored value untouched.
type UpdateParams struct {
	Title           *string
	Author          *string
	ISBN            *string
	Category        *string
	Description     *string
	PublicationYear *int
	TotalCopies     *int
	AvailableCopies *int
}

// Add validates and stores a new book, assigning its identifier.
func (r *Repository) Add(book *entities.Book) (*entities.Book, error) {
	if book.TotalCopies < 1 {
		return nil, liberr.Validationf("total_copies must be at least 1, got %d", book.TotalCopies)
	}
	if book.AvailableCopies < 0 || book.AvailableCopies > book.TotalCopies {
		return nil, liberr.Validationf("available_copies %d out of range [0, %d]", book.AvailableCopies, book.TotalCopies)
	}
	if book.Title == "" {
		return nil, liberr.Validationf("title is required")
	}

	book.ID = 0
	if err := r.db.Create(book).Error; err != nil {
		return nil, liberr.Backendf("create book", err)
	}
	return book, nil
}

// GetByID retrieves a book by its ID.
func (r *Repository) GetByID(id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.First(&book, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, liberr.NotFoundf("book %d", id)
		}
		return nil, liberr.Backendf("get book", err)
	}
	return &book, nil
}

// List retrieves all books ordered by title.
func (r *Repository) List() ([]entities.Book, error) {
	var books []entities.Book
	if err := r.db.Order("title ASC").Find(&books).Error; err != nil {
		return nil, liberr.Backendf("list books", err)
	}
	return books, nil
}

// Search does a case-insensitive substring match over title, author and
// category, the same filter the student catalog view applies.
func (r *Repository) Search(query string) ([]entities.Book, error) {
	var books []entities.Book
	pattern := "%" + query + "%"
	err := r.db.
		Where("LOWER(title) LIKE LOWER(?) OR LOWER(author) LIKE LOWER(?) OR LOWER(category) LIKE LOWER(?)",
			pattern, pattern, pattern).
		Order("title ASC").
		Find(&books).Error
	if err != nil {
		return nil, liberr.Backendf("search books", err)
	}
	return books, nil
}

// Update merges only the provided fields into the stored record and
// re-validates the copy-count invariant afterwards.
func (r *Repository) Update(id uint, params UpdateParams) (*entities.Book, error) {
	book, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if params.Title != nil {
		book.Title = *params.Title
		updates["title"] = *params.Title
	}
	if params.Author != nil {
		book.Author = *params.Author
		updates["author"] = *params.Author
	}
	if params.ISBN != nil {
		book.ISBN = *params.ISBN
		updates["isbn"] = *params.ISBN
	}
	if params.Category != nil {
		book.Category = *params.Category
		updates["category"] = *params.Category
	}
	if params.Description != nil {
		book.Description = *params.Description
		updates["description"] = *params.Description
	}
	if params.PublicationYear != nil {
		book.PublicationYear = *params.PublicationYear
		updates["publication_year"] = *params.PublicationYear
	}
	if params.TotalCopies != nil {
		book.TotalCopies = *params.TotalCopies
		updates["total_copies"] = *params.TotalCopies
	}
	if params.AvailableCopies != nil {
		book.AvailableCopies = *params.AvailableCopies
		updates["available_copies"] = *params.AvailableCopies
	}

	if book.TotalCopies < 1 {
		return nil, liberr.Validationf("total_copies must be at least 1, got %d", book.TotalCopies)
	}
	if book.AvailableCopies < 0 || book.AvailableCopies > book.TotalCopies {
		return nil, liberr.Validationf("available_copies %d out of range [0, %d]", book.AvailableCopies, book.TotalCopies)
	}

	if len(updates) == 0 {
		return book, nil
	}

	if err := r.db.Model(&entities.Book{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, liberr.Backendf("update book", err)
	}
	return book, nil
}

// Delete removes a book. Existing reservations are not cascaded; ledger
// readers filter out reservations whose book row is gone.
func (r *Repository) Delete(id uint) error {
	result := r.db.Delete(&entities.Book{}, id)
	if result.Error != nil {
		return liberr.Backendf("delete book", result.Error)
	}
	if result.RowsAffected == 0 {
		return liberr.NotFoundf("book %d", id)
	}
	return nil
}

// IncrementAvailable atomically credits one copy back to the book. The
// adjustment happens inside the store so two concurrent returns cannot
// read the same stale count; incrementing past total_copies fails with
// a conflict.
func (r *Repository) IncrementAvailable(id uint) error {
	return r.adjustAvailable(id, "available_copies + 1", "available_copies < total_copies")
}

// DecrementAvailable atomically consumes one available copy; decrementing
// below zero fails with a conflict.
func (r *Repository) DecrementAvailable(id uint) error {
	return r.adjustAvailable(id, "available_copies - 1", "available_copies > 0")
}

func (r *Repository) adjustAvailable(id uint, expr, guard string) error {
	result := r.db.Model(&entities.Book{}).
		Where(fmt.Sprintf("id = ? AND %s", guard), id).
		UpdateColumn("available_copies", gorm.Expr(expr))
	if result.Error != nil {
		return liberr.Backendf("adjust available copies", result.Error)
	}
	if result.RowsAffected == 0 {
		// Either the row is gone or the guard clamped the adjustment.
		var count int64
		if err := r.db.Model(&entities.Book{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return liberr.Backendf("adjust available copies", err)
		}
		if count == 0 {
			return liberr.NotFoundf("book %d", id)
		}
		return liberr.Conflictf("adjustment would leave book %d copy count out of range", id)
	}
	return nil
}
