package services

import (
	"time"

	"github.com/shelfwise/shelfwise/internal/entities"
)

// CatalogStore is the slice of the catalog repository the coordinator needs.
type CatalogStore interface {
	GetByID(id uint) (*entities.Book, error)
	IncrementAvailable(id uint) error
	DecrementAvailable(id uint) error
}

// ReservationLedger is the slice of the reservations repository the
// coordinator needs.
type ReservationLedger interface {
	Create(bookID, userID uint) (*entities.Reservation, error)
	GetByID(id uint) (*entities.Reservation, error)
	SetStatus(id uint, status entities.ReservationStatus, dueDate *time.Time) (*entities.Reservation, error)
	RevertStatus(id uint, status entities.ReservationStatus) error
	Delete(id uint) error
}
