package entities

import (
	"time"

	"gorm.io/gorm"
)

type ReservationStatus string

const (
	ReservationStatusPending  ReservationStatus = "pending"
	ReservationStatusApproved ReservationStatus = "approved"
	ReservationStatusRejected ReservationStatus = "rejected"
	// ReservationStatusBorrowed is part of the declared status domain for
	// wire compatibility with older clients. No transition currently
	// produces it.
	ReservationStatusBorrowed ReservationStatus = "borrowed"
	ReservationStatusReturned ReservationStatus = "returned"
)

// Active reports whether the reservation still holds a claim on a copy
// (pending request or checked-out copy).
func (s ReservationStatus) Active() bool {
	return s == ReservationStatusPending || s == ReservationStatusApproved
}

// ActiveStatuses lists the statuses for which Active reports true, in a
// form usable inside an IN clause.
func ActiveStatuses() []ReservationStatus {
	all := []ReservationStatus{
		ReservationStatusPending,
		ReservationStatusApproved,
		ReservationStatusRejected,
		ReservationStatusBorrowed,
		ReservationStatusReturned,
	}
	active := make([]ReservationStatus, 0, len(all))
	for _, s := range all {
		if s.Active() {
			active = append(active, s)
		}
	}
	return active
}

type Book struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Title           string         `gorm:"index;size:512" json:"title"`
	Author          string         `gorm:"index;size:256" json:"author"`
	ISBN            string         `gorm:"index;size:20" json:"isbn,omitempty"`
	Category        string         `gorm:"index;size:100" json:"category,omitempty"`
	Description     string         `gorm:"type:text" json:"description,omitempty"`
	PublicationYear int            `json:"publication_year,omitempty"`
	TotalCopies     int            `json:"total_copies"`
	AvailableCopies int            `json:"available_copies"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

type Reservation struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	Reference  string            `gorm:"uniqueIndex;size:36" json:"reference"`
	BookID     uint              `gorm:"index" json:"book_id"`
	UserID     uint              `gorm:"index" json:"user_id"`
	Status     ReservationStatus `gorm:"index;size:20;default:'pending'" json:"status"`
	ReservedAt time.Time         `json:"reserved_at"`
	DueDate    *time.Time        `json:"due_date,omitempty"`

	// OverdueNotifiedAt is set once by the overdue scan so a reservation is
	// only reported late a single time.
	OverdueNotifiedAt *time.Time `json:"overdue_notified_at,omitempty"`

	Book Book `gorm:"foreignKey:BookID" json:"book,omitempty"`
	User User `gorm:"foreignKey:UserID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Book) TableName() string {
	return "books"
}

func (Reservation) TableName() string {
	return "reservations"
}
