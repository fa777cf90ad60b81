// Package reservations provides database operations for the reservation
// ledger, including the status state machine.
//
// Legal transitions:
//
//	pending  -> approved | rejected
//	approved -> returned
//
// Cancellation deletes a pending record instead of transitioning it.
// The "borrowed" status is declared for wire compatibility but no
// transition produces it.
package reservations

import (
	"errors"
	"iter"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shelfwise/shelfwise/internal/entities"
	"github.com/shelfwise/shelfwise/internal/liberr"
)

// listBatchSize is how many rows All fetches per query.
const listBatchSize = 100

var allowedTransitions = map[entities.ReservationStatus][]entities.ReservationStatus{
	entities.ReservationStatusPending:  {entities.ReservationStatusApproved, entities.ReservationStatusRejected},
	entities.ReservationStatusApproved: {entities.ReservationStatusReturned},
}

func transitionAllowed(from, to entities.ReservationStatus) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Filter narrows List/All results. Zero values mean "no constraint".
type Filter struct {
	UserID uint
	BookID uint
	Status entities.ReservationStatus
}

// Repository handles all reservation ledger database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new reservations repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create records a new pending reservation. A user may hold at most one
// pending or approved reservation per book; duplicates fail with a
// conflict and leave the ledger unchanged.
func (r *Repository) Create(bookID, userID uint) (*entities.Reservation, error) {
	var count int64
	err := r.db.Model(&entities.Reservation{}).
		Where("book_id = ? AND user_id = ? AND status IN ?",
			bookID, userID, entities.ActiveStatuses()).
		Count(&count).Error
	if err != nil {
		return nil, liberr.Backendf("check duplicate reservation", err)
	}
	if count > 0 {
		return nil, liberr.Conflictf("user %d already has an active reservation for book %d", userID, bookID)
	}

	reservation := &entities.Reservation{
		Reference:  uuid.NewString(),
		BookID:     bookID,
		UserID:     userID,
		Status:     entities.ReservationStatusPending,
		ReservedAt: time.Now(),
	}
	if err := r.db.Create(reservation).Error; err != nil {
		return nil, liberr.Backendf("create reservation", err)
	}
	return reservation, nil
}

// GetByID retrieves a reservation by its ID.
func (r *Repository) GetByID(id uint) (*entities.Reservation, error) {
	var reservation entities.Reservation
	err := r.db.First(&reservation, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, liberr.NotFoundf("reservation %d", id)
		}
		return nil, liberr.Backendf("get reservation", err)
	}
	return &reservation, nil
}

// SetStatus moves a reservation along the state machine. dueDate is only
// written when non-nil (set on approval).
func (r *Repository) SetStatus(id uint, status entities.ReservationStatus, dueDate *time.Time) (*entities.Reservation, error) {
	reservation, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}

	if !transitionAllowed(reservation.Status, status) {
		return nil, liberr.Transitionf("reservation %d: %s -> %s", id, reservation.Status, status)
	}

	updates := map[string]any{"status": status}
	if dueDate != nil {
		updates["due_date"] = *dueDate
	}
	if err := r.db.Model(&entities.Reservation{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, liberr.Backendf("update reservation status", err)
	}

	reservation.Status = status
	if dueDate != nil {
		reservation.DueDate = dueDate
	}
	return reservation, nil
}

// RevertStatus writes a status without consulting the transition table.
// It exists solely for the coordinator's compensation paths (e.g. rolling
// a failed return back to approved) and must not be used elsewhere.
// Reverting to pending also clears the due date, since only approved
// reservations carry one.
func (r *Repository) RevertStatus(id uint, status entities.ReservationStatus) error {
	updates := map[string]any{"status": status}
	if status == entities.ReservationStatusPending {
		updates["due_date"] = nil
	}
	result := r.db.Model(&entities.Reservation{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return liberr.Backendf("revert reservation status", result.Error)
	}
	if result.RowsAffected == 0 {
		return liberr.NotFoundf("reservation %d", id)
	}
	return nil
}

// Delete removes a reservation record. Only pending reservations may be
// deleted; cancellation of anything else is an illegal transition.
func (r *Repository) Delete(id uint) error {
	reservation, err := r.GetByID(id)
	if err != nil {
		return err
	}
	if reservation.Status != entities.ReservationStatusPending {
		return liberr.Transitionf("reservation %d: cannot cancel %s reservation", id, reservation.Status)
	}
	if err := r.db.Delete(&entities.Reservation{}, id).Error; err != nil {
		return liberr.Backendf("delete reservation", err)
	}
	return nil
}

// List returns reservations matching the filter, most recently created
// first. The referenced Book is preloaded; reservations whose book has
// been deleted are filtered out rather than surfaced as orphans.
func (r *Repository) List(filter Filter) ([]entities.Reservation, error) {
	var reservations []entities.Reservation
	if err := r.applyFilter(filter).Preload("Book").Find(&reservations).Error; err != nil {
		return nil, liberr.Backendf("list reservations", err)
	}
	return dropOrphans(reservations), nil
}

// All returns a lazy, restartable sequence over reservations matching the
// filter, most recently created first. Each range over the sequence
// re-queries the store in batches, so the sequence observes writes made
// between iterations.
func (r *Repository) All(filter Filter) iter.Seq2[entities.Reservation, error] {
	return func(yield func(entities.Reservation, error) bool) {
		offset := 0
		for {
			var batch []entities.Reservation
			err := r.applyFilter(filter).
				Preload("Book").
				Limit(listBatchSize).
				Offset(offset).
				Find(&batch).Error
			if err != nil {
				yield(entities.Reservation{}, liberr.Backendf("list reservations", err))
				return
			}
			for _, reservation := range dropOrphans(batch) {
				if !yield(reservation, nil) {
					return
				}
			}
			if len(batch) < listBatchSize {
				return
			}
			offset += listBatchSize
		}
	}
}

// ListOverdue returns approved reservations whose due date passed before
// the cutoff and which have not yet been flagged by the overdue scan.
func (r *Repository) ListOverdue(cutoff time.Time) ([]entities.Reservation, error) {
	var reservations []entities.Reservation
	err := r.db.
		Where("status = ? AND due_date IS NOT NULL AND due_date < ? AND overdue_notified_at IS NULL",
			entities.ReservationStatusApproved, cutoff).
		Order("due_date ASC").
		Find(&reservations).Error
	if err != nil {
		return nil, liberr.Backendf("list overdue reservations", err)
	}
	return reservations, nil
}

// MarkOverdueNotified records that the overdue scan reported a reservation,
// so it is only reported once.
func (r *Repository) MarkOverdueNotified(id uint) error {
	result := r.db.Model(&entities.Reservation{}).Where("id = ?", id).Update("overdue_notified_at", time.Now())
	if result.Error != nil {
		return liberr.Backendf("mark reservation overdue", result.Error)
	}
	if result.RowsAffected == 0 {
		return liberr.NotFoundf("reservation %d", id)
	}
	return nil
}

func (r *Repository) applyFilter(filter Filter) *gorm.DB {
	query := r.db.Model(&entities.Reservation{}).Order("reserved_at DESC, id DESC")
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.BookID != 0 {
		query = query.Where("book_id = ?", filter.BookID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	return query
}

// dropOrphans filters out reservations whose book row no longer exists.
// Preload leaves the Book zero-valued when the join target is gone.
func dropOrphans(reservations []entities.Reservation) []entities.Reservation {
	kept := reservations[:0]
	for _, reservation := range reservations {
		if reservation.Book.ID == 0 {
			continue
		}
		kept = append(kept, reservation)
	}
	return kept
}
