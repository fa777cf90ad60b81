// Package services contains the inventory coordinator, the logic that keeps
// a book's available-copy count and its reservations' statuses consistent
// across two stores that are not written transactionally.
package services

import (
	"errors"
	"log"
	"time"

	"github.com/shelfwise/shelfwise/internal/entities"
	"github.com/shelfwise/shelfwise/internal/liberr"
)

// DefaultLoanPeriod is the due-date offset applied on approval when no
// other period is configured.
const DefaultLoanPeriod = 14 * 24 * time.Hour

// Coordinator enforces the cross-entity invariants between the catalog and
// the reservation ledger. Every operation re-fetches current state before
// validating preconditions; no client-held snapshot is trusted for the
// write decision.
//
// The two dependent writes inside Approve and Return are not transactional.
// When the second write fails and the failure is observed, the first write
// is compensated; a crash between the two leaves state at the last
// completed step and is reconciled by audit, not by automatic retry.
type Coordinator struct {
	catalog    CatalogStore
	ledger     ReservationLedger
	loanPeriod time.Duration
}

// NewCoordinator creates a coordinator over the two stores. A loanPeriod
// of zero falls back to DefaultLoanPeriod.
func NewCoordinator(catalog CatalogStore, ledger ReservationLedger, loanPeriod time.Duration) *Coordinator {
	if loanPeriod <= 0 {
		loanPeriod = DefaultLoanPeriod
	}
	return &Coordinator{
		catalog:    catalog,
		ledger:     ledger,
		loanPeriod: loanPeriod,
	}
}

// Reserve places a pending reservation for a book on behalf of a student.
// The copy is not consumed yet; availability is only decremented when a
// librarian approves the request.
func (c *Coordinator) Reserve(bookID, userID uint) (*entities.Reservation, error) {
	book, err := c.catalog.GetByID(bookID)
	if err != nil {
		return nil, err
	}
	if book.AvailableCopies == 0 {
		return nil, liberr.ErrUnavailable
	}

	return c.ledger.Create(bookID, userID)
}

// Approve moves a pending reservation to approved, stamps the due date and
// consumes one available copy. If the copy cannot be consumed after the
// status write (another approval raced it to zero), the status is rolled
// back to pending and the operation fails.
func (c *Coordinator) Approve(reservationID uint) (*entities.Reservation, error) {
	reservation, err := c.ledger.GetByID(reservationID)
	if err != nil {
		return nil, err
	}
	if reservation.Status != entities.ReservationStatusPending {
		return nil, liberr.Transitionf("reservation %d: cannot approve %s reservation", reservationID, reservation.Status)
	}

	book, err := c.catalog.GetByID(reservation.BookID)
	if err != nil {
		return nil, err
	}
	if book.AvailableCopies == 0 {
		return nil, liberr.ErrUnavailable
	}

	dueDate := time.Now().Add(c.loanPeriod)
	approved, err := c.ledger.SetStatus(reservationID, entities.ReservationStatusApproved, &dueDate)
	if err != nil {
		return nil, err
	}

	if err := c.catalog.DecrementAvailable(reservation.BookID); err != nil {
		if revertErr := c.ledger.RevertStatus(reservationID, entities.ReservationStatusPending); revertErr != nil {
			log.Printf("approve compensation failed for reservation %d: %v", reservationID, revertErr)
		}
		if errors.Is(err, liberr.ErrConflict) {
			return nil, liberr.ErrUnavailable
		}
		return nil, err
	}

	return approved, nil
}

// Reject moves a pending reservation to rejected. No inventory effect.
func (c *Coordinator) Reject(reservationID uint) (*entities.Reservation, error) {
	reservation, err := c.ledger.GetByID(reservationID)
	if err != nil {
		return nil, err
	}
	if reservation.Status != entities.ReservationStatusPending {
		return nil, liberr.Transitionf("reservation %d: cannot reject %s reservation", reservationID, reservation.Status)
	}
	return c.ledger.SetStatus(reservationID, entities.ReservationStatusRejected, nil)
}

// Cancel removes a pending reservation on behalf of its requester. No
// inventory effect; the request never held a copy.
func (c *Coordinator) Cancel(reservationID, callerID uint) error {
	reservation, err := c.ledger.GetByID(reservationID)
	if err != nil {
		return err
	}
	if reservation.UserID != callerID {
		return liberr.Conflictf("reservation %d does not belong to user %d", reservationID, callerID)
	}
	return c.ledger.Delete(reservationID)
}

// Return completes an approved reservation: the status moves to returned
// and one copy is credited back to the book. If the credit fails, the
// status is rolled back to approved and the failure is surfaced; the
// ledger must never show a returned copy the catalog has not regained.
func (c *Coordinator) Return(reservationID uint) (*entities.Reservation, error) {
	reservation, err := c.ledger.GetByID(reservationID)
	if err != nil {
		return nil, err
	}
	if reservation.Status != entities.ReservationStatusApproved {
		return nil, liberr.Transitionf("reservation %d: cannot return %s reservation", reservationID, reservation.Status)
	}

	returned, err := c.ledger.SetStatus(reservationID, entities.ReservationStatusReturned, nil)
	if err != nil {
		return nil, err
	}

	if err := c.catalog.IncrementAvailable(reservation.BookID); err != nil {
		if revertErr := c.ledger.RevertStatus(reservationID, entities.ReservationStatusApproved); revertErr != nil {
			log.Printf("return compensation failed for reservation %d: %v", reservationID, revertErr)
		}
		return nil, err
	}

	return returned, nil
}
