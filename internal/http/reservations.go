package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shelfwise/shelfwise/internal/auth"
	"github.com/shelfwise/shelfwise/internal/database/reservations"
	"github.com/shelfwise/shelfwise/internal/entities"
	"github.com/shelfwise/shelfwise/internal/services"
)

// ReservationsController drives the reservation lifecycle over HTTP. All
// state changes go through the inventory coordinator; the ledger is only
// read directly for listings.
type ReservationsController struct {
	coordinator *services.Coordinator
	ledger      *reservations.Repository
}

func NewReservationsController(coordinator *services.Coordinator, ledger *reservations.Repository) *ReservationsController {
	return &ReservationsController{
		coordinator: coordinator,
		ledger:      ledger,
	}
}

// ListReservations returns the caller's reservations, or all reservations
// for librarians. Accepts an optional status filter.
func (controller *ReservationsController) ListReservations(c *gin.Context) {
	filter := reservations.Filter{
		Status: entities.ReservationStatus(c.Query("status")),
	}
	if auth.GetUserRole(c) != entities.UserRoleLibrarian {
		filter.UserID = GetUserID(c)
	}

	list, err := controller.ledger.List(filter)
	if err != nil {
		respondLibErr(c, err, "list reservations")
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservations": list, "count": len(list)})
}

// ReserveBook places a pending reservation for the authenticated user.
func (controller *ReservationsController) ReserveBook(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	reservation, err := controller.coordinator.Reserve(bookID, GetUserID(c))
	if err != nil {
		respondLibErr(c, err, "reserve book")
		return
	}
	respondCreated(c, reservation)
}

// ApproveReservation approves a pending reservation and consumes a copy.
func (controller *ReservationsController) ApproveReservation(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	reservation, err := controller.coordinator.Approve(id)
	if err != nil {
		respondLibErr(c, err, "approve reservation")
		return
	}
	c.JSON(http.StatusOK, reservation)
}

// RejectReservation rejects a pending reservation.
func (controller *ReservationsController) RejectReservation(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	reservation, err := controller.coordinator.Reject(id)
	if err != nil {
		respondLibErr(c, err, "reject reservation")
		return
	}
	c.JSON(http.StatusOK, reservation)
}

// ReturnBook completes an approved reservation and credits the copy back.
func (controller *ReservationsController) ReturnBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	reservation, err := controller.coordinator.Return(id)
	if err != nil {
		respondLibErr(c, err, "return book")
		return
	}
	c.JSON(http.StatusOK, reservation)
}

// CancelReservation lets a requester withdraw their own pending reservation.
func (controller *ReservationsController) CancelReservation(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := controller.coordinator.Cancel(id, GetUserID(c)); err != nil {
		respondLibErr(c, err, "cancel reservation")
		return
	}
	respondSuccess(c, "reservation cancelled")
}
