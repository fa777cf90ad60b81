package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/shelfwise/shelfwise/internal/entities"
)

// OverdueLedger provides the reservation queries the overdue scan needs.
type OverdueLedger interface {
	ListOverdue(cutoff time.Time) ([]entities.Reservation, error)
	MarkOverdueNotified(id uint) error
}

// OverdueScanTask walks approved reservations whose due date has passed
// and flags each one once. The scan never mutates reservation status or
// copy counts; late returns still go through the coordinator.
type OverdueScanTask struct {
	RequestedAt time.Time `json:"requested_at"`
}

// Config returns the queue configuration for overdue scan tasks.
func (t OverdueScanTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "overdue_scan",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// OverdueScanProcessor creates a processor function for OverdueScanTask.
func OverdueScanProcessor(ledger OverdueLedger) backlite.QueueProcessor[OverdueScanTask] {
	return func(ctx context.Context, task OverdueScanTask) error {
		if ledger == nil {
			return fmt.Errorf("overdue ledger not configured")
		}

		overdue, err := ledger.ListOverdue(time.Now())
		if err != nil {
			return fmt.Errorf("overdue scan: %w", err)
		}

		for _, reservation := range overdue {
			if err := ctx.Err(); err != nil {
				return err
			}
			log.Printf("[TASK] Reservation %d (book %d, user %d) is overdue since %s",
				reservation.ID, reservation.BookID, reservation.UserID,
				reservation.DueDate.Format(time.RFC3339))
			if err := ledger.MarkOverdueNotified(reservation.ID); err != nil {
				log.Printf("[TASK] Failed to flag reservation %d as overdue: %v", reservation.ID, err)
			}
		}

		if len(overdue) > 0 {
			log.Printf("[TASK] Overdue scan flagged %d reservations", len(overdue))
		}
		return nil
	}
}

// NewOverdueScanQueue creates a backlite queue for overdue scan tasks.
func NewOverdueScanQueue(ledger OverdueLedger) backlite.Queue {
	return backlite.NewQueue(OverdueScanProcessor(ledger))
}
