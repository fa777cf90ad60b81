// Package scheduler wires cron schedules to the task queue.
package scheduler

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/shelfwise/shelfwise/internal/tasks"
)

// OverdueScheduler enqueues an overdue scan on a cron schedule.
type OverdueScheduler struct {
	taskClient *tasks.Client
	schedule   string

	cron      *cron.Cron
	entryID   cron.EntryID
	mu        sync.RWMutex
	isRunning bool
}

// NewOverdueScheduler creates a scheduler that enqueues overdue scans.
func NewOverdueScheduler(taskClient *tasks.Client, schedule string) *OverdueScheduler {
	return &OverdueScheduler{
		taskClient: taskClient,
		schedule:   schedule,
		cron:       cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the schedule. Safe to call once; subsequent calls are no-ops.
func (s *OverdueScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		if err := s.enqueueScan(); err != nil {
			log.Printf("Overdue scheduler: failed to enqueue scan: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule overdue scan: %w", err)
	}
	s.entryID = entryID

	s.cron.Start()
	s.isRunning = true

	log.Printf("Overdue scheduler: started with schedule '%s'", s.schedule)
	return nil
}

// Stop gracefully stops the scheduler, waiting for a running job to finish.
func (s *OverdueScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	log.Printf("Overdue scheduler: stopped")
}

// RunNow enqueues an immediate overdue scan.
func (s *OverdueScheduler) RunNow() error {
	return s.enqueueScan()
}

// IsRunning returns whether the scheduler is active.
func (s *OverdueScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns when the next scan will be enqueued.
func (s *OverdueScheduler) NextRun() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

func (s *OverdueScheduler) enqueueScan() error {
	_, err := s.taskClient.Add(tasks.OverdueScanTask{RequestedAt: time.Now()}).Save()
	if err != nil {
		return fmt.Errorf("failed to enqueue overdue scan: %w", err)
	}
	log.Printf("Overdue scheduler: scan enqueued")
	return nil
}
