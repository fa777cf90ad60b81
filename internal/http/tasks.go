package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ScanScheduler is the slice of the overdue scheduler the HTTP surface
// needs. Satisfied by scheduler.OverdueScheduler.
type ScanScheduler interface {
	IsRunning() bool
	NextRun() *time.Time
	RunNow() error
}

// TasksController exposes the background overdue scan to librarians.
type TasksController struct {
	scheduler ScanScheduler
}

func NewTasksController(scheduler ScanScheduler) *TasksController {
	return &TasksController{scheduler: scheduler}
}

type overdueScanStatus struct {
	Running bool       `json:"running"`
	NextRun *time.Time `json:"next_run,omitempty"`
}

// Status reports whether the scheduler is active and when it fires next.
func (controller *TasksController) Status(c *gin.Context) {
	if controller.scheduler == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "background tasks are disabled"})
		return
	}
	c.JSON(http.StatusOK, overdueScanStatus{
		Running: controller.scheduler.IsRunning(),
		NextRun: controller.scheduler.NextRun(),
	})
}

// Run enqueues an immediate overdue scan instead of waiting for the
// next scheduled one.
func (controller *TasksController) Run(c *gin.Context) {
	if controller.scheduler == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "background tasks are disabled"})
		return
	}
	if err := controller.scheduler.RunNow(); err != nil {
		respondInternalError(c, err, "enqueue overdue scan")
		return
	}
	c.JSON(http.StatusAccepted, SuccessResponse{Message: "overdue scan enqueued"})
}
