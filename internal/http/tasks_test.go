package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeScheduler struct {
	running  bool
	next     *time.Time
	runErr   error
	runCalls int
}

func (f *fakeScheduler) IsRunning() bool     { return f.running }
func (f *fakeScheduler) NextRun() *time.Time { return f.next }
func (f *fakeScheduler) RunNow() error {
	f.runCalls++
	return f.runErr
}

func setupTasksTest(scheduler ScanScheduler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	controller := NewTasksController(scheduler)
	router := gin.New()
	router.GET("/api/tasks/overdue-scan", controller.Status)
	router.POST("/api/tasks/overdue-scan/run", controller.Run)
	return router
}

func TestTasksController_Status(t *testing.T) {
	t.Run("reports running scheduler with next fire time", func(t *testing.T) {
		next := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
		router := setupTasksTest(&fakeScheduler{running: true, next: &next})

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/tasks/overdue-scan", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response overdueScanStatus
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.True(t, response.Running)
		require.NotNil(t, response.NextRun)
		assert.True(t, next.Equal(*response.NextRun))
	})

	t.Run("reports stopped scheduler without next fire time", func(t *testing.T) {
		router := setupTasksTest(&fakeScheduler{running: false})

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/tasks/overdue-scan", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response overdueScanStatus
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.False(t, response.Running)
		assert.Nil(t, response.NextRun)
	})

	t.Run("unavailable when background tasks are disabled", func(t *testing.T) {
		router := setupTasksTest(nil)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/tasks/overdue-scan", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestTasksController_Run(t *testing.T) {
	t.Run("enqueues a scan", func(t *testing.T) {
		scheduler := &fakeScheduler{running: true}
		router := setupTasksTest(scheduler)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/tasks/overdue-scan/run", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusAccepted, w.Code)
		assert.Equal(t, 1, scheduler.runCalls)
	})

	t.Run("surfaces enqueue failures", func(t *testing.T) {
		scheduler := &fakeScheduler{running: true, runErr: errors.New("queue closed")}
		router := setupTasksTest(scheduler)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/tasks/overdue-scan/run", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("unavailable when background tasks are disabled", func(t *testing.T) {
		router := setupTasksTest(nil)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/tasks/overdue-scan/run", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}
