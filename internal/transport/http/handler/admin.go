package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"notebase/internal/app"
	"notebase/internal/scheduler"
	"notebase/internal/transport/http/response"
)

type AdminHandler struct {
	adminService *app.AdminService
	scheduler    *scheduler.Scheduler
}

func NewAdminHandler(adminService *app.AdminService, sched *scheduler.Scheduler) *AdminHandler {
	return &AdminHandler{adminService: adminService, scheduler: sched}
}

func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.adminService.Stats()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "collect stats failed")
		return
	}
	response.OK(c, stats)
}

func (h *AdminHandler) APIMetrics(c *gin.Context) {
	response.OK(c, h.adminService.APIMetrics())
}

func (h *AdminHandler) Channels(c *gin.Context) {
	overviews, err := h.adminService.ChannelOverviews()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list channels failed")
		return
	}
	response.OK(c, gin.H{"channels": overviews, "total": len(overviews)})
}

func (h *AdminHandler) SchedulerStatus(c *gin.Context) {
	response.OK(c, h.scheduler.Status())
}

// SchedulerRun triggers a sweep outside the cron schedule.
func (h *AdminHandler) SchedulerRun(c *gin.Context) {
	if err := h.scheduler.RunNow(c.Request.Context()); err != nil {
		if errors.Is(err, scheduler.ErrAlreadyRunning) {
			response.Error(c, http.StatusConflict, response.CodeConflict, err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "sweep failed")
		return
	}
	response.Accepted(c, h.scheduler.Status())
}
