package controllers

import (
	"net/http"

	apperrors "attire-service/common/errors"
	"attire-service/reminder"
	"attire-service/services"

	"github.com/gin-gonic/gin"
)

type DashboardController struct {
	summaryService *services.SummaryService
	scheduler      *reminder.Scheduler
}

func NewDashboardController(summaryService *services.SummaryService, scheduler *reminder.Scheduler) *DashboardController {
	return &DashboardController{summaryService: summaryService, scheduler: scheduler}
}

func (dc *DashboardController) GetDashboard(c *gin.Context) {
	summary, err := dc.summaryService.Dashboard(c.Request.Context())
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// RunReminders triggers a reminder tick outside the hourly schedule.
func (dc *DashboardController) RunReminders(c *gin.Context) {
	created, err := dc.scheduler.Tick(c.Request.Context())
	if err != nil {
		apperrors.Respond(c, apperrors.Internal("Failed to evaluate reminders", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"created": created})
}
