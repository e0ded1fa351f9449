package analytics

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"srsevents/internal/events"
	"srsevents/internal/shared/utils/response"
)

type Controller struct {
	repo Repository
}

func NewController(repo Repository) *Controller {
	return &Controller{repo: repo}
}

func (ctrl *Controller) Dashboard(c *gin.Context) {
	stats, err := ctrl.repo.DashboardStats(c.Request.Context())
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, "failed to load dashboard", nil, nil)
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "dashboard stats", stats, nil)
}

func (ctrl *Controller) Revenue(c *gin.Context) {
	var query RevenueQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "invalid query parameters", nil, err.Error())
		return
	}

	now := time.Now()
	from := now.AddDate(0, -1, 0)
	to := now
	if query.From != "" {
		if parsed, err := time.Parse("2006-01-02", query.From); err == nil {
			from = parsed
		}
	}
	if query.To != "" {
		if parsed, err := time.Parse("2006-01-02", query.To); err == nil {
			to = parsed.Add(24 * time.Hour)
		}
	}

	points, err := ctrl.repo.RevenueSeries(c.Request.Context(), query.Interval, from, to)
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, "failed to build revenue series", nil, nil)
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "revenue series", points, nil)
}

func (ctrl *Controller) EventStats(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("eventId"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "invalid event id", nil, nil)
		return
	}

	stats, err := ctrl.repo.EventStats(c.Request.Context(), eventID)
	if err != nil {
		if errors.Is(err, events.ErrEventNotFound) {
			response.RespondJSON(c, "error", http.StatusNotFound, err.Error(), nil, nil)
			return
		}
		response.RespondJSON(c, "error", http.StatusInternalServerError, "failed to load event stats", nil, nil)
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "event stats", stats, nil)
}
