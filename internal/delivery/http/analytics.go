package http

import (
	"net/http"
	"strconv"
	"trading-dashboard/internal/dto"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupAnalytics(base *echo.Group) {
	analyticsGroup := base.Group("/analytics")
	analyticsGroup.GET("/daily-bars", h.getDailyBars)
	analyticsGroup.GET("/summary", h.getSummary)
}

func (h *HttpAPIHandler) lookbackDays(c echo.Context) (int, bool) {
	raw := c.QueryParam("days")
	if raw == "" {
		return 30, true
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days <= 0 {
		return 0, false
	}
	return days, true
}

func (h *HttpAPIHandler) getDailyBars(c echo.Context) error {
	ctx := c.Request().Context()

	days, ok := h.lookbackDays(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("days must be a positive integer"))
	}

	view, err := h.service.DashboardService.GetDailyBars(ctx, days)
	if err != nil {
		return c.JSON(http.StatusBadGateway, dto.NewUpstreamErrorResponse("failed to load performance metrics"))
	}

	return c.JSON(http.StatusOK, dto.NewSuccessResponse("success", view))
}

func (h *HttpAPIHandler) getSummary(c echo.Context) error {
	ctx := c.Request().Context()

	days, ok := h.lookbackDays(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("days must be a positive integer"))
	}

	view, err := h.service.DashboardService.GetSummary(ctx, days)
	if err != nil {
		return c.JSON(http.StatusBadGateway, dto.NewUpstreamErrorResponse("failed to load analytics summary"))
	}

	return c.JSON(http.StatusOK, dto.NewSuccessResponse("success", view))
}
